package export

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/rs/zerolog"
	"github.com/toothbrush/confluence-tree/confluence"
	"github.com/toothbrush/confluence-tree/hierarchy"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 8

// PageGetter fetches a single page with its body.  *confluence.API satisfies it.
type PageGetter interface {
	GetPageByID(ctx context.Context, opts confluence.GetPageByIDQuery) (*confluence.ContentNode, error)
}

// Exporter writes a built content forest out as a tree of Markdown files.
type Exporter struct {
	// StorePath must be an existing directory.
	StorePath string

	// BaseURI of the wiki, used for page URIs and to make links in bodies absolute.  May be nil.
	BaseURI *url.URL

	// API is only needed WithBody.
	API      PageGetter
	WithBody bool

	// DryRun plans every path but touches nothing on disk.
	DryRun bool

	// Prune deletes *.md files under StorePath that this export didn't write.
	Prune bool

	Workers int

	Logger   zerolog.Logger
	Progress hierarchy.Progress

	converter *md.Converter
}

type Summary struct {
	Pages   int
	Folders int
	Pruned  int

	// Files are the written (or, for a dry run, planned) page paths relative to StorePath, sorted.
	Files []string
}

// planned is one node with everything needed to place it on disk.
type planned struct {
	node      *confluence.ContentNode
	ancestors []*confluence.ContentNode
	depth     int

	// relative to StorePath: the page's .md file, or the folder's directory
	relPath string
}

// Export writes forest to StorePath.  Pages become <ancestor slugs...>/<id>-<slug>.md, folders
// become directories named after their slug.
func (e *Exporter) Export(ctx context.Context, forest []*confluence.ContentNode) (Summary, error) {
	if e.WithBody && e.API == nil {
		return Summary{}, fmt.Errorf("export: exporting bodies needs an API")
	}
	if !e.DryRun {
		if err := checkStore(e.StorePath); err != nil {
			return Summary{}, err
		}
	}

	workers := e.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	e.converter = newConverter(e.BaseURI)

	var pages, folders []planned
	for _, entry := range plan(forest) {
		if entry.node.Kind == confluence.KindFolder {
			folders = append(folders, entry)
		} else {
			pages = append(pages, entry)
		}
	}

	summary := Summary{Pages: len(pages), Folders: len(folders), Files: []string{}}

	if !e.DryRun {
		for _, f := range folders {
			dir := filepath.Join(e.StorePath, f.relPath)
			if err := os.MkdirAll(dir, 0750); err != nil {
				return Summary{}, fmt.Errorf("export: couldn't create directory %s: %w", dir, err)
			}
		}
	}

	if e.Progress != nil {
		e.Progress.Discovered(len(pages))
	}

	var mu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	for _, entry := range pages {
		entry := entry
		grp.Go(func() error {
			if err := e.exportPage(gctx, entry); err != nil {
				return err
			}
			if e.Progress != nil {
				e.Progress.Resolved()
			}

			mu.Lock()
			summary.Files = append(summary.Files, entry.relPath)
			mu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return Summary{}, fmt.Errorf("export: failure: %w", err)
	}
	slices.Sort(summary.Files)

	if e.Prune && !e.DryRun {
		pruned, err := e.prune(summary.Files)
		if err != nil {
			return Summary{}, err
		}
		summary.Pruned = pruned
	}

	e.Logger.Info().
		Int("pages", summary.Pages).
		Int("folders", summary.Folders).
		Int("pruned", summary.Pruned).
		Bool("dry_run", e.DryRun).
		Msg("export finished")

	return summary, nil
}

func (e *Exporter) exportPage(ctx context.Context, entry planned) error {
	body := ""
	if e.WithBody {
		page, err := e.API.GetPageByID(ctx, confluence.GetPageByIDQuery{
			ID:         entry.node.ID,
			BodyFormat: "view",
		})
		if err != nil {
			return fmt.Errorf("export: failed getting page: %w", err)
		}
		body, err = pageBody(page)
		if err != nil {
			return err
		}
	}

	content, err := e.render(entry, body)
	if err != nil {
		return err
	}

	if e.DryRun {
		e.Logger.Debug().Str("path", entry.relPath).Msg("would write")
		return nil
	}

	return e.write(entry.relPath, content)
}

// plan walks forest in pre-order.  Every node's directory is the chain of its ancestors' slugs.
func plan(forest []*confluence.ContentNode) []planned {
	out := []planned{}

	var walk func(n *confluence.ContentNode, ancestors []*confluence.ContentNode, dir string)
	walk = func(n *confluence.ContentNode, ancestors []*confluence.ContentNode, dir string) {
		depth := len(ancestors)
		if n.Depth != nil {
			depth = *n.Depth
		}

		slug := slugFor(n)
		rel := filepath.Join(dir, slug)
		if n.Kind != confluence.KindFolder {
			rel = filepath.Join(dir, fmt.Sprintf("%s-%s.md", n.ID, slug))
		}

		out = append(out, planned{
			node:      n,
			ancestors: ancestors,
			depth:     depth,
			relPath:   rel,
		})

		next := make([]*confluence.ContentNode, len(ancestors), len(ancestors)+1)
		copy(next, ancestors)
		next = append(next, n)
		for _, c := range n.Children {
			walk(c, next, filepath.Join(dir, slug))
		}
	}

	for _, root := range forest {
		walk(root, []*confluence.ContentNode{}, "")
	}
	return out
}
