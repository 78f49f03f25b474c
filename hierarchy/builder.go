package hierarchy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/toothbrush/confluence-tree/confluence"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Unbounded disables the depth limit.
const Unbounded = -1

// DefaultConcurrency bounds in-flight child fetches when the caller doesn't.
const DefaultConcurrency = 8

// ChildLister is the slice of the Confluence API the builder needs.  *confluence.API satisfies it.
type ChildLister interface {
	ListPageChildren(ctx context.Context, pageID string, opts confluence.ListQuery) (*confluence.ContentListResponse, error)
}

// Progress gets told about the shape of the tree as it's discovered.  Both methods are called from
// many goroutines at once.
type Progress interface {
	Discovered(n int)
	Resolved()
}

// Builder walks the content tree below a node, attaching children as it goes.
type Builder struct {
	Lister ChildLister

	// MaxDepth stops the walk: nodes at this depth get an empty child list without asking the API.
	// Unbounded (-1) walks until the tree runs out.
	MaxDepth int

	// PageSize for each child listing.  Only the first page is ever fetched.
	PageSize int

	// Concurrency caps how many child fetches are in flight across the whole build.
	Concurrency int

	Logger   zerolog.Logger
	Progress Progress

	sem *semaphore.Weighted
}

// NewBuilder returns a Builder with defaults filled in.
func NewBuilder(lister ChildLister, maxDepth int, concurrency int) *Builder {
	b := &Builder{
		Lister:      lister,
		MaxDepth:    maxDepth,
		PageSize:    confluence.DefaultLimit,
		Concurrency: concurrency,
		Logger:      zerolog.Nop(),
	}
	b.init()
	return b
}

func (b *Builder) init() {
	if b.Concurrency < 1 {
		b.Concurrency = DefaultConcurrency
	}
	if b.PageSize < 1 {
		b.PageSize = confluence.DefaultLimit
	}
	if b.sem == nil {
		b.sem = semaphore.NewWeighted(int64(b.Concurrency))
	}
}

// BuildForest builds every root concurrently.  Roots keep their order.
func (b *Builder) BuildForest(ctx context.Context, roots []*confluence.ContentNode) error {
	b.init()
	if b.Progress != nil {
		b.Progress.Discovered(len(roots))
	}

	var grp errgroup.Group
	for _, root := range roots {
		root := root
		grp.Go(func() error {
			return b.build(ctx, root, 0)
		})
	}

	if err := grp.Wait(); err != nil {
		return fmt.Errorf("hierarchy: build interrupted: %w", err)
	}
	return nil
}

// Build resolves node and everything below it.  A failed child fetch never fails the build; the
// only error is the context going away.
func (b *Builder) Build(ctx context.Context, node *confluence.ContentNode, currentDepth int) error {
	b.init()
	if b.Progress != nil {
		b.Progress.Discovered(1)
	}

	if err := b.build(ctx, node, currentDepth); err != nil {
		return fmt.Errorf("hierarchy: build interrupted: %w", err)
	}
	return nil
}

func (b *Builder) build(ctx context.Context, node *confluence.ContentNode, currentDepth int) error {
	depth := currentDepth
	node.Depth = &depth

	if b.Progress != nil {
		defer b.Progress.Resolved()
	}

	if b.MaxDepth != Unbounded && currentDepth >= b.MaxDepth {
		node.Children = []*confluence.ContentNode{}
		return nil
	}

	children, err := b.fetchChildren(ctx, node.ID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.Logger.Warn().
			Err(err).
			Str("page", node.ID).
			Int("depth", currentDepth).
			Msg("couldn't list children, treating as leaf")
		node.Children = []*confluence.ContentNode{}
		return nil
	}

	if b.Progress != nil && len(children) > 0 {
		b.Progress.Discovered(len(children))
	}

	var grp errgroup.Group
	for _, child := range children {
		child := child
		grp.Go(func() error {
			return b.build(ctx, child, currentDepth+1)
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	node.Children = children
	return nil
}

// fetchChildren holds a semaphore slot for the duration of the HTTP call only.  Holding it across
// the recursion would let a wide enough tree deadlock on itself.
func (b *Builder) fetchChildren(ctx context.Context, pageID string) ([]*confluence.ContentNode, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.sem.Release(1)

	b.Logger.Debug().Str("page", pageID).Msg("listing children")

	resp, err := b.Lister.ListPageChildren(ctx, pageID, confluence.ListQuery{Limit: b.PageSize})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return []*confluence.ContentNode{}, nil
	}
	if resp.Truncated() {
		b.Logger.Warn().Str("page", pageID).Int("limit", b.PageSize).Msg("child listing truncated, later children are not included")
	}

	// Listers other than *confluence.API may hand back attachments too.
	return confluence.ContentOnly(resp.Results), nil
}
