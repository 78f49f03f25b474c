package export

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdplugin "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/toothbrush/confluence-tree/confluence"
	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML header at the top of every exported page.
type FrontMatter struct {
	Title         string    `yaml:"title"`
	ObjectID      string    `yaml:"object_id"`
	ObjectType    string    `yaml:"object_type"`
	Status        string    `yaml:"status,omitempty"`
	Version       int       `yaml:"version,omitempty"`
	Timestamp     time.Time `yaml:"date,omitempty"`
	Depth         int       `yaml:"depth"`
	URI           string    `yaml:"uri,omitempty"`
	AncestorIDs   []string  `yaml:"ancestor_ids"`
	AncestorNames []string  `yaml:"ancestor_names"`
}

// newConverter returns an html-to-markdown converter that turns Confluence's site-relative links
// into absolute ones.  md.NewConverter only takes a hostname, so the scheme is patched in by hand,
// adapted from https://github.com/JohannesKaufmann/html-to-markdown/issues/44
func newConverter(base *url.URL) *md.Converter {
	if base == nil {
		conv := md.NewConverter("", true, nil)
		conv.Use(mdplugin.GitHubFlavored())
		return conv
	}

	opt := &md.Options{
		GetAbsoluteURL: func(selec *goquery.Selection, rawURL string, domain string) string {
			if domain == "" {
				return rawURL
			}

			u, err := url.Parse(rawURL)
			if err != nil {
				return rawURL
			}

			// inline base64 images and the like
			if u.Scheme == "data" {
				return rawURL
			}

			if u.Scheme == "" {
				u.Scheme = base.Scheme
			}
			if u.Host == "" {
				u.Host = domain
			}

			return u.String()
		},
	}

	conv := md.NewConverter(base.Host, true, opt)
	// Github flavoured Markdown knows about tables
	conv.Use(mdplugin.GitHubFlavored())
	return conv
}

func (e *Exporter) frontMatter(entry planned) FrontMatter {
	n := entry.node

	header := FrontMatter{
		Title:         n.Title,
		ObjectID:      n.ID,
		ObjectType:    string(n.Kind),
		Status:        n.Status,
		Depth:         entry.depth,
		AncestorIDs:   []string{},
		AncestorNames: []string{},
	}

	for _, a := range entry.ancestors {
		header.AncestorIDs = append(header.AncestorIDs, a.ID)
		header.AncestorNames = append(header.AncestorNames, a.Title)
	}

	created := n.CreatedAt
	if n.Version != nil {
		header.Version = n.Version.Number
		if n.Version.CreatedAt != "" {
			created = n.Version.CreatedAt
		}
	}
	if ts, err := created.Time(); err == nil {
		header.Timestamp = ts
	}

	if e.BaseURI != nil && n.Links != nil && n.Links.WebUI != "" {
		header.URI = e.BaseURI.String() + n.Links.WebUI
	}

	return header
}

// render produces the complete Markdown document for a page.  body is the page's view HTML, or
// empty when bodies aren't being exported.
func (e *Exporter) render(entry planned, body string) (string, error) {
	yamlHeader, err := yaml.Marshal(e.frontMatter(entry))
	if err != nil {
		return "", fmt.Errorf("export: couldn't marshal header YAML: %w", err)
	}

	markdown := ""
	if body != "" {
		markdown, err = e.converter.ConvertString(body)
		if err != nil {
			return "", fmt.Errorf("export: failed to convert %s to Markdown: %w", entry.node.ID, err)
		}
	}

	return fmt.Sprintf(`---
%s
---
%s
`,
		strings.TrimSpace(string(yamlHeader)),
		markdown), nil
}

func pageBody(page *confluence.ContentNode) (string, error) {
	if page.Body == nil || page.Body.View == nil {
		return "", fmt.Errorf("export: found nil .Body.View field for object ID %s", page.ID)
	}
	return page.Body.View.Value, nil
}
