package export

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence-tree/confluence"
)

func intp(i int) *int { return &i }

// testForest is:
//
//	101 Engineering Handbook (page)
//	└── 102 Runbooks (folder)
//	    └── 103 On-call rota (page)
//	104 "!" (page, title doesn't slug)
func testForest() []*confluence.ContentNode {
	c := &confluence.ContentNode{
		ID: "103", Title: "On-call rota", Kind: confluence.KindPage, Status: "current",
		ParentID: "102", ParentType: "folder",
		Depth:    intp(2),
		Version:  &confluence.Version{Number: 3, CreatedAt: "2024-03-01T10:00:00Z"},
		Links:    &confluence.Links{WebUI: "/spaces/CORE/pages/103/On-call+rota"},
		Children: []*confluence.ContentNode{},
	}
	b := &confluence.ContentNode{
		ID: "102", Title: "Runbooks", Kind: confluence.KindFolder,
		ParentID: "101", ParentType: "page",
		Depth:    intp(1),
		Children: []*confluence.ContentNode{c},
	}
	a := &confluence.ContentNode{
		ID: "101", Title: "Engineering Handbook", Kind: confluence.KindPage, Status: "current",
		CreatedAt: "1709287200000",
		Depth:     intp(0),
		Children:  []*confluence.ContentNode{b},
	}
	e := &confluence.ContentNode{
		ID: "104", Title: "!", Kind: confluence.KindPage,
		Depth:    intp(0),
		Children: []*confluence.ContentNode{},
	}
	return []*confluence.ContentNode{a, e}
}

type fakeGetter struct {
	bodies map[string]string
	err    error
}

func (f *fakeGetter) GetPageByID(ctx context.Context, opts confluence.GetPageByIDQuery) (*confluence.ContentNode, error) {
	if f.err != nil {
		return nil, f.err
	}
	if opts.BodyFormat != "view" {
		return nil, errors.New("expected body-format=view")
	}
	return &confluence.ContentNode{
		ID:   opts.ID,
		Body: &confluence.Body{View: &confluence.Storage{Representation: "view", Value: f.bodies[opts.ID]}},
	}, nil
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestCanonicalise(t *testing.T) {
	tests := []struct {
		title   string
		want    string
		wantErr bool
	}{
		{"Engineering Handbook", "engineering-handbook", false},
		{"  On-call   rota!! (2024) ", "on-call-rota-2024", false},
		{"Ünïcödé Tïtlé", "n-c-d-t-tl", false},
		{"!", "", true},
		{"a", "", true},
		{strings.Repeat("ab ", 60), strings.Trim(strings.Repeat("ab-", 60)[:100], "-"), false},
	}

	for _, tt := range tests {
		got, err := canonicalise(tt.title)
		if tt.wantErr {
			assert.Error(t, err, tt.title)
			continue
		}
		require.NoError(t, err, tt.title)
		assert.Equal(t, tt.want, got)
	}
}

func TestPlan_Paths(t *testing.T) {
	paths := []string{}
	for _, entry := range plan(testForest()) {
		paths = append(paths, entry.relPath)
	}

	assert.Equal(t, []string{
		"101-engineering-handbook.md",
		filepath.Join("engineering-handbook", "runbooks"),
		filepath.Join("engineering-handbook", "runbooks", "103-on-call-rota.md"),
		"104-104.md",
	}, paths)
}

func TestExport_WritesTree(t *testing.T) {
	store := t.TempDir()
	e := &Exporter{StorePath: store, BaseURI: mustParse(t, "https://acme.atlassian.net/wiki")}

	summary, err := e.Export(context.Background(), testForest())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Pages)
	assert.Equal(t, 1, summary.Folders)
	assert.Len(t, summary.Files, 3)

	stat, err := os.Stat(filepath.Join(store, "engineering-handbook", "runbooks"))
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	header, err := ReadFrontMatter(filepath.Join(store, "engineering-handbook", "runbooks", "103-on-call-rota.md"))
	require.NoError(t, err)
	assert.Equal(t, "On-call rota", header.Title)
	assert.Equal(t, "103", header.ObjectID)
	assert.Equal(t, "page", header.ObjectType)
	assert.Equal(t, 3, header.Version)
	assert.Equal(t, 2, header.Depth)
	assert.Equal(t, []string{"101", "102"}, header.AncestorIDs)
	assert.Equal(t, []string{"Engineering Handbook", "Runbooks"}, header.AncestorNames)
	assert.Equal(t, "https://acme.atlassian.net/wiki/spaces/CORE/pages/103/On-call+rota", header.URI)
	assert.True(t, header.Timestamp.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	root, err := ReadFrontMatter(filepath.Join(store, "101-engineering-handbook.md"))
	require.NoError(t, err)
	assert.Empty(t, root.AncestorIDs)
	assert.True(t, root.Timestamp.Equal(time.UnixMilli(1709287200000)), "epoch millis createdAt")
}

func TestExport_WithBody(t *testing.T) {
	store := t.TempDir()
	getter := &fakeGetter{bodies: map[string]string{
		"101": `<h1>Hello</h1><p>See <a href="/wiki/spaces/CORE/pages/103">the rota</a>.</p>` +
			`<table><thead><tr><th>Who</th></tr></thead><tbody><tr><td>paul</td></tr></tbody></table>`,
	}}
	e := &Exporter{
		StorePath: store,
		BaseURI:   mustParse(t, "https://acme.atlassian.net/wiki"),
		API:       getter,
		WithBody:  true,
		Workers:   2,
	}

	_, err := e.Export(context.Background(), testForest())
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(store, "101-engineering-handbook.md"))
	require.NoError(t, err)

	doc := string(content)
	assert.True(t, strings.HasPrefix(doc, "---\n"))
	assert.Contains(t, doc, "# Hello")
	assert.Contains(t, doc, "[the rota](https://acme.atlassian.net/wiki/spaces/CORE/pages/103)")
	assert.Contains(t, doc, "| Who |")
}

func TestExport_BodyFetchFails(t *testing.T) {
	e := &Exporter{
		StorePath: t.TempDir(),
		API:       &fakeGetter{err: errors.New("Confluence API Error: not found")},
		WithBody:  true,
	}

	_, err := e.Export(context.Background(), testForest())
	assert.ErrorContains(t, err, "not found")
}

func TestExport_DryRun(t *testing.T) {
	store := t.TempDir()
	e := &Exporter{StorePath: store, DryRun: true}

	summary, err := e.Export(context.Background(), testForest())
	require.NoError(t, err)
	assert.Len(t, summary.Files, 3)

	entries, err := os.ReadDir(store)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_Prune(t *testing.T) {
	store := t.TempDir()
	stale := filepath.Join(store, "engineering-handbook", "999-gone.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0750))
	require.NoError(t, os.WriteFile(stale, []byte("---\nobject_id: \"999\"\n---\n"), 0640))
	keep := filepath.Join(store, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("not markdown"), 0640))

	e := &Exporter{StorePath: store, Prune: true}
	summary, err := e.Export(context.Background(), testForest())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Pruned)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, keep)
	assert.FileExists(t, filepath.Join(store, "104-104.md"))
}

func TestExport_StoreMustBeADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0640))

	_, err := (&Exporter{StorePath: file}).Export(context.Background(), testForest())
	assert.ErrorContains(t, err, "not a directory")

	_, err = (&Exporter{StorePath: filepath.Join(file, "nope")}).Export(context.Background(), testForest())
	assert.ErrorContains(t, err, "cannot stat")
}

func TestExport_BodyNeedsAPI(t *testing.T) {
	_, err := (&Exporter{StorePath: t.TempDir(), WithBody: true}).Export(context.Background(), nil)
	assert.ErrorContains(t, err, "needs an API")
}
