package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence-tree/confluence"
)

// fakeTree serves child listings out of a map, handing out fresh nodes on every call the way the
// real API would.
type fakeTree struct {
	mu       sync.Mutex
	children map[string][]confluence.ContentNode
	failing  map[string]error
	delay    map[string]time.Duration
	calls    map[string]int

	inFlight    int32
	maxInFlight int32
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		children: map[string][]confluence.ContentNode{},
		failing:  map[string]error{},
		delay:    map[string]time.Duration{},
		calls:    map[string]int{},
	}
}

func (f *fakeTree) add(parent string, kind confluence.Kind, id string) {
	f.children[parent] = append(f.children[parent], confluence.ContentNode{
		ID:         id,
		Title:      "Title " + id,
		Kind:       kind,
		ParentID:   parent,
		ParentType: string(confluence.KindPage),
	})
}

func (f *fakeTree) callsFor(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *fakeTree) ListPageChildren(ctx context.Context, pageID string, opts confluence.ListQuery) (*confluence.ContentListResponse, error) {
	now := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&f.maxInFlight)
		if now <= seen || atomic.CompareAndSwapInt32(&f.maxInFlight, seen, now) {
			break
		}
	}

	f.mu.Lock()
	f.calls[pageID]++
	templates := f.children[pageID]
	err := f.failing[pageID]
	delay := f.delay[pageID]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	results := make([]*confluence.ContentNode, 0, len(templates))
	for _, tmpl := range templates {
		n := tmpl
		results = append(results, &n)
	}
	return &confluence.ContentListResponse{Results: results}, nil
}

// scenarioTree is A (root) -> B (folder) -> C (page), plus an attachment D under A.
func scenarioTree() (*fakeTree, *confluence.ContentNode) {
	f := newFakeTree()
	f.add("A", confluence.KindFolder, "B")
	f.add("A", confluence.Kind("attachment"), "D")
	f.add("B", confluence.KindPage, "C")
	return f, &confluence.ContentNode{ID: "A", Title: "Title A", Kind: confluence.KindPage}
}

func ids(nodes []*confluence.ContentNode) []string {
	out := []string{}
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuild_UnboundedScenario(t *testing.T) {
	f, root := scenarioTree()
	b := NewBuilder(f, Unbounded, 4)

	require.NoError(t, b.Build(context.Background(), root, 0))

	require.NotNil(t, root.Depth)
	assert.Equal(t, 0, *root.Depth)
	assert.Equal(t, []string{"B"}, ids(root.Children))

	nodeB := root.Children[0]
	assert.Equal(t, 1, *nodeB.Depth)
	assert.Equal(t, []string{"C"}, ids(nodeB.Children))

	nodeC := nodeB.Children[0]
	assert.Equal(t, 2, *nodeC.Depth)
	assert.NotNil(t, nodeC.Children)
	assert.Empty(t, nodeC.Children)

	for _, n := range Flatten([]*confluence.ContentNode{root}) {
		assert.NotEqual(t, "D", n.ID, "attachments never make it into the tree")
	}
	assert.Zero(t, f.callsFor("D"))
}

func TestBuild_MaxDepthOne(t *testing.T) {
	f, root := scenarioTree()
	b := NewBuilder(f, 1, 4)

	require.NoError(t, b.Build(context.Background(), root, 0))

	assert.Equal(t, 0, *root.Depth)
	require.Equal(t, []string{"B"}, ids(root.Children))

	nodeB := root.Children[0]
	assert.Equal(t, 1, *nodeB.Depth)
	assert.NotNil(t, nodeB.Children)
	assert.Empty(t, nodeB.Children)
	assert.Zero(t, f.callsFor("B"), "nodes at max depth are not expanded")
}

func TestBuild_ChildFetchFailureIsALeaf(t *testing.T) {
	f, root := scenarioTree()
	f.failing["B"] = errors.New("Confluence API Error: permission denied")
	b := NewBuilder(f, Unbounded, 4)

	require.NoError(t, b.Build(context.Background(), root, 0))

	require.Equal(t, []string{"B"}, ids(root.Children))
	nodeB := root.Children[0]
	assert.Equal(t, 1, *nodeB.Depth)
	assert.NotNil(t, nodeB.Children)
	assert.Empty(t, nodeB.Children)
}

func TestBuild_FailureDoesNotAffectSiblings(t *testing.T) {
	f := newFakeTree()
	f.add("R", confluence.KindPage, "bad")
	f.add("R", confluence.KindPage, "good")
	f.add("good", confluence.KindPage, "grandchild")
	f.failing["bad"] = errors.New("boom")

	root := &confluence.ContentNode{ID: "R", Kind: confluence.KindPage}
	require.NoError(t, NewBuilder(f, Unbounded, 2).Build(context.Background(), root, 0))

	require.Equal(t, []string{"bad", "good"}, ids(root.Children))
	assert.Empty(t, root.Children[0].Children)
	assert.Equal(t, []string{"grandchild"}, ids(root.Children[1].Children))
}

func TestBuild_PreservesListingOrder(t *testing.T) {
	f := newFakeTree()
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("c%d", i)
		f.add("R", confluence.KindPage, id)
		// earlier siblings finish last
		f.delay[id] = time.Duration(6-i) * 5 * time.Millisecond
	}

	root := &confluence.ContentNode{ID: "R", Kind: confluence.KindPage}
	require.NoError(t, NewBuilder(f, Unbounded, 8).Build(context.Background(), root, 0))

	assert.Equal(t, []string{"c1", "c2", "c3", "c4", "c5"}, ids(root.Children))
}

func TestBuild_RespectsConcurrencyBound(t *testing.T) {
	f := newFakeTree()
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("c%d", i)
		f.add("R", confluence.KindPage, id)
		f.delay[id] = 10 * time.Millisecond
	}

	root := &confluence.ContentNode{ID: "R", Kind: confluence.KindPage}
	require.NoError(t, NewBuilder(f, Unbounded, 3).Build(context.Background(), root, 0))

	assert.Len(t, root.Children, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&f.maxInFlight), int32(3))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&f.maxInFlight), int32(1))
}

func TestBuild_DepthInvariants(t *testing.T) {
	// A balanced tree three wide and five deep.
	f := newFakeTree()
	var grow func(id string, level int)
	grow = func(id string, level int) {
		if level == 5 {
			return
		}
		for i := 0; i < 3; i++ {
			child := fmt.Sprintf("%s.%d", id, i)
			kind := confluence.KindPage
			if i == 1 {
				kind = confluence.KindFolder
			}
			f.add(id, kind, child)
			grow(child, level+1)
		}
	}
	grow("root", 0)

	for _, maxDepth := range []int{1, 2, 4, Unbounded} {
		t.Run(fmt.Sprintf("max=%d", maxDepth), func(t *testing.T) {
			root := &confluence.ContentNode{ID: "root", Kind: confluence.KindPage}
			require.NoError(t, NewBuilder(f, maxDepth, 5).Build(context.Background(), root, 0))

			var check func(n *confluence.ContentNode)
			check = func(n *confluence.ContentNode) {
				require.NotNil(t, n.Depth)
				require.NotNil(t, n.Children, "every visited node is resolved")
				if maxDepth != Unbounded {
					assert.LessOrEqual(t, *n.Depth, maxDepth)
					if *n.Depth == maxDepth {
						assert.Empty(t, n.Children)
					}
				}
				for _, c := range n.Children {
					require.NotNil(t, c.Depth)
					assert.Equal(t, *n.Depth+1, *c.Depth)
					check(c)
				}
			}
			assert.Equal(t, 0, *root.Depth)
			check(root)

			if maxDepth == Unbounded {
				// 3 + 9 + 27 + 81 + 243 below the root
				assert.Equal(t, 1+3+9+27+81+243, Count([]*confluence.ContentNode{root}))
			}
		})
	}
}

func TestBuild_StopsOnCancelledContext(t *testing.T) {
	f, root := scenarioTree()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBuilder(f, Unbounded, 2).Build(ctx, root, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingProgress struct {
	discovered, resolved int64
}

func (p *countingProgress) Discovered(n int) { atomic.AddInt64(&p.discovered, int64(n)) }
func (p *countingProgress) Resolved()        { atomic.AddInt64(&p.resolved, 1) }

func TestBuildForest_ReportsProgress(t *testing.T) {
	f, rootA := scenarioTree()
	f.add("E", confluence.KindPage, "F")
	rootE := &confluence.ContentNode{ID: "E", Kind: confluence.KindPage}

	progress := &countingProgress{}
	b := NewBuilder(f, Unbounded, 4)
	b.Progress = progress

	forest := []*confluence.ContentNode{rootA, rootE}
	require.NoError(t, b.BuildForest(context.Background(), forest))

	total := int64(Count(forest))
	assert.Equal(t, int64(5), total)
	assert.Equal(t, total, atomic.LoadInt64(&progress.discovered))
	assert.Equal(t, total, atomic.LoadInt64(&progress.resolved))
	assert.Equal(t, []string{"A", "E"}, ids(forest))
	assert.Equal(t, 0, *rootE.Depth)
}

func TestBuilder_ZeroValueUsable(t *testing.T) {
	f, root := scenarioTree()
	b := &Builder{Lister: f, MaxDepth: Unbounded}

	require.NoError(t, b.Build(context.Background(), root, 0))
	assert.Equal(t, DefaultConcurrency, b.Concurrency)
	assert.Equal(t, confluence.DefaultLimit, b.PageSize)
	assert.Equal(t, 3, Count([]*confluence.ContentNode{root}))
}
