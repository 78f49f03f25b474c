package operation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/toothbrush/confluence-tree/confluence"
	"github.com/toothbrush/confluence-tree/hierarchy"
)

// Client is what the runner needs from Confluence.  *confluence.API satisfies it.
type Client interface {
	hierarchy.ChildLister
	ListPagesInSpace(ctx context.Context, spaceID string, opts confluence.ListQuery) (*confluence.ContentListResponse, error)
	ListAllSpaces(ctx context.Context, query confluence.SpacesQuery) ([]confluence.Space, error)
}

// Record is one unit of output.  Exactly one of Node, Space or Err is set.
type Record struct {
	// Index of the input item this record came from.
	Item int

	Node  *confluence.ContentNode
	Space *confluence.Space
	Err   string
}

func (r Record) MarshalJSON() ([]byte, error) {
	switch {
	case r.Err != "":
		return json.Marshal(map[string]string{"error": r.Err})
	case r.Node != nil:
		return json.Marshal(r.Node)
	case r.Space != nil:
		return json.Marshal(r.Space)
	}
	return []byte("null"), nil
}

type Runner struct {
	Client Client

	// Concurrency caps in-flight child fetches per item.
	Concurrency int

	// ContinueOnFail turns a failed item into an error record instead of aborting the run.
	ContinueOnFail bool

	// Nested emits only the forest roots, each carrying its subtree.  By default every node at
	// every depth is emitted as its own record.
	Nested bool

	Logger   zerolog.Logger
	Progress hierarchy.Progress
}

// Run processes items in order and collects their records.
func (r *Runner) Run(ctx context.Context, items []Params) ([]Record, error) {
	records := []Record{}

	for i, params := range items {
		out, err := r.runItem(ctx, i, params)
		if err != nil {
			if r.ContinueOnFail && ctx.Err() == nil {
				r.Logger.Warn().Err(err).Int("item", i).Msg("item failed, continuing")
				records = append(records, Record{Item: i, Err: err.Error()})
				continue
			}
			return nil, fmt.Errorf("operation: item %d: %w", i, err)
		}
		records = append(records, out...)
	}

	return records, nil
}

func (r *Runner) runItem(ctx context.Context, item int, params Params) ([]Record, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	log := r.Logger.With().Int("item", item).Str("operation", string(params.Operation)).Logger()

	switch params.Operation {
	case ListSpaces:
		spaces, err := r.Client.ListAllSpaces(ctx, confluence.SpacesQuery{Limit: params.Limit, Type: params.SpaceType})
		if err != nil {
			return nil, err
		}
		log.Debug().Int("spaces", len(spaces)).Msg("listed spaces")

		records := make([]Record, 0, len(spaces))
		for i := range spaces {
			records = append(records, Record{Item: item, Space: &spaces[i]})
		}
		return records, nil

	case ListPages:
		pages, err := r.listPages(ctx, log, params)
		if err != nil {
			return nil, err
		}
		if !params.IncludeHierarchy {
			return nodeRecords(item, pages), nil
		}
		if err := r.build(ctx, log, params, pages); err != nil {
			return nil, err
		}
		return r.emit(item, pages), nil

	case GetHierarchy:
		pages, err := r.listPages(ctx, log, params)
		if err != nil {
			return nil, err
		}
		roots := hierarchy.Roots(pages)
		log.Debug().Int("pages", len(pages)).Int("roots", len(roots)).Msg("selected root pages")
		if err := r.build(ctx, log, params, roots); err != nil {
			return nil, err
		}
		return r.emit(item, roots), nil
	}

	return nil, fmt.Errorf("operation: unreachable operation %q", params.Operation)
}

func (r *Runner) listPages(ctx context.Context, log zerolog.Logger, params Params) ([]*confluence.ContentNode, error) {
	resp, err := r.Client.ListPagesInSpace(ctx, params.SpaceID, confluence.ListQuery{Limit: params.Limit})
	if err != nil {
		return nil, err
	}
	if resp.Truncated() {
		log.Warn().
			Str("space", params.SpaceID).
			Int("limit", params.Limit).
			Msg("space has more pages than the limit; only the first page of results is used")
	}
	return resp.Results, nil
}

func (r *Runner) build(ctx context.Context, log zerolog.Logger, params Params, roots []*confluence.ContentNode) error {
	b := hierarchy.NewBuilder(r.Client, params.BuildDepth(), r.Concurrency)
	b.Logger = log
	b.Progress = r.Progress

	if err := b.BuildForest(ctx, roots); err != nil {
		return err
	}
	log.Debug().Int("roots", len(roots)).Int("nodes", hierarchy.Count(roots)).Msg("built hierarchy")
	return nil
}

func (r *Runner) emit(item int, forest []*confluence.ContentNode) []Record {
	if r.Nested {
		return nodeRecords(item, forest)
	}
	return nodeRecords(item, hierarchy.Flatten(forest))
}

func nodeRecords(item int, nodes []*confluence.ContentNode) []Record {
	records := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		records = append(records, Record{Item: item, Node: n})
	}
	return records
}
