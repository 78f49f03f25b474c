package operation

import (
	"fmt"

	"github.com/toothbrush/confluence-tree/confluence"
	"github.com/toothbrush/confluence-tree/hierarchy"
)

type Operation string

const (
	ListSpaces   Operation = "list-spaces"
	ListPages    Operation = "list-pages"
	GetHierarchy Operation = "get-hierarchy"
)

func ParseOperation(s string) (Operation, error) {
	switch op := Operation(s); op {
	case ListSpaces, ListPages, GetHierarchy:
		return op, nil
	}
	return "", fmt.Errorf("operation: unknown operation %q (want %s, %s or %s)", s, ListSpaces, ListPages, GetHierarchy)
}

// DepthControl picks between walking the whole tree and stopping at MaxDepth.
type DepthControl string

const (
	FullDepth    DepthControl = "full"
	LimitedDepth DepthControl = "limited"
)

const (
	DefaultMaxDepth = 3
	MinMaxDepth     = 1
	MaxMaxDepth     = 10
)

// Params are the per-item inputs of an operation.
type Params struct {
	Operation Operation `json:"operation" yaml:"operation"`
	SpaceID   string    `json:"spaceId,omitempty" yaml:"spaceId,omitempty"`
	Limit     int       `json:"limit,omitempty" yaml:"limit,omitempty"`

	// Only meaningful for list-pages.
	IncludeHierarchy bool `json:"includeHierarchy,omitempty" yaml:"includeHierarchy,omitempty"`

	DepthControl DepthControl `json:"depthControl,omitempty" yaml:"depthControl,omitempty"`
	MaxDepth     int          `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`

	// Only meaningful for list-spaces: "global", "personal", or empty for both.
	SpaceType string `json:"spaceType,omitempty" yaml:"spaceType,omitempty"`
}

// Validate fills in defaults and checks ranges.
func (p *Params) Validate() error {
	if _, err := ParseOperation(string(p.Operation)); err != nil {
		return err
	}

	if p.Operation != ListSpaces && p.SpaceID == "" {
		return fmt.Errorf("operation: %s needs a space ID", p.Operation)
	}

	if p.Limit == 0 {
		p.Limit = confluence.DefaultLimit
	}
	if p.Limit < 1 || p.Limit > confluence.MaxLimit {
		return fmt.Errorf("operation: limit %d out of range 1-%d", p.Limit, confluence.MaxLimit)
	}

	if p.DepthControl == "" {
		p.DepthControl = FullDepth
	}
	switch p.DepthControl {
	case FullDepth:
	case LimitedDepth:
		if p.MaxDepth == 0 {
			p.MaxDepth = DefaultMaxDepth
		}
		if p.MaxDepth < MinMaxDepth || p.MaxDepth > MaxMaxDepth {
			return fmt.Errorf("operation: max depth %d out of range %d-%d", p.MaxDepth, MinMaxDepth, MaxMaxDepth)
		}
	default:
		return fmt.Errorf("operation: unknown depth control %q (want %s or %s)", p.DepthControl, FullDepth, LimitedDepth)
	}

	return nil
}

// BuildDepth translates the depth control into the builder's MaxDepth.
func (p Params) BuildDepth() int {
	if p.DepthControl == LimitedDepth {
		return p.MaxDepth
	}
	return hierarchy.Unbounded
}
