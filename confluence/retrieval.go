package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func clampLimit(limit int) int {
	if limit < 1 || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}

// ListPagesInSpace fetches one page of results from the space's page listing.  It doesn't follow
// the `next` link: callers can look at Truncated() to see whether anything was left behind.
func (api *API) ListPagesInSpace(ctx context.Context, spaceID string, opts ListQuery) (*ContentListResponse, error) {
	ep, err := pagesInSpaceEndpoint(spaceID)
	if err != nil {
		return nil, err
	}
	opts.Limit = clampLimit(opts.Limit)

	var pages ContentListResponse
	if err := api.Request(ctx, http.MethodGet, ep, opts, &pages); err != nil {
		return nil, fmt.Errorf("confluence: couldn't list pages in space %s: %w", spaceID, err)
	}

	return &pages, nil
}

// ListPageChildren fetches the direct children of a page, keeping only pages and folders.
func (api *API) ListPageChildren(ctx context.Context, pageID string, opts ListQuery) (*ContentListResponse, error) {
	ep, err := pageChildrenEndpoint(pageID)
	if err != nil {
		return nil, err
	}
	opts.Limit = clampLimit(opts.Limit)

	var children ContentListResponse
	if err := api.Request(ctx, http.MethodGet, ep, opts, &children); err != nil {
		return nil, fmt.Errorf("confluence: couldn't list children of %s: %w", pageID, err)
	}

	children.Results = ContentOnly(children.Results)
	return &children, nil
}

// ContentOnly drops everything that isn't a page or folder, preserving order.
func ContentOnly(nodes []*ContentNode) []*ContentNode {
	kept := make([]*ContentNode, 0, len(nodes))
	for _, n := range nodes {
		if n != nil && n.Kind.IsContent() {
			kept = append(kept, n)
		}
	}
	return kept
}

func (api *API) GetPageByID(ctx context.Context, opts GetPageByIDQuery) (*ContentNode, error) {
	ep, err := pageByIDEndpoint(opts.ID)
	if err != nil {
		return nil, err
	}

	var page ContentNode
	if err := api.Request(ctx, http.MethodGet, ep, opts, &page); err != nil {
		return nil, fmt.Errorf("confluence: couldn't get page %s: %w", opts.ID, err)
	}

	return &page, nil
}

// ListAllSpaces walks the whole space listing, following cursors until Confluence runs out.
func (api *API) ListAllSpaces(ctx context.Context, query SpacesQuery) ([]Space, error) {
	spaces := []Space{}
	query.Limit = clampLimit(query.Limit)

	for {
		var allspaces AllSpaces
		if err := api.Request(ctx, http.MethodGet, spacesEndpoint, query, &allspaces); err != nil {
			return nil, fmt.Errorf("confluence: couldn't list spaces: %w", err)
		}

		spaces = append(spaces, allspaces.Results...)

		if allspaces.Links.Next == "" {
			break
		}

		q, err := url.Parse(allspaces.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
		}
		query.Cursor = q.Query().Get("cursor")
		if query.Cursor == "" {
			return nil, fmt.Errorf("confluence: expected parameter 'cursor' was empty")
		}
	}

	return spaces, nil
}

// CurrentUser return current user information
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.resolveEndpoint(currentUserEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get current user endpoint: %w", err)
	}

	var user User
	if err := api.do(ctx, http.MethodGet, ep, &user); err != nil {
		return nil, fmt.Errorf("confluence: couldn't get current user: %w", err)
	}

	return &user, nil
}
