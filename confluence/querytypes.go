package confluence

// SpacesQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get
type SpacesQuery struct {
	// Filter the results to spaces based on...
	IDs    []int    `url:"ids,omitempty,comma"`  // their IDs.
	Keys   []string `url:"keys,omitempty,comma"` // their keys.
	Type   string   `url:"type,omitempty"`       // their types. Valid values: "global" or "personal"
	Status string   `url:"status,omitempty"`     // their status: current, archived.

	Sort string `url:"sort,omitempty"` // Sort order: id, -id, key, -key, name, -name

	// 'Cursor' is used for pagination; this opaque cursor will be returned in the 'next' URL in the
	// 'Link' response header.  Use the relative URL in the 'Link' header to retrieve the next set
	// of results.
	Cursor string `url:"cursor,omitempty"`
	Limit  int    `url:"limit,omitempty"` // page limit; default 25, range 1-250
}

// ListQuery defines the query parameters shared by:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-spaces-id-pages-get
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-children/#api-pages-id-children-get
//
// We only ever ask for the first page, so Cursor is here for completeness.
type ListQuery struct {
	Limit  int    `url:"limit,omitempty"` // page limit; range 1-250
	Cursor string `url:"cursor,omitempty"`
}

// GetPageByIDQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-pages-id-get
type GetPageByIDQuery struct {
	ID string `url:"-"` // ID of the page; required

	IncludeDirectChildren bool `url:"include-direct-children"`
	// The content format types to be returned in the body field of the response. Valid values:
	// storage, atlas_doc_format, view, export_view, anonymous_export_view
	BodyFormat string `url:"body-format,omitempty"`
	Version    int    `url:"version,omitempty"`
}
