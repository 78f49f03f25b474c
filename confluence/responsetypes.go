package confluence

type ResponseLinks struct {
	// Contains the relative URL for the next set of results, using a cursor query
	// parameter. This property will not be present if there is no additional data available.
	Next string `json:"next,omitempty"`
}

// AllSpaces response type
type AllSpaces struct {
	Results []Space       `json:"results"`
	Links   ResponseLinks `json:"_links"`
}

// ContentListResponse is the shape of both the pages-in-space and the page-children listings.
type ContentListResponse struct {
	Results []*ContentNode `json:"results"`
	Links   ResponseLinks  `json:"_links"`
}

// Truncated is true when Confluence has more results than it gave us.
func (r *ContentListResponse) Truncated() bool {
	return r.Links.Next != ""
}
