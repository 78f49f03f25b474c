package confluence

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	apiV2Prefix = "/api/v2"
	apiV1Prefix = "/rest/api"
)

// spacesEndpoint is the (v2) API endpoint to list spaces
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get
const spacesEndpoint = "/spaces"

// pagesInSpaceEndpoint returns the (v2) API endpoint to list pages of one space:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-spaces-id-pages-get
func pagesInSpaceEndpoint(spaceID string) (string, error) {
	if spaceID == "" {
		return "", fmt.Errorf("confluence: please provide space ID to list pages")
	}
	return fmt.Sprintf("/spaces/%s/pages", url.PathEscape(spaceID)), nil
}

// pageChildrenEndpoint returns the (v2) API endpoint to list the direct children of a page:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-children/#api-pages-id-children-get
func pageChildrenEndpoint(pageID string) (string, error) {
	if pageID == "" {
		return "", fmt.Errorf("confluence: please provide page ID to list children")
	}
	return fmt.Sprintf("/pages/%s/children", url.PathEscape(pageID)), nil
}

// pageByIDEndpoint returns the (v2) API endpoint to download one page:
// https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-page/#api-pages-id-get
func pageByIDEndpoint(pageID string) (string, error) {
	if pageID == "" {
		return "", fmt.Errorf("confluence: please provide ID to get page by ID")
	}
	return fmt.Sprintf("/pages/%s", url.PathEscape(pageID)), nil
}

// currentUserEndpoint is the (v1) API endpoint to query current user
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
//
// This API is supported.
const currentUserEndpoint = apiV1Prefix + "/user/current"

// Append the endpoint to the base URI's path and encode params as its query string.  params is
// either a go-querystring tagged struct, url.Values, or nil.
func (a *API) resolveEndpoint(endpoint string, params any) (*url.URL, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("confluence: failed to parse endpoint ref: %w", err)
	}

	ep := *a.BaseURI
	ep.Path = strings.TrimSuffix(ep.Path, "/") + ref.Path
	ep.RawPath = ""

	var v url.Values
	switch p := params.(type) {
	case nil:
		v = url.Values{}
	case url.Values:
		v = p
	case map[string]string:
		v = url.Values{}
		for key, value := range p {
			v.Set(key, value)
		}
	default:
		v, err = query.Values(params)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
		}
	}
	ep.RawQuery = v.Encode()

	return &ep, nil
}
