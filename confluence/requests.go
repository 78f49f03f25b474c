package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// APIError is what every failed call against Confluence turns into.  Transport problems, non-2xx
// responses and undecodable bodies all look the same to the caller; only the message differs.
type APIError struct {
	Err error
}

func (e *APIError) Error() string {
	return "Confluence API Error: " + e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// Request performs one authenticated call against the v2 API and decodes the JSON response into
// out.  endpoint is relative to {BaseURI}/api/v2, e.g. "/pages/123/children".
func (api *API) Request(ctx context.Context, method string, endpoint string, params any, out any) error {
	if !supportedMethod(method) {
		return fmt.Errorf("confluence: unsupported HTTP method %q", method)
	}

	ep, err := api.resolveEndpoint(apiV2Prefix+endpoint, params)
	if err != nil {
		return &APIError{Err: err}
	}

	return api.do(ctx, method, ep, out)
}

func (api *API) do(ctx context.Context, method string, ep *url.URL, out any) error {
	body, err := api.request(ctx, method, ep)
	if err != nil {
		return &APIError{Err: err}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Err: fmt.Errorf("couldn't parse json response: %w", err)}
	}

	return nil
}

// request implements the basic round trip.  Error messages here end up inside an APIError, so they
// don't repeat the package prefix.
func (api *API) request(ctx context.Context, method string, url *url.URL) ([]byte, error) {
	if api.limiter != nil {
		if err := api.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't instantiate http request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	// if user & token are not set, do not add authorization header
	if api.username != "" && api.token != "" {
		req.SetBasicAuth(api.username, api.token)
	}

	response, err := api.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't perform http request: %w", err)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		response.Body.Close()
		return nil, fmt.Errorf("couldn't read http response body: %w", err)
	}

	if err := response.Body.Close(); err != nil {
		return nil, fmt.Errorf("couldn't close response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return body, nil
	}

	switch response.StatusCode {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("authentication failed: %s", response.Status)
	case http.StatusForbidden:
		return nil, fmt.Errorf("permission denied: %s: %s", response.Status, url.Path)
	case http.StatusNotFound:
		return nil, fmt.Errorf("not found: %s: %s", response.Status, url.Path)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited: %s", response.Status)
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("service is not available: %s", response.Status)
	case http.StatusInternalServerError:
		return nil, fmt.Errorf("internal server error: %s", response.Status)
	}

	return nil, fmt.Errorf("unknown HTTP response status: %s: %s", response.Status, url.String())
}
