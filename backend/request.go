package backend

import (
	"fmt"
	"net/url"
)

// Request describes one HTTP call to the backend. URL is a path relative
// to the client's base URL; Params are sent as the query string and Data,
// when non-nil, as a JSON body.
type Request struct {
	Method string
	URL    string
	Params map[string]string
	Data   any
}

// Query is a cacheable GET. Key identifies the cached result; mutations
// name the keys they make stale.
type Query struct {
	Key     string
	Request Request
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

func (r Request) encodedQuery() string {
	if len(r.Params) == 0 {
		return ""
	}
	v := url.Values{}
	for k, p := range r.Params {
		v.Set(k, p)
	}
	return v.Encode()
}
