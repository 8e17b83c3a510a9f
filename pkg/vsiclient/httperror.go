package vsiclient

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// httpError reports a non-2xx response from the forensics service, carrying
// enough of the request/response pair to diagnose it without a packet
// capture: the method, URL, status code, and response body.
type httpError struct {
	method     string
	url        string
	statusCode int
	body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.method, e.url, e.statusCode, e.body)
}

func newHTTPError(resp *resty.Response) error {
	req := resp.Request
	return &httpError{
		method:     req.Method,
		url:        req.URL,
		statusCode: resp.StatusCode(),
		body:       string(resp.Body()),
	}
}
