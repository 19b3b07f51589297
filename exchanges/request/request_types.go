package request

import (
	"fmt"
	"io"
	"net/http"
)

const userAgent = "User-Agent"

// Requester struct for the request client
type Requester struct {
	HTTPClient *http.Client
	Name       string
	UserAgent  string
}

// RequesterOption is a function option that can be applied to configure a
// Requester when creating it.
type RequesterOption func(*Requester)

// Item is a temp item for requests
type Item struct {
	Method        string
	Path          string
	Headers       map[string]string
	Body          io.Reader
	Result        any
	Verbose       bool
	HTTPDebugging bool
	// HeaderResponse receives the response headers when set
	HeaderResponse *http.Header
}

// Generate defines a closure for functionality outside of the requester to
// generate a new *http.Request on every attempt.
type Generate func() (*Item, error)

// HTTPError is returned when the server answers with a non 2xx status code
type HTTPError struct {
	Name       string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s unsuccessful HTTP status code: %d raw response: %s",
		e.Name,
		e.StatusCode,
		string(e.Body))
}
