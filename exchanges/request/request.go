package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/gct-labs/ftxapi/common"
	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/gct-labs/ftxapi/log"
)

var (
	errRequestSystemIsNil     = errors.New("request system is nil")
	errRequestFunctionIsNil   = errors.New("request function is nil")
	errHTTPClientIsNil        = errors.New("http client is nil")
	errRequestItemNil         = errors.New("request item is nil")
	errInvalidPath            = errors.New("invalid path")
	errHeaderResponseMapIsNil = errors.New("header response map is nil")
)

// New returns a new Requester
func New(name string, httpRequester *http.Client, opts ...RequesterOption) *Requester {
	r := &Requester{
		HTTPClient: httpRequester,
		Name:       name,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// WithUserAgent sets the User-Agent header attached to every request which
// does not set its own
func WithUserAgent(ua string) RequesterOption {
	return func(r *Requester) {
		r.UserAgent = ua
	}
}

// SendPayload sends a single HTTP/HTTPS request built by newRequest. There is
// no retry: the first transport error or unsuccessful status is returned.
func (r *Requester) SendPayload(ctx context.Context, newRequest Generate) error {
	if r == nil {
		return errRequestSystemIsNil
	}
	if newRequest == nil {
		return errRequestFunctionIsNil
	}
	if r.HTTPClient == nil {
		return errHTTPClientIsNil
	}

	p, err := newRequest()
	if err != nil {
		return err
	}

	req, err := p.validateRequest(ctx, r)
	if err != nil {
		return err
	}

	verbose := IsVerbose(ctx, p.Verbose)
	if verbose {
		log.Debugf(log.RequestSys, "%s request path: %s", r.Name, p.Path)
		for k, d := range req.Header {
			log.Debugf(log.RequestSys, "%s request header [%s]: %s", r.Name, k, d)
		}
		log.Debugf(log.RequestSys, "%s request type: %s", r.Name, p.Method)
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", common.ErrTransport, p.Method, p.Path, err)
	}
	defer resp.Body.Close()

	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s response: %w", common.ErrTransport, p.Path, err)
	}

	if p.HeaderResponse != nil {
		for k, v := range resp.Header {
			(*p.HeaderResponse)[k] = v
		}
	}

	if p.HTTPDebugging {
		dump, err := httputil.DumpResponse(resp, false)
		if err != nil {
			log.Errorf(log.RequestSys, "DumpResponse invalid response: %v:", err)
		}
		log.Debugf(log.RequestSys, "DumpResponse Headers (%v):\n%s", p.Path, dump)
		log.Debugf(log.RequestSys, "DumpResponse Body (%v):\n %s", p.Path, string(contents))
	}

	if verbose {
		log.Debugf(log.RequestSys, "HTTP status: %s, Code: %v", resp.Status, resp.StatusCode)
		if !p.HTTPDebugging {
			log.Debugf(log.RequestSys, "%s raw response: %s", r.Name, string(contents))
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &HTTPError{Name: r.Name, StatusCode: resp.StatusCode, Body: contents}
	}

	if p.Result != nil {
		if err := json.Unmarshal(contents, p.Result); err != nil {
			return common.NewDecodeError(contents, err)
		}
	}
	return nil
}

// validateRequest validates the requester item fields
func (i *Item) validateRequest(ctx context.Context, r *Requester) (*http.Request, error) {
	if i == nil {
		return nil, errRequestItemNil
	}

	if i.Path == "" {
		return nil, errInvalidPath
	}

	if i.HeaderResponse != nil && *i.HeaderResponse == nil {
		return nil, errHeaderResponseMapIsNil
	}

	req, err := http.NewRequestWithContext(ctx, i.Method, i.Path, i.Body)
	if err != nil {
		return nil, err
	}

	for k, v := range i.Headers {
		req.Header.Add(k, v)
	}

	if r.UserAgent != "" && req.Header.Get(userAgent) == "" {
		req.Header.Add(userAgent, r.UserAgent)
	}

	if i.HTTPDebugging {
		// Err not evaluated due to validation check above
		dump, _ := httputil.DumpRequestOut(req, true)
		log.Debugf(log.RequestSys, "DumpRequest:\n%s", dump)
	}

	return req, nil
}
