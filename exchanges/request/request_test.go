package request

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gct-labs/ftxapi/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sm := http.NewServeMux()
	sm.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Echo-Agent", req.Header.Get(userAgent))
		w.Header().Set("X-Echo-Custom", req.Header.Get("X-Custom"))
		body, _ := io.ReadAll(req.Body)
		if len(body) > 0 {
			_, _ = w.Write(body)
			return
		}
		_, _ = io.WriteString(w, `{"response":true}`)
	})
	sm.HandleFunc("/error", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"error":"Not logged in"}`)
	})
	sm.HandleFunc("/garbage", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	})
	sm.HandleFunc("/slow", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = io.WriteString(w, `{}`)
	})
	srv := httptest.NewServer(sm)
	t.Cleanup(srv.Close)
	return srv
}

func TestSendPayloadValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var r *Requester
	assert.ErrorIs(t, r.SendPayload(ctx, nil), errRequestSystemIsNil)

	r = New("test", nil)
	assert.ErrorIs(t, r.SendPayload(ctx, nil), errRequestFunctionIsNil)
	assert.ErrorIs(t, r.SendPayload(ctx, func() (*Item, error) { return &Item{}, nil }), errHTTPClientIsNil)

	r = New("test", new(http.Client))
	assert.ErrorIs(t, r.SendPayload(ctx, func() (*Item, error) { return nil, nil }), errRequestItemNil)
	assert.ErrorIs(t, r.SendPayload(ctx, func() (*Item, error) { return &Item{Method: http.MethodGet}, nil }), errInvalidPath)

	var nilHeaders http.Header
	err := r.SendPayload(ctx, func() (*Item, error) {
		return &Item{Method: http.MethodGet, Path: "http://localhost", HeaderResponse: &nilHeaders}, nil
	})
	assert.ErrorIs(t, err, errHeaderResponseMapIsNil)

	errGenerate := errors.New("generate failed")
	assert.ErrorIs(t, r.SendPayload(ctx, func() (*Item, error) { return nil, errGenerate }), errGenerate)
}

func TestSendPayload(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	r := New("test", srv.Client(), WithUserAgent("ftxapi-go"))

	var resp struct {
		Response bool `json:"response"`
	}
	headers := http.Header{}
	err := r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{
			Method:         http.MethodGet,
			Path:           srv.URL + "/",
			Headers:        map[string]string{"X-Custom": "yes"},
			Result:         &resp,
			Verbose:        true,
			HTTPDebugging:  true,
			HeaderResponse: &headers,
		}, nil
	})
	require.NoError(t, err, "SendPayload must not error")
	assert.True(t, resp.Response)
	assert.Equal(t, "ftxapi-go", headers.Get("X-Echo-Agent"))
	assert.Equal(t, "yes", headers.Get("X-Echo-Custom"))

	err = r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{
			Method:         http.MethodPost,
			Path:           srv.URL + "/",
			Headers:        map[string]string{userAgent: "override"},
			Body:           strings.NewReader(`{"response":false}`),
			Result:         &resp,
			HeaderResponse: &headers,
		}, nil
	})
	require.NoError(t, err, "SendPayload must not error")
	assert.False(t, resp.Response, "body should be echoed back")
	assert.Equal(t, "override", headers.Get("X-Echo-Agent"), "item headers should win over the requester user agent")
}

func TestSendPayloadHTTPError(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	r := New("test", srv.Client())
	err := r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{Method: http.MethodGet, Path: srv.URL + "/error"}, nil
	})
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":"Not logged in"}`, string(httpErr.Body))
	assert.Contains(t, err.Error(), "400")
}

func TestSendPayloadDecodeError(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	r := New("test", srv.Client())
	var resp map[string]any
	err := r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{Method: http.MethodGet, Path: srv.URL + "/garbage", Result: &resp}, nil
	})
	var decodeErr *common.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "<html>", string(decodeErr.Raw))
}

func TestSendPayloadTransportError(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	r := New("test", srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.SendPayload(ctx, func() (*Item, error) {
		return &Item{Method: http.MethodGet, Path: srv.URL + "/slow"}, nil
	})
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	err = r.SendPayload(context.Background(), func() (*Item, error) {
		return &Item{Method: http.MethodGet, Path: closed.URL}, nil
	})
	assert.ErrorIs(t, err, common.ErrTransport)
}
