package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gct-labs/ftxapi/common"
	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/gct-labs/ftxapi/exchanges/request"
	"github.com/gct-labs/ftxapi/log"
	"github.com/gorilla/websocket"
)

// ErrWebsocketIsDisconnected is returned by any operation on a connection
// which has been shut down or closed by the peer
var ErrWebsocketIsDisconnected = errors.New("websocket connection is disconnected")

const closeWriteTimeout = time.Second

// Dial sets proxy urls and then connects to the websocket
func (w *WebsocketConnection) Dial(ctx context.Context, dialer *websocket.Dialer, headers http.Header) error {
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 45 * time.Second,
		}
	}
	if w.ProxyURL != "" {
		proxy, err := url.Parse(w.ProxyURL)
		if err != nil {
			return err
		}
		dialer.Proxy = http.ProxyURL(proxy)
	}

	conn, conStatus, err := dialer.DialContext(ctx, w.URL, headers)
	if err != nil {
		if conStatus != nil {
			return fmt.Errorf("%w: %s websocket connection: %v %v Error: %w", common.ErrTransport, w.ExchangeName, removeURLQueryString(w.URL), conStatus.StatusCode, err)
		}
		return fmt.Errorf("%w: %s websocket connection: %v Error: %w", common.ErrTransport, w.ExchangeName, removeURLQueryString(w.URL), err)
	}
	if conStatus != nil && conStatus.Body != nil {
		conStatus.Body.Close()
	}
	w.Connection = conn

	if w.Verbose {
		log.Infof(log.WebsocketMgr, "%v Websocket connected to %s", w.ExchangeName, removeURLQueryString(w.URL))
	}
	w.setConnectedStatus(true)
	return nil
}

// SendJSONMessage sends a JSON encoded message over the connection
func (w *WebsocketConnection) SendJSONMessage(ctx context.Context, data any) error {
	msg, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return w.SendRawMessage(ctx, websocket.TextMessage, msg)
}

// SendRawMessage sends a message over the connection without JSON encoding it
func (w *WebsocketConnection) SendRawMessage(ctx context.Context, messageType int, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !w.IsConnected() {
		return fmt.Errorf("%v websocket connection: cannot send message %w", w.ExchangeName, ErrWebsocketIsDisconnected)
	}
	if request.IsVerbose(ctx, w.Verbose) {
		log.Debugf(log.WebsocketMgr, "%v %v: Sending message: %v", w.ExchangeName, removeURLQueryString(w.URL), string(message))
	}

	w.writeControl.Lock()
	defer w.writeControl.Unlock()
	if d, ok := ctx.Deadline(); ok {
		if err := w.Connection.SetWriteDeadline(d); err != nil {
			return err
		}
		defer func() { _ = w.Connection.SetWriteDeadline(time.Time{}) }()
	}
	if err := w.Connection.WriteMessage(messageType, message); err != nil {
		return fmt.Errorf("%w: %s websocket write: %w", common.ErrTransport, w.ExchangeName, err)
	}
	return nil
}

// setConnectedStatus sets connection status if changed it will return true.
func (w *WebsocketConnection) setConnectedStatus(b bool) bool {
	if b {
		return atomic.SwapInt32(&w.connected, 1) == 0
	}
	return atomic.SwapInt32(&w.connected, 0) == 1
}

// IsConnected exposes websocket connection status
func (w *WebsocketConnection) IsConnected() bool {
	return atomic.LoadInt32(&w.connected) == 1
}

// ReadMessage blocks until the next frame arrives. A close frame from the peer
// is returned as a Response of type websocket.CloseMessage and leaves the
// connection disconnected. Once disconnected ErrWebsocketIsDisconnected is
// returned.
func (w *WebsocketConnection) ReadMessage() (Response, error) {
	if w.Connection == nil || !w.IsConnected() {
		return Response{}, ErrWebsocketIsDisconnected
	}
	mType, resp, err := w.Connection.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			if !w.setConnectedStatus(false) {
				return Response{}, ErrWebsocketIsDisconnected
			}
			if w.Verbose {
				log.Debugf(log.WebsocketMgr, "%v %v: Close frame received: %d %s", w.ExchangeName, removeURLQueryString(w.URL), closeErr.Code, closeErr.Text)
			}
			return Response{Type: websocket.CloseMessage, Raw: []byte(closeErr.Text), CloseCode: closeErr.Code}, nil
		}
		// gorilla does not recover from read errors
		if !w.setConnectedStatus(false) {
			return Response{}, ErrWebsocketIsDisconnected
		}
		return Response{}, fmt.Errorf("%w: %s websocket read: %w", common.ErrTransport, w.ExchangeName, err)
	}

	if w.Verbose {
		log.Debugf(log.WebsocketMgr, "%v %v: Message received: %v", w.ExchangeName, removeURLQueryString(w.URL), string(resp))
	}
	return Response{Raw: resp, Type: mType}, nil
}

// Shutdown sends a normal closure frame if the connection is still up, then
// closes the underlying connection. Calling it more than once is safe.
func (w *WebsocketConnection) Shutdown() error {
	if w == nil || w.Connection == nil {
		return nil
	}
	if w.setConnectedStatus(false) {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := w.Connection.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout)); err != nil && w.Verbose {
			log.Warnf(log.WebsocketMgr, "%v websocket close frame not sent: %v", w.ExchangeName, err)
		}
	}
	var err error
	w.closeOnce.Do(func() {
		err = w.Connection.UnderlyingConn().Close()
	})
	return err
}

// SetURL sets connection URL
func (w *WebsocketConnection) SetURL(url string) {
	w.URL = url
}

// SetProxy sets connection proxy
func (w *WebsocketConnection) SetProxy(proxy string) {
	w.ProxyURL = proxy
}

// GetURL returns the connection URL
func (w *WebsocketConnection) GetURL() string {
	return w.URL
}

func removeURLQueryString(url string) string {
	if index := strings.Index(url, "?"); index != -1 {
		return url[:index]
	}
	return url
}
