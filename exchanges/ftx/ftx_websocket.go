package ftx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/buger/jsonparser"
	"github.com/gct-labs/ftxapi/common"
	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/gct-labs/ftxapi/exchanges/stream"
	"github.com/gct-labs/ftxapi/log"
	"github.com/gorilla/websocket"
)

var (
	errUnknownMessageType = errors.New("unknown message type")
	errMissingData        = errors.New("message has no data")
	errNilSession         = errors.New("websocket session is nil")
	errNilMessage         = errors.New("websocket message is nil")
)

// Session is a single stream connection. Messages are read with Next or
// Messages and written with Send; reads and writes may run on separate
// goroutines. A session cannot be reused once closed.
type Session struct {
	name   string
	conn   *stream.WebsocketConnection
	closed atomic.Bool
}

// WsConnect dials the stream. The session is open once the handshake
// completes.
func (f *FTX) WsConnect(ctx context.Context) (*Session, error) {
	conn := &stream.WebsocketConnection{
		ExchangeName: f.Name,
		URL:          f.wsURL,
		Verbose:      f.Verbose,
	}
	headers := http.Header{}
	headers.Set("User-Agent", f.userAgent)
	if err := conn.Dial(ctx, f.dialer, headers); err != nil {
		return nil, err
	}
	if f.Verbose {
		log.Debugf(log.ExchangeSys, "%s connected to websocket", f.Name)
	}
	return &Session{name: f.Name, conn: conn}, nil
}

// WsLogin authenticates the session with the current credentials and sub
// account
func (f *FTX) WsLogin(ctx context.Context, s *Session) error {
	if s == nil {
		return errNilSession
	}
	creds, err := f.snapshotCredentials()
	if err != nil {
		return err
	}
	ts := f.now().UnixMilli()
	sig, err := creds.sign(BuildWsLoginPrehash(ts))
	if err != nil {
		return err
	}
	return s.Send(ctx, &WsLogin{
		Key:        creds.Key,
		Sign:       sig,
		Time:       ts,
		SubAccount: creds.SubAccount,
	})
}

// Send writes msg as a JSON text frame
func (s *Session) Send(ctx context.Context, msg WsOutMessage) error {
	if msg == nil {
		return errNilMessage
	}
	if s.closed.Load() {
		return fmt.Errorf("%s cannot send %s: %w", s.name, msg.op(), stream.ErrWebsocketIsDisconnected)
	}
	switch m := msg.(type) {
	case *WsSubscribe:
		if err := m.Channel.Validate(); err != nil {
			return err
		}
	case *WsUnsubscribe:
		if err := m.Channel.Validate(); err != nil {
			return err
		}
	}
	return s.conn.SendJSONMessage(ctx, msg)
}

// Subscribe sends a subscribe message for c
func (s *Session) Subscribe(ctx context.Context, c Channel) error {
	return s.Send(ctx, &WsSubscribe{Channel: c})
}

// Unsubscribe sends an unsubscribe message for c
func (s *Session) Unsubscribe(ctx context.Context, c Channel) error {
	return s.Send(ctx, &WsUnsubscribe{Channel: c})
}

// Ping sends an application level ping, answered by *WsPong
func (s *Session) Ping(ctx context.Context) error {
	return s.Send(ctx, &WsPing{})
}

// Next blocks until the next message arrives. A close frame or a "closed"
// message is returned as *WsClosed and ends the session. Once the session has ended, by close frame,
// read failure or Close, Next returns io.EOF.
func (s *Session) Next() (WsInMessage, error) {
	if s.closed.Load() {
		return nil, io.EOF
	}
	resp, err := s.conn.ReadMessage()
	if err != nil {
		s.closed.Store(true)
		if errors.Is(err, stream.ErrWebsocketIsDisconnected) {
			return nil, io.EOF
		}
		if shutErr := s.conn.Shutdown(); shutErr != nil {
			log.Debugf(log.WebsocketMgr, "%s websocket shutdown after read failure: %v", s.name, shutErr)
		}
		return nil, err
	}
	msg, err := decodeWsMessage(resp)
	if _, ok := msg.(*WsClosed); ok {
		s.closed.Store(true)
		if shutErr := s.conn.Shutdown(); shutErr != nil {
			log.Debugf(log.WebsocketMgr, "%s websocket shutdown after close: %v", s.name, shutErr)
		}
	}
	return msg, err
}

// Messages reads the session on a new goroutine until it ends or ctx is
// done, in which case the session is closed. The channel is closed when
// reading stops.
func (s *Session) Messages(ctx context.Context) <-chan WsResult {
	out := make(chan WsResult)
	go func() {
		defer close(out)
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				if err := s.Close(); err != nil {
					log.Debugf(log.WebsocketMgr, "%s websocket close: %v", s.name, err)
				}
			case <-done:
			}
		}()
		for {
			msg, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case out <- WsResult{Message: msg, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close ends the session. A pending Next returns io.EOF.
func (s *Session) Close() error {
	s.closed.Store(true)
	return s.conn.Shutdown()
}

// IsClosed returns whether the session has ended
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// decodeWsMessage maps a frame to a message. Text frames are decoded on the
// type field, close frames and "closed" messages become *WsClosed and any
// other frame kind is a protocol violation.
func decodeWsMessage(resp stream.Response) (WsInMessage, error) {
	switch resp.Type {
	case websocket.TextMessage:
	case websocket.CloseMessage:
		return &WsClosed{Code: resp.CloseCode, Reason: string(resp.Raw)}, nil
	case websocket.BinaryMessage:
		return nil, fmt.Errorf("%w: unexpected binary frame", common.ErrProtocolViolation)
	case websocket.PingMessage, websocket.PongMessage:
		return nil, fmt.Errorf("%w: unexpected control frame %d", common.ErrProtocolViolation, resp.Type)
	default:
		return nil, fmt.Errorf("%w: unknown frame type %d", common.ErrProtocolViolation, resp.Type)
	}

	msgType, err := jsonparser.GetString(resp.Raw, "type")
	if err != nil {
		return nil, common.NewDecodeError(resp.Raw, err)
	}
	switch msgType {
	case "pong":
		return &WsPong{}, nil
	case "closed":
		return &WsClosed{}, nil
	case "subscribed":
		c, err := decodeChannel(resp.Raw)
		if err != nil {
			return nil, err
		}
		return &WsSubscribed{Channel: c}, nil
	case "unsubscribed":
		c, err := decodeChannel(resp.Raw)
		if err != nil {
			return nil, err
		}
		return &WsUnsubscribed{Channel: c}, nil
	case "error":
		var m WsError
		if err := json.Unmarshal(resp.Raw, &m); err != nil {
			return nil, common.NewDecodeError(resp.Raw, err)
		}
		return &m, nil
	case "info":
		var m WsInfo
		if err := json.Unmarshal(resp.Raw, &m); err != nil {
			return nil, common.NewDecodeError(resp.Raw, err)
		}
		return &m, nil
	case "partial":
		d, err := decodeChannelData(resp.Raw)
		if err != nil {
			return nil, err
		}
		return &WsPartial{Data: d}, nil
	case "update":
		d, err := decodeChannelData(resp.Raw)
		if err != nil {
			return nil, err
		}
		return &WsUpdate{Data: d}, nil
	}
	return nil, common.NewDecodeError(resp.Raw, fmt.Errorf("%w %q", errUnknownMessageType, msgType))
}

// decodeChannel reads the channel and optional market fields
func decodeChannel(raw []byte) (Channel, error) {
	name, err := jsonparser.GetString(raw, "channel")
	if err != nil {
		return Channel{}, common.NewDecodeError(raw, err)
	}
	market, err := jsonparser.GetString(raw, "market")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return Channel{}, common.NewDecodeError(raw, err)
	}
	c := Channel{Name: ChannelName(name), Market: market}
	if err := c.Validate(); err != nil {
		return Channel{}, common.NewDecodeError(raw, err)
	}
	return c, nil
}

// decodeChannelData decodes the data field of a partial or update on the
// channel discriminator
func decodeChannelData(raw []byte) (ChannelData, error) {
	c, err := decodeChannel(raw)
	if err != nil {
		return nil, err
	}
	data, dataType, _, err := jsonparser.Get(raw, "data")
	if err != nil {
		return nil, common.NewDecodeError(raw, fmt.Errorf("%s %w: %w", c, errMissingData, err))
	}
	if dataType == jsonparser.Null {
		return nil, common.NewDecodeError(raw, fmt.Errorf("%s %w", c, errMissingData))
	}

	var d ChannelData
	switch c.Name {
	case ChannelOrderbook:
		ob := &OrderbookData{Market: c.Market}
		err = json.Unmarshal(data, &ob.Orderbook)
		d = ob
	case ChannelTrades:
		t := &TradesData{Market: c.Market}
		err = json.Unmarshal(data, &t.Trades)
		d = t
	case ChannelTicker:
		t := &TickerData{Market: c.Market}
		err = json.Unmarshal(data, &t.Ticker)
		d = t
	case ChannelMarkets:
		m := &MarketsData{}
		err = json.Unmarshal(data, &m.Markets)
		d = m
	case ChannelFills:
		f := &FillsData{}
		err = json.Unmarshal(data, &f.Fill)
		d = f
	case ChannelOrders:
		o := &OrdersData{}
		err = json.Unmarshal(data, &o.Order)
		d = o
	}
	if err != nil {
		return nil, common.NewDecodeError(raw, err)
	}
	return d, nil
}
