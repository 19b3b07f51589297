package ftx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gct-labs/ftxapi/common"
	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/gct-labs/ftxapi/exchanges/stream"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// drain reads until the client goes away
func drain(c *websocket.Conn) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// newWsTestFTX starts a stream server running handler for each connection
// and returns a client pointed at it
func newWsTestFTX(t *testing.T, handler func(*websocket.Conn), opts ...Option) *FTX {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != defaultUserAgent {
			http.Error(w, "unexpected user agent", http.StatusForbidden)
			return
		}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		handler(c)
	}))
	t.Cleanup(srv.Close)
	base := []Option{
		WithWebsocketURL("ws" + strings.TrimPrefix(srv.URL, "http")),
		WithClock(fixedClock),
		WithCredentials(testKey, testSecret, ""),
	}
	return New(append(base, opts...)...)
}

func text(s string) stream.Response {
	return stream.Response{Type: websocket.TextMessage, Raw: []byte(s)}
}

func TestDecodePong(t *testing.T) {
	t.Parallel()
	msg, err := decodeWsMessage(text(`{"type":"pong"}`))
	require.NoError(t, err)
	assert.IsType(t, &WsPong{}, msg)
}

func TestDecodeOrderbookPartial(t *testing.T) {
	t.Parallel()
	msg, err := decodeWsMessage(text(`{"type":"partial","channel":"orderbook","market":"BTC/USD","data":{"bids":[],"asks":[],"time":0.0,"checksum":0}}`))
	require.NoError(t, err, "decodeWsMessage must not error")
	p, ok := msg.(*WsPartial)
	require.True(t, ok, "message must be a partial")
	ob, ok := p.Data.(*OrderbookData)
	require.True(t, ok, "partial data must be an orderbook")
	assert.Equal(t, "BTC/USD", ob.Market)
	assert.Equal(t, OrderbookChannel("BTC/USD"), ob.Channel())
	assert.Empty(t, ob.Orderbook.Bids)
	assert.Empty(t, ob.Orderbook.Asks)
	assert.True(t, ob.Orderbook.Time.Time().IsZero(), "time 0.0 should decode to the zero time")
	assert.Zero(t, ob.Orderbook.Checksum)
}

func TestDecodeOrderbookUpdate(t *testing.T) {
	t.Parallel()
	msg, err := decodeWsMessage(text(`{"channel":"orderbook","market":"BTC-PERP","type":"update","data":{"time":1588591856.950,"checksum":3115602423,"bids":[[5970.5,0.0]],"asks":[[5971,1.25]],"action":"update"}}`))
	require.NoError(t, err)
	u, ok := msg.(*WsUpdate)
	require.True(t, ok, "message must be an update")
	ob := u.Data.(*OrderbookData)
	assert.Equal(t, "update", ob.Orderbook.Action)
	assert.Equal(t, uint32(3115602423), ob.Orderbook.Checksum)
	assert.Equal(t, time.UnixMilli(1588591856950), ob.Orderbook.Time.Time())
	require.Len(t, ob.Orderbook.Bids, 1)
	assert.True(t, ob.Orderbook.Bids[0].Size.IsZero(), "zero size marks a removed level")
	assert.True(t, decimal.RequireFromString("1.25").Equal(ob.Orderbook.Asks[0].Size))
}

func TestDecodeChannelData(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name  string
		raw   string
		check func(*testing.T, ChannelData)
	}{
		{
			name: "trades",
			raw:  `{"channel":"trades","market":"BTC-PERP","type":"update","data":[{"id":1,"price":9500,"size":0.1,"side":"buy","liquidation":false,"time":"2020-05-04T12:00:00.123456+00:00"}]}`,
			check: func(t *testing.T, d ChannelData) {
				t.Helper()
				td := d.(*TradesData)
				assert.Equal(t, "BTC-PERP", td.Market)
				require.Len(t, td.Trades, 1)
				assert.Equal(t, Buy, td.Trades[0].Side)
				assert.Equal(t, 123456000, td.Trades[0].Time.Nanosecond())
			},
		},
		{
			name: "ticker",
			raw:  `{"channel":"ticker","market":"BTC/USD","type":"update","data":{"bid":9500,"ask":9501,"bidSize":1,"askSize":2,"last":null,"time":1588591856.950}}`,
			check: func(t *testing.T, d ChannelData) {
				t.Helper()
				td := d.(*TickerData)
				assert.Equal(t, TickerChannel("BTC/USD"), td.Channel())
				assert.True(t, td.Ticker.Bid.Valid)
				assert.False(t, td.Ticker.Last.Valid, "null last should decode as invalid")
				assert.Equal(t, time.UnixMilli(1588591856950), td.Ticker.Time.Time())
			},
		},
		{
			name: "markets",
			raw:  `{"channel":"markets","type":"partial","data":{"action":"partial","data":{"BTC/USD":{"name":"BTC/USD","enabled":true,"priceIncrement":0.5,"sizeIncrement":0.0001,"type":"spot","baseCurrency":"BTC","quoteCurrency":"USD","restricted":false}}}}`,
			check: func(t *testing.T, d ChannelData) {
				t.Helper()
				md := d.(*MarketsData)
				assert.Equal(t, MarketsChannel(), md.Channel())
				assert.Equal(t, "partial", md.Markets.Action)
				require.Contains(t, md.Markets.Data, "BTC/USD")
				assert.True(t, decimal.RequireFromString("0.5").Equal(md.Markets.Data["BTC/USD"].PriceIncrement))
			},
		},
		{
			name: "fills",
			raw:  `{"channel":"fills","type":"update","data":{"fee":0.78,"feeRate":0.0014,"future":"BTC-PERP","id":7828307,"liquidity":"taker","market":"BTC-PERP","orderId":38065410,"tradeId":19129310,"price":3723.75,"side":"buy","size":1,"time":"2019-05-07T16:40:58.358438+00:00","type":"order"}}`,
			check: func(t *testing.T, d ChannelData) {
				t.Helper()
				fd := d.(*FillsData)
				assert.Equal(t, int64(38065410), fd.Fill.OrderID)
				assert.Equal(t, "taker", fd.Fill.Liquidity)
			},
		},
		{
			name: "orders",
			raw:  `{"channel":"orders","type":"update","data":{"id":24852229,"clientId":null,"market":"XRP-PERP","type":"limit","side":"buy","size":42353,"price":0.2977,"reduceOnly":false,"ioc":false,"postOnly":false,"status":"closed","filledSize":0,"remainingSize":0,"avgFillPrice":0.2978,"createdAt":"2021-05-02T22:40:07.217963+00:00"}}`,
			check: func(t *testing.T, d ChannelData) {
				t.Helper()
				od := d.(*OrdersData)
				assert.Equal(t, OrdersChannel(), od.Channel())
				assert.Equal(t, int64(24852229), od.Order.ID)
				assert.Equal(t, "closed", od.Order.Status)
				assert.True(t, od.Order.AvgFillPrice.Valid)
			},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			msg, err := decodeWsMessage(text(tc.raw))
			require.NoError(t, err, "decodeWsMessage must not error")
			var d ChannelData
			switch m := msg.(type) {
			case *WsPartial:
				d = m.Data
			case *WsUpdate:
				d = m.Data
			default:
				require.Failf(t, "unexpected message", "%T", msg)
			}
			tc.check(t, d)
		})
	}
}

func TestDecodeControlMessages(t *testing.T) {
	t.Parallel()
	msg, err := decodeWsMessage(text(`{"type":"subscribed","channel":"orderbook","market":"BTC/USD"}`))
	require.NoError(t, err)
	assert.Equal(t, &WsSubscribed{Channel: OrderbookChannel("BTC/USD")}, msg)

	msg, err = decodeWsMessage(text(`{"type":"unsubscribed","channel":"fills"}`))
	require.NoError(t, err)
	assert.Equal(t, &WsUnsubscribed{Channel: FillsChannel()}, msg)

	msg, err = decodeWsMessage(text(`{"type":"error","code":400,"msg":"Already logged in"}`))
	require.NoError(t, err)
	assert.Equal(t, &WsError{Code: 400, Msg: "Already logged in"}, msg)

	msg, err = decodeWsMessage(text(`{"type":"info","code":20001,"msg":"Server restarting"}`))
	require.NoError(t, err)
	assert.Equal(t, &WsInfo{Code: 20001, Msg: "Server restarting"}, msg)

	msg, err = decodeWsMessage(text(`{"type":"closed"}`))
	require.NoError(t, err, "a closed message is not an error")
	assert.Equal(t, &WsClosed{}, msg)
}

func TestDecodeFrames(t *testing.T) {
	t.Parallel()
	msg, err := decodeWsMessage(stream.Response{Type: websocket.CloseMessage, Raw: []byte("bye"), CloseCode: websocket.CloseGoingAway})
	require.NoError(t, err, "a close frame is not an error")
	assert.Equal(t, &WsClosed{Code: websocket.CloseGoingAway, Reason: "bye"}, msg)

	for _, frame := range []int{websocket.BinaryMessage, websocket.PingMessage, websocket.PongMessage, 42} {
		_, err = decodeWsMessage(stream.Response{Type: frame, Raw: []byte(`{"type":"pong"}`)})
		assert.ErrorIs(t, err, common.ErrProtocolViolation, "frame type %d should be a protocol violation", frame)
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		raw string
		err error
	}{
		{`{"type":"nope"}`, errUnknownMessageType},
		{`{"type":"partial","channel":"candles","market":"BTC/USD","data":{}}`, errUnknownChannel},
		{`{"type":"partial","channel":"orderbook","data":{}}`, errChannelMarketMissing},
		{`{"type":"subscribed","channel":"fills","market":"BTC/USD"}`, errChannelMarketSet},
		{`{"type":"update","channel":"fills","data":null}`, errMissingData},
		{`{"type":"update","channel":"fills"}`, errMissingData},
		{`{"type":"update","channel":"trades","market":"BTC/USD","data":{"id":1}}`, nil},
		{`{"channel":"fills"}`, nil},
		{`not json`, nil},
	} {
		_, err := decodeWsMessage(text(tc.raw))
		var decErr *common.DecodeError
		require.ErrorAsf(t, err, &decErr, "%s must return a DecodeError", tc.raw)
		assert.Equal(t, tc.raw, string(decErr.Raw), "DecodeError should carry the raw payload")
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err)
		}
	}
}

func TestOutboundMessages(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		msg WsOutMessage
		exp string
	}{
		{&WsSubscribe{Channel: OrderbookChannel("BTC/USD")}, `{"op":"subscribe","channel":"orderbook","market":"BTC/USD"}`},
		{&WsUnsubscribe{Channel: TradesChannel("BTC-PERP")}, `{"op":"unsubscribe","channel":"trades","market":"BTC-PERP"}`},
		{&WsSubscribe{Channel: MarketsChannel()}, `{"op":"subscribe","channel":"markets"}`},
		{&WsPing{}, `{"op":"ping"}`},
		{&WsLogin{Key: "k", Sign: "s", Time: 1}, `{"op":"login","args":{"key":"k","sign":"s","time":1}}`},
		{&WsLogin{Key: "k", Sign: "s", Time: 1, SubAccount: "sub"}, `{"op":"login","args":{"key":"k","sign":"s","time":1,"subaccount":"sub"}}`},
	} {
		b, err := json.Marshal(tc.msg)
		require.NoError(t, err)
		assert.Equal(t, tc.exp, string(b))
	}
}

func TestChannelValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, OrderbookChannel("BTC/USD").Validate())
	assert.NoError(t, OrdersChannel().Validate())
	assert.ErrorIs(t, TickerChannel("").Validate(), errChannelMarketMissing)
	assert.ErrorIs(t, Channel{Name: ChannelFills, Market: "BTC/USD"}.Validate(), errChannelMarketSet)
	assert.ErrorIs(t, Channel{Name: "candles"}.Validate(), errUnknownChannel)
	assert.Equal(t, "trades:BTC/USD", TradesChannel("BTC/USD").String())
	assert.Equal(t, "fills", FillsChannel().String())
}

func TestWsLogin(t *testing.T) {
	t.Parallel()
	got := make(chan string, 2)
	f := newWsTestFTX(t, func(c *websocket.Conn) {
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			got <- string(msg)
		}
	}, WithCredentials(testKey, testSecret, ""))
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err, "WsConnect must not error")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, f.WsLogin(context.Background(), s), "WsLogin must not error")
	sig := hmacHex(testSecret, "1588591856950websocket_login")
	assert.Equal(t, "b8ad2577c0a4421d1d99e747ca7ad59d9cf9d6a5140d5be3179ba10e5aa3a83f", sig)
	assert.Equal(t, `{"op":"login","args":{"key":"test-key","sign":"`+sig+`","time":1588591856950}}`, <-got)

	require.NoError(t, f.SetSubAccount("sub"))
	require.NoError(t, f.WsLogin(context.Background(), s))
	msg := <-got
	assert.Contains(t, msg, `"subaccount":"sub"`, "the login should carry the swapped sub account")
	assert.NotContains(t, msg, testSecret)
}

func TestWsLoginWithoutCredentials(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, drain, WithCredentials("", "", ""))
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.ErrorIs(t, f.WsLogin(context.Background(), s), common.ErrCredentialsMissing)
	assert.ErrorIs(t, f.WsLogin(context.Background(), nil), errNilSession)
}

func TestWsConnectFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	f := New(WithWebsocketURL("ws" + strings.TrimPrefix(srv.URL, "http")))
	_, err := f.WsConnect(context.Background())
	assert.ErrorIs(t, err, common.ErrTransport)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, func(c *websocket.Conn) {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`))
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "restart"))
		drain(c)
	})
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))

	msg, err := s.Next()
	require.NoError(t, err)
	assert.IsType(t, &WsPong{}, msg)
	assert.False(t, s.IsClosed())

	msg, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, &WsClosed{Code: websocket.CloseGoingAway, Reason: "restart"}, msg)
	assert.True(t, s.IsClosed(), "a close frame should end the session")

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF, "Next should return io.EOF once closed")
	assert.ErrorIs(t, s.Subscribe(context.Background(), FillsChannel()), stream.ErrWebsocketIsDisconnected)
	assert.NoError(t, s.Close(), "Close should be safe after the peer closed")
}

func TestSessionClosedMessageEndsSession(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, func(c *websocket.Conn) {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"closed"}`))
		drain(c)
	})
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)

	msg, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, &WsClosed{}, msg)
	assert.True(t, s.IsClosed(), "a closed message should end the session")

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF, "Next should return io.EOF once closed")
}

func TestSessionCloseUnblocksNext(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, drain)
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)

	errC := make(chan error, 1)
	go func() {
		_, err := s.Next()
		errC <- err
	}()
	require.NoError(t, s.Close())
	select {
	case err := <-errC:
		assert.ErrorIs(t, err, io.EOF, "a pending Next should return io.EOF after Close")
	case <-time.After(5 * time.Second):
		require.Fail(t, "Next did not return after Close")
	}
}

func TestSessionSendValidation(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, drain)
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.ErrorIs(t, s.Subscribe(context.Background(), OrderbookChannel("")), errChannelMarketMissing)
	assert.ErrorIs(t, s.Unsubscribe(context.Background(), Channel{Name: ChannelMarkets, Market: "x"}), errChannelMarketSet)
	assert.ErrorIs(t, s.Send(context.Background(), nil), errNilMessage)
	assert.NoError(t, s.Subscribe(context.Background(), TradesChannel("BTC/USD")))
}

func TestSessionMessages(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, func(c *websocket.Conn) {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		var sub struct {
			Op      string `json:"op"`
			Channel string `json:"channel"`
			Market  string `json:"market"`
		}
		if err := json.Unmarshal(msg, &sub); err != nil {
			return
		}
		_ = c.WriteJSON(map[string]string{"type": "subscribed", "channel": sub.Channel, "market": sub.Market})
		_ = c.WriteMessage(websocket.BinaryMessage, []byte{0x1})
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"partial","channel":"orderbook","market":"BTC/USD","data":{"bids":[[1,1]],"asks":[],"time":0,"checksum":1}}`))
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		drain(c)
	})
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Subscribe(context.Background(), OrderbookChannel("BTC/USD")))

	var results []WsResult
	for r := range s.Messages(context.Background()) {
		results = append(results, r)
	}
	require.Len(t, results, 4, "messages should be forwarded in arrival order until the close frame")
	assert.Equal(t, &WsSubscribed{Channel: OrderbookChannel("BTC/USD")}, results[0].Message)
	assert.ErrorIs(t, results[1].Err, common.ErrProtocolViolation)
	assert.IsType(t, &WsPartial{}, results[2].Message)
	assert.IsType(t, &WsClosed{}, results[3].Message)
}

func TestSessionMessagesContextDone(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, drain)
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	msgs := s.Messages(ctx)
	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-msgs:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond, "Messages should stop once the context is done")
	assert.True(t, s.IsClosed(), "a done context should close the session")
}

func TestWsDroppedConnectionEndsSession(t *testing.T) {
	t.Parallel()
	f := newWsTestFTX(t, func(c *websocket.Conn) {
		_ = c.UnderlyingConn().Close()
	})
	s, err := f.WsConnect(context.Background())
	require.NoError(t, err)
	msg, err := s.Next()
	if err != nil {
		assert.ErrorIs(t, err, common.ErrTransport, "a dropped connection should surface as a transport error")
	} else {
		closed, ok := msg.(*WsClosed)
		require.True(t, ok, "a dropped connection should end in a closed message")
		assert.Equal(t, websocket.CloseAbnormalClosure, closed.Code)
	}
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF, "a dropped session should be ended")
}
