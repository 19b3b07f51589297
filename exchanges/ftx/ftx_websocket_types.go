package ftx

import (
	"errors"
	"fmt"

	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/gct-labs/ftxapi/types"
	"github.com/shopspring/decimal"
)

// ChannelName is a stream subscription topic
type ChannelName string

// Stream channels
const (
	ChannelOrderbook ChannelName = "orderbook"
	ChannelTrades    ChannelName = "trades"
	ChannelTicker    ChannelName = "ticker"
	ChannelMarkets   ChannelName = "markets"
	ChannelFills     ChannelName = "fills"
	ChannelOrders    ChannelName = "orders"
)

var (
	errUnknownChannel       = errors.New("unknown channel")
	errChannelMarketMissing = errors.New("channel requires a market")
	errChannelMarketSet     = errors.New("channel does not take a market")
)

// Channel identifies a subscription. Orderbook, trades and ticker channels
// are per market, the rest are global.
type Channel struct {
	Name   ChannelName `json:"channel"`
	Market string      `json:"market,omitempty"`
}

// OrderbookChannel returns the orderbook channel of a market
func OrderbookChannel(market string) Channel {
	return Channel{Name: ChannelOrderbook, Market: market}
}

// TradesChannel returns the trades channel of a market
func TradesChannel(market string) Channel {
	return Channel{Name: ChannelTrades, Market: market}
}

// TickerChannel returns the ticker channel of a market
func TickerChannel(market string) Channel {
	return Channel{Name: ChannelTicker, Market: market}
}

// MarketsChannel returns the market catalogue channel
func MarketsChannel() Channel { return Channel{Name: ChannelMarkets} }

// FillsChannel returns the account fills channel
func FillsChannel() Channel { return Channel{Name: ChannelFills} }

// OrdersChannel returns the account orders channel
func OrdersChannel() Channel { return Channel{Name: ChannelOrders} }

func (n ChannelName) perMarket() (bool, error) {
	switch n {
	case ChannelOrderbook, ChannelTrades, ChannelTicker:
		return true, nil
	case ChannelMarkets, ChannelFills, ChannelOrders:
		return false, nil
	}
	return false, fmt.Errorf("%w %q", errUnknownChannel, n)
}

// Validate checks the channel name and that a market is present exactly when
// the channel needs one
func (c Channel) Validate() error {
	perMarket, err := c.Name.perMarket()
	if err != nil {
		return err
	}
	switch {
	case perMarket && c.Market == "":
		return fmt.Errorf("%s %w", c.Name, errChannelMarketMissing)
	case !perMarket && c.Market != "":
		return fmt.Errorf("%s %w", c.Name, errChannelMarketSet)
	}
	return nil
}

func (c Channel) String() string {
	if c.Market == "" {
		return string(c.Name)
	}
	return string(c.Name) + ":" + c.Market
}

// WsOutMessage is a message sent to the stream
type WsOutMessage interface {
	op() string
}

// WsLogin authenticates the stream. Sign is the signature of the time and
// the login suffix, never the secret.
type WsLogin struct {
	Key        string `json:"key"`
	Sign       string `json:"sign"`
	Time       int64  `json:"time"`
	SubAccount string `json:"subaccount,omitempty"`
}

type wsLoginArgs WsLogin

func (*WsLogin) op() string { return "login" }

// MarshalJSON implements json.Marshaler
func (m *WsLogin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Op   string      `json:"op"`
		Args wsLoginArgs `json:"args"`
	}{Op: m.op(), Args: wsLoginArgs(*m)})
}

// WsSubscribe subscribes to a channel
type WsSubscribe struct {
	Channel Channel
}

func (*WsSubscribe) op() string { return "subscribe" }

// MarshalJSON implements json.Marshaler
func (m *WsSubscribe) MarshalJSON() ([]byte, error) {
	return marshalChannelOp(m.op(), m.Channel)
}

// WsUnsubscribe unsubscribes from a channel
type WsUnsubscribe struct {
	Channel Channel
}

func (*WsUnsubscribe) op() string { return "unsubscribe" }

// MarshalJSON implements json.Marshaler
func (m *WsUnsubscribe) MarshalJSON() ([]byte, error) {
	return marshalChannelOp(m.op(), m.Channel)
}

// WsPing keeps the stream alive. The server closes connections which stay
// silent for a minute.
type WsPing struct{}

func (*WsPing) op() string { return "ping" }

// MarshalJSON implements json.Marshaler
func (m *WsPing) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Op string `json:"op"`
	}{Op: m.op()})
}

func marshalChannelOp(op string, c Channel) ([]byte, error) {
	return json.Marshal(struct {
		Op string `json:"op"`
		Channel
	}{Op: op, Channel: c})
}

// WsInMessage is a decoded message received from the stream. It is one of
// *WsSubscribed, *WsUnsubscribed, *WsPong, *WsError, *WsInfo, *WsPartial,
// *WsUpdate or *WsClosed.
type WsInMessage interface {
	inbound()
}

// WsSubscribed confirms a subscription
type WsSubscribed struct {
	Channel Channel
}

// WsUnsubscribed confirms an unsubscription
type WsUnsubscribed struct {
	Channel Channel
}

// WsPong answers a ping
type WsPong struct{}

// WsError reports a rejected operation
type WsError struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

// WsInfo carries a server notice. Code 20001 announces a server restart and
// the caller should reconnect.
type WsInfo struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

// WsPartial is a channel snapshot
type WsPartial struct {
	Data ChannelData
}

// WsUpdate is an incremental channel message
type WsUpdate struct {
	Data ChannelData
}

// WsClosed reports the close frame which ended the session
type WsClosed struct {
	Code   int
	Reason string
}

func (*WsSubscribed) inbound()   {}
func (*WsUnsubscribed) inbound() {}
func (*WsPong) inbound()         {}
func (*WsError) inbound()        {}
func (*WsInfo) inbound()         {}
func (*WsPartial) inbound()      {}
func (*WsUpdate) inbound()       {}
func (*WsClosed) inbound()       {}

// ChannelData is the payload of a partial or update message. It is one of
// *OrderbookData, *TradesData, *TickerData, *MarketsData, *FillsData or
// *OrdersData.
type ChannelData interface {
	Channel() Channel
}

// OrderbookData carries an orderbook snapshot or delta
type OrderbookData struct {
	Market    string
	Orderbook WsOrderbook
}

// TradesData carries trades of a market
type TradesData struct {
	Market string
	Trades []Trade
}

// TickerData carries the best bid and offer of a market
type TickerData struct {
	Market string
	Ticker WsTicker
}

// MarketsData carries the market catalogue
type MarketsData struct {
	Markets WsMarkets
}

// FillsData carries a fill of the account
type FillsData struct {
	Fill Fill
}

// OrdersData carries an order update of the account
type OrdersData struct {
	Order Order
}

// Channel implements ChannelData
func (d *OrderbookData) Channel() Channel { return OrderbookChannel(d.Market) }

// Channel implements ChannelData
func (d *TradesData) Channel() Channel { return TradesChannel(d.Market) }

// Channel implements ChannelData
func (d *TickerData) Channel() Channel { return TickerChannel(d.Market) }

// Channel implements ChannelData
func (*MarketsData) Channel() Channel { return MarketsChannel() }

// Channel implements ChannelData
func (*FillsData) Channel() Channel { return FillsChannel() }

// Channel implements ChannelData
func (*OrdersData) Channel() Channel { return OrdersChannel() }

// WsOrderbook is an orderbook snapshot (action "partial") or a set of changed
// levels (action "update"). A level with zero size is removed. Checksum is
// the CRC32 of the top of book after applying the message.
type WsOrderbook struct {
	Action   string       `json:"action"`
	Bids     []PriceLevel `json:"bids"`
	Asks     []PriceLevel `json:"asks"`
	Time     types.Time   `json:"time"`
	Checksum uint32       `json:"checksum"`
}

// WsTicker stores ticker data
type WsTicker struct {
	Bid     decimal.NullDecimal `json:"bid"`
	Ask     decimal.NullDecimal `json:"ask"`
	BidSize decimal.NullDecimal `json:"bidSize"`
	AskSize decimal.NullDecimal `json:"askSize"`
	Last    decimal.NullDecimal `json:"last"`
	Time    types.Time          `json:"time"`
}

// WsMarkets stores the market catalogue keyed by market name
type WsMarkets struct {
	Action string              `json:"action"`
	Data   map[string]WsMarket `json:"data"`
}

// WsMarket stores the static details of a market
type WsMarket struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	BaseCurrency   string          `json:"baseCurrency"`
	QuoteCurrency  string          `json:"quoteCurrency"`
	Underlying     string          `json:"underlying"`
	Enabled        bool            `json:"enabled"`
	PriceIncrement decimal.Decimal `json:"priceIncrement"`
	SizeIncrement  decimal.Decimal `json:"sizeIncrement"`
	Restricted     bool            `json:"restricted"`
}

// WsResult is a message or error read by Session.Messages
type WsResult struct {
	Message WsInMessage
	Err     error
}
