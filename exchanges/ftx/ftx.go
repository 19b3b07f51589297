package ftx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sync"
	"time"

	"github.com/gct-labs/ftxapi/common"
	"github.com/gct-labs/ftxapi/config"
	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/gct-labs/ftxapi/exchanges/request"
	"github.com/gct-labs/ftxapi/log"
	"github.com/google/go-querystring/query"
	"github.com/gorilla/websocket"
	"github.com/pquerna/otp/totp"
)

const (
	ftxAPIURL        = "https://ftx.com/api"
	ftxWSURL         = "wss://ftx.com/ws/"
	defaultUserAgent = "ftxapi-go"
	exchangeName     = "FTX"

	contentType     = "Content-Type"
	applicationJSON = "application/json"
)

var (
	errNilRequest        = errors.New("request is nil")
	errUnsupportedMethod = errors.New("unsupported request method")
	errInvalidBaseURL    = errors.New("invalid base url")
)

// FTX is the overarching type across this package. It holds the transport
// configuration and the credentials used for signed requests and logins.
type FTX struct {
	Name          string
	Verbose       bool
	HTTPDebugging bool

	restURL    string
	wsURL      string
	userAgent  string
	otpSecret  string
	httpClient *http.Client
	requester  *request.Requester
	dialer     *websocket.Dialer

	creds    *Credentials
	credsMtx sync.RWMutex

	now func() time.Time
}

// Option configures an FTX client
type Option func(*FTX)

// WithCredentials sets the API key pair and optional sub account
func WithCredentials(key, secret, subAccount string) Option {
	return func(f *FTX) {
		f.creds = &Credentials{Key: key, Secret: secret, SubAccount: subAccount}
	}
}

// WithRESTURL overrides the REST base URL including its base path
func WithRESTURL(u string) Option {
	return func(f *FTX) {
		f.restURL = u
	}
}

// WithWebsocketURL overrides the stream URL
func WithWebsocketURL(u string) Option {
	return func(f *FTX) {
		f.wsURL = u
	}
}

// WithUserAgent overrides the User-Agent sent on REST requests and the
// websocket handshake
func WithUserAgent(ua string) Option {
	return func(f *FTX) {
		f.userAgent = ua
	}
}

// WithHTTPClient sets the HTTP client used for REST requests
func WithHTTPClient(c *http.Client) Option {
	return func(f *FTX) {
		f.httpClient = c
	}
}

// WithVerbose enables verbose logging of requests and stream traffic
func WithVerbose(verbose bool) Option {
	return func(f *FTX) {
		f.Verbose = verbose
	}
}

// WithHTTPDebugging enables request and response dumps
func WithHTTPDebugging(debug bool) Option {
	return func(f *FTX) {
		f.HTTPDebugging = debug
	}
}

// WithClock sets the time source used for signature timestamps and one time
// passwords
func WithClock(now func() time.Time) Option {
	return func(f *FTX) {
		f.now = now
	}
}

// WithDialer sets the websocket dialer
func WithDialer(d *websocket.Dialer) Option {
	return func(f *FTX) {
		f.dialer = d
	}
}

// WithOTPSecret sets the base32 TOTP secret used to fill in the two factor
// code of withdrawals
func WithOTPSecret(secret string) Option {
	return func(f *FTX) {
		f.otpSecret = secret
	}
}

// New returns an FTX client using the production endpoints unless
// overridden
func New(opts ...Option) *FTX {
	f := &FTX{
		Name:      exchangeName,
		restURL:   ftxAPIURL,
		wsURL:     ftxWSURL,
		userAgent: defaultUserAgent,
		now:       time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	if f.httpClient == nil {
		f.httpClient = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	f.requester = request.New(f.Name, f.httpClient, request.WithUserAgent(f.userAgent))
	return f
}

// NewFromConfig validates cfg and returns a client configured from it
func NewFromConfig(cfg *config.Config, opts ...Option) (*FTX, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.CheckConfig(); err != nil {
		return nil, err
	}
	base := []Option{
		WithRESTURL(cfg.Endpoints.REST),
		WithWebsocketURL(cfg.Endpoints.Websocket),
		WithUserAgent(cfg.UserAgent),
		WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		WithVerbose(cfg.Verbose),
		WithHTTPDebugging(cfg.HTTPDebugging),
	}
	if cfg.HasCredentials() {
		base = append(base,
			WithCredentials(cfg.API.Key, cfg.API.Secret, cfg.API.Subaccount),
			WithOTPSecret(cfg.API.OTPSecret))
	}
	f := New(append(base, opts...)...)
	if cfg.Name != "" {
		f.Name = cfg.Name
		f.requester.Name = cfg.Name
	}
	return f, nil
}

// Request describes a single REST operation. GET requests render their query
// from `url` struct tags, POST and DELETE requests are sent as their JSON
// encoding.
type Request interface {
	Method() string
	RequiresAuth() bool
	Endpoint() string
}

// validator is implemented by requests which check their parameters before
// anything is sent
type validator interface {
	Validate() error
}

// Envelope is the wrapper around every REST response
type Envelope struct {
	Success     bool   `json:"success"`
	Result      any    `json:"result,omitempty"`
	HasMoreData *bool  `json:"hasMoreData,omitempty"`
	Error       string `json:"error,omitempty"`
}

// APIError is returned when the server answers with success set to false
type APIError struct {
	Envelope *Envelope
}

func (e *APIError) Error() string {
	if e.Envelope == nil || e.Envelope.Error == "" {
		return "ftx api error: request unsuccessful"
	}
	return "ftx api error: " + e.Envelope.Error
}

// SendRequest renders, signs if required and sends req, decoding the
// envelope result into result. result may be nil when the payload is not
// needed.
func (f *FTX) SendRequest(ctx context.Context, req Request, result any) error {
	_, err := f.sendRequest(ctx, req, result)
	return err
}

func (f *FTX) sendRequest(ctx context.Context, req Request, result any) (*Envelope, error) {
	if req == nil {
		return nil, errNilRequest
	}
	if v := reflect.ValueOf(req); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, errNilRequest
	}
	if v, ok := req.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	method := req.Method()
	target := f.restURL + req.Endpoint()
	var body []byte
	switch method {
	case http.MethodGet:
		values, err := query.Values(req)
		if err != nil {
			return nil, err
		}
		target = common.EncodeURLValues(target, values)
	case http.MethodPost, http.MethodDelete:
		var err error
		if body, err = json.Marshal(req); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w %q", errUnsupportedMethod, method)
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidBaseURL, err)
	}

	if request.IsVerbose(ctx, f.Verbose) {
		log.Debugf(log.ExchangeSys, "%s sending %s %s auth:%v", f.Name, method, canonicalPath(u), req.RequiresAuth())
	}

	env := &Envelope{Result: result}
	err = f.requester.SendPayload(ctx, func() (*request.Item, error) {
		headers := make(map[string]string)
		var r io.Reader
		if body != nil {
			headers[contentType] = applicationJSON
			r = bytes.NewReader(body)
		}
		if req.RequiresAuth() {
			auth, err := f.authHeaders(method, canonicalPath(u), string(body))
			if err != nil {
				return nil, err
			}
			for k, v := range auth {
				headers[k] = v
			}
		}
		return &request.Item{
			Method:        method,
			Path:          u.String(),
			Headers:       headers,
			Body:          r,
			Result:        env,
			Verbose:       f.Verbose,
			HTTPDebugging: f.HTTPDebugging,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return env, &APIError{Envelope: env}
	}
	return env, nil
}

// GetMarkets gets market data
func (f *FTX) GetMarkets(ctx context.Context) ([]Market, error) {
	var resp []Market
	return resp, f.SendRequest(ctx, &MarketsRequest{}, &resp)
}

// GetMarket gets market data for a single market
func (f *FTX) GetMarket(ctx context.Context, market string) (*Market, error) {
	var resp Market
	return &resp, f.SendRequest(ctx, &MarketRequest{Market: market}, &resp)
}

// GetOrderbook gets the orderbook for a market. depth is capped at 100 by
// the server; zero leaves it to the server default.
func (f *FTX) GetOrderbook(ctx context.Context, market string, depth int64) (*Orderbook, error) {
	var resp Orderbook
	return &resp, f.SendRequest(ctx, &OrderbookRequest{Market: market, Depth: depth}, &resp)
}

// GetTrades gets trades based on the conditions specified
func (f *FTX) GetTrades(ctx context.Context, req *TradesRequest) ([]Trade, error) {
	var resp []Trade
	return resp, f.SendRequest(ctx, req, &resp)
}

// GetHistoricalPrices gets historical OHLCV data for a market
func (f *FTX) GetHistoricalPrices(ctx context.Context, req *HistoricalPricesRequest) ([]Candle, error) {
	var resp []Candle
	return resp, f.SendRequest(ctx, req, &resp)
}

// GetSubaccounts lists the sub accounts of the main account
func (f *FTX) GetSubaccounts(ctx context.Context) ([]Subaccount, error) {
	var resp []Subaccount
	return resp, f.SendRequest(ctx, &SubaccountsRequest{}, &resp)
}

// CreateSubaccount creates a new sub account
func (f *FTX) CreateSubaccount(ctx context.Context, nickname string) (*Subaccount, error) {
	var resp Subaccount
	return &resp, f.SendRequest(ctx, &CreateSubaccountRequest{Nickname: nickname}, &resp)
}

// UpdateSubaccountName renames a sub account
func (f *FTX) UpdateSubaccountName(ctx context.Context, oldNickname, newNickname string) error {
	return f.SendRequest(ctx, &UpdateSubaccountNameRequest{
		Nickname:    oldNickname,
		NewNickname: newNickname,
	}, nil)
}

// DeleteSubaccount deletes a sub account
func (f *FTX) DeleteSubaccount(ctx context.Context, nickname string) error {
	return f.SendRequest(ctx, &DeleteSubaccountRequest{Nickname: nickname}, nil)
}

// GetSubaccountBalances gets the balances of a sub account
func (f *FTX) GetSubaccountBalances(ctx context.Context, nickname string) ([]Balance, error) {
	var resp []Balance
	return resp, f.SendRequest(ctx, &SubaccountBalancesRequest{Nickname: nickname}, &resp)
}

// SubaccountTransfer moves funds between sub accounts
func (f *FTX) SubaccountTransfer(ctx context.Context, req *SubaccountTransferRequest) (*SubaccountTransfer, error) {
	var resp SubaccountTransfer
	return &resp, f.SendRequest(ctx, req, &resp)
}

// GetAccountInformation gets account info
func (f *FTX) GetAccountInformation(ctx context.Context) (*AccountInformation, error) {
	var resp AccountInformation
	return &resp, f.SendRequest(ctx, &AccountInformationRequest{}, &resp)
}

// GetPositions gets the user's positions
func (f *FTX) GetPositions(ctx context.Context, showAvgPrice bool) ([]Position, error) {
	var resp []Position
	return resp, f.SendRequest(ctx, &PositionsRequest{ShowAvgPrice: showAvgPrice}, &resp)
}

// ChangeLeverage sets the account wide maximum leverage
func (f *FTX) ChangeLeverage(ctx context.Context, leverage int64) error {
	return f.SendRequest(ctx, &ChangeLeverageRequest{Leverage: leverage}, nil)
}

// GetCoins gets the coins supported by the wallet
func (f *FTX) GetCoins(ctx context.Context) ([]Coin, error) {
	var resp []Coin
	return resp, f.SendRequest(ctx, &CoinsRequest{}, &resp)
}

// GetBalances gets the balances of the current account
func (f *FTX) GetBalances(ctx context.Context) ([]Balance, error) {
	var resp []Balance
	return resp, f.SendRequest(ctx, &BalancesRequest{}, &resp)
}

// GetAllBalances gets the balances of every account keyed by nickname. The
// main account is keyed "main".
func (f *FTX) GetAllBalances(ctx context.Context) (map[string][]Balance, error) {
	resp := make(map[string][]Balance)
	return resp, f.SendRequest(ctx, &AllBalancesRequest{}, &resp)
}

// GetDepositAddress gets a deposit address for a coin. method selects the
// chain for multi chain coins and may be empty.
func (f *FTX) GetDepositAddress(ctx context.Context, coin, method string) (*DepositAddress, error) {
	var resp DepositAddress
	return &resp, f.SendRequest(ctx, &DepositAddressRequest{Coin: coin, ChainMethod: method}, &resp)
}

// GetDepositHistory gets deposits within the optional time range
func (f *FTX) GetDepositHistory(ctx context.Context, req *DepositHistoryRequest) ([]Transaction, error) {
	var resp []Transaction
	return resp, f.SendRequest(ctx, req, &resp)
}

// GetWithdrawalHistory gets withdrawals within the optional time range
func (f *FTX) GetWithdrawalHistory(ctx context.Context, req *WithdrawalHistoryRequest) ([]Transaction, error) {
	var resp []Transaction
	return resp, f.SendRequest(ctx, req, &resp)
}

// Withdraw sends a withdrawal request. When an OTP secret is configured and
// no code is provided, the current TOTP code is generated.
func (f *FTX) Withdraw(ctx context.Context, req *WithdrawRequest) (*Transaction, error) {
	if req == nil {
		return nil, errNilRequest
	}
	if req.Code == "" && f.otpSecret != "" {
		code, err := totp.GenerateCode(f.otpSecret, f.now())
		if err != nil {
			return nil, fmt.Errorf("%s cannot generate two factor code: %w", f.Name, err)
		}
		r := *req
		r.Code = code
		req = &r
	}
	var resp Transaction
	return &resp, f.SendRequest(ctx, req, &resp)
}

// GetOpenOrders gets open orders, optionally for a single market
func (f *FTX) GetOpenOrders(ctx context.Context, market string) ([]Order, error) {
	var resp []Order
	return resp, f.SendRequest(ctx, &OpenOrdersRequest{Market: market}, &resp)
}

// GetOrderHistory gets closed orders and whether more pages are available
func (f *FTX) GetOrderHistory(ctx context.Context, req *OrderHistoryRequest) (orders []Order, hasMore bool, err error) {
	env, err := f.sendRequest(ctx, req, &orders)
	if err != nil {
		return nil, false, err
	}
	if env.HasMoreData != nil {
		hasMore = *env.HasMoreData
	}
	return orders, hasMore, nil
}

// GetOpenTriggerOrders gets open conditional orders
func (f *FTX) GetOpenTriggerOrders(ctx context.Context, market string, orderType TriggerType) ([]TriggerOrder, error) {
	var resp []TriggerOrder
	return resp, f.SendRequest(ctx, &OpenTriggerOrdersRequest{Market: market, Type: orderType}, &resp)
}

// GetTriggers gets the firings of a conditional order
func (f *FTX) GetTriggers(ctx context.Context, orderID int64) ([]Trigger, error) {
	var resp []Trigger
	return resp, f.SendRequest(ctx, &TriggersRequest{OrderID: orderID}, &resp)
}

// GetTriggerOrderHistory gets conditional order history
func (f *FTX) GetTriggerOrderHistory(ctx context.Context, req *TriggerOrderHistoryRequest) ([]TriggerOrder, error) {
	var resp []TriggerOrder
	return resp, f.SendRequest(ctx, req, &resp)
}

// PlaceOrder places an order
func (f *FTX) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*Order, error) {
	var resp Order
	return &resp, f.SendRequest(ctx, req, &resp)
}

// PlaceTriggerOrder places a conditional order
func (f *FTX) PlaceTriggerOrder(ctx context.Context, req *PlaceTriggerOrderRequest) (*TriggerOrder, error) {
	var resp TriggerOrder
	return &resp, f.SendRequest(ctx, req, &resp)
}

// GetOrderStatus gets the status of an order by exchange or client id
func (f *FTX) GetOrderStatus(ctx context.Context, ref OrderRef) (*Order, error) {
	var resp Order
	return &resp, f.SendRequest(ctx, &OrderStatusRequest{Ref: ref}, &resp)
}

// ModifyOrder changes the price or size of an open order. The exchange
// cancels the order and places a replacement with a new id.
func (f *FTX) ModifyOrder(ctx context.Context, req *ModifyOrderRequest) (*Order, error) {
	var resp Order
	return &resp, f.SendRequest(ctx, req, &resp)
}

// CancelOrder requests cancellation of an order by exchange or client id
func (f *FTX) CancelOrder(ctx context.Context, ref OrderRef) (string, error) {
	var resp string
	return resp, f.SendRequest(ctx, &CancelOrderRequest{Ref: ref}, &resp)
}

// CancelAllOrders cancels the orders matching req
func (f *FTX) CancelAllOrders(ctx context.Context, req *CancelAllOrdersRequest) (string, error) {
	var resp string
	if req == nil {
		req = &CancelAllOrdersRequest{}
	}
	return resp, f.SendRequest(ctx, req, &resp)
}

// CancelTriggerOrder cancels a conditional order
func (f *FTX) CancelTriggerOrder(ctx context.Context, orderID int64) (string, error) {
	var resp string
	return resp, f.SendRequest(ctx, &CancelTriggerOrderRequest{OrderID: orderID}, &resp)
}

// GetFills gets the account's fills
func (f *FTX) GetFills(ctx context.Context, req *FillsRequest) ([]Fill, error) {
	var resp []Fill
	return resp, f.SendRequest(ctx, req, &resp)
}
