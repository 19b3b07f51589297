package ftx

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gct-labs/ftxapi/common"
	"github.com/gct-labs/ftxapi/types"
)

const (
	marketsPath            = "/markets"
	subaccountsPath        = "/subaccounts"
	subaccountRenamePath   = "/subaccounts/update_name"
	subaccountTransferPath = "/subaccounts/transfer"
	accountPath            = "/account"
	positionsPath          = "/positions"
	leveragePath           = "/account/leverage"
	coinsPath              = "/wallet/coins"
	balancesPath           = "/wallet/balances"
	allBalancesPath        = "/wallet/all_balances"
	depositAddressPath     = "/wallet/deposit_address/"
	depositsPath           = "/wallet/deposits"
	withdrawalsPath        = "/wallet/withdrawals"
	ordersPath             = "/orders"
	orderHistoryPath       = "/orders/history"
	byClientIDPath         = "/orders/by_client_id/"
	triggerOrdersPath      = "/conditional_orders"
	triggerHistoryPath     = "/conditional_orders/history"
	fillsPath              = "/fills"

	maxOrderbookDepth = 100
)

var (
	errMarketNameEmpty    = errors.New("market name cannot be empty")
	errNicknameEmpty      = errors.New("sub account nickname cannot be empty")
	errCoinEmpty          = errors.New("coin cannot be empty")
	errAddressEmpty       = errors.New("withdrawal address cannot be empty")
	errInvalidSize        = errors.New("size must be greater than zero")
	errInvalidPrice       = errors.New("price must be greater than zero")
	errInvalidDepth       = errors.New("orderbook depth out of range")
	errInvalidLeverage    = errors.New("leverage must be greater than zero")
	errInvalidLimit       = errors.New("limit cannot be negative")
	errOrderRefUnset      = errors.New("order reference requires an order id or client id")
	errOrderRefAmbiguous  = errors.New("order reference cannot set both order id and client id")
	errOrderIDUnset       = errors.New("order id must be set")
	errNothingToModify    = errors.New("modify requires a new price or size")
	errLimitPriceRequired = errors.New("limit orders require a price")
	errMarketPriceSet     = errors.New("market orders cannot carry a price")
	errTriggerPriceUnset  = errors.New("trigger price required for stop and take profit orders")
	errTrailValueUnset    = errors.New("trail value required for trailing stop orders")
	errSameAccount        = errors.New("transfer source and destination must differ")
)

// checkTimeRange validates an optional time range where either end may be
// unset
func checkTimeRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	return common.StartEndTimeCheck(start, end)
}

// OrderRef references an order by exchange id or by the client id it was
// placed with. Exactly one must be set.
type OrderRef struct {
	ID       int64
	ClientID string
}

// ByOrderID references an order by its exchange id
func ByOrderID(id int64) OrderRef {
	return OrderRef{ID: id}
}

// ByClientID references an order by its client id
func ByClientID(clientID string) OrderRef {
	return OrderRef{ClientID: clientID}
}

// Validate checks exactly one identifier is set
func (o OrderRef) Validate() error {
	switch {
	case o.ID != 0 && o.ClientID != "":
		return errOrderRefAmbiguous
	case o.ID == 0 && o.ClientID == "":
		return errOrderRefUnset
	}
	return nil
}

// path returns /orders/{id} or /orders/by_client_id/{cid}
func (o OrderRef) path() string {
	if o.ClientID != "" {
		return byClientIDPath + url.PathEscape(o.ClientID)
	}
	return ordersPath + "/" + strconv.FormatInt(o.ID, 10)
}

func (o OrderRef) String() string {
	if o.ClientID != "" {
		return "client id " + o.ClientID
	}
	return "order id " + strconv.FormatInt(o.ID, 10)
}

type (
	publicGet     struct{}
	privateGet    struct{}
	privatePost   struct{}
	privateDelete struct{}
)

func (publicGet) Method() string         { return http.MethodGet }
func (publicGet) RequiresAuth() bool     { return false }
func (privateGet) Method() string        { return http.MethodGet }
func (privateGet) RequiresAuth() bool    { return true }
func (privatePost) Method() string       { return http.MethodPost }
func (privatePost) RequiresAuth() bool   { return true }
func (privateDelete) Method() string     { return http.MethodDelete }
func (privateDelete) RequiresAuth() bool { return true }

// MarketsRequest lists every market
type MarketsRequest struct{ publicGet }

// Endpoint implements Request
func (*MarketsRequest) Endpoint() string { return marketsPath }

// MarketRequest fetches a single market
type MarketRequest struct {
	publicGet
	Market string `json:"-" url:"-"`
}

// Endpoint implements Request
func (r *MarketRequest) Endpoint() string { return marketsPath + "/" + r.Market }

// Validate implements validator
func (r *MarketRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Market == "" {
		return errMarketNameEmpty
	}
	return nil
}

// OrderbookRequest fetches the orderbook of a market
type OrderbookRequest struct {
	publicGet
	Market string `json:"-" url:"-"`
	Depth  int64  `json:"-" url:"depth,omitempty"`
}

// Endpoint implements Request
func (r *OrderbookRequest) Endpoint() string { return marketsPath + "/" + r.Market + "/orderbook" }

// Validate implements validator
func (r *OrderbookRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Market == "" {
		return errMarketNameEmpty
	}
	if r.Depth < 0 || r.Depth > maxOrderbookDepth {
		return fmt.Errorf("%w: %d", errInvalidDepth, r.Depth)
	}
	return nil
}

// TradesRequest fetches the public trades of a market
type TradesRequest struct {
	publicGet
	Market    string    `json:"-" url:"-"`
	Limit     int64     `json:"-" url:"limit,omitempty"`
	StartTime time.Time `json:"-" url:"start_time,omitempty,unix"`
	EndTime   time.Time `json:"-" url:"end_time,omitempty,unix"`
}

// Endpoint implements Request
func (r *TradesRequest) Endpoint() string { return marketsPath + "/" + r.Market + "/trades" }

// Validate implements validator
func (r *TradesRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Market == "" {
		return errMarketNameEmpty
	}
	if r.Limit < 0 {
		return errInvalidLimit
	}
	return checkTimeRange(r.StartTime, r.EndTime)
}

// HistoricalPricesRequest fetches OHLCV candles of a market
type HistoricalPricesRequest struct {
	publicGet
	Market     string     `json:"-" url:"-"`
	Resolution Resolution `json:"-" url:"resolution"`
	Limit      int64      `json:"-" url:"limit,omitempty"`
	StartTime  time.Time  `json:"-" url:"start_time,omitempty,unix"`
	EndTime    time.Time  `json:"-" url:"end_time,omitempty,unix"`
}

// Endpoint implements Request
func (r *HistoricalPricesRequest) Endpoint() string {
	return marketsPath + "/" + r.Market + "/candles"
}

// Validate implements validator
func (r *HistoricalPricesRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Market == "" {
		return errMarketNameEmpty
	}
	if err := r.Resolution.validate(); err != nil {
		return err
	}
	if r.Limit < 0 {
		return errInvalidLimit
	}
	return checkTimeRange(r.StartTime, r.EndTime)
}

// SubaccountsRequest lists sub accounts
type SubaccountsRequest struct{ privateGet }

// Endpoint implements Request
func (*SubaccountsRequest) Endpoint() string { return subaccountsPath }

// CreateSubaccountRequest creates a sub account
type CreateSubaccountRequest struct {
	privatePost
	Nickname string `json:"nickname"`
}

// Endpoint implements Request
func (*CreateSubaccountRequest) Endpoint() string { return subaccountsPath }

// Validate implements validator
func (r *CreateSubaccountRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Nickname == "" {
		return errNicknameEmpty
	}
	return nil
}

// UpdateSubaccountNameRequest renames a sub account
type UpdateSubaccountNameRequest struct {
	privatePost
	Nickname    string `json:"nickname"`
	NewNickname string `json:"newNickname"`
}

// Endpoint implements Request
func (*UpdateSubaccountNameRequest) Endpoint() string { return subaccountRenamePath }

// Validate implements validator
func (r *UpdateSubaccountNameRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Nickname == "" || r.NewNickname == "" {
		return errNicknameEmpty
	}
	return nil
}

// DeleteSubaccountRequest deletes a sub account
type DeleteSubaccountRequest struct {
	privateDelete
	Nickname string `json:"nickname"`
}

// Endpoint implements Request
func (*DeleteSubaccountRequest) Endpoint() string { return subaccountsPath }

// Validate implements validator
func (r *DeleteSubaccountRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Nickname == "" {
		return errNicknameEmpty
	}
	return nil
}

// SubaccountBalancesRequest fetches the balances of a sub account
type SubaccountBalancesRequest struct {
	privateGet
	Nickname string `json:"-" url:"-"`
}

// Endpoint implements Request
func (r *SubaccountBalancesRequest) Endpoint() string {
	return subaccountsPath + "/" + url.PathEscape(r.Nickname) + "/balances"
}

// Validate implements validator
func (r *SubaccountBalancesRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Nickname == "" {
		return errNicknameEmpty
	}
	return nil
}

// SubaccountTransferRequest moves a coin between accounts. The main account
// is named "main".
type SubaccountTransferRequest struct {
	privatePost
	Coin        string       `json:"coin"`
	Size        types.Number `json:"size"`
	Source      string       `json:"source"`
	Destination string       `json:"destination"`
}

// Endpoint implements Request
func (*SubaccountTransferRequest) Endpoint() string { return subaccountTransferPath }

// Validate implements validator
func (r *SubaccountTransferRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Coin == "" {
		return errCoinEmpty
	}
	if !r.Size.Decimal().IsPositive() {
		return errInvalidSize
	}
	if r.Source == "" || r.Destination == "" {
		return errNicknameEmpty
	}
	if r.Source == r.Destination {
		return errSameAccount
	}
	return nil
}

// AccountInformationRequest fetches account information
type AccountInformationRequest struct{ privateGet }

// Endpoint implements Request
func (*AccountInformationRequest) Endpoint() string { return accountPath }

// PositionsRequest fetches open positions
type PositionsRequest struct {
	privateGet
	ShowAvgPrice bool `json:"-" url:"showAvgPrice,omitempty"`
}

// Endpoint implements Request
func (*PositionsRequest) Endpoint() string { return positionsPath }

// ChangeLeverageRequest sets the account leverage
type ChangeLeverageRequest struct {
	privatePost
	Leverage int64 `json:"leverage"`
}

// Endpoint implements Request
func (*ChangeLeverageRequest) Endpoint() string { return leveragePath }

// Validate implements validator
func (r *ChangeLeverageRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Leverage <= 0 {
		return errInvalidLeverage
	}
	return nil
}

// CoinsRequest lists wallet coins
type CoinsRequest struct{ privateGet }

// Endpoint implements Request
func (*CoinsRequest) Endpoint() string { return coinsPath }

// BalancesRequest fetches wallet balances
type BalancesRequest struct{ privateGet }

// Endpoint implements Request
func (*BalancesRequest) Endpoint() string { return balancesPath }

// AllBalancesRequest fetches the wallet balances of every account
type AllBalancesRequest struct{ privateGet }

// Endpoint implements Request
func (*AllBalancesRequest) Endpoint() string { return allBalancesPath }

// DepositAddressRequest fetches a deposit address
type DepositAddressRequest struct {
	privateGet
	Coin        string `json:"-" url:"-"`
	ChainMethod string `json:"-" url:"method,omitempty"`
}

// Endpoint implements Request
func (r *DepositAddressRequest) Endpoint() string {
	return depositAddressPath + url.PathEscape(r.Coin)
}

// Validate implements validator
func (r *DepositAddressRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Coin == "" {
		return errCoinEmpty
	}
	return nil
}

// DepositHistoryRequest fetches deposits
type DepositHistoryRequest struct {
	privateGet
	Limit     int64     `json:"-" url:"limit,omitempty"`
	StartTime time.Time `json:"-" url:"start_time,omitempty,unix"`
	EndTime   time.Time `json:"-" url:"end_time,omitempty,unix"`
}

// Endpoint implements Request
func (*DepositHistoryRequest) Endpoint() string { return depositsPath }

// Validate implements validator
func (r *DepositHistoryRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Limit < 0 {
		return errInvalidLimit
	}
	return checkTimeRange(r.StartTime, r.EndTime)
}

// WithdrawalHistoryRequest fetches withdrawals
type WithdrawalHistoryRequest struct {
	privateGet
	Limit     int64     `json:"-" url:"limit,omitempty"`
	StartTime time.Time `json:"-" url:"start_time,omitempty,unix"`
	EndTime   time.Time `json:"-" url:"end_time,omitempty,unix"`
}

// Endpoint implements Request
func (*WithdrawalHistoryRequest) Endpoint() string { return withdrawalsPath }

// Validate implements validator
func (r *WithdrawalHistoryRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Limit < 0 {
		return errInvalidLimit
	}
	return checkTimeRange(r.StartTime, r.EndTime)
}

// WithdrawRequest requests a withdrawal. Code is the two factor code and is
// filled in by FTX.Withdraw when an OTP secret is configured.
type WithdrawRequest struct {
	privatePost
	Coin        string       `json:"coin"`
	Size        types.Number `json:"size"`
	Address     string       `json:"address"`
	Tag         string       `json:"tag,omitempty"`
	ChainMethod string       `json:"method,omitempty"`
	Password    string       `json:"password,omitempty"`
	Code        string       `json:"code,omitempty"`
}

// Endpoint implements Request
func (*WithdrawRequest) Endpoint() string { return withdrawalsPath }

// Validate implements validator
func (r *WithdrawRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Coin == "" {
		return errCoinEmpty
	}
	if r.Address == "" {
		return errAddressEmpty
	}
	if !r.Size.Decimal().IsPositive() {
		return errInvalidSize
	}
	return nil
}

// OpenOrdersRequest fetches open orders
type OpenOrdersRequest struct {
	privateGet
	Market string `json:"-" url:"market,omitempty"`
}

// Endpoint implements Request
func (*OpenOrdersRequest) Endpoint() string { return ordersPath }

// OrderHistoryRequest fetches closed orders. The envelope reports whether
// more data is available.
type OrderHistoryRequest struct {
	privateGet
	Market    string    `json:"-" url:"market,omitempty"`
	StartTime time.Time `json:"-" url:"start_time,omitempty,unix"`
	EndTime   time.Time `json:"-" url:"end_time,omitempty,unix"`
	Limit     int64     `json:"-" url:"limit,omitempty"`
}

// Endpoint implements Request
func (*OrderHistoryRequest) Endpoint() string { return orderHistoryPath }

// Validate implements validator
func (r *OrderHistoryRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Limit < 0 {
		return errInvalidLimit
	}
	return checkTimeRange(r.StartTime, r.EndTime)
}

// OpenTriggerOrdersRequest fetches open conditional orders
type OpenTriggerOrdersRequest struct {
	privateGet
	Market string      `json:"-" url:"market,omitempty"`
	Type   TriggerType `json:"-" url:"type,omitempty"`
}

// Endpoint implements Request
func (*OpenTriggerOrdersRequest) Endpoint() string { return triggerOrdersPath }

// Validate implements validator
func (r *OpenTriggerOrdersRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Type == "" {
		return nil
	}
	return r.Type.validate()
}

// TriggersRequest fetches the firings of a conditional order
type TriggersRequest struct {
	privateGet
	OrderID int64 `json:"-" url:"-"`
}

// Endpoint implements Request
func (r *TriggersRequest) Endpoint() string {
	return triggerOrdersPath + "/" + strconv.FormatInt(r.OrderID, 10) + "/triggers"
}

// Validate implements validator
func (r *TriggersRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.OrderID <= 0 {
		return errOrderIDUnset
	}
	return nil
}

// TriggerOrderHistoryRequest fetches conditional order history
type TriggerOrderHistoryRequest struct {
	privateGet
	Market    string      `json:"-" url:"market,omitempty"`
	StartTime time.Time   `json:"-" url:"start_time,omitempty,unix"`
	EndTime   time.Time   `json:"-" url:"end_time,omitempty,unix"`
	Side      Side        `json:"-" url:"side,omitempty"`
	Type      TriggerType `json:"-" url:"type,omitempty"`
	OrderType OrderType   `json:"-" url:"orderType,omitempty"`
	Limit     int64       `json:"-" url:"limit,omitempty"`
}

// Endpoint implements Request
func (*TriggerOrderHistoryRequest) Endpoint() string { return triggerHistoryPath }

// Validate implements validator
func (r *TriggerOrderHistoryRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Side != "" {
		if err := r.Side.validate(); err != nil {
			return err
		}
	}
	if r.Type != "" {
		if err := r.Type.validate(); err != nil {
			return err
		}
	}
	if r.OrderType != "" {
		if err := r.OrderType.validate(); err != nil {
			return err
		}
	}
	if r.Limit < 0 {
		return errInvalidLimit
	}
	return checkTimeRange(r.StartTime, r.EndTime)
}

// PlaceOrderRequest places a limit or market order. Price must be nil for
// market orders and is sent as null.
type PlaceOrderRequest struct {
	privatePost
	Market     string        `json:"market"`
	Side       Side          `json:"side"`
	Price      *types.Number `json:"price"`
	Type       OrderType     `json:"type"`
	Size       types.Number  `json:"size"`
	ReduceOnly bool          `json:"reduceOnly"`
	IOC        bool          `json:"ioc"`
	PostOnly   bool          `json:"postOnly"`
	ClientID   string        `json:"clientId,omitempty"`
}

// Endpoint implements Request
func (*PlaceOrderRequest) Endpoint() string { return ordersPath }

// Validate implements validator
func (r *PlaceOrderRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Market == "" {
		return errMarketNameEmpty
	}
	if err := r.Side.validate(); err != nil {
		return err
	}
	if err := r.Type.validate(); err != nil {
		return err
	}
	switch {
	case r.Type == LimitOrder && r.Price == nil:
		return errLimitPriceRequired
	case r.Type == MarketOrder && r.Price != nil:
		return errMarketPriceSet
	case r.Price != nil && !r.Price.Decimal().IsPositive():
		return errInvalidPrice
	}
	if !r.Size.Decimal().IsPositive() {
		return errInvalidSize
	}
	return nil
}

// PlaceTriggerOrderRequest places a conditional order. OrderPrice turns the
// triggered order into a limit order; left nil it is a market order.
type PlaceTriggerOrderRequest struct {
	privatePost
	Market           string        `json:"market"`
	Side             Side          `json:"side"`
	Size             types.Number  `json:"size"`
	Type             TriggerType   `json:"type"`
	ReduceOnly       bool          `json:"reduceOnly"`
	RetryUntilFilled bool          `json:"retryUntilFilled"`
	TriggerPrice     *types.Number `json:"triggerPrice,omitempty"`
	OrderPrice       *types.Number `json:"orderPrice,omitempty"`
	TrailValue       *types.Number `json:"trailValue,omitempty"`
}

// Endpoint implements Request
func (*PlaceTriggerOrderRequest) Endpoint() string { return triggerOrdersPath }

// Validate implements validator
func (r *PlaceTriggerOrderRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Market == "" {
		return errMarketNameEmpty
	}
	if err := r.Side.validate(); err != nil {
		return err
	}
	if err := r.Type.validate(); err != nil {
		return err
	}
	if !r.Size.Decimal().IsPositive() {
		return errInvalidSize
	}
	if r.Type == TrailingStopTrigger {
		if r.TrailValue == nil {
			return errTrailValueUnset
		}
		return nil
	}
	if r.TriggerPrice == nil {
		return errTriggerPriceUnset
	}
	return nil
}

// OrderStatusRequest fetches a single order
type OrderStatusRequest struct {
	privateGet
	Ref OrderRef `json:"-" url:"-"`
}

// Endpoint implements Request
func (r *OrderStatusRequest) Endpoint() string { return r.Ref.path() }

// Validate implements validator
func (r *OrderStatusRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	return r.Ref.Validate()
}

// ModifyOrderRequest changes the price and or size of an order. ClientID
// assigns a client id to the replacement order.
type ModifyOrderRequest struct {
	privatePost
	Ref      OrderRef      `json:"-"`
	Price    *types.Number `json:"price,omitempty"`
	Size     *types.Number `json:"size,omitempty"`
	ClientID string        `json:"clientId,omitempty"`
}

// Endpoint implements Request
func (r *ModifyOrderRequest) Endpoint() string { return r.Ref.path() + "/modify" }

// Validate implements validator
func (r *ModifyOrderRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if err := r.Ref.Validate(); err != nil {
		return err
	}
	if r.Price == nil && r.Size == nil {
		return errNothingToModify
	}
	if r.Price != nil && !r.Price.Decimal().IsPositive() {
		return errInvalidPrice
	}
	if r.Size != nil && !r.Size.Decimal().IsPositive() {
		return errInvalidSize
	}
	return nil
}

// CancelOrderRequest cancels a single order
type CancelOrderRequest struct {
	privateDelete
	Ref OrderRef `json:"-"`
}

// Endpoint implements Request
func (r *CancelOrderRequest) Endpoint() string { return r.Ref.path() }

// Validate implements validator
func (r *CancelOrderRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	return r.Ref.Validate()
}

// CancelAllOrdersRequest cancels every open order, optionally restricted to
// a market or an order kind
type CancelAllOrdersRequest struct {
	privateDelete
	Market                string `json:"market,omitempty"`
	ConditionalOrdersOnly bool   `json:"conditionalOrdersOnly"`
	LimitOrdersOnly       bool   `json:"limitOrdersOnly"`
}

// Endpoint implements Request
func (*CancelAllOrdersRequest) Endpoint() string { return ordersPath }

// CancelTriggerOrderRequest cancels a conditional order
type CancelTriggerOrderRequest struct {
	privateDelete
	OrderID int64 `json:"-"`
}

// Endpoint implements Request
func (r *CancelTriggerOrderRequest) Endpoint() string {
	return triggerOrdersPath + "/" + strconv.FormatInt(r.OrderID, 10)
}

// Validate implements validator
func (r *CancelTriggerOrderRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.OrderID <= 0 {
		return errOrderIDUnset
	}
	return nil
}

// FillsRequest fetches the account's fills
type FillsRequest struct {
	privateGet
	Market    string    `json:"-" url:"market,omitempty"`
	Limit     int64     `json:"-" url:"limit,omitempty"`
	StartTime time.Time `json:"-" url:"start_time,omitempty,unix"`
	EndTime   time.Time `json:"-" url:"end_time,omitempty,unix"`
	OrderID   int64     `json:"-" url:"orderId,omitempty"`
}

// Endpoint implements Request
func (*FillsRequest) Endpoint() string { return fillsPath }

// Validate implements validator
func (r *FillsRequest) Validate() error {
	if r == nil {
		return errNilRequest
	}
	if r.Limit < 0 {
		return errInvalidLimit
	}
	return checkTimeRange(r.StartTime, r.EndTime)
}
