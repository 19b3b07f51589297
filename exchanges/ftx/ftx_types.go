package ftx

import (
	"errors"
	"fmt"
	"time"

	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/shopspring/decimal"
)

// Side is the side of an order or trade
type Side string

// Order sides
const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType is the execution type of an order
type OrderType string

// Order types
const (
	LimitOrder  OrderType = "limit"
	MarketOrder OrderType = "market"
)

// TriggerType is the type of a conditional order
type TriggerType string

// Trigger order types
const (
	StopTrigger         TriggerType = "stop"
	TrailingStopTrigger TriggerType = "trailing_stop"
	TakeProfitTrigger   TriggerType = "take_profit"
)

// Resolution is a candle width in seconds
type Resolution int64

// Supported candle widths
const (
	Resolution15s Resolution = 15
	Resolution1m  Resolution = 60
	Resolution5m  Resolution = 300
	Resolution15m Resolution = 900
	Resolution1h  Resolution = 3600
	Resolution4h  Resolution = 14400
	Resolution1d  Resolution = 86400
)

var (
	errInvalidSide        = errors.New("invalid order side")
	errInvalidOrderType   = errors.New("invalid order type")
	errInvalidTriggerType = errors.New("invalid trigger order type")
	errInvalidResolution  = errors.New("invalid resolution")
)

func (s Side) validate() error {
	switch s {
	case Buy, Sell:
		return nil
	}
	return fmt.Errorf("%w %q", errInvalidSide, s)
}

func (o OrderType) validate() error {
	switch o {
	case LimitOrder, MarketOrder:
		return nil
	}
	return fmt.Errorf("%w %q", errInvalidOrderType, o)
}

func (t TriggerType) validate() error {
	switch t {
	case StopTrigger, TrailingStopTrigger, TakeProfitTrigger:
		return nil
	}
	return fmt.Errorf("%w %q", errInvalidTriggerType, t)
}

func (r Resolution) validate() error {
	switch r {
	case Resolution15s, Resolution1m, Resolution5m, Resolution15m, Resolution1h, Resolution4h, Resolution1d:
		return nil
	}
	return fmt.Errorf("%w %d", errInvalidResolution, r)
}

// Market stores market data. Prices are null on markets without activity.
type Market struct {
	Name                  string              `json:"name"`
	Type                  string              `json:"type"`
	BaseCurrency          string              `json:"baseCurrency"`
	QuoteCurrency         string              `json:"quoteCurrency"`
	Underlying            string              `json:"underlying"`
	Enabled               bool                `json:"enabled"`
	Ask                   decimal.NullDecimal `json:"ask"`
	Bid                   decimal.NullDecimal `json:"bid"`
	Price                 decimal.NullDecimal `json:"price"`
	Last                  decimal.NullDecimal `json:"last"`
	PostOnly              bool                `json:"postOnly"`
	PriceIncrement        decimal.Decimal     `json:"priceIncrement"`
	SizeIncrement         decimal.Decimal     `json:"sizeIncrement"`
	Restricted            bool                `json:"restricted"`
	MinProvideSize        decimal.Decimal     `json:"minProvideSize"`
	HighLeverageFeeExempt bool                `json:"highLeverageFeeExempt"`
	Change1h              float64             `json:"change1h"`
	Change24h             float64             `json:"change24h"`
	ChangeBod             float64             `json:"changeBod"`
	QuoteVolume24h        float64             `json:"quoteVolume24h"`
	VolumeUSD24h          float64             `json:"volumeUsd24h"`
}

// PriceLevel is a single [price, size] orderbook entry
type PriceLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// UnmarshalJSON decodes a two element [price, size] array
func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	var level [2]decimal.Decimal
	if err := json.Unmarshal(data, &level); err != nil {
		return err
	}
	p.Price, p.Size = level[0], level[1]
	return nil
}

// MarshalJSON encodes the level back into its [price, size] form
func (p PriceLevel) MarshalJSON() ([]byte, error) {
	return []byte("[" + p.Price.String() + "," + p.Size.String() + "]"), nil
}

// Orderbook stores an orderbook snapshot
type Orderbook struct {
	Asks []PriceLevel `json:"asks"`
	Bids []PriceLevel `json:"bids"`
}

// Trade stores data from trades
type Trade struct {
	ID          int64           `json:"id"`
	Liquidation bool            `json:"liquidation"`
	Price       decimal.Decimal `json:"price"`
	Side        Side            `json:"side"`
	Size        decimal.Decimal `json:"size"`
	Time        time.Time       `json:"time"`
}

// Candle stores historical OHLCV data
type Candle struct {
	Close     decimal.Decimal `json:"close"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Open      decimal.Decimal `json:"open"`
	StartTime time.Time       `json:"startTime"`
	Volume    float64         `json:"volume"`
}

// Subaccount stores sub account details
type Subaccount struct {
	Nickname    string `json:"nickname"`
	Special     bool   `json:"special"`
	Deletable   bool   `json:"deletable"`
	Editable    bool   `json:"editable"`
	Competition bool   `json:"competition"`
}

// SubaccountTransfer stores the result of a transfer between sub accounts
type SubaccountTransfer struct {
	ID     int64           `json:"id"`
	Coin   string          `json:"coin"`
	Size   decimal.Decimal `json:"size"`
	Time   time.Time       `json:"time"`
	Notes  string          `json:"notes"`
	Status string          `json:"status"`
}

// Position stores data of an open futures position
type Position struct {
	Future                       string              `json:"future"`
	Side                         Side                `json:"side"`
	Size                         decimal.Decimal     `json:"size"`
	NetSize                      decimal.Decimal     `json:"netSize"`
	Cost                         decimal.Decimal     `json:"cost"`
	EntryPrice                   decimal.NullDecimal `json:"entryPrice"`
	EstimatedLiquidationPrice    decimal.NullDecimal `json:"estimatedLiquidationPrice"`
	InitialMarginRequirement     float64             `json:"initialMarginRequirement"`
	MaintenanceMarginRequirement float64             `json:"maintenanceMarginRequirement"`
	LongOrderSize                decimal.Decimal     `json:"longOrderSize"`
	ShortOrderSize               decimal.Decimal     `json:"shortOrderSize"`
	OpenSize                     decimal.Decimal     `json:"openSize"`
	RealizedPnL                  decimal.Decimal     `json:"realizedPnl"`
	UnrealizedPnL                decimal.Decimal     `json:"unrealizedPnl"`
	CollateralUsed               decimal.Decimal     `json:"collateralUsed"`
}

// AccountInformation stores account data
type AccountInformation struct {
	Username                     string          `json:"username"`
	BackstopProvider             bool            `json:"backstopProvider"`
	Collateral                   decimal.Decimal `json:"collateral"`
	FreeCollateral               decimal.Decimal `json:"freeCollateral"`
	Leverage                     float64         `json:"leverage"`
	InitialMarginRequirement     float64         `json:"initialMarginRequirement"`
	MaintenanceMarginRequirement float64         `json:"maintenanceMarginRequirement"`
	Liquidating                  bool            `json:"liquidating"`
	MakerFee                     float64         `json:"makerFee"`
	TakerFee                     float64         `json:"takerFee"`
	MarginFraction               *float64        `json:"marginFraction"`
	OpenMarginFraction           *float64        `json:"openMarginFraction"`
	TotalAccountValue            float64         `json:"totalAccountValue"`
	TotalPositionSize            float64         `json:"totalPositionSize"`
	PositionLimit                *float64        `json:"positionLimit"`
	PositionLimitUsed            *float64        `json:"positionLimitUsed"`
	UseFTTCollateral             bool            `json:"useFttCollateral"`
	ChargeInterestOnNegativeUSD  bool            `json:"chargeInterestOnNegativeUsd"`
	SpotMarginEnabled            bool            `json:"spotMarginEnabled"`
	SpotLendingEnabled           bool            `json:"spotLendingEnabled"`
	Positions                    []Position      `json:"positions"`
}

// Coin stores wallet coin details
type Coin struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Fiat             bool     `json:"fiat"`
	IsToken          bool     `json:"isToken"`
	IsETF            bool     `json:"isEtf"`
	Hidden           bool     `json:"hidden"`
	CanDeposit       bool     `json:"canDeposit"`
	CanWithdraw      bool     `json:"canWithdraw"`
	CanConvert       bool     `json:"canConvert"`
	Collateral       bool     `json:"collateral"`
	CollateralWeight float64  `json:"collateralWeight"`
	Methods          []string `json:"methods"`
	CreditTo         string   `json:"creditTo"`
	USDFungible      bool     `json:"usdFungible"`
	HasTag           bool     `json:"hasTag"`
	SpotMargin       bool     `json:"spotMargin"`
	IndexPrice       float64  `json:"indexPrice"`
}

// Balance stores a coin balance
type Balance struct {
	Coin                   string          `json:"coin"`
	Free                   decimal.Decimal `json:"free"`
	Total                  decimal.Decimal `json:"total"`
	USDValue               float64         `json:"usdValue"`
	SpotBorrow             decimal.Decimal `json:"spotBorrow"`
	AvailableWithoutBorrow decimal.Decimal `json:"availableWithoutBorrow"`
}

// DepositAddress stores deposit address data
type DepositAddress struct {
	Address string `json:"address"`
	Tag     string `json:"tag"`
	Method  string `json:"method"`
}

// Transaction stores a deposit or withdrawal. Transfers between sub
// accounts carry only the common fields.
type Transaction struct {
	ID            int64           `json:"id"`
	Coin          string          `json:"coin"`
	Size          decimal.Decimal `json:"size"`
	Time          time.Time       `json:"time"`
	Notes         string          `json:"notes"`
	Fee           decimal.Decimal `json:"fee"`
	Status        string          `json:"status"`
	Confirmations int64           `json:"confirmations"`
	SentTime      time.Time       `json:"sentTime"`
	ConfirmedTime time.Time       `json:"confirmedTime"`
	TxID          string          `json:"txid"`
	Address       *DepositAddress `json:"address"`
}

// Order stores order data
type Order struct {
	ID            int64               `json:"id"`
	ClientID      string              `json:"clientId"`
	Market        string              `json:"market"`
	Type          OrderType           `json:"type"`
	Side          Side                `json:"side"`
	Price         decimal.NullDecimal `json:"price"`
	Size          decimal.Decimal     `json:"size"`
	FilledSize    decimal.Decimal     `json:"filledSize"`
	RemainingSize decimal.Decimal     `json:"remainingSize"`
	AvgFillPrice  decimal.NullDecimal `json:"avgFillPrice"`
	Status        string              `json:"status"`
	Future        string              `json:"future"`
	ReduceOnly    bool                `json:"reduceOnly"`
	IOC           bool                `json:"ioc"`
	PostOnly      bool                `json:"postOnly"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// TriggerOrder stores conditional order data
type TriggerOrder struct {
	ID               int64               `json:"id"`
	Market           string              `json:"market"`
	Future           string              `json:"future"`
	Type             TriggerType         `json:"type"`
	OrderType        OrderType           `json:"orderType"`
	Side             Side                `json:"side"`
	Size             decimal.Decimal     `json:"size"`
	TriggerPrice     decimal.NullDecimal `json:"triggerPrice"`
	OrderPrice       decimal.NullDecimal `json:"orderPrice"`
	TrailStart       decimal.NullDecimal `json:"trailStart"`
	TrailValue       decimal.NullDecimal `json:"trailValue"`
	FilledSize       decimal.Decimal     `json:"filledSize"`
	AvgFillPrice     decimal.NullDecimal `json:"avgFillPrice"`
	Status           string              `json:"status"`
	ReduceOnly       bool                `json:"reduceOnly"`
	RetryUntilFilled bool                `json:"retryUntilFilled"`
	ClientID         string              `json:"clientId"`
	Error            string              `json:"error"`
	CreatedAt        time.Time           `json:"createdAt"`
	TriggeredAt      *time.Time          `json:"triggeredAt"`
}

// Trigger stores one firing of a conditional order. Error is set instead of
// the order fields when the firing failed.
type Trigger struct {
	Time       time.Time       `json:"time"`
	OrderID    int64           `json:"orderId"`
	OrderSize  decimal.Decimal `json:"orderSize"`
	FilledSize decimal.Decimal `json:"filledSize"`
	Error      string          `json:"error"`
}

// Fill stores a trade of the account
type Fill struct {
	ID            int64           `json:"id"`
	Market        string          `json:"market"`
	Future        string          `json:"future"`
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	Type          string          `json:"type"`
	Side          Side            `json:"side"`
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
	OrderID       int64           `json:"orderId"`
	TradeID       int64           `json:"tradeId"`
	Time          time.Time       `json:"time"`
	Fee           decimal.Decimal `json:"fee"`
	FeeCurrency   string          `json:"feeCurrency"`
	FeeRate       float64         `json:"feeRate"`
	Liquidity     string          `json:"liquidity"`
}
