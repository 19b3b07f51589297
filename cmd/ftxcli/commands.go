package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/gct-labs/ftxapi/exchanges/ftx"
	"github.com/gct-labs/ftxapi/types"
	"github.com/urfave/cli/v2"
)

var (
	errMarketRequired  = errors.New("market required")
	errInvalidOrderRef = errors.New("order ref must be an order id or a client id")
)

var marketsCommand = &cli.Command{
	Name:      "markets",
	Usage:     "lists all markets or a single market",
	ArgsUsage: "[market]",
	Action:    getMarkets,
}

var orderbookCommand = &cli.Command{
	Name:      "orderbook",
	Usage:     "gets the orderbook for a market",
	ArgsUsage: "<market>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "market",
			Usage: "the market to fetch, e.g. BTC/USD or BTC-PERP",
		},
		&cli.Int64Flag{
			Name:  "depth",
			Usage: "number of levels per side, at most 100",
			Value: 20,
		},
	},
	Action: getOrderbook,
}

var accountCommand = &cli.Command{
	Name:   "account",
	Usage:  "gets account information and positions",
	Action: getAccount,
}

var balancesCommand = &cli.Command{
	Name:  "balances",
	Usage: "gets balances for the account or every sub account",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "include every sub account",
		},
	},
	Action: getBalances,
}

var openOrdersCommand = &cli.Command{
	Name:      "orders",
	Usage:     "gets open orders",
	ArgsUsage: "[market]",
	Action:    getOpenOrders,
}

var orderHistoryCommand = &cli.Command{
	Name:      "history",
	Usage:     "gets order history",
	ArgsUsage: "[market]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "market",
			Usage: "restrict to a market",
		},
		&cli.DurationFlag{
			Name:  "since",
			Usage: "only return orders newer than this, e.g. 24h",
		},
		&cli.Int64Flag{
			Name:  "limit",
			Usage: "maximum number of orders",
		},
	},
	Action: getOrderHistory,
}

var placeOrderCommand = &cli.Command{
	Name:      "place",
	Usage:     "places an order",
	ArgsUsage: "<market> <side> <size> [price]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "type",
			Usage: "limit or market",
			Value: string(ftx.LimitOrder),
		},
		&cli.StringFlag{
			Name:  "clientid",
			Usage: "client order id, generated when unset",
		},
		&cli.BoolFlag{
			Name:  "reduceonly",
			Usage: "only reduce an existing position",
		},
		&cli.BoolFlag{
			Name:  "ioc",
			Usage: "immediate or cancel",
		},
		&cli.BoolFlag{
			Name:  "postonly",
			Usage: "cancel instead of taking liquidity",
		},
	},
	Action: placeOrder,
}

var cancelOrderCommand = &cli.Command{
	Name:      "cancel",
	Usage:     "cancels an order by order id or client id",
	ArgsUsage: "<orderid>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "clientid",
			Usage: "cancel by client order id instead",
		},
	},
	Action: cancelOrder,
}

func getMarkets(c *cli.Context) error {
	f, err := newClient(c)
	if err != nil {
		return err
	}
	if market := c.Args().First(); market != "" {
		m, err := f.GetMarket(c.Context, market)
		if err != nil {
			return err
		}
		jsonOutput(m)
		return nil
	}
	markets, err := f.GetMarkets(c.Context)
	if err != nil {
		return err
	}
	jsonOutput(markets)
	return nil
}

func getOrderbook(c *cli.Context) error {
	if c.NArg() == 0 && c.NumFlags() == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	market := c.String("market")
	if !c.IsSet("market") {
		market = c.Args().First()
	}
	if market == "" {
		return errMarketRequired
	}
	f, err := newClient(c)
	if err != nil {
		return err
	}
	ob, err := f.GetOrderbook(c.Context, market, c.Int64("depth"))
	if err != nil {
		return err
	}
	jsonOutput(ob)
	return nil
}

func getAccount(c *cli.Context) error {
	f, err := newClient(c)
	if err != nil {
		return err
	}
	info, err := f.GetAccountInformation(c.Context)
	if err != nil {
		return err
	}
	jsonOutput(info)
	return nil
}

func getBalances(c *cli.Context) error {
	f, err := newClient(c)
	if err != nil {
		return err
	}
	if c.Bool("all") {
		all, err := f.GetAllBalances(c.Context)
		if err != nil {
			return err
		}
		jsonOutput(all)
		return nil
	}
	balances, err := f.GetBalances(c.Context)
	if err != nil {
		return err
	}
	jsonOutput(balances)
	return nil
}

func getOpenOrders(c *cli.Context) error {
	f, err := newClient(c)
	if err != nil {
		return err
	}
	orders, err := f.GetOpenOrders(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	jsonOutput(orders)
	return nil
}

func getOrderHistory(c *cli.Context) error {
	req := &ftx.OrderHistoryRequest{
		Market: c.String("market"),
		Limit:  c.Int64("limit"),
	}
	if !c.IsSet("market") {
		req.Market = c.Args().First()
	}
	if since := c.Duration("since"); since > 0 {
		req.StartTime = time.Now().Add(-since)
	}
	f, err := newClient(c)
	if err != nil {
		return err
	}
	orders, hasMore, err := f.GetOrderHistory(c.Context, req)
	if err != nil {
		return err
	}
	jsonOutput(struct {
		Orders  []ftx.Order `json:"orders"`
		HasMore bool        `json:"hasMoreData"`
	}{orders, hasMore})
	return nil
}

func placeOrder(c *cli.Context) error {
	if c.NArg() < 3 {
		return cli.ShowSubcommandHelp(c)
	}
	req, err := buildOrderRequest(c.Args().Slice(), c.String("type"))
	if err != nil {
		return err
	}
	req.ReduceOnly = c.Bool("reduceonly")
	req.IOC = c.Bool("ioc")
	req.PostOnly = c.Bool("postonly")
	req.ClientID = c.String("clientid")
	if req.ClientID == "" {
		if req.ClientID, err = newClientOrderID(); err != nil {
			return err
		}
	}
	f, err := newClient(c)
	if err != nil {
		return err
	}
	o, err := f.PlaceOrder(c.Context, req)
	if err != nil {
		return err
	}
	jsonOutput(o)
	return nil
}

// buildOrderRequest parses <market> <side> <size> [price]. Validation of the
// combination is left to the client.
func buildOrderRequest(args []string, orderType string) (*ftx.PlaceOrderRequest, error) {
	if len(args) < 3 {
		return nil, errMarketRequired
	}
	size, err := types.NewNumber(args[2])
	if err != nil {
		return nil, err
	}
	req := &ftx.PlaceOrderRequest{
		Market: args[0],
		Side:   ftx.Side(args[1]),
		Type:   ftx.OrderType(orderType),
		Size:   size,
	}
	if len(args) > 3 {
		price, err := types.NewNumber(args[3])
		if err != nil {
			return nil, err
		}
		req.Price = &price
	}
	return req, nil
}

func cancelOrder(c *cli.Context) error {
	ref, err := parseOrderRef(c.Args().First(), c.String("clientid"))
	if err != nil {
		return err
	}
	f, err := newClient(c)
	if err != nil {
		return err
	}
	status, err := f.CancelOrder(c.Context, ref)
	if err != nil {
		return err
	}
	jsonOutput(status)
	return nil
}

func parseOrderRef(orderID, clientID string) (ftx.OrderRef, error) {
	switch {
	case clientID != "" && orderID != "":
		return ftx.OrderRef{}, errInvalidOrderRef
	case clientID != "":
		return ftx.ByClientID(clientID), nil
	case orderID == "":
		return ftx.OrderRef{}, errInvalidOrderRef
	}
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return ftx.OrderRef{}, errInvalidOrderRef
	}
	return ftx.ByOrderID(id), nil
}
