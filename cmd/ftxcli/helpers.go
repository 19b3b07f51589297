package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gct-labs/ftxapi/encoding/json"
	"github.com/gct-labs/ftxapi/exchanges/ftx"
	"github.com/gofrs/uuid"
)

var errNoChannels = errors.New("at least one channel required")

func jsonOutput(in any) {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return
	}
	fmt.Println(string(j))
}

func newClientOrderID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// parseChannel parses "name" or "name:market", e.g. "orderbook:BTC/USD"
func parseChannel(s string) (ftx.Channel, error) {
	name, market, _ := strings.Cut(s, ":")
	c := ftx.Channel{Name: ftx.ChannelName(strings.ToLower(name)), Market: market}
	if err := c.Validate(); err != nil {
		return ftx.Channel{}, fmt.Errorf("%q: %w", s, err)
	}
	return c, nil
}

func parseChannels(args []string) ([]ftx.Channel, error) {
	if len(args) == 0 {
		return nil, errNoChannels
	}
	channels := make([]ftx.Channel, len(args))
	for i := range args {
		c, err := parseChannel(args[i])
		if err != nil {
			return nil, err
		}
		channels[i] = c
	}
	return channels, nil
}

func formatWsMessage(m ftx.WsInMessage) string {
	switch msg := m.(type) {
	case *ftx.WsSubscribed:
		return au.Green("subscribed ").String() + msg.Channel.String()
	case *ftx.WsUnsubscribed:
		return au.Yellow("unsubscribed ").String() + msg.Channel.String()
	case *ftx.WsPong:
		return au.Faint("pong").String()
	case *ftx.WsError:
		return au.Red(fmt.Sprintf("error %d: %s", msg.Code, msg.Msg)).String()
	case *ftx.WsInfo:
		return au.Cyan(fmt.Sprintf("info %d: %s", msg.Code, msg.Msg)).String()
	case *ftx.WsPartial:
		return formatChannelData(au.Bold("partial").String(), msg.Data)
	case *ftx.WsUpdate:
		return formatChannelData("update", msg.Data)
	case *ftx.WsClosed:
		return au.Magenta(fmt.Sprintf("closed %d %s", msg.Code, msg.Reason)).String()
	}
	return fmt.Sprintf("%T", m)
}

func formatChannelData(prefix string, d ftx.ChannelData) string {
	j, err := json.Marshal(d)
	if err != nil {
		return prefix + " " + d.Channel().String()
	}
	return prefix + " " + au.Blue(d.Channel().String()).String() + " " + string(j)
}
