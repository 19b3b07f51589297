package main

import (
	"fmt"

	"github.com/gct-labs/ftxapi/log"
	"github.com/urfave/cli/v2"
)

var streamCommand = &cli.Command{
	Name:      "stream",
	Usage:     "subscribes to websocket channels and prints every message",
	ArgsUsage: "<channel[:market]>...",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "login",
			Usage: "authenticate before subscribing, required for fills and orders",
		},
	},
	Action: streamChannels,
}

func streamChannels(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	channels, err := parseChannels(c.Args().Slice())
	if err != nil {
		return err
	}
	f, err := newClient(c)
	if err != nil {
		return err
	}
	s, err := f.WsConnect(c.Context)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Errorf(log.WebsocketMgr, "closing stream: %v", err)
		}
	}()
	if c.Bool("login") {
		if err := f.WsLogin(c.Context, s); err != nil {
			return err
		}
	}
	for i := range channels {
		if err := s.Subscribe(c.Context, channels[i]); err != nil {
			return err
		}
	}
	for res := range s.Messages(c.Context) {
		if res.Err != nil {
			fmt.Println(au.Red(res.Err.Error()))
			continue
		}
		fmt.Println(formatWsMessage(res.Message))
	}
	return nil
}
