package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gct-labs/ftxapi/config"
	"github.com/gct-labs/ftxapi/exchanges/ftx"
	"github.com/gct-labs/ftxapi/log"
	"github.com/gct-labs/ftxapi/signaler"
	"github.com/joho/godotenv"
	"github.com/logrusorgru/aurora"
	"github.com/urfave/cli/v2"
)

var (
	configPath    string
	envFile       string
	verbose       bool
	noColour      bool
	apiKey        string
	apiSecret     string
	apiSubaccount string

	au = aurora.NewAurora(true)
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signaler.WithInterrupt(context.Background())
	defer stop()
	defer func() {
		if err := log.CloseLogger(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()
	return newApp().RunContext(ctx, args)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ftxcli"
	app.EnableBashCompletion = true
	app.Usage = "command line client for the FTX REST and websocket API"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to a JSON or YAML config file",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "env",
			Value:       ".env",
			Usage:       "dotenv file loaded before the config; existing variables win",
			Destination: &envFile,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "log requests and stream traffic",
			Destination: &verbose,
		},
		&cli.BoolFlag{
			Name:        "nocolour",
			Usage:       "disable coloured stream output",
			Destination: &noColour,
		},
		&cli.StringFlag{
			Name:        "apikey",
			Usage:       "override config API key",
			Destination: &apiKey,
		},
		&cli.StringFlag{
			Name:        "apisecret",
			Usage:       "override config API secret",
			Destination: &apiSecret,
		},
		&cli.StringFlag{
			Name:        "apisubaccount",
			Usage:       "override config API sub account",
			Destination: &apiSubaccount,
		},
	}
	app.Before = func(c *cli.Context) error {
		if noColour {
			au = aurora.NewAurora(false)
		}
		return loadEnv(envFile, c.IsSet("env"))
	}
	app.Commands = []*cli.Command{
		marketsCommand,
		orderbookCommand,
		accountCommand,
		balancesCommand,
		openOrdersCommand,
		orderHistoryCommand,
		placeOrderCommand,
		cancelOrderCommand,
		streamCommand,
	}
	return app
}

// loadEnv loads a dotenv file. A missing default file is not an error.
func loadEnv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return err
}

// loadConfig reads the config and applies command line overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if c.IsSet("apikey") {
		cfg.API.Key = apiKey
	}
	if c.IsSet("apisecret") {
		cfg.API.Secret = apiSecret
	}
	if c.IsSet("apisubaccount") {
		cfg.API.Subaccount = apiSubaccount
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newClient builds an FTX client and sets up logging from the config
func newClient(c *cli.Context) (*ftx.FTX, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := log.SetupGlobalLogger(&cfg.Logging, cfg.GetDataPath("logs")); err != nil {
		return nil, err
	}
	return ftx.NewFromConfig(cfg)
}
