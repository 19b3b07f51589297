package config

import (
	"time"

	"github.com/gct-labs/ftxapi/log"
)

// Constants declared here are filenames and default values
const (
	File               = "config.json"
	EnvPrefix          = "FTX"
	DefaultRESTURL     = "https://ftx.com/api"
	DefaultWSURL       = "wss://ftx.com/ws/"
	DefaultUserAgent   = "ftxapi-go"
	DefaultHTTPTimeout = 15 * time.Second
)

// Config is the overarching object that holds all the information for the
// client and command line tool
type Config struct {
	Name          string               `json:"name" mapstructure:"name"`
	API           APICredentialsConfig `json:"api" mapstructure:"api"`
	Endpoints     EndpointsConfig      `json:"endpoints" mapstructure:"endpoints"`
	UserAgent     string               `json:"userAgent" mapstructure:"userAgent"`
	HTTPTimeout   time.Duration        `json:"httpTimeout" mapstructure:"httpTimeout"`
	Verbose       bool                 `json:"verbose" mapstructure:"verbose"`
	HTTPDebugging bool                 `json:"httpDebugging" mapstructure:"httpDebugging"`
	Logging       log.Config           `json:"logging" mapstructure:"logging"`
	DataDirectory string               `json:"dataDirectory" mapstructure:"dataDirectory"`
}

// APICredentialsConfig stores the API credentials
type APICredentialsConfig struct {
	Key        string `json:"key,omitempty" mapstructure:"key"`
	Secret     string `json:"secret,omitempty" mapstructure:"secret"`
	Subaccount string `json:"subaccount,omitempty" mapstructure:"subaccount"`
	OTPSecret  string `json:"otpSecret,omitempty" mapstructure:"otpSecret"`
}

// EndpointsConfig stores the REST and websocket base URLs
type EndpointsConfig struct {
	REST      string `json:"rest" mapstructure:"rest"`
	Websocket string `json:"websocket" mapstructure:"websocket"`
}
