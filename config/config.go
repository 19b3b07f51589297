package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gct-labs/ftxapi/log"
	"github.com/spf13/viper"
)

var (
	errPartialCredentials   = errors.New("api key and secret must both be set or both be empty")
	errSubaccountWithoutKey = errors.New("subaccount set without api credentials")
	errOTPWithoutKey        = errors.New("otp secret set without api credentials")
	errInvalidURL           = errors.New("invalid url")
	errInvalidTimeout       = errors.New("http timeout cannot be negative")
)

// envKeys are the config keys which can be overridden by FTX_ prefixed
// environment variables, e.g. api.key -> FTX_API_KEY
var envKeys = []string{
	"api.key",
	"api.secret",
	"api.subaccount",
	"api.otpSecret",
	"endpoints.rest",
	"endpoints.websocket",
	"userAgent",
	"httpTimeout",
	"verbose",
	"httpDebugging",
	"dataDirectory",
}

func newViper() *viper.Viper {
	v := viper.New()
	for _, k := range envKeys {
		// BindEnv only errors on an empty key
		_ = v.BindEnv(k, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(k, ".", "_")))
	}

	logging := log.GenDefaultSettings()
	v.SetDefault("name", "ftx")
	v.SetDefault("endpoints.rest", DefaultRESTURL)
	v.SetDefault("endpoints.websocket", DefaultWSURL)
	v.SetDefault("userAgent", DefaultUserAgent)
	v.SetDefault("httpTimeout", DefaultHTTPTimeout)
	v.SetDefault("logging.enabled", logging.Enabled)
	v.SetDefault("logging.level", logging.Level)
	v.SetDefault("logging.output", logging.Output)
	v.SetDefault("logging.fileSettings.filename", logging.LoggerFileConfig.FileName)
	v.SetDefault("logging.fileSettings.maxsize", logging.LoggerFileConfig.MaxSize)
	v.SetDefault("logging.advancedSettings.spacer", logging.AdvancedSettings.Spacer)
	v.SetDefault("logging.advancedSettings.timeStampFormat", logging.AdvancedSettings.TimeStampFormat)
	v.SetDefault("logging.advancedSettings.headers.info", logging.AdvancedSettings.Headers.Info)
	v.SetDefault("logging.advancedSettings.headers.warn", logging.AdvancedSettings.Headers.Warn)
	v.SetDefault("logging.advancedSettings.headers.debug", logging.AdvancedSettings.Headers.Debug)
	v.SetDefault("logging.advancedSettings.headers.error", logging.AdvancedSettings.Headers.Error)
	return v
}

// LoadConfig loads the configuration from a JSON or YAML file, selected by
// extension, and applies environment overrides. An empty path yields the
// defaults plus environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %q: %w", configPath, err)
		}
		log.Debugf(log.ConfigMgr, "Using config file %s", v.ConfigFileUsed())
	}
	return decode(v)
}

// ReadConfig loads the configuration from r, format being "json" or "yaml"
func ReadConfig(r io.Reader, format string) (*Config, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("could not parse %s config: %w", format, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.CheckConfig(); err != nil {
		return nil, err
	}
	return &c, nil
}

// CheckConfig fills in missing values and validates the result
func (c *Config) CheckConfig() error {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Endpoints.REST == "" {
		c.Endpoints.REST = DefaultRESTURL
	}
	if c.Endpoints.Websocket == "" {
		c.Endpoints.Websocket = DefaultWSURL
	}
	c.CheckLoggerConfig()
	return c.Validate()
}

// CheckLoggerConfig checks to see logger values are present and valid in config
// if not creates a default instance of the logger
func (c *Config) CheckLoggerConfig() {
	if c.Logging.Output == "" {
		c.Logging = log.GenDefaultSettings()
		return
	}
	if c.Logging.LoggerFileConfig != nil && c.Logging.LoggerFileConfig.MaxSize <= 0 {
		log.Warnf(log.ConfigMgr, "Logger rotation size invalid, defaulting to %v", log.DefaultMaxFileSize)
		c.Logging.LoggerFileConfig.MaxSize = log.DefaultMaxFileSize
	}
}

// Validate checks credentials, URLs and timeouts
func (c *Config) Validate() error {
	hasKey, hasSecret := c.API.Key != "", c.API.Secret != ""
	if hasKey != hasSecret {
		return errPartialCredentials
	}
	if !hasKey && c.API.Subaccount != "" {
		return errSubaccountWithoutKey
	}
	if !hasKey && c.API.OTPSecret != "" {
		return errOTPWithoutKey
	}
	if err := checkURL(c.Endpoints.REST, "http", "https"); err != nil {
		return fmt.Errorf("rest endpoint: %w", err)
	}
	if err := checkURL(c.Endpoints.Websocket, "ws", "wss"); err != nil {
		return fmt.Errorf("websocket endpoint: %w", err)
	}
	if c.HTTPTimeout < 0 {
		return errInvalidTimeout
	}
	return nil
}

// HasCredentials returns whether an API key pair is configured
func (c *Config) HasCredentials() bool {
	return c.API.Key != "" && c.API.Secret != ""
}

// GetDataPath returns the data directory joined with elem, defaulting to
// $HOME/.ftxapi
func (c *Config) GetDataPath(elem ...string) string {
	baseDir := c.DataDirectory
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		baseDir = filepath.Join(home, ".ftxapi")
	}
	return filepath.Join(append([]string{baseDir}, elem...)...)
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %v", errInvalidURL, raw, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q: missing host", errInvalidURL, raw)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return nil
		}
	}
	return fmt.Errorf("%w %q: scheme must be one of %v", errInvalidURL, raw, schemes)
}
