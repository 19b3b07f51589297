package log

import (
	"io"
	"sync"
)

const (
	timestampFormat = " 02/01/2006 15:04:05 "
	spacer          = " | "
	// DefaultMaxFileSize for logger rotation file in megabytes
	DefaultMaxFileSize = 100
	// DefaultLevels enables every level
	DefaultLevels = "INFO|DEBUG|WARN|ERROR"
)

var (
	logger = newLogger(nil)

	globalLogFile io.WriteCloser

	mu sync.RWMutex
)

// Config holds configuration settings for the logger
type Config struct {
	Enabled          bool `json:"enabled" mapstructure:"enabled"`
	SubLoggerConfig  `mapstructure:",squash"`
	LoggerFileConfig *FileConfig       `json:"fileSettings,omitempty" mapstructure:"fileSettings"`
	AdvancedSettings AdvancedSettings  `json:"advancedSettings" mapstructure:"advancedSettings"`
	SubLoggers       []SubLoggerConfig `json:"subloggers,omitempty" mapstructure:"subloggers"`
}

// AdvancedSettings holds formatting options for log lines
type AdvancedSettings struct {
	ShowLogSystemName bool    `json:"showLogSystemName" mapstructure:"showLogSystemName"`
	Spacer            string  `json:"spacer" mapstructure:"spacer"`
	TimeStampFormat   string  `json:"timeStampFormat" mapstructure:"timeStampFormat"`
	Headers           Headers `json:"headers" mapstructure:"headers"`
}

// Headers are the per level prefixes of a log line
type Headers struct {
	Info  string `json:"info" mapstructure:"info"`
	Warn  string `json:"warn" mapstructure:"warn"`
	Debug string `json:"debug" mapstructure:"debug"`
	Error string `json:"error" mapstructure:"error"`
}

// SubLoggerConfig holds sub logger configuration settings
type SubLoggerConfig struct {
	Name   string `json:"name,omitempty" mapstructure:"name"`
	Level  string `json:"level" mapstructure:"level"`
	Output string `json:"output" mapstructure:"output"`
}

// FileConfig holds the rotating file writer settings
type FileConfig struct {
	FileName   string `json:"filename,omitempty" mapstructure:"filename"`
	MaxSize    int    `json:"maxsize,omitempty" mapstructure:"maxsize"`
	MaxBackups int    `json:"maxbackups,omitempty" mapstructure:"maxbackups"`
	MaxAge     int    `json:"maxage,omitempty" mapstructure:"maxage"`
	Compress   bool   `json:"compress,omitempty" mapstructure:"compress"`
}

// Logger each instance of logger settings
type Logger struct {
	ShowLogSystemName                                bool
	TimestampFormat                                  string
	InfoHeader, ErrorHeader, DebugHeader, WarnHeader string
	Spacer                                           string
}

// Levels flags for each sub logger type
type Levels struct {
	Info, Debug, Warn, Error bool
}
