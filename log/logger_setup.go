package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	errSubloggerConfigIsNil       = errors.New("sublogger config is nil")
	errUnhandledOutputWriter      = errors.New("unhandled output writer")
	errFileLoggingNotConfigured   = errors.New("file output requested but file settings are not configured")
	errEmptyLoggerName            = errors.New("cannot have empty logger name")
	errSubLoggerAlreadyRegistered = errors.New("sub logger already registered")
	errSubLoggerNotFound          = errors.New("sub logger not found")
)

// GenDefaultSettings return struct with known sane/working logger settings
func GenDefaultSettings() Config {
	return Config{
		Enabled: true,
		SubLoggerConfig: SubLoggerConfig{
			Level:  DefaultLevels,
			Output: "console",
		},
		LoggerFileConfig: &FileConfig{
			FileName: "ftxapi.log",
			MaxSize:  DefaultMaxFileSize,
		},
		AdvancedSettings: AdvancedSettings{
			Spacer:          spacer,
			TimeStampFormat: timestampFormat,
			Headers: Headers{
				Info:  "[INFO]",
				Warn:  "[WARN]",
				Debug: "[DEBUG]",
				Error: "[ERROR]",
			},
		},
	}
}

func newLogger(c *Config) Logger {
	if c == nil {
		d := GenDefaultSettings()
		c = &d
	}
	return Logger{
		ShowLogSystemName: c.AdvancedSettings.ShowLogSystemName,
		TimestampFormat:   c.AdvancedSettings.TimeStampFormat,
		Spacer:            c.AdvancedSettings.Spacer,
		InfoHeader:        c.AdvancedSettings.Headers.Info,
		ErrorHeader:       c.AdvancedSettings.Headers.Error,
		DebugHeader:       c.AdvancedSettings.Headers.Debug,
		WarnHeader:        c.AdvancedSettings.Headers.Warn,
	}
}

// getWriters resolves a "|" separated output list. A caller holding mu must
// have already opened the log file when "file" is requested.
func getWriters(s *SubLoggerConfig) (io.Writer, error) {
	if s == nil {
		return nil, errSubloggerConfigIsNil
	}
	mw, err := MultiWriter()
	if err != nil {
		return nil, err
	}
	for _, output := range strings.Split(s.Output, "|") {
		var writer io.Writer
		switch strings.ToLower(strings.TrimSpace(output)) {
		case "stdout", "console":
			writer = os.Stdout
		case "stderr":
			writer = os.Stderr
		case "file":
			if globalLogFile == nil {
				return nil, errFileLoggingNotConfigured
			}
			writer = globalLogFile
		default:
			return nil, fmt.Errorf("%w: %s", errUnhandledOutputWriter, output)
		}
		if err := mw.Add(writer); err != nil {
			return nil, err
		}
	}
	return mw, nil
}

func usesFile(c *Config) bool {
	check := func(output string) bool {
		for _, o := range strings.Split(output, "|") {
			if strings.EqualFold(strings.TrimSpace(o), "file") {
				return true
			}
		}
		return false
	}
	if check(c.Output) {
		return true
	}
	for i := range c.SubLoggers {
		if check(c.SubLoggers[i].Output) {
			return true
		}
	}
	return false
}

// SetupGlobalLogger applies the configuration to every registered sub logger.
// logDir is where the rotating log file is placed when any output is "file".
func SetupGlobalLogger(c *Config, logDir string) error {
	if c == nil {
		return errSubloggerConfigIsNil
	}
	mu.Lock()
	defer mu.Unlock()

	if globalLogFile != nil {
		displayError(globalLogFile.Close())
		globalLogFile = nil
	}

	if !c.Enabled {
		for _, sl := range subLoggers {
			sl.levels = Levels{}
		}
		return nil
	}

	if usesFile(c) {
		if c.LoggerFileConfig == nil || c.LoggerFileConfig.FileName == "" {
			return errFileLoggingNotConfigured
		}
		maxSize := c.LoggerFileConfig.MaxSize
		if maxSize <= 0 {
			maxSize = DefaultMaxFileSize
		}
		globalLogFile = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, c.LoggerFileConfig.FileName),
			MaxSize:    maxSize,
			MaxBackups: c.LoggerFileConfig.MaxBackups,
			MaxAge:     c.LoggerFileConfig.MaxAge,
			Compress:   c.LoggerFileConfig.Compress,
		}
	}

	output, err := getWriters(&c.SubLoggerConfig)
	if err != nil {
		return err
	}
	levels := splitLevel(c.Level)
	for _, sl := range subLoggers {
		sl.levels = levels
		sl.output = output
	}

	for i := range c.SubLoggers {
		sl, ok := subLoggers[strings.ToUpper(c.SubLoggers[i].Name)]
		if !ok {
			return fmt.Errorf("%w: %s", errSubLoggerNotFound, c.SubLoggers[i].Name)
		}
		w, err := getWriters(&c.SubLoggers[i])
		if err != nil {
			return err
		}
		sl.output = w
		sl.levels = splitLevel(c.SubLoggers[i].Level)
	}

	logger = newLogger(c)
	return nil
}

// CloseLogger closes the rotating log file if one is open
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	return err
}

func splitLevel(level string) (l Levels) {
	for _, lvl := range strings.Split(level, "|") {
		switch strings.ToUpper(strings.TrimSpace(lvl)) {
		case "DEBUG":
			l.Debug = true
		case "INFO":
			l.Info = true
		case "WARN":
			l.Warn = true
		case "ERROR":
			l.Error = true
		}
	}
	return
}
