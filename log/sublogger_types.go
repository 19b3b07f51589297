package log

import (
	"io"
	"os"
	"strings"
)

// Sub loggers used across the module
var (
	subLoggers = map[string]*SubLogger{}

	Global       *SubLogger
	ConfigMgr    *SubLogger
	RequestSys   *SubLogger
	ExchangeSys  *SubLogger
	WebsocketMgr *SubLogger
)

// SubLogger is a named log stream with its own levels and writer
type SubLogger struct {
	name   string
	levels Levels
	output io.Writer
}

// NewSubLogger allows for a new sub logger to be registered.
func NewSubLogger(name string) (*SubLogger, error) {
	if name == "" {
		return nil, errEmptyLoggerName
	}
	name = strings.ToUpper(name)
	mu.Lock()
	defer mu.Unlock()
	if _, ok := subLoggers[name]; ok {
		return nil, errSubLoggerAlreadyRegistered
	}
	return registerNewSubLogger(name), nil
}

// Name returns the sub logger name
func (sl *SubLogger) Name() string {
	if sl == nil {
		return ""
	}
	return sl.name
}

// GetLevels returns the enabled levels of the sub logger
func (sl *SubLogger) GetLevels() Levels {
	if sl == nil {
		return Levels{}
	}
	mu.RLock()
	defer mu.RUnlock()
	return sl.levels
}

// SetLevels overwrites the enabled levels of the sub logger
func (sl *SubLogger) SetLevels(levels Levels) {
	if sl == nil {
		return
	}
	mu.Lock()
	sl.levels = levels
	mu.Unlock()
}

// SetOutput overwrites the writer of the sub logger
func (sl *SubLogger) SetOutput(w io.Writer) {
	if sl == nil {
		return
	}
	mu.Lock()
	sl.output = w
	mu.Unlock()
}

func registerNewSubLogger(name string) *SubLogger {
	sl := &SubLogger{
		name:   strings.ToUpper(name),
		output: os.Stdout,
		levels: splitLevel(DefaultLevels),
	}
	subLoggers[sl.name] = sl
	return sl
}

func init() {
	Global = registerNewSubLogger("LOG")
	ConfigMgr = registerNewSubLogger("CONFIG")
	RequestSys = registerNewSubLogger("REQUESTER")
	ExchangeSys = registerNewSubLogger("EXCHANGE")
	WebsocketMgr = registerNewSubLogger("WEBSOCKET")
}
