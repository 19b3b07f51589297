package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string and writes it out
func Info(sl *SubLogger, data string) {
	stage(sl, levelInfo, func() string { return data })
}

// Infoln takes a pointer subLogger struct and interface and writes it out
func Infoln(sl *SubLogger, v ...any) {
	stage(sl, levelInfo, func() string { return fmt.Sprint(v...) })
}

// Infof takes a pointer subLogger struct, string and interface formats and writes it out
func Infof(sl *SubLogger, data string, v ...any) {
	stage(sl, levelInfo, func() string { return fmt.Sprintf(data, v...) })
}

// Debug takes a pointer subLogger struct and string and writes it out
func Debug(sl *SubLogger, data string) {
	stage(sl, levelDebug, func() string { return data })
}

// Debugln takes a pointer subLogger struct and interface and writes it out
func Debugln(sl *SubLogger, v ...any) {
	stage(sl, levelDebug, func() string { return fmt.Sprint(v...) })
}

// Debugf takes a pointer subLogger struct, string and interface formats and writes it out
func Debugf(sl *SubLogger, data string, v ...any) {
	stage(sl, levelDebug, func() string { return fmt.Sprintf(data, v...) })
}

// Warn takes a pointer subLogger struct and string and writes it out
func Warn(sl *SubLogger, data string) {
	stage(sl, levelWarn, func() string { return data })
}

// Warnln takes a pointer subLogger struct and interface and writes it out
func Warnln(sl *SubLogger, v ...any) {
	stage(sl, levelWarn, func() string { return fmt.Sprint(v...) })
}

// Warnf takes a pointer subLogger struct, string and interface formats and writes it out
func Warnf(sl *SubLogger, data string, v ...any) {
	stage(sl, levelWarn, func() string { return fmt.Sprintf(data, v...) })
}

// Error takes a pointer subLogger struct and string and writes it out
func Error(sl *SubLogger, data string) {
	stage(sl, levelError, func() string { return data })
}

// Errorln takes a pointer subLogger struct and interface and writes it out
func Errorln(sl *SubLogger, v ...any) {
	stage(sl, levelError, func() string { return fmt.Sprint(v...) })
}

// Errorf takes a pointer subLogger struct, string and interface formats and writes it out
func Errorf(sl *SubLogger, data string, v ...any) {
	stage(sl, levelError, func() string { return fmt.Sprintf(data, v...) })
}

type level uint8

const (
	levelInfo level = iota
	levelDebug
	levelWarn
	levelError
)

func (l *Logger) header(lvl level) string {
	switch lvl {
	case levelInfo:
		return l.InfoHeader
	case levelDebug:
		return l.DebugHeader
	case levelWarn:
		return l.WarnHeader
	default:
		return l.ErrorHeader
	}
}

func (lv Levels) enabled(lvl level) bool {
	switch lvl {
	case levelInfo:
		return lv.Info
	case levelDebug:
		return lv.Debug
	case levelWarn:
		return lv.Warn
	default:
		return lv.Error
	}
}

// stage formats the message lazily so disabled levels cost nothing
func stage(sl *SubLogger, lvl level, msg func() string) {
	if sl == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	if !sl.levels.enabled(lvl) || sl.output == nil {
		return
	}
	header := logger.header(lvl)
	if customLogHook != nil && customLogHook(header, sl.name, msg()) {
		return
	}

	var b strings.Builder
	b.WriteString(header)
	if logger.ShowLogSystemName {
		b.WriteString(logger.Spacer)
		b.WriteString(sl.name)
	}
	b.WriteString(logger.Spacer)
	if logger.TimestampFormat != "" {
		b.WriteString(time.Now().Format(logger.TimestampFormat))
		b.WriteString(logger.Spacer)
	}
	b.WriteString(msg())
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	if _, err := sl.output.Write([]byte(b.String())); err != nil {
		displayError(err)
	}
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}
