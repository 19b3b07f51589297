package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubLogger(t *testing.T, name string) (*SubLogger, *bytes.Buffer) {
	t.Helper()
	sl, err := NewSubLogger(name)
	require.NoError(t, err, "NewSubLogger must not error")
	buf := new(bytes.Buffer)
	sl.SetOutput(buf)
	return sl, buf
}

func TestNewSubLogger(t *testing.T) {
	t.Parallel()
	_, err := NewSubLogger("")
	assert.ErrorIs(t, err, errEmptyLoggerName)

	sl, err := NewSubLogger("newsub")
	require.NoError(t, err)
	assert.Equal(t, "NEWSUB", sl.Name())
	assert.Equal(t, Levels{Info: true, Debug: true, Warn: true, Error: true}, sl.GetLevels())

	_, err = NewSubLogger("NewSub")
	assert.ErrorIs(t, err, errSubLoggerAlreadyRegistered)

	var nilLogger *SubLogger
	assert.Empty(t, nilLogger.Name())
	assert.NotPanics(t, func() { Infof(nilLogger, "nothing %d", 1) })
}

func TestLevelsFilterOutput(t *testing.T) {
	t.Parallel()
	sl, buf := newTestSubLogger(t, "levels")
	sl.SetLevels(splitLevel("WARN|ERROR"))

	Info(sl, "info line")
	Debugf(sl, "debug %s", "line")
	assert.Zero(t, buf.Len(), "disabled levels should not write")

	Warnf(sl, "warn %d", 42)
	Errorln(sl, "error", "line")
	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "warn 42")
	assert.Contains(t, out, "[ERROR]")
	assert.Equal(t, 2, strings.Count(out, "\n"), "each entry should end with a single newline")
}

func TestSplitLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Levels{Info: true, Debug: true}, splitLevel("info|DEBUG"))
	assert.Equal(t, Levels{}, splitLevel(""))
	assert.Equal(t, Levels{Error: true}, splitLevel("ERROR|NOPE"))
}

func TestGetWriters(t *testing.T) {
	t.Parallel()
	_, err := getWriters(nil)
	assert.ErrorIs(t, err, errSubloggerConfigIsNil)

	_, err = getWriters(&SubLoggerConfig{Output: "stdout|carrier-pigeon"})
	assert.ErrorIs(t, err, errUnhandledOutputWriter)

	_, err = getWriters(&SubLoggerConfig{Output: "stdout|console"})
	assert.ErrorIs(t, err, errWriterAlreadyLoaded, "stdout and console are the same writer")

	w, err := getWriters(&SubLoggerConfig{Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, w)
}

type errWriter struct{}

var errBrokenWriter = errors.New("broken")

func (errWriter) Write([]byte) (int, error) { return 0, errBrokenWriter }

func TestMultiWriter(t *testing.T) {
	t.Parallel()
	var a, b bytes.Buffer
	mw, err := MultiWriter(&a, &b)
	require.NoError(t, err)

	n, err := mw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())

	assert.ErrorIs(t, mw.Add(&a), errWriterAlreadyLoaded)
	require.NoError(t, mw.Remove(&a))
	assert.ErrorIs(t, mw.Remove(&a), errWriterNotFound)

	require.NoError(t, mw.Add(errWriter{}))
	_, err = mw.Write([]byte("x"))
	assert.ErrorIs(t, err, errBrokenWriter)

	_, err = MultiWriter(&a, &a)
	assert.ErrorIs(t, err, errWriterAlreadyLoaded)
}

// TestSetupGlobalLogger mutates package state so it does not run in parallel
func TestSetupGlobalLogger(t *testing.T) {
	assert.ErrorIs(t, SetupGlobalLogger(nil, ""), errSubloggerConfigIsNil)

	dir := t.TempDir()
	c := GenDefaultSettings()
	c.Output = "file"
	c.AdvancedSettings.ShowLogSystemName = true
	c.SubLoggers = []SubLoggerConfig{{Name: "requester", Level: "ERROR", Output: "file"}}
	require.NoError(t, SetupGlobalLogger(&c, dir))
	defer func() {
		d := GenDefaultSettings()
		assert.NoError(t, SetupGlobalLogger(&d, ""))
	}()

	Infof(ExchangeSys, "order %s placed", "abc")
	Info(RequestSys, "filtered out")
	Error(RequestSys, "request failed")
	require.NoError(t, CloseLogger())

	b, err := os.ReadFile(filepath.Join(dir, "ftxapi.log"))
	require.NoError(t, err, "ReadFile must not error")
	out := string(b)
	assert.Contains(t, out, "EXCHANGE")
	assert.Contains(t, out, "order abc placed")
	assert.NotContains(t, out, "filtered out")
	assert.Contains(t, out, "request failed")

	c.LoggerFileConfig = nil
	assert.ErrorIs(t, SetupGlobalLogger(&c, dir), errFileLoggingNotConfigured)

	c = GenDefaultSettings()
	c.SubLoggers = []SubLoggerConfig{{Name: "nope", Level: "INFO", Output: "console"}}
	assert.ErrorIs(t, SetupGlobalLogger(&c, ""), errSubLoggerNotFound)

	c = GenDefaultSettings()
	c.Enabled = false
	require.NoError(t, SetupGlobalLogger(&c, ""))
	assert.Equal(t, Levels{}, Global.GetLevels())
}
