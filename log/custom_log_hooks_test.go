package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetCustomLoghook(t *testing.T) {
	sl, err := NewSubLogger("hooktest")
	if !assert.NoError(t, err, "NewSubLogger should not error") {
		return
	}
	var buf bytes.Buffer
	sl.SetOutput(&buf)

	var seen []string
	SetCustomLogHook(func(header, name string, a ...any) bool {
		seen = append(seen, header, name)
		return true
	})
	defer SetCustomLogHook(nil)

	Info(sl, "bypassed")
	assert.Equal(t, []string{"[INFO]", "HOOKTEST"}, seen, "hook should receive header and sub logger name")
	assert.Zero(t, buf.Len(), "bypassing hook should stop the write")
}
