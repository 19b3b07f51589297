package signaler

import (
	"context"
	"os"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signalSelf(t *testing.T, sig os.Signal) {
	t.Helper()
	proc, err := os.FindProcess(os.Getpid())
	require.NoError(t, err, "os.FindProcess must not error")
	if err := proc.Signal(sig); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("proc.Signal(%s) not supported on Windows: %v", sig, err)
		}
		require.NoErrorf(t, err, "proc.Signal(%s) must not error", sig)
	}
}

func TestWaitForInterrupt(t *testing.T) {
	t.Parallel()
	for _, sig := range []os.Signal{syscall.SIGTERM, os.Interrupt} {
		sigC := WaitForInterrupt()
		signalSelf(t, sig)
		assert.Eventuallyf(t, func() bool {
			select {
			case got := <-sigC:
				return got == sig
			default:
				return false
			}
		}, 2*time.Second, 10*time.Millisecond, "Signal %s should be received within timeout", sig)
	}
}

func TestWithInterruptCancelsOnSignal(t *testing.T) {
	// Not parallel: a stray signal would be read by TestWaitForInterrupt
	ctx, stop := WithInterrupt(context.Background())
	defer stop()
	signalSelf(t, os.Interrupt)
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context should be cancelled by an interrupt")
	}
}

func TestWithInterruptStop(t *testing.T) {
	// Not parallel: TestWaitForInterrupt signals the whole process
	ctx, stop := WithInterrupt(context.Background())
	require.NoError(t, ctx.Err(), "context must not be done before an interrupt")
	stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled, "stop should cancel the context")
}
