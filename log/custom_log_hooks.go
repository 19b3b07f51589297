package log

// CustomLogHook receives every enabled log line before it is written. Returning
// true drops the line from the sub logger output.
type CustomLogHook func(header, subLoggerName string, a ...any) (bypassLibraryLogSystem bool)

var customLogHook CustomLogHook

// SetCustomLogHook routes log lines through h so applications embedding the
// client can forward them to their own logger. A nil h removes the hook.
func SetCustomLogHook(h CustomLogHook) {
	mu.Lock()
	customLogHook = h
	mu.Unlock()
}
