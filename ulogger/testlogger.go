package ulogger

import "testing"

// TestLogger routes log lines through testing.T.Logf, grounded on the
// verbose test logger pattern: useful when a test wants to see logger
// output interleaved with `go test -v`, without standing up zerolog.
type TestLogger struct {
	t *testing.T
}

// NewTestLogger builds a Logger that writes to t.Logf.
func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t}
}

func (l *TestLogger) LogLevel() string            { return "DEBUG" }
func (l *TestLogger) SetLogLevel(level string)     {}
func (l *TestLogger) New(service string, options ...Option) Logger { return l }

func (l *TestLogger) Debugf(format string, args ...interface{}) { l.t.Logf("[DEBUG] "+format, args...) }
func (l *TestLogger) Infof(format string, args ...interface{})  { l.t.Logf("[INFO] "+format, args...) }
func (l *TestLogger) Warnf(format string, args ...interface{})  { l.t.Logf("[WARN] "+format, args...) }
func (l *TestLogger) Errorf(format string, args ...interface{}) { l.t.Logf("[ERROR] "+format, args...) }
func (l *TestLogger) Fatalf(format string, args ...interface{}) { l.t.Fatalf("[FATAL] "+format, args...) }
