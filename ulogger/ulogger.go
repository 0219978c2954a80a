// Package ulogger provides the structured logger used across chainscan.
// It wraps zerolog the way the rest of this codebase does, trimmed of the
// gRPC/Sentry/gocore-backend variants this module has no use for.
package ulogger

import "os"

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite

	colorBold     = 1
	colorDarkGray = 90
)

var defaultWriter = os.Stdout

// Logger is the interface every component in this codebase logs through.
// Components accept a Logger rather than a concrete type so tests can swap
// in a buffering or silent implementation.
type Logger interface {
	LogLevel() string
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	New(service string, options ...Option) Logger
}

// New builds the default Logger: a pretty or JSON zerolog backend depending
// on whether stdout is a terminal.
func New(service string, options ...Option) Logger {
	return NewZeroLogger(service, options...)
}
