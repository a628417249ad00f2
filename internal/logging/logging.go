// Package logging wraps zap for the bridge's worker goroutines.
package logging

import "go.uber.org/zap"

// New builds a production-configured sugared logger. If zap's own setup
// fails (stat/permission issues on the sink), it falls back to a no-op
// logger rather than failing bridge construction over a logging concern.
func New() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Named returns a sub-logger tagged with component, so reader/deliver/
// writer log lines can be told apart.
func Named(l *zap.SugaredLogger, component string) *zap.SugaredLogger {
	return l.Named(component)
}
