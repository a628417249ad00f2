//go:build !linux && !windows

package bridge

import "go.uber.org/zap"

// elevatePriority has no portable equivalent on this platform; workers
// simply run at default scheduling.
func elevatePriority(_ *zap.SugaredLogger) {}
