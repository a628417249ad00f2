//go:build windows

package bridge

import (
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

// SetThreadPriority isn't part of x/sys/windows's surface, so it is
// bound directly off kernel32, same approach serial's Windows port uses
// for the COMM-specific API.
var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procGetCurrentThread = modkernel32.NewProc("GetCurrentThread")
	procSetThreadPrio    = modkernel32.NewProc("SetThreadPriority")
)

const (
	threadPriorityHighest      = 2
	threadPriorityTimeCritical = 15
)

// elevatePriority requests THREAD_PRIORITY_TIME_CRITICAL, falling back
// to THREAD_PRIORITY_HIGHEST. Failures are logged and otherwise ignored.
func elevatePriority(log *zap.SugaredLogger) {
	h, _, _ := procGetCurrentThread.Call()
	if r, _, err := procSetThreadPrio.Call(h, uintptr(threadPriorityTimeCritical)); r != 0 {
		return
	} else if r, _, err2 := procSetThreadPrio.Call(h, uintptr(threadPriorityHighest)); r == 0 {
		log.Debugw("priority elevation failed", "error", err, "fallbackError", err2)
	}
}
