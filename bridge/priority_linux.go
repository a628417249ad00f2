//go:build linux

package bridge

import (
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// elevatePriority requests SCHED_FIFO, falling back to SCHED_RR, then to
// a nice value of -20. Only a failure of that last fallback is logged;
// failures are otherwise ignored: the reader still functions at default
// scheduling, just with worse jitter.
func elevatePriority(log *zap.SugaredLogger) {
	for _, policy := range []int{unix.SCHED_FIFO, unix.SCHED_RR} {
		prio, err := unix.SchedGetPriorityMax(policy)
		if err != nil {
			continue
		}
		param := &unix.SchedParam{Priority: int32(prio)}
		if err := unix.SchedSetscheduler(0, policy, param); err == nil {
			return
		}
	}
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, -20); err != nil {
		log.Debugw("priority elevation failed", "error", err)
	}
}
