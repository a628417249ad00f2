package serial

// ioctl request numbers, trimmed to what this adapter issues. Values
// match linux/ioctls.h; kept as plain numbers rather than computed via
// goioctl's IOR/IOW helpers because these are all fixed legacy numbers
// (the _IOR/_IOW-encoded PTY ones live in pty_linux.go).
var (
	tcgets = uintptr(0x5401)
	tcsets = uintptr(0x5402)

	tcflsh = uintptr(0x540B)

	tiocmget = uintptr(0x5415) // get status
	tiocmbis = uintptr(0x5416) // set indicated bits
	tiocmbic = uintptr(0x5417) // clear indicated bits
	tiocmset = uintptr(0x5418) // set status
)
