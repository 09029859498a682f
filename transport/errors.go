package transport

import (
	"syscall"
	"time"
)

// errConnReset and errBrokenPipe let isConnReset use errors.Is against the
// OS-level errors net.OpError wraps, mirroring the source's
// io::ErrorKind::ConnectionReset | BrokenPipe match arms.
var (
	errConnReset  = syscall.ECONNRESET
	errBrokenPipe = syscall.EPIPE
)

func timeNowPlus(d time.Duration) time.Time { return time.Now().Add(d) }
