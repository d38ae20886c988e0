package cache

import (
	"golang.org/x/sys/unix"
)

// Now returns seconds since boot from CLOCK_BOOTTIME, the clock that resets
// at boot and keeps counting across suspend. A reboot therefore invalidates
// every cache entry implicitly.
func Now() (uint64, error) {
	var ts unix.Timespec
	for {
		err := unix.ClockGettime(unix.CLOCK_BOOTTIME, &ts)
		if err == nil {
			return uint64(ts.Sec), nil
		}
		if err != unix.EINTR {
			return 0, err
		}
	}
}
