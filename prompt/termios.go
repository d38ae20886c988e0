package prompt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// termiosGuard scopes a termios mutation: construction snapshots the current
// state, restore puts it back. Restore is safe to call more than once.
type termiosGuard struct {
	fd    int
	saved unix.Termios
	done  bool
}

// pushLineTermios switches the fd into the restrictive line-reading state:
// input flags reduced to IGNBRK|BRKINT|INLCR|ICRNL, local flags reduced to
// ISIG|ICANON|ECHOE|ECHOK|ECHONL|IEXTEN, with ECHO added back only when echo
// is requested.
func pushLineTermios(fd int, echo bool) (*termiosGuard, error) {
	state, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("TCGETS: %w", err)
	}

	g := &termiosGuard{fd: fd, saved: *state}

	next := *state
	next.Iflag = unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL
	next.Lflag = unix.ISIG | unix.ICANON | unix.ECHOE | unix.ECHOK | unix.ECHONL | unix.IEXTEN
	if echo {
		next.Lflag |= unix.ECHO
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &next); err != nil {
		return nil, fmt.Errorf("TCSETS: %w", err)
	}
	return g, nil
}

// restore reinstates the snapshotted termios.
func (g *termiosGuard) restore() {
	if g == nil || g.done {
		return
	}
	g.done = true
	_ = unix.IoctlSetTermios(g.fd, unix.TCSETS, &g.saved)
}

// nonblockGuard scopes O_NONBLOCK on a fd: if the flag had to be added it is
// removed again on restore.
type nonblockGuard struct {
	fd    int
	flags int
	reset bool
	done  bool
}

// pushNonblock puts the fd into non-blocking mode.
func pushNonblock(fd int) (*nonblockGuard, error) {
	flags, err := retryInt(func() (int, error) {
		return unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	})
	if err != nil {
		return nil, fmt.Errorf("F_GETFL: %w", err)
	}

	g := &nonblockGuard{fd: fd, flags: flags}
	if flags&unix.O_NONBLOCK == 0 {
		if _, err := retryInt(func() (int, error) {
			return unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags|unix.O_NONBLOCK)
		}); err != nil {
			return nil, fmt.Errorf("F_SETFL: %w", err)
		}
		g.reset = true
	}
	return g, nil
}

// restore removes O_NONBLOCK if this guard added it.
func (g *nonblockGuard) restore() {
	if g == nil || g.done {
		return
	}
	g.done = true
	if g.reset {
		_, _ = unix.FcntlInt(uintptr(g.fd), unix.F_SETFL, g.flags)
	}
}

// retryInt retries an int-returning syscall on EINTR.
func retryInt(f func() (int, error)) (int, error) {
	for {
		n, err := f()
		if err != unix.EINTR {
			return n, err
		}
	}
}
