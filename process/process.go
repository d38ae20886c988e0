// Package process captures the invoking process's identity and session
// state: the real uid/gid and supplementary groups, the session id, the
// controlling terminal, and our own executable path.
package process

import (
	"os"

	"golang.org/x/sys/unix"

	"pezzo-go/errors"
)

// Context is the invoker-side state the pipeline decides against. It is
// captured once, before any privilege changes.
type Context struct {
	PID int
	// UID and GID are the real ids of the invoker.
	UID uint32
	GID uint32
	// Groups are the invoker's current supplementary gids.
	Groups []uint32
	// SessionID keys the credential cache together with TtyDevice.
	SessionID uint32
	// TtyPath is the controlling terminal's device path; TtyDevice its
	// device number.
	TtyPath   string
	TtyDevice uint64
	// Exe is our own executable, for the trusted-file self check.
	Exe string
}

// HasTty reports whether a controlling terminal was found. Operations that
// prompt must refuse without one; cache maintenance does not care.
func (c *Context) HasTty() bool {
	return c.TtyDevice != 0
}

// Current captures the invoking process's context. A missing controlling
// terminal is not an error here: callers that need the terminal check
// HasTty and refuse, rather than falling back to stdin.
func Current() (*Context, error) {
	ctx := &Context{
		PID: os.Getpid(),
		UID: uint32(unix.Getuid()),
		GID: uint32(unix.Getgid()),
	}

	groups, err := unix.Getgroups()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "getgroups")
	}
	ctx.Groups = make([]uint32, len(groups))
	for i, g := range groups {
		ctx.Groups[i] = uint32(g)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "readlink /proc/self/exe")
	}
	ctx.Exe = exe

	stat, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "read /proc/self/stat")
	}
	session, ttyNr, err := parseStat(stat)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "parse /proc/self/stat")
	}
	ctx.SessionID = session

	if ttyNr != 0 {
		path, rdev, err := resolveTty(ttyNr)
		if err != nil {
			return nil, errors.Wrap(err, errors.KindTtyMissing, "resolve tty")
		}
		ctx.TtyPath = path
		ctx.TtyDevice = rdev
	}

	return ctx, nil
}
