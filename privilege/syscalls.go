// Package privilege performs the drop-then-exec choreography that hands the
// process over to the target identity.
package privilege

import (
	"golang.org/x/sys/unix"
)

// escalateRoot raises the effective identity back to root. The process runs
// with effective=real=invoker while prompting, so that the prompt's tty
// descriptors are opened with invoker privileges.
func escalateRoot() error {
	// The uid goes first: with the invoker's effective uid the process may
	// not set its effective gid to 0 unless the saved gid is 0.
	if err := unix.Setresuid(-1, 0, -1); err != nil {
		return err
	}
	return unix.Setresgid(-1, 0, -1)
}

// setGroups installs the supplementary group list.
func setGroups(gids []uint32) error {
	groups := make([]int, len(gids))
	for i, g := range gids {
		groups[i] = int(g)
	}
	return unix.Setgroups(groups)
}

// setRealSavedIDs pins the real and saved ids to the target while leaving
// the effective ids alone (still root at this point in the sequence).
func setRealSavedIDs(uid, gid uint32) error {
	if err := unix.Setresgid(int(gid), -1, int(gid)); err != nil {
		return err
	}
	return unix.Setresuid(int(uid), -1, int(uid))
}

// setEffectiveIDs completes the drop: after this the process is fully the
// target identity.
func setEffectiveIDs(uid, gid uint32) error {
	if err := unix.Setresgid(-1, int(gid), -1); err != nil {
		return err
	}
	return unix.Setresuid(-1, int(uid), -1)
}

// execCommand replaces the process image. It does not return on success.
func execCommand(path string, argv, env []string) error {
	return unix.Exec(path, argv, env)
}
