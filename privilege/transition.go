package privilege

import (
	"fmt"

	"golang.org/x/sys/unix"

	"pezzo-go/errors"
	"pezzo-go/identity"
)

// DropToInvoker lowers the effective identity to the invoker for the
// prompting phase, so files opened on the invoker's behalf carry the
// invoker's privileges.
func DropToInvoker(uid, gid uint32) error {
	if err := unix.Setresgid(-1, int(gid), -1); err != nil {
		return errors.Wrap(err, errors.KindPrivilegeTransition, "setegid")
	}
	if err := unix.Setresuid(-1, int(uid), -1); err != nil {
		return errors.Wrap(err, errors.KindPrivilegeTransition, "seteuid")
	}
	return nil
}

// EscalateRoot raises the effective identity back to root for phases that
// need it (cache writes, the final transition).
func EscalateRoot() error {
	if err := escalateRoot(); err != nil {
		return errors.Wrap(err, errors.KindPrivilegeTransition, "escalate")
	}
	return nil
}

// Transition is the final hand-off to the target identity.
type Transition struct {
	Directory identity.Directory
	Target    *identity.User
	// TargetGID overrides the target's primary gid (the -g flag).
	TargetGID uint32
	// Command is the resolved absolute path; Argv the full argument vector
	// (argv[0] included).
	Command string
	Argv    []string
}

// Exec performs the transition in its fixed order and replaces the process:
//
//  1. re-escalate to root effective identity
//  2. resolve the target's supplementary groups
//  3. ensure the target primary gid is present
//  4. install the supplementary list
//  5. set real+saved gid and uid
//  6. set effective gid and uid
//  7. build the sanitised environment
//  8. exec
//
// Once the supplementary list is installed (step 4) there is no rollback:
// any later failure leaves the process in a half-dropped state that must not
// keep running, so it aborts.
func (t *Transition) Exec() error {
	if err := EscalateRoot(); err != nil {
		return err
	}

	gids := identity.TargetGroupIDs(t.Directory, t.Target)
	if t.TargetGID != t.Target.GID {
		ensure := false
		for _, g := range gids {
			if g == t.TargetGID {
				ensure = true
			}
		}
		if !ensure {
			gids = append(gids, t.TargetGID)
		}
	}

	if err := setGroups(gids); err != nil {
		return errors.Wrap(err, errors.KindPrivilegeTransition, "setgroups")
	}

	if err := setRealSavedIDs(t.Target.UID, t.TargetGID); err != nil {
		abort("set real and saved ids", err)
	}
	if err := setEffectiveIDs(t.Target.UID, t.TargetGID); err != nil {
		abort("set effective ids", err)
	}

	env := BuildEnviron(t.Target.Home)
	if err := execCommand(t.Command, t.Argv, env); err != nil {
		abort("exec", err)
	}
	return nil
}

// abort is the no-rollback branch: partial credential state is dangerous.
func abort(op string, err error) {
	panic(fmt.Sprintf("privilege transition failed after group install: %s: %v", op, err))
}
