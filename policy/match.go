package policy

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Request is one elevation request presented to the rule set.
type Request struct {
	// InvokerUser is the real user who launched the program.
	InvokerUser string
	// InvokerGroups holds the invoker's primary and supplementary group
	// names.
	InvokerGroups []string
	// TargetUser and TargetGroup name the requested identity.
	TargetUser  string
	TargetGroup string
	// Command is the absolute, resolved path of the command to run.
	Command string
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func intersects(list []string, set []string) bool {
	for _, e := range list {
		if contains(set, e) {
			return true
		}
	}
	return false
}

// matchOrigin reports whether the invoker satisfies any origin alternative.
func (r *Rule) matchOrigin(req *Request) bool {
	if r.Origins == nil {
		return true
	}
	for _, o := range r.Origins {
		userOK := len(o.Users) == 0 || contains(o.Users, req.InvokerUser)
		groupOK := len(o.Groups) == 0 || intersects(o.Groups, req.InvokerGroups)
		if userOK && groupOK {
			return true
		}
	}
	return false
}

// matchTarget reports whether the requested identity satisfies any target
// alternative.
func (r *Rule) matchTarget(req *Request) bool {
	if r.Targets == nil {
		return true
	}
	for _, t := range r.Targets {
		if !contains(t.Users, req.TargetUser) {
			continue
		}
		if len(t.Groups) != 0 && !contains(t.Groups, req.TargetGroup) {
			continue
		}
		return true
	}
	return false
}

// Matches reports whether the matcher accepts the absolute command path.
func (m *ExeMatcher) Matches(command string) bool {
	switch m.Kind {
	case ExeName:
		return filepath.Base(command) == m.Pattern
	case ExeGlobName:
		ok, err := doublestar.Match(m.Pattern, filepath.Base(command))
		return err == nil && ok
	case ExePath:
		return command == m.Pattern
	case ExeGlobPath:
		ok, err := doublestar.Match(m.Pattern, command)
		return err == nil && ok
	default:
		return false
	}
}

// matchExe reports whether any exe atom accepts the command.
func (r *Rule) matchExe(req *Request) bool {
	if r.Exes == nil {
		return true
	}
	for i := range r.Exes {
		if r.Exes[i].Matches(req.Command) {
			return true
		}
	}
	return false
}

// matches reports whether the whole rule accepts the request.
func (r *Rule) matches(req *Request) bool {
	return r.matchOrigin(req) && r.matchTarget(req) && r.matchExe(req)
}

// Decide scans the rule set in file order. The last rule whose origin and
// target clauses accept the request decides: the request is allowed, with
// that rule's decision, only if its exe clause also accepts the command. The
// second return value is false when the request is denied, either because no
// rule accepts the invoker and target or because the deciding rule rejects
// the command.
func (rs *RuleSet) Decide(req *Request) (AuthDecision, bool) {
	var last *Rule
	for i := range rs.Rules {
		if rs.Rules[i].matchOrigin(req) && rs.Rules[i].matchTarget(req) {
			last = &rs.Rules[i]
		}
	}
	if last == nil || !last.matchExe(req) {
		return AuthDecision{}, false
	}
	return last.decision(), true
}
