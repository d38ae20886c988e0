package cmd

import (
	"pezzo-go/auth"
	"pezzo-go/cache"
	"pezzo-go/errors"
	"pezzo-go/identity"
	"pezzo-go/logging"
	"pezzo-go/policy"
	"pezzo-go/privilege"
	"pezzo-go/process"
	"pezzo-go/prompt"
)

// PromptTimeout is the per-read budget for password prompts, in seconds.
// The credential-cache freshness window is separate and comes from the
// matched rule.
const PromptTimeout = 300

// elevation gathers everything resolved for one request.
type elevation struct {
	dir     identity.Directory
	proc    *process.Context
	invoker *identity.User

	target      *identity.User
	targetGroup *identity.Group
	command     string
	argv        []string

	rules *policy.RuleSet
}

// resolveRequest resolves identities, the command and the rule file. It runs
// with the invoker's effective identity.
func resolveRequest(dir identity.Directory, proc *process.Context, args []string) (*elevation, error) {
	e := &elevation{dir: dir, proc: proc}

	invoker, ok := dir.UserByID(proc.UID)
	if !ok {
		return nil, errors.ErrUnknownUser
	}
	e.invoker = invoker

	// A tampered installation must fail before any other work.
	if err := policy.CheckFilePermissions(proc.Exe); err != nil {
		return nil, err
	}

	var err error
	if e.target, err = identity.ResolveUser(dir, flagUser); err != nil {
		return nil, err
	}
	if flagGroup != "" {
		if e.targetGroup, err = identity.ResolveGroup(dir, flagGroup); err != nil {
			return nil, err
		}
	} else {
		group, ok := dir.GroupByID(e.target.GID)
		if !ok {
			return nil, errors.ErrUnknownGroup
		}
		e.targetGroup = group
	}

	if e.command, err = privilege.ResolveCommand(args[0]); err != nil {
		return nil, err
	}
	e.argv = append([]string{e.command}, args[1:]...)

	if e.rules, err = policy.LoadFile(policy.DefaultConfigPath); err != nil {
		return nil, err
	}

	return e, nil
}

// decide matches the request against the rule set.
func (e *elevation) decide() (policy.AuthDecision, error) {
	req := policy.Request{
		InvokerUser:   e.invoker.Name,
		InvokerGroups: identity.GroupNames(e.dir, e.invoker),
		TargetUser:    e.target.Name,
		TargetGroup:   e.targetGroup.Name,
		Command:       e.command,
	}

	decision, ok := e.rules.Decide(&req)
	if !ok {
		logging.Debug("no rule matched",
			"invoker", req.InvokerUser, "target", req.TargetUser, "command", req.Command)
		return decision, errors.ErrNoRuleMatched
	}
	return decision, nil
}

// runElevation is the whole trusted pipeline for one request.
func runElevation(args []string) error {
	dir, err := identity.Load()
	if err != nil {
		return err
	}
	proc, err := process.Current()
	if err != nil {
		return err
	}
	if !proc.HasTty() {
		return errors.ErrTtyMissing
	}

	// Raise the effective identity to root, then spend the prompt phase as
	// the invoker: everything opened on the invoker's behalf carries the
	// invoker's privileges.
	if err := privilege.EscalateRoot(); err != nil {
		return err
	}
	if err := privilege.DropToInvoker(proc.UID, proc.GID); err != nil {
		return err
	}

	e, err := resolveRequest(dir, proc, args)
	if err != nil {
		return err
	}

	decision, err := e.decide()
	if err != nil {
		return err
	}

	// The terminal is opened while still the invoker.
	channel, err := prompt.Open(proc.TtyPath, e.invoker.Name, decision.Bell || flagBell, PromptTimeout)
	if err != nil {
		return err
	}
	defer channel.Close()

	// Cache reads and writes need root again.
	if err := privilege.EscalateRoot(); err != nil {
		return err
	}
	store, err := cache.Open(cache.DefaultBaseDir, e.invoker.Name)
	if err != nil {
		logging.Warn("credential cache unavailable, treating as empty", "err", err)
		store = nil
	}

	authenticator := &auth.Authenticator{
		Stack:    auth.NewShadowStack(),
		Prompter: channel,
		Cache:    store,
		Key: auth.SessionKey{
			SessionID: proc.SessionID,
			TtyDevice: proc.TtyDevice,
		},
		ForceAsk: flagResetTimestamp,
	}
	if err := authenticator.Run(decision); err != nil {
		return err
	}

	if flagValidate {
		return nil
	}

	// Restore the terminal before the process image is replaced.
	if err := channel.Close(); err != nil {
		logging.Warn("cannot restore terminal", "err", err)
	}

	transition := &privilege.Transition{
		Directory: e.dir,
		Target:    e.target,
		TargetGID: e.targetGroup.GID,
		Command:   e.command,
		Argv:      e.argv,
	}
	// Exec does not return on success.
	return transition.Exec()
}
