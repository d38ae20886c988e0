package auth

import (
	"pezzo-go/cache"
	"pezzo-go/errors"
	"pezzo-go/logging"
	"pezzo-go/policy"
)

// MaxRetries bounds how many times the authenticate step is re-run after a
// soft failure.
const MaxRetries = 3

// ServiceName is the authentication stack's service identifier.
const ServiceName = "pezzo"

// SessionKey identifies the invoker's (session, tty) pair in the credential
// cache.
type SessionKey struct {
	SessionID uint32
	TtyDevice uint64
}

// Authenticator runs the authentication pipeline for one elevation attempt.
type Authenticator struct {
	Stack    Stack
	Prompter Prompter
	Cache    *cache.Store
	Key      SessionKey
	// ForceAsk ignores cache freshness (the -k flag with a command).
	ForceAsk bool
}

// Run authenticates the invoker under the matched rule's decision.
//
//	Start → CacheCheck → [fresh → Success]
//	      → Converse   → [ok → AcctMgmt → Success]
//	                     [soft failure → Converse, until the retry budget]
//	                     [hard failure / timeout → failure]
//
// On success the cache entry is touched with the current boot-relative
// timestamp.
func (a *Authenticator) Run(decision policy.AuthDecision) error {
	now, err := cache.Now()
	if err != nil {
		return errors.Wrap(err, errors.KindInternal, "clock")
	}

	if !a.ForceAsk && a.Cache != nil &&
		a.Cache.IsFresh(a.Key.SessionID, a.Key.TtyDevice, now, uint64(decision.Timeout)) {
		logging.Debug("credential cache fresh, skipping prompt",
			"session", a.Key.SessionID)
		return a.touch()
	}

	if !decision.AskPass {
		return a.touch()
	}

	conv := NewPromptConversation(a.Prompter)
	session, err := a.Stack.Start(ServiceName, a.Prompter.InvokerName(), conv)
	if err != nil {
		return classify(err)
	}
	defer session.Close()

	var authErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		conv.preflight()
		authErr = session.Authenticate()
		if authErr == nil {
			break
		}
		if conv.TimedOut() {
			return errors.ErrPromptTimedOut
		}

		var serr *StatusError
		if errors.As(authErr, &serr) && serr.Status.Retryable() {
			logging.Debug("authentication attempt failed",
				"attempt", attempt+1, "status", serr.Status.String())
			continue
		}
		return classify(authErr)
	}
	if authErr != nil {
		return errors.ErrAuthMaxRetries
	}

	// Account management catches expired passwords and accounts; its
	// failures are always fatal.
	if err := session.AcctMgmt(); err != nil {
		return errors.Wrap(err, errors.KindAuthFatal, "account validation")
	}

	return a.touch()
}

// touch records the successful authentication.
func (a *Authenticator) touch() error {
	if a.Cache == nil {
		return nil
	}
	now, err := cache.Now()
	if err != nil {
		return errors.Wrap(err, errors.KindInternal, "clock")
	}
	if err := a.Cache.Touch(a.Key.SessionID, a.Key.TtyDevice, now); err != nil {
		// A cache write failure must not undo a successful authentication.
		logging.Warn("cannot update credential cache", "err", err)
	}
	return nil
}

// classify maps a stack failure onto the error taxonomy.
func classify(err error) error {
	var serr *StatusError
	if errors.As(err, &serr) {
		if serr.Status.Retryable() {
			return errors.Wrap(err, errors.KindAuthRetryable, "authenticate")
		}
		return errors.Wrap(err, errors.KindAuthFatal, "authenticate")
	}
	if errors.IsKind(err, errors.KindPromptCancelled) {
		return err
	}
	return errors.Wrap(err, errors.KindAuthFatal, "authenticate")
}
