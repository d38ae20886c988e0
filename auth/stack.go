package auth

import (
	"fmt"

	"pezzo-go/crypt"
)

// Status is the result class of a stack operation, mirroring the host
// stack's return codes.
type Status int

const (
	StatusSuccess Status = iota
	StatusAuthErr
	StatusMaxTries
	StatusCredInsufficient
	StatusAcctExpired
	StatusNewAuthTokRequired
	StatusPermDenied
	StatusUserUnknown
	StatusInfoUnavailable
	StatusSystemErr
	StatusConvErr
	StatusAbort
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAuthErr:
		return "authentication failure"
	case StatusMaxTries:
		return "maximum tries exceeded"
	case StatusCredInsufficient:
		return "insufficient credentials"
	case StatusAcctExpired:
		return "account expired"
	case StatusNewAuthTokRequired:
		return "new authentication token required"
	case StatusPermDenied:
		return "permission denied"
	case StatusUserUnknown:
		return "unknown user"
	case StatusInfoUnavailable:
		return "authentication information unavailable"
	case StatusSystemErr:
		return "system error"
	case StatusConvErr:
		return "conversation error"
	case StatusAbort:
		return "aborted"
	default:
		return "unknown status"
	}
}

// Retryable reports whether the driver may re-run the authenticate step
// after this status.
func (s Status) Retryable() bool {
	switch s {
	case StatusAuthErr, StatusMaxTries, StatusCredInsufficient:
		return true
	default:
		return false
	}
}

// StatusError is a stack failure carrying its status class.
type StatusError struct {
	Status Status
	Op     string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return e.Status.String()
}

// Stack abstracts the host authentication stack.
type Stack interface {
	// Start opens an authentication transaction for the user; the stack
	// drives conv for every prompt it needs.
	Start(service, user string, conv Conversation) (Session, error)
}

// Session is one open authentication transaction.
type Session interface {
	// Authenticate runs the stack's authentication step once.
	Authenticate() error
	// AcctMgmt runs account validity checks after authentication.
	AcctMgmt() error
	// Close ends the transaction.
	Close() error
}

// VerifierStack is a Stack for hosts where the authentication stack
// delegates hash comparison to the caller: it prompts for the password
// itself and verifies it in-process against a stored crypt hash.
type VerifierStack struct {
	// LookupHash returns the stored hash string for a user.
	LookupHash func(user string) ([]byte, bool)
}

// Start opens a verifier transaction.
func (s *VerifierStack) Start(service, user string, conv Conversation) (Session, error) {
	if s.LookupHash == nil {
		return nil, &StatusError{Status: StatusSystemErr, Op: "start"}
	}
	return &verifierSession{stack: s, user: user, conv: conv}, nil
}

type verifierSession struct {
	stack *VerifierStack
	user  string
	conv  Conversation
}

func (s *verifierSession) Authenticate() error {
	replies, err := s.conv.Converse([]Message{{Style: EchoOff, Text: "Password: "}})
	if err != nil {
		return &StatusError{Status: StatusConvErr, Op: "authenticate"}
	}
	if len(replies) != 1 || len(replies[0].Secret) == 0 {
		return &StatusError{Status: StatusConvErr, Op: "authenticate"}
	}

	secret := replies[0].Secret
	defer func() {
		for i := range secret {
			secret[i] = 0
		}
	}()

	hash, ok := s.stack.LookupHash(s.user)
	if !ok {
		return &StatusError{Status: StatusUserUnknown, Op: "authenticate"}
	}

	// Strip the conversation's trailing NUL before comparing.
	if !crypt.Verify(hash, secret[:len(secret)-1]) {
		return &StatusError{Status: StatusAuthErr, Op: "authenticate"}
	}
	return nil
}

func (s *verifierSession) AcctMgmt() error {
	return nil
}

func (s *verifierSession) Close() error {
	return nil
}
