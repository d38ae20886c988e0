package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestElevationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ElevationError
		want string
	}{
		{
			name: "kind only",
			err:  &ElevationError{Kind: KindNoRuleMatched},
			want: "not permitted",
		},
		{
			name: "op and detail",
			err:  &ElevationError{Op: "parse", Kind: KindConfig, Detail: "bad rule"},
			want: "parse: bad rule",
		},
		{
			name: "wrapped",
			err:  &ElevationError{Op: "read", Kind: KindConfig, Err: fmt.Errorf("boom")},
			want: "read: configuration error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := Wrap(fmt.Errorf("underlying"), KindAuthFatal, "authenticate")

	if !IsKind(err, KindAuthFatal) {
		t.Error("IsKind(KindAuthFatal) = false, want true")
	}
	if IsKind(err, KindConfig) {
		t.Error("IsKind(KindConfig) = true, want false")
	}
	if IsKind(fmt.Errorf("plain"), KindAuthFatal) {
		t.Error("IsKind() on a plain error = true, want false")
	}

	// Wrapping in a plain error keeps the kind reachable.
	wrapped := fmt.Errorf("outer: %w", err)
	if !IsKind(wrapped, KindAuthFatal) {
		t.Error("IsKind() through fmt wrapping = false, want true")
	}
}

func TestIs_SentinelsStayDistinct(t *testing.T) {
	// Both sentinels share a kind but must not satisfy each other.
	if stderrors.Is(ErrInvalidZeroCharacter, ErrPromptTimedOut) {
		t.Error("ErrInvalidZeroCharacter matches ErrPromptTimedOut")
	}
	if stderrors.Is(ErrPromptTimedOut, ErrInvalidZeroCharacter) {
		t.Error("ErrPromptTimedOut matches ErrInvalidZeroCharacter")
	}

	if !stderrors.Is(ErrPromptTimedOut, ErrPromptTimedOut) {
		t.Error("sentinel does not match itself")
	}

	// A bare-kind target still matches any error of that kind.
	bare := &ElevationError{Kind: KindPromptCancelled}
	if !stderrors.Is(ErrPromptTimedOut, bare) {
		t.Error("sentinel does not match its bare kind")
	}
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := Wrap(inner, KindInternal, "op")

	if Unwrap(err) != inner {
		t.Error("Unwrap() did not return the inner error")
	}
	if k, ok := GetKind(err); !ok || k != KindInternal {
		t.Errorf("GetKind() = %v/%v, want KindInternal/true", k, ok)
	}
}
