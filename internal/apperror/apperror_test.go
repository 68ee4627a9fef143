package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindStrings(t *testing.T) {
	// The kind strings are part of the wire format. If one of these cases
	// fails, clients break — change them only with a protocol bump.
	tests := []struct {
		err  *AppError
		kind string
	}{
		{NotFound(), "NotFound"},
		{ValidationFailed("nope"), "Validation"},
		{Conflict(nil), "Conflict"},
		{MissingAuthentication(), "MissingAuthentication"},
		{InvalidAuthentication(), "InvalidAuthentication"},
		{InvalidSignature(), "InvalidSignature"},
		{AccountGone(), "AccountGone"},
		{TokenExchangeFailed(nil), "TokenExchangeFailed"},
		{UserinfoFetchFailed(nil), "UserinfoFetchFailed"},
		{Store(nil), "StoreError"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.kind)
			}
		})
	}
}

func TestErrorsIsMatchesSentinel(t *testing.T) {
	if !errors.Is(NotFound(), ErrNotFound) {
		t.Error("NotFound() should match ErrNotFound")
	}
	if !errors.Is(Store(errors.New("disk on fire")), ErrStore) {
		t.Error("Store() should match ErrStore")
	}
	if errors.Is(NotFound(), ErrStore) {
		t.Error("NotFound() should not match ErrStore")
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	// Services wrap repository errors with fmt.Errorf("...: %w", err);
	// errors.Is must still find the sentinel through the chain.
	wrapped := fmt.Errorf("deleting code: %w", NotFound())
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is should unwrap through fmt.Errorf")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As should extract *AppError through fmt.Errorf")
	}
	if appErr.Kind != KindNotFound {
		t.Errorf("extracted Kind = %q, want %q", appErr.Kind, KindNotFound)
	}
}

func TestMessageNeverExposesCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: accounts.upstream_id")
	err := Store(cause)

	if err.Error() == cause.Error() {
		t.Error("client-facing message must not be the raw cause")
	}
	if err.Cause != cause {
		t.Error("cause should be preserved for logging")
	}
}
