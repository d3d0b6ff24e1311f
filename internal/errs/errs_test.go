package errs

import (
	"errors"
	"log/slog"
	"testing"
)

func TestKindSurvivesWrap(t *testing.T) {
	base := E(KindNotFound, "issue 7 not found")
	wrapped := Wrap(base, "select proposal")

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf() = %q, want %q", got, KindNotFound)
	}
	if !IsKind(wrapped, KindNotFound) {
		t.Fatalf("IsKind() expected true")
	}
	if IsKind(wrapped, KindStorage) {
		t.Fatalf("IsKind(storage) expected false")
	}
}

func TestWithKindKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WithKind(cause, KindStorage, "update issue")

	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is() expected cause in chain")
	}
	if err.Error() != "update issue: disk full" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if WithKind(nil, KindStorage, "noop") != nil {
		t.Fatalf("WithKind(nil) expected nil")
	}
}

func TestIsKindFindsInnerKind(t *testing.T) {
	inner := E(KindProviderError, "timeout")
	outer := WithKind(inner, KindGenerationFailure, "generate proposals")

	if KindOf(outer) != KindGenerationFailure {
		t.Fatalf("KindOf() = %q", KindOf(outer))
	}
	if !IsKind(outer, KindProviderError) {
		t.Fatalf("IsKind(provider) expected true through chain")
	}
}

func TestLoggableIncludesKind(t *testing.T) {
	v := Loggable(E(KindInvalidState, "requirements empty")).LogValue()
	found := false
	for _, attr := range v.Group() {
		if attr.Key == "kind" && attr.Value.Kind() == slog.KindString && attr.Value.String() == "invalid_state" {
			found = true
		}
	}
	if !found {
		t.Fatalf("LogValue() missing kind attr: %v", v)
	}
}
