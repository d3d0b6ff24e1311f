package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gentletalk/internal/errs"
)

func TestPresentByKind(t *testing.T) {
	cases := map[string]error{
		"generation failed": errs.E(errs.KindGenerationFailure, "bad json"),
		"invalid request":   errs.E(errs.KindInvalidArgument, "issue number is required"),
		"not found":         errs.E(errs.KindNotFound, "issue 3 not found"),
		"operation failed":  errs.E(errs.KindStorage, "disk full"),
	}
	for prefix, in := range cases {
		got := present(in)
		if !strings.HasPrefix(got.Error(), prefix+": ") {
			t.Fatalf("present(%v) = %q, want prefix %q", in, got, prefix)
		}
		if !errors.Is(got, in) {
			t.Fatalf("present(%v) lost the cause", in)
		}
	}

	provider := errs.WithKind(errors.New("502"), errs.KindProviderError, "call provider")
	if got := present(errs.Wrap(provider, "generate")); !strings.HasPrefix(got.Error(), "generation failed") {
		t.Fatalf("present(provider) = %q", got)
	}
	if got := present(errs.Wrap(context.Canceled, "analyze")); !strings.HasPrefix(got.Error(), "operation cancelled") {
		t.Fatalf("present(cancel) = %q", got)
	}
	if present(nil) != nil {
		t.Fatalf("present(nil) != nil")
	}
}
