package cmd

import (
	"context"
	"errors"

	"gentletalk/internal/errs"
)

// present maps a use case error to the message shown to the user. The full chain is logged
// by the use case.
func present(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(err, "operation cancelled")
	case errs.IsKind(err, errs.KindGenerationFailure), errs.IsKind(err, errs.KindProviderError):
		return errs.Wrap(err, "generation failed")
	case errs.IsKind(err, errs.KindInvalidArgument):
		return errs.Wrap(err, "invalid request")
	case errs.IsKind(err, errs.KindNotFound):
		return errs.Wrap(err, "not found")
	default:
		return errs.Wrap(err, "operation failed")
	}
}
