package issue

import (
	"context"
	"log/slog"

	"gentletalk/internal/bootstrap/logging"
	"gentletalk/internal/domain/account"
	"gentletalk/internal/errs"
)

// LinkOpponentIssuesAfterSignup attaches user to every issue naming their phone as the opponent
// contact while no opponent is linked yet. Already linked issues are left alone, so a rerun
// changes nothing. It returns the issue numbers linked by this call.
func (s *Service) LinkOpponentIssuesAfterSignup(ctx context.Context, user account.User) ([]int64, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if user.No <= 0 {
		return nil, errs.E(errs.KindInvalidArgument, "user number is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.issue.linkage"), slog.Int64("user_no", user.No))
	if !user.HasPhone() {
		logging.Debug(logCtx, "user has no phone, skipping opponent linkage")
		return nil, nil
	}
	phone := account.NormalizePhone(user.Phone)

	var linked []int64
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		candidates, err := s.repo.ListUnlinkedByContact(txCtx, phone)
		if err != nil {
			return errs.WithKind(err, errs.KindStorage, "list unlinked issues")
		}
		for _, item := range candidates {
			changed, err := s.repo.LinkOpponent(txCtx, item.No, user.No)
			if err != nil {
				return errs.WithKind(err, errs.KindStorage, "link opponent")
			}
			if changed {
				linked = append(linked, item.No)
			}
		}
		return nil
	}); err != nil {
		logging.Error(logCtx, "opponent linkage failed", slog.Any("err", errs.Loggable(err)))
		return nil, err
	}

	if len(linked) > 0 {
		logging.Info(logCtx, "opponent issues linked", slog.Int("count", len(linked)), slog.Any("issue_nos", linked))
	}
	return linked, nil
}
