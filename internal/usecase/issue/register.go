package issue

import (
	"context"
	"log/slog"
	"strings"

	"gentletalk/internal/bootstrap/logging"
	"gentletalk/internal/domain/account"
	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/errs"
)

// Register stores a new issue in Pending with a fresh public code.
func (s *Service) Register(ctx context.Context, input RegisterInput) (domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return domainissue.Issue{}, err
	}
	if input.UserNo <= 0 {
		return domainissue.Issue{}, errs.WithKind(domainissue.ErrOwnerRequired, errs.KindInvalidArgument, "register issue")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.issue"), slog.Int64("user_no", input.UserNo))

	item := domainissue.Issue{
		UserNo:            input.UserNo,
		ConflictSituation: strings.TrimSpace(input.ConflictSituation),
		Requirements:      strings.TrimSpace(input.Requirements),
		OpponentName:      strings.TrimSpace(input.OpponentName),
		OpponentContact:   account.NormalizePhone(input.OpponentContact),
		Status:            domainissue.StatusPending,
	}

	var created domainissue.Issue
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		code, err := s.GenerateUniqueCode(txCtx)
		if err != nil {
			return err
		}
		item.Code = code

		created, err = s.repo.Create(txCtx, item)
		if err != nil {
			return errs.WithKind(err, errs.KindStorage, "insert issue")
		}
		return nil
	}); err != nil {
		logging.Error(logCtx, "issue registration failed", slog.Any("err", errs.Loggable(err)))
		return domainissue.Issue{}, err
	}

	logging.Info(logCtx, "issue registered", slog.Int64("issue_no", created.No), slog.String("issue_code", created.Code))
	s.setCacheBestEffort(ctx, cacheIssueStatusKey(created.No), string(created.Status))
	return created, nil
}

// GenerateUniqueCode draws codes until one is unused, then falls back to a UUID-derived code.
func (s *Service) GenerateUniqueCode(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}

	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code := domainissue.NewCode(s.random)
		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", errs.WithKind(err, errs.KindStorage, "check issue code")
		}
		if !exists {
			return code, nil
		}
		logging.Debug(ctx, "issue code collision", slog.String("issue_code", code), slog.Int("attempt", attempt))
	}

	code := domainissue.FallbackCode()
	logging.Warn(ctx, "issue code attempts exhausted, using fallback", slog.Int("attempts", s.codeAttempts))
	return code, nil
}
