package mediation

import (
	"context"
	"strings"

	"gentletalk/internal/domain/mediation"
	"gentletalk/internal/errs"
)

func (s *Service) Get(ctx context.Context, logNo int64) (mediation.ProposalLogEntry, error) {
	if err := s.check(ctx); err != nil {
		return mediation.ProposalLogEntry{}, err
	}
	if logNo <= 0 {
		return mediation.ProposalLogEntry{}, errs.E(errs.KindInvalidArgument, "proposal log number is required")
	}
	entry, err := s.logs.GetByNo(ctx, logNo)
	if err != nil {
		return mediation.ProposalLogEntry{}, storeErr(err, logSubject(logNo))
	}
	return entry, nil
}

// FindSimilar lists rows stored under the exact key of conflict, most reused first.
func (s *Service) FindSimilar(ctx context.Context, categoryNo int64, conflict string, limit int) ([]mediation.ProposalLogEntry, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	conflict = strings.TrimSpace(conflict)
	if conflict == "" {
		return nil, errs.E(errs.KindInvalidArgument, "conflict situation is required")
	}
	items, err := s.logs.FindByKey(ctx, mediation.NewCacheKey(categoryNo, conflict), limit)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "find similar proposals")
	}
	return items, nil
}

// FindPopular ranks rows by reuse count. A nil category spans all categories.
func (s *Service) FindPopular(ctx context.Context, categoryNo *int64, limit int) ([]mediation.ProposalLogEntry, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	items, err := s.logs.FindPopular(ctx, categoryNo, limit)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "find popular proposals")
	}
	return items, nil
}

func (s *Service) FindRecent(ctx context.Context, categoryNo *int64, limit int) ([]mediation.ProposalLogEntry, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	items, err := s.logs.FindRecent(ctx, categoryNo, limit)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "find recent proposals")
	}
	return items, nil
}

func (s *Service) ListByIssue(ctx context.Context, issueNo int64) ([]mediation.ProposalLogEntry, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if issueNo <= 0 {
		return nil, errs.E(errs.KindInvalidArgument, "issue number is required")
	}
	items, err := s.logs.ListByIssue(ctx, issueNo)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "list issue proposals")
	}
	return items, nil
}
