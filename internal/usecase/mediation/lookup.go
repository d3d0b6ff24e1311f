package mediation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"gentletalk/internal/bootstrap/logging"
	"gentletalk/internal/domain/mediation"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
)

// GetOrCreate serves the oldest row stored under (category, hash(conflict)). On a hit the match's
// reuse counter is bumped and a reuse row pointing at it is recorded and returned. A miss writes
// nothing; the caller generates and calls RegisterGenerated.
func (s *Service) GetOrCreate(ctx context.Context, input GetOrCreateInput) (Lookup, error) {
	if err := s.check(ctx); err != nil {
		return Lookup{}, err
	}
	conflict := strings.TrimSpace(input.ConflictSituation)
	if conflict == "" {
		return Lookup{}, errs.E(errs.KindInvalidArgument, "conflict situation is required")
	}

	key := mediation.NewCacheKey(input.CategoryNo, conflict)
	logCtx := keyCtx(ctx, key)

	var out Lookup
	out.Key = key
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		match, err := s.logs.FirstByKey(txCtx, key)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil
			}
			return errs.WithKind(err, errs.KindStorage, "lookup proposal cache")
		}

		reused, err := s.recordReuse(txCtx, []mediation.ProposalLogEntry{match}, conflict, strings.TrimSpace(input.Requirements), input.IssueNo)
		if err != nil {
			return err
		}
		out.Entry = reused[0]
		out.Hit = true
		return nil
	}); err != nil {
		logging.Error(logCtx, "proposal cache lookup failed", slog.Any("err", errs.Loggable(err)))
		return Lookup{}, err
	}

	if out.Hit {
		logging.Info(logCtx, "proposal cache hit", slog.Int64("source_log_no", *out.Entry.SourceLogNo))
	} else {
		logging.Info(logCtx, "proposal cache miss")
	}
	return out, nil
}

// RegisterGenerated stores a caller-generated group as originals, one row per proposal.
// When another caller already registered originals under the key, that group is returned instead.
func (s *Service) RegisterGenerated(ctx context.Context, input RegisterGeneratedInput) ([]mediation.ProposalLogEntry, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	conflict := strings.TrimSpace(input.ConflictSituation)
	if conflict == "" {
		return nil, errs.E(errs.KindInvalidArgument, "conflict situation is required")
	}
	proposals := make([]string, 0, len(input.Proposals))
	for _, p := range input.Proposals {
		if p = strings.TrimSpace(p); p != "" {
			proposals = append(proposals, p)
		}
	}
	if len(proposals) == 0 {
		return nil, errs.E(errs.KindInvalidArgument, "at least one proposal is required")
	}

	key := mediation.NewCacheKey(input.CategoryNo, conflict)
	logCtx := keyCtx(ctx, key)

	var created []mediation.ProposalLogEntry
	existing := false
	err := s.exclusive(ctx, key, func(lockCtx context.Context) error {
		prior, err := s.logs.LatestOriginalGroup(lockCtx, key)
		if err == nil && len(prior) > 0 {
			created, existing = prior, true
			return nil
		}
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return errs.WithKind(err, errs.KindStorage, "lookup original proposals")
		}

		group := mediation.OriginalGroup(key, uuid.NewString(), conflict, strings.TrimSpace(input.Requirements), input.AIModel, proposals, input.IssueNo)
		return s.uow.WithTx(lockCtx, func(txCtx context.Context) error {
			var err error
			created, err = s.logs.CreateBatch(txCtx, group)
			if err != nil {
				return errs.WithKind(err, errs.KindStorage, "insert proposal group")
			}
			return nil
		})
	})
	if err != nil {
		logging.Error(logCtx, "register generated proposals failed", slog.Any("err", errs.Loggable(err)))
		return nil, err
	}

	if existing {
		logging.Warn(logCtx, "originals already registered for key, keeping stored group", slog.String("group_id", created[0].GroupID))
		return created, nil
	}
	logging.Info(logCtx, "generated proposals registered", slog.Int("count", len(created)))
	return created, nil
}

// IncrementReuse bumps one row's reuse counter.
func (s *Service) IncrementReuse(ctx context.Context, logNo int64) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := s.logs.IncrementReuse(ctx, logNo, s.now().UTC()); err != nil {
		return storeErr(err, logSubject(logNo))
	}
	logging.Info(logging.WithAttrs(ctx, slog.String("component", "usecase.mediation"), slog.Int64("log_no", logNo)), "proposal reuse incremented")
	return nil
}

// recordReuse bumps each source and stores one reuse row per source, all sharing a new group id.
func (s *Service) recordReuse(ctx context.Context, sources []mediation.ProposalLogEntry, conflict, requirements string, issueNo *int64) ([]mediation.ProposalLogEntry, error) {
	now := s.now().UTC()
	groupID := uuid.NewString()

	rows := make([]mediation.ProposalLogEntry, 0, len(sources))
	for _, src := range sources {
		if err := s.logs.IncrementReuse(ctx, src.No, now); err != nil {
			return nil, storeErr(err, logSubject(src.No))
		}
		rows = append(rows, mediation.ReuseOf(src, groupID, conflict, requirements, issueNo))
	}
	created, err := s.logs.CreateBatch(ctx, rows)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "insert reuse rows")
	}
	return created, nil
}

// exclusive runs fn while holding the in-process key slot and, when configured, the shared lease.
func (s *Service) exclusive(ctx context.Context, key mediation.CacheKey, fn func(context.Context) error) error {
	unlock, err := s.keys.acquire(ctx, key.String())
	if err != nil {
		return err
	}
	defer unlock()

	if s.lease != nil {
		release, err := s.lease.Acquire(ctx, key.String())
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return errs.WithKind(err, errs.KindStorage, "acquire generation lease")
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logging.Warn(keyCtx(ctx, key), "release generation lease failed", slog.Any("err", errs.Loggable(err)))
			}
		}()
	}

	return fn(ctx)
}
