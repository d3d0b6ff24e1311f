package mediation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"gentletalk/internal/bootstrap/logging"
	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/domain/mediation"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
	"gentletalk/internal/prompts"
)

// maxFlightRetries bounds how often a caller re-joins after the flight it waited on was
// abandoned by a cancelled leader.
const maxFlightRetries = 3

// flight is what one single-flight execution hands to every waiting caller.
type flight struct {
	group []mediation.ProposalLogEntry
	fresh bool
}

// leaderGoneError marks a flight that stopped because its leader's context ended.
type leaderGoneError struct {
	err error
}

func (e *leaderGoneError) Error() string { return "generation abandoned: " + e.err.Error() }

func (e *leaderGoneError) Unwrap() error { return e.err }

// GenerateFromIssue produces the proposal bundle for an analyzed issue. Concurrent callers that
// share (category, hash) are coalesced into one provider call; an existing original group for the
// key is reused unless Regenerate is set. Provider and parse failures are returned and leave no rows.
func (s *Service) GenerateFromIssue(ctx context.Context, input GenerateInput) (GenerateResult, error) {
	if err := s.check(ctx); err != nil {
		return GenerateResult{}, err
	}
	if s.issues == nil {
		return GenerateResult{}, errors.New("issue repository is required")
	}
	if s.generator == nil {
		return GenerateResult{}, errors.New("generation client is required")
	}
	if s.catalog == nil {
		return GenerateResult{}, errors.New("prompt catalog is required")
	}
	if input.IssueNo <= 0 {
		return GenerateResult{}, errs.E(errs.KindInvalidArgument, "issue number is required")
	}

	item, err := s.issues.GetByNo(ctx, input.IssueNo)
	if err != nil {
		return GenerateResult{}, storeErr(err, "issue")
	}
	if err := checkProposable(item); err != nil {
		return GenerateResult{}, err
	}

	categoryNo := item.No
	if input.CategoryNo != nil {
		categoryNo = *input.CategoryNo
	}
	key := mediation.NewCacheKey(categoryNo, item.HashSource())
	logCtx := logging.WithAttrs(keyCtx(ctx, key), slog.Int64("issue_no", item.No))

	flightKey := key.String()
	if input.Regenerate {
		flightKey += "|regenerate"
	}

	var shared flight
	for attempt := 0; ; attempt++ {
		ch := s.flights.DoChan(flightKey, func() (any, error) {
			return s.runFlight(ctx, key, item, input.Regenerate)
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return GenerateResult{}, errs.Wrap(ctx.Err(), "wait for proposal generation")
		case res = <-ch:
		}

		var gone *leaderGoneError
		if errors.As(res.Err, &gone) && ctx.Err() == nil && attempt < maxFlightRetries {
			logging.Info(logCtx, "generation leader cancelled, rejoining", slog.Int("attempt", attempt+1))
			continue
		}
		if res.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return GenerateResult{}, errs.Wrap(ctxErr, "generate proposals")
			}
			logging.Error(logCtx, "proposal generation failed", slog.Any("err", errs.Loggable(res.Err)))
			return GenerateResult{}, res.Err
		}
		shared = res.Val.(flight)
		break
	}

	result, err := s.attach(ctx, item, shared, key)
	if err != nil {
		logging.Error(logCtx, "attach proposals failed", slog.Any("err", errs.Loggable(err)))
		return GenerateResult{}, err
	}

	logging.Info(logCtx, "proposals presented",
		slog.Int("count", len(result.Entries)),
		slog.Bool("reused", result.Reused),
	)
	s.setCacheBestEffort(ctx, domainissue.StatusCacheKey(result.Issue.No), string(result.Issue.Status))
	return result, nil
}

// runFlight executes once per flight key. It re-checks the store under the key lock so a
// generation completed just before this flight began is reused instead of repeated.
func (s *Service) runFlight(ctx context.Context, key mediation.CacheKey, leader domainissue.Issue, regenerate bool) (flight, error) {
	var out flight
	err := s.exclusive(ctx, key, func(lockCtx context.Context) error {
		if !regenerate {
			group, err := s.logs.LatestOriginalGroup(lockCtx, key)
			if err == nil && len(group) > 0 {
				out = flight{group: group}
				return nil
			}
			if err != nil && !errors.Is(err, ports.ErrNotFound) {
				return errs.WithKind(err, errs.KindStorage, "lookup original proposals")
			}
		}

		group, err := s.generate(lockCtx, key, leader)
		if err != nil {
			return err
		}
		out = flight{group: group, fresh: true}
		return nil
	})
	if err != nil && ctx.Err() != nil {
		return flight{}, &leaderGoneError{err: err}
	}
	return out, err
}

// generate calls the provider once and persists the parsed group together with the leader's
// issue bundle in one transaction.
func (s *Service) generate(ctx context.Context, key mediation.CacheKey, leader domainissue.Issue) ([]mediation.ProposalLogEntry, error) {
	logCtx := logging.WithAttrs(keyCtx(ctx, key), slog.Int64("issue_no", leader.No))

	prompt, err := s.catalog.Proposals(prompts.ProposalsInput{
		Conflict:     leader.ConflictSituation,
		Requirements: leader.Requirements,
		Analysis:     leader.AnalysisResult,
		Message:      leader.NegotiationMessage,
		Count:        s.variantCount,
	})
	if err != nil {
		return nil, err
	}

	logging.Info(logCtx, "calling generation provider", slog.Int("variant_count", s.variantCount))
	raw, err := s.generator.Complete(ctx, s.catalog.System, prompt)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnknown && ctx.Err() == nil {
			err = errs.WithKind(err, errs.KindProviderError, "generate proposals")
		}
		return nil, err
	}

	variants, err := mediation.ParseVariants(raw)
	if err != nil {
		logging.Warn(logCtx, "provider output rejected", slog.String("raw", raw))
		return nil, errs.WithKind(err, errs.KindGenerationFailure, "parse proposals")
	}
	if len(variants) != s.variantCount {
		logging.Warn(logCtx, "unexpected proposal count", slog.Int("want", s.variantCount), slog.Int("got", len(variants)))
	}

	issueNo := leader.No
	group := mediation.OriginalGroup(key, uuid.NewString(), leader.ConflictSituation, leader.Requirements, s.generator.Model(), variants, &issueNo)

	var created []mediation.ProposalLogEntry
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.logs.CreateBatch(txCtx, group)
		if err != nil {
			return errs.WithKind(err, errs.KindStorage, "insert proposal group")
		}
		return s.writeBack(txCtx, leader.No, variants)
	}); err != nil {
		return nil, err
	}
	return created, nil
}

// attach makes the shared group visible on the caller's issue. The generating issue already
// holds the bundle; any other issue records reuse of every variant.
func (s *Service) attach(ctx context.Context, item domainissue.Issue, shared flight, key mediation.CacheKey) (GenerateResult, error) {
	result := GenerateResult{Reused: !shared.fresh}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		entries := shared.group
		owned := len(entries) > 0 && entries[0].IssueNo != nil && *entries[0].IssueNo == item.No
		if !owned {
			reused, err := s.recordReuse(txCtx, shared.group, item.ConflictSituation, item.Requirements, &item.No)
			if err != nil {
				return err
			}
			entries = reused
			result.Reused = true
		}
		if !shared.fresh || !owned {
			if err := s.writeBack(txCtx, item.No, mediation.Texts(entries)); err != nil {
				return err
			}
		}

		updated, err := s.issues.GetByNo(txCtx, item.No)
		if err != nil {
			return storeErr(err, "issue")
		}
		result.Issue = updated
		result.Entries = entries
		return nil
	}); err != nil {
		return GenerateResult{}, err
	}

	if len(result.Entries) == 0 {
		return GenerateResult{}, errs.Ef(errs.KindGenerationFailure, "no proposals for key %s", key)
	}
	result.First = result.Entries[0]
	return result, nil
}

// writeBack stores the bundle on the issue and moves it to ProposalsPresented.
func (s *Service) writeBack(ctx context.Context, issueNo int64, proposals []string) error {
	item, err := s.issues.GetByNo(ctx, issueNo)
	if err != nil {
		return storeErr(err, "issue")
	}
	if !item.Status.AcceptsProposals() {
		return errs.Ef(errs.KindInvalidState, "issue %d cannot take proposals in status %s", issueNo, item.Status)
	}
	item.Proposals = proposals
	item.Status = domainissue.StatusProposalsPresented
	if err := s.issues.Save(ctx, item); err != nil {
		return storeErr(err, "issue")
	}
	return nil
}

func checkProposable(item domainissue.Issue) error {
	if err := item.CheckProposable(); err != nil {
		return errs.WithKind(err, errs.KindInvalidState, "generate proposals")
	}
	if !item.Status.AcceptsProposals() {
		return errs.Ef(errs.KindInvalidState, "issue %d cannot take proposals in status %s", item.No, item.Status)
	}
	return nil
}
