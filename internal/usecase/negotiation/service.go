package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gentletalk/internal/bootstrap/logging"
	domain "gentletalk/internal/domain/negotiation"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
)

const defaultRecentLimit = 10

type Service struct {
	repo   ports.NegotiationRepository
	issues ports.IssueRepository
	uow    ports.UnitOfWork
	now    func() time.Time
}

// NewService wires the negotiation lifecycle. issues is used to check that a round refers to a
// stored issue and may be nil.
func NewService(repo ports.NegotiationRepository, issues ports.IssueRepository, uow ports.UnitOfWork) *Service {
	return &Service{
		repo:   repo,
		issues: issues,
		uow:    uow,
		now:    time.Now,
	}
}

type RegisterInput struct {
	IssueNo           int64
	UserNo            int64
	ProposalLogNo     *int64
	MediationProposal string
	CounterProposal   string
}

type UpdateStatusInput struct {
	NegotiationNo int64
	Status        domain.Status
	// Override skips transition validation. Reserved for administrative repair.
	Override bool
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("negotiation repository is required")
	}
	if s.uow == nil {
		return errors.New("negotiation unit of work is required")
	}
	return nil
}

func negotiationCtx(ctx context.Context, negotiationNo int64) context.Context {
	return logging.WithAttrs(ctx, slog.String("component", "usecase.negotiation"), slog.Int64("negotiation_no", negotiationNo))
}

func storeErr(err error, subject string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return errs.WithKind(err, errs.KindNotFound, subject+" not found")
	}
	return errs.WithKind(err, errs.KindStorage, "load "+subject)
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (domain.Negotiation, error) {
	if err := s.check(ctx); err != nil {
		return domain.Negotiation{}, err
	}
	if input.IssueNo <= 0 {
		return domain.Negotiation{}, errs.E(errs.KindInvalidArgument, "issue number is required")
	}
	if input.UserNo <= 0 {
		return domain.Negotiation{}, errs.E(errs.KindInvalidArgument, "user number is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.negotiation"), slog.Int64("issue_no", input.IssueNo))

	var created domain.Negotiation
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if s.issues != nil {
			if _, err := s.issues.GetByNo(txCtx, input.IssueNo); err != nil {
				return storeErr(err, fmt.Sprintf("issue %d", input.IssueNo))
			}
		}
		var err error
		created, err = s.repo.Create(txCtx, domain.Negotiation{
			IssueNo:           input.IssueNo,
			UserNo:            input.UserNo,
			ProposalLogNo:     input.ProposalLogNo,
			MediationProposal: strings.TrimSpace(input.MediationProposal),
			CounterProposal:   strings.TrimSpace(input.CounterProposal),
			Status:            domain.StatusPending,
		})
		if err != nil {
			return errs.WithKind(err, errs.KindStorage, "insert negotiation")
		}
		return nil
	}); err != nil {
		logging.Error(logCtx, "register negotiation failed", slog.Any("err", errs.Loggable(err)))
		return domain.Negotiation{}, err
	}

	logging.Info(negotiationCtx(logCtx, created.No), "negotiation registered")
	return created, nil
}

func (s *Service) Accept(ctx context.Context, negotiationNo int64) (domain.Negotiation, error) {
	return s.advance(ctx, negotiationNo, domain.StatusAccepted, false)
}

func (s *Service) Finalize(ctx context.Context, negotiationNo int64) (domain.Negotiation, error) {
	return s.advance(ctx, negotiationNo, domain.StatusFinalized, false)
}

func (s *Service) Reject(ctx context.Context, negotiationNo int64) (domain.Negotiation, error) {
	return s.advance(ctx, negotiationNo, domain.StatusRejected, false)
}

// UpdateStatus moves the round to input.Status. An overridden update bypasses the transition
// table but still stamps the matching timestamp.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (domain.Negotiation, error) {
	if err := s.check(ctx); err != nil {
		return domain.Negotiation{}, err
	}
	if !input.Status.Valid() {
		return domain.Negotiation{}, errs.Ef(errs.KindInvalidArgument, "invalid negotiation status %q", input.Status)
	}
	return s.advance(ctx, input.NegotiationNo, input.Status, input.Override)
}

func (s *Service) advance(ctx context.Context, negotiationNo int64, next domain.Status, override bool) (domain.Negotiation, error) {
	if err := s.check(ctx); err != nil {
		return domain.Negotiation{}, err
	}
	if negotiationNo <= 0 {
		return domain.Negotiation{}, errs.E(errs.KindInvalidArgument, "negotiation number is required")
	}

	logCtx := negotiationCtx(ctx, negotiationNo)
	var out domain.Negotiation
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		item, err := s.repo.GetByNo(txCtx, negotiationNo)
		if err != nil {
			return storeErr(err, fmt.Sprintf("negotiation %d", negotiationNo))
		}
		from := item.Status
		now := s.now().UTC()
		if override {
			if from != next {
				logging.Warn(logCtx, "negotiation status overridden", slog.String("from", string(from)), slog.String("to", string(next)))
			}
			item.Status = next
			stamp(&item, next, now)
		} else if err := item.Advance(next, now); err != nil {
			return errs.WithKind(err, errs.KindInvalidState, fmt.Sprintf("move negotiation from %s to %s", from, next))
		}
		if err := s.repo.Save(txCtx, item); err != nil {
			return storeErr(err, fmt.Sprintf("negotiation %d", negotiationNo))
		}
		out = item
		return nil
	}); err != nil {
		logging.Error(logCtx, "negotiation status update failed", slog.String("to", string(next)), slog.Any("err", errs.Loggable(err)))
		return domain.Negotiation{}, err
	}

	logging.Info(logCtx, "negotiation status updated", slog.String("status", string(out.Status)))
	return out, nil
}

func stamp(item *domain.Negotiation, status domain.Status, now time.Time) {
	switch status {
	case domain.StatusAccepted:
		item.AcceptedAt = &now
	case domain.StatusFinalized:
		item.FinalizedAt = &now
	}
}

func (s *Service) Get(ctx context.Context, negotiationNo int64) (domain.Negotiation, error) {
	if err := s.check(ctx); err != nil {
		return domain.Negotiation{}, err
	}
	item, err := s.repo.GetByNo(ctx, negotiationNo)
	if err != nil {
		return domain.Negotiation{}, storeErr(err, fmt.Sprintf("negotiation %d", negotiationNo))
	}
	return item, nil
}

func (s *Service) ListByIssue(ctx context.Context, issueNo int64) ([]domain.Negotiation, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByIssue(ctx, issueNo)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "list negotiations by issue")
	}
	return items, nil
}

// ListByUser lists the user's rounds, optionally restricted to statuses.
func (s *Service) ListByUser(ctx context.Context, userNo int64, statuses ...domain.Status) ([]domain.Negotiation, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, errs.Ef(errs.KindInvalidArgument, "invalid negotiation status %q", st)
		}
	}
	items, err := s.repo.ListByUser(ctx, userNo, statuses...)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "list negotiations by user")
	}
	return items, nil
}

// Ongoing lists rounds still awaiting a terminal decision.
func (s *Service) Ongoing(ctx context.Context, userNo int64) ([]domain.Negotiation, error) {
	return s.ListByUser(ctx, userNo, domain.StatusPending, domain.StatusAccepted)
}

func (s *Service) Recent(ctx context.Context, userNo int64, limit int) ([]domain.Negotiation, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	items, err := s.repo.Recent(ctx, userNo, limit)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "list recent negotiations")
	}
	return items, nil
}

func (s *Service) CountByStatus(ctx context.Context, userNo int64, status domain.Status) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if !status.Valid() {
		return 0, errs.Ef(errs.KindInvalidArgument, "invalid negotiation status %q", status)
	}
	n, err := s.repo.CountByStatus(ctx, userNo, status)
	if err != nil {
		return 0, errs.WithKind(err, errs.KindStorage, "count negotiations")
	}
	return n, nil
}
