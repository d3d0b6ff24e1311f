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

// mutate loads, edits and saves one issue inside a transaction.
func (s *Service) mutate(ctx context.Context, issueNo int64, op string, fn func(txCtx context.Context, item *domainissue.Issue) error) (domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return domainissue.Issue{}, err
	}

	logCtx := issueCtx(ctx, issueNo)

	var updated domainissue.Issue
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		item, err := s.load(txCtx, issueNo)
		if err != nil {
			return err
		}
		if err := fn(txCtx, &item); err != nil {
			return err
		}
		if err := s.repo.Save(txCtx, item); err != nil {
			return storeErr(err, "issue")
		}
		updated = item
		return nil
	}); err != nil {
		logging.Error(logCtx, op+" failed", slog.Any("err", errs.Loggable(err)))
		return domainissue.Issue{}, err
	}

	logging.Info(logCtx, op+" completed", slog.String("status", string(updated.Status)))
	s.setCacheBestEffort(ctx, cacheIssueStatusKey(updated.No), string(updated.Status))
	return updated, nil
}

// UpdateOpponent records the opponent's name and contact. A contact matching a known user links
// that user, and the outreach placeholder is replaced with name.
func (s *Service) UpdateOpponent(ctx context.Context, issueNo int64, name string, contact string) (domainissue.Issue, error) {
	name = strings.TrimSpace(name)
	contact = account.NormalizePhone(contact)

	return s.mutate(ctx, issueNo, "update opponent", func(txCtx context.Context, item *domainissue.Issue) error {
		item.OpponentName = name
		item.OpponentContact = contact

		if contact != "" && s.users != nil {
			user, found, err := s.users.FindByPhone(txCtx, contact)
			if err != nil {
				return errs.WithKind(err, errs.KindStorage, "resolve opponent contact")
			}
			if found {
				userNo := user.No
				item.OpponentUserNo = &userNo
			}
		}

		placeholder := domainissue.DefaultOpponentPlaceholder
		if s.catalog != nil {
			placeholder = s.catalog.OpponentPlaceholder
		}
		item.NegotiationMessage = domainissue.ApplyOpponentName(item.NegotiationMessage, placeholder, name)
		return nil
	})
}

// SaveProposals stores the proposal bundle and moves the issue to ProposalsPresented.
func (s *Service) SaveProposals(ctx context.Context, issueNo int64, proposals []string) (domainissue.Issue, error) {
	cleaned := make([]string, 0, len(proposals))
	for _, p := range proposals {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return domainissue.Issue{}, errs.E(errs.KindInvalidArgument, "at least one proposal is required")
	}

	return s.mutate(ctx, issueNo, "save proposals", func(_ context.Context, item *domainissue.Issue) error {
		if !item.Status.AcceptsProposals() {
			return errs.Ef(errs.KindInvalidState, "issue %d cannot take proposals in status %s", item.No, item.Status)
		}
		item.Proposals = cleaned
		item.Status = domainissue.StatusProposalsPresented
		return nil
	})
}

// SelectProposal overwrites any earlier selection and leaves the issue in ProposalsPresented.
// Any non-terminal status is accepted; a completed negotiation is final.
func (s *Service) SelectProposal(ctx context.Context, issueNo int64, proposal string) (domainissue.Issue, error) {
	proposal = strings.TrimSpace(proposal)
	if proposal == "" {
		return domainissue.Issue{}, errs.E(errs.KindInvalidArgument, "proposal is required")
	}

	return s.mutate(ctx, issueNo, "select proposal", func(txCtx context.Context, item *domainissue.Issue) error {
		if item.Status.Terminal() {
			return errs.WithKind(domainissue.ErrIllegalTransition, errs.KindInvalidState,
				string(item.Status)+" -> "+string(domainissue.StatusProposalsPresented))
		}
		if prev := item.SelectedProposal; prev != "" && prev != proposal {
			logging.Info(issueCtx(txCtx, item.No), "replacing selected proposal")
		}
		item.SelectedProposal = proposal
		item.Status = domainissue.StatusProposalsPresented
		return nil
	})
}

// UpdateStatus validates the transition unless Override is set.
func (s *Service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (domainissue.Issue, error) {
	if !input.Status.Valid() {
		return domainissue.Issue{}, errs.WithKind(domainissue.ErrInvalidStatus, errs.KindInvalidArgument, string(input.Status))
	}

	return s.mutate(ctx, input.IssueNo, "update status", func(txCtx context.Context, item *domainissue.Issue) error {
		if item.Status == input.Status {
			return nil
		}
		if input.Override {
			logging.Warn(issueCtx(txCtx, item.No), "status override",
				slog.String("from", string(item.Status)),
				slog.String("to", string(input.Status)),
			)
		} else if !item.Status.CanTransition(input.Status) {
			return errs.WithKind(domainissue.ErrIllegalTransition, errs.KindInvalidState,
				string(item.Status)+" -> "+string(input.Status))
		}
		item.Status = input.Status
		return nil
	})
}

// Update edits owner-supplied text. The issue code is immutable.
func (s *Service) Update(ctx context.Context, input UpdateInput) (domainissue.Issue, error) {
	return s.mutate(ctx, input.IssueNo, "update issue", func(_ context.Context, item *domainissue.Issue) error {
		if input.ConflictSituation != nil {
			item.ConflictSituation = strings.TrimSpace(*input.ConflictSituation)
		}
		if input.Requirements != nil {
			item.Requirements = strings.TrimSpace(*input.Requirements)
		}
		if input.OpponentRequirements != nil {
			item.OpponentRequirements = strings.TrimSpace(*input.OpponentRequirements)
		}
		if input.OpponentAnalysisResult != nil {
			item.OpponentAnalysisResult = strings.TrimSpace(*input.OpponentAnalysisResult)
		}
		return nil
	})
}
