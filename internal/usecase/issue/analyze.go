package issue

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gentletalk/internal/bootstrap/logging"
	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/errs"
	"gentletalk/internal/prompts"
)

// Analyze asks the provider for a summary and then an outreach message built from it.
// Provider failures are recorded on the issue as AnalysisFailed and the issue is still returned.
// A cancelled caller context aborts without writing anything.
func (s *Service) Analyze(ctx context.Context, issueNo int64) (domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return domainissue.Issue{}, err
	}
	if s.generator == nil {
		return domainissue.Issue{}, errors.New("generation client is required")
	}
	if s.catalog == nil {
		return domainissue.Issue{}, errors.New("prompt catalog is required")
	}

	logCtx := issueCtx(ctx, issueNo)

	item, err := s.load(ctx, issueNo)
	if err != nil {
		return domainissue.Issue{}, err
	}
	if err := item.CheckAnalyzable(); err != nil {
		return domainissue.Issue{}, errs.WithKind(err, errs.KindInvalidState, "analyze issue")
	}
	if !item.Status.Analyzable() {
		return domainissue.Issue{}, errs.Ef(errs.KindInvalidState, "issue %d cannot be analyzed in status %s", issueNo, item.Status)
	}

	analysis, message, genErr := s.generateAnalysis(ctx, item)
	if genErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logging.Warn(logCtx, "analysis aborted by caller", slog.Any("err", errs.Loggable(ctxErr)))
			return domainissue.Issue{}, errs.Wrap(ctxErr, "analyze issue")
		}
		logging.Error(logCtx, "analysis failed", slog.Any("err", errs.Loggable(genErr)))
	}

	// item predates the provider calls; write against a fresh read.
	var stored domainissue.Issue
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.load(txCtx, issueNo)
		if err != nil {
			return err
		}
		if !current.Status.Analyzable() {
			return errs.Ef(errs.KindInvalidState, "issue %d moved to status %s during analysis", issueNo, current.Status)
		}
		if genErr != nil {
			current.AnalysisResult = domainissue.AnalysisFailureMarker(genErr.Error())
			current.Status = domainissue.StatusAnalysisFailed
		} else {
			current.AnalysisResult = analysis
			current.NegotiationMessage = domainissue.ApplyOpponentName(message, s.catalog.OpponentPlaceholder, current.OpponentName)
			current.Status = domainissue.StatusAnalyzed
		}
		if err := s.repo.SaveAnalysis(txCtx, current); err != nil {
			return storeErr(err, "issue")
		}
		stored = current
		return nil
	}); err != nil {
		logging.Error(logCtx, "store analysis failed", slog.Any("err", errs.Loggable(err)))
		return domainissue.Issue{}, err
	}

	logging.Info(logCtx, "analysis stored", slog.String("status", string(stored.Status)))
	s.setCacheBestEffort(ctx, cacheIssueStatusKey(stored.No), string(stored.Status))
	return stored, nil
}

func (s *Service) generateAnalysis(ctx context.Context, item domainissue.Issue) (string, string, error) {
	analysisPrompt, err := s.catalog.Analysis(prompts.AnalysisInput{
		Conflict:     item.ConflictSituation,
		Requirements: item.Requirements,
	})
	if err != nil {
		return "", "", err
	}
	analysis, err := s.generator.Complete(ctx, s.catalog.System, analysisPrompt)
	if err != nil {
		return "", "", err
	}
	analysis = strings.TrimSpace(analysis)

	outreachPrompt, err := s.catalog.Outreach(prompts.OutreachInput{Analysis: analysis})
	if err != nil {
		return "", "", err
	}
	message, err := s.generator.Complete(ctx, s.catalog.System, outreachPrompt)
	if err != nil {
		return "", "", err
	}
	return analysis, strings.TrimSpace(message), nil
}
