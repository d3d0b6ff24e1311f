package issue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gentletalk/internal/bootstrap/logging"
	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
	"gentletalk/internal/prompts"
)

const defaultCodeAttempts = 10

type Service struct {
	repo         ports.IssueRepository
	users        ports.UserDirectory
	generator    ports.GenerationClient
	catalog      *prompts.Catalog
	uow          ports.UnitOfWork
	cache        ports.Cache
	random       domainissue.RandomSource
	codeAttempts int
	cacheTTL     time.Duration
	now          func() time.Time
}

type Options struct {
	CodeAttempts int
	CacheTTL     time.Duration
	Random       domainissue.RandomSource
}

// NewService wires the issue lifecycle with its collaborators. Cache may be nil.
func NewService(
	repo ports.IssueRepository,
	users ports.UserDirectory,
	generator ports.GenerationClient,
	catalog *prompts.Catalog,
	uow ports.UnitOfWork,
	cache ports.Cache,
	opts Options,
) *Service {
	attempts := opts.CodeAttempts
	if attempts <= 0 {
		attempts = defaultCodeAttempts
	}
	random := opts.Random
	if random == nil {
		random = domainissue.CryptoRandom{}
	}
	return &Service{
		repo:         repo,
		users:        users,
		generator:    generator,
		catalog:      catalog,
		uow:          uow,
		cache:        cache,
		random:       random,
		codeAttempts: attempts,
		cacheTTL:     opts.CacheTTL,
		now:          time.Now,
	}
}

type RegisterInput struct {
	UserNo            int64
	ConflictSituation string
	Requirements      string
	OpponentName      string
	OpponentContact   string
}

type UpdateInput struct {
	IssueNo                int64
	ConflictSituation      *string
	Requirements           *string
	OpponentRequirements   *string
	OpponentAnalysisResult *string
}

type UpdateStatusInput struct {
	IssueNo int64
	Status  domainissue.Status
	// Override skips transition validation. Reserved for administrative repair.
	Override bool
}

type PageInput struct {
	Page   int
	Size   int
	UserNo *int64
	Status domainissue.Status
}

type PageResult struct {
	Items []domainissue.Issue
	Total int64
	Page  int
	Size  int
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("issue repository is required")
	}
	if s.uow == nil {
		return errors.New("issue unit of work is required")
	}
	return nil
}

func (s *Service) load(ctx context.Context, issueNo int64) (domainissue.Issue, error) {
	item, err := s.repo.GetByNo(ctx, issueNo)
	if err != nil {
		return domainissue.Issue{}, storeErr(err, fmt.Sprintf("issue %d", issueNo))
	}
	return item, nil
}

// storeErr classifies an adapter error as not-found or storage failure.
func storeErr(err error, subject string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return errs.WithKind(err, errs.KindNotFound, subject+" not found")
	}
	return errs.WithKind(err, errs.KindStorage, "load "+subject)
}

func issueCtx(ctx context.Context, issueNo int64) context.Context {
	return logging.WithAttrs(ctx, slog.String("component", "usecase.issue"), slog.Int64("issue_no", issueNo))
}

func cacheIssueStatusKey(issueNo int64) string {
	return domainissue.StatusCacheKey(issueNo)
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logging.Warn(ctx, "cache write failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
	}
}
