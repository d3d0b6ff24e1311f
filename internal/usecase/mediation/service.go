package mediation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"gentletalk/internal/bootstrap/logging"
	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/domain/mediation"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
	"gentletalk/internal/prompts"
)

const defaultVariantCount = 4

// Service is the proposal cache: lookups, reuse bookkeeping and per-key single-flight generation.
type Service struct {
	logs         ports.ProposalLogRepository
	issues       ports.IssueRepository
	generator    ports.GenerationClient
	catalog      *prompts.Catalog
	uow          ports.UnitOfWork
	lease        ports.GenerationLock
	cache        ports.Cache
	cacheTTL     time.Duration
	variantCount int

	flights singleflight.Group
	keys    keyLocks
	now     func() time.Time
}

type Options struct {
	VariantCount int
	CacheTTL     time.Duration
}

// NewService wires the proposal cache. lease and cache may be nil.
func NewService(
	logs ports.ProposalLogRepository,
	issues ports.IssueRepository,
	generator ports.GenerationClient,
	catalog *prompts.Catalog,
	uow ports.UnitOfWork,
	lease ports.GenerationLock,
	cache ports.Cache,
	opts Options,
) *Service {
	count := opts.VariantCount
	if count <= 0 {
		count = defaultVariantCount
	}
	return &Service{
		logs:         logs,
		issues:       issues,
		generator:    generator,
		catalog:      catalog,
		uow:          uow,
		lease:        lease,
		cache:        cache,
		cacheTTL:     opts.CacheTTL,
		variantCount: count,
		now:          time.Now,
	}
}

type GetOrCreateInput struct {
	CategoryNo        int64
	ConflictSituation string
	Requirements      string
	IssueNo           *int64
}

// Lookup is the outcome of GetOrCreate. Entry is the new reuse row when Hit is true.
type Lookup struct {
	Entry mediation.ProposalLogEntry
	Hit   bool
	Key   mediation.CacheKey
}

type RegisterGeneratedInput struct {
	CategoryNo        int64
	ConflictSituation string
	Requirements      string
	Proposals         []string
	AIModel           string
	IssueNo           *int64
}

type GenerateInput struct {
	IssueNo    int64
	CategoryNo *int64
	// Regenerate calls the provider even when an original group already exists for the key.
	Regenerate bool
}

type GenerateResult struct {
	Issue   domainissue.Issue
	Entries []mediation.ProposalLogEntry
	First   mediation.ProposalLogEntry
	// Reused is true when the proposals came from an earlier generation.
	Reused bool
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.logs == nil {
		return errors.New("proposal log repository is required")
	}
	if s.uow == nil {
		return errors.New("proposal unit of work is required")
	}
	return nil
}

func keyCtx(ctx context.Context, key mediation.CacheKey) context.Context {
	return logging.WithAttrs(ctx,
		slog.String("component", "usecase.mediation"),
		slog.String("cache_key", key.String()),
	)
}

func storeErr(err error, subject string) error {
	if errors.Is(err, ports.ErrNotFound) {
		return errs.WithKind(err, errs.KindNotFound, subject+" not found")
	}
	return errs.WithKind(err, errs.KindStorage, "load "+subject)
}

func logSubject(logNo int64) string {
	return fmt.Sprintf("proposal log %d", logNo)
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logging.Warn(ctx, "cache write failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
	}
}
