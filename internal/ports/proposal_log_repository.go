package ports

import (
	"context"
	"time"

	"gentletalk/internal/domain/mediation"
)

type ProposalLogRepository interface {
	CreateBatch(ctx context.Context, entries []mediation.ProposalLogEntry) ([]mediation.ProposalLogEntry, error)
	GetByNo(ctx context.Context, logNo int64) (mediation.ProposalLogEntry, error)
	// FirstByKey returns the oldest row stored under key.
	FirstByKey(ctx context.Context, key mediation.CacheKey) (mediation.ProposalLogEntry, error)
	// LatestOriginalGroup returns the most recent provider-generated group for key, ordered by sequence.
	LatestOriginalGroup(ctx context.Context, key mediation.CacheKey) ([]mediation.ProposalLogEntry, error)
	// FindByKey orders by reuse count descending, then by log no.
	FindByKey(ctx context.Context, key mediation.CacheKey, limit int) ([]mediation.ProposalLogEntry, error)
	FindPopular(ctx context.Context, categoryNo *int64, limit int) ([]mediation.ProposalLogEntry, error)
	FindRecent(ctx context.Context, categoryNo *int64, limit int) ([]mediation.ProposalLogEntry, error)
	ListByIssue(ctx context.Context, issueNo int64) ([]mediation.ProposalLogEntry, error)
	IncrementReuse(ctx context.Context, logNo int64, at time.Time) error
}
