package ports

import (
	"context"

	"gentletalk/internal/domain/negotiation"
)

type NegotiationRepository interface {
	Create(ctx context.Context, item negotiation.Negotiation) (negotiation.Negotiation, error)
	Save(ctx context.Context, item negotiation.Negotiation) error
	GetByNo(ctx context.Context, negotiationNo int64) (negotiation.Negotiation, error)
	ListByIssue(ctx context.Context, issueNo int64) ([]negotiation.Negotiation, error)
	ListByUser(ctx context.Context, userNo int64, statuses ...negotiation.Status) ([]negotiation.Negotiation, error)
	Recent(ctx context.Context, userNo int64, limit int) ([]negotiation.Negotiation, error)
	CountByStatus(ctx context.Context, userNo int64, status negotiation.Status) (int64, error)
}
