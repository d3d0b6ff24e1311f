package ports

import (
	"context"

	"gentletalk/internal/domain/issue"
)

type IssueFilter struct {
	UserNo *int64
	Status issue.Status
	Offset int
	Limit  int
}

type IssueRepository interface {
	Create(ctx context.Context, item issue.Issue) (issue.Issue, error)
	Save(ctx context.Context, item issue.Issue) error
	// SaveAnalysis writes only the analysis result, outreach message and status of item.
	SaveAnalysis(ctx context.Context, item issue.Issue) error
	GetByNo(ctx context.Context, issueNo int64) (issue.Issue, error)
	GetByCode(ctx context.Context, code string) (issue.Issue, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByUser(ctx context.Context, userNo int64) ([]issue.Issue, error)
	ListByOpponent(ctx context.Context, userNo int64) ([]issue.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]issue.Issue, int64, error)
	CountByStatus(ctx context.Context, userNo *int64, status issue.Status) (int64, error)
	Recent(ctx context.Context, userNo int64, limit int) ([]issue.Issue, error)
	// ListUnlinkedByContact returns issues whose opponent contact equals contact and whose
	// opponent user is still unset.
	ListUnlinkedByContact(ctx context.Context, contact string) ([]issue.Issue, error)
	// LinkOpponent sets the opponent user only while it is still unset. It reports whether a row changed.
	LinkOpponent(ctx context.Context, issueNo int64, userNo int64) (bool, error)
}
