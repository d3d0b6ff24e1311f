package repository

import (
	"context"

	"gorm.io/gorm"

	"gentletalk/internal/domain/negotiation"
	"gentletalk/internal/errs"
	"gentletalk/internal/infrastructure/persistence/sqlite/model"
	"gentletalk/internal/ports"
)

type NegotiationRepository struct {
	base
}

var _ ports.NegotiationRepository = (*NegotiationRepository)(nil)

func NewNegotiationRepository(db *gorm.DB) *NegotiationRepository {
	return &NegotiationRepository{base{db: db}}
}

func (r *NegotiationRepository) Create(ctx context.Context, item negotiation.Negotiation) (negotiation.Negotiation, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return negotiation.Negotiation{}, err
	}

	row := toNegotiationModel(item)
	row.NegotiationNo = 0
	row.NegotiationID = newID(row.NegotiationID)
	if err := db.Create(&row).Error; err != nil {
		return negotiation.Negotiation{}, errs.Wrap(err, "insert negotiation")
	}
	return fromNegotiationModel(row), nil
}

func (r *NegotiationRepository) Save(ctx context.Context, item negotiation.Negotiation) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := toNegotiationModel(item)
	result := db.Model(&model.Negotiation{}).
		Where("negotiation_no = ?", item.No).
		Select("proposal_log_no", "mediation_proposal", "counter_proposal", "status", "accepted_at", "finalized_at", "updated_at").
		Updates(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update negotiation")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(ports.ErrNotFound, "update negotiation %d", item.No)
	}
	return nil
}

func (r *NegotiationRepository) GetByNo(ctx context.Context, negotiationNo int64) (negotiation.Negotiation, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return negotiation.Negotiation{}, err
	}

	var row model.Negotiation
	if err := db.Where("negotiation_no = ?", negotiationNo).Take(&row).Error; err != nil {
		return negotiation.Negotiation{}, notFoundOr(err, "query negotiation by no")
	}
	return fromNegotiationModel(row), nil
}

func (r *NegotiationRepository) ListByIssue(ctx context.Context, issueNo int64) ([]negotiation.Negotiation, error) {
	return r.find(ctx, "list negotiations by issue", func(q *gorm.DB) *gorm.DB {
		return q.Where("issue_no = ?", issueNo).Order("negotiation_no desc")
	})
}

func (r *NegotiationRepository) ListByUser(ctx context.Context, userNo int64, statuses ...negotiation.Status) ([]negotiation.Negotiation, error) {
	return r.find(ctx, "list negotiations by user", func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_no = ?", userNo)
		if len(statuses) > 0 {
			q = q.Where("status IN ?", statusStrings(statuses))
		}
		return q.Order("negotiation_no desc")
	})
}

func (r *NegotiationRepository) Recent(ctx context.Context, userNo int64, limit int) ([]negotiation.Negotiation, error) {
	return r.find(ctx, "list recent negotiations", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_no = ?", userNo).
			Order("created_at desc").Order("negotiation_no desc").
			Limit(clampLimit(limit))
	})
}

func (r *NegotiationRepository) CountByStatus(ctx context.Context, userNo int64, status negotiation.Status) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Negotiation{}).
		Where("user_no = ? AND status = ?", userNo, string(status)).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count negotiations by status")
	}
	return count, nil
}

func (r *NegotiationRepository) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]negotiation.Negotiation, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Negotiation
	if err := scope(db.Model(&model.Negotiation{})).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, op)
	}
	items := make([]negotiation.Negotiation, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromNegotiationModel(row))
	}
	return items, nil
}

func statusStrings(statuses []negotiation.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func toNegotiationModel(item negotiation.Negotiation) model.Negotiation {
	return model.Negotiation{
		NegotiationNo:     item.No,
		NegotiationID:     item.ID,
		IssueNo:           item.IssueNo,
		UserNo:            item.UserNo,
		ProposalLogNo:     item.ProposalLogNo,
		MediationProposal: item.MediationProposal,
		CounterProposal:   item.CounterProposal,
		Status:            string(item.Status),
		AcceptedAt:        item.AcceptedAt,
		FinalizedAt:       item.FinalizedAt,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func fromNegotiationModel(row model.Negotiation) negotiation.Negotiation {
	return negotiation.Negotiation{
		No:                row.NegotiationNo,
		ID:                row.NegotiationID,
		IssueNo:           row.IssueNo,
		UserNo:            row.UserNo,
		ProposalLogNo:     row.ProposalLogNo,
		MediationProposal: row.MediationProposal,
		CounterProposal:   row.CounterProposal,
		Status:            negotiation.Status(row.Status),
		AcceptedAt:        row.AcceptedAt,
		FinalizedAt:       row.FinalizedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
