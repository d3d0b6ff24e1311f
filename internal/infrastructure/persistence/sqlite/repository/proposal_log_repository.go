package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gentletalk/internal/domain/mediation"
	"gentletalk/internal/errs"
	"gentletalk/internal/infrastructure/persistence/sqlite/model"
	"gentletalk/internal/ports"
)

type ProposalLogRepository struct {
	base
}

var _ ports.ProposalLogRepository = (*ProposalLogRepository)(nil)

func NewProposalLogRepository(db *gorm.DB) *ProposalLogRepository {
	return &ProposalLogRepository{base{db: db}}
}

func (r *ProposalLogRepository) CreateBatch(ctx context.Context, entries []mediation.ProposalLogEntry) ([]mediation.ProposalLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	rows := make([]model.MediationProposalLog, 0, len(entries))
	for _, e := range entries {
		row := toProposalLogModel(e)
		row.LogNo = 0
		row.LogID = newID(row.LogID)
		rows = append(rows, row)
	}
	if err := db.Create(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "insert proposal logs")
	}
	return fromProposalLogModels(rows), nil
}

func (r *ProposalLogRepository) GetByNo(ctx context.Context, logNo int64) (mediation.ProposalLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return mediation.ProposalLogEntry{}, err
	}

	var row model.MediationProposalLog
	if err := db.Where("log_no = ?", logNo).Take(&row).Error; err != nil {
		return mediation.ProposalLogEntry{}, notFoundOr(err, "query proposal log by no")
	}
	return fromProposalLogModel(row), nil
}

func (r *ProposalLogRepository) FirstByKey(ctx context.Context, key mediation.CacheKey) (mediation.ProposalLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return mediation.ProposalLogEntry{}, err
	}

	var row model.MediationProposalLog
	if err := byKey(db, key).Order("log_no asc").Take(&row).Error; err != nil {
		return mediation.ProposalLogEntry{}, notFoundOr(err, "query proposal log by key")
	}
	return fromProposalLogModel(row), nil
}

func (r *ProposalLogRepository) LatestOriginalGroup(ctx context.Context, key mediation.CacheKey) ([]mediation.ProposalLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var latest model.MediationProposalLog
	if err := byKey(db, key).Where("is_from_api = ?", true).Order("log_no desc").Take(&latest).Error; err != nil {
		return nil, notFoundOr(err, "query latest original proposal")
	}

	var rows []model.MediationProposalLog
	if err := db.Model(&model.MediationProposalLog{}).
		Where("group_id = ?", latest.GroupID).
		Order("sequence asc").Order("log_no asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query original proposal group")
	}
	return fromProposalLogModels(rows), nil
}

func (r *ProposalLogRepository) FindByKey(ctx context.Context, key mediation.CacheKey, limit int) ([]mediation.ProposalLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.MediationProposalLog
	if err := byKey(db, key).
		Order("reuse_count desc").Order("log_no asc").
		Limit(clampLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query proposal logs by key")
	}
	return fromProposalLogModels(rows), nil
}

func (r *ProposalLogRepository) FindPopular(ctx context.Context, categoryNo *int64, limit int) ([]mediation.ProposalLogEntry, error) {
	return r.ranked(ctx, categoryNo, limit, "reuse_count desc", "query popular proposal logs")
}

func (r *ProposalLogRepository) FindRecent(ctx context.Context, categoryNo *int64, limit int) ([]mediation.ProposalLogEntry, error) {
	return r.ranked(ctx, categoryNo, limit, "created_at desc", "query recent proposal logs")
}

func (r *ProposalLogRepository) ListByIssue(ctx context.Context, issueNo int64) ([]mediation.ProposalLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.MediationProposalLog
	if err := db.Model(&model.MediationProposalLog{}).
		Where("issue_no = ?", issueNo).
		Order("log_no asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query proposal logs by issue")
	}
	return fromProposalLogModels(rows), nil
}

// IncrementReuse bumps the counter in a single statement so concurrent reuses never lose an update.
func (r *ProposalLogRepository) IncrementReuse(ctx context.Context, logNo int64, at time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.MediationProposalLog{}).
		Where("log_no = ?", logNo).
		Updates(map[string]any{
			"reuse_count":    gorm.Expr("reuse_count + 1"),
			"last_reused_at": at,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "increment proposal reuse")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(ports.ErrNotFound, "increment proposal reuse %d", logNo)
	}
	return nil
}

func (r *ProposalLogRepository) ranked(ctx context.Context, categoryNo *int64, limit int, order string, op string) ([]mediation.ProposalLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.MediationProposalLog{})
	if categoryNo != nil {
		query = query.Where("category_no = ?", *categoryNo)
	}
	var rows []model.MediationProposalLog
	if err := query.Order(order).Order("log_no desc").Limit(clampLimit(limit)).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, op)
	}
	return fromProposalLogModels(rows), nil
}

func byKey(db *gorm.DB, key mediation.CacheKey) *gorm.DB {
	return db.Model(&model.MediationProposalLog{}).
		Where("category_no = ? AND conflict_situation_hash = ?", key.CategoryNo, key.Hash)
}

func toProposalLogModel(e mediation.ProposalLogEntry) model.MediationProposalLog {
	return model.MediationProposalLog{
		LogNo:                 e.No,
		LogID:                 e.ID,
		CategoryNo:            e.CategoryNo,
		ConflictSituationHash: e.Hash,
		GroupID:               e.GroupID,
		ConflictSituation:     e.ConflictSituation,
		Requirements:          e.Requirements,
		ProposalText:          e.ProposalText,
		AIModel:               e.AIModel,
		IsFromAPI:             e.IsFromAPI,
		SourceLogNo:           e.SourceLogNo,
		SimilarityScore:       e.SimilarityScore,
		ReuseCount:            e.ReuseCount,
		LastReusedAt:          e.LastReusedAt,
		IssueNo:               e.IssueNo,
		Sequence:              e.Sequence,
		CreatedAt:             e.CreatedAt,
	}
}

func fromProposalLogModel(row model.MediationProposalLog) mediation.ProposalLogEntry {
	return mediation.ProposalLogEntry{
		No:                row.LogNo,
		ID:                row.LogID,
		CategoryNo:        row.CategoryNo,
		Hash:              row.ConflictSituationHash,
		GroupID:           row.GroupID,
		ConflictSituation: row.ConflictSituation,
		Requirements:      row.Requirements,
		ProposalText:      row.ProposalText,
		AIModel:           row.AIModel,
		IsFromAPI:         row.IsFromAPI,
		SourceLogNo:       row.SourceLogNo,
		SimilarityScore:   row.SimilarityScore,
		ReuseCount:        row.ReuseCount,
		LastReusedAt:      row.LastReusedAt,
		IssueNo:           row.IssueNo,
		Sequence:          row.Sequence,
		CreatedAt:         row.CreatedAt,
	}
}

func fromProposalLogModels(rows []model.MediationProposalLog) []mediation.ProposalLogEntry {
	items := make([]mediation.ProposalLogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromProposalLogModel(row))
	}
	return items
}
