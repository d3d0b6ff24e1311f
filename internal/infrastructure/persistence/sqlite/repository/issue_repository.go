package repository

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"gentletalk/internal/domain/issue"
	"gentletalk/internal/errs"
	"gentletalk/internal/infrastructure/persistence/sqlite/model"
	"gentletalk/internal/ports"
)

type IssueRepository struct {
	base
}

var _ ports.IssueRepository = (*IssueRepository)(nil)

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{base{db: db}}
}

func (r *IssueRepository) Create(ctx context.Context, item issue.Issue) (issue.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.Issue{}, err
	}

	item.ID = newID(item.ID)
	row, err := toIssueModel(item)
	if err != nil {
		return issue.Issue{}, err
	}
	row.IssueNo = 0
	if err := db.Create(&row).Error; err != nil {
		return issue.Issue{}, errs.Wrap(err, "insert issue")
	}
	return fromIssueModel(row), nil
}

// Save writes every mutable column. The issue code is never rewritten.
func (r *IssueRepository) Save(ctx context.Context, item issue.Issue) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row, err := toIssueModel(item)
	if err != nil {
		return err
	}
	result := db.Model(&model.Issue{}).
		Where("issue_no = ?", item.No).
		Select(
			"opponent_user_no", "conflict_situation", "requirements", "analysis_result",
			"negotiation_message", "opponent_name", "opponent_contact", "opponent_requirements",
			"opponent_analysis_result", "mediation_proposals", "selected_mediation_proposal",
			"status", "updated_at",
		).
		Updates(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update issue")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(ports.ErrNotFound, "update issue %d", item.No)
	}
	return nil
}

// SaveAnalysis writes the analysis columns only. Opponent and proposal columns are untouched.
func (r *IssueRepository) SaveAnalysis(ctx context.Context, item issue.Issue) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Issue{}).
		Where("issue_no = ?", item.No).
		Select("analysis_result", "negotiation_message", "status", "updated_at").
		Updates(&model.Issue{
			AnalysisResult:     item.AnalysisResult,
			NegotiationMessage: item.NegotiationMessage,
			Status:             string(item.Status),
			UpdatedAt:          item.UpdatedAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update issue analysis")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(ports.ErrNotFound, "update issue analysis %d", item.No)
	}
	return nil
}

func (r *IssueRepository) GetByNo(ctx context.Context, issueNo int64) (issue.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.Issue{}, err
	}

	var row model.Issue
	if err := db.Where("issue_no = ?", issueNo).Take(&row).Error; err != nil {
		return issue.Issue{}, notFoundOr(err, "query issue by no")
	}
	return fromIssueModel(row), nil
}

func (r *IssueRepository) GetByCode(ctx context.Context, code string) (issue.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return issue.Issue{}, err
	}

	var row model.Issue
	if err := db.Where("issue_code = ?", strings.TrimSpace(code)).Take(&row).Error; err != nil {
		return issue.Issue{}, notFoundOr(err, "query issue by code")
	}
	return fromIssueModel(row), nil
}

func (r *IssueRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.Issue{}).Where("issue_code = ?", code).Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count issue code")
	}
	return count > 0, nil
}

func (r *IssueRepository) ListByUser(ctx context.Context, userNo int64) ([]issue.Issue, error) {
	return r.find(ctx, "list issues by user", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_no = ?", userNo).Order("issue_no desc")
	})
}

func (r *IssueRepository) ListByOpponent(ctx context.Context, userNo int64) ([]issue.Issue, error) {
	return r.find(ctx, "list issues by opponent", func(q *gorm.DB) *gorm.DB {
		return q.Where("opponent_user_no = ?", userNo).Order("issue_no desc")
	})
}

func (r *IssueRepository) List(ctx context.Context, filter ports.IssueFilter) ([]issue.Issue, int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := db.Model(&model.Issue{})
	if filter.UserNo != nil {
		query = query.Where("user_no = ?", *filter.UserNo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errs.Wrap(err, "count issues")
	}

	var rows []model.Issue
	if err := query.Order("issue_no desc").Offset(filter.Offset).Limit(clampLimit(filter.Limit)).Find(&rows).Error; err != nil {
		return nil, 0, errs.Wrap(err, "list issues")
	}
	return fromIssueModels(rows), total, nil
}

func (r *IssueRepository) CountByStatus(ctx context.Context, userNo *int64, status issue.Status) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	query := db.Model(&model.Issue{}).Where("status = ?", string(status))
	if userNo != nil {
		query = query.Where("user_no = ? OR opponent_user_no = ?", *userNo, *userNo)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count issues by status")
	}
	return count, nil
}

func (r *IssueRepository) Recent(ctx context.Context, userNo int64, limit int) ([]issue.Issue, error) {
	return r.find(ctx, "list recent issues", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_no = ? OR opponent_user_no = ?", userNo, userNo).
			Order("created_at desc").Order("issue_no desc").
			Limit(clampLimit(limit))
	})
}

func (r *IssueRepository) ListUnlinkedByContact(ctx context.Context, contact string) ([]issue.Issue, error) {
	return r.find(ctx, "list unlinked issues by contact", func(q *gorm.DB) *gorm.DB {
		return q.Where("opponent_contact = ? AND opponent_user_no IS NULL", contact).Order("issue_no asc")
	})
}

func (r *IssueRepository) LinkOpponent(ctx context.Context, issueNo int64, userNo int64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Issue{}).
		Where("issue_no = ? AND opponent_user_no IS NULL", issueNo).
		Update("opponent_user_no", userNo)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "link issue opponent")
	}
	return result.RowsAffected > 0, nil
}

func (r *IssueRepository) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]issue.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Issue
	if err := scope(db.Model(&model.Issue{})).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, op)
	}
	return fromIssueModels(rows), nil
}

func toIssueModel(item issue.Issue) (model.Issue, error) {
	proposals := ""
	if len(item.Proposals) > 0 {
		raw, err := json.Marshal(item.Proposals)
		if err != nil {
			return model.Issue{}, errs.Wrap(err, "encode mediation proposals")
		}
		proposals = string(raw)
	}
	selected := ""
	if item.SelectedProposal != "" {
		raw, err := json.Marshal(item.SelectedProposal)
		if err != nil {
			return model.Issue{}, errs.Wrap(err, "encode selected proposal")
		}
		selected = string(raw)
	}

	return model.Issue{
		IssueNo:                   item.No,
		IssueID:                   item.ID,
		IssueCode:                 item.Code,
		UserNo:                    item.UserNo,
		OpponentUserNo:            item.OpponentUserNo,
		ConflictSituation:         item.ConflictSituation,
		Requirements:              item.Requirements,
		AnalysisResult:            item.AnalysisResult,
		NegotiationMessage:        item.NegotiationMessage,
		OpponentName:              item.OpponentName,
		OpponentContact:           item.OpponentContact,
		OpponentRequirements:      item.OpponentRequirements,
		OpponentAnalysisResult:    item.OpponentAnalysisResult,
		MediationProposals:        proposals,
		SelectedMediationProposal: selected,
		Status:                    string(item.Status),
		CreatedAt:                 item.CreatedAt,
		UpdatedAt:                 item.UpdatedAt,
	}, nil
}

func fromIssueModel(row model.Issue) issue.Issue {
	return issue.Issue{
		No:                     row.IssueNo,
		ID:                     row.IssueID,
		Code:                   row.IssueCode,
		UserNo:                 row.UserNo,
		OpponentUserNo:         row.OpponentUserNo,
		ConflictSituation:      row.ConflictSituation,
		Requirements:           row.Requirements,
		AnalysisResult:         row.AnalysisResult,
		NegotiationMessage:     row.NegotiationMessage,
		OpponentName:           row.OpponentName,
		OpponentContact:        row.OpponentContact,
		OpponentRequirements:   row.OpponentRequirements,
		OpponentAnalysisResult: row.OpponentAnalysisResult,
		Proposals:              decodeProposals(row.MediationProposals),
		SelectedProposal:       decodeSelected(row.SelectedMediationProposal),
		Status:                 issue.Status(row.Status),
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}
}

func fromIssueModels(rows []model.Issue) []issue.Issue {
	items := make([]issue.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromIssueModel(row))
	}
	return items
}

// decodeProposals tolerates legacy rows holding a single non-JSON proposal.
func decodeProposals(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{raw}
	}
	return out
}

func decodeSelected(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	var out string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return raw
	}
	return out
}
