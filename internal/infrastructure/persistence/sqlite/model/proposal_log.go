package model

import "time"

type MediationProposalLog struct {
	LogNo                 int64      `gorm:"column:log_no;primaryKey;autoIncrement"`
	LogID                 string     `gorm:"column:log_id;type:text;uniqueIndex;not null"`
	CategoryNo            int64      `gorm:"column:category_no;not null;index:idx_proposal_logs_key,priority:1"`
	ConflictSituationHash string     `gorm:"column:conflict_situation_hash;type:text;not null;index:idx_proposal_logs_key,priority:2"`
	GroupID               string     `gorm:"column:group_id;type:text;index;not null"`
	ConflictSituation     string     `gorm:"column:conflict_situation;type:text;not null;default:''"`
	Requirements          string     `gorm:"column:requirements;type:text;not null;default:''"`
	ProposalText          string     `gorm:"column:proposal_text;type:text;not null"`
	AIModel               string     `gorm:"column:ai_model;type:text;not null;default:''"`
	IsFromAPI             bool       `gorm:"column:is_from_api;not null;default:0"`
	SourceLogNo           *int64     `gorm:"column:source_log_no;index"`
	SimilarityScore       float64    `gorm:"column:similarity_score;not null;default:0"`
	ReuseCount            int64      `gorm:"column:reuse_count;not null;default:0"`
	LastReusedAt          *time.Time `gorm:"column:last_reused_at"`
	IssueNo               *int64     `gorm:"column:issue_no;index"`
	Sequence              int        `gorm:"column:sequence;not null;default:0"`
	CreatedAt             time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
}

func (MediationProposalLog) TableName() string {
	return "mediation_proposal_logs"
}
