package model

import "time"

type Issue struct {
	IssueNo                   int64     `gorm:"column:issue_no;primaryKey;autoIncrement"`
	IssueID                   string    `gorm:"column:issue_id;type:text;uniqueIndex;not null"`
	IssueCode                 string    `gorm:"column:issue_code;type:text;uniqueIndex;not null"`
	UserNo                    int64     `gorm:"column:user_no;index;not null"`
	OpponentUserNo            *int64    `gorm:"column:opponent_user_no;index"`
	ConflictSituation         string    `gorm:"column:conflict_situation;type:text;not null;default:''"`
	Requirements              string    `gorm:"column:requirements;type:text;not null;default:''"`
	AnalysisResult            string    `gorm:"column:analysis_result;type:text;not null;default:''"`
	NegotiationMessage        string    `gorm:"column:negotiation_message;type:text;not null;default:''"`
	OpponentName              string    `gorm:"column:opponent_name;type:text;not null;default:''"`
	OpponentContact           string    `gorm:"column:opponent_contact;type:text;index;not null;default:''"`
	OpponentRequirements      string    `gorm:"column:opponent_requirements;type:text;not null;default:''"`
	OpponentAnalysisResult    string    `gorm:"column:opponent_analysis_result;type:text;not null;default:''"`
	MediationProposals        string    `gorm:"column:mediation_proposals;type:text;not null;default:''"`
	SelectedMediationProposal string    `gorm:"column:selected_mediation_proposal;type:text;not null;default:''"`
	Status                    string    `gorm:"column:status;type:text;index;not null"`
	CreatedAt                 time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt                 time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (Issue) TableName() string {
	return "issues"
}
