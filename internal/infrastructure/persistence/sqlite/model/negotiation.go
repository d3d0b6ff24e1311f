package model

import "time"

type Negotiation struct {
	NegotiationNo     int64      `gorm:"column:negotiation_no;primaryKey;autoIncrement"`
	NegotiationID     string     `gorm:"column:negotiation_id;type:text;uniqueIndex;not null"`
	IssueNo           int64      `gorm:"column:issue_no;index;not null"`
	UserNo            int64      `gorm:"column:user_no;index;not null"`
	ProposalLogNo     *int64     `gorm:"column:proposal_log_no"`
	MediationProposal string     `gorm:"column:mediation_proposal;type:text;not null;default:''"`
	CounterProposal   string     `gorm:"column:counter_proposal;type:text;not null;default:''"`
	Status            string     `gorm:"column:status;type:text;index;not null"`
	AcceptedAt        *time.Time `gorm:"column:accepted_at"`
	FinalizedAt       *time.Time `gorm:"column:finalized_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (Negotiation) TableName() string {
	return "negotiations"
}
