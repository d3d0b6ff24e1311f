package model

import "time"

// KV backs the sqlite implementation of ports.Cache.
type KV struct {
	Key       string     `gorm:"column:key;type:text;primaryKey"`
	Value     string     `gorm:"column:value;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (KV) TableName() string {
	return "kv"
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&User{}, &Issue{}, &MediationProposalLog{}, &Negotiation{}, &KV{}}
}
