package model

import "time"

type User struct {
	UserNo    int64     `gorm:"column:user_no;primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;type:text;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;type:text;not null;default:''"`
	Phone     string    `gorm:"column:phone;type:text;index;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
