package account

import (
	"strings"
	"time"
)

type User struct {
	No        int64
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// NormalizePhone trims the contact. Matching is otherwise exact.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

func (u User) HasPhone() bool {
	return NormalizePhone(u.Phone) != ""
}
