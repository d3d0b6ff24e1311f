package ports

import (
	"context"

	"gentletalk/internal/domain/account"
)

type UserDirectory interface {
	// FindByPhone reports found=false when no user carries phone.
	FindByPhone(ctx context.Context, phone string) (user account.User, found bool, err error)
	Create(ctx context.Context, user account.User) (account.User, error)
	GetByNo(ctx context.Context, userNo int64) (account.User, error)
}
