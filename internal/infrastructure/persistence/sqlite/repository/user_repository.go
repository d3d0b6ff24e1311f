package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gentletalk/internal/domain/account"
	"gentletalk/internal/errs"
	"gentletalk/internal/infrastructure/persistence/sqlite/model"
	"gentletalk/internal/ports"
)

// UserRepository is the sqlite-backed ports.UserDirectory.
type UserRepository struct {
	base
}

var _ ports.UserDirectory = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{base{db: db}}
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (account.User, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return account.User{}, false, err
	}

	normalized := account.NormalizePhone(phone)
	if normalized == "" {
		return account.User{}, false, nil
	}

	var row model.User
	if err := db.Where("phone = ?", normalized).Order("user_no asc").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.User{}, false, nil
		}
		return account.User{}, false, errs.Wrap(err, "query user by phone")
	}
	return fromUserModel(row), true, nil
}

func (r *UserRepository) Create(ctx context.Context, user account.User) (account.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return account.User{}, err
	}

	row := model.User{
		UserID: newID(user.ID),
		Name:   user.Name,
		Phone:  account.NormalizePhone(user.Phone),
	}
	if err := db.Create(&row).Error; err != nil {
		return account.User{}, errs.Wrap(err, "insert user")
	}
	return fromUserModel(row), nil
}

func (r *UserRepository) GetByNo(ctx context.Context, userNo int64) (account.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return account.User{}, err
	}

	var row model.User
	if err := db.Where("user_no = ?", userNo).Take(&row).Error; err != nil {
		return account.User{}, notFoundOr(err, "query user by no")
	}
	return fromUserModel(row), nil
}

func fromUserModel(row model.User) account.User {
	return account.User{
		No:        row.UserNo,
		ID:        row.UserID,
		Name:      row.Name,
		Phone:     row.Phone,
		CreatedAt: row.CreatedAt,
	}
}
