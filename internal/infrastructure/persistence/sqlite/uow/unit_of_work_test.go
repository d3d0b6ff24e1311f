package uow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"gentletalk/internal/domain/account"
	"gentletalk/internal/infrastructure/persistence/sqlite/model"
	"gentletalk/internal/infrastructure/persistence/sqlite/repository"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "uow.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := setupDB(t)
	u := NewUnitOfWork(db)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := u.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := users.Create(txCtx, account.User{Name: "a", Phone: "010"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v", err)
	}
	if _, found, err := users.FindByPhone(ctx, "010"); err != nil || found {
		t.Fatalf("FindByPhone() = %v, %v", found, err)
	}
}

func TestWithTxJoinsOuterTransaction(t *testing.T) {
	db := setupDB(t)
	u := NewUnitOfWork(db)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	err := u.WithTx(ctx, func(outer context.Context) error {
		if _, err := users.Create(outer, account.User{Name: "a", Phone: "010"}); err != nil {
			return err
		}
		return u.WithTx(outer, func(inner context.Context) error {
			_, found, err := users.FindByPhone(inner, "010")
			if err != nil {
				return err
			}
			if !found {
				return errors.New("inner transaction cannot see outer write")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
}
