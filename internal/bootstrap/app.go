package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"gentletalk/internal/bootstrap/config"
	"gentletalk/internal/bootstrap/logging"
	"gentletalk/internal/errs"
	"gentletalk/internal/infrastructure/persistence/schema"
	"gentletalk/internal/infrastructure/persistence/sqlite/model"
	accountuc "gentletalk/internal/usecase/account"
	issueuc "gentletalk/internal/usecase/issue"
	mediationuc "gentletalk/internal/usecase/mediation"
	negotiationuc "gentletalk/internal/usecase/negotiation"
)

type App struct {
	Config       config.Config
	DB           *gorm.DB
	Issues       *issueuc.Service
	Mediation    *mediationuc.Service
	Negotiations *negotiationuc.Service
	Accounts     *accountuc.Service
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))

	before, err := schema.CurrentVersion(ctx, a.DB)
	if err != nil {
		return err
	}
	logging.Info(logCtx, "start schema migration", slog.String("from_version", before), slog.String("to_version", schema.Version))

	if err := a.DB.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}
	if err := schema.Stamp(ctx, a.DB); err != nil {
		return err
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}

	if err := sqlDB.Close(); err != nil {
		return errs.Wrap(err, "close sql db")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.app")), "database connection closed")
	return nil
}
