package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/fx"

	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/infrastructure/persistence/schema"
	issueuc "gentletalk/internal/usecase/issue"
)

func TestModuleWiresServices(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := []byte("database:\n  dsn: \"" + filepath.Join(dir, "state", "talk.sqlite") + "\"\ncache:\n  backend: sqlite\n")
	if err := os.WriteFile(cfgPath, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx := context.Background()
	var app *App
	fxApp := fx.New(
		Module,
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return cfgPath },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		fx.Populate(&app),
	)
	if err := fxApp.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		_ = fxApp.Stop(context.Background())
	})

	if err := app.InitSchema(ctx); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	version, err := schema.CurrentVersion(ctx, app.DB)
	if err != nil || version != schema.Version {
		t.Fatalf("CurrentVersion() = %q, %v", version, err)
	}

	item, err := app.Issues.Register(ctx, issueuc.RegisterInput{UserNo: 1, ConflictSituation: "dispute A", Requirements: "refund"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	status, err := app.Issues.Status(ctx, item.No)
	if err != nil || status != domainissue.StatusPending {
		t.Fatalf("Status() = %q, %v", status, err)
	}
	if app.Mediation == nil || app.Negotiations == nil || app.Accounts == nil {
		t.Fatalf("app services not wired: %#v", app)
	}
}
