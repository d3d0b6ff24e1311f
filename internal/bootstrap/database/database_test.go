package database

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"gentletalk/internal/bootstrap/config"
)

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	lg := gormLogger(&buf)
	query := func() (string, int64) { return "SELECT * FROM `mediation_proposal_logs` LIMIT 1", 0 }

	lg.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found was logged: %q", buf.String())
	}

	lg.Trace(context.Background(), time.Now(), query, errors.New("disk I/O error"))
	if !strings.Contains(buf.String(), "disk I/O error") {
		t.Fatalf("query failure not logged: %q", buf.String())
	}
}

func TestOpenCreatesDirectoryAndSingleConnection(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "gentletalk.sqlite")
	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}

	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "postgres", DSN: dsn}); err == nil {
		t.Fatalf("Open(postgres) expected error")
	}
}
