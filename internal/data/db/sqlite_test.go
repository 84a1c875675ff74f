package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

func TestSQLiteServiceCloseIdempotent(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	svc, err := NewSQLiteService(log, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second close must be a no-op: %v", err)
	}
}
