package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mmynk/groupledger/internal/config"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "nested", "ledger.db")}

	store, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{DBDriver: "mysql"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
