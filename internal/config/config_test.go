package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.LockTTL != 10*time.Second || cfg.LockWait != 3*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.UsePostgres() {
		t.Fatalf("expected no postgres without DATABASE_URL")
	}
	if cfg.MemoryStore != MemoryStoreInMemory {
		t.Fatalf("expected memory store fallback, got %q", cfg.MemoryStore)
	}
}

func TestLoadConfigPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://coach@localhost/coach")
	t.Setenv("MEMORY_STORE", "postgres")
	t.Setenv("STORE_TIMEOUT", "500ms")
	t.Setenv("DB_MAX_CONNS", "0")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MemoryStore != MemoryStorePostgres || cfg.StoreTimeout != 500*time.Millisecond {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("expected DB_MAX_CONNS fallback, got %d", cfg.DBMaxConns)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("MEMORY_STORE", "s3")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown MEMORY_STORE")
	}

	t.Setenv("MEMORY_STORE", "memory")
	t.Setenv("LOCK_TTL", "0s")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for LOCK_TTL 0")
	}

	t.Setenv("LOCK_TTL", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error for LOCK_TTL")
	}
}
