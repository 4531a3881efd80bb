package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.Port != "8080" || cfg.StorageDriver != DriverMongo || cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Redis.HistoryCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl: %v", cfg.Redis.HistoryCacheTTL)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"STORAGE_DRIVER": "postgres",
		"POSTGRES_DSN":   "postgres://u:p@db:5432/ht",
		"TOKEN_TTL":      "1h",
		"ENV":            "production",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.StorageDriver != DriverPostgres || cfg.Postgres.DSN != "postgres://u:p@db:5432/ht" || cfg.TokenTTL != time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error for missing JWT_SECRET")
	}

	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"STORAGE_DRIVER": "sqlite",
	}))
	if err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
