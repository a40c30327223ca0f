package studyhall

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("studyhall", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "studyhall.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.TokenIssuer != "studyhall" {
		t.Fatalf("expected default token issuer, got %q", cfg.TokenIssuer)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected default token ttl, got %s", cfg.TokenTTL)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("STUDYHALL_HTTP_ADDR", "env-addr")
	t.Setenv("STUDYHALL_DB_PATH", "env-db")
	t.Setenv("STUDYHALL_TOKEN_SECRET", "env-secret")

	fs := flag.NewFlagSet("studyhall", flag.ContinueOnError)
	args := []string{
		"-http-addr", "flag-addr",
		"-db-path", "flag-db",
		"-token-ttl", "2h",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-addr" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.DBPath != "flag-db" {
		t.Fatalf("expected flag db path, got %q", cfg.DBPath)
	}
	if cfg.TokenSecret != "env-secret" {
		t.Fatalf("expected env token secret, got %q", cfg.TokenSecret)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("expected flag token ttl, got %s", cfg.TokenTTL)
	}
}

func TestRunRequiresTokenSecret(t *testing.T) {
	err := Run(t.Context(), Config{HTTPAddr: ":0", DBPath: "unused"})
	if err == nil {
		t.Fatal("expected error for missing token secret")
	}
}
