// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "file:test.db")
	os.Setenv("ACCESS_TOKEN_SECRET", "test-access")
	os.Setenv("REFRESH_TOKEN_SECRET", "test-refresh")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected default access TTL 15m, got %s", cfg.AccessTokenTTL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-access-secret", "s1", "-refresh-secret", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	os.Clearenv()

	_, err := ParseFlags([]string{"-d", "file:test.db"})
	if err == nil {
		t.Fatal("expected error when secrets are missing")
	}
}

func TestParseFlags_BadDatabaseType(t *testing.T) {
	os.Clearenv()

	_, err := ParseFlags([]string{"-d", "file:test.db", "-t", "oracle", "-access-secret", "s1", "-refresh-secret", "s2"})
	if err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}
