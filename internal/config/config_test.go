package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
server:
  address: "0.0.0.0"
  port: 8080
  mode: release
database:
  path: data/expense.db
jwt:
  secret: from-yaml
  access_expire_min: 15
mail:
  host: ""
  password: from-yaml
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := load(writeTestConfig(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "from-yaml" {
		t.Errorf("jwt.secret = %q, want from-yaml", cfg.JWT.Secret)
	}
	if cfg.JWT.AccessExpireMin != 15 {
		t.Errorf("jwt.access_expire_min = %d, want 15", cfg.JWT.AccessExpireMin)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EWT_SERVER_PORT", "9000")
	t.Setenv("EWT_JWT_SECRET", "from-env")
	t.Setenv("EWT_MAIL_PASSWORD", "smtp-secret")

	cfg, err := load(writeTestConfig(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d, want 9000 from env", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("jwt.secret = %q, want from-env", cfg.JWT.Secret)
	}
	if cfg.Mail.Password != "smtp-secret" {
		t.Errorf("mail.password = %q, want smtp-secret from env", cfg.Mail.Password)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
