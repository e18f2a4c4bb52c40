package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  file-secret\n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	secret, err := Load(Source{Name: "api key", File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "file-secret" {
		t.Fatalf("expected trimmed file value to win, got %q", secret)
	}
}

func TestLoadFromValue(t *testing.T) {
	secret, err := Load(Source{Name: "api key", Value: " inline-secret "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "inline-secret" {
		t.Fatalf("expected inline value, got %q", secret)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TEST_SECRET_ENV", "env-secret")

	secret, err := Load(Source{Name: "api key", Env: "TEST_SECRET_ENV"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "env-secret" {
		t.Fatalf("expected env value, got %q", secret)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatalf("expected error for unconfigured secret")
	}

	if _, err := Load(Source{Name: "api key", File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("writing empty file: %v", err)
	}
	if _, err := Load(Source{Name: "api key", File: empty}); err == nil {
		t.Fatalf("expected error for empty file")
	}
}
