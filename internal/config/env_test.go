package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile_missing(t *testing.T) {
	err := LoadEnvFile(filepath.Join(t.TempDir(), "nonexistent"))
	if err != nil {
		t.Fatalf("missing file should return nil: %v", err)
	}
}

func TestLoadEnvFile_setsEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CLIPSTOCK_T_FOO=bar\n# comment\nCLIPSTOCK_T_BAZ=\"hello world\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLIPSTOCK_T_FOO", "")
	os.Unsetenv("CLIPSTOCK_T_FOO")
	t.Setenv("CLIPSTOCK_T_BAZ", "")
	os.Unsetenv("CLIPSTOCK_T_BAZ")
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if os.Getenv("CLIPSTOCK_T_FOO") != "bar" {
		t.Errorf("FOO = %q", os.Getenv("CLIPSTOCK_T_FOO"))
	}
	if os.Getenv("CLIPSTOCK_T_BAZ") != "hello world" {
		t.Errorf("BAZ = %q", os.Getenv("CLIPSTOCK_T_BAZ"))
	}
}

func TestLoadEnvFile_existingEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CLIPSTOCK_T_KEEP=file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLIPSTOCK_T_KEEP", "shell")
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("CLIPSTOCK_T_KEEP"); got != "shell" {
		t.Errorf("KEEP = %q, want shell", got)
	}
}
