package fhir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCreds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creds.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing creds file: %v", err)
	}
	return path
}

func TestResolveCredentialsExplicitFile(t *testing.T) {
	path := writeCreds(t, "alice\nsecret\n")
	c, err := ResolveCredentials(path)
	if err != nil {
		t.Fatalf("ResolveCredentials() error: %v", err)
	}
	if c.Username != "alice" || c.Password != "secret" {
		t.Errorf("got %+v, want alice/secret", c)
	}
}

func TestResolveCredentialsSkipsBlankLines(t *testing.T) {
	path := writeCreds(t, "\n  \nalice\n\nsecret\n")
	c, err := ResolveCredentials(path)
	if err != nil {
		t.Fatalf("ResolveCredentials() error: %v", err)
	}
	if c.Username != "alice" || c.Password != "secret" {
		t.Errorf("got %+v, want alice/secret", c)
	}
}

func TestResolveCredentialsExplicitFileMissing(t *testing.T) {
	if _, err := ResolveCredentials(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for unreadable explicit path")
	}
}

func TestResolveCredentialsIncompleteFile(t *testing.T) {
	path := writeCreds(t, "alice\n")
	if _, err := ResolveCredentials(path); err == nil {
		t.Fatal("expected error for single-line creds file")
	}
}

func TestResolveCredentialsEnv(t *testing.T) {
	t.Setenv(EnvUser, "bob")
	t.Setenv(EnvPass, "hunter2")
	c, err := ResolveCredentials("")
	if err != nil {
		t.Fatalf("ResolveCredentials() error: %v", err)
	}
	if c.Username != "bob" || c.Password != "hunter2" {
		t.Errorf("got %+v, want bob/hunter2", c)
	}
}

func TestResolveCredentialsEnvNeedsBoth(t *testing.T) {
	t.Setenv(EnvUser, "bob")
	t.Setenv(EnvPass, "")
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	if _, err := ResolveCredentials(""); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("error = %v, want ErrNoCredentials", err)
	}
}

func TestResolveCredentialsFallbackFile(t *testing.T) {
	t.Setenv(EnvUser, "")
	t.Setenv(EnvPass, "")
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	if err := os.WriteFile(DefaultCredsFile, []byte("carol\npw\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := ResolveCredentials("")
	if err != nil {
		t.Fatalf("ResolveCredentials() error: %v", err)
	}
	if c.Username != "carol" || c.Password != "pw" {
		t.Errorf("got %+v, want carol/pw", c)
	}
}
