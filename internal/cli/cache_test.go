package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes args against a fresh command tree and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).command()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCachePath(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"file", map[string]string{"DEPDISTILL_CACHE_DIR": "/tmp/depdistill-test"}, "/tmp/depdistill-test"},
		{"redis", map[string]string{"DEPDISTILL_CACHE_BACKEND": "redis", "DEPDISTILL_CACHE_REDIS_ADDR": "cache:6379"}, "redis://cache:6379"},
		{"none", map[string]string{"DEPDISTILL_CACHE_BACKEND": "none"}, "(disabled)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			out, err := runCLI(t, "cache", "path")
			if err != nil {
				t.Fatalf("cache path: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("cache path = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEPDISTILL_CACHE_DIR", dir)

	entry := filepath.Join(dir, "ab", "abcdef.json")
	if err := os.MkdirAll(filepath.Dir(entry), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(entry, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Errorf("entry still present after clear: %v", err)
	}
}

func TestCacheClearDisabled(t *testing.T) {
	t.Setenv("DEPDISTILL_CACHE_BACKEND", "none")
	if _, err := runCLI(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear with disabled cache: %v", err)
	}
}
