package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteDocument writes a fixture document under the test's temp space and
// returns its path for use as a lint or publish source.
func WriteDocument(t testing.TB, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
