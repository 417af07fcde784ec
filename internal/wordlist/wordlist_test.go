// File: internal/wordlist/wordlist_test.go
package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWordlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPreservesOrderAndDeduplicates(t *testing.T) {
	path := writeWordlist(t, "alpha\nbravo\n\n  charlie  \nalpha\nbravo\ndelta\n")

	words, err := Load(path)
	require.NoError(t, err)

	want := []string{"alpha", "bravo", "charlie", "delta"}
	if diff := cmp.Diff(want, words); diff != "" {
		t.Fatalf("unexpected wordlist (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not readable")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeWordlist(t, "")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestLoadWhitespaceOnlyFile(t *testing.T) {
	path := writeWordlist(t, "\n\n   \n\t\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable entries")
}

func TestLoadDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
