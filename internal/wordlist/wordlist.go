// File: internal/wordlist/wordlist.go

// Package wordlist loads password candidate lists for the brute-force flow.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads a wordlist file into a slice of candidates. Blank lines are
// skipped, surrounding whitespace is trimmed, and duplicates are dropped while
// preserving file order, so candidates are attempted exactly once and in the
// order the author wrote them.
func Load(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("wordlist %q is not readable: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("wordlist %q is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("wordlist %q is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open wordlist %q: %w", path, err)
	}
	defer f.Close()

	seen := make(map[string]struct{})
	var words []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read wordlist %q: %w", path, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("wordlist %q contains no usable entries", path)
	}

	return words, nil
}
