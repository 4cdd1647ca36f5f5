// Package sensitive implements the banned-word filter applied to prompts
// before they are submitted to the remote API.
package sensitive

import (
	"bufio"
	"os"
	"strings"
)

// Filter holds the word list loaded at startup. The zero value matches
// nothing, so an unconfigured filter is permissive.
type Filter struct {
	words []string
}

// Load reads a newline-delimited word file. Blank lines and lines starting
// with '#' are skipped. An empty path returns a permissive filter.
func Load(path string) (*Filter, error) {
	f := &Filter{}
	if path == "" {
		return f, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		f.words = append(f.words, strings.ToLower(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// Match reports whether the text contains any configured word.
func (f *Filter) Match(text string) bool {
	if len(f.words) == 0 {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Count returns the number of loaded words.
func (f *Filter) Count() int { return len(f.words) }
