package vocabulary

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/cbodonnell/wordfall/pkg/game/constants"
)

//go:embed words.txt
var embeddedWords string

// Source supplies the ordered word list for a round.
type Source interface {
	Load(ctx context.Context) ([]string, error)
}

// Default returns the embedded word list.
func Default() []string {
	words, err := Parse(strings.NewReader(embeddedWords))
	if err != nil {
		// the embedded list is a string literal, reading it cannot fail
		panic(fmt.Sprintf("failed to parse embedded words: %v", err))
	}
	return words
}

// Parse reads one word per line. Blank lines and lines starting with '#' are
// skipped, surrounding whitespace is trimmed, words containing whitespace or
// longer than constants.MaxWordLength are dropped, and duplicates keep their
// first position.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if !Valid(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read words: %v", err)
	}
	return words, nil
}

// Valid reports whether w can be used as a falling word.
func Valid(w string) bool {
	if w == "" || strings.HasPrefix(w, "#") || len(w) > constants.MaxWordLength {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] <= ' ' || w[i] > '~' {
			return false
		}
	}
	return true
}

// Static is a fixed in-memory word list.
type Static []string

func (s Static) Load(ctx context.Context) ([]string, error) {
	words := make([]string, len(s))
	copy(words, s)
	return words, nil
}

// DefaultSource serves the embedded word list.
type DefaultSource struct{}

func (DefaultSource) Load(ctx context.Context) ([]string, error) {
	return Default(), nil
}
