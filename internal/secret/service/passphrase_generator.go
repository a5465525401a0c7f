package service

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allisson/quickie/internal/errors"
)

const (
	// DefaultPassphraseWords is the word count used when the caller does not choose one.
	DefaultPassphraseWords = 4

	// MaxPassphraseWords bounds a single passphrase request.
	MaxPassphraseWords = 16

	minWordListSize = 2
)

// ErrInvalidWordCount indicates a passphrase length outside [1, MaxPassphraseWords].
var ErrInvalidWordCount = errors.Wrap(errors.ErrInvalidInput, "invalid passphrase word count")

//go:embed words.txt
var embeddedWords string

// DefaultWordList returns the built-in word list.
func DefaultWordList() []string {
	words, _ := parseWordList(strings.NewReader(embeddedWords))
	return words
}

// LoadWordList reads one word per line from path. Blank lines and lines starting with '#'
// are skipped, duplicates are dropped. An empty path returns DefaultWordList.
func LoadWordList(path string) ([]string, error) {
	if path == "" {
		return DefaultWordList(), nil
	}

	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	words, err := parseWordList(f)
	if err != nil {
		return nil, err
	}
	if len(words) < minWordListSize {
		return nil, fmt.Errorf("word list %s must contain at least %d words", path, minWordListSize)
	}
	return words, nil
}

func parseWordList(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var words []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return words, nil
}

// PassphraseGenerator builds human-friendly passwords from a word list.
type PassphraseGenerator struct {
	words  []string
	random RandomSource
}

// NewPassphraseGenerator creates a generator choosing uniformly from words.
func NewPassphraseGenerator(random RandomSource, words []string) (*PassphraseGenerator, error) {
	if len(words) < minWordListSize {
		return nil, fmt.Errorf("word list must contain at least %d words", minWordListSize)
	}
	return &PassphraseGenerator{words: words, random: random}, nil
}

// Generate returns count words joined by single spaces.
func (g *PassphraseGenerator) Generate(count int) (string, error) {
	if count < 1 || count > MaxPassphraseWords {
		return "", ErrInvalidWordCount
	}

	chosen := make([]string, count)
	for i := range chosen {
		idx, err := g.random.Uniform(uint32(len(g.words)))
		if err != nil {
			return "", err
		}
		chosen[i] = g.words[idx]
	}
	return strings.Join(chosen, " "), nil
}

// WordCount returns the size of the word list.
func (g *PassphraseGenerator) WordCount() int {
	return len(g.words)
}
