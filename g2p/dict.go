package g2p

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadDictionary reads a pronunciation dictionary from a tab-separated
// stream. Format: word<TAB>phoneme1 phoneme2 ...
// Empty lines and lines starting with # are skipped.
func LoadDictionary(r io.Reader) (map[string][]string, error) {
	dict := make(map[string][]string)
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("g2p: dictionary line %d: expected word<TAB>phonemes", lineNum)
		}
		word := strings.ToLower(strings.TrimSpace(parts[0]))
		phonemes := strings.Fields(parts[1])
		if word == "" || len(phonemes) == 0 {
			return nil, fmt.Errorf("g2p: dictionary line %d: empty word or phoneme list", lineNum)
		}
		dict[word] = phonemes
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("g2p: read dictionary: %w", err)
	}
	return dict, nil
}

// LoadDictionaryFile loads a dictionary file into the engine's custom
// dictionary.
func (e *Engine) LoadDictionaryFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("g2p: open dictionary: %w", err)
	}
	defer f.Close()

	dict, err := LoadDictionary(f)
	if err != nil {
		return err
	}
	e.AddDictionary(dict)
	return nil
}
