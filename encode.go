package fundval

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Funds persist as a JSONL file, one fund per line, human-readable and
// git-friendly. The sqlite store is the primary backend; the JSONL form is
// the import/export and fixture format.

// ReadFunds parses a JSONL stream of funds. filename is for error messages
// only.
func ReadFunds(filename string, r io.Reader) ([]Fund, error) {
	var funds []Fund
	seen := make(map[Id]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var f Fund
		if err := json.Unmarshal(line, &f); err != nil {
			return nil, fmt.Errorf("format error in %q on line %q: %w", filename, string(line), err)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("format error in %q: fund %d is already defined", filename, f.ID)
		}
		seen[f.ID] = true
		funds = append(funds, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %q: %w", filename, err)
	}
	return funds, nil
}

// WriteFunds writes funds as JSONL, ordered by id so that rewrites diff
// cleanly.
func WriteFunds(w io.Writer, funds []Fund) error {
	ordered := make([]Fund, len(funds))
	copy(ordered, funds)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, f := range ordered {
		line, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encoding fund %d: %w", f.ID, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// LoadFunds reads a JSONL fund file from disk.
func LoadFunds(path string) ([]Fund, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fund file: %w", err)
	}
	defer f.Close()
	return ReadFunds(path, f)
}

// SaveFunds writes the fund file atomically, via a sibling temp file.
func SaveFunds(path string, funds []Fund) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".funds-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp fund file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteFunds(tmp, funds); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
