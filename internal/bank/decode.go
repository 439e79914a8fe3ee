package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Decode reads a topic file: a JSON array of question objects.
func Decode(r io.Reader) ([]Question, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedBank)
	}
	var qs []Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBank, err)
	}
	return qs, nil
}

// ReadFile loads a bank from disk, picking the decoder by extension.
func ReadFile(path string) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(f, "")
	case ".json", "":
		return Decode(f)
	default:
		return nil, fmt.Errorf("unsupported bank format %q", filepath.Ext(path))
	}
}
