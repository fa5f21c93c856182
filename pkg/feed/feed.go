package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Feed Serialization API
// =============================================================================

// Marshal converts a feed to indented JSON bytes.
func Marshal(f *Feed) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes JSON bytes to a feed.
func Unmarshal(data []byte) (*Feed, error) {
	return Read(bytes.NewReader(data))
}

// Write writes a feed as indented JSON to an io.Writer.
func Write(f *Feed, w io.Writer) error {
	out := *f
	if out.Version == 0 {
		out.Version = FormatVersion
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON feed from an io.Reader.
// The reader is deliberately tolerant: structural problems in the record
// set (dangling parents, duplicate ids, cycles) are not read errors; use
// [Lint] to surface them.
func Read(r io.Reader) (*Feed, error) {
	var f Feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if f.Version == 0 {
		f.Version = FormatVersion
	}
	return &f, nil
}

// WriteYAML writes a feed as YAML to an io.Writer.
func WriteYAML(f *Feed, w io.Writer) error {
	out := *f
	if out.Version == 0 {
		out.Version = FormatVersion
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a YAML feed from an io.Reader. Same tolerance as [Read].
func ReadYAML(r io.Reader) (*Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var f Feed
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if f.Version == 0 {
		f.Version = FormatVersion
	}
	return &f, nil
}

// WriteFile writes a feed to path, choosing YAML for .yaml/.yml
// extensions and JSON otherwise. The file is created with 0644 permissions.
func WriteFile(f *Feed, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if isYAMLPath(path) {
		return WriteYAML(f, out)
	}
	return Write(f, out)
}

// ReadFile reads a feed from path, choosing YAML for .yaml/.yml
// extensions and JSON otherwise.
func ReadFile(path string) (*Feed, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()
	if isYAMLPath(path) {
		return ReadYAML(in)
	}
	return Read(in)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// =============================================================================
// Id Assignment
// =============================================================================

// EnsureIDs assigns a fresh UUID to every record with an empty id and
// returns the number of ids assigned. Existing ids are never touched.
func (f *Feed) EnsureIDs() int {
	assigned := 0
	for i := range f.Records {
		if f.Records[i].ID == "" {
			f.Records[i].ID = uuid.New().String()
			assigned++
		}
	}
	return assigned
}
