package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"strings"
)

// OverrideRecord is the on-disk shape of one override, keyed by the
// lower-cased address in the surrounding object.
type OverrideRecord struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Original string  `json:"original"`
}

// FileOverrideStore keeps the override table in one JSON file.
type FileOverrideStore struct {
	Path string
}

func NewFileOverrideStore(path string) *FileOverrideStore {
	return &FileOverrideStore{Path: path}
}

// LoadAll reads the whole table. A missing file is an empty table.
func (s *FileOverrideStore) LoadAll(ctx context.Context) (map[string]ports.Override, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]ports.Override{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load overrides: read %q: %w", s.Path, err)
	}

	out, err := DecodeOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %q: %w", s.Path, err)
	}
	return out, nil
}

// SaveAll rewrites the file through a temporary file and rename, so readers
// never see a partial table.
func (s *FileOverrideStore) SaveAll(ctx context.Context, overrides map[string]ports.Override) error {
	data, err := EncodeOverrides(overrides)
	if err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save overrides: create dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".overrides-*.json")
	if err != nil {
		return fmt.Errorf("save overrides: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save overrides: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save overrides: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("save overrides: rename into %q: %w", s.Path, err)
	}
	return nil
}

// DecodeOverrides parses the JSON override table.
func DecodeOverrides(data []byte) (map[string]ports.Override, error) {
	var raw map[string]OverrideRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}

	out := make(map[string]ports.Override, len(raw))
	for k, r := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			return nil, fmt.Errorf("decode overrides: empty address key")
		}
		original := r.Original
		if original == "" {
			original = strings.TrimSpace(k)
		}
		out[key] = ports.Override{
			Key:      key,
			Original: original,
			Coord:    domain.Coordinates{Lat: r.Lat, Lon: r.Lon},
		}
	}
	return out, nil
}

// EncodeOverrides renders the table as indented JSON without escaping
// non-ASCII address text.
func EncodeOverrides(overrides map[string]ports.Override) ([]byte, error) {
	raw := make(map[string]OverrideRecord, len(overrides))
	for k, o := range overrides {
		raw[k] = OverrideRecord{Lat: o.Coord.Lat, Lon: o.Coord.Lon, Original: o.Original}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return nil, fmt.Errorf("encode overrides: %w", err)
	}
	return buf.Bytes(), nil
}
