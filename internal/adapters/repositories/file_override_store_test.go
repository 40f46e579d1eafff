package repositories

import (
	"context"
	"os"
	"path/filepath"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"strings"
	"testing"
)

func TestFileOverrideStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileOverrideStore(filepath.Join(t.TempDir(), "none.json"))

	got, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestFileOverrideStoreSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "geocode_overrides.json")
	s := NewFileOverrideStore(path)
	ctx := context.Background()

	in := map[string]ports.Override{
		"calle gaitán 1": {
			Key:      "calle gaitán 1",
			Original: "Calle Gaitán 1",
			Coord:    domain.Coordinates{Lat: 37.8031, Lon: -5.1042},
		},
	}
	if err := s.SaveAll(ctx, in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "Gaitán") {
		t.Fatalf("expected unescaped address text, got %s", raw)
	}

	out, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	got, ok := out["calle gaitán 1"]
	if !ok || got.Coord != in["calle gaitán 1"].Coord || got.Original != "Calle Gaitán 1" {
		t.Fatalf("loaded = %+v ok=%v", got, ok)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected only the table file, found %d entries", len(entries))
	}
}

func TestFileOverrideStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileOverrideStore(path).LoadAll(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeOverridesNormalizesKeys(t *testing.T) {
	out, err := DecodeOverrides([]byte(`{"  Calle Real 3 ": {"lat": 37.8, "lon": -5.1}}`))
	if err != nil {
		t.Fatalf("DecodeOverrides: %v", err)
	}
	o, ok := out["calle real 3"]
	if !ok || o.Original != "Calle Real 3" {
		t.Fatalf("decoded = %+v", out)
	}
}
