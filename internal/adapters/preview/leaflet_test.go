package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/satclip/satclip/internal/domain"
)

func testAOI() orb.Polygon {
	return orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
}

func TestRenderWritesDocument(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "preview.html")

	r := NewRenderer("https://tiles.example.com/data/v1", "secret-key")
	scenes := []domain.Scene{
		{ID: "scene-1", ItemType: "PSScene", Acquired: time.Now()},
		{ID: "scene-2", ItemType: "SkySatCollect", Acquired: time.Now()},
	}

	got, err := r.Render(testAOI(), scenes, out)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != out {
		t.Errorf("returned path = %q, want %q", got, out)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	doc := string(raw)

	for _, want := range []string{
		"leaflet@1.9.4",
		"PSScene/scene-1/{z}/{x}/{y}.png?api_key=secret-key",
		"SkySatCollect/scene-2/{z}/{x}/{y}.png?api_key=secret-key",
		"dashArray",
		"setView([1, 1]",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestRenderSkipsIncompleteScenes(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "preview.html")

	r := NewRenderer("https://tiles.example.com/data/v1", "k")
	scenes := []domain.Scene{
		{ID: "", ItemType: "PSScene"},
		{ID: "ok", ItemType: "PSScene"},
	}
	if _, err := r.Render(testAOI(), scenes, out); err != nil {
		t.Fatalf("Render: %v", err)
	}
	raw, _ := os.ReadFile(out)
	if n := strings.Count(string(raw), "api_key="); n != 1 {
		t.Errorf("expected 1 overlay, found %d", n)
	}
}

func TestRenderCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "deep", "map.html")

	r := NewRenderer("https://tiles.example.com/data/v1", "k")
	if _, err := r.Render(testAOI(), nil, out); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not created: %v", err)
	}
}
