package reference_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/handspeak/handspeak-api/internal/domain"
	"github.com/handspeak/handspeak-api/internal/reference"
)

func TestLoader_LoadLetters(t *testing.T) {
	dir := setupTestContent(t)

	loader, err := reference.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	letters := loader.All()
	if len(letters) != 3 {
		t.Fatalf("All() = %d letters, want 3", len(letters))
	}
	// Alphabetical regardless of file layout.
	if letters[0].Letter != "A" || letters[1].Letter != "B" || letters[2].Letter != "C" {
		t.Errorf("All() order = %v, want [A B C]", letters)
	}
}

func TestLoader_Get(t *testing.T) {
	dir := setupTestContent(t)

	loader, err := reference.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	entry, err := loader.Get("a") // lookups are case-insensitive
	if err != nil {
		t.Fatalf("Get(a) error = %v", err)
	}
	if entry.Description == "" {
		t.Error("Letter.Description is empty")
	}
	if entry.ImageURL == "" {
		t.Error("Letter.ImageURL is empty")
	}
}

func TestLoader_Get_NotFound(t *testing.T) {
	dir := setupTestContent(t)

	loader, err := reference.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	_, err = loader.Get("Z")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(Z) error = %v, want ErrNotFound", err)
	}
}

func TestLoader_SkipsInvalidYAML(t *testing.T) {
	dir := setupTestContent(t)

	os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(": not yaml ["), 0o644)

	loader, err := reference.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.All()); got != 3 {
		t.Errorf("All() = %d letters, want 3 (invalid YAML should be skipped)", got)
	}
}

func TestLoader_EmptyDir(t *testing.T) {
	loader, err := reference.NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.All()); got != 0 {
		t.Errorf("All() = %d, want 0 for empty dir", got)
	}
}

func TestLoader_Reload(t *testing.T) {
	dir := setupTestContent(t)

	loader, err := reference.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	os.WriteFile(filepath.Join(dir, "d.yaml"), []byte(`
letter: D
description: "Index finger up, remaining fingers touch the thumb."
image_url: "/static/alphabet/d.png"
difficulty: easy
`), 0o644)

	if err := loader.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := len(loader.All()); got != 4 {
		t.Errorf("All() after Reload = %d letters, want 4", got)
	}
}

func setupTestContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	// One letter per file.
	os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(`
letter: A
description: "Closed fist, thumb resting against the side of the index finger."
image_url: "/static/alphabet/a.png"
difficulty: easy
`), 0o644)

	// Several letters in one file.
	os.WriteFile(filepath.Join(dir, "bc.yaml"), []byte(`
letters:
  - letter: b
    description: "Flat hand, fingers together, thumb folded across the palm."
    image_url: "/static/alphabet/b.png"
    difficulty: easy
  - letter: c
    description: "Hand curved into the shape of the letter C."
    image_url: "/static/alphabet/c.png"
    difficulty: easy
`), 0o644)

	return dir
}
