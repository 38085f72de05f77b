// Package reference serves the ASL alphabet reference content: one entry per
// letter, loaded from a YAML content directory.
package reference

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/handspeak/handspeak-api/internal/domain"
)

// Letter is one alphabet reference entry.
type Letter struct {
	Letter      string `yaml:"letter" json:"letter"`
	Description string `yaml:"description" json:"description"`
	ImageURL    string `yaml:"image_url" json:"image_url"`
	Difficulty  string `yaml:"difficulty" json:"difficulty"`
}

// Loader loads and caches reference content from the filesystem.
type Loader struct {
	rootDir string
	mu      sync.RWMutex
	letters map[string]Letter
}

// NewLoader creates a reference loader and loads all content.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		letters: make(map[string]Letter),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading reference content: %w", err)
	}

	slog.Info("reference content loaded", "letters", len(l.letters))
	return l, nil
}

// Get returns the entry for a letter, case-insensitively.
func (l *Loader) Get(letter string) (Letter, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.letters[strings.ToUpper(letter)]
	if !ok {
		return Letter{}, domain.NotFound(domain.KindLetter, letter)
	}
	return entry, nil
}

// All returns every entry in alphabetical order.
func (l *Loader) All() []Letter {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Letter, 0, len(l.letters))
	for _, entry := range l.letters {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out
}

// Reload re-reads the content directory, replacing the cache.
func (l *Loader) Reload() error {
	l.mu.Lock()
	l.letters = make(map[string]Letter)
	l.mu.Unlock()
	return l.loadAll()
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return l.loadFile(path)
	})
}

// loadFile accepts either a single letter document or a file holding a list
// of letters under a top-level "letters" key.
func (l *Loader) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var multi struct {
		Letters []Letter `yaml:"letters"`
	}
	if err := yaml.Unmarshal(data, &multi); err == nil && len(multi.Letters) > 0 {
		for _, entry := range multi.Letters {
			l.store(entry)
		}
		return nil
	}

	var single Letter
	if err := yaml.Unmarshal(data, &single); err != nil {
		slog.Warn("skipping invalid reference YAML", "path", path, "error", err)
		return nil
	}
	l.store(single)
	return nil
}

func (l *Loader) store(entry Letter) {
	if entry.Letter == "" {
		return
	}
	entry.Letter = strings.ToUpper(entry.Letter)

	l.mu.Lock()
	l.letters[entry.Letter] = entry
	l.mu.Unlock()
}
