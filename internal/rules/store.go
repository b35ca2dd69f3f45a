// Package rules loads markdown rule fragments from category directories into
// an id-indexed store. Fragment bodies are opaque text blobs; nothing here
// validates or interprets their content.
package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauern/rulesmith/internal/logging"
	"github.com/klauern/rulesmith/internal/model"
)

// ErrRootMissing is returned when the rules root directory does not exist.
// It is the only fatal load failure; missing category directories simply
// contribute zero fragments.
var ErrRootMissing = errors.New("rules root not found")

// StandardDirName is the post-migration parent directory for shipped tiers.
const StandardDirName = "standard"

// CustomDirName is the user override tier directory.
const CustomDirName = "custom"

// Store holds all loaded rule fragments indexed by id.
type Store struct {
	fragments map[string]model.RuleFragment
	// order preserves first-load order for deterministic iteration
	order []string
}

// Load reads every fragment under the category roots of rulesRoot.
//
// Shipped tiers load in order core, workflow, extended, either directly under
// the root (legacy layout) or under standard/ (migrated layout). On a
// duplicate id the first-loaded fragment wins and a warning is logged. The
// custom/ tier loads last: custom/<category>/*.md overrides the same id in
// the shipped tiers, and custom/*.md adds uncategorized custom fragments.
func Load(rulesRoot string) (*Store, error) {
	info, err := os.Stat(rulesRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootMissing, rulesRoot)
		}
		return nil, fmt.Errorf("failed to stat rules root %q: %w", rulesRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootMissing, rulesRoot)
	}

	s := &Store{fragments: make(map[string]model.RuleFragment)}

	categoryRoot := rulesRoot
	if dirExists(filepath.Join(rulesRoot, StandardDirName)) {
		categoryRoot = filepath.Join(rulesRoot, StandardDirName)
	}

	for _, cat := range model.LegacyCategories() {
		dir := filepath.Join(categoryRoot, cat.String())
		if err := s.loadCategory(dir, cat, false); err != nil {
			return nil, err
		}
	}

	customRoot := filepath.Join(rulesRoot, CustomDirName)
	for _, cat := range model.LegacyCategories() {
		dir := filepath.Join(customRoot, cat.String())
		if err := s.loadCategory(dir, cat, true); err != nil {
			return nil, err
		}
	}
	if err := s.loadCategory(customRoot, model.CategoryCustom, true); err != nil {
		return nil, err
	}

	logging.Info("loaded rule fragments",
		logging.Path(rulesRoot),
		logging.Count(len(s.fragments)),
	)

	return s, nil
}

// loadCategory loads every *.md file in dir. A missing directory contributes
// zero fragments. override controls duplicate-id behavior: custom-tier
// fragments replace shipped ones, shipped tiers are first-wins.
func (s *Store) loadCategory(dir string, cat model.Category, override bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("category directory not found",
				logging.Category(cat.String()),
				logging.Path(dir),
			)
			return nil
		}
		return fmt.Errorf("failed to read category directory %q: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		// #nosec G304 - path is discovered under the configured rules root
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read fragment %q: %w", path, err)
		}

		id := strings.TrimSuffix(entry.Name(), ".md")
		frag := model.RuleFragment{
			ID:       id,
			Category: cat,
			Body:     string(body),
			Path:     path,
		}

		if existing, ok := s.fragments[id]; ok {
			if !override {
				logging.Warn("duplicate rule id, keeping first",
					logging.Rule(id),
					logging.Category(existing.Category.String()),
					logging.Path(path),
				)
				continue
			}
			logging.Info("custom fragment overrides shipped rule",
				logging.Rule(id),
				logging.Path(path),
			)
			s.fragments[id] = frag
			continue
		}

		s.fragments[id] = frag
		s.order = append(s.order, id)
		logging.Debug("loaded rule fragment",
			logging.Rule(id),
			logging.Category(cat.String()),
		)
	}

	return nil
}

// Get returns the fragment for id, if present.
func (s *Store) Get(id string) (model.RuleFragment, bool) {
	frag, ok := s.fragments[id]
	return frag, ok
}

// Len returns the number of loaded fragments.
func (s *Store) Len() int {
	return len(s.fragments)
}

// Extended returns all extended-category fragments sorted lexicographically
// by id, for deterministic skill output.
func (s *Store) Extended() []model.RuleFragment {
	var out []model.RuleFragment
	for _, id := range s.order {
		frag := s.fragments[id]
		if frag.Category == model.CategoryExtended {
			out = append(out, frag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns every loaded fragment id in first-load order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
