// Package migrate reorganizes a legacy rules tree into the tiered layout:
// shipped category directories move under standard/, and a custom/ override
// skeleton is created alongside. The whole tree is backed up before anything
// moves, so an interruption before the move step leaves the original intact.
package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/rulesmith/internal/backup"
	"github.com/klauern/rulesmith/internal/logging"
	"github.com/klauern/rulesmith/internal/model"
	"github.com/klauern/rulesmith/internal/rules"
	"github.com/klauern/rulesmith/internal/ui"
)

// ErrDeclined is returned when the operator answers no to the migration
// confirmation.
var ErrDeclined = errors.New("migration declined")

// PlaceholderFileName keeps empty override directories present in the tree.
const PlaceholderFileName = ".gitkeep"

// Needed reports whether the rules tree still uses the legacy flat layout:
// at least one legacy category directory exists at the root and standard/
// does not. Detection by absence makes repeated invocation a safe no-op once
// migrated.
func Needed(rulesRoot string) bool {
	if dirExists(filepath.Join(rulesRoot, rules.StandardDirName)) {
		return false
	}
	for _, cat := range model.LegacyCategories() {
		if dirExists(filepath.Join(rulesRoot, cat.String())) {
			return true
		}
	}
	return false
}

// Migrator performs the structural migration of one rules tree.
type Migrator struct {
	RulesRoot  string
	BackupsDir string
	// Confirm is the operator confirmation capability. Tests supply a stub;
	// the CLI wires an interactive implementation.
	Confirm ui.Confirmer
}

// Run migrates the rules tree. Strictly ordered: (1) full tree backup,
// (2) new directory skeleton with placeholders, (3) move legacy category
// directories under standard/. Returns the backup metadata, or nil when no
// migration was needed.
func (m *Migrator) Run() (*backup.Metadata, error) {
	if !Needed(m.RulesRoot) {
		logging.Debug("rules tree already migrated", logging.Path(m.RulesRoot))
		return nil, nil
	}

	prompt := fmt.Sprintf("Reorganize the rules tree at %s into the standard/custom layout?", m.RulesRoot)
	ok, err := m.Confirm.Confirm(prompt)
	if err != nil {
		return nil, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return nil, ErrDeclined
	}

	// Step 1: backup must complete before any mutation.
	meta, err := backup.CreateTreeBackup(m.RulesRoot, m.BackupsDir, "pre-migration rules tree")
	if err != nil {
		return nil, fmt.Errorf("backup failed, aborting migration: %w", err)
	}

	// Step 2: new skeleton.
	if err := m.createSkeleton(); err != nil {
		return meta, err
	}

	// Step 3: move legacy category directories.
	standardRoot := filepath.Join(m.RulesRoot, rules.StandardDirName)
	for _, cat := range model.LegacyCategories() {
		src := filepath.Join(m.RulesRoot, cat.String())
		if !dirExists(src) {
			continue
		}
		dest := filepath.Join(standardRoot, cat.String())
		if err := os.Rename(src, dest); err != nil {
			return meta, fmt.Errorf("failed to move %q to %q: %w", src, dest, err)
		}
		logging.Info("moved category directory",
			logging.Category(cat.String()),
			logging.Path(dest),
		)
	}

	logging.Info("rules tree migration complete", logging.Path(m.RulesRoot))
	return meta, nil
}

// createSkeleton creates standard/ and the custom override directories, each
// holding a placeholder file so empty directories survive in version control.
func (m *Migrator) createSkeleton() error {
	if err := os.MkdirAll(filepath.Join(m.RulesRoot, rules.StandardDirName), 0o755); err != nil {
		return fmt.Errorf("failed to create standard directory: %w", err)
	}

	for _, cat := range model.LegacyCategories() {
		dir := filepath.Join(m.RulesRoot, rules.CustomDirName, cat.String())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create override directory %q: %w", dir, err)
		}
		placeholder := filepath.Join(dir, PlaceholderFileName)
		if err := os.WriteFile(placeholder, nil, 0o644); err != nil {
			return fmt.Errorf("failed to create placeholder %q: %w", placeholder, err)
		}
	}

	return nil
}

// RecoverySteps describes how to perform the migration by hand. It is
// printed when the operator declines.
func RecoverySteps(rulesRoot string) string {
	standardRoot := filepath.Join(rulesRoot, rules.StandardDirName)
	return fmt.Sprintf(`Migration was not performed. To migrate manually:
  1. Copy %[1]s somewhere safe.
  2. mkdir -p %[2]s
  3. Move each of core/, workflow/, extended/ from %[1]s into %[2]s
  4. mkdir -p %[3]s/{core,workflow,extended} for custom overrides
Re-run the build once the tree is reorganized.`,
		rulesRoot, standardRoot, filepath.Join(rulesRoot, rules.CustomDirName))
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
