package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/rulesmith/internal/config"
	"github.com/klauern/rulesmith/internal/migrate"
	"github.com/klauern/rulesmith/internal/ui"
	"github.com/klauern/rulesmith/internal/util"
)

// buildFixture lays out a legacy rules tree with a flat-list manifest and
// returns a config pointing at it with absolute paths.
func buildFixture(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	rulesDir := filepath.Join(root, "rules")

	util.WriteFile(t, filepath.Join(rulesDir, "core", "core-style.md"), "Use consistent style.\n")
	util.WriteFile(t, filepath.Join(rulesDir, "workflow", "workflow-tdd.md"), "Write tests first.\n")
	util.WriteFile(t, filepath.Join(rulesDir, "extended", "testing-playwright.md"),
		"# Playwright\n\nDrive the browser for end-to-end tests.\n")
	util.WriteFile(t, filepath.Join(rulesDir, "config.yaml"), `commands:
  review:
    description: Code review
    rules:
      - core-style
      - workflow-tdd
`)

	cfg := config.Default()
	cfg.Rules.Dir = rulesDir
	cfg.Output.CommandsDir = filepath.Join(root, "out", "commands")
	cfg.Output.SkillsDir = filepath.Join(root, "out", "skills")
	cfg.Backup.Location = filepath.Join(root, "backups")
	return cfg
}

func TestBuilder_FullPipeline(t *testing.T) {
	cfg := buildFixture(t)

	b := builder{cfg: cfg, confirm: ui.StaticConfirmer{Answer: true}}
	if err := b.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	rulesDir := cfg.Rules.Dir

	// The legacy tree was reorganized before compilation.
	if migrate.Needed(rulesDir) {
		t.Error("rules tree still reports migration needed")
	}
	if _, err := os.Stat(filepath.Join(rulesDir, "standard", "core", "core-style.md")); err != nil {
		t.Errorf("core fragment not moved under standard/: %v", err)
	}

	// The manifest was rewritten to the grouped format, with the fragments
	// still resolving.
	manifestText := util.ReadFile(t, filepath.Join(rulesDir, "config.yaml"))
	if !strings.Contains(manifestText, "standard:") || !strings.Contains(manifestText, "custom: []") {
		t.Errorf("manifest not migrated:\n%s", manifestText)
	}

	command := util.ReadFile(t, filepath.Join(cfg.Output.CommandsDir, "review.md"))
	want := "---\ndescription: Code review\nmodel: sonnet\n---\nUse consistent style.\n\nWrite tests first.\n\n"
	if !strings.HasPrefix(command, want) {
		t.Errorf("command artifact = %q", command)
	}
	if !strings.Contains(command, "## Available Skills") {
		t.Errorf("command artifact missing skills index:\n%s", command)
	}

	skill := util.ReadFile(t, filepath.Join(cfg.Output.SkillsDir, "testing-playwright", "SKILL.md"))
	if skill != "# Playwright\n\nDrive the browser for end-to-end tests.\n" {
		t.Errorf("skill bundle = %q", skill)
	}

	// A full backup of the pre-migration tree exists.
	entries, err := os.ReadDir(cfg.Backup.Location)
	if err != nil {
		t.Fatalf("backups dir unreadable: %v", err)
	}
	if len(entries) < 2 { // one tree directory plus index.json
		t.Errorf("backups dir has %d entries, want tree + index", len(entries))
	}
}

func TestBuilder_MigrationDeclined(t *testing.T) {
	cfg := buildFixture(t)

	b := builder{cfg: cfg, confirm: ui.StaticConfirmer{Answer: false}}
	err := b.run()
	if !errors.Is(err, migrate.ErrDeclined) {
		t.Fatalf("run() error = %v, want ErrDeclined", err)
	}

	// Nothing was compiled or mutated.
	if _, err := os.Stat(cfg.Output.CommandsDir); !os.IsNotExist(err) {
		t.Error("commands dir created after declined migration")
	}
	if _, err := os.Stat(filepath.Join(cfg.Rules.Dir, "standard")); !os.IsNotExist(err) {
		t.Error("rules tree mutated after declined migration")
	}
}

func TestBuilder_MissingRulesRoot(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Dir = filepath.Join(t.TempDir(), "absent")

	b := builder{cfg: cfg, confirm: ui.StaticConfirmer{Answer: true}}
	if err := b.run(); err == nil {
		t.Fatal("run() succeeded with a missing rules root")
	}
}

func TestBuilder_DryRun(t *testing.T) {
	cfg := buildFixture(t)
	// Migrate first so dry-run exercises only compilation.
	m := &migrate.Migrator{
		RulesRoot:  cfg.Rules.Dir,
		BackupsDir: cfg.Backup.Location,
		Confirm:    ui.StaticConfirmer{Answer: true},
	}
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}

	b := builder{cfg: cfg, dryRun: true, confirm: ui.StaticConfirmer{Answer: true}}
	if err := b.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Output.CommandsDir, "review.md")); !os.IsNotExist(err) {
		t.Error("dry run wrote a command artifact")
	}
	if strings.Contains(util.ReadFile(t, filepath.Join(cfg.Rules.Dir, "config.yaml")), "standard:") {
		t.Error("dry run rewrote the manifest")
	}
	if _, err := os.Stat(cfg.Output.SkillsDir); err == nil {
		entries, _ := os.ReadDir(cfg.Output.SkillsDir)
		if len(entries) > 0 {
			t.Error("dry run wrote skill bundles")
		}
	}
}

func TestBuilder_Idempotent(t *testing.T) {
	cfg := buildFixture(t)

	b := builder{cfg: cfg, confirm: ui.StaticConfirmer{Answer: true}}
	if err := b.run(); err != nil {
		t.Fatalf("first run() error = %v", err)
	}
	first := util.ReadFile(t, filepath.Join(cfg.Output.CommandsDir, "review.md"))
	firstManifest := util.ReadFile(t, filepath.Join(cfg.Rules.Dir, "config.yaml"))

	if err := b.run(); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	second := util.ReadFile(t, filepath.Join(cfg.Output.CommandsDir, "review.md"))
	secondManifest := util.ReadFile(t, filepath.Join(cfg.Rules.Dir, "config.yaml"))

	if first != second {
		t.Error("command artifact changed between identical runs")
	}
	if firstManifest != secondManifest {
		t.Error("manifest changed between identical runs")
	}
}
