package compile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/rulesmith/internal/model"
	"github.com/klauern/rulesmith/internal/rules"
	"github.com/klauern/rulesmith/internal/skills"
	"github.com/klauern/rulesmith/internal/util"
)

func loadStore(t *testing.T, files map[string]string) *rules.Store {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		util.WriteFile(t, filepath.Join(root, path), content)
	}
	store, err := rules.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store
}

func TestRenderCommand(t *testing.T) {
	store := loadStore(t, map[string]string{
		"core/core-style.md": "Use consistent style.\n",
		"core/core-tests.md": "Write tests first.\n",
	})

	t.Run("header and bodies in manifest order", func(t *testing.T) {
		spec := model.CommandSpec{
			Name:        "review",
			Description: "Code review",
			Model:       "sonnet",
			RuleIDs:     []string{"core-style", "core-tests"},
		}

		got, missing := RenderCommand(spec, store, "")
		want := "---\n" +
			"description: Code review\n" +
			"model: sonnet\n" +
			"---\n" +
			"Use consistent style.\n\nWrite tests first.\n\n"
		if got != want {
			t.Errorf("RenderCommand() =\n%q\nwant:\n%q", got, want)
		}
		if len(missing) != 0 {
			t.Errorf("missing = %v, want none", missing)
		}
	})

	t.Run("unresolved id is skipped, not fatal", func(t *testing.T) {
		spec := model.CommandSpec{
			Name:    "review",
			Model:   "sonnet",
			RuleIDs: []string{"core-style", "no-such-rule", "core-tests"},
		}

		got, missing := RenderCommand(spec, store, "")
		want := "---\n" +
			"description: \n" +
			"model: sonnet\n" +
			"---\n" +
			"Use consistent style.\n\nWrite tests first.\n\n"
		if got != want {
			t.Errorf("RenderCommand() =\n%q\nwant:\n%q", got, want)
		}
		if len(missing) != 1 || missing[0] != "no-such-rule" {
			t.Errorf("missing = %v, want [no-such-rule]", missing)
		}
	})

	t.Run("skills section appended when requested", func(t *testing.T) {
		spec := model.CommandSpec{
			Name:         "review",
			Model:        "sonnet",
			InjectSkills: true,
			RuleIDs:      []string{"core-style"},
		}

		index := "## Available Skills\n\n### Testing\n- **testing-a**: A\n"
		got, _ := RenderCommand(spec, store, index)
		want := "---\n" +
			"description: \n" +
			"model: sonnet\n" +
			"---\n" +
			"Use consistent style.\n\n" + index
		if got != want {
			t.Errorf("RenderCommand() =\n%q\nwant:\n%q", got, want)
		}
	})

	t.Run("zero discovered skills suppresses the section", func(t *testing.T) {
		spec := model.CommandSpec{
			Name:         "review",
			Model:        "sonnet",
			InjectSkills: true,
			RuleIDs:      []string{"core-style"},
		}

		got, _ := RenderCommand(spec, store, "")
		want := "---\n" +
			"description: \n" +
			"model: sonnet\n" +
			"---\n" +
			"Use consistent style.\n\n"
		if got != want {
			t.Errorf("RenderCommand() =\n%q\nwant:\n%q", got, want)
		}
	})
}

func TestCompiler_CompileCommands(t *testing.T) {
	store := loadStore(t, map[string]string{
		"core/core-style.md": "Use consistent style.\n",
		"core/core-tests.md": "Write tests first.\n",
	})

	specs := []model.CommandSpec{
		{Name: "review", Description: "Code review", Model: "sonnet",
			RuleIDs: []string{"core-style", "core-tests"}},
		{Name: "partial", Description: "Partial", Model: "sonnet",
			RuleIDs: []string{"core-style", "missing-one", "core-tests"}},
	}

	outDir := filepath.Join(t.TempDir(), "commands")
	c := &Compiler{Store: store, CommandsDir: outDir}

	res, err := c.CompileCommands(specs)
	if err != nil {
		t.Fatalf("CompileCommands() error = %v", err)
	}
	if res.Generated != 2 {
		t.Errorf("Generated = %d, want 2", res.Generated)
	}
	if res.Warnings != 1 {
		t.Errorf("Warnings = %d, want 1", res.Warnings)
	}

	review := util.ReadFile(t, filepath.Join(outDir, "review.md"))
	want := "---\ndescription: Code review\nmodel: sonnet\n---\n" +
		"Use consistent style.\n\nWrite tests first.\n\n"
	if review != want {
		t.Errorf("review.md =\n%q\nwant:\n%q", review, want)
	}

	// The artifact with a missing rule still contains the other two bodies.
	partial := util.ReadFile(t, filepath.Join(outDir, "partial.md"))
	wantPartial := "---\ndescription: Partial\nmodel: sonnet\n---\n" +
		"Use consistent style.\n\nWrite tests first.\n\n"
	if partial != wantPartial {
		t.Errorf("partial.md =\n%q\nwant:\n%q", partial, wantPartial)
	}
}

func TestCompiler_Idempotent(t *testing.T) {
	store := loadStore(t, map[string]string{
		"core/core-style.md":       "Use consistent style.\n",
		"extended/testing-tdd.md":  "Write tests first.\n",
		"extended/global-notes.md": "Take notes.\n",
	})

	specs := []model.CommandSpec{
		{Name: "review", Description: "Code review", Model: "sonnet",
			InjectSkills: true, RuleIDs: []string{"core-style"}},
	}

	outDir := filepath.Join(t.TempDir(), "commands")
	index := skills.RenderIndex(skills.Discover(store))
	c := &Compiler{Store: store, SkillsIndex: index, CommandsDir: outDir}

	if _, err := c.CompileCommands(specs); err != nil {
		t.Fatalf("first CompileCommands() error = %v", err)
	}
	first := util.ReadFile(t, filepath.Join(outDir, "review.md"))

	if _, err := c.CompileCommands(specs); err != nil {
		t.Fatalf("second CompileCommands() error = %v", err)
	}
	second := util.ReadFile(t, filepath.Join(outDir, "review.md"))

	if first != second {
		t.Errorf("artifacts differ between runs:\nfirst:\n%q\nsecond:\n%q", first, second)
	}
}

func TestCompiler_DryRun(t *testing.T) {
	store := loadStore(t, map[string]string{
		"core/core-style.md": "Style.\n",
	})

	outDir := filepath.Join(t.TempDir(), "commands")
	c := &Compiler{Store: store, CommandsDir: outDir, DryRun: true}

	res, err := c.CompileCommands([]model.CommandSpec{
		{Name: "review", Model: "sonnet", RuleIDs: []string{"core-style"}},
	})
	if err != nil {
		t.Fatalf("CompileCommands() error = %v", err)
	}
	if res.Generated != 0 {
		t.Errorf("Generated = %d, want 0 in dry run", res.Generated)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("dry run created the output directory")
	}
}
