// Package compile generates command artifacts and skill bundles from a loaded
// rule store. Generation is idempotent: no timestamps or other run-varying
// data are embedded, so unchanged inputs produce byte-identical artifacts.
package compile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauern/rulesmith/internal/logging"
	"github.com/klauern/rulesmith/internal/model"
	"github.com/klauern/rulesmith/internal/rules"
	"github.com/klauern/rulesmith/internal/util"
)

// HeaderDelimiter wraps the description/model header of command artifacts.
const HeaderDelimiter = "---"

// Compiler writes command artifacts into CommandsDir.
type Compiler struct {
	Store *rules.Store
	// SkillsIndex is the pre-rendered skills section appended to commands
	// that request injection. Empty disables injection entirely.
	SkillsIndex string
	CommandsDir string
	// DryRun reports what would be generated without writing anything.
	DryRun bool
}

// Result summarizes a compilation pass.
type Result struct {
	// Generated counts written artifacts.
	Generated int
	// Warnings counts unresolved rule references. Warnings never fail the
	// pass; the affected artifact is still produced minus those blocks.
	Warnings int
}

// CompileCommands generates one artifact per spec, in manifest order.
func (c *Compiler) CompileCommands(specs []model.CommandSpec) (Result, error) {
	var res Result

	if !c.DryRun {
		if err := os.MkdirAll(c.CommandsDir, 0o755); err != nil {
			return res, fmt.Errorf("failed to create commands directory %q: %w", c.CommandsDir, err)
		}
	}

	for _, spec := range specs {
		content, missing := RenderCommand(spec, c.Store, c.SkillsIndex)
		for _, id := range missing {
			logging.Warn("rule not found, omitting block",
				logging.Command(spec.Name),
				logging.Rule(id),
			)
		}
		res.Warnings += len(missing)

		path := filepath.Join(c.CommandsDir, spec.Name+".md")
		if c.DryRun {
			logging.Info("would generate command artifact",
				logging.Command(spec.Name),
				logging.Path(path),
			)
			continue
		}

		if err := util.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
			return res, fmt.Errorf("failed to write command artifact %q: %w", path, err)
		}
		res.Generated++
		logging.Info("generated command artifact",
			logging.Command(spec.Name),
			logging.Path(path),
			logging.Count(len(spec.RuleIDs)-len(missing)),
		)
	}

	return res, nil
}

// RenderCommand composes one command artifact: the delimited header, then
// each resolved rule body followed by a blank-line separator, then the skills
// section when requested. Unresolvable rule ids are returned rather than
// failing; their blocks are simply absent.
func RenderCommand(spec model.CommandSpec, store *rules.Store, skillsIndex string) (string, []string) {
	var b strings.Builder
	var missing []string

	b.WriteString(HeaderDelimiter + "\n")
	b.WriteString("description: " + spec.Description + "\n")
	b.WriteString("model: " + spec.Model + "\n")
	b.WriteString(HeaderDelimiter + "\n")

	for _, id := range spec.RuleIDs {
		frag, ok := store.Get(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		b.WriteString(strings.TrimRight(frag.Body, "\n"))
		b.WriteString("\n\n")
	}

	if spec.InjectSkills && skillsIndex != "" {
		b.WriteString(skillsIndex)
	}

	return b.String(), missing
}
