package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/rulesmith/internal/compile"
	"github.com/klauern/rulesmith/internal/config"
	"github.com/klauern/rulesmith/internal/manifest"
	"github.com/klauern/rulesmith/internal/migrate"
	"github.com/klauern/rulesmith/internal/rules"
	"github.com/klauern/rulesmith/internal/skills"
	"github.com/klauern/rulesmith/internal/ui"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Compile the manifest and rule fragments into command and skill artifacts",
		Description: `Compile every command declared in the manifest against the rule store,
   and emit one skill bundle per extended-category fragment.

   A legacy rules tree is migrated (with confirmation and a full backup)
   before anything is compiled. Unresolvable rule references are warnings:
   the artifact is still produced minus the missing blocks, and the build
   exits zero.`,
		Flags: append(pathFlags(),
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Report what would be generated without writing files",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Assume yes for the migration confirmation",
			},
		),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			b := builder{
				cfg:     cfg,
				dryRun:  cmd.Bool("dry-run"),
				confirm: newConfirmer(cmd.Bool("yes")),
			}
			return b.run()
		},
	}
}

// pathFlags are the overrides shared by build and migrate.
func pathFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "rules-dir",
			Usage: "Rules root directory (overrides configuration)",
		},
		&cli.StringFlag{
			Name:  "manifest",
			Usage: "Manifest document path (overrides configuration)",
		},
		&cli.StringFlag{
			Name:  "commands-dir",
			Usage: "Command artifact output directory (overrides configuration)",
		},
		&cli.StringFlag{
			Name:  "skills-dir",
			Usage: "Skill bundle output directory (overrides configuration)",
		},
	}
}

// loadConfig loads the effective configuration with CLI flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := cmd.String("rules-dir"); v != "" {
		cfg.Rules.Dir = v
	}
	if v := cmd.String("manifest"); v != "" {
		cfg.Rules.Manifest = v
	}
	if v := cmd.String("commands-dir"); v != "" {
		cfg.Output.CommandsDir = v
	}
	if v := cmd.String("skills-dir"); v != "" {
		cfg.Output.SkillsDir = v
	}
	return cfg, nil
}

// builder runs the full build pipeline: conditional migration, load, parse,
// compile.
type builder struct {
	cfg     *config.Config
	dryRun  bool
	confirm ui.Confirmer
}

func (b *builder) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	rulesDir := b.cfg.RulesDir(cwd)
	manifestPath := b.cfg.ManifestPath(cwd)

	// Migration runs once, before compilation. A dry run reports without
	// touching the tree or the manifest.
	if migrate.Needed(rulesDir) && b.dryRun {
		fmt.Println(ui.StatusWarning("dry run: rules tree needs migration, run build without --dry-run"))
	}
	if migrate.Needed(rulesDir) && !b.dryRun {
		m := &migrate.Migrator{
			RulesRoot:  rulesDir,
			BackupsDir: b.cfg.BackupLocation(cwd),
			Confirm:    b.confirm,
		}
		meta, err := m.Run()
		if err != nil {
			if errors.Is(err, migrate.ErrDeclined) {
				fmt.Println(ui.StatusError("migration declined"))
				fmt.Println(migrate.RecoverySteps(rulesDir))
			}
			return err
		}
		if meta != nil {
			fmt.Println(ui.StatusSuccess("migrated rules tree, backup at " + meta.BackupPath))
		}
	}
	if _, err := os.Stat(manifestPath); err == nil && !b.dryRun {
		if changed, err := manifest.MigrateFile(manifestPath); err != nil {
			return err
		} else if changed {
			fmt.Println(ui.StatusSuccess("migrated manifest to grouped rules format"))
		}
	}

	store, err := rules.Load(rulesDir)
	if err != nil {
		return err
	}

	specs, err := manifest.ParseFile(manifestPath, manifest.Options{
		DefaultModel: b.cfg.Compile.DefaultModel,
	})
	if err != nil {
		return err
	}

	descriptors := skills.Discover(store)

	compiler := &compile.Compiler{
		Store:       store,
		SkillsIndex: skills.RenderIndex(descriptors),
		CommandsDir: b.cfg.CommandsDir(cwd),
		DryRun:      b.dryRun,
	}
	res, err := compiler.CompileCommands(specs)
	if err != nil {
		return err
	}

	bundles, err := compile.CompileSkills(store, b.cfg.SkillsDir(cwd), b.dryRun)
	if err != nil {
		return err
	}

	if b.dryRun {
		fmt.Println(ui.StatusSuccess(fmt.Sprintf(
			"dry run: %d commands and %d skills would be generated", len(specs), len(descriptors))))
		return nil
	}

	summary := fmt.Sprintf("generated %d command(s) and %d skill bundle(s)", res.Generated, bundles)
	if res.Warnings > 0 {
		// Resolution warnings are advisory; the build still exits zero.
		fmt.Println(ui.StatusWarning(fmt.Sprintf("%s with %d unresolved rule reference(s)", summary, res.Warnings)))
		return nil
	}
	fmt.Println(ui.StatusSuccess(summary))
	return nil
}
