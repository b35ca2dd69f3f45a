package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/rulesmith/internal/config"
	"github.com/klauern/rulesmith/internal/rules"
	"github.com/klauern/rulesmith/internal/skills"
	"github.com/klauern/rulesmith/internal/ui"
)

func skillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "List discovered skills grouped by display category",
		Flags: pathFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			store, err := rules.Load(cfg.RulesDir(cwd))
			if err != nil {
				return err
			}

			descriptors := skills.Discover(store)
			if len(descriptors) == 0 {
				fmt.Println("No skills discovered.")
				return nil
			}

			grouped := make(map[string]bool)
			for _, bucket := range skills.Group(descriptors) {
				fmt.Println(ui.Bold(bucket.Title))
				for _, d := range bucket.Skills {
					grouped[d.Name] = true
					fmt.Printf("  %s  %s\n", d.Name, ui.Dim(d.Description))
				}
			}

			var rest []string
			for _, d := range descriptors {
				if !grouped[d.Name] {
					rest = append(rest, d.Name)
				}
			}
			if len(rest) > 0 {
				fmt.Println(ui.Bold("Ungrouped"))
				for _, name := range rest {
					fmt.Printf("  %s\n", name)
				}
			}

			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the effective configuration",
		Flags: pathFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			fmt.Println("Effective paths:")
			fmt.Printf("  rules:    %s\n", cfg.RulesDir(cwd))
			fmt.Printf("  manifest: %s\n", cfg.ManifestPath(cwd))
			fmt.Printf("  commands: %s\n", cfg.CommandsDir(cwd))
			fmt.Printf("  skills:   %s\n", cfg.SkillsDir(cwd))
			fmt.Printf("  backups:  %s\n", cfg.BackupLocation(cwd))
			fmt.Printf("Default model: %s\n", cfg.Compile.DefaultModel)
			if config.Exists() {
				fmt.Printf("Config file: %s\n", config.FilePath())
			} else {
				fmt.Println("Config file: (none, using defaults)")
			}
			return nil
		},
	}
}
