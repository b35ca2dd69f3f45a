package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/klauern/rulesmith/internal/backup"
	"github.com/klauern/rulesmith/internal/manifest"
	"github.com/klauern/rulesmith/internal/migrate"
	"github.com/klauern/rulesmith/internal/ui"
	"github.com/klauern/rulesmith/internal/ui/tui"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Reorganize a legacy rules tree and manifest without compiling",
		Flags: append(pathFlags(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Assume yes for the confirmation prompt",
			},
			&cli.BoolFlag{
				Name:  "list-backups",
				Usage: "List recorded rules-tree backups and exit",
			},
		),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			if cmd.Bool("list-backups") {
				return listBackups(cfg.BackupLocation(cwd))
			}

			rulesDir := cfg.RulesDir(cwd)
			if !migrate.Needed(rulesDir) {
				fmt.Println(ui.StatusSuccess("rules tree already uses the standard/custom layout"))
			} else {
				m := &migrate.Migrator{
					RulesRoot:  rulesDir,
					BackupsDir: cfg.BackupLocation(cwd),
					Confirm:    newConfirmer(cmd.Bool("yes")),
				}
				meta, err := m.Run()
				if err != nil {
					if errors.Is(err, migrate.ErrDeclined) {
						fmt.Println(ui.StatusError("migration declined"))
						fmt.Println(migrate.RecoverySteps(rulesDir))
					}
					return err
				}
				fmt.Println(ui.StatusSuccess("migrated rules tree, backup at " + meta.BackupPath))
			}

			manifestPath := cfg.ManifestPath(cwd)
			if _, err := os.Stat(manifestPath); err == nil {
				changed, err := manifest.MigrateFile(manifestPath)
				if err != nil {
					return err
				}
				if changed {
					fmt.Println(ui.StatusSuccess("migrated manifest to grouped rules format"))
				} else {
					fmt.Println(ui.StatusSuccess("manifest already migrated"))
				}
			}

			return nil
		},
	}
}

// newConfirmer picks the confirmation implementation: auto-accept for --yes,
// the interactive TUI on a terminal, a plain reader loop otherwise.
func newConfirmer(assumeYes bool) ui.Confirmer {
	if assumeYes {
		return ui.StaticConfirmer{Answer: true}
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return tui.Confirmer{Detail: "A full backup is created before anything moves."}
	}
	return ui.NewReaderConfirmer(os.Stdin, os.Stdout)
}

func listBackups(backupsRoot string) error {
	backups, err := backup.List(backupsRoot)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups recorded.")
		return nil
	}

	fmt.Printf("%-17s %-7s %-10s %s\n", "ID", "FILES", "SIZE", "SOURCE")
	for _, m := range backups {
		fmt.Printf("%-17s %-7d %-10d %s\n", m.ID, m.Files, m.Size, m.SourcePath)
	}
	return nil
}
