package model

import "fmt"

// DefaultModel is the model assigned to commands that do not declare one.
const DefaultModel = "sonnet"

// CommandSpec is one manifest entry: a named command composed from an ordered
// list of rule ids. Duplicate rule ids are permitted and emitted in order.
type CommandSpec struct {
	Name         string
	Description  string
	Model        string
	InjectSkills bool
	RuleIDs      []string
}

// ValidateCommandName checks that a command name matches the manifest grammar:
// one or more lowercase letters, underscores, or hyphens.
func ValidateCommandName(name string) error {
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && r != '_' && r != '-' {
			return fmt.Errorf("command name contains invalid character %q: %q", r, name)
		}
	}
	return nil
}
