package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/klauern/rulesmith/internal/logging"
	"github.com/klauern/rulesmith/internal/util"
)

// StandardGroupKey is the synthetic grouping key inserted above migrated rule
// lists. Its presence anywhere under a rules block marks a manifest as
// already migrated.
const StandardGroupKey = "standard"

// CustomGroupKey is the synthetic empty secondary group appended after each
// migrated rule list.
const CustomGroupKey = "custom"

var (
	reMigrateMarker  = regexp.MustCompile(`(?m)^\s+standard:\s*$`)
	reMigrateCommand = regexp.MustCompile(`^  [a-z_-]+:\s*$`)
	reMigrateRules   = regexp.MustCompile(`^(\s+)rules:\s*$`)
	reMigrateItem    = regexp.MustCompile(`^\s*- `)
	reMigrateComment = regexp.MustCompile(`^\s*(#|$)`)
)

// Migrated reports whether manifest text already carries the post-migration
// grouping marker.
func Migrated(input string) bool {
	return reMigrateMarker.MatchString(input)
}

// Migrate rewrites the legacy flat rules lists into the grouped form:
//
//	rules:              rules:
//	  - core-style  →     standard:
//	  - core-tests          - core-style
//	                        - core-tests
//	                      custom: []
//
// It is a pure text-to-text transform: only the `- item` lines immediately
// following a rules: key are re-indented, and the two synthetic group lines
// are inserted. Every other line, comments included, passes through
// byte-for-byte. Migrating an already-migrated manifest returns the input
// unchanged.
func Migrate(input string) string {
	if Migrated(input) {
		return input
	}

	var (
		out           []string
		inCommands    bool
		commandActive bool
		inRules       bool
		rulesIndent   string
	)

	closeRules := func() {
		if inRules {
			out = append(out, rulesIndent+"  "+CustomGroupKey+": []")
			inRules = false
		}
	}

	for _, line := range strings.Split(input, "\n") {
		if !inCommands {
			out = append(out, line)
			if reSection.MatchString(line) {
				inCommands = true
			}
			continue
		}

		if reMigrateCommand.MatchString(line) {
			closeRules()
			commandActive = true
			out = append(out, line)
			continue
		}

		if commandActive && !inRules {
			if m := reMigrateRules.FindStringSubmatch(line); m != nil {
				out = append(out, line, m[1]+"  "+StandardGroupKey+":")
				inRules = true
				rulesIndent = m[1]
				continue
			}
		}

		if inRules {
			if reMigrateItem.MatchString(line) {
				out = append(out, "  "+line)
				continue
			}
			if reMigrateComment.MatchString(line) {
				out = append(out, line)
				continue
			}
			// Next key at any level ends the list.
			closeRules()
		}

		if reTopKey.MatchString(line) {
			inCommands = false
			commandActive = false
		}
		out = append(out, line)
	}

	if inRules {
		// Keep the synthetic group ahead of any trailing blank lines so the
		// document still ends with its original newline run.
		var tail []string
		for len(out) > 0 && out[len(out)-1] == "" {
			tail = append(tail, "")
			out = out[:len(out)-1]
		}
		closeRules()
		out = append(out, tail...)
	}
	return strings.Join(out, "\n")
}

// MigrateFile rewrites a manifest file in place if it has not been migrated
// yet. It returns true when the file was changed.
func MigrateFile(path string) (bool, error) {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	migrated := Migrate(string(data))
	if migrated == string(data) {
		return false, nil
	}

	if err := util.WriteFileAtomic(path, []byte(migrated), 0o644); err != nil {
		return false, fmt.Errorf("failed to rewrite manifest %q: %w", path, err)
	}

	logging.Info("migrated manifest to grouped rules format", logging.Path(path))
	return true, nil
}
