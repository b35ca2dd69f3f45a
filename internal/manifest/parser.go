// Package manifest parses the command manifest: a constrained, two-level
// YAML-like document mapping command names to ordered rule-id lists plus
// metadata. The grammar is deliberately restricted and author-controlled, so
// it is parsed with a small line-oriented state machine instead of a YAML
// library; no quoting or escaping is supported.
//
// The accepted grammar, roughly in EBNF (NL is a newline, REST is the rest of
// the line verbatim):
//
//	manifest   = { other-line } , "commands:" NL , { command } , { other-line } ;
//	command    = "  " name ":" NL , { field } ;
//	name       = ( "a"…"z" | "_" | "-" ) , { "a"…"z" | "_" | "-" } ;
//	field      = "    " ( scalar | rules ) ;
//	scalar     = ( "description" | "model" | "inject_skills" ) ": " REST NL ;
//	rules      = "rules:" NL , { group | item } ;
//	group      = "      " name ":" [ " []" ] NL ;
//	item       = indent , "- " rule-id NL ;            (* indent >= 6 spaces *)
//
// Group keys under rules: exist only in migrated manifests; they are
// transparent here, so both the legacy flat list and the migrated grouped
// list yield the same rule-id order. Unknown fields are ignored. Blank lines
// and comments may appear anywhere.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/klauern/rulesmith/internal/logging"
	"github.com/klauern/rulesmith/internal/model"
)

// ErrUnreadable is returned when the manifest document cannot be read.
var ErrUnreadable = errors.New("manifest unreadable")

// Options configures parsing.
type Options struct {
	// DefaultModel is assigned to commands without a model field.
	// Empty means model.DefaultModel.
	DefaultModel string
}

// Line classification for the state machine. One regex per grammar
// production; each captures the remainder of the line verbatim.
var (
	reSection = regexp.MustCompile(`^commands:\s*$`)
	reCommand = regexp.MustCompile(`^  ([a-z_-]+):\s*$`)
	reRules   = regexp.MustCompile(`^    rules:\s*$`)
	reScalar  = regexp.MustCompile(`^    ([a-z_]+): ?(.*)$`)
	reGroup   = regexp.MustCompile(`^\s{6,}([a-z_-]+):\s*(\[\]\s*)?$`)
	reItem    = regexp.MustCompile(`^\s{6,}- +(\S+)\s*$`)
	reTopKey  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*:`)
)

// state is the named state set of the parser.
type state int

const (
	// stateOutside is before (or after) the commands: section.
	stateOutside state = iota
	// stateCommands is inside the section, between command blocks.
	stateCommands
	// stateFields is inside a command block, expecting scalar fields.
	stateFields
	// stateRules is inside a rules: list.
	stateRules
)

// parser carries the single-pass state: the current command's buffers plus
// the position in the document. A new command key flushes the previous block,
// so no lookahead is required; the cost is the two fixed nesting levels the
// grammar describes.
type parser struct {
	opts  Options
	st    state
	cur   *model.CommandSpec
	specs []model.CommandSpec
	seen  map[string]bool
}

// Parse parses manifest text into command specs, preserving manifest order
// exactly. The grammar is total: malformed lines are ignored rather than
// rejected, so Parse never fails.
func Parse(data []byte, opts Options) []model.CommandSpec {
	p := &parser{opts: opts, seen: make(map[string]bool)}

	for _, line := range strings.Split(string(data), "\n") {
		p.feed(line)
	}
	p.flush()

	return p.specs
}

// ParseFile reads and parses a manifest document.
func ParseFile(path string, opts Options) ([]model.CommandSpec, error) {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	return Parse(data, opts), nil
}

// feed advances the state machine by one line.
func (p *parser) feed(line string) {
	if p.st == stateOutside {
		if reSection.MatchString(line) {
			p.st = stateCommands
		}
		return
	}

	// A new command key flushes the previous block in every inside state.
	if m := reCommand.FindStringSubmatch(line); m != nil {
		p.flush()
		p.cur = &model.CommandSpec{Name: m[1]}
		p.st = stateFields
		return
	}

	// An unindented key ends the commands section.
	if reTopKey.MatchString(line) {
		p.flush()
		p.st = stateOutside
		return
	}

	switch p.st {
	case stateFields:
		p.feedField(line)
	case stateRules:
		if m := reItem.FindStringSubmatch(line); m != nil {
			p.cur.RuleIDs = append(p.cur.RuleIDs, m[1])
			return
		}
		if reGroup.MatchString(line) {
			// Grouping keys from migrated manifests are transparent.
			return
		}
		if reRules.MatchString(line) || reScalar.MatchString(line) {
			p.st = stateFields
			p.feedField(line)
		}
		// Anything else (blanks, comments) stays in the list.
	case stateCommands, stateOutside:
		// Blanks and comments between blocks.
	}
}

// feedField handles a line at field indentation inside a command block.
func (p *parser) feedField(line string) {
	if reRules.MatchString(line) {
		p.st = stateRules
		return
	}

	m := reScalar.FindStringSubmatch(line)
	if m == nil {
		return
	}

	switch m[1] {
	case "description":
		p.cur.Description = m[2]
	case "model":
		p.cur.Model = m[2]
	case "inject_skills":
		p.cur.InjectSkills = parseBool(m[2])
	default:
		// Unknown fields are ignored.
	}
}

// flush completes the current command block, applying defaults.
func (p *parser) flush() {
	if p.cur == nil {
		return
	}

	if p.cur.Model == "" {
		if p.opts.DefaultModel != "" {
			p.cur.Model = p.opts.DefaultModel
		} else {
			p.cur.Model = model.DefaultModel
		}
	}

	if p.seen[p.cur.Name] {
		logging.Warn("duplicate command name in manifest, later artifact overwrites earlier",
			logging.Command(p.cur.Name),
		)
	}
	p.seen[p.cur.Name] = true

	p.specs = append(p.specs, *p.cur)
	p.cur = nil
}

// parseBool parses the inject_skills value. Anything unrecognized is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
