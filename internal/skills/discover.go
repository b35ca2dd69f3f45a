// Package skills discovers skill descriptors from extended-category rule
// fragments and renders the grouped skills index.
package skills

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/rulesmith/internal/logging"
	"github.com/klauern/rulesmith/internal/model"
	"github.com/klauern/rulesmith/internal/rules"
)

// FallbackDescription is used when a fragment has no usable description line.
const FallbackDescription = "No description available"

// bucketPrefixes are the display groups, in rendering order. Fragments whose
// name matches none of them are still compiled into skill bundles; they are
// only excluded from the display grouping.
var bucketPrefixes = []string{"testing-", "global-", "backend-", "frontend-"}

var titleCaser = cases.Title(language.English)

// Bucket is one display group of the skills index.
type Bucket struct {
	// Prefix is the skill-name prefix that selects this group.
	Prefix string
	// Title is the rendered group heading, e.g. "Testing".
	Title string
	// Skills are the group members in discovery order.
	Skills []model.SkillDescriptor
}

// Discover returns one descriptor per extended-category fragment, sorted
// lexicographically by fragment id.
func Discover(store *rules.Store) []model.SkillDescriptor {
	fragments := store.Extended()
	descriptors := make([]model.SkillDescriptor, 0, len(fragments))

	for _, frag := range fragments {
		desc := Describe(frag.Body)
		descriptors = append(descriptors, model.SkillDescriptor{
			Name:        frag.ID,
			Description: desc,
		})
		logging.Debug("discovered skill", logging.Skill(frag.ID))
	}

	logging.Info("skill discovery complete", logging.Count(len(descriptors)))
	return descriptors
}

// Describe extracts a description from a fragment body: the first trimmed
// line that is non-empty and not a markdown heading. Falls back to a literal.
func Describe(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed
	}
	return FallbackDescription
}

// Group classifies descriptors into the display buckets. Empty buckets are
// omitted; descriptors matching no prefix are dropped from the grouping.
func Group(descriptors []model.SkillDescriptor) []Bucket {
	var buckets []Bucket
	for _, prefix := range bucketPrefixes {
		bucket := Bucket{
			Prefix: prefix,
			Title:  titleCaser.String(strings.TrimSuffix(prefix, "-")),
		}
		for _, d := range descriptors {
			if strings.HasPrefix(d.Name, prefix) {
				bucket.Skills = append(bucket.Skills, d)
			}
		}
		if len(bucket.Skills) > 0 {
			buckets = append(buckets, bucket)
		}
	}
	return buckets
}

// RenderIndex renders the skills index appended to commands that request
// skill injection. Returns the empty string when no skills were discovered,
// so callers can skip the section entirely.
func RenderIndex(descriptors []model.SkillDescriptor) string {
	if len(descriptors) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Available Skills\n")

	for _, bucket := range Group(descriptors) {
		b.WriteString("\n### " + bucket.Title + "\n")
		for _, d := range bucket.Skills {
			b.WriteString("- **" + d.Name + "**: " + d.Description + "\n")
		}
	}

	return b.String()
}
