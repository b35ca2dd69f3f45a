package compile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/rulesmith/internal/logging"
	"github.com/klauern/rulesmith/internal/rules"
	"github.com/klauern/rulesmith/internal/util"
)

// SkillFileName is the canonical file inside each skill bundle directory.
const SkillFileName = "SKILL.md"

// CompileSkills writes one bundle directory per extended-category fragment:
// <skillsDir>/<fragment-id>/SKILL.md holding the fragment body verbatim.
// The mapping is lossless, byte-for-byte, with no content transformation.
func CompileSkills(store *rules.Store, skillsDir string, dryRun bool) (int, error) {
	fragments := store.Extended()
	if len(fragments) == 0 {
		logging.Debug("no extended fragments, skipping skill bundles")
		return 0, nil
	}

	written := 0
	for _, frag := range fragments {
		bundleDir := filepath.Join(skillsDir, frag.ID)
		path := filepath.Join(bundleDir, SkillFileName)

		if dryRun {
			logging.Info("would generate skill bundle",
				logging.Skill(frag.ID),
				logging.Path(path),
			)
			continue
		}

		if err := os.MkdirAll(bundleDir, 0o755); err != nil {
			return written, fmt.Errorf("failed to create skill bundle directory %q: %w", bundleDir, err)
		}
		if err := util.WriteFileAtomic(path, []byte(frag.Body), 0o644); err != nil {
			return written, fmt.Errorf("failed to write skill bundle %q: %w", path, err)
		}
		written++
		logging.Info("generated skill bundle",
			logging.Skill(frag.ID),
			logging.Path(path),
		)
	}

	return written, nil
}
