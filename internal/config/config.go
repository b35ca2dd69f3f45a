// Package config provides configuration management for rulesmith.
// It supports YAML or TOML configuration files, environment variables, and
// sensible defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/klauern/rulesmith/internal/util"
)

// Config represents the complete rulesmith configuration.
type Config struct {
	// Rules configures where rule fragments and the manifest live
	Rules RulesConfig `yaml:"rules" toml:"rules"`

	// Output configures the generated artifact trees
	Output OutputConfig `yaml:"output" toml:"output"`

	// Compile configures generation behavior
	Compile CompileConfig `yaml:"compile" toml:"compile"`

	// Backup configures migration backup behavior
	Backup BackupConfig `yaml:"backup" toml:"backup"`
}

// RulesConfig holds rule-tree settings.
type RulesConfig struct {
	// Dir is the rules root. Relative paths resolve from the working directory.
	Dir string `yaml:"dir" toml:"dir"`
	// Manifest is the manifest document path. Empty means <dir>/config.yaml.
	Manifest string `yaml:"manifest,omitempty" toml:"manifest,omitempty"`
}

// OutputConfig holds artifact destination settings.
type OutputConfig struct {
	// CommandsDir receives one <name>.md per manifest command
	CommandsDir string `yaml:"commands_dir" toml:"commands_dir"`
	// SkillsDir receives one bundle directory per extended fragment
	SkillsDir string `yaml:"skills_dir" toml:"skills_dir"`
}

// CompileConfig holds generation settings.
type CompileConfig struct {
	// DefaultModel is assigned to commands that do not declare a model
	DefaultModel string `yaml:"default_model" toml:"default_model"`
}

// BackupConfig holds migration backup settings.
type BackupConfig struct {
	// Location is the backup directory. Empty means the default under the
	// rulesmith config directory.
	Location string `yaml:"location,omitempty" toml:"location,omitempty"`
	// MaxBackups is the maximum number of tree backups to keep
	MaxBackups int `yaml:"max_backups" toml:"max_backups"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Rules: RulesConfig{
			Dir: filepath.Join(".claude", "rules"),
		},
		Output: OutputConfig{
			CommandsDir: filepath.Join(".claude", "commands"),
			SkillsDir:   filepath.Join(".claude", "skills"),
		},
		Compile: CompileConfig{
			DefaultModel: "sonnet",
		},
		Backup: BackupConfig{
			Location:   util.BackupsDir(),
			MaxBackups: 10,
		},
	}
}

const (
	yamlFileName = "config.yaml"
	tomlFileName = "config.toml"
)

// FilePath returns the path to the YAML config file.
func FilePath() string {
	return filepath.Join(util.ConfigDir(), yamlFileName)
}

// Load loads the configuration, merging file contents over defaults.
// config.yaml is tried first, then config.toml. A missing file is not an
// error; defaults plus environment overrides are returned.
func Load() (*Config, error) {
	cfg := Default()

	yamlPath := FilePath()
	// #nosec G304 - path is constructed from the trusted config directory
	data, err := os.ReadFile(yamlPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		tomlPath := filepath.Join(util.ConfigDir(), tomlFileName)
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	default:
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. The format is chosen
// by extension: .toml decodes as TOML, anything else as YAML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if filepath.Ext(path) == ".toml" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		// #nosec G304 - path is provided by caller
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the YAML config file.
func (c *Config) Save() error {
	configPath := FilePath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(configPath, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Variables follow the pattern RULESMITH_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("RULESMITH_RULES_DIR"); v != "" {
		c.Rules.Dir = v
	}
	if v := os.Getenv("RULESMITH_RULES_MANIFEST"); v != "" {
		c.Rules.Manifest = v
	}
	if v := os.Getenv("RULESMITH_OUTPUT_COMMANDS_DIR"); v != "" {
		c.Output.CommandsDir = v
	}
	if v := os.Getenv("RULESMITH_OUTPUT_SKILLS_DIR"); v != "" {
		c.Output.SkillsDir = v
	}
	if v := os.Getenv("RULESMITH_COMPILE_DEFAULT_MODEL"); v != "" {
		c.Compile.DefaultModel = v
	}
	if v := os.Getenv("RULESMITH_BACKUP_LOCATION"); v != "" {
		c.Backup.Location = v
	}
}

// RulesDir returns the rules root with ~ and relative paths expanded.
func (c *Config) RulesDir(baseDir string) string {
	return util.ExpandPath(c.Rules.Dir, baseDir)
}

// ManifestPath returns the manifest path, defaulting to config.yaml inside
// the rules root.
func (c *Config) ManifestPath(baseDir string) string {
	if c.Rules.Manifest != "" {
		return util.ExpandPath(c.Rules.Manifest, baseDir)
	}
	return filepath.Join(c.RulesDir(baseDir), "config.yaml")
}

// CommandsDir returns the commands output directory, expanded.
func (c *Config) CommandsDir(baseDir string) string {
	return util.ExpandPath(c.Output.CommandsDir, baseDir)
}

// SkillsDir returns the skills output directory, expanded.
func (c *Config) SkillsDir(baseDir string) string {
	return util.ExpandPath(c.Output.SkillsDir, baseDir)
}

// BackupLocation returns the backup directory, expanded.
func (c *Config) BackupLocation(baseDir string) string {
	if c.Backup.Location == "" {
		return util.BackupsDir()
	}
	return util.ExpandPath(c.Backup.Location, baseDir)
}

// Exists returns true if a config file exists.
func Exists() bool {
	if _, err := os.Stat(FilePath()); err == nil {
		return true
	}
	_, err := os.Stat(filepath.Join(util.ConfigDir(), tomlFileName))
	return err == nil
}
