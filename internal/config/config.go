package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/lgrep/internal/debug"
)

// Defaults used when neither a config file nor a flag sets a value
const (
	DefaultEncoding     = "utf-8"
	DefaultMaxLineBytes = 64 * 1024 * 1024
	DefaultBatchSize    = 256
	DefaultColorMode    = "auto"

	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Config file names probed in the search root, in priority order
var ConfigFileNames = []string{".lgrep.kdl", ".lgrep.toml", ".lgrep.yaml", ".lgrep.yml"}

type Config struct {
	Version int
	Search  Search
	Walk    Walk
	Output  Output
	Log     Log
}

type Search struct {
	Encoding     string // Source text encoding, an IANA/WHATWG name ("utf-8", "utf-16le", "latin1", ...)
	MaxLineBytes int    // Longest line accepted before the file is reported as unreadable
}

type Walk struct {
	BatchSize        int      // Directory entries read per listing call
	Include          []string // doublestar globs relative to the root; empty = everything
	Exclude          []string // doublestar globs relative to the root
	RespectGitignore bool     // Apply the root .gitignore during -r walks
}

type Output struct {
	Color        string // "auto", "always" or "never"
	WithFilename bool   // Prefix each record with its file path
	Spans        bool   // Append byte and character spans
	JSON         bool   // Emit newline-delimited JSON records
}

type Log struct {
	File       string // Debug log path; empty keeps debug output on stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Version: 1,
		Search: Search{
			Encoding:     DefaultEncoding,
			MaxLineBytes: DefaultMaxLineBytes,
		},
		Walk: Walk{
			BatchSize: DefaultBatchSize,
			Include:   []string{},
			Exclude:   []string{},
		},
		Output: Output{
			Color: DefaultColorMode,
		},
		Log: Log{
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}

// Load resolves the configuration for a search rooted at rootDir.
//
// When path is non-empty only that file is read. Otherwise the global
// ~/.lgrep.kdl (if any) is applied first, then the first project config found
// in rootDir. Project values override global ones; exclusions accumulate.
func Load(path, rootDir string) (*Config, error) {
	if path != "" {
		cfg, err := LoadFile(path, Default())
		if err != nil {
			return nil, err
		}
		return cfg, ValidateConfig(cfg)
	}

	cfg := Default()

	// Step 1: global base config
	if homeDir, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(homeDir, ".lgrep.kdl")
		if fileExists(global) {
			base, err := LoadFile(global, cfg)
			if err != nil {
				return nil, err
			}
			cfg = base
		}
	}

	// Step 2: project config from the search root (or cwd)
	searchDir := rootDir
	if searchDir == "" {
		searchDir = "."
	}
	if info, err := os.Stat(searchDir); err == nil && !info.IsDir() {
		searchDir = filepath.Dir(searchDir)
	}
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(searchDir, name)
		if !fileExists(candidate) {
			continue
		}
		project, err := LoadFile(candidate, cfg)
		if err != nil {
			return nil, err
		}
		cfg = mergeConfigs(cfg, project)
		break
	}

	return cfg, ValidateConfig(cfg)
}

// LoadFile reads one config file on top of base. The format is chosen by
// extension: .kdl, .toml, .yaml or .yml. base is not modified.
func LoadFile(path string, base *Config) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := base.Clone()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".kdl":
		err = applyKDL(cfg, string(content))
	case ".toml":
		err = applyTOML(cfg, content)
	case ".yaml", ".yml":
		err = applyYAML(cfg, content)
	default:
		return nil, fmt.Errorf("unsupported config format %q for %s", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	debug.LogConfig("loaded %s", path)
	return cfg, nil
}

// Clone returns a deep copy of c
func (c *Config) Clone() *Config {
	out := *c
	out.Walk.Include = append([]string{}, c.Walk.Include...)
	out.Walk.Exclude = append([]string{}, c.Walk.Exclude...)
	return &out
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := project.Clone()
	merged.Walk.Exclude = DeduplicatePatterns(append(append([]string{}, base.Walk.Exclude...), project.Walk.Exclude...))

	// Inclusions: project overrides base completely if specified
	if len(project.Walk.Include) == 0 && len(base.Walk.Include) > 0 {
		merged.Walk.Include = append([]string{}, base.Walk.Include...)
	}
	return merged
}

// DeduplicatePatterns removes repeated patterns, keeping first-seen order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
