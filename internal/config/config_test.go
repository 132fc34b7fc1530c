package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// isolateHome points the home directory at an empty temp dir so a developer's
// ~/.lgrep.kdl cannot leak into tests
func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "utf-8", cfg.Search.Encoding)
	assert.Equal(t, DefaultMaxLineBytes, cfg.Search.MaxLineBytes)
	assert.Equal(t, DefaultBatchSize, cfg.Walk.BatchSize)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.False(t, cfg.Walk.RespectGitignore)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadFile_KDL(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".lgrep.kdl", `
version 1
search {
    encoding "utf-16le"
    max_line_bytes "1MB"
}
walk {
    batch_size 32
    include "**/*.go" "**/*.md"
    exclude {
        "**/.git/**"
        "**/vendor/**"
    }
    respect_gitignore true
}
output {
    color "never"
    with_filename true
    spans true
}
log {
    file "/tmp/lgrep.log"
    max_backups 5
    compress true
}
`)

	cfg, err := LoadFile(path, Default())
	require.NoError(t, err)

	assert.Equal(t, "utf-16le", cfg.Search.Encoding)
	assert.Equal(t, 1024*1024, cfg.Search.MaxLineBytes)
	assert.Equal(t, 32, cfg.Walk.BatchSize)
	assert.Equal(t, []string{"**/*.go", "**/*.md"}, cfg.Walk.Include)
	assert.Equal(t, []string{"**/.git/**", "**/vendor/**"}, cfg.Walk.Exclude)
	assert.True(t, cfg.Walk.RespectGitignore)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.True(t, cfg.Output.WithFilename)
	assert.True(t, cfg.Output.Spans)
	assert.False(t, cfg.Output.JSON)
	assert.Equal(t, "/tmp/lgrep.log", cfg.Log.File)
	assert.Equal(t, 5, cfg.Log.MaxBackups)
	assert.True(t, cfg.Log.Compress)
	assert.Equal(t, DefaultLogMaxSizeMB, cfg.Log.MaxSizeMB)
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".lgrep.toml", `
[search]
encoding = "latin1"
max_line_bytes = 4096

[walk]
exclude = ["**/target/**"]

[output]
json = true
`)

	cfg, err := LoadFile(path, Default())
	require.NoError(t, err)

	assert.Equal(t, "latin1", cfg.Search.Encoding)
	assert.Equal(t, 4096, cfg.Search.MaxLineBytes)
	assert.Equal(t, []string{"**/target/**"}, cfg.Walk.Exclude)
	assert.True(t, cfg.Output.JSON)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".lgrep.yaml", `
walk:
  batch_size: 8
  include:
    - "*.txt"
output:
  color: always
  with_filename: yes
`)

	cfg, err := LoadFile(path, Default())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Walk.BatchSize)
	assert.Equal(t, []string{"*.txt"}, cfg.Walk.Include)
	assert.Equal(t, "always", cfg.Output.Color)
	assert.True(t, cfg.Output.WithFilename)
}

func TestLoadFile_DoesNotMutateBase(t *testing.T) {
	base := Default()
	base.Walk.Exclude = []string{"**/a/**"}
	path := writeConfig(t, t.TempDir(), ".lgrep.kdl", "walk {\n exclude \"**/b/**\"\n}\n")

	cfg, err := LoadFile(path, base)
	require.NoError(t, err)

	assert.Equal(t, []string{"**/b/**"}, cfg.Walk.Exclude)
	assert.Equal(t, []string{"**/a/**"}, base.Walk.Exclude)
}

func TestLoadFile_UnknownKeySuggestion(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		field      string
		suggestion string
	}{
		{"kdl key", ".lgrep.kdl", "walk {\n exclud \"x\"\n}\n", "walk.exclud", "exclude"},
		{"kdl section", ".lgrep.kdl", "outptu {\n color \"never\"\n}\n", "outptu", "output"},
		{"toml key", ".lgrep.toml", "[search]\nencodng = \"utf-8\"\n", "search.encodng", "encoding"},
		{"yaml key", ".lgrep.yaml", "output:\n  colour: never\n", "output.colour", "color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.file, tt.content)

			_, err := LoadFile(path, Default())
			require.Error(t, err)

			var cfgErr *lgerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, tt.suggestion, cfgErr.Suggestion)
			assert.ErrorIs(t, err, errUnknownKey)
		})
	}
}

func TestLoadFile_TypeErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".lgrep.kdl", "walk {\n batch_size \"many\"\n}\n")

	_, err := LoadFile(path, Default())
	require.Error(t, err)
	assert.Equal(t, lgerrors.ErrorTypeConfig, lgerrors.KindOf(err))
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "lgrep.ini", "x=1")

	_, err := LoadFile(path, Default())
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	isolateHome(t)
	home, _ := os.UserHomeDir()
	writeConfig(t, home, ".lgrep.kdl", `
walk {
    exclude "**/global/**"
    include "*.go"
}
output {
    color "never"
}
`)

	root := t.TempDir()
	writeConfig(t, root, ".lgrep.toml", `
[walk]
exclude = ["**/project/**"]

[output]
color = "always"
`)

	cfg, err := Load("", root)
	require.NoError(t, err)

	assert.Equal(t, "always", cfg.Output.Color)
	assert.ElementsMatch(t, []string{"**/global/**", "**/project/**"}, cfg.Walk.Exclude)
	assert.Equal(t, []string{"*.go"}, cfg.Walk.Include)
}

func TestLoad_PriorityOrder(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeConfig(t, root, ".lgrep.kdl", "output {\n color \"never\"\n}\n")
	writeConfig(t, root, ".lgrep.yaml", "output:\n  color: always\n")

	cfg, err := Load("", root)
	require.NoError(t, err)
	assert.Equal(t, "never", cfg.Output.Color)
}

func TestLoad_RootIsFile(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	writeConfig(t, root, ".lgrep.yml", "output:\n  spans: true\n")
	file := writeConfig(t, root, "haystack.txt", "bla\n")

	cfg, err := Load("", file)
	require.NoError(t, err)
	assert.True(t, cfg.Output.Spans)
}

func TestLoad_ExplicitPath(t *testing.T) {
	isolateHome(t)
	path := writeConfig(t, t.TempDir(), "custom.kdl", "search {\n encoding \"shift_jis\"\n}\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "shift_jis", cfg.Search.Encoding)

	_, err = Load(filepath.Join(t.TempDir(), "missing.kdl"), "")
	assert.Error(t, err)
}

func TestLoad_NoConfigFiles(t *testing.T) {
	isolateHome(t)

	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDeduplicatePatterns(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, DeduplicatePatterns([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, DeduplicatePatterns(nil))
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"10":    10,
		"10B":   10,
		"2KB":   2048,
		"64MB":  64 * 1024 * 1024,
		"1gb":   1024 * 1024 * 1024,
		" 3 MB": 3 * 1024 * 1024,
	}
	for in, want := range tests {
		got, err := parseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}
