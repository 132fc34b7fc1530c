package testhelpers

import (
	"github.com/standardbeagle/lgrep/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder().
//		WithExclusions("**/vendor").
//		WithIncludePatterns("**/*.txt").
//		Build()
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder starts from the defaults with colour disabled so
// output assertions are stable
func NewTestConfigBuilder() *TestConfigBuilder {
	cfg := config.Default()
	cfg.Output.Color = "never"
	return &TestConfigBuilder{cfg: cfg}
}

// WithExclusions adds exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.cfg.Walk.Exclude = append(b.cfg.Walk.Exclude, patterns...)
	return b
}

// WithIncludePatterns sets the include patterns (replaces existing ones)
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.cfg.Walk.Include = patterns
	return b
}

// WithGitignore turns on root .gitignore handling
func (b *TestConfigBuilder) WithGitignore() *TestConfigBuilder {
	b.cfg.Walk.RespectGitignore = true
	return b
}

// Build returns the config
func (b *TestConfigBuilder) Build() *config.Config {
	return b.cfg
}
