package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

var errUnknownKey = errors.New("unknown key")

// minSuggestionSimilarity is the Levenshtein similarity below which no
// "did you mean" hint is offered
const minSuggestionSimilarity = 0.5

// setter applies one decoded value. Values arrive as the loose types produced
// by the KDL, TOML and YAML decoders: string, bool, int, int64, float64, []any.
type setter func(cfg *Config, v any) error

// sections is the single source of truth for config keys across all formats
var sections = map[string]map[string]setter{
	"search": {
		"encoding": func(c *Config, v any) error { return setString(&c.Search.Encoding, v) },
		"max_line_bytes": func(c *Config, v any) error {
			n, err := asSize(v)
			if err == nil {
				c.Search.MaxLineBytes = int(n)
			}
			return err
		},
	},
	"walk": {
		"batch_size":        func(c *Config, v any) error { return setInt(&c.Walk.BatchSize, v) },
		"include":           func(c *Config, v any) error { return setStrings(&c.Walk.Include, v) },
		"exclude":           func(c *Config, v any) error { return setStrings(&c.Walk.Exclude, v) },
		"respect_gitignore": func(c *Config, v any) error { return setBool(&c.Walk.RespectGitignore, v) },
	},
	"output": {
		"color":         func(c *Config, v any) error { return setString(&c.Output.Color, v) },
		"with_filename": func(c *Config, v any) error { return setBool(&c.Output.WithFilename, v) },
		"spans":         func(c *Config, v any) error { return setBool(&c.Output.Spans, v) },
		"json":          func(c *Config, v any) error { return setBool(&c.Output.JSON, v) },
	},
	"log": {
		"file":         func(c *Config, v any) error { return setString(&c.Log.File, v) },
		"max_size_mb":  func(c *Config, v any) error { return setInt(&c.Log.MaxSizeMB, v) },
		"max_backups":  func(c *Config, v any) error { return setInt(&c.Log.MaxBackups, v) },
		"max_age_days": func(c *Config, v any) error { return setInt(&c.Log.MaxAgeDays, v) },
		"compress":     func(c *Config, v any) error { return setBool(&c.Log.Compress, v) },
	},
}

// applyKey routes one section.key value to its setter
func applyKey(cfg *Config, section, key string, v any) error {
	keys, ok := sections[section]
	if !ok {
		return lgerrors.NewConfigError(section, "", errUnknownKey).
			WithSuggestion(suggest(section, sectionNames()))
	}
	set, ok := keys[key]
	if !ok {
		return lgerrors.NewConfigError(section+"."+key, fmt.Sprint(v), errUnknownKey).
			WithSuggestion(suggest(key, keyNames(section)))
	}
	if err := set(cfg, v); err != nil {
		return lgerrors.NewConfigError(section+"."+key, fmt.Sprint(v), err)
	}
	return nil
}

// applyMap walks a decoded TOML/YAML document of the form {section: {key: value}}
func applyMap(cfg *Config, doc map[string]any) error {
	for _, section := range sortedKeys(doc) {
		if section == "version" {
			n, err := asInt(doc[section])
			if err != nil {
				return lgerrors.NewConfigError("version", fmt.Sprint(doc[section]), err)
			}
			cfg.Version = int(n)
			continue
		}
		body, ok := doc[section].(map[string]any)
		if !ok {
			if _, known := sections[section]; known {
				return lgerrors.NewConfigError(section, fmt.Sprint(doc[section]), errors.New("expected a table"))
			}
			return applyKey(cfg, section, "", nil)
		}
		for _, key := range sortedKeys(body) {
			if err := applyKey(cfg, section, key, body[key]); err != nil {
				return err
			}
		}
	}
	return nil
}

// suggest returns the candidate most similar to name, or "" if none is close
func suggest(name string, candidates []string) string {
	best, bestScore := "", float32(0)
	for _, c := range candidates {
		score, err := edlib.StringsSimilarity(name, c, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < minSuggestionSimilarity {
		return ""
	}
	return best
}

func sectionNames() []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func keyNames(section string) []string {
	names := make([]string, 0, len(sections[section]))
	for name := range sections[section] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setString(dst *string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	*dst = s
	return nil
}

func setInt(dst *int, v any) error {
	n, err := asInt(v)
	if err != nil {
		return err
	}
	*dst = int(n)
	return nil
}

func setBool(dst *bool, v any) error {
	switch b := v.(type) {
	case bool:
		*dst = b
	case string:
		*dst = parseBool(b)
	default:
		return fmt.Errorf("expected a boolean, got %T", v)
	}
	return nil
}

func setStrings(dst *[]string, v any) error {
	switch list := v.(type) {
	case string:
		*dst = []string{list}
	case []string:
		*dst = append([]string{}, list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("expected a list of strings, found %T", item)
			}
			out = append(out, s)
		}
		*dst = out
	default:
		return fmt.Errorf("expected a list of strings, got %T", v)
	}
	return nil
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

// asSize accepts plain integers or size strings like "512KB", "64MB"
func asSize(v any) (int64, error) {
	if s, ok := v.(string); ok {
		return parseSize(s)
	}
	return asInt(v)
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}
