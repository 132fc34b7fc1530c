package config

import (
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
	"gopkg.in/yaml.v3"

	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
)

// applyKDL applies a .lgrep.kdl document:
//
//	version 1
//	search { encoding "utf-8"; max_line_bytes "64MB" }
//	walk { exclude "**/.git/**" "**/node_modules/**"; respect_gitignore true; }
//	output { color "never"; with_filename true }
func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		section := nodeName(n)
		if section == "version" {
			v, ok := firstArg(n)
			if !ok {
				return lgerrors.NewConfigError("version", "", fmt.Errorf("missing value"))
			}
			if err := setInt(&cfg.Version, v); err != nil {
				return lgerrors.NewConfigError("version", fmt.Sprint(v), err)
			}
			continue
		}
		if _, known := sections[section]; !known {
			return applyKey(cfg, section, "", nil)
		}
		for _, cn := range n.Children {
			if err := applyKey(cfg, section, nodeName(cn), nodeValue(cn)); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyTOML applies a .lgrep.toml document with one table per section
func applyTOML(cfg *Config, content []byte) error {
	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return applyMap(cfg, doc)
}

// applyYAML applies a .lgrep.yaml document with one mapping per section
func applyYAML(cfg *Config, content []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return applyMap(cfg, doc)
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstArg(n *document.Node) (any, bool) {
	if len(n.Arguments) == 0 {
		return nil, false
	}
	return n.Arguments[0].Value, true
}

// nodeValue flattens a node into a loose value: a single argument becomes a
// scalar, several arguments or a block of children become a []any
func nodeValue(n *document.Node) any {
	switch {
	case len(n.Arguments) == 1:
		return n.Arguments[0].Value
	case len(n.Arguments) > 1:
		out := make([]any, 0, len(n.Arguments))
		for _, a := range n.Arguments {
			out = append(out, a.Value)
		}
		return out
	case len(n.Children) > 0:
		// Block format like exclude { "pattern" }: the node name itself is the value
		out := make([]any, 0, len(n.Children))
		for _, child := range n.Children {
			if v, ok := firstArg(child); ok {
				out = append(out, v)
			} else if child.Name != nil {
				out = append(out, child.Name.Value)
			}
		}
		return out
	default:
		return nil
	}
}
