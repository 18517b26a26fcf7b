// Package catalog loads the pattern catalog that drives artifact discovery:
// an ordered mapping of category -> subcategory -> glob patterns.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Reserved top-level keys that hold thresholds and exclusion lists rather
// than matchable patterns.
var reservedKeys = map[string]struct{}{
	"size_thresholds":   {},
	"system_exclusions": {},
}

//go:embed patterns.yaml
var defaultPatterns []byte

// Match identifies the catalog entry that matched a file name.
type Match struct {
	Category    string
	Subcategory string
	Pattern     string
}

// Label returns the "<category>.<subcategory>" identifier recorded on
// artifacts.
func (m Match) Label() string {
	return m.Category + "." + m.Subcategory
}

type subgroup struct {
	name     string
	patterns []string
}

type group struct {
	category string
	subs     []subgroup
}

// Catalog is the loaded pattern catalog. It preserves the document order of
// categories, subcategories and patterns, and is read-only after loading, so
// it may be shared across goroutines without locking.
type Catalog struct {
	groups []group
}

// Load reads a catalog from a YAML file. An empty path loads the embedded
// default patterns.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultPatterns)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a catalog from YAML, skipping the reserved metadata keys.
// Decoding goes through yaml.Node so the document order of categories is
// preserved; first-match semantics depend on it.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}

	if len(doc.Content) == 0 {
		return &Catalog{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse patterns: top level must be a mapping, got %s", nodeKind(root))
	}

	c := &Catalog{}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		value := root.Content[i+1]

		if _, reserved := reservedKeys[key.Value]; reserved {
			continue
		}

		g, err := parseGroup(key.Value, value)
		if err != nil {
			return nil, err
		}

		c.groups = append(c.groups, g)
	}

	return c, nil
}

func parseGroup(category string, node *yaml.Node) (group, error) {
	if node.Kind != yaml.MappingNode {
		return group{}, fmt.Errorf("parse patterns: category %q must map subcategories to pattern lists", category)
	}

	g := group{category: category}

	for i := 0; i+1 < len(node.Content); i += 2 {
		subKey := node.Content[i]
		subValue := node.Content[i+1]

		var patterns []string
		if err := subValue.Decode(&patterns); err != nil {
			return group{}, fmt.Errorf("parse patterns: %s.%s: %w", category, subKey.Value, err)
		}

		g.subs = append(g.subs, subgroup{name: subKey.Value, patterns: patterns})
	}

	return g, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "unknown"
	}
}

// Match tries every pattern in catalog order against the bare file name and
// returns the first hit. Matching is case-sensitive glob matching with the
// *, ? and [...] metacharacters. Malformed patterns never match.
func (c *Catalog) Match(name string) (Match, bool) {
	for _, g := range c.groups {
		for _, sub := range g.subs {
			for _, pattern := range sub.patterns {
				ok, err := filepath.Match(pattern, name)
				if err != nil {
					continue
				}

				if ok {
					return Match{Category: g.category, Subcategory: sub.name, Pattern: pattern}, true
				}
			}
		}
	}

	return Match{}, false
}

// Categories returns the number of matchable categories.
func (c *Catalog) Categories() int {
	return len(c.groups)
}

// PatternCount returns the total number of glob patterns across the catalog.
func (c *Catalog) PatternCount() int {
	n := 0
	for _, g := range c.groups {
		for _, sub := range g.subs {
			n += len(sub.patterns)
		}
	}

	return n
}
