package categorize

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type defaultsFile struct {
	Categories []Category `yaml:"categories"`
	Rules      []struct {
		Category string `yaml:"category"`
		Field    Field  `yaml:"field"`
		Pattern  string `yaml:"pattern"`
		Priority int    `yaml:"priority"`
	} `yaml:"rules"`
	Types []struct {
		Type     string   `yaml:"type"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"types"`
}

// Defaults holds the built-in categories, rules and type keywords shipped
// with the binary.
type Defaults struct {
	Categories []Category
	Rules      []Rule
	Types      []TypeKeywords
}

// TypeKeywords maps description keywords to a coarse transaction type label.
type TypeKeywords struct {
	Type     string
	Keywords []string
}

// builtinEpoch gives default rules a stable, ancient creation time so any
// learned or user rule wins recency ties against them.
var builtinEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// LoadDefaults parses the embedded rule set. The embedded file is part of
// the build, so a parse failure is a programming error.
func LoadDefaults() (Defaults, error) {
	var f defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &f); err != nil {
		return Defaults{}, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}

	d := Defaults{Categories: f.Categories}
	for i, r := range f.Rules {
		d.Rules = append(d.Rules, Rule{
			ID:         fmt.Sprintf("builtin-%03d", i),
			CategoryID: r.Category,
			Pattern:    r.Pattern,
			Field:      r.Field,
			Priority:   r.Priority,
			IsActive:   true,
			CreatedAt:  builtinEpoch,
		})
	}
	for _, t := range f.Types {
		d.Types = append(d.Types, TypeKeywords{Type: t.Type, Keywords: t.Keywords})
	}
	return d, nil
}
