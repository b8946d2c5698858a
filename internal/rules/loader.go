package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	codexerrors "codex/internal/errors"
)

// inlineSuppression vetoes any line carrying the inline ignore marker.
// It is appended to every compiled rule's exclusions.
var inlineSuppression = regexp.MustCompile(`codex:ignore`)

// LoadOptions configures rule loading.
type LoadOptions struct {
	// Priorities filters the loaded set; empty means all priorities
	Priorities PrioritySet
	// Packs are external rule files (.toml or .yaml/.yml) merged over the
	// builtin table; a pack rule with a builtin name replaces the builtin
	Packs []string
}

// packFile is the on-disk shape of an external rule pack.
type packFile struct {
	Rules []Def `toml:"rules" yaml:"rules"`
}

// Load compiles the builtin table plus any configured packs into an
// ordered Set. Loading is deterministic: rules are ordered by priority
// rank (MANDATORY first), then category name, then declaration order.
//
// A malformed definition (missing name, unknown priority, no triggers,
// invalid regex, duplicate name) aborts the whole load; Load never
// returns a partially correct set.
func Load(opts LoadOptions) (*Set, error) {
	defs := make([]Def, len(Builtin))
	copy(defs, Builtin)

	for _, pack := range opts.Packs {
		packDefs, err := readPack(pack)
		if err != nil {
			return nil, err
		}
		defs = mergeDefs(defs, packDefs)
	}

	byName := make(map[string]*Rule, len(defs))
	ordered := make([]*Rule, 0, len(defs))
	seen := make(map[string]bool, len(defs))

	for i, def := range defs {
		rule, err := compile(def, i)
		if err != nil {
			return nil, err
		}
		// Checked against every definition, not just the ones that
		// survive the priority filter below
		if seen[rule.Name] {
			return nil, codexerrors.New(codexerrors.ConfigInvalid,
				fmt.Sprintf("duplicate rule name %q", rule.Name), nil)
		}
		seen[rule.Name] = true
		if len(opts.Priorities) > 0 && !opts.Priorities[rule.Priority] {
			continue
		}
		byName[rule.Name] = rule
		ordered = append(ordered, rule)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Priority.Weight() != b.Priority.Weight() {
			return a.Priority.Weight() > b.Priority.Weight()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.declOrder < b.declOrder
	})

	return &Set{ordered: ordered, byName: byName}, nil
}

// compile validates a definition and compiles its patterns.
func compile(def Def, declOrder int) (*Rule, error) {
	if strings.TrimSpace(def.Name) == "" {
		return nil, codexerrors.New(codexerrors.ConfigInvalid,
			fmt.Sprintf("rule at position %d has no name", declOrder), nil)
	}
	if !def.Priority.Valid() {
		return nil, codexerrors.New(codexerrors.ConfigInvalid,
			fmt.Sprintf("rule %q has unknown priority %q", def.Name, def.Priority), nil)
	}
	if len(def.Detection.Triggers) == 0 {
		return nil, codexerrors.New(codexerrors.ConfigInvalid,
			fmt.Sprintf("rule %q has no trigger patterns", def.Name), nil)
	}

	triggers, err := compilePatterns(def.Name, "trigger", def.Detection.Triggers)
	if err != nil {
		return nil, err
	}
	exclusions, err := compilePatterns(def.Name, "exclusion", def.Detection.Exclusions)
	if err != nil {
		return nil, err
	}
	exclusions = append(exclusions, inlineSuppression)

	confidence := def.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.7
	}

	return &Rule{
		Name:        def.Name,
		Category:    def.Category,
		Priority:    def.Priority,
		Description: def.Description,
		Rationale:   def.Rationale,
		Triggers:    triggers,
		Exclusions:  exclusions,
		Keywords:    def.Detection.Keywords,
		Fix:         def.Fix,
		Confidence:  confidence,
		Family:      def.Family,
		Examples:    def.Examples,
		Tags:        def.Tags,
		declOrder:   declOrder,
	}, nil
}

func compilePatterns(rule, kind string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, codexerrors.New(codexerrors.ConfigInvalid,
				fmt.Sprintf("rule %q has invalid %s pattern %q", rule, kind, p), err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// readPack reads an external rule file by extension.
func readPack(path string) ([]Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codexerrors.New(codexerrors.ConfigInvalid,
			fmt.Sprintf("failed to read rule pack %s", path), err)
	}

	var pack packFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &pack); err != nil {
			return nil, codexerrors.New(codexerrors.ConfigInvalid,
				fmt.Sprintf("failed to parse rule pack %s", path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &pack); err != nil {
			return nil, codexerrors.New(codexerrors.ConfigInvalid,
				fmt.Sprintf("failed to parse rule pack %s", path), err)
		}
	default:
		return nil, codexerrors.New(codexerrors.ConfigInvalid,
			fmt.Sprintf("unsupported rule pack format %s", path), nil)
	}

	return pack.Rules, nil
}

// mergeDefs overlays pack definitions on the base table. A pack rule with
// an existing name replaces the base rule in place, keeping its position;
// new names append.
func mergeDefs(base, overlay []Def) []Def {
	index := make(map[string]int, len(base))
	for i, d := range base {
		index[d.Name] = i
	}
	for _, d := range overlay {
		if i, ok := index[d.Name]; ok {
			base[i] = d
		} else {
			index[d.Name] = len(base)
			base = append(base, d)
		}
	}
	return base
}
