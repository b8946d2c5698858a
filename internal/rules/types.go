// Package rules defines the Codex rule model: named detection policies
// with trigger and exclusion patterns, priorities, and fix guidance.
// Rules are data, not code; the builtin table can be extended with
// external rule packs without recompilation.
package rules

import (
	"regexp"

	codexerrors "codex/internal/errors"
)

// Priority orders rules by how strongly they bind.
type Priority string

const (
	PriorityMandatory   Priority = "MANDATORY"
	PriorityCritical    Priority = "CRITICAL"
	PriorityHigh        Priority = "HIGH"
	PriorityRecommended Priority = "RECOMMENDED"
	PriorityLow         Priority = "LOW"
)

var priorityWeight = map[Priority]int{
	PriorityMandatory:   5,
	PriorityCritical:    4,
	PriorityHigh:        3,
	PriorityRecommended: 2,
	PriorityLow:         1,
}

// Weight returns a numeric weight for sorting. MANDATORY is highest.
func (p Priority) Weight() int {
	return priorityWeight[p]
}

// Valid reports whether p is one of the five known priorities.
func (p Priority) Valid() bool {
	_, ok := priorityWeight[p]
	return ok
}

// ParsePriority converts a string to a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", codexerrors.New(codexerrors.ConfigInvalid, "unknown priority", nil).
			WithDetails(map[string]string{"priority": s})
	}
	return p, nil
}

// PrioritySet selects which priorities to load. An empty set selects all.
type PrioritySet map[Priority]bool

// AllPriorities selects every priority.
func AllPriorities() PrioritySet {
	return PrioritySet{
		PriorityMandatory:   true,
		PriorityCritical:    true,
		PriorityHigh:        true,
		PriorityRecommended: true,
		PriorityLow:         true,
	}
}

// PrioritiesDescending lists priorities from most to least severe.
func PrioritiesDescending() []Priority {
	return []Priority{PriorityMandatory, PriorityCritical, PriorityHigh, PriorityRecommended, PriorityLow}
}

// AtLeast selects every priority at or above min.
func AtLeast(min Priority) PrioritySet {
	set := PrioritySet{}
	for p, w := range priorityWeight {
		if w >= min.Weight() {
			set[p] = true
		}
	}
	return set
}

// Family groups rules that share purpose-based suppression overlays.
type Family string

const (
	// FamilyPrint marks print-statement rules: suppressed for CLI tools,
	// tests, and script entrypoints.
	FamilyPrint Family = "print-statement"
	// FamilyHardcodedPath marks hardcoded data-file path rules: suppressed
	// for settings modules, CLI defaults, gitignore files, and tests.
	FamilyHardcodedPath Family = "hardcoded-path"
	// FamilyNone means no overlay applies.
	FamilyNone Family = ""
)

// FixTemplate describes how to repair a violation.
type FixTemplate struct {
	Template    string `json:"template" toml:"template" yaml:"template"`
	Complexity  string `json:"complexity,omitempty" toml:"complexity" yaml:"complexity"`
	AutoFixable bool   `json:"autoFixable,omitempty" toml:"auto_fixable" yaml:"auto_fixable"`
}

// Detection holds the raw detection logic of a rule definition.
type Detection struct {
	// Triggers are regexes; at least one must match a line for the rule to fire
	Triggers []string `json:"triggers" toml:"triggers" yaml:"triggers"`
	// Exclusions veto a trigger match on the same line, unconditionally
	Exclusions []string `json:"exclusions,omitempty" toml:"exclusions" yaml:"exclusions"`
	// Keywords gate the rule on file content: when set, at least one must
	// appear somewhere in the file
	Keywords []string `json:"keywords,omitempty" toml:"keywords" yaml:"keywords"`
}

// Examples holds good/bad example snippets for a rule.
type Examples struct {
	Good string `json:"good,omitempty" toml:"good" yaml:"good"`
	Bad  string `json:"bad,omitempty" toml:"bad" yaml:"bad"`
}

// Def is the serializable form of a rule, as it appears in the builtin
// table or an external rule pack.
type Def struct {
	Name        string      `json:"name" toml:"name" yaml:"name"`
	Category    string      `json:"category" toml:"category" yaml:"category"`
	Priority    Priority    `json:"priority" toml:"priority" yaml:"priority"`
	Description string      `json:"description" toml:"description" yaml:"description"`
	Rationale   string      `json:"rationale,omitempty" toml:"rationale" yaml:"rationale"`
	Detection   Detection   `json:"detection" toml:"detection" yaml:"detection"`
	Fix         FixTemplate `json:"fix" toml:"fix" yaml:"fix"`
	Confidence  float64     `json:"confidence,omitempty" toml:"confidence" yaml:"confidence"`
	Family      Family      `json:"family,omitempty" toml:"family" yaml:"family"`
	Examples    Examples    `json:"examples,omitempty" toml:"examples" yaml:"examples"`
	Tags        []string    `json:"tags,omitempty" toml:"tags" yaml:"tags"`
}

// Rule is a compiled, immutable rule. Built once by Load and shared
// read-only across scan workers.
type Rule struct {
	Name        string
	Category    string
	Priority    Priority
	Description string
	Rationale   string
	Triggers    []*regexp.Regexp
	Exclusions  []*regexp.Regexp
	Keywords    []string
	Fix         FixTemplate
	Confidence  float64
	Family      Family
	Examples    Examples
	Tags        []string

	// declOrder preserves declaration order as the final sort key
	declOrder int
}

// Set is an ordered, name-unique collection of compiled rules.
type Set struct {
	ordered []*Rule
	byName  map[string]*Rule
}

// All returns the rules in load order: priority rank, category, declaration.
func (s *Set) All() []*Rule {
	return s.ordered
}

// Get looks up a rule by its unique name.
func (s *Set) Get(name string) (*Rule, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.ordered)
}
