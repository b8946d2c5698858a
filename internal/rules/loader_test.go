package rules

import (
	"os"
	"path/filepath"
	"testing"

	codexerrors "codex/internal/errors"
)

func TestLoadAllBuiltin(t *testing.T) {
	set, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Len() != len(Builtin) {
		t.Errorf("loaded %d rules, want %d", set.Len(), len(Builtin))
	}
}

func TestLoadOrderingDeterministic(t *testing.T) {
	set, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rules := set.All()
	for i := 1; i < len(rules); i++ {
		prev, cur := rules[i-1], rules[i]
		if prev.Priority.Weight() < cur.Priority.Weight() {
			t.Errorf("rule %q (weight %d) sorted before %q (weight %d)",
				prev.Name, prev.Priority.Weight(), cur.Name, cur.Priority.Weight())
		}
		if prev.Priority == cur.Priority && prev.Category > cur.Category {
			t.Errorf("within priority %s, category %q sorted before %q",
				cur.Priority, prev.Category, cur.Category)
		}
	}

	// Two loads produce identical order
	again, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	for i, r := range again.All() {
		if r.Name != rules[i].Name {
			t.Fatalf("load order not deterministic at %d: %q vs %q", i, r.Name, rules[i].Name)
		}
	}
}

func TestLoadPriorityFilter(t *testing.T) {
	set, err := Load(LoadOptions{Priorities: PrioritySet{PriorityMandatory: true}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Len() == 0 {
		t.Fatal("builtin table should contain MANDATORY rules")
	}
	for _, r := range set.All() {
		if r.Priority != PriorityMandatory {
			t.Errorf("rule %q has priority %s, want MANDATORY", r.Name, r.Priority)
		}
	}

	atLeastHigh, err := Load(LoadOptions{Priorities: AtLeast(PriorityHigh)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, r := range atLeastHigh.All() {
		if r.Priority.Weight() < PriorityHigh.Weight() {
			t.Errorf("rule %q below HIGH leaked through AtLeast filter", r.Name)
		}
	}
}

func TestLoadMalformedRuleAborts(t *testing.T) {
	tests := []struct {
		name string
		def  Def
	}{
		{"missing name", Def{Priority: PriorityHigh, Detection: Detection{Triggers: []string{`x`}}}},
		{"unknown priority", Def{Name: "r", Priority: "URGENT", Detection: Detection{Triggers: []string{`x`}}}},
		{"no triggers", Def{Name: "r", Priority: PriorityHigh}},
		{"bad trigger regex", Def{Name: "r", Priority: PriorityHigh, Detection: Detection{Triggers: []string{`(`}}}},
		{"bad exclusion regex", Def{Name: "r", Priority: PriorityHigh, Detection: Detection{Triggers: []string{`x`}, Exclusions: []string{`[`}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(tt.def, 0)
			if err == nil {
				t.Fatal("expected compile error")
			}
			if !codexerrors.IsCode(err, codexerrors.ConfigInvalid) {
				t.Errorf("error code = %q, want CONFIG_INVALID", codexerrors.CodeOf(err))
			}
		})
	}
}

func TestLoadTOMLPack(t *testing.T) {
	dir := t.TempDir()
	pack := filepath.Join(dir, "rules.toml")
	content := `
[[rules]]
name = "no-sleep-in-loop"
category = "performance"
priority = "HIGH"
description = "Do not sleep inside loops"

[rules.detection]
triggers = ['time\.sleep\s*\(']
exclusions = ['^\s*#']

[rules.fix]
template = "Use a scheduler or backoff helper"
`
	if err := os.WriteFile(pack, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(LoadOptions{Packs: []string{pack}})
	if err != nil {
		t.Fatalf("Load with pack: %v", err)
	}

	r, ok := set.Get("no-sleep-in-loop")
	if !ok {
		t.Fatal("pack rule not loaded")
	}
	if r.Category != "performance" || r.Priority != PriorityHigh {
		t.Errorf("pack rule fields wrong: %+v", r)
	}
	if set.Len() != len(Builtin)+1 {
		t.Errorf("set has %d rules, want %d", set.Len(), len(Builtin)+1)
	}
}

func TestLoadYAMLPackOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	pack := filepath.Join(dir, "rules.yaml")
	content := `
rules:
  - name: no-print-statement
    category: logging
    priority: LOW
    description: demoted print rule
    detection:
      triggers:
        - 'print\('
`
	if err := os.WriteFile(pack, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(LoadOptions{Packs: []string{pack}})
	if err != nil {
		t.Fatalf("Load with yaml pack: %v", err)
	}
	if set.Len() != len(Builtin) {
		t.Errorf("override should not grow the set: %d vs %d", set.Len(), len(Builtin))
	}

	r, _ := set.Get("no-print-statement")
	if r.Priority != PriorityLow {
		t.Errorf("override priority = %s, want LOW", r.Priority)
	}
}

func TestLoadBadPack(t *testing.T) {
	dir := t.TempDir()
	pack := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(pack, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(LoadOptions{Packs: []string{pack}}); err == nil {
		t.Error("expected error for malformed pack")
	}
	if _, err := Load(LoadOptions{Packs: []string{filepath.Join(dir, "missing.toml")}}); err == nil {
		t.Error("expected error for missing pack")
	}
	if _, err := Load(LoadOptions{Packs: []string{filepath.Join(dir, "rules.ini")}}); err == nil {
		t.Error("expected error for unsupported pack format")
	}
}

func TestLoadDuplicateNameUnderPriorityFilter(t *testing.T) {
	orig := Builtin
	defer func() { Builtin = orig }()

	// Two definitions share a name but only the second survives the
	// filter; the duplicate must still abort the load.
	low := Builtin[0]
	low.Name = "twice-defined"
	low.Priority = PriorityLow
	high := low
	high.Priority = PriorityMandatory
	Builtin = append(append([]Def{}, orig...), low, high)

	if _, err := Load(LoadOptions{Priorities: AtLeast(PriorityMandatory)}); err == nil {
		t.Error("expected duplicate-name error despite priority filter")
	}
	if _, err := Load(LoadOptions{}); err == nil {
		t.Error("expected duplicate-name error on unfiltered load")
	}
}

func TestInlineSuppressionAppended(t *testing.T) {
	set, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, _ := set.Get("no-bare-except")
	matched := false
	for _, ex := range r.Exclusions {
		if ex.MatchString("except:  # codex:ignore") {
			matched = true
		}
	}
	if !matched {
		t.Error("inline suppression marker should be excluded by every rule")
	}
}
