package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"codex/internal/rules"
)

var (
	rulesMinPriority string
	rulesFormat      string
	rulesValidate    bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active rule set",
	Long: `Lists every loaded rule in evaluation order: builtin rules merged with
any configured rule packs, filtered to the configured minimum priority.

Examples:
  codex rules
  codex rules --min-priority=CRITICAL
  codex rules --validate
  codex rules --format=json`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesMinPriority, "min-priority", "", "Only list rules at or above this priority")
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "human", "Output format (human, json)")
	rulesCmd.Flags().BoolVar(&rulesValidate, "validate", false, "Only validate that the rule set loads cleanly")
	rootCmd.AddCommand(rulesCmd)
}

type ruleListing struct {
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Priority    rules.Priority `json:"priority"`
	Description string         `json:"description"`
	Fix         string         `json:"fix,omitempty"`
}

func runRules(cmd *cobra.Command, args []string) error {
	root, cfg, _, err := loadWorkspace()
	if err != nil {
		return err
	}

	if rulesMinPriority != "" {
		cfg.Rules.MinPriority = rulesMinPriority
	}

	set, err := loadRuleSet(root, cfg)
	if err != nil {
		return err
	}

	if rulesValidate {
		fmt.Printf("Rule set OK: %d rules.\n", set.Len())
		return nil
	}

	if rulesFormat == "json" {
		listings := make([]ruleListing, 0, set.Len())
		for _, r := range set.All() {
			listings = append(listings, ruleListing{
				Name:        r.Name,
				Category:    r.Category,
				Priority:    r.Priority,
				Description: r.Description,
				Fix:         r.Fix.Template,
			})
		}
		data, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, r := range set.All() {
		fmt.Printf("%-12s %-22s %s\n", r.Priority, r.Category, r.Name)
		fmt.Printf("             %s\n", r.Description)
	}
	fmt.Printf("\n%d rules loaded.\n", set.Len())
	return nil
}
