package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codex/internal/project"
	"codex/internal/rules"
	"codex/internal/scan"
)

var (
	scanFormat   string
	scanWorkers  int
	scanNoRecord bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory tree for rule violations",
	Long: `Scans every source file under the given path (default: the repository
root), applies the loaded rule set line by line, and records the result
as one atomic scan in the local store.

Examples:
  codex scan
  codex scan src/
  codex scan --format=json
  codex scan --no-record`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "human", "Output format (human, json)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Concurrent file scans (0 = use config)")
	scanCmd.Flags().BoolVar(&scanNoRecord, "no-record", false, "Print results without recording the scan")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	root, cfg, logger, err := loadWorkspace()
	if err != nil {
		return err
	}

	target := root
	if len(args) == 1 {
		if target, err = resolveTarget(args[0]); err != nil {
			return err
		}
	}

	set, err := loadRuleSet(root, cfg)
	if err != nil {
		return err
	}

	opts := scan.Options{
		ExcludeDirs:      cfg.Scan.ExcludeDirs,
		ExcludeGlobs:     cfg.Scan.ExcludeGlobs,
		MaxFileSizeBytes: cfg.Scan.MaxFileSizeBytes,
		Workers:          cfg.Scan.Workers,
	}
	if scanWorkers > 0 {
		opts.Workers = scanWorkers
	}

	if lang, manifest, ok := project.DetectLanguage(target); ok {
		logger.Info("Detected project language", map[string]interface{}{
			"language": project.DisplayName(lang),
			"manifest": manifest,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := scan.NewScanner(target, set, opts, logger)
	result, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}

	scanID := ""
	if !scanNoRecord {
		db, st, err := openStore(root, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := st.SyncRules(set); err != nil {
			return err
		}
		scanID = st.BeginScan(target)
		if err := st.Record(scanID, result); err != nil {
			return err
		}
	}

	logger.Debug("Scan completed", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"files":       result.FilesScanned,
		"violations":  len(result.Violations),
	})

	return printScanResult(result, scanID)
}

func resolveTarget(arg string) (string, error) {
	if arg == "" {
		return resolveRoot()
	}
	return filepath.Abs(arg)
}

func printScanResult(result *scan.Result, scanID string) error {
	if scanFormat == "json" {
		out := struct {
			ScanID string `json:"scanId,omitempty"`
			*scan.Result
		}{scanID, result}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Scanned %d files (%d skipped) in %s\n", result.FilesScanned, result.FilesSkipped, result.Duration)
	if scanID != "" {
		fmt.Printf("Scan ID: %s\n", scanID)
	}
	if len(result.Violations) == 0 {
		fmt.Println("No violations found.")
		return nil
	}

	fmt.Printf("\n%d violations in %d files:\n\n", result.Summary.TotalViolations, result.Summary.FilesWithViolations)
	for _, v := range result.Violations {
		fmt.Printf("%s:%d [%s] %s\n", v.FilePath, v.Line, v.Priority, v.RuleName)
		fmt.Printf("    %s\n", v.CodeLine)
		if v.Fix != "" {
			fmt.Printf("    fix: %s\n", v.Fix)
		}
	}

	fmt.Println("\nBy priority:")
	for _, p := range rules.PrioritiesDescending() {
		if n := result.Summary.ByPriority[p]; n > 0 {
			fmt.Printf("  %-12s %d\n", p, n)
		}
	}

	categories := make([]string, 0, len(result.Summary.ByCategory))
	for c := range result.Summary.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	fmt.Println("By category:")
	for _, c := range categories {
		fmt.Printf("  %-22s %d\n", c, result.Summary.ByCategory[c])
	}
	return nil
}
