package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codex/internal/version"
)

var (
	rootFlag      string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "codex",
	Short: "Codex - source pattern scanner",
	Long: `Codex scans source trees for coding-convention violations, records each
scan as a consistent snapshot in a local SQLite store, and answers
free-text questions about which rules apply to a piece of code.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("Codex version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Repository root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: human, json")
}

// resolveRoot determines the repository root from the --root flag or the
// current directory.
func resolveRoot() (string, error) {
	if rootFlag != "" {
		return filepath.Abs(rootFlag)
	}
	return os.Getwd()
}
