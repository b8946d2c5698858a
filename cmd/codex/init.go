package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codex/internal/config"
	"codex/internal/errors"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize Codex configuration",
	Long:  "Creates a .codex/ directory with default configuration in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .codex directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return errors.New(errors.InternalError, "failed to resolve repository root", err)
	}

	codexDir := filepath.Join(root, ".codex")
	if _, statErr := os.Stat(codexDir); statErr == nil {
		if !initForce {
			// Idempotent: already initialized is success
			fmt.Println("Codex already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(codexDir, "config.json"))
			fmt.Println("\nRun 'codex init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(codexDir); removeErr != nil {
			return errors.New(errors.InternalError, "failed to remove existing .codex directory", removeErr)
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(root); err != nil {
		return errors.New(errors.InternalError, "failed to write config file", err)
	}

	fmt.Println("Codex initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", filepath.Join(codexDir, "config.json"))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'codex rules' to review the active rule set")
	fmt.Println("  2. Run 'codex scan' to scan the repository")
	return nil
}
