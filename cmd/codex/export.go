package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codex/internal/export"
)

var (
	exportOutput   string
	exportCompress bool
)

var exportCmd = &cobra.Command{
	Use:   "export [scan-id]",
	Short: "Export a recorded scan as a report file",
	Long: `Writes one recorded scan (default: the latest) as a JSON report,
optionally zstd-compressed.

Examples:
  codex export
  codex export --output report.json
  codex export 3f1c... --output report.json.zst`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Destination file (default: codex-report-<scan id>.json)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "Write zstd-compressed output")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	root, cfg, logger, err := loadWorkspace()
	if err != nil {
		return err
	}
	db, st, err := openStore(root, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	scanID := ""
	if len(args) == 1 {
		scanID = args[0]
	}

	path, err := export.NewExporter(st, logger).Export(scanID, export.Options{
		Path:     exportOutput,
		Compress: exportCompress,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Report written to %s\n", path)
	return nil
}
