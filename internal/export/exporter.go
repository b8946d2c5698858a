package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	codexerrors "codex/internal/errors"
	"codex/internal/logging"
	"codex/internal/store"
)

// Exporter writes scan reports from the store to disk.
type Exporter struct {
	store  *store.Store
	logger *logging.Logger
}

// NewExporter creates an exporter over an open store.
func NewExporter(st *store.Store, logger *logging.Logger) *Exporter {
	return &Exporter{store: st, logger: logger}
}

// Export writes the report for one scan and returns the path written.
// An empty scan id exports the latest recorded scan.
func (e *Exporter) Export(scanID string, opts Options) (string, error) {
	rec, err := e.resolveScan(scanID)
	if err != nil {
		return "", err
	}

	report, err := e.buildReport(rec)
	if err != nil {
		return "", err
	}

	path := opts.Path
	if path == "" {
		path = fmt.Sprintf("codex-report-%s.json", rec.ScanID)
	}
	compress := opts.Compress || strings.HasSuffix(path, ".zst")
	if compress && !strings.HasSuffix(path, ".zst") {
		path += ".zst"
	}

	if err := e.write(report, path, compress); err != nil {
		return "", err
	}

	e.logger.Info("Scan exported", map[string]interface{}{
		"scan_id":    rec.ScanID,
		"path":       path,
		"violations": len(report.Violations),
		"compressed": compress,
	})
	return path, nil
}

// BuildReport assembles the report for one scan without writing it.
func (e *Exporter) BuildReport(scanID string) (*Report, error) {
	rec, err := e.resolveScan(scanID)
	if err != nil {
		return nil, err
	}
	return e.buildReport(rec)
}

func (e *Exporter) resolveScan(scanID string) (*store.ScanRecord, error) {
	if scanID != "" {
		return e.store.ScanByID(scanID)
	}
	rec, err := e.store.LatestScan()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, codexerrors.New(codexerrors.ScanNotFound, "no scan has been recorded yet", nil)
	}
	return rec, nil
}

func (e *Exporter) buildReport(rec *store.ScanRecord) (*Report, error) {
	violations, err := e.store.ViolationsForScan(rec.ScanID)
	if err != nil {
		return nil, err
	}
	summary, err := e.store.CategorySummary(rec.ScanID)
	if err != nil {
		return nil, err
	}

	return &Report{
		Metadata:   metadataFrom(rec, time.Now().UTC().Format(time.RFC3339)),
		Summary:    summary,
		Violations: violations,
	}, nil
}

func (e *Exporter) write(report *Report, path string, compress bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return codexerrors.New(codexerrors.StoreFailure, "failed to create export directory", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return codexerrors.New(codexerrors.StoreFailure, "failed to create export file", err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return codexerrors.New(codexerrors.InternalError, "failed to initialize compressor", err)
		}
		w = enc
	}

	je := json.NewEncoder(w)
	je.SetIndent("", "  ")
	if err := je.Encode(report); err != nil {
		return codexerrors.New(codexerrors.InternalError, "failed to encode report", err)
	}

	if enc != nil {
		if err := enc.Close(); err != nil {
			return codexerrors.New(codexerrors.StoreFailure, "failed to flush compressed report", err)
		}
	}
	return f.Close()
}

// ReadReport loads a report written by Export, transparently handling
// zstd-compressed files.
func ReadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, codexerrors.New(codexerrors.StoreFailure, "failed to open report", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, codexerrors.New(codexerrors.InternalError, "failed to initialize decompressor", err)
		}
		defer dec.Close()
		r = dec
	}

	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, codexerrors.New(codexerrors.InternalError, "failed to decode report", err)
	}
	return &report, nil
}
