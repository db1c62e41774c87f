package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/rolodex/internal/config"
	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/db"
	"github.com/hpungsan/rolodex/internal/errors"
	"github.com/hpungsan/rolodex/internal/vcf"
)

// ExportInput contains parameters for the Export and ExportTo operations.
type ExportInput struct {
	Path           string   // optional, default: ~/.rolodex/exports/contacts-<timestamp>.vcf
	IDs            []string // optional, export only these contacts in this order
	IncludeDeleted bool

	// Notify asks for Notifier to be told before the export starts.
	Notify   bool
	Notifier vcf.Notifier

	// PhotoDir resolves relative thumbnail references. Defaults to the
	// current directory.
	PhotoDir string
}

// ExportOutput contains the result of an export.
type ExportOutput struct {
	Path       string        `json:"path,omitempty"`
	Outcome    vcf.Outcome   `json:"outcome"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Failures   []vcf.Failure `json:"failures,omitempty"`
	ExportedAt int64         `json:"exported_at"`
}

// Export writes contacts to a vCard file. The file is replaced atomically:
// if nothing could be encoded, or the write fails, an existing file at the
// path is left untouched.
//
// A whole-export failure (unwritable path, write error, cancellation) is
// returned as an error. Per-contact failures are reported in the output.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (both user-provided and default) for security
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	contacts, err := loadForExport(ctx, database, input)
	if err != nil {
		return nil, err
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	sink := &vcf.FileSink{Path: exportPath, Perm: 0600}
	out, err := runExport(ctx, cfg, input, contacts, sink)
	if err != nil {
		return nil, err
	}
	out.Path = exportPath
	out.ExportedAt = now.Unix()
	return out, nil
}

// ExportTo writes contacts as vCard text to w. Input.Path is ignored.
// Nothing is written to w when no contact could be encoded.
func ExportTo(ctx context.Context, database *sql.DB, cfg *config.Config, w io.Writer, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	contacts, err := loadForExport(ctx, database, input)
	if err != nil {
		return nil, err
	}

	out, err := runExport(ctx, cfg, input, contacts, vcf.WriterSink{W: w})
	if err != nil {
		return nil, err
	}
	out.ExportedAt = now.Unix()
	return out, nil
}

func loadForExport(ctx context.Context, database *sql.DB, input ExportInput) ([]*contact.Contact, error) {
	if len(input.IDs) > MaxExportIDs {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("at most %d ids can be exported at once", MaxExportIDs))
	}
	ids := make([]string, 0, len(input.IDs))
	for _, id := range input.IDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, errors.NewInvalidRequest("ids must not contain empty values")
		}
		ids = append(ids, id)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("export")
	}
	return db.ListForExport(database, ids, input.IncludeDeleted)
}

func runExport(ctx context.Context, cfg *config.Config, input ExportInput, contacts []*contact.Contact, sink vcf.Sink) (*ExportOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	enc := vcf.NewEncoder(vcf.Options{
		Loader:   &vcf.FileImageLoader{BaseDir: input.PhotoDir, MaxBytes: cfg.PhotoMaxBytes},
		Notifier: input.Notifier,
		Workers:  cfg.ExportWorkers,
		Logger:   slog.Default().With("op", "export"),
	})

	res := enc.Encode(ctx, contacts, sink, input.Notify)
	if res.Err != nil {
		return nil, res.Err
	}

	return &ExportOutput{
		Outcome:   res.Outcome,
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Failures:  res.Failures,
	}, nil
}
