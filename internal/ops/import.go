package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hpungsan/rolodex/internal/config"
	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/db"
	"github.com/hpungsan/rolodex/internal/errors"
)

// maxImportLineBytes bounds a single JSONL record; inline photos make lines long.
const maxImportLineBytes = 16 << 20

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on any problem (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision, skip bad lines
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required, .jsonl file with one contact per line
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents an error that occurred during import.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is a parsed line of an import file.
type importRecord struct {
	line    int
	contact contact.Contact
}

// Import imports contacts from a JSONL file.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openImportFile(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, parseErrors := parseImportFile(file)

	// For mode:error, fail on any parse errors
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}

	switch input.Mode {
	case ImportModeError:
		return importModeError(ctx, database, records)
	default:
		return importModeReplace(ctx, database, records, parseErrors)
	}
}

// openImportFile opens a validated import path and makes sure the file that
// was opened is the regular file that was checked, not a symlink swapped in
// between.
func openImportFile(path string) (*os.File, error) {
	before, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to stat import file: %w", err))
	}
	if !before.Mode().IsRegular() {
		return nil, errors.NewInvalidRequest("import path must be a regular file")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	after, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.NewInternal(fmt.Errorf("failed to stat import file: %w", err))
	}
	if !os.SameFile(before, after) {
		file.Close()
		return nil, errors.NewInvalidRequest("import file changed while it was being opened")
	}
	return file, nil
}

// parseImportFile parses and validates every line. Blank lines are ignored.
func parseImportFile(r io.Reader) ([]importRecord, []ImportError) {
	var records []importRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxImportLineBytes)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var c contact.Contact
		if err := json.Unmarshal(line, &c); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		c.ID = strings.TrimSpace(c.ID)
		if err := validateContact(&c); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      c.ID,
				Code:    string(errors.ErrInvalidRequest),
				Message: err.(*errors.RolodexError).Message,
			})
			continue
		}

		records = append(records, importRecord{line: lineNum, contact: c})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum + 1,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// prepareRecord assigns an ID and timestamps to an imported contact.
func prepareRecord(c *contact.Contact, now int64) error {
	if c.ID == "" {
		id, err := generateULID()
		if err != nil {
			return errors.NewInternal(err)
		}
		c.ID = id
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = now
	}
	if c.UpdatedAt == 0 {
		c.UpdatedAt = c.CreatedAt
	}
	c.DeletedAt = nil
	return nil
}

// importModeError imports all records atomically, rolling back on any collision.
func importModeError(ctx context.Context, database *sql.DB, records []importRecord) (*ImportOutput, error) {
	tx, err := database.Begin()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().Unix()
	imported := 0

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("import")
		}

		c := rec.contact
		if err := prepareRecord(&c, now); err != nil {
			return nil, err
		}

		if err := db.Insert(tx, &c); err != nil {
			if err == db.ErrUniqueConstraint {
				// Abort on first error for mode:error
				return &ImportOutput{
					Errors: []ImportError{{
						Line:    rec.line,
						ID:      c.ID,
						Code:    "ID_COLLISION",
						Message: fmt.Sprintf("contact with id %q already exists", c.ID),
					}},
				}, nil
			}
			return nil, err
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ImportOutput{
		Imported: imported,
		Errors:   []ImportError{},
	}, nil
}

// importModeReplace imports records, overwriting existing contacts with the same ID.
func importModeReplace(ctx context.Context, database *sql.DB, records []importRecord, parseErrors []ImportError) (*ImportOutput, error) {
	out := &ImportOutput{
		Skipped: len(parseErrors),
		Errors:  append([]ImportError{}, parseErrors...),
	}

	now := time.Now().Unix()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("import")
		}

		c := rec.contact
		if err := prepareRecord(&c, now); err != nil {
			return nil, err
		}

		if err := db.Replace(database, &c); err != nil {
			out.Skipped++
			out.Errors = append(out.Errors, ImportError{
				Line:    rec.line,
				ID:      c.ID,
				Code:    string(errors.ErrInternal),
				Message: err.Error(),
			})
			continue
		}
		out.Imported++
	}

	return out, nil
}
