package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/rolodex/internal/db"
	"github.com/hpungsan/rolodex/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	OlderThanDays *int // optional, only purge if deleted_at < (now - N days)
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes soft-deleted contacts.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	days := 0
	if input.OlderThanDays != nil {
		if *input.OlderThanDays < 0 {
			return nil, errors.NewInvalidRequest("older_than_days must not be negative")
		}
		days = *input.OlderThanDays
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("purge")
	}

	count, err := db.PurgeDeleted(database, days)
	if err != nil {
		return nil, err
	}

	return &PurgeOutput{
		Purged:  int(count),
		Message: formatPurgeMessage(int(count), input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, olderThanDays *int) string {
	if count == 0 {
		return "No deleted contacts to purge"
	}

	word := "contact"
	if count > 1 {
		word = "contacts"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)
	if olderThanDays != nil && *olderThanDays > 0 {
		msg += fmt.Sprintf(" (deleted more than %d days ago)", *olderThanDays)
	}
	return msg
}
