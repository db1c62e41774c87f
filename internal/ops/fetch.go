package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/db"
	"github.com/hpungsan/rolodex/internal/errors"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeDeleted bool
}

// Fetch retrieves a single contact by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*contact.Contact, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("fetch")
	}
	return db.GetByID(database, id, input.IncludeDeleted)
}
