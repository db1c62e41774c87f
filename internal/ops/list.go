package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/rolodex/internal/db"
	"github.com/hpungsan/rolodex/internal/errors"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	NamePrefix     string // optional, matched against the normalized display name
	StarredOnly    bool
	Limit          int // default: 20, max: 100
	Offset         int // default: 0
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ContactSummary `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
}

// List retrieves contact summaries ordered by name with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("list")
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	contacts, total, err := db.List(database, db.ListFilters{
		NamePrefix:     input.NamePrefix,
		StarredOnly:    input.StarredOnly,
		IncludeDeleted: input.IncludeDeleted,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	items := make([]ContactSummary, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, Summarize(c))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "name_asc",
	}, nil
}
