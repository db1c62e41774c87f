package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/db"
	"github.com/hpungsan/rolodex/internal/errors"
)

// StoreMode controls collision behavior.
type StoreMode string

const (
	StoreModeError   StoreMode = "error"   // default: fail on ID collision
	StoreModeReplace StoreMode = "replace" // overwrite existing
)

// StoreInput contains parameters for the Store operation.
type StoreInput struct {
	// Contact is the record to store. ID is optional; a new ULID is assigned
	// when it is empty. CreatedAt, UpdatedAt and DeletedAt are ignored.
	Contact contact.Contact
	Mode    StoreMode // default: StoreModeError
}

// StoreOutput contains the result of the Store operation.
type StoreOutput struct {
	ID string `json:"id"`
}

// Store creates or replaces a contact.
func Store(ctx context.Context, database *sql.DB, input StoreInput) (*StoreOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("store")
	}

	if input.Mode == "" {
		input.Mode = StoreModeError
	}
	if input.Mode != StoreModeError && input.Mode != StoreModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	c := input.Contact
	c.ID = strings.TrimSpace(c.ID)
	if err := validateContact(&c); err != nil {
		return nil, err
	}

	if c.ID == "" {
		id, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		c.ID = id
	}

	now := time.Now().Unix()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.DeletedAt = nil

	if input.Mode == StoreModeReplace {
		if err := db.Replace(database, &c); err != nil {
			return nil, err
		}
		return &StoreOutput{ID: c.ID}, nil
	}

	// mode:error - Insert and fail on conflict
	if err := db.Insert(database, &c); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewIDAlreadyExists(c.ID)
		}
		return nil, err
	}

	return &StoreOutput{ID: c.ID}, nil
}
