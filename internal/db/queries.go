package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.RolodexError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const contactColumns = `
	id, prefix, first_name, middle_name, surname, suffix, nickname,
	display_name, sort_key, phones_json, emails_json, events_json, addresses_json,
	notes, has_org, org_company, org_job_position, websites_json,
	thumbnail_uri, photo, starred, created_at, updated_at, deleted_at
`

// Insert stores a new contact in the database.
func Insert(db Querier, c *contact.Contact) error {
	args, err := contactArgs(c)
	if err != nil {
		return err
	}

	query := `INSERT INTO contacts (` + contactColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	if _, err := db.Exec(query, args...); err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// Replace inserts a contact or overwrites the existing row with the same ID.
// An overwritten row keeps its created_at and is undeleted.
func Replace(db Querier, c *contact.Contact) error {
	args, err := contactArgs(c)
	if err != nil {
		return err
	}

	query := `INSERT INTO contacts (` + contactColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(id) DO UPDATE SET
			prefix = excluded.prefix,
			first_name = excluded.first_name,
			middle_name = excluded.middle_name,
			surname = excluded.surname,
			suffix = excluded.suffix,
			nickname = excluded.nickname,
			display_name = excluded.display_name,
			sort_key = excluded.sort_key,
			phones_json = excluded.phones_json,
			emails_json = excluded.emails_json,
			events_json = excluded.events_json,
			addresses_json = excluded.addresses_json,
			notes = excluded.notes,
			has_org = excluded.has_org,
			org_company = excluded.org_company,
			org_job_position = excluded.org_job_position,
			websites_json = excluded.websites_json,
			thumbnail_uri = excluded.thumbnail_uri,
			photo = excluded.photo,
			starred = excluded.starred,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`

	if _, err := db.Exec(query, args...); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a contact by its ULID.
// If includeDeleted is false, soft-deleted contacts are excluded.
func GetByID(db Querier, id string, includeDeleted bool) (*contact.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	c, err := scanContact(db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListFilters narrows List results.
type ListFilters struct {
	// NamePrefix matches the start of the normalized display name.
	NamePrefix     string
	StarredOnly    bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// List returns contacts ordered by sort key, plus the total number of
// matching rows ignoring Limit and Offset.
func List(db Querier, f ListFilters) ([]*contact.Contact, int, error) {
	var where []string
	var args []any

	if !f.IncludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}
	if f.StarredOnly {
		where = append(where, "starred = 1")
	}
	if prefix := contact.Normalize(f.NamePrefix); prefix != "" {
		where = append(where, `sort_key LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(prefix)+"%")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM contacts"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + whereClause +
		` ORDER BY sort_key ASC, id ASC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	contacts, err := queryContacts(db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// ListForExport returns the contacts to export. With no ids, every contact is
// returned ordered by sort key. With ids, contacts come back in the order
// given and a missing id is a NOT_FOUND error.
func ListForExport(db Querier, ids []string, includeDeleted bool) ([]*contact.Contact, error) {
	if len(ids) == 0 {
		query := `SELECT ` + contactColumns + ` FROM contacts`
		if !includeDeleted {
			query += " WHERE deleted_at IS NULL"
		}
		query += " ORDER BY sort_key ASC, id ASC"
		return queryContacts(db, query)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id IN (` + placeholders + `)`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	found, err := queryContacts(db, query, args...)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*contact.Contact, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	result := make([]*contact.Contact, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, ok := byID[id]
		if !ok {
			return nil, errors.NewNotFound(id)
		}
		result = append(result, c)
	}
	return result, nil
}

// SoftDelete marks a contact as deleted by setting deleted_at.
func SoftDelete(db Querier, id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE contacts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.Exec(query, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// PurgeDeleted permanently removes soft-deleted contacts.
// If olderThanDays > 0, only contacts deleted more than that many days ago are removed.
func PurgeDeleted(db Querier, olderThanDays int) (int64, error) {
	query := "DELETE FROM contacts WHERE deleted_at IS NOT NULL"
	var args []any
	if olderThanDays > 0 {
		cutoff := time.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour).Unix()
		query += " AND deleted_at < ?"
		args = append(args, cutoff)
	}

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// escapeLike escapes LIKE wildcards so the value matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func queryContacts(db Querier, query string, args ...any) ([]*contact.Contact, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var contacts []*contact.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return contacts, nil
}

// contactArgs returns the column values of c in contactColumns order,
// without deleted_at.
func contactArgs(c *contact.Contact) ([]any, error) {
	phones, err := toJSON(c.PhoneNumbers)
	if err != nil {
		return nil, err
	}
	emails, err := toJSON(c.Emails)
	if err != nil {
		return nil, err
	}
	events, err := toJSON(c.Events)
	if err != nil {
		return nil, err
	}
	addresses, err := toJSON(c.Addresses)
	if err != nil {
		return nil, err
	}
	websites, err := toJSON(c.Websites)
	if err != nil {
		return nil, err
	}

	var company, jobPosition string
	hasOrg := c.Organization != nil
	if hasOrg {
		company, jobPosition = c.Organization.Company, c.Organization.JobPosition
	}

	var thumbnailURI sql.NullString
	var photo []byte
	if c.Thumbnail != nil {
		if c.Thumbnail.URI != "" {
			thumbnailURI = sql.NullString{String: c.Thumbnail.URI, Valid: true}
		}
		if len(c.Thumbnail.Data) > 0 {
			photo = c.Thumbnail.Data
		}
	}

	return []any{
		c.ID, c.Prefix, c.FirstName, c.MiddleName, c.Surname, c.Suffix, c.Nickname,
		c.DisplayName(), c.SortKey(), phones, emails, events, addresses,
		c.Notes, hasOrg, company, jobPosition, websites,
		thumbnailURI, photo, c.Starred, c.CreatedAt, c.UpdatedAt,
	}, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanContact scans a single row into a Contact struct.
func scanContact(row rowScanner) (*contact.Contact, error) {
	var (
		c            contact.Contact
		displayName  string
		sortKey      string
		phones       sql.NullString
		emails       sql.NullString
		events       sql.NullString
		addresses    sql.NullString
		hasOrg       bool
		company      string
		jobPosition  string
		websites     sql.NullString
		thumbnailURI sql.NullString
		photo        []byte
		deletedAt    sql.NullInt64
	)

	err := row.Scan(
		&c.ID, &c.Prefix, &c.FirstName, &c.MiddleName, &c.Surname, &c.Suffix, &c.Nickname,
		&displayName, &sortKey, &phones, &emails, &events, &addresses,
		&c.Notes, &hasOrg, &company, &jobPosition, &websites,
		&thumbnailURI, &photo, &c.Starred, &c.CreatedAt, &c.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := fromJSON(phones, &c.PhoneNumbers); err != nil {
		return nil, fmt.Errorf("phones_json: %w", err)
	}
	if err := fromJSON(emails, &c.Emails); err != nil {
		return nil, fmt.Errorf("emails_json: %w", err)
	}
	if err := fromJSON(events, &c.Events); err != nil {
		return nil, fmt.Errorf("events_json: %w", err)
	}
	if err := fromJSON(addresses, &c.Addresses); err != nil {
		return nil, fmt.Errorf("addresses_json: %w", err)
	}
	if err := fromJSON(websites, &c.Websites); err != nil {
		return nil, fmt.Errorf("websites_json: %w", err)
	}

	if hasOrg {
		c.Organization = &contact.Organization{Company: company, JobPosition: jobPosition}
	}
	if thumbnailURI.Valid || len(photo) > 0 {
		c.Thumbnail = &contact.Thumbnail{URI: thumbnailURI.String}
		if len(photo) > 0 {
			c.Thumbnail.Data = photo
		}
	}

	// Convert deleted_at
	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Int64
	}

	return &c, nil
}

// toJSON encodes a slice for a *_json column; empty slices are stored as NULL.
func toJSON[T any](v []T) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func fromJSON[T any](ns sql.NullString, dst *[]T) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), dst)
}
