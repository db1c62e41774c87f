package db

import (
	"bytes"
	"database/sql"
	"testing"
	"time"

	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
)

// newTestContact creates a contact with default values for testing.
func newTestContact(id, first, last string) *contact.Contact {
	now := time.Now().Unix()
	return &contact.Contact{
		ID:        id,
		FirstName: first,
		Surname:   last,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndGetByID(t *testing.T) {
	db := openTestDB(t)

	c := newTestContact("01ABC123", "Jane", "Doe")
	c.Prefix = "Dr."
	c.MiddleName = "Q"
	c.Suffix = "Jr."
	c.Nickname = "JD"
	c.PhoneNumbers = []contact.PhoneNumber{{Value: "+1555123", Type: contact.PhoneMobile}}
	c.Emails = []contact.Email{{Value: "jane@x.com", Type: contact.EmailWork}}
	c.Events = []contact.Event{{Value: "--06-15", Type: contact.EventBirthday}}
	c.Addresses = []contact.Address{{Value: "1 Main St", Type: contact.AddressHome}}
	c.Notes = "# Notes"
	c.Organization = &contact.Organization{Company: "Acme", JobPosition: "CTO"}
	c.Websites = []string{"https://jane.example"}
	c.Thumbnail = &contact.Thumbnail{URI: "/photos/jane.jpg", Data: []byte{0xFF, 0xD8}}
	c.Starred = true

	if err := Insert(db, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(db, "01ABC123", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.FirstName != "Jane" || got.Surname != "Doe" || got.Prefix != "Dr." || got.MiddleName != "Q" || got.Suffix != "Jr." {
		t.Errorf("name parts = %+v", got)
	}
	if got.Nickname != "JD" {
		t.Errorf("Nickname = %q, want JD", got.Nickname)
	}
	if len(got.PhoneNumbers) != 1 || got.PhoneNumbers[0] != c.PhoneNumbers[0] {
		t.Errorf("PhoneNumbers = %v, want %v", got.PhoneNumbers, c.PhoneNumbers)
	}
	if len(got.Emails) != 1 || got.Emails[0] != c.Emails[0] {
		t.Errorf("Emails = %v, want %v", got.Emails, c.Emails)
	}
	if len(got.Events) != 1 || got.Events[0] != c.Events[0] {
		t.Errorf("Events = %v, want %v", got.Events, c.Events)
	}
	if len(got.Addresses) != 1 || got.Addresses[0] != c.Addresses[0] {
		t.Errorf("Addresses = %v, want %v", got.Addresses, c.Addresses)
	}
	if got.Notes != "# Notes" {
		t.Errorf("Notes = %q", got.Notes)
	}
	if got.Organization == nil || *got.Organization != *c.Organization {
		t.Errorf("Organization = %v, want %v", got.Organization, c.Organization)
	}
	if len(got.Websites) != 1 || got.Websites[0] != "https://jane.example" {
		t.Errorf("Websites = %v", got.Websites)
	}
	if got.Thumbnail == nil || got.Thumbnail.URI != "/photos/jane.jpg" || !bytes.Equal(got.Thumbnail.Data, []byte{0xFF, 0xD8}) {
		t.Errorf("Thumbnail = %+v", got.Thumbnail)
	}
	if !got.Starred {
		t.Error("Starred = false, want true")
	}
	if got.CreatedAt != c.CreatedAt || got.UpdatedAt != c.UpdatedAt {
		t.Errorf("timestamps = %d/%d, want %d/%d", got.CreatedAt, got.UpdatedAt, c.CreatedAt, c.UpdatedAt)
	}
	if got.DeletedAt != nil {
		t.Errorf("DeletedAt = %v, want nil", got.DeletedAt)
	}
}

func TestInsert_MinimalContact(t *testing.T) {
	db := openTestDB(t)

	c := newTestContact("01MIN", "", "")
	c.Nickname = "Solo"
	if err := Insert(db, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(db, "01MIN", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PhoneNumbers != nil || got.Emails != nil || got.Websites != nil {
		t.Errorf("expected nil slices, got %+v", got)
	}
	if got.Organization != nil {
		t.Errorf("Organization = %v, want nil", got.Organization)
	}
	if got.Thumbnail != nil {
		t.Errorf("Thumbnail = %v, want nil", got.Thumbnail)
	}
}

func TestInsert_OrganizationPresenceKept(t *testing.T) {
	db := openTestDB(t)

	c := newTestContact("01ORG", "A", "B")
	c.Organization = &contact.Organization{}
	if err := Insert(db, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := GetByID(db, "01ORG", false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Organization == nil {
		t.Fatal("Organization = nil, want empty organization")
	}
	if !got.Organization.IsEmpty() {
		t.Errorf("Organization = %+v, want empty", got.Organization)
	}
}

func TestInsert_UniqueConstraint(t *testing.T) {
	db := openTestDB(t)

	if err := Insert(db, newTestContact("01DUP", "A", "B")); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	err := Insert(db, newTestContact("01DUP", "C", "D"))
	if err != ErrUniqueConstraint {
		t.Fatalf("second Insert error = %v, want ErrUniqueConstraint", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := GetByID(db, "nonexistent", false)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound error, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	db := openTestDB(t)

	original := newTestContact("01REP", "Old", "Name")
	original.CreatedAt = 1000
	original.UpdatedAt = 1000
	if err := Insert(db, original); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := SoftDelete(db, "01REP"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	updated := newTestContact("01REP", "New", "Name")
	updated.CreatedAt = 2000
	updated.UpdatedAt = 2000
	if err := Replace(db, updated); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := GetByID(db, "01REP", false)
	if err != nil {
		t.Fatalf("GetByID failed (replace should undelete): %v", err)
	}
	if got.FirstName != "New" {
		t.Errorf("FirstName = %q, want New", got.FirstName)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("CreatedAt = %d, want 1000 (preserved)", got.CreatedAt)
	}
	if got.UpdatedAt != 2000 {
		t.Errorf("UpdatedAt = %d, want 2000", got.UpdatedAt)
	}

	// Replace also inserts when the ID is new.
	if err := Replace(db, newTestContact("01NEW", "Fresh", "Row")); err != nil {
		t.Fatalf("Replace (insert) failed: %v", err)
	}
	if _, err := GetByID(db, "01NEW", false); err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	db := openTestDB(t)

	if err := Insert(db, newTestContact("01DEL", "A", "B")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := SoftDelete(db, "01DEL"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	if _, err := GetByID(db, "01DEL", false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound for deleted contact, got %v", err)
	}

	got, err := GetByID(db, "01DEL", true)
	if err != nil {
		t.Fatalf("GetByID(includeDeleted) failed: %v", err)
	}
	if got.DeletedAt == nil {
		t.Error("DeletedAt should be set")
	}

	// Deleting again is NotFound
	if err := SoftDelete(db, "01DEL"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound for already deleted, got %v", err)
	}
}

func TestList_OrderingAndTotal(t *testing.T) {
	db := openTestDB(t)

	for _, c := range []*contact.Contact{
		newTestContact("01C", "Charlie", "Brown"),
		newTestContact("01A", "alice", "Zed"),
		newTestContact("01B", "Bob", "Young"),
	} {
		if err := Insert(db, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	contacts, total, err := List(db, ListFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	want := []string{"01A", "01B", "01C"}
	if len(contacts) != len(want) {
		t.Fatalf("len = %d, want %d", len(contacts), len(want))
	}
	for i, id := range want {
		if contacts[i].ID != id {
			t.Errorf("contacts[%d].ID = %s, want %s", i, contacts[i].ID, id)
		}
	}
}

func TestList_PaginationAndFilters(t *testing.T) {
	db := openTestDB(t)

	names := []string{"Anna", "Andy", "Bea", "Ben", "Cy"}
	for i, n := range names {
		c := newTestContact(string(rune('A'+i))+"01", n, "")
		c.Starred = i%2 == 0
		if err := Insert(db, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := SoftDelete(db, "E01"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	page, total, err := List(db, ListFilters{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4 (deleted excluded)", total)
	}
	if len(page) != 2 || page[0].FirstName != "Anna" || page[1].FirstName != "Bea" {
		t.Errorf("page = %v", page)
	}

	byPrefix, total, err := List(db, ListFilters{NamePrefix: "AN"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(byPrefix) != 2 {
		t.Errorf("prefix total = %d len = %d, want 2", total, len(byPrefix))
	}

	starred, _, err := List(db, ListFilters{StarredOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(starred) != 2 {
		t.Errorf("starred len = %d, want 2 (A and C; E is deleted)", len(starred))
	}

	all, total, err := List(db, ListFilters{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 5 || len(all) != 5 {
		t.Errorf("include deleted total = %d len = %d, want 5", total, len(all))
	}
}

func TestList_PrefixEscapesWildcards(t *testing.T) {
	db := openTestDB(t)

	if err := Insert(db, newTestContact("01X", "100%", "Club")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := Insert(db, newTestContact("01Y", "100", "Other")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, _, err := List(db, ListFilters{NamePrefix: "100%"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "01X" {
		t.Errorf("got %v, want only 01X", got)
	}
}

func TestListForExport(t *testing.T) {
	db := openTestDB(t)

	for _, c := range []*contact.Contact{
		newTestContact("01A", "Ann", "A"),
		newTestContact("01B", "Bob", "B"),
		newTestContact("01C", "Cat", "C"),
	} {
		if err := Insert(db, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := SoftDelete(db, "01B"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	all, err := ListForExport(db, nil, false)
	if err != nil {
		t.Fatalf("ListForExport failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "01A" || all[1].ID != "01C" {
		t.Errorf("all = %v", all)
	}

	withDeleted, err := ListForExport(db, nil, true)
	if err != nil {
		t.Fatalf("ListForExport failed: %v", err)
	}
	if len(withDeleted) != 3 {
		t.Errorf("len = %d, want 3", len(withDeleted))
	}

	picked, err := ListForExport(db, []string{"01C", "01A", "01C"}, false)
	if err != nil {
		t.Fatalf("ListForExport failed: %v", err)
	}
	if len(picked) != 2 || picked[0].ID != "01C" || picked[1].ID != "01A" {
		t.Errorf("picked = %v, want [01C 01A]", picked)
	}

	if _, err := ListForExport(db, []string{"01A", "01B"}, false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NotFound for deleted id, got %v", err)
	}
}

func TestPurgeDeleted(t *testing.T) {
	db := openTestDB(t)

	for _, id := range []string{"01A", "01B", "01C"} {
		if err := Insert(db, newTestContact(id, "X", id)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := SoftDelete(db, "01A"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	// Backdate 01B's deletion by 10 days.
	old := time.Now().Add(-10 * 24 * time.Hour).Unix()
	if _, err := db.Exec("UPDATE contacts SET deleted_at = ? WHERE id = ?", old, "01B"); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	n, err := PurgeDeleted(db, 7)
	if err != nil {
		t.Fatalf("PurgeDeleted failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1 (only 01B is older than 7 days)", n)
	}

	n, err = PurgeDeleted(db, 0)
	if err != nil {
		t.Fatalf("PurgeDeleted failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}

	if _, err := GetByID(db, "01C", false); err != nil {
		t.Errorf("active contact should survive purge: %v", err)
	}
}
