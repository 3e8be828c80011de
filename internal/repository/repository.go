// Package repository implements MySQL-backed storage for identities, role
// records, sessions, auth tokens and the four directory collections
// (students, teachers, classes, announcements). Repositories expose
// sentinel errors so that handlers and services can map failures without
// string matching.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist. Callers must
	// not assume a default: for role records this means "not provisioned".
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned when an insert collides on a primary key.
	// Directory ids are timestamp-derived and can collide within the same
	// millisecond truncation window; callers regenerate and retry.
	ErrDuplicateID = errors.New("record id already exists")

	// ErrEmailExists is returned when an identity insert collides on the
	// unique email index.
	ErrEmailExists = errors.New("email already exists")
)

// ListOptions controls directory listings. Listings are a single fixed-size
// page ordered by one whitelisted column. ActiveOnly keeps rows whose
// is_active column is 1 or NULL; legacy rows predate the column and are
// treated as active.
type ListOptions struct {
	OrderBy    string
	Desc       bool
	Limit      int
	ActiveOnly bool
}

// MaxListLimit caps every directory listing.
const MaxListLimit = 50

// clampLimit applies the default and maximum page size.
func clampLimit(n int) int {
	if n <= 0 || n > MaxListLimit {
		return MaxListLimit
	}
	return n
}

// orderClause resolves the ORDER BY column against a whitelist, falling
// back to the first entry. The whitelist keeps request parameters out of
// raw SQL.
func orderClause(requested string, desc bool, allowed ...string) string {
	col := allowed[0]
	for _, a := range allowed {
		if a == requested {
			col = a
			break
		}
	}
	if desc {
		return col + " DESC"
	}
	return col
}

const activeFilter = " AND (is_active IS NULL OR is_active = 1)"

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// marshalList serializes a string slice for a JSON TEXT column. nil is
// stored as an empty array so reads never produce null.
func marshalList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// unmarshalList deserializes a JSON TEXT column into a string slice.
func unmarshalList(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{}
	}
	return out
}

// activeFromNull maps a nullable is_active column to a bool; NULL reads as
// active for legacy rows.
func activeFromNull(b sql.NullBool) bool {
	if !b.Valid {
		return true
	}
	return b.Bool
}

// timePtr maps a nullable timestamp column to *time.Time.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// exists reports whether a row with the given key is present. Update and
// soft-delete distinguish "missing record" from "nothing changed" with an
// explicit existence check, since MySQL reports zero affected rows for
// both.
func exists(ctx context.Context, db *sql.DB, table, keyCol, id string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE "+keyCol+"=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// buildUpdate renders a partial UPDATE statement from a field map using a
// column whitelist. Unknown fields are ignored rather than rejected so
// callers can pass form payloads through as-is. Keys are sorted so the
// statement is deterministic. Returns empty SQL when nothing matched.
func buildUpdate(table, keyCol, id string, fields map[string]any, allowed map[string]bool, now time.Time) (string, []any) {
	cols := make([]string, 0, len(fields))
	for k := range fields {
		if allowed[k] {
			cols = append(cols, k)
		}
	}
	if len(cols) == 0 {
		return "", nil
	}
	sort.Strings(cols)

	var sb strings.Builder
	sb.WriteString("UPDATE " + table + " SET ")
	args := make([]any, 0, len(cols)+2)
	for i, c := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c + "=?")
		args = append(args, fields[c])
	}
	sb.WriteString(", updated_at=? WHERE " + keyCol + "=?")
	args = append(args, now, id)
	return sb.String(), args
}
