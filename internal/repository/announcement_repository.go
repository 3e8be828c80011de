package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
)

// AnnouncementRepo stores announcements in the `announcements` table.
type AnnouncementRepo struct{ DB *sql.DB }

func NewAnnouncementRepo(db *sql.DB) *AnnouncementRepo { return &AnnouncementRepo{DB: db} }

const announcementCols = "announcement_id,title,content,author_id,author_name,target_roles," +
	"is_active,date_posted,expiry_date,created_at,updated_at"

var announcementUpdatable = map[string]bool{
	"title": true, "content": true, "target_roles": true, "expiry_date": true,
}

func scanAnnouncement(row interface{ Scan(...any) error }) (model.Announcement, error) {
	var (
		a       model.Announcement
		roles   string
		active  sql.NullBool
		expiry  sql.NullTime
		updated sql.NullTime
	)
	err := row.Scan(&a.AnnouncementID, &a.Title, &a.Content, &a.AuthorID, &a.AuthorName,
		&roles, &active, &a.DatePosted, &expiry, &a.CreatedAt, &updated)
	if err != nil {
		return model.Announcement{}, err
	}
	a.TargetRoles = unmarshalList(roles)
	a.IsActive = activeFromNull(active)
	a.ExpiryDate = timePtr(expiry)
	a.UpdatedAt = timePtr(updated)
	return a, nil
}

// Get fetches an announcement by id.
func (r *AnnouncementRepo) Get(ctx context.Context, id string) (model.Announcement, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+announcementCols+" FROM announcements WHERE announcement_id=? LIMIT 1", id)
	a, err := scanAnnouncement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Announcement{}, ErrNotFound
	}
	return a, err
}

// Create inserts an announcement under its pre-generated id.
func (r *AnnouncementRepo) Create(ctx context.Context, a model.Announcement) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO announcements ("+announcementCols+") VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		a.AnnouncementID, a.Title, a.Content, a.AuthorID, a.AuthorName,
		marshalList(a.TargetRoles), a.IsActive, a.DatePosted, a.ExpiryDate,
		a.CreatedAt, a.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicateID
	}
	return err
}

// UpdateFields merges whitelisted partial fields and stamps updated_at.
func (r *AnnouncementRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	ok, err := exists(ctx, r.DB, "announcements", "announcement_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	q, args := buildUpdate("announcements", "announcement_id", id, fields, announcementUpdatable, time.Now().UTC())
	if q == "" {
		return nil
	}
	_, err = r.DB.ExecContext(ctx, q, args...)
	return err
}

// SoftDelete marks an announcement inactive; idempotent.
func (r *AnnouncementRepo) SoftDelete(ctx context.Context, id string) error {
	ok, err := exists(ctx, r.DB, "announcements", "announcement_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE announcements SET is_active=0, updated_at=? WHERE announcement_id=?",
		time.Now().UTC(), id)
	return err
}

// List returns a single page of announcements, newest first by default.
func (r *AnnouncementRepo) List(ctx context.Context, opts ListOptions) ([]model.Announcement, error) {
	q := "SELECT " + announcementCols + " FROM announcements WHERE 1=1"
	if opts.ActiveOnly {
		q += activeFilter
	}
	q += " ORDER BY " + orderClause(opts.OrderBy, opts.Desc, "date_posted", "created_at") +
		" LIMIT ?"
	rows, err := r.DB.QueryContext(ctx, q, clampLimit(opts.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Announcement, 0, MaxListLimit)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the total number of announcement records.
func (r *AnnouncementRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM announcements").Scan(&n)
	return n, err
}
