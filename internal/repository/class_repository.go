package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
)

// ClassRepo stores class records in the `classes` table. The teacher and
// student ids it holds are weak references; nothing is enforced.
type ClassRepo struct{ DB *sql.DB }

func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{DB: db} }

const classCols = "class_id,class_name,level,teacher_id,academic_year,student_ids," +
	"is_active,created_by,created_at,updated_at"

var classUpdatable = map[string]bool{
	"class_name": true, "level": true, "teacher_id": true,
	"academic_year": true, "student_ids": true,
}

func scanClass(row interface{ Scan(...any) error }) (model.Class, error) {
	var (
		c        model.Class
		students string
		active   sql.NullBool
		updated  sql.NullTime
	)
	err := row.Scan(&c.ClassID, &c.ClassName, &c.Level, &c.TeacherID, &c.AcademicYear,
		&students, &active, &c.CreatedBy, &c.CreatedAt, &updated)
	if err != nil {
		return model.Class{}, err
	}
	c.StudentIDs = unmarshalList(students)
	c.IsActive = activeFromNull(active)
	c.UpdatedAt = timePtr(updated)
	return c, nil
}

// Get fetches a class by id.
func (r *ClassRepo) Get(ctx context.Context, id string) (model.Class, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+classCols+" FROM classes WHERE class_id=? LIMIT 1", id)
	c, err := scanClass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Class{}, ErrNotFound
	}
	return c, err
}

// Create inserts a class record under its pre-generated id.
func (r *ClassRepo) Create(ctx context.Context, c model.Class) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO classes ("+classCols+") VALUES (?,?,?,?,?,?,?,?,?,?)",
		c.ClassID, c.ClassName, c.Level, c.TeacherID, c.AcademicYear,
		marshalList(c.StudentIDs), c.IsActive, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicateID
	}
	return err
}

// UpdateFields merges whitelisted partial fields and stamps updated_at.
func (r *ClassRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	ok, err := exists(ctx, r.DB, "classes", "class_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	q, args := buildUpdate("classes", "class_id", id, fields, classUpdatable, time.Now().UTC())
	if q == "" {
		return nil
	}
	_, err = r.DB.ExecContext(ctx, q, args...)
	return err
}

// SoftDelete marks a class inactive; idempotent.
func (r *ClassRepo) SoftDelete(ctx context.Context, id string) error {
	ok, err := exists(ctx, r.DB, "classes", "class_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE classes SET is_active=0, updated_at=? WHERE class_id=?",
		time.Now().UTC(), id)
	return err
}

// List returns a single page of classes, alphabetical by default the way
// the class picker expects.
func (r *ClassRepo) List(ctx context.Context, opts ListOptions) ([]model.Class, error) {
	q := "SELECT " + classCols + " FROM classes WHERE 1=1"
	if opts.ActiveOnly {
		q += activeFilter
	}
	q += " ORDER BY " + orderClause(opts.OrderBy, opts.Desc, "class_name", "created_at") +
		" LIMIT ?"
	rows, err := r.DB.QueryContext(ctx, q, clampLimit(opts.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Class, 0, MaxListLimit)
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the total number of class records.
func (r *ClassRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM classes").Scan(&n)
	return n, err
}
