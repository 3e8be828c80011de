package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
)

// StudentRepo stores student records in the `students` table. Records are
// never physically removed; SoftDelete clears is_active and deleted rows
// stay readable by key and in non-filtered listings.
type StudentRepo struct{ DB *sql.DB }

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{DB: db} }

const studentCols = "student_id,first_name,last_name,full_name,gender,date_of_birth,current_class," +
	"parent_name,parent_phone,parent_email,student_email,home_address,photo_url,date_enrolled," +
	"is_active,has_login_account,created_by,created_at,updated_at"

// studentUpdatable whitelists the columns a partial update may touch.
var studentUpdatable = map[string]bool{
	"first_name": true, "last_name": true, "full_name": true, "gender": true,
	"date_of_birth": true, "current_class": true, "parent_name": true,
	"parent_phone": true, "parent_email": true, "student_email": true,
	"home_address": true, "photo_url": true, "has_login_account": true,
}

func scanStudent(row interface{ Scan(...any) error }) (model.Student, error) {
	var (
		s       model.Student
		active  sql.NullBool
		updated sql.NullTime
	)
	err := row.Scan(&s.StudentID, &s.FirstName, &s.LastName, &s.FullName, &s.Gender,
		&s.DateOfBirth, &s.CurrentClass, &s.ParentName, &s.ParentPhone, &s.ParentEmail,
		&s.StudentEmail, &s.HomeAddress, &s.PhotoURL, &s.DateEnrolled,
		&active, &s.HasLoginAccount, &s.CreatedBy, &s.CreatedAt, &updated)
	if err != nil {
		return model.Student{}, err
	}
	s.IsActive = activeFromNull(active)
	s.UpdatedAt = timePtr(updated)
	return s, nil
}

// Get fetches a student by id, including soft-deleted records.
func (r *StudentRepo) Get(ctx context.Context, id string) (model.Student, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+studentCols+" FROM students WHERE student_id=? LIMIT 1", id)
	s, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Student{}, ErrNotFound
	}
	return s, err
}

// Create inserts a student record under its pre-generated id. A primary
// key collision surfaces as ErrDuplicateID so the caller can regenerate.
func (r *StudentRepo) Create(ctx context.Context, s model.Student) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO students ("+studentCols+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		s.StudentID, s.FirstName, s.LastName, s.FullName, s.Gender, s.DateOfBirth,
		s.CurrentClass, s.ParentName, s.ParentPhone, s.ParentEmail, s.StudentEmail,
		s.HomeAddress, s.PhotoURL, s.DateEnrolled, s.IsActive, s.HasLoginAccount,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicateID
	}
	return err
}

// UpdateFields merges whitelisted partial fields into an existing record
// and stamps updated_at. Unknown fields are ignored.
func (r *StudentRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	ok, err := exists(ctx, r.DB, "students", "student_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	q, args := buildUpdate("students", "student_id", id, fields, studentUpdatable, time.Now().UTC())
	if q == "" {
		return nil
	}
	_, err = r.DB.ExecContext(ctx, q, args...)
	return err
}

// SoftDelete marks a student inactive. Calling it again on an already
// deleted record succeeds and leaves is_active false.
func (r *StudentRepo) SoftDelete(ctx context.Context, id string) error {
	ok, err := exists(ctx, r.DB, "students", "student_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE students SET is_active=0, updated_at=? WHERE student_id=?",
		time.Now().UTC(), id)
	return err
}

// List returns a single page of students ordered by one whitelisted
// column, newest first by default.
func (r *StudentRepo) List(ctx context.Context, opts ListOptions) ([]model.Student, error) {
	q := "SELECT " + studentCols + " FROM students WHERE 1=1"
	if opts.ActiveOnly {
		q += activeFilter
	}
	q += " ORDER BY " + orderClause(opts.OrderBy, opts.Desc, "date_enrolled", "created_at", "full_name") +
		" LIMIT ?"
	rows, err := r.DB.QueryContext(ctx, q, clampLimit(opts.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Student, 0, MaxListLimit)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the total number of student records, active or not, the
// way the dashboard counts whole collections.
func (r *StudentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&n)
	return n, err
}
