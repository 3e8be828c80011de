package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
)

// TeacherRepo stores teacher records in the `teachers` table. Subjects and
// assigned classes are JSON arrays in TEXT columns.
type TeacherRepo struct{ DB *sql.DB }

func NewTeacherRepo(db *sql.DB) *TeacherRepo { return &TeacherRepo{DB: db} }

const teacherCols = "teacher_id,name,subjects,phone,email,assigned_classes,date_joined," +
	"is_active,has_login_account,created_by,created_at,updated_at"

var teacherUpdatable = map[string]bool{
	"name": true, "subjects": true, "phone": true, "email": true,
	"assigned_classes": true, "has_login_account": true,
}

func scanTeacher(row interface{ Scan(...any) error }) (model.Teacher, error) {
	var (
		t        model.Teacher
		subjects string
		classes  string
		active   sql.NullBool
		updated  sql.NullTime
	)
	err := row.Scan(&t.TeacherID, &t.Name, &subjects, &t.Phone, &t.Email, &classes,
		&t.DateJoined, &active, &t.HasLoginAccount, &t.CreatedBy, &t.CreatedAt, &updated)
	if err != nil {
		return model.Teacher{}, err
	}
	t.Subjects = unmarshalList(subjects)
	t.AssignedClasses = unmarshalList(classes)
	t.IsActive = activeFromNull(active)
	t.UpdatedAt = timePtr(updated)
	return t, nil
}

// Get fetches a teacher by id, including soft-deleted records.
func (r *TeacherRepo) Get(ctx context.Context, id string) (model.Teacher, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+teacherCols+" FROM teachers WHERE teacher_id=? LIMIT 1", id)
	t, err := scanTeacher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Teacher{}, ErrNotFound
	}
	return t, err
}

// Create inserts a teacher record under its pre-generated id.
func (r *TeacherRepo) Create(ctx context.Context, t model.Teacher) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO teachers ("+teacherCols+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		t.TeacherID, t.Name, marshalList(t.Subjects), t.Phone, t.Email,
		marshalList(t.AssignedClasses), t.DateJoined, t.IsActive, t.HasLoginAccount,
		t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicateID
	}
	return err
}

// UpdateFields merges whitelisted partial fields and stamps updated_at.
// Slice-valued fields must arrive pre-marshalled as JSON strings.
func (r *TeacherRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	ok, err := exists(ctx, r.DB, "teachers", "teacher_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	q, args := buildUpdate("teachers", "teacher_id", id, fields, teacherUpdatable, time.Now().UTC())
	if q == "" {
		return nil
	}
	_, err = r.DB.ExecContext(ctx, q, args...)
	return err
}

// SoftDelete marks a teacher inactive; idempotent.
func (r *TeacherRepo) SoftDelete(ctx context.Context, id string) error {
	ok, err := exists(ctx, r.DB, "teachers", "teacher_id", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE teachers SET is_active=0, updated_at=? WHERE teacher_id=?",
		time.Now().UTC(), id)
	return err
}

// List returns a single page of teachers.
func (r *TeacherRepo) List(ctx context.Context, opts ListOptions) ([]model.Teacher, error) {
	q := "SELECT " + teacherCols + " FROM teachers WHERE 1=1"
	if opts.ActiveOnly {
		q += activeFilter
	}
	q += " ORDER BY " + orderClause(opts.OrderBy, opts.Desc, "date_joined", "created_at", "name") +
		" LIMIT ?"
	rows, err := r.DB.QueryContext(ctx, q, clampLimit(opts.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Teacher, 0, MaxListLimit)
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the total number of teacher records.
func (r *TeacherRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM teachers").Scan(&n)
	return n, err
}
