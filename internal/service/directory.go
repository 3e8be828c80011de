package service

import (
	"context"
	"errors"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/repository"
)

// DirectoryService is the CRUD surface over the four record collections.
// Deletion is always soft: records are flagged inactive and stay readable
// by key and in unfiltered listings.
type DirectoryService struct {
	Students      StudentStore
	Teachers      TeacherStore
	Classes       ClassStore
	Announcements AnnouncementStore
}

func NewDirectoryService(students StudentStore, teachers TeacherStore, classes ClassStore, anns AnnouncementStore) *DirectoryService {
	return &DirectoryService{Students: students, Teachers: teachers, Classes: classes, Announcements: anns}
}

// ClassInput carries the class creation form fields.
type ClassInput struct {
	ClassName    string
	Level        string
	TeacherID    string
	AcademicYear string
	StudentIDs   []string
}

// AnnouncementInput carries the announcement creation form fields.
type AnnouncementInput struct {
	Title       string
	Content     string
	TargetRoles []string
	ExpiryDate  *time.Time
}

// CreateClass writes a new class record authored by the actor. An
// authenticated session is a precondition, checked before any write.
func (d *DirectoryService) CreateClass(ctx context.Context, actor Actor, in ClassInput) (string, error) {
	if actor.IsZero() {
		return "", ErrNoActor
	}
	var missing []string
	if in.ClassName == "" {
		missing = append(missing, "className")
	}
	if len(missing) > 0 {
		return "", &ValidationError{Fields: missing}
	}

	id, err := withIDRetry(ctx, model.ClassIDPrefix, func(ctx context.Context, id string) (bool, error) {
		return existsIn(ctx, id, func(ctx context.Context, id string) error {
			_, err := d.Classes.Get(ctx, id)
			return err
		})
	})
	if err != nil {
		return "", err
	}

	rec := model.Class{
		ClassID:      id,
		ClassName:    in.ClassName,
		Level:        in.Level,
		TeacherID:    in.TeacherID,
		AcademicYear: in.AcademicYear,
		StudentIDs:   in.StudentIDs,
		IsActive:     true,
		CreatedBy:    actor.UID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := d.Classes.Create(ctx, rec); err != nil {
		return "", err
	}
	return id, nil
}

// CreateAnnouncement writes a new announcement authored by the actor.
// TargetRoles defaults to ["all"] when the form leaves it empty.
func (d *DirectoryService) CreateAnnouncement(ctx context.Context, actor Actor, in AnnouncementInput) (string, error) {
	if actor.IsZero() {
		return "", ErrNoActor
	}
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Content == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return "", &ValidationError{Fields: missing}
	}

	id, err := withIDRetry(ctx, model.AnnouncementIDPrefix, func(ctx context.Context, id string) (bool, error) {
		return existsIn(ctx, id, func(ctx context.Context, id string) error {
			_, err := d.Announcements.Get(ctx, id)
			return err
		})
	})
	if err != nil {
		return "", err
	}

	roles := in.TargetRoles
	if len(roles) == 0 {
		roles = []string{"all"}
	}
	now := time.Now().UTC()
	rec := model.Announcement{
		AnnouncementID: id,
		Title:          in.Title,
		Content:        in.Content,
		AuthorID:       actor.UID,
		AuthorName:     actor.Email,
		TargetRoles:    roles,
		IsActive:       true,
		DatePosted:     now,
		ExpiryDate:     in.ExpiryDate,
		CreatedAt:      now,
	}
	if err := d.Announcements.Create(ctx, rec); err != nil {
		return "", err
	}
	return id, nil
}

// Listing. Options pass straight through to the repositories, which
// whitelist order columns and clamp the limit.

func (d *DirectoryService) ListStudents(ctx context.Context, opts repository.ListOptions) ([]model.Student, error) {
	return d.Students.List(ctx, opts)
}

func (d *DirectoryService) ListTeachers(ctx context.Context, opts repository.ListOptions) ([]model.Teacher, error) {
	return d.Teachers.List(ctx, opts)
}

func (d *DirectoryService) ListClasses(ctx context.Context, opts repository.ListOptions) ([]model.Class, error) {
	return d.Classes.List(ctx, opts)
}

func (d *DirectoryService) ListAnnouncements(ctx context.Context, opts repository.ListOptions) ([]model.Announcement, error) {
	return d.Announcements.List(ctx, opts)
}

func (d *DirectoryService) GetStudent(ctx context.Context, id string) (model.Student, error) {
	return d.Students.Get(ctx, id)
}

func (d *DirectoryService) GetTeacher(ctx context.Context, id string) (model.Teacher, error) {
	return d.Teachers.Get(ctx, id)
}

func (d *DirectoryService) GetClass(ctx context.Context, id string) (model.Class, error) {
	return d.Classes.Get(ctx, id)
}

func (d *DirectoryService) GetAnnouncement(ctx context.Context, id string) (model.Announcement, error) {
	return d.Announcements.Get(ctx, id)
}

// Partial updates. The repositories merge the given fields into the
// record and stamp updated_at; unknown columns are rejected there.

func (d *DirectoryService) UpdateStudent(ctx context.Context, id string, fields map[string]any) error {
	return d.Students.UpdateFields(ctx, id, fields)
}

func (d *DirectoryService) UpdateTeacher(ctx context.Context, id string, fields map[string]any) error {
	return d.Teachers.UpdateFields(ctx, id, fields)
}

func (d *DirectoryService) UpdateClass(ctx context.Context, id string, fields map[string]any) error {
	return d.Classes.UpdateFields(ctx, id, fields)
}

func (d *DirectoryService) UpdateAnnouncement(ctx context.Context, id string, fields map[string]any) error {
	return d.Announcements.UpdateFields(ctx, id, fields)
}

// Soft deletes. Idempotent: deleting an already inactive record is a
// no-op, not an error.

func (d *DirectoryService) DeleteStudent(ctx context.Context, id string) error {
	return d.Students.SoftDelete(ctx, id)
}

func (d *DirectoryService) DeleteTeacher(ctx context.Context, id string) error {
	return d.Teachers.SoftDelete(ctx, id)
}

func (d *DirectoryService) DeleteClass(ctx context.Context, id string) error {
	return d.Classes.SoftDelete(ctx, id)
}

func (d *DirectoryService) DeleteAnnouncement(ctx context.Context, id string) error {
	return d.Announcements.SoftDelete(ctx, id)
}

func existsIn(ctx context.Context, id string, get func(ctx context.Context, id string) error) (bool, error) {
	err := get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
