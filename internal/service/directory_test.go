package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/repository"
)

func newDirectoryFixture() (*DirectoryService, *fakeStudents, *fakeClasses, *fakeAnnouncements) {
	students := newFakeStudents()
	teachers := newFakeTeachers()
	classes := newFakeClasses()
	anns := newFakeAnnouncements()
	return NewDirectoryService(students, teachers, classes, anns), students, classes, anns
}

func TestCreateClassRequiresActor(t *testing.T) {
	svc, _, classes, _ := newDirectoryFixture()

	_, err := svc.CreateClass(context.Background(), Actor{}, ClassInput{ClassName: "JSS1 Gold"})
	assert.ErrorIs(t, err, ErrNoActor)
	assert.Empty(t, classes.records)
}

func TestCreateClass(t *testing.T) {
	svc, _, classes, _ := newDirectoryFixture()
	actor := Actor{UID: "admin-1", Email: "admin@nana.academy", Role: model.RoleAdmin}

	id, err := svc.CreateClass(context.Background(), actor, ClassInput{
		ClassName:    "JSS1 Gold",
		Level:        "JSS1",
		AcademicYear: "2026/2027",
		StudentIDs:   []string{"STU000001"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, model.ClassIDPrefix))
	rec := classes.records[id]
	assert.Equal(t, "admin-1", rec.CreatedBy)
	assert.True(t, rec.IsActive)
	assert.Equal(t, []string{"STU000001"}, rec.StudentIDs)
}

func TestCreateAnnouncementDefaultsAndAuthor(t *testing.T) {
	svc, _, _, anns := newDirectoryFixture()
	actor := Actor{UID: "admin-1", Email: "admin@nana.academy", Role: model.RoleAdmin}

	id, err := svc.CreateAnnouncement(context.Background(), actor, AnnouncementInput{
		Title:   "Resumption",
		Content: "School resumes on Monday.",
	})
	require.NoError(t, err)

	rec := anns.records[id]
	assert.Equal(t, "admin-1", rec.AuthorID)
	assert.Equal(t, "admin@nana.academy", rec.AuthorName)
	assert.Equal(t, []string{"all"}, rec.TargetRoles)
	assert.Nil(t, rec.ExpiryDate)
}

func TestCreateAnnouncementValidation(t *testing.T) {
	svc, _, _, _ := newDirectoryFixture()

	_, err := svc.CreateAnnouncement(context.Background(), Actor{UID: "admin-1"}, AnnouncementInput{Title: "x"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"content"}, ve.Fields)
}

func TestSoftDeleteIdempotent(t *testing.T) {
	svc, students, _, _ := newDirectoryFixture()
	students.records["STU000001"] = model.Student{StudentID: "STU000001", IsActive: true}

	require.NoError(t, svc.DeleteStudent(context.Background(), "STU000001"))
	assert.False(t, students.records["STU000001"].IsActive)

	// Second delete is a no-op, not an error.
	require.NoError(t, svc.DeleteStudent(context.Background(), "STU000001"))
	assert.False(t, students.records["STU000001"].IsActive)
}

func TestSoftDeletedStaysReadable(t *testing.T) {
	svc, students, _, _ := newDirectoryFixture()
	students.records["STU000001"] = model.Student{
		StudentID: "STU000001", IsActive: true, DateEnrolled: time.Now(),
	}
	require.NoError(t, svc.DeleteStudent(context.Background(), "STU000001"))

	// Direct lookup still works.
	s, err := svc.GetStudent(context.Background(), "STU000001")
	require.NoError(t, err)
	assert.False(t, s.IsActive)

	// Active listings exclude it, unfiltered listings include it.
	active, err := svc.ListStudents(context.Background(), repository.ListOptions{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListStudents(context.Background(), repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateStampsUpdatedAt(t *testing.T) {
	svc, students, _, _ := newDirectoryFixture()
	students.records["STU000001"] = model.Student{StudentID: "STU000001", IsActive: true}

	err := svc.UpdateStudent(context.Background(), "STU000001", map[string]any{"current_class": "JSS2"})
	require.NoError(t, err)
	assert.Equal(t, "JSS2", students.records["STU000001"].CurrentClass)
	assert.NotNil(t, students.records["STU000001"].UpdatedAt)
}

func TestUpdateMissingRecord(t *testing.T) {
	svc, _, _, _ := newDirectoryFixture()
	err := svc.UpdateStudent(context.Background(), "STU999999", map[string]any{"current_class": "JSS2"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
