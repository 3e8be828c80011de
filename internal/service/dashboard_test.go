package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanaacademy/academy-server/internal/model"
)

func newDashboardFixture() (*DashboardService, *fakeStudents, *fakeTeachers, *fakeAnnouncements) {
	students := newFakeStudents()
	teachers := newFakeTeachers()
	classes := newFakeClasses()
	anns := newFakeAnnouncements()
	return NewDashboardService(students, teachers, classes, anns, nil), students, teachers, anns
}

var adminActor = Actor{UID: "admin-1", Email: "admin@nana.academy", Role: model.RoleAdmin}

func TestDashboardGatesNonAdmins(t *testing.T) {
	svc, _, _, _ := newDashboardFixture()

	_, err := svc.Load(context.Background(), Actor{})
	assert.ErrorIs(t, err, ErrNoActor)

	_, err = svc.Load(context.Background(), Actor{UID: "t-1", Role: model.RoleTeacher})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDashboardCounts(t *testing.T) {
	svc, students, teachers, _ := newDashboardFixture()
	students.records["STU1"] = model.Student{StudentID: "STU1", IsActive: true, DateEnrolled: time.Now()}
	// Counts cover inactive records too.
	students.records["STU2"] = model.Student{StudentID: "STU2", IsActive: false, DateEnrolled: time.Now()}
	teachers.records["TCH1"] = model.Teacher{TeacherID: "TCH1", IsActive: true}

	d, err := svc.Load(context.Background(), adminActor)
	require.NoError(t, err)

	require.NotNil(t, d.Stats)
	assert.Equal(t, 2, d.Stats.Students)
	assert.Equal(t, 1, d.Stats.Teachers)
	assert.Equal(t, 0, d.Stats.Classes)
	// Recents only show active records.
	require.Len(t, d.Students, 1)
	assert.Equal(t, "STU1", d.Students[0].StudentID)
	assert.Empty(t, d.SectionErrors)
}

func TestDashboardStatsFailureKeepsRecents(t *testing.T) {
	svc, students, _, _ := newDashboardFixture()
	students.records["STU1"] = model.Student{StudentID: "STU1", IsActive: true, DateEnrolled: time.Now()}
	students.countErr = errFakeAuth

	d, err := svc.Load(context.Background(), adminActor)
	require.NoError(t, err)

	// One failed count drops the whole stats block, nothing else: the
	// dashboard renders with no counts shown.
	assert.Nil(t, d.Stats)
	assert.Contains(t, d.SectionErrors, "stats")
	require.Len(t, d.Students, 1)
	assert.Equal(t, "STU1", d.Students[0].StudentID)
}

func TestDashboardSectionsDegradeIndependently(t *testing.T) {
	svc, _, teachers, anns := newDashboardFixture()
	teachers.listErr = errFakeAuth
	anns.records["ANN1"] = model.Announcement{
		AnnouncementID: "ANN1", Title: "Hi", Content: "There", IsActive: true, DatePosted: time.Now(),
	}

	d, err := svc.Load(context.Background(), adminActor)
	require.NoError(t, err)

	assert.Contains(t, d.SectionErrors, "teachers")
	assert.Nil(t, d.Teachers)
	// The announcements section still renders.
	require.Len(t, d.Announcements, 1)
	assert.Equal(t, "ANN1", d.Announcements[0].AnnouncementID)
}
