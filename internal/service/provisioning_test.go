package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanaacademy/academy-server/internal/model"
)

func newProvisioningFixture() (*ProvisioningService, *fakeProvider, *fakeRoles, *fakeStudents, *fakeTeachers) {
	provider := newFakeProvider()
	roles := newFakeRoles()
	students := newFakeStudents()
	teachers := newFakeTeachers()
	svc := NewProvisioningService(provider, roles, students, teachers)
	return svc, provider, roles, students, teachers
}

func TestProvisionStudentWithoutLogin(t *testing.T) {
	svc, provider, _, students, _ := newProvisioningFixture()

	res, err := svc.ProvisionStudent(context.Background(), Actor{}, StudentInput{
		FirstName:    "Ada",
		LastName:     "Obi",
		StudentEmail: "ada@nana.academy",
	})
	require.NoError(t, err)

	// No identity-provider traffic at all when no login is requested.
	assert.Empty(t, provider.created)
	assert.Empty(t, provider.verifySent)
	assert.False(t, res.HasLogin)
	assert.Empty(t, res.GeneratedPassword)

	rec := students.records[res.RecordID]
	assert.False(t, rec.HasLoginAccount)
	assert.Equal(t, model.CreatedBySystem, rec.CreatedBy)
	assert.Equal(t, "Ada Obi", rec.FullName)
	assert.True(t, rec.IsActive)
	assert.True(t, strings.HasPrefix(res.RecordID, model.StudentIDPrefix))
}

func TestProvisionStudentValidation(t *testing.T) {
	svc, provider, _, students, _ := newProvisioningFixture()

	_, err := svc.ProvisionStudent(context.Background(), Actor{}, StudentInput{FirstName: "Ada"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "lastName")
	assert.Contains(t, ve.Fields, "studentEmail")

	// Validation fails before any remote call or write.
	assert.Empty(t, provider.created)
	assert.Empty(t, students.records)
}

func TestProvisionStudentGeneratedPassword(t *testing.T) {
	svc, provider, roles, students, _ := newProvisioningFixture()
	actor := Actor{UID: "admin-1", Email: "admin@nana.academy", Role: model.RoleAdmin}

	res, err := svc.ProvisionStudent(context.Background(), actor, StudentInput{
		FirstName:    "Ada",
		LastName:     "Obi",
		StudentEmail: "ada@nana.academy",
		CreateLogin:  true,
	})
	require.NoError(t, err)

	assert.True(t, res.HasLogin)
	assert.Len(t, res.GeneratedPassword, 8)
	// Generated password means both mails go out.
	assert.Equal(t, []string{"ada@nana.academy"}, provider.verifySent)
	assert.Equal(t, []string{"ada@nana.academy"}, provider.resetSent)

	role := roles.records["uid-ada@nana.academy"]
	assert.Equal(t, model.RoleStudent, role.Role)
	assert.Equal(t, res.RecordID, role.StudentID)
	assert.Equal(t, "Ada Obi", role.DisplayName)

	assert.Equal(t, "admin-1", students.records[res.RecordID].CreatedBy)
	assert.True(t, students.records[res.RecordID].HasLoginAccount)
}

func TestProvisionStudentSuppliedPasswordSkipsReset(t *testing.T) {
	svc, provider, _, _, _ := newProvisioningFixture()

	res, err := svc.ProvisionStudent(context.Background(), Actor{UID: "admin-1"}, StudentInput{
		FirstName:    "Ada",
		LastName:     "Obi",
		StudentEmail: "ada@nana.academy",
		CreateLogin:  true,
		Password:     "chosen-by-admin",
	})
	require.NoError(t, err)

	assert.Empty(t, res.GeneratedPassword)
	assert.Equal(t, []string{"ada@nana.academy"}, provider.verifySent)
	assert.Empty(t, provider.resetSent)
}

func TestProvisionStudentSwallowsLoginFailure(t *testing.T) {
	svc, provider, roles, students, _ := newProvisioningFixture()
	provider.createErr = errFakeAuth

	res, err := svc.ProvisionStudent(context.Background(), Actor{UID: "admin-1"}, StudentInput{
		FirstName:    "Ada",
		LastName:     "Obi",
		StudentEmail: "ada@nana.academy",
		CreateLogin:  true,
	})
	// The student record is written anyway, without a login.
	require.NoError(t, err)
	assert.False(t, res.HasLogin)
	assert.Empty(t, res.GeneratedPassword)
	assert.False(t, students.records[res.RecordID].HasLoginAccount)
	assert.Empty(t, roles.records)
}

func TestProvisionTeacherAbortsOnLoginFailure(t *testing.T) {
	svc, provider, roles, _, teachers := newProvisioningFixture()
	provider.verifyErr = errFakeAuth

	_, err := svc.ProvisionTeacher(context.Background(), Actor{UID: "admin-1"}, TeacherInput{
		Name:        "Mr. Bello",
		Email:       "bello@nana.academy",
		CreateLogin: true,
	})
	// Teacher provisioning is all-or-nothing: no domain record either.
	require.Error(t, err)
	assert.Empty(t, teachers.records)
	assert.Empty(t, roles.records)
}

func TestProvisionTeacherSuccess(t *testing.T) {
	svc, _, roles, _, teachers := newProvisioningFixture()

	res, err := svc.ProvisionTeacher(context.Background(), Actor{UID: "admin-1"}, TeacherInput{
		Name:        "Mr. Bello",
		Email:       "bello@nana.academy",
		Subjects:    []string{"Math"},
		CreateLogin: true,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.RecordID, model.TeacherIDPrefix))
	rec := teachers.records[res.RecordID]
	assert.True(t, rec.HasLoginAccount)
	assert.Equal(t, []string{"Math"}, rec.Subjects)
	assert.Equal(t, res.RecordID, roles.records["uid-bello@nana.academy"].TeacherID)
	assert.Equal(t, model.RoleTeacher, roles.records["uid-bello@nana.academy"].Role)
}

func TestWithIDRetryExhausts(t *testing.T) {
	_, err := withIDRetry(context.Background(), model.StudentIDPrefix,
		func(context.Context, string) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestWithIDRetryReturnsFreeID(t *testing.T) {
	id, err := withIDRetry(context.Background(), model.ClassIDPrefix,
		func(context.Context, string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, model.ClassIDPrefix))
	assert.Len(t, id, len(model.ClassIDPrefix)+6)
}
