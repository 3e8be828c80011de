package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nanaacademy/academy-server/internal/auth"
	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/repository"
	"github.com/nanaacademy/academy-server/internal/utils"
)

// idAllocAttempts bounds regeneration when a freshly built record id is
// already taken. Ids are timestamp-derived so collisions clear within a
// millisecond; three attempts is plenty.
const idAllocAttempts = 3

// withIDRetry allocates a record id for the given prefix, checking the
// store and regenerating on collision. Existing records are never
// overwritten: after the attempt budget the operation fails with
// ErrIDExhausted.
func withIDRetry(ctx context.Context, prefix string, taken func(ctx context.Context, id string) (bool, error)) (string, error) {
	for i := 0; i < idAllocAttempts; i++ {
		id := utils.NewRecordID(prefix)
		inUse, err := taken(ctx, id)
		if err != nil {
			return "", err
		}
		if !inUse {
			return id, nil
		}
		time.Sleep(time.Millisecond)
	}
	return "", ErrIDExhausted
}

// StudentInput carries the provisioning form fields for a student.
type StudentInput struct {
	FirstName    string
	LastName     string
	Gender       string
	DateOfBirth  string
	CurrentClass string
	ParentName   string
	ParentPhone  string
	ParentEmail  string
	StudentEmail string
	HomeAddress  string
	PhotoURL     string
	CreateLogin  bool
	Password     string // optional; generated when empty and CreateLogin is set
}

// TeacherInput carries the provisioning form fields for a teacher.
type TeacherInput struct {
	Name            string
	Email           string
	Phone           string
	Subjects        []string
	AssignedClasses []string
	CreateLogin     bool
	Password        string
}

// ProvisionResult reports what a provisioning call actually did.
// GeneratedPassword is set only when a password was generated (not
// supplied) and the login account was actually created; it is handed to
// the admin out-of-band and never persisted in plaintext. HasLogin
// reflects the real outcome, which for students can be false even though
// a login was requested.
type ProvisionResult struct {
	RecordID          string
	GeneratedPassword string
	HasLogin          bool
}

// ProvisioningService creates identity, role record and domain record as
// one logical, non-atomic operation. The teacher path is all-or-nothing
// up to the domain write; the student path tolerates a failed login
// sub-step and records the student anyway.
type ProvisioningService struct {
	Provider auth.Provider
	Roles    RoleStore
	Students StudentStore
	Teachers TeacherStore
}

func NewProvisioningService(p auth.Provider, roles RoleStore, students StudentStore, teachers TeacherStore) *ProvisioningService {
	return &ProvisioningService{Provider: p, Roles: roles, Students: students, Teachers: teachers}
}

// ProvisionStudent validates the input, allocates a student id, attempts
// login creation when requested and writes the student record. A failure
// in the login sub-step is logged and swallowed: the student record is
// written regardless, with HasLoginAccount=false.
func (p *ProvisioningService) ProvisionStudent(ctx context.Context, actor Actor, in StudentInput) (ProvisionResult, error) {
	var missing []string
	if in.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if in.LastName == "" {
		missing = append(missing, "lastName")
	}
	if in.StudentEmail == "" {
		missing = append(missing, "studentEmail")
	}
	if len(missing) > 0 {
		return ProvisionResult{}, &ValidationError{Fields: missing}
	}

	id, err := withIDRetry(ctx, model.StudentIDPrefix, func(ctx context.Context, id string) (bool, error) {
		return p.studentExists(ctx, id)
	})
	if err != nil {
		return ProvisionResult{}, err
	}

	fullName := in.FirstName + " " + in.LastName
	var hasLogin bool
	var generated string
	if in.CreateLogin {
		gen, err := p.createLogin(ctx, loginSpec{
			email:       in.StudentEmail,
			password:    in.Password,
			displayName: fullName,
			role:        model.RoleStudent,
			studentID:   id,
		})
		if err != nil {
			// Student provisioning tolerates a failed login sub-step.
			log.Printf("provision: login creation for student %s failed: %v", id, err)
		} else {
			hasLogin = true
			generated = gen
		}
	}

	now := time.Now().UTC()
	rec := model.Student{
		StudentID:       id,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		FullName:        fullName,
		Gender:          in.Gender,
		DateOfBirth:     in.DateOfBirth,
		CurrentClass:    in.CurrentClass,
		ParentName:      in.ParentName,
		ParentPhone:     in.ParentPhone,
		ParentEmail:     in.ParentEmail,
		StudentEmail:    in.StudentEmail,
		HomeAddress:     in.HomeAddress,
		PhotoURL:        in.PhotoURL,
		DateEnrolled:    now,
		IsActive:        true,
		HasLoginAccount: hasLogin,
		CreatedBy:       actor.CreatedBy(),
		CreatedAt:       now,
	}
	if err := p.Students.Create(ctx, rec); err != nil {
		return ProvisionResult{}, err
	}
	return ProvisionResult{RecordID: id, GeneratedPassword: generated, HasLogin: hasLogin}, nil
}

// ProvisionTeacher validates the input, allocates a teacher id, attempts
// login creation when requested and writes the teacher record. Unlike the
// student path, any failure in the login sub-step aborts the operation:
// no teacher record is written.
func (p *ProvisioningService) ProvisionTeacher(ctx context.Context, actor Actor, in TeacherInput) (ProvisionResult, error) {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return ProvisionResult{}, &ValidationError{Fields: missing}
	}

	id, err := withIDRetry(ctx, model.TeacherIDPrefix, func(ctx context.Context, id string) (bool, error) {
		return p.teacherExists(ctx, id)
	})
	if err != nil {
		return ProvisionResult{}, err
	}

	var hasLogin bool
	var generated string
	if in.CreateLogin {
		gen, err := p.createLogin(ctx, loginSpec{
			email:       in.Email,
			password:    in.Password,
			displayName: in.Name,
			role:        model.RoleTeacher,
			teacherID:   id,
		})
		if err != nil {
			return ProvisionResult{}, err
		}
		hasLogin = true
		generated = gen
	}

	now := time.Now().UTC()
	rec := model.Teacher{
		TeacherID:       id,
		Name:            in.Name,
		Subjects:        in.Subjects,
		Phone:           in.Phone,
		Email:           in.Email,
		AssignedClasses: in.AssignedClasses,
		DateJoined:      now,
		IsActive:        true,
		HasLoginAccount: hasLogin,
		CreatedBy:       actor.CreatedBy(),
		CreatedAt:       now,
	}
	if err := p.Teachers.Create(ctx, rec); err != nil {
		return ProvisionResult{}, err
	}
	return ProvisionResult{RecordID: id, GeneratedPassword: generated, HasLogin: hasLogin}, nil
}

type loginSpec struct {
	email       string
	password    string
	displayName string
	role        string
	studentID   string
	teacherID   string
}

// createLogin runs the login-creation sub-step: generate a password when
// none is supplied, create the identity, queue the verification mail,
// queue a password-reset mail only for generated passwords, then write
// the role record. Returns the generated plaintext password, or "" when
// the caller supplied one.
func (p *ProvisioningService) createLogin(ctx context.Context, spec loginSpec) (string, error) {
	password := spec.password
	generated := ""
	if password == "" {
		pw, err := auth.GeneratePassword()
		if err != nil {
			return "", err
		}
		password = pw
		generated = pw
	}

	id, err := p.Provider.CreateAccount(ctx, spec.email, password)
	if err != nil {
		return "", err
	}
	if err := p.Provider.SendVerificationEmail(ctx, id); err != nil {
		return "", err
	}
	if generated != "" {
		// A reset mail lets the user replace the password the admin was
		// handed; skipped when they chose their own.
		if err := p.Provider.SendPasswordReset(ctx, id.Email); err != nil {
			return "", err
		}
	}

	rec := model.RoleRecord{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: spec.displayName,
		Role:        spec.role,
		StudentID:   spec.studentID,
		TeacherID:   spec.teacherID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.Roles.Create(ctx, rec); err != nil {
		return "", err
	}
	return generated, nil
}

func (p *ProvisioningService) studentExists(ctx context.Context, id string) (bool, error) {
	_, err := p.Students.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *ProvisioningService) teacherExists(ctx context.Context, id string) (bool, error) {
	_, err := p.Teachers.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
