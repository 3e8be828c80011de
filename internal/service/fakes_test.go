package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/repository"
)

// In-memory fakes for the store interfaces and the identity provider.
// They implement just enough semantics (soft delete, active filtering,
// ordering by enrolment date) for the service tests to exercise real
// behavior.

type fakeStudents struct {
	records  map[string]model.Student
	listErr  error
	countErr error
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{records: map[string]model.Student{}}
}

func (f *fakeStudents) Get(_ context.Context, id string) (model.Student, error) {
	s, ok := f.records[id]
	if !ok {
		return model.Student{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeStudents) Create(_ context.Context, s model.Student) error {
	if _, ok := f.records[s.StudentID]; ok {
		return repository.ErrDuplicateID
	}
	f.records[s.StudentID] = s
	return nil
}

func (f *fakeStudents) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	s, ok := f.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := fields["current_class"].(string); ok {
		s.CurrentClass = v
	}
	if v, ok := fields["first_name"].(string); ok {
		s.FirstName = v
	}
	now := time.Now().UTC()
	s.UpdatedAt = &now
	f.records[id] = s
	return nil
}

func (f *fakeStudents) SoftDelete(_ context.Context, id string) error {
	s, ok := f.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = false
	now := time.Now().UTC()
	s.UpdatedAt = &now
	f.records[id] = s
	return nil
}

func (f *fakeStudents) List(_ context.Context, opts repository.ListOptions) ([]model.Student, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Student
	for _, s := range f.records {
		if opts.ActiveOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Desc {
			return out[i].DateEnrolled.After(out[j].DateEnrolled)
		}
		return out[i].DateEnrolled.Before(out[j].DateEnrolled)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStudents) Count(_ context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.records), nil
}

type fakeTeachers struct {
	records  map[string]model.Teacher
	listErr  error
	countErr error
}

func newFakeTeachers() *fakeTeachers {
	return &fakeTeachers{records: map[string]model.Teacher{}}
}

func (f *fakeTeachers) Get(_ context.Context, id string) (model.Teacher, error) {
	t, ok := f.records[id]
	if !ok {
		return model.Teacher{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTeachers) Create(_ context.Context, t model.Teacher) error {
	if _, ok := f.records[t.TeacherID]; ok {
		return repository.ErrDuplicateID
	}
	f.records[t.TeacherID] = t
	return nil
}

func (f *fakeTeachers) UpdateFields(_ context.Context, id string, _ map[string]any) error {
	if _, ok := f.records[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeTeachers) SoftDelete(_ context.Context, id string) error {
	t, ok := f.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.IsActive = false
	f.records[id] = t
	return nil
}

func (f *fakeTeachers) List(_ context.Context, opts repository.ListOptions) ([]model.Teacher, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Teacher
	for _, t := range f.records {
		if opts.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeTeachers) Count(_ context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.records), nil
}

type fakeClasses struct {
	records map[string]model.Class
}

func newFakeClasses() *fakeClasses { return &fakeClasses{records: map[string]model.Class{}} }

func (f *fakeClasses) Get(_ context.Context, id string) (model.Class, error) {
	c, ok := f.records[id]
	if !ok {
		return model.Class{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeClasses) Create(_ context.Context, c model.Class) error {
	f.records[c.ClassID] = c
	return nil
}

func (f *fakeClasses) UpdateFields(_ context.Context, id string, _ map[string]any) error {
	if _, ok := f.records[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeClasses) SoftDelete(_ context.Context, id string) error {
	c, ok := f.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.IsActive = false
	f.records[id] = c
	return nil
}

func (f *fakeClasses) List(_ context.Context, _ repository.ListOptions) ([]model.Class, error) {
	var out []model.Class
	for _, c := range f.records {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClasses) Count(_ context.Context) (int, error) { return len(f.records), nil }

type fakeAnnouncements struct {
	records map[string]model.Announcement
	listErr error
}

func newFakeAnnouncements() *fakeAnnouncements {
	return &fakeAnnouncements{records: map[string]model.Announcement{}}
}

func (f *fakeAnnouncements) Get(_ context.Context, id string) (model.Announcement, error) {
	a, ok := f.records[id]
	if !ok {
		return model.Announcement{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAnnouncements) Create(_ context.Context, a model.Announcement) error {
	f.records[a.AnnouncementID] = a
	return nil
}

func (f *fakeAnnouncements) UpdateFields(_ context.Context, id string, _ map[string]any) error {
	if _, ok := f.records[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeAnnouncements) SoftDelete(_ context.Context, id string) error {
	a, ok := f.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.IsActive = false
	f.records[id] = a
	return nil
}

func (f *fakeAnnouncements) List(_ context.Context, opts repository.ListOptions) ([]model.Announcement, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Announcement
	for _, a := range f.records {
		if opts.ActiveOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAnnouncements) Count(_ context.Context) (int, error) { return len(f.records), nil }

type fakeRoles struct {
	records   map[string]model.RoleRecord
	touched   []string
	createErr error
	getErr    error
}

func newFakeRoles() *fakeRoles { return &fakeRoles{records: map[string]model.RoleRecord{}} }

func (f *fakeRoles) Get(_ context.Context, uid string) (model.RoleRecord, error) {
	if f.getErr != nil {
		return model.RoleRecord{}, f.getErr
	}
	r, ok := f.records[uid]
	if !ok {
		return model.RoleRecord{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRoles) Create(_ context.Context, rec model.RoleRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records[rec.UID] = rec
	return nil
}

func (f *fakeRoles) TouchLastLogin(_ context.Context, uid string) error {
	f.touched = append(f.touched, uid)
	return nil
}

type fakeSessions struct {
	stored  int
	revoked []string
}

func (f *fakeSessions) Store(_ context.Context, _, _ string, _ time.Time) error {
	f.stored++
	return nil
}

func (f *fakeSessions) RevokeByHash(_ context.Context, tokenHash string) error {
	f.revoked = append(f.revoked, tokenHash)
	return nil
}

// fakeProvider implements auth.Provider with scriptable failures and call
// accounting.
type fakeProvider struct {
	identities map[string]model.Identity // by email; password checked against "good"

	createErr error
	verifyErr error
	resetErr  error

	created    []string
	verifySent []string
	resetSent  []string
	signedOut  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{identities: map[string]model.Identity{}}
}

var errFakeAuth = errors.New("identity provider unavailable")

func (f *fakeProvider) CreateAccount(_ context.Context, email, _ string) (model.Identity, error) {
	if f.createErr != nil {
		return model.Identity{}, f.createErr
	}
	id := model.Identity{UID: "uid-" + email, Email: email}
	f.identities[email] = id
	f.created = append(f.created, email)
	return id, nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (model.Identity, error) {
	id, ok := f.identities[email]
	if !ok {
		return model.Identity{}, errFakeAuth
	}
	if password != "good" {
		return model.Identity{}, errFakeAuth
	}
	return id, nil
}

func (f *fakeProvider) SignOut(_ context.Context, uid string) error {
	f.signedOut = append(f.signedOut, uid)
	return nil
}

func (f *fakeProvider) SendVerificationEmail(_ context.Context, id model.Identity) error {
	if f.verifyErr != nil {
		return f.verifyErr
	}
	f.verifySent = append(f.verifySent, id.Email)
	return nil
}

func (f *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resetSent = append(f.resetSent, email)
	return nil
}
