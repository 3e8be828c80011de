// Package service implements the application's business operations:
// role resolution, session control, provisioning, the directory and the
// admin dashboard. Services consume storage through the narrow store
// interfaces below so tests can substitute in-memory fakes.
package service

import (
	"context"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/repository"
)

type StudentStore interface {
	Get(ctx context.Context, id string) (model.Student, error)
	Create(ctx context.Context, s model.Student) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, opts repository.ListOptions) ([]model.Student, error)
	Count(ctx context.Context) (int, error)
}

type TeacherStore interface {
	Get(ctx context.Context, id string) (model.Teacher, error)
	Create(ctx context.Context, t model.Teacher) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, opts repository.ListOptions) ([]model.Teacher, error)
	Count(ctx context.Context) (int, error)
}

type ClassStore interface {
	Get(ctx context.Context, id string) (model.Class, error)
	Create(ctx context.Context, c model.Class) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, opts repository.ListOptions) ([]model.Class, error)
	Count(ctx context.Context) (int, error)
}

type AnnouncementStore interface {
	Get(ctx context.Context, id string) (model.Announcement, error)
	Create(ctx context.Context, a model.Announcement) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, opts repository.ListOptions) ([]model.Announcement, error)
	Count(ctx context.Context) (int, error)
}

type RoleStore interface {
	Get(ctx context.Context, uid string) (model.RoleRecord, error)
	Create(ctx context.Context, rec model.RoleRecord) error
	TouchLastLogin(ctx context.Context, uid string) error
}

type SessionStore interface {
	Store(ctx context.Context, uid, tokenHash string, expiresAt time.Time) error
	RevokeByHash(ctx context.Context, tokenHash string) error
}

// Actor is the session context passed to every operation that stamps
// authorship or is role-gated. The session controller is the single
// writer of session state; everything else receives a copy.
type Actor struct {
	UID   string
	Email string
	Role  string
}

// IsZero reports whether no session is active.
func (a Actor) IsZero() bool { return a.UID == "" }

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// CreatedBy returns the value recorded in created_by columns: the actor
// UID, or the "system" sentinel when no session is active.
func (a Actor) CreatedBy() string {
	if a.IsZero() {
		return model.CreatedBySystem
	}
	return a.UID
}
