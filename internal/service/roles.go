package service

import (
	"context"
	"log"

	"github.com/nanaacademy/academy-server/internal/model"
	"github.com/nanaacademy/academy-server/internal/repository"
)

// RoleResolver is the only read path between the identity provider and
// the rest of the application: given an identity UID it fetches the
// associated role record.
type RoleResolver struct {
	Roles RoleStore
}

func NewRoleResolver(roles RoleStore) *RoleResolver { return &RoleResolver{Roles: roles} }

// Resolve returns the role record for an identity, or ok=false when the
// identity is not provisioned. A read failure is logged and reported as
// absent; callers cannot tell the two apart and must not assume a
// default role either way.
func (r *RoleResolver) Resolve(ctx context.Context, uid string) (model.RoleRecord, bool) {
	rec, err := r.Roles.Get(ctx, uid)
	if err != nil {
		if err != repository.ErrNotFound {
			log.Printf("roles: lookup for %s failed: %v", uid, err)
		}
		return model.RoleRecord{}, false
	}
	return rec, true
}
