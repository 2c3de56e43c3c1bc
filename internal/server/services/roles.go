package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// RoleRegistry holds the super-admin, admin and verified identity sets and
// the codes that bind an identity to a privileged role.
type RoleRegistry struct {
	mu          sync.Mutex
	superAdmins map[string]struct{}
	admins      map[string]struct{}
	verified    map[string]struct{}

	adminCode  string
	superCodes []string

	ledger  *LockoutLedger
	persist *Persister
	log     logging.Logger
}

// NewRoleRegistry creates a registry with no bound identities.
//
// adminCode binds the sender as admin and any entry of superCodes binds it as
// super-admin. Unlock clears the target's record in ledger. All three identity
// sets are written through p.
func NewRoleRegistry(adminCode string, superCodes []string, ledger *LockoutLedger, p *Persister, log logging.Logger) *RoleRegistry {
	return &RoleRegistry{
		superAdmins: make(map[string]struct{}),
		admins:      make(map[string]struct{}),
		verified:    make(map[string]struct{}),
		adminCode:   adminCode,
		superCodes:  slices.Clone(superCodes),
		ledger:      ledger,
		persist:     p,
		log:         log.With("module", "roles"),
	}
}

// Load restores the three identity sets from the snapshot store.
func (r *RoleRegistry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, set := range map[string]map[string]struct{}{
		common.SnapshotSuperAdmins:   r.superAdmins,
		common.SnapshotAdmins:        r.admins,
		common.SnapshotVerifiedUsers: r.verified,
	} {
		var ids []string
		if err := r.persist.Load(ctx, key, &ids); err != nil {
			return err
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	return nil
}

// RoleOf returns id's highest role.
func (r *RoleRegistry) RoleOf(id string) models.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case has(r.superAdmins, id):
		return models.RoleSuperAdmin
	case has(r.admins, id):
		return models.RoleAdmin
	case has(r.verified, id):
		return models.RoleVerified
	default:
		return models.RoleAnonymous
	}
}

func (r *RoleRegistry) IsSuperAdmin(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return has(r.superAdmins, id)
}

func (r *RoleRegistry) IsAdmin(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return has(r.admins, id)
}

func (r *RoleRegistry) IsVerified(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return has(r.verified, id)
}

// BindSuperAdmin adds id to the super-admins when presented is one of the
// super-admin codes. matched reports a code match, added reports whether id
// was not a super-admin before.
func (r *RoleRegistry) BindSuperAdmin(ctx context.Context, id, presented string) (matched, added bool) {
	if !slices.Contains(r.superCodes, presented) {
		return false, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if has(r.superAdmins, id) {
		return true, false
	}
	r.superAdmins[id] = struct{}{}
	r.save(ctx, common.SnapshotSuperAdmins, r.superAdmins)
	r.log.Info(ctx, "super-admin bound", "identity", id)
	return true, true
}

// BindAdmin adds id to the admins when presented equals the admin-bind code.
func (r *RoleRegistry) BindAdmin(ctx context.Context, id, presented string) (matched, added bool) {
	if r.adminCode == "" || presented != r.adminCode {
		return false, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if has(r.admins, id) {
		return true, false
	}
	r.admins[id] = struct{}{}
	r.save(ctx, common.SnapshotAdmins, r.admins)
	r.log.Info(ctx, "admin bound", "identity", id)
	return true, true
}

// PromoteAdmin adds target to the admins. Only super-admins may do this.
func (r *RoleRegistry) PromoteAdmin(ctx context.Context, acting, target string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !has(r.superAdmins, acting) {
		return false
	}
	r.admins[target] = struct{}{}
	r.save(ctx, common.SnapshotAdmins, r.admins)
	r.log.Info(ctx, "admin promoted", "by", acting, "identity", target)
	return true
}

// DemoteAdmin removes target from the admins. Only super-admins may do this.
func (r *RoleRegistry) DemoteAdmin(ctx context.Context, acting, target string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !has(r.superAdmins, acting) {
		return false
	}
	delete(r.admins, target)
	r.save(ctx, common.SnapshotAdmins, r.admins)
	r.log.Info(ctx, "admin demoted", "by", acting, "identity", target)
	return true
}

// Unlock clears target's lockout and quota. Only super-admins may do this.
func (r *RoleRegistry) Unlock(ctx context.Context, acting, target string, now time.Time) bool {
	if !r.IsSuperAdmin(acting) {
		return false
	}
	r.ledger.Clear(ctx, target, now)
	r.log.Info(ctx, "identity unlocked", "by", acting, "identity", target)
	return true
}

// MarkVerified adds id to the verified users.
func (r *RoleRegistry) MarkVerified(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if has(r.verified, id) {
		return
	}
	r.verified[id] = struct{}{}
	r.save(ctx, common.SnapshotVerifiedUsers, r.verified)
}

func (r *RoleRegistry) save(ctx context.Context, key string, set map[string]struct{}) {
	r.persist.Save(ctx, key, sortedIDs(set))
}

func has(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
