package rbac

import (
	"context"
	"database/sql"
	"errors"

	"societies/internal/models"
)

// SystemAdminRole bypasses every permission check.
const SystemAdminRole = "system_admin"

type Store interface {
	RoleName(ctx context.Context, roleID string) (string, error)
	RoleHasPermission(ctx context.Context, roleID, resourceType, action string) (bool, error)
	IsSocietyAdmin(ctx context.Context, userID, societyID string) (bool, error)
	ResidentBelongsToSociety(ctx context.Context, residentID, societyID string) (bool, error)
}

type Checker struct {
	store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// HasPermission reports whether the user's role grants the exact
// (resourceType, action) pair. system_admin passes unconditionally; there is
// no wildcard expansion beyond that.
func (c *Checker) HasPermission(ctx context.Context, user models.User, resourceType, action string) (bool, error) {
	roleName, err := c.store.RoleName(ctx, user.RoleID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if roleName == SystemAdminRole {
		return true, nil
	}
	return c.store.RoleHasPermission(ctx, user.RoleID, resourceType, action)
}

// CheckSocietyAccess reports whether the user may act on the society: system
// admins always may; otherwise the user must hold one of allowedRoleNames
// (when given) and either administer the society or live in it.
func (c *Checker) CheckSocietyAccess(ctx context.Context, user models.User, societyID string, allowedRoleNames []string) (bool, error) {
	roleName, err := c.store.RoleName(ctx, user.RoleID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if roleName == SystemAdminRole {
		return true, nil
	}
	if len(allowedRoleNames) > 0 {
		allowed := false
		for _, name := range allowedRoleNames {
			if roleName == name {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, nil
		}
	}
	isAdmin, err := c.store.IsSocietyAdmin(ctx, user.ID, societyID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}
	if user.ResidentID != nil {
		inSociety, err := c.store.ResidentBelongsToSociety(ctx, *user.ResidentID, societyID)
		if err != nil {
			return false, err
		}
		if inSociety {
			return true, nil
		}
	}
	return false, nil
}
