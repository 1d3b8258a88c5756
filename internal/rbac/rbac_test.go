package rbac

import (
	"context"
	"database/sql"
	"testing"

	"societies/internal/models"
)

type stubStore struct {
	roleNameFn          func(ctx context.Context, roleID string) (string, error)
	roleHasPermissionFn func(ctx context.Context, roleID, resourceType, action string) (bool, error)
	isSocietyAdminFn    func(ctx context.Context, userID, societyID string) (bool, error)
	residentInSocietyFn func(ctx context.Context, residentID, societyID string) (bool, error)
}

func (s stubStore) RoleName(ctx context.Context, roleID string) (string, error) {
	if s.roleNameFn == nil {
		return "", sql.ErrNoRows
	}
	return s.roleNameFn(ctx, roleID)
}

func (s stubStore) RoleHasPermission(ctx context.Context, roleID, resourceType, action string) (bool, error) {
	if s.roleHasPermissionFn == nil {
		return false, nil
	}
	return s.roleHasPermissionFn(ctx, roleID, resourceType, action)
}

func (s stubStore) IsSocietyAdmin(ctx context.Context, userID, societyID string) (bool, error) {
	if s.isSocietyAdminFn == nil {
		return false, nil
	}
	return s.isSocietyAdminFn(ctx, userID, societyID)
}

func (s stubStore) ResidentBelongsToSociety(ctx context.Context, residentID, societyID string) (bool, error) {
	if s.residentInSocietyFn == nil {
		return false, nil
	}
	return s.residentInSocietyFn(ctx, residentID, societyID)
}

func TestSystemAdminBypassesPermissionChecks(t *testing.T) {
	checker := NewChecker(stubStore{
		roleNameFn: func(context.Context, string) (string, error) { return SystemAdminRole, nil },
		roleHasPermissionFn: func(context.Context, string, string, string) (bool, error) {
			t.Fatal("system_admin must not hit the permission table")
			return false, nil
		},
	})
	allowed, err := checker.HasPermission(context.Background(), models.User{RoleID: "r1"}, "societies", "delete")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("expected system_admin to be allowed")
	}
}

func TestHasPermissionMatchesExactPair(t *testing.T) {
	checker := NewChecker(stubStore{
		roleNameFn: func(context.Context, string) (string, error) { return "society_admin", nil },
		roleHasPermissionFn: func(_ context.Context, _ string, resourceType, action string) (bool, error) {
			return resourceType == "societies" && action == "update", nil
		},
	})
	user := models.User{RoleID: "r1"}
	allowed, err := checker.HasPermission(context.Background(), user, "societies", "update")
	if err != nil || !allowed {
		t.Fatalf("expected exact pair allowed, got %v %v", allowed, err)
	}
	allowed, err = checker.HasPermission(context.Background(), user, "societies", "delete")
	if err != nil || allowed {
		t.Fatalf("expected other action denied, got %v %v", allowed, err)
	}
	allowed, err = checker.HasPermission(context.Background(), user, "residents", "update")
	if err != nil || allowed {
		t.Fatalf("expected other resource denied, got %v %v", allowed, err)
	}
}

func TestHasPermissionToleratesMissingRole(t *testing.T) {
	checker := NewChecker(stubStore{})
	allowed, err := checker.HasPermission(context.Background(), models.User{RoleID: "ghost"}, "societies", "update")
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("expected unknown role to be denied")
	}
}

func TestCheckSocietyAccessAdminBinding(t *testing.T) {
	checker := NewChecker(stubStore{
		roleNameFn: func(context.Context, string) (string, error) { return "society_admin", nil },
		isSocietyAdminFn: func(_ context.Context, userID, societyID string) (bool, error) {
			return userID == "u1" && societyID == "soc-1", nil
		},
	})
	user := models.User{ID: "u1", RoleID: "r1"}
	allowed, err := checker.CheckSocietyAccess(context.Background(), user, "soc-1", nil)
	if err != nil || !allowed {
		t.Fatalf("expected admin access, got %v %v", allowed, err)
	}
	allowed, err = checker.CheckSocietyAccess(context.Background(), user, "soc-2", nil)
	if err != nil || allowed {
		t.Fatalf("expected other society denied, got %v %v", allowed, err)
	}
}

func TestCheckSocietyAccessViaLinkedResident(t *testing.T) {
	residentID := "res-1"
	checker := NewChecker(stubStore{
		roleNameFn: func(context.Context, string) (string, error) { return "resident", nil },
		residentInSocietyFn: func(_ context.Context, rid, societyID string) (bool, error) {
			return rid == residentID && societyID == "soc-1", nil
		},
	})
	user := models.User{ID: "u1", RoleID: "r1", ResidentID: &residentID}
	allowed, err := checker.CheckSocietyAccess(context.Background(), user, "soc-1", nil)
	if err != nil || !allowed {
		t.Fatalf("expected resident access, got %v %v", allowed, err)
	}
}

func TestCheckSocietyAccessRoleAllowlist(t *testing.T) {
	checker := NewChecker(stubStore{
		roleNameFn:       func(context.Context, string) (string, error) { return "resident", nil },
		isSocietyAdminFn: func(context.Context, string, string) (bool, error) { return true, nil },
	})
	user := models.User{ID: "u1", RoleID: "r1"}
	allowed, err := checker.CheckSocietyAccess(context.Background(), user, "soc-1", []string{"society_admin"})
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("expected role outside allowlist to be denied")
	}
}
