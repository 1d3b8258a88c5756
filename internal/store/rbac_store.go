package store

import "context"

// RBACStore answers the handful of indexed lookups behind permission
// resolution. It deliberately has no write methods; grants are managed
// through the role and permission stores.
type RBACStore struct {
	db DB
}

func NewRBACStore(db DB) *RBACStore {
	return &RBACStore{db: db}
}

func (s *RBACStore) RoleName(ctx context.Context, roleID string) (string, error) {
	var name string
	err := s.db.GetContext(ctx, &name, `SELECT name FROM roles WHERE id = $1`, roleID)
	return name, err
}

func (s *RBACStore) RoleHasPermission(ctx context.Context, roleID, resourceType, action string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1)
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1 AND p.resource_type = $2 AND p.action = $3
	`, roleID, resourceType, action)
	return count > 0, err
}

func (s *RBACStore) IsSocietyAdmin(ctx context.Context, userID, societyID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM society_admins WHERE user_id = $1 AND society_id = $2
	`, userID, societyID)
	return count > 0, err
}

func (s *RBACStore) ResidentBelongsToSociety(ctx context.Context, residentID, societyID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM residents WHERE id = $1 AND society_id = $2
	`, residentID, societyID)
	return count > 0, err
}
