package store

import (
	"context"

	"societies/internal/models"
)

type RoleStore struct {
	db DB
}

func NewRoleStore(db DB) *RoleStore {
	return &RoleStore{db: db}
}

func (s *RoleStore) List(ctx context.Context, name string, limit, offset int) ([]models.Role, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM roles`
	args := []any{}
	if name != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+name+"%")
	}
	query += ` ORDER BY created_at LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	roles := []models.Role{}
	err := s.db.SelectContext(ctx, &roles, query, args...)
	return roles, err
}

func (s *RoleStore) GetByID(ctx context.Context, id string) (models.Role, error) {
	var role models.Role
	err := s.db.GetContext(ctx, &role, `
		SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1
	`, id)
	return role, err
}

func (s *RoleStore) CountByName(ctx context.Context, name string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM roles WHERE name = $1`, name)
	return count, err
}

func (s *RoleStore) Create(ctx context.Context, tx Execer, role models.Role) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO roles (id, name, description) VALUES ($1, $2, $3)
	`, role.ID, role.Name, role.Description)
	return err
}

func (s *RoleStore) Update(ctx context.Context, tx Execer, role models.Role) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE roles SET name = $2, description = $3, updated_at = NOW() WHERE id = $1
	`, role.ID, role.Name, role.Description)
	return err
}

func (s *RoleStore) Delete(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return err
}

func (s *RoleStore) ListPermissions(ctx context.Context, roleID string) ([]models.Permission, error) {
	permissions := []models.Permission{}
	err := s.db.SelectContext(ctx, &permissions, `
		SELECT p.id, p.name, p.description, p.resource_type, p.action, p.created_at, p.updated_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name
	`, roleID)
	return permissions, err
}

func (s *RoleStore) HasRolePermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM role_permissions WHERE role_id = $1 AND permission_id = $2
	`, roleID, permissionID)
	return count > 0, err
}

func (s *RoleStore) GrantPermission(ctx context.Context, tx Execer, id, roleID, permissionID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO role_permissions (id, role_id, permission_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, id, roleID, permissionID)
	return err
}

func (s *RoleStore) RevokePermission(ctx context.Context, tx Execer, roleID, permissionID string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2
	`, roleID, permissionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *RoleStore) ClearPermissions(ctx context.Context, tx Execer, roleID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID)
	return err
}
