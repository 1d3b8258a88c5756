package store

import (
	"context"

	"societies/internal/models"

	"github.com/lib/pq"
)

type PermissionStore struct {
	db DB
}

func NewPermissionStore(db DB) *PermissionStore {
	return &PermissionStore{db: db}
}

const permissionColumns = `id, name, description, resource_type, action, created_at, updated_at`

type PermissionFilter struct {
	Name         string
	ResourceType string
	Action       string
}

func (s *PermissionStore) List(ctx context.Context, filter PermissionFilter, limit, offset int) ([]models.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE 1=1`
	args := []any{}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		query += ` AND name ILIKE ` + placeholder(len(args))
	}
	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		query += ` AND resource_type = ` + placeholder(len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += ` AND action = ` + placeholder(len(args))
	}
	query += ` ORDER BY created_at LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	permissions := []models.Permission{}
	err := s.db.SelectContext(ctx, &permissions, query, args...)
	return permissions, err
}

func (s *PermissionStore) GetByID(ctx context.Context, id string) (models.Permission, error) {
	var permission models.Permission
	err := s.db.GetContext(ctx, &permission, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id)
	return permission, err
}

func (s *PermissionStore) CountByName(ctx context.Context, name string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM permissions WHERE name = $1`, name)
	return count, err
}

func (s *PermissionStore) CountByIDs(ctx context.Context, ids []string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM permissions WHERE id = ANY($1)`, pq.Array(ids))
	return count, err
}

func (s *PermissionStore) CountRoleBindings(ctx context.Context, permissionID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM role_permissions WHERE permission_id = $1
	`, permissionID)
	return count, err
}

func (s *PermissionStore) Create(ctx context.Context, tx Execer, permission models.Permission) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO permissions (id, name, description, resource_type, action)
		VALUES ($1, $2, $3, $4, $5)
	`, permission.ID, permission.Name, permission.Description, permission.ResourceType, permission.Action)
	return err
}

func (s *PermissionStore) Update(ctx context.Context, tx Execer, permission models.Permission) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE permissions
		SET name = $2, description = $3, resource_type = $4, action = $5, updated_at = NOW()
		WHERE id = $1
	`, permission.ID, permission.Name, permission.Description, permission.ResourceType, permission.Action)
	return err
}

func (s *PermissionStore) Delete(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	return err
}

func (s *PermissionStore) DistinctResourceTypes(ctx context.Context) ([]string, error) {
	types := []string{}
	err := s.db.SelectContext(ctx, &types, `SELECT DISTINCT resource_type FROM permissions ORDER BY resource_type`)
	return types, err
}

func (s *PermissionStore) DistinctActions(ctx context.Context) ([]string, error) {
	actions := []string{}
	err := s.db.SelectContext(ctx, &actions, `SELECT DISTINCT action FROM permissions ORDER BY action`)
	return actions, err
}
