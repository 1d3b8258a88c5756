package store

import (
	"context"
	"time"

	"societies/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, password_hash, email, full_name, role_id, resident_id, is_active,
	       last_login, created_at, updated_at`

type UserFilter struct {
	Username string
	Email    string
	IsActive *bool
	RoleID   string
}

func (s *UserStore) List(ctx context.Context, filter UserFilter, limit, offset int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []any{}
	if filter.Username != "" {
		args = append(args, "%"+filter.Username+"%")
		query += ` AND username ILIKE ` + placeholder(len(args))
	}
	if filter.Email != "" {
		args = append(args, "%"+filter.Email+"%")
		query += ` AND email ILIKE ` + placeholder(len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active = ` + placeholder(len(args))
	}
	if filter.RoleID != "" {
		args = append(args, filter.RoleID)
		query += ` AND role_id = ` + placeholder(len(args))
	}
	query += ` ORDER BY created_at LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, query, args...)
	return users, err
}

func (s *UserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return user, err
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return user, err
}

// GetByIdentifier matches either the username or the email column; the login
// form accepts both.
func (s *UserStore) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1
	`, identifier)
	return user, err
}

func (s *UserStore) CountByUsername(ctx context.Context, username string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM users WHERE username = $1`, username)
	return count, err
}

func (s *UserStore) CountByEmail(ctx context.Context, email string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM users WHERE email = $1`, email)
	return count, err
}

func (s *UserStore) CountByRole(ctx context.Context, roleID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM users WHERE role_id = $1`, roleID)
	return count, err
}

func (s *UserStore) Create(ctx context.Context, tx Execer, user models.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, email, full_name, role_id, resident_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Username, user.PasswordHash, user.Email, user.FullName, user.RoleID, user.ResidentID, user.IsActive)
	return err
}

func (s *UserStore) Update(ctx context.Context, tx Execer, user models.User) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET username = $2, email = $3, full_name = $4, role_id = $5, resident_id = $6, is_active = $7,
		    updated_at = NOW()
		WHERE id = $1
	`, user.ID, user.Username, user.Email, user.FullName, user.RoleID, user.ResidentID, user.IsActive)
	return err
}

func (s *UserStore) SetPasswordHash(ctx context.Context, tx Execer, userID, passwordHash string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, userID, passwordHash)
	return err
}

// ToggleActive flips the flag atomically and reports the new state.
func (s *UserStore) ToggleActive(ctx context.Context, tx Tx, userID string) (bool, error) {
	var active bool
	err := tx.GetContext(ctx, &active, `
		UPDATE users SET is_active = NOT is_active, updated_at = NOW() WHERE id = $1
		RETURNING is_active
	`, userID)
	return active, err
}

func (s *UserStore) SetActive(ctx context.Context, tx Execer, userID string, active bool) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, userID, active)
	return err
}

func (s *UserStore) TouchLastLogin(ctx context.Context, tx Execer, userID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET last_login = $2, updated_at = NOW() WHERE id = $1
	`, userID, at)
	return err
}
