package store

import (
	"context"

	"societies/internal/models"
)

type SocietyAdminStore struct {
	db DB
}

func NewSocietyAdminStore(db DB) *SocietyAdminStore {
	return &SocietyAdminStore{db: db}
}

const societyAdminColumns = `id, user_id, society_id, is_primary_admin, created_at, updated_at`

type SocietyAdminFilter struct {
	UserID         string
	SocietyID      string
	IsPrimaryAdmin *bool
}

func (s *SocietyAdminStore) List(ctx context.Context, filter SocietyAdminFilter, limit, offset int) ([]models.SocietyAdmin, error) {
	query := `SELECT ` + societyAdminColumns + ` FROM society_admins WHERE 1=1`
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += ` AND user_id = ` + placeholder(len(args))
	}
	if filter.SocietyID != "" {
		args = append(args, filter.SocietyID)
		query += ` AND society_id = ` + placeholder(len(args))
	}
	if filter.IsPrimaryAdmin != nil {
		args = append(args, *filter.IsPrimaryAdmin)
		query += ` AND is_primary_admin = ` + placeholder(len(args))
	}
	query += ` ORDER BY created_at LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	admins := []models.SocietyAdmin{}
	err := s.db.SelectContext(ctx, &admins, query, args...)
	return admins, err
}

func (s *SocietyAdminStore) GetByID(ctx context.Context, id string) (models.SocietyAdmin, error) {
	var admin models.SocietyAdmin
	err := s.db.GetContext(ctx, &admin, `SELECT `+societyAdminColumns+` FROM society_admins WHERE id = $1`, id)
	return admin, err
}

func (s *SocietyAdminStore) CountBinding(ctx context.Context, userID, societyID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM society_admins WHERE user_id = $1 AND society_id = $2
	`, userID, societyID)
	return count, err
}

func (s *SocietyAdminStore) Create(ctx context.Context, tx Execer, admin models.SocietyAdmin) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO society_admins (id, user_id, society_id, is_primary_admin)
		VALUES ($1, $2, $3, $4)
	`, admin.ID, admin.UserID, admin.SocietyID, admin.IsPrimaryAdmin)
	return err
}

func (s *SocietyAdminStore) Update(ctx context.Context, tx Execer, admin models.SocietyAdmin) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE society_admins
		SET user_id = $2, society_id = $3, is_primary_admin = $4, updated_at = NOW()
		WHERE id = $1
	`, admin.ID, admin.UserID, admin.SocietyID, admin.IsPrimaryAdmin)
	return err
}

// DemotePrimary clears the primary flag on every admin of the society except
// the one named, keeping the at-most-one-primary invariant. Runs inside the
// caller's transaction.
func (s *SocietyAdminStore) DemotePrimary(ctx context.Context, tx Execer, societyID, exceptID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE society_admins
		SET is_primary_admin = FALSE, updated_at = NOW()
		WHERE society_id = $1 AND is_primary_admin = TRUE AND id <> $2
	`, societyID, exceptID)
	return err
}

func (s *SocietyAdminStore) Delete(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM society_admins WHERE id = $1`, id)
	return err
}

func (s *SocietyAdminStore) ListAdministeredSocieties(ctx context.Context, userID string) ([]models.Society, error) {
	societies := []models.Society{}
	err := s.db.SelectContext(ctx, &societies, `
		SELECT s.id, s.name, s.address, s.city, s.state, s.zipcode, s.country, s.contact_email, s.contact_phone,
		       s.registration_number, s.registration_date, s.total_units, s.is_active, s.created_at, s.updated_at
		FROM societies s
		JOIN society_admins sa ON sa.society_id = s.id
		WHERE sa.user_id = $1
		ORDER BY s.name
	`, userID)
	return societies, err
}

func (s *SocietyAdminStore) ListAdministrators(ctx context.Context, societyID string) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT u.id, u.username, u.password_hash, u.email, u.full_name, u.role_id, u.resident_id, u.is_active,
		       u.last_login, u.created_at, u.updated_at
		FROM users u
		JOIN society_admins sa ON sa.user_id = u.id
		WHERE sa.society_id = $1
		ORDER BY u.username
	`, societyID)
	return users, err
}
