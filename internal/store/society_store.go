package store

import (
	"context"

	"societies/internal/models"
)

type SocietyStore struct {
	db DB
}

func NewSocietyStore(db DB) *SocietyStore {
	return &SocietyStore{db: db}
}

const societyColumns = `id, name, address, city, state, zipcode, country, contact_email, contact_phone,
	       registration_number, registration_date, total_units, is_active, created_at, updated_at`

func (s *SocietyStore) List(ctx context.Context, name string, limit, offset int) ([]models.Society, error) {
	query := `SELECT ` + societyColumns + ` FROM societies`
	args := []any{}
	if name != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+name+"%")
	}
	query += ` ORDER BY created_at LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	societies := []models.Society{}
	err := s.db.SelectContext(ctx, &societies, query, args...)
	return societies, err
}

func (s *SocietyStore) GetByID(ctx context.Context, id string) (models.Society, error) {
	var society models.Society
	err := s.db.GetContext(ctx, &society, `SELECT `+societyColumns+` FROM societies WHERE id = $1`, id)
	return society, err
}

func (s *SocietyStore) Create(ctx context.Context, tx Execer, society models.Society) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO societies (id, name, address, city, state, zipcode, country, contact_email, contact_phone,
		                       registration_number, registration_date, total_units, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, society.ID, society.Name, society.Address, society.City, society.State, society.Zipcode, society.Country,
		society.ContactEmail, society.ContactPhone, society.RegistrationNumber, society.RegistrationDate,
		society.TotalUnits, society.IsActive)
	return err
}

func (s *SocietyStore) Update(ctx context.Context, tx Execer, society models.Society) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE societies
		SET name = $2, address = $3, city = $4, state = $5, zipcode = $6, country = $7,
		    contact_email = $8, contact_phone = $9, registration_number = $10, registration_date = $11,
		    total_units = $12, is_active = $13, updated_at = NOW()
		WHERE id = $1
	`, society.ID, society.Name, society.Address, society.City, society.State, society.Zipcode, society.Country,
		society.ContactEmail, society.ContactPhone, society.RegistrationNumber, society.RegistrationDate,
		society.TotalUnits, society.IsActive)
	return err
}

// Delete cascades to residents, society_admins and society_finances at the
// schema level.
func (s *SocietyStore) Delete(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM societies WHERE id = $1`, id)
	return err
}
