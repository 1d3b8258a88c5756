package store

import (
	"context"

	"societies/internal/models"
)

type ResidentStore struct {
	db DB
}

func NewResidentStore(db DB) *ResidentStore {
	return &ResidentStore{db: db}
}

const residentColumns = `id, society_id, first_name, last_name, email, phone, unit_number, is_owner,
	       is_committee_member, committee_role, move_in_date, move_out_date, is_active, created_at, updated_at`

type ResidentFilter struct {
	SocietyID  string
	Name       string
	UnitNumber string
}

func (s *ResidentStore) List(ctx context.Context, filter ResidentFilter, limit, offset int) ([]models.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE 1=1`
	args := []any{}
	if filter.SocietyID != "" {
		args = append(args, filter.SocietyID)
		query += ` AND society_id = ` + placeholder(len(args))
	}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		p := placeholder(len(args))
		query += ` AND (first_name ILIKE ` + p + ` OR last_name ILIKE ` + p + `)`
	}
	if filter.UnitNumber != "" {
		args = append(args, filter.UnitNumber)
		query += ` AND unit_number = ` + placeholder(len(args))
	}
	query += ` ORDER BY created_at LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)
	residents := []models.Resident{}
	err := s.db.SelectContext(ctx, &residents, query, args...)
	return residents, err
}

func (s *ResidentStore) GetByID(ctx context.Context, id string) (models.Resident, error) {
	var resident models.Resident
	err := s.db.GetContext(ctx, &resident, `SELECT `+residentColumns+` FROM residents WHERE id = $1`, id)
	return resident, err
}

// CountByUnit reports how many residents of the society already use the unit.
// Collisions are legal (families share units) but worth a warning.
func (s *ResidentStore) CountByUnit(ctx context.Context, societyID, unitNumber string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(1) FROM residents WHERE society_id = $1 AND unit_number = $2
	`, societyID, unitNumber)
	return count, err
}

func (s *ResidentStore) Create(ctx context.Context, tx Execer, resident models.Resident) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO residents (id, society_id, first_name, last_name, email, phone, unit_number, is_owner,
		                       is_committee_member, committee_role, move_in_date, move_out_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, resident.ID, resident.SocietyID, resident.FirstName, resident.LastName, resident.Email, resident.Phone,
		resident.UnitNumber, resident.IsOwner, resident.IsCommitteeMember, resident.CommitteeRole,
		resident.MoveInDate, resident.MoveOutDate, resident.IsActive)
	return err
}

func (s *ResidentStore) Update(ctx context.Context, tx Execer, resident models.Resident) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE residents
		SET society_id = $2, first_name = $3, last_name = $4, email = $5, phone = $6, unit_number = $7,
		    is_owner = $8, is_committee_member = $9, committee_role = $10, move_in_date = $11,
		    move_out_date = $12, is_active = $13, updated_at = NOW()
		WHERE id = $1
	`, resident.ID, resident.SocietyID, resident.FirstName, resident.LastName, resident.Email, resident.Phone,
		resident.UnitNumber, resident.IsOwner, resident.IsCommitteeMember, resident.CommitteeRole,
		resident.MoveInDate, resident.MoveOutDate, resident.IsActive)
	return err
}

// Delete cascades to resident_finances at the schema level.
func (s *ResidentStore) Delete(ctx context.Context, tx Execer, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM residents WHERE id = $1`, id)
	return err
}
