package database

import (
	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// StaffRepository handles database operations for the staff_users table
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// GetByEmail retrieves an active staff user by email
func (r *StaffRepository) GetByEmail(email string) (*models.StaffUser, error) {
	query := `
		SELECT id, email, full_name, password_hash, role, active, created_at, updated_at
		FROM staff_users
		WHERE email = $1 AND active = true
	`

	staff := &models.StaffUser{}
	err := r.db.QueryRow(query, email).Scan(
		&staff.ID, &staff.Email, &staff.FullName, &staff.PasswordHash,
		&staff.Role, &staff.Active, &staff.CreatedAt, &staff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// GetByID retrieves a staff user by ID
func (r *StaffRepository) GetByID(staffID string) (*models.StaffUser, error) {
	query := `
		SELECT id, email, full_name, password_hash, role, active, created_at, updated_at
		FROM staff_users
		WHERE id = $1
	`

	staff := &models.StaffUser{}
	err := r.db.QueryRow(query, staffID).Scan(
		&staff.ID, &staff.Email, &staff.FullName, &staff.PasswordHash,
		&staff.Role, &staff.Active, &staff.CreatedAt, &staff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return staff, nil
}
