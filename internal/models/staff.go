package models

import "time"

// StaffRole controls which dashboard endpoints a staff member may call.
type StaffRole string

const (
	StaffRoleAdmin     StaffRole = "admin"
	StaffRoleFrontDesk StaffRole = "front_desk"
	StaffRoleAccounts  StaffRole = "accounts"
)

// StaffUser is a dashboard operator account.
type StaffUser struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"full_name" db:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         StaffRole `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LoginRequest is the staff login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Staff       *StaffUser `json:"staff"`
}
