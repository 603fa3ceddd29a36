package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/jwt"
)

// AuthService authenticates dashboard staff and issues access tokens.
type AuthService struct {
	staffRepo  *database.StaffRepository
	jwtService *jwt.Service
	logger     *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(staffRepo *database.StaffRepository, jwtService *jwt.Service, logger *logrus.Logger) *AuthService {
	return &AuthService{
		staffRepo:  staffRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login verifies credentials and returns a signed access token. Unknown
// email and wrong password produce the same error, so callers cannot probe
// for registered accounts.
func (s *AuthService) Login(req *models.LoginRequest) (*models.LoginResponse, error) {
	staff, err := s.staffRepo.GetByEmail(req.Email)
	if err != nil {
		s.logger.WithField("email", req.Email).Warn("Login attempt for unknown staff email")
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("email", req.Email).Warn("Login attempt with wrong password")
		return nil, fmt.Errorf("invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(staff.ID, staff.Email, string(staff.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"staff_id": staff.ID,
		"role":     staff.Role,
	}).Info("Staff logged in")

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Staff:       staff,
	}, nil
}

// HashPassword hashes a plaintext password for seeding staff accounts
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
