package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/models"
)

var (
	// ErrOTPExpired indicates the OTP has expired
	ErrOTPExpired = errors.New("OTP has expired")

	// ErrOTPInvalid indicates the OTP is incorrect
	ErrOTPInvalid = errors.New("invalid OTP code")

	// ErrNoOTPFound indicates no OTP is pending for the account
	ErrNoOTPFound = errors.New("no OTP pending for this account")
)

// OTPService generates and validates email one-time codes for login and
// password reset. Codes live on the user row, one pending code at a time.
type OTPService struct {
	users  *database.UserRepository
	expiry time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(users *database.UserRepository, expiryMinutes int) *OTPService {
	return &OTPService{
		users:  users,
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

// Issue generates a 6-digit code for the account and stores it with its
// expiry. A fresh issue replaces any pending code.
func (s *OTPService) Issue(email string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", err
	}

	otp, err := generateRandomOTP()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.users.SetOTP(email, otp, time.Now().Add(s.expiry)); err != nil {
		return nil, "", err
	}

	return user, otp, nil
}

// Verify checks a submitted code against the pending one and consumes it
// on success
func (s *OTPService) Verify(email, otp string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	if !user.OTP.Valid || !user.OTPExpiry.Valid {
		return nil, ErrNoOTPFound
	}

	if time.Now().After(user.OTPExpiry.Time) {
		return nil, ErrOTPExpired
	}

	if user.OTP.String != otp {
		return nil, ErrOTPInvalid
	}

	if err := s.users.ClearOTP(user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// ExpiryMinutes returns the configured validity window in minutes
func (s *OTPService) ExpiryMinutes() int {
	return int(s.expiry / time.Minute)
}

// generateRandomOTP generates a cryptographically secure random 6-digit code
func generateRandomOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
