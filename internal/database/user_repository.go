package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user matches the lookup
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when the email is already registered
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, name, email, phone, password, role, nationality, country, address,
	profile_pic, expertise, active, google_id, otp, otp_expiry, created_at, updated_at`

// CreateUser creates a new account with the given role
func (r *UserRepository) CreateUser(name, email, phone, passwordHash, role string) (*models.User, error) {
	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     models.NewNullString(phone),
		Password:  passwordHash,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO users (id, name, email, phone, password, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.Password,
		user.Role,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByEmail fetches a user by email, case-insensitive
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user models.User
	err := r.db.Get(&user, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetByID fetches a user by id
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user models.User
	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// UpdateProfile updates only the provided profile fields
func (r *UserRepository) UpdateProfile(id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"name": true, "email": true, "phone": true, "nationality": true,
		"country": true, "address": true, "profile_pic": true, "expertise": true,
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+2)
	i := 1
	for column, value := range updates {
		if !allowed[column] {
			return fmt.Errorf("invalid profile column: %s", column)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", i))
	args = append(args, time.Now())
	i++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(setClauses, ", "), i)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetOTP stores a login/reset OTP and its expiry on the user
func (r *UserRepository) SetOTP(email, otp string, expiresAt time.Time) error {
	query := `UPDATE users SET otp = $1, otp_expiry = $2, updated_at = $3 WHERE email = $4`

	result, err := r.db.Exec(query, otp, expiresAt, time.Now(), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to set OTP: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ClearOTP removes any stored OTP for the user
func (r *UserRepository) ClearOTP(id uuid.UUID) error {
	query := `UPDATE users SET otp = NULL, otp_expiry = NULL, updated_at = $1 WHERE id = $2`

	if _, err := r.db.Exec(query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to clear OTP: %w", err)
	}

	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`

	if _, err := r.db.Exec(query, passwordHash, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpsertGoogleUser finds a user by email or creates one linked to the
// Google account. Existing accounts get the google id attached.
func (r *UserRepository) UpsertGoogleUser(name, email, googleID string) (*models.User, error) {
	user, err := r.GetByEmail(email)
	if err == nil {
		if !user.GoogleID.Valid {
			query := `UPDATE users SET google_id = $1, updated_at = $2 WHERE id = $3`
			if _, err := r.db.Exec(query, googleID, time.Now(), user.ID); err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
			user.GoogleID = models.NewNullString(googleID)
		}
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	created := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      models.RoleUser,
		Active:    true,
		GoogleID:  models.NewNullString(googleID),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO users (id, name, email, password, role, active, google_id, created_at, updated_at)
		VALUES ($1, $2, $3, '', $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(query, created.ID, created.Name, created.Email, created.Role,
		created.Active, created.GoogleID, created.CreatedAt, created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create google user: %w", err)
	}

	return created, nil
}

// ListByRole returns all accounts with the given role
func (r *UserRepository) ListByRole(role string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`

	users := []models.User{}
	if err := r.db.Select(&users, query, role); err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}

	return users, nil
}

// SetActive enables or disables an account
func (r *UserRepository) SetActive(id uuid.UUID, active bool) error {
	query := `UPDATE users SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CountByRole returns the number of accounts with the given role
func (r *UserRepository) CountByRole(role string) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM users WHERE role = $1`, role); err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return count, nil
}
