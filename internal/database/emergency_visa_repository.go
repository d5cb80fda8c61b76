package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrEmergencyRequestNotFound is returned when no emergency request matches
var ErrEmergencyRequestNotFound = errors.New("emergency visa request not found")

// EmergencyVisaRepository handles emergency visa request database operations
type EmergencyVisaRepository struct {
	db DB
}

// NewEmergencyVisaRepository creates a new emergency visa repository
func NewEmergencyVisaRepository(db DB) *EmergencyVisaRepository {
	return &EmergencyVisaRepository{
		db: db,
	}
}

const emergencyColumns = `id, name, email, phone, passport_number, destination, travel_date,
	purpose, description, status, passport, invitation, flight, hotel, supporting_document,
	created_at, updated_at`

// Create inserts a new emergency visa request
func (r *EmergencyVisaRepository) Create(req *models.EmergencyVisaRequest) error {
	req.ID = uuid.New()
	req.Status = models.EmergencyPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	query := `
		INSERT INTO emergency_visa_requests (
			id, name, email, phone, passport_number, destination, travel_date, purpose,
			description, status, passport, invitation, flight, hotel, supporting_document,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Exec(
		query,
		req.ID, req.Name, req.Email, req.Phone, req.PassportNumber, req.Destination,
		req.TravelDate, req.Purpose, req.Description, req.Status, req.Passport,
		req.Invitation, req.Flight, req.Hotel, req.SupportingDocument,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create emergency visa request: %w", err)
	}

	return nil
}

// ListAll returns every emergency request, newest first (admin)
func (r *EmergencyVisaRepository) ListAll() ([]models.EmergencyVisaRequest, error) {
	query := `SELECT ` + emergencyColumns + ` FROM emergency_visa_requests ORDER BY created_at DESC`

	requests := []models.EmergencyVisaRequest{}
	if err := r.db.Select(&requests, query); err != nil {
		return nil, fmt.Errorf("failed to list emergency visa requests: %w", err)
	}

	return requests, nil
}

// GetByID fetches an emergency request (admin)
func (r *EmergencyVisaRepository) GetByID(id uuid.UUID) (*models.EmergencyVisaRequest, error) {
	query := `SELECT ` + emergencyColumns + ` FROM emergency_visa_requests WHERE id = $1`

	var req models.EmergencyVisaRequest
	err := r.db.Get(&req, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEmergencyRequestNotFound
		}
		return nil, fmt.Errorf("failed to get emergency visa request: %w", err)
	}

	return &req, nil
}

// UpdateStatus sets the request status
func (r *EmergencyVisaRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE emergency_visa_requests SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update emergency visa status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrEmergencyRequestNotFound
	}

	return nil
}
