package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrContactQueryNotFound is returned when no contact query matches
var ErrContactQueryNotFound = errors.New("contact query not found")

// ContactRepository handles public contact query database operations
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{
		db: db,
	}
}

// Create inserts a contact query
func (r *ContactRepository) Create(q *models.ContactQuery) error {
	q.ID = uuid.New()
	q.CreatedAt = time.Now()

	query := `
		INSERT INTO contact_queries (id, name, email, subject, message, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`

	_, err := r.db.Exec(query, q.ID, q.Name, q.Email, q.Subject, q.Message, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact query: %w", err)
	}

	return nil
}

// ListAll returns every contact query, newest first (admin)
func (r *ContactRepository) ListAll() ([]models.ContactQuery, error) {
	query := `
		SELECT id, name, email, subject, message, resolved, created_at
		FROM contact_queries
		ORDER BY created_at DESC
	`

	queries := []models.ContactQuery{}
	if err := r.db.Select(&queries, query); err != nil {
		return nil, fmt.Errorf("failed to list contact queries: %w", err)
	}

	return queries, nil
}

// MarkResolved flags a query as handled
func (r *ContactRepository) MarkResolved(id uuid.UUID) error {
	result, err := r.db.Exec(`UPDATE contact_queries SET resolved = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve contact query: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrContactQueryNotFound
	}

	return nil
}
