package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrAssessmentNotFound is returned when no assessment matches the lookup
var ErrAssessmentNotFound = errors.New("assessment not found")

// AssessmentRepository persists AI checker runs
type AssessmentRepository struct {
	db DB
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db DB) *AssessmentRepository {
	return &AssessmentRepository{
		db: db,
	}
}

// Create inserts an assessment row
func (r *AssessmentRepository) Create(a *models.VisaAssessment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()

	query := `
		INSERT INTO visa_assessments (id, personal_details, application_details, ai_analysis, degraded, client_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query, a.ID, a.PersonalDetails, a.ApplicationDetails,
		a.AIAnalysis, a.Degraded, a.ClientIP, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	return nil
}

// ListAll returns assessments newest first (admin)
func (r *AssessmentRepository) ListAll(limit int) ([]models.VisaAssessment, error) {
	query := `
		SELECT id, personal_details, application_details, ai_analysis, degraded, client_ip, created_at
		FROM visa_assessments
		ORDER BY created_at DESC
		LIMIT $1
	`

	assessments := []models.VisaAssessment{}
	if err := r.db.Select(&assessments, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	return assessments, nil
}

// GetByID fetches a single assessment (admin)
func (r *AssessmentRepository) GetByID(id uuid.UUID) (*models.VisaAssessment, error) {
	query := `
		SELECT id, personal_details, application_details, ai_analysis, degraded, client_ip, created_at
		FROM visa_assessments
		WHERE id = $1
	`

	var a models.VisaAssessment
	err := r.db.Get(&a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	return &a, nil
}
