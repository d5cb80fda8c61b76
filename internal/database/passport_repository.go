package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrPassportApplicationNotFound is returned when no passport application matches
var ErrPassportApplicationNotFound = errors.New("passport application not found")

// PassportRepository handles passport application database operations
type PassportRepository struct {
	db DB
}

// NewPassportRepository creates a new passport repository
func NewPassportRepository(db DB) *PassportRepository {
	return &PassportRepository{
		db: db,
	}
}

const passportColumns = `id, user_id, full_name, dob, gender, marital_status, nationality, email,
	phone, address, application_type, status, priority, payment_status, assigned_expert,
	processing_deadline, aadhar_card, dob_proof, identity_proof, passport_photos,
	employment_proof, annexures, old_passport, police_verification_proof, created_at, updated_at`

// Create inserts a new passport application
func (r *PassportRepository) Create(app *models.PassportApplication) error {
	app.ID = uuid.New()
	app.Status = models.PassportStatusPending
	app.Priority = models.PriorityMedium
	app.PaymentStatus = models.PaymentUnpaid
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt

	query := `
		INSERT INTO passport_applications (
			id, user_id, full_name, dob, gender, marital_status, nationality, email, phone,
			address, application_type, status, priority, payment_status, aadhar_card,
			dob_proof, identity_proof, passport_photos, employment_proof, annexures,
			old_passport, police_verification_proof, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err := r.db.Exec(
		query,
		app.ID, app.UserID, app.FullName, app.DOB, app.Gender, app.MaritalStatus,
		app.Nationality, app.Email, app.Phone, app.Address, app.ApplicationType,
		app.Status, app.Priority, app.PaymentStatus, app.AadharCard, app.DOBProof,
		app.IdentityProof, app.PassportPhotos, app.EmploymentProof, app.Annexures,
		app.OldPassport, app.PoliceVerificationProof, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create passport application: %w", err)
	}

	return nil
}

// ListByUser returns a filtered, paginated page of the user's applications
// plus the total matching count
func (r *PassportRepository) ListByUser(userID uuid.UUID, filter models.PassportListFilter, page, limit int) ([]models.PassportApplication, int, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}
	i := 2

	addFilter := func(column, value string) {
		if value != "" {
			where += fmt.Sprintf(" AND %s = $%d", column, i)
			args = append(args, value)
			i++
		}
	}
	addFilter("status", filter.Status)
	addFilter("application_type", filter.ApplicationType)
	addFilter("priority", filter.Priority)
	addFilter("payment_status", filter.PaymentStatus)
	addFilter("gender", filter.Gender)

	if filter.FromDate.Valid {
		where += fmt.Sprintf(" AND created_at >= $%d", i)
		args = append(args, filter.FromDate.Time)
		i++
	}
	if filter.ToDate.Valid {
		where += fmt.Sprintf(" AND created_at <= $%d", i)
		args = append(args, filter.ToDate.Time)
		i++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM passport_applications " + where
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count passport applications: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM passport_applications %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		passportColumns, where, i, i+1,
	)
	args = append(args, limit, (page-1)*limit)

	apps := []models.PassportApplication{}
	if err := r.db.Select(&apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list passport applications: %w", err)
	}

	return apps, total, nil
}

// GetByIDForUser fetches an application scoped to its owner
func (r *PassportRepository) GetByIDForUser(id, userID uuid.UUID) (*models.PassportApplication, error) {
	query := `SELECT ` + passportColumns + ` FROM passport_applications WHERE id = $1 AND user_id = $2`

	var app models.PassportApplication
	err := r.db.Get(&app, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPassportApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get passport application for user: %w", err)
	}

	return &app, nil
}

// GetByID fetches an application with the owner joined in (admin)
func (r *PassportRepository) GetByID(id uuid.UUID) (*models.PassportApplication, error) {
	query := `
		SELECT p.id, p.user_id, p.full_name, p.dob, p.gender, p.marital_status, p.nationality,
			p.email, p.phone, p.address, p.application_type, p.status, p.priority,
			p.payment_status, p.assigned_expert, p.processing_deadline, p.aadhar_card,
			p.dob_proof, p.identity_proof, p.passport_photos, p.employment_proof, p.annexures,
			p.old_passport, p.police_verification_proof, p.created_at, p.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM passport_applications p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`

	var app models.PassportApplication
	err := r.db.Get(&app, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPassportApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get passport application: %w", err)
	}

	return &app, nil
}

// GetByIDForExpert fetches an application scoped to its assigned expert
func (r *PassportRepository) GetByIDForExpert(id, expertID uuid.UUID) (*models.PassportApplication, error) {
	query := `
		SELECT p.id, p.user_id, p.full_name, p.dob, p.gender, p.marital_status, p.nationality,
			p.email, p.phone, p.address, p.application_type, p.status, p.priority,
			p.payment_status, p.assigned_expert, p.processing_deadline, p.aadhar_card,
			p.dob_proof, p.identity_proof, p.passport_photos, p.employment_proof, p.annexures,
			p.old_passport, p.police_verification_proof, p.created_at, p.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM passport_applications p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1 AND p.assigned_expert = $2
	`

	var app models.PassportApplication
	err := r.db.Get(&app, query, id, expertID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPassportApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get passport application for expert: %w", err)
	}

	return &app, nil
}

// ListAll returns every passport application with owners joined (admin)
func (r *PassportRepository) ListAll() ([]models.PassportApplication, error) {
	query := `
		SELECT p.id, p.user_id, p.full_name, p.dob, p.gender, p.marital_status, p.nationality,
			p.email, p.phone, p.address, p.application_type, p.status, p.priority,
			p.payment_status, p.assigned_expert, p.processing_deadline, p.aadhar_card,
			p.dob_proof, p.identity_proof, p.passport_photos, p.employment_proof, p.annexures,
			p.old_passport, p.police_verification_proof, p.created_at, p.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM passport_applications p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`

	apps := []models.PassportApplication{}
	if err := r.db.Select(&apps, query); err != nil {
		return nil, fmt.Errorf("failed to list passport applications: %w", err)
	}

	return apps, nil
}

// ListByExpert returns applications assigned to the expert
func (r *PassportRepository) ListByExpert(expertID uuid.UUID) ([]models.PassportApplication, error) {
	query := `
		SELECT p.id, p.user_id, p.full_name, p.dob, p.gender, p.marital_status, p.nationality,
			p.email, p.phone, p.address, p.application_type, p.status, p.priority,
			p.payment_status, p.assigned_expert, p.processing_deadline, p.created_at,
			p.updated_at, u.name AS user_name, u.email AS user_email
		FROM passport_applications p
		JOIN users u ON u.id = p.user_id
		WHERE p.assigned_expert = $1
		ORDER BY p.created_at DESC
	`

	apps := []models.PassportApplication{}
	if err := r.db.Select(&apps, query, expertID); err != nil {
		return nil, fmt.Errorf("failed to list passport applications for expert: %w", err)
	}

	return apps, nil
}

// AssignExpert attaches an expert, priority and deadline
func (r *PassportRepository) AssignExpert(id, expertID uuid.UUID, priority string, deadline models.NullTime) error {
	query := `
		UPDATE passport_applications
		SET assigned_expert = $1, priority = $2, processing_deadline = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(query, expertID, priority, deadline, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to assign passport expert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPassportApplicationNotFound
	}

	return nil
}

// UpdateStatus sets the passport application status
func (r *PassportRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE passport_applications SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update passport status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPassportApplicationNotFound
	}

	return nil
}

// MarkPaidByProduct flips payment status to Paid scoped to the owner
func (r *PassportRepository) MarkPaidByProduct(productID string, userID uuid.UUID) error {
	query := `
		UPDATE passport_applications
		SET payment_status = $1, updated_at = $2
		WHERE id::text = $3 AND user_id = $4
	`

	result, err := r.db.Exec(query, models.PaymentPaid, time.Now(), productID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark passport application paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPassportApplicationNotFound
	}

	return nil
}

// CountByStatus returns platform-wide counts (admin dashboard)
func (r *PassportRepository) CountByStatus(status string) (int, error) {
	var count int
	var err error
	if status == "" {
		err = r.db.Get(&count, `SELECT COUNT(*) FROM passport_applications`)
	} else {
		err = r.db.Get(&count, `SELECT COUNT(*) FROM passport_applications WHERE status = $1`, status)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count passport applications: %w", err)
	}
	return count, nil
}

// CountByStatusForExpert returns counts scoped to an expert's caseload
func (r *PassportRepository) CountByStatusForExpert(expertID uuid.UUID, status string) (int, error) {
	var count int
	var err error
	if status == "" {
		err = r.db.Get(&count,
			`SELECT COUNT(*) FROM passport_applications WHERE assigned_expert = $1`, expertID)
	} else {
		err = r.db.Get(&count,
			`SELECT COUNT(*) FROM passport_applications WHERE assigned_expert = $1 AND status = $2`,
			expertID, status)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count passport applications for expert: %w", err)
	}
	return count, nil
}
