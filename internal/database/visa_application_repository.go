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

// ErrApplicationNotFound is returned when no visa application matches
var ErrApplicationNotFound = errors.New("visa application not found")

// ErrChecklistItemNotFound is returned when no checklist item matches
var ErrChecklistItemNotFound = errors.New("checklist item not found")

// ErrDuplicateApplicationID is returned when the generated human-facing
// code collides with an existing one
var ErrDuplicateApplicationID = errors.New("application id already exists")

// VisaApplicationRepository handles visa application database operations
type VisaApplicationRepository struct {
	db DB
}

// NewVisaApplicationRepository creates a new visa application repository
func NewVisaApplicationRepository(db DB) *VisaApplicationRepository {
	return &VisaApplicationRepository{
		db: db,
	}
}

const visaColumns = `id, application_id, user_id, full_name, dob, nationality, passport_number,
	passport_expiry, destination_country, travel_purpose, travel_date, return_date, email,
	phone, address, employment_status, monthly_income, previous_visits, notes,
	application_status, payment_status, assigned_expert, priority, processing_deadline,
	is_draft, created_at, updated_at`

// CreateDraft inserts a new draft row with only the provided fields
func (r *VisaApplicationRepository) CreateDraft(app *models.VisaApplication) error {
	app.ID = uuid.New()
	app.ApplicationStatus = models.StatusPending
	app.PaymentStatus = models.PaymentUnpaid
	app.IsDraft = true
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt

	query := `
		INSERT INTO visa_applications (
			id, user_id, full_name, dob, nationality, passport_number, passport_expiry,
			destination_country, travel_purpose, travel_date, return_date, email, phone,
			address, employment_status, monthly_income, previous_visits, notes,
			application_status, payment_status, is_draft, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.Exec(
		query,
		app.ID, app.UserID, app.FullName, app.DOB, app.Nationality, app.PassportNumber,
		app.PassportExpiry, app.DestinationCountry, app.TravelPurpose, app.TravelDate,
		app.ReturnDate, app.Email, app.Phone, app.Address, app.EmploymentStatus,
		app.MonthlyIncome, app.PreviousVisits, app.Notes, app.ApplicationStatus,
		app.PaymentStatus, app.IsDraft, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}

	return nil
}

// UpdateDraft overwrites only the provided columns on an owned draft.
// Empty fields in a draft save never erase previously stored values.
func (r *VisaApplicationRepository) UpdateDraft(id, userID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	allowed := map[string]bool{
		"full_name": true, "dob": true, "nationality": true, "passport_number": true,
		"passport_expiry": true, "destination_country": true, "travel_purpose": true,
		"travel_date": true, "return_date": true, "email": true, "phone": true,
		"address": true, "employment_status": true, "monthly_income": true,
		"previous_visits": true, "notes": true,
	}

	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+3)
	i := 1
	for column, value := range updates {
		if !allowed[column] {
			return fmt.Errorf("invalid draft column: %s", column)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", i))
	args = append(args, time.Now())
	i++

	query := fmt.Sprintf(
		"UPDATE visa_applications SET %s WHERE id = $%d AND user_id = $%d AND is_draft = true",
		strings.Join(setClauses, ", "), i, i+1,
	)
	args = append(args, id, userID)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// Submit promotes a draft to a submitted application with the given
// human-facing code. The unique index on application_id is the final
// arbiter against concurrent code collisions.
func (r *VisaApplicationRepository) Submit(id, userID uuid.UUID, applicationID string) error {
	query := `
		UPDATE visa_applications
		SET application_id = $1, is_draft = false, application_status = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`

	result, err := r.db.Exec(query, applicationID, models.StatusPending, time.Now(), id, userID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateApplicationID
		}
		return fmt.Errorf("failed to submit application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// ApplicationIDExists reports whether the human-facing code is taken
func (r *VisaApplicationRepository) ApplicationIDExists(applicationID string) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM visa_applications WHERE application_id = $1`, applicationID)
	if err != nil {
		return false, fmt.Errorf("failed to check application id: %w", err)
	}
	return count > 0, nil
}

// GetByID fetches an application with no ownership scoping (admin)
func (r *VisaApplicationRepository) GetByID(id uuid.UUID) (*models.VisaApplication, error) {
	query := `
		SELECT a.id, a.application_id, a.user_id, a.full_name, a.dob, a.nationality,
			a.passport_number, a.passport_expiry, a.destination_country, a.travel_purpose,
			a.travel_date, a.return_date, a.email, a.phone, a.address, a.employment_status,
			a.monthly_income, a.previous_visits, a.notes, a.application_status,
			a.payment_status, a.assigned_expert, a.priority, a.processing_deadline,
			a.is_draft, a.created_at, a.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM visa_applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`

	var app models.VisaApplication
	err := r.db.Get(&app, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// GetByIDForUser fetches an application scoped to its owner
func (r *VisaApplicationRepository) GetByIDForUser(id, userID uuid.UUID) (*models.VisaApplication, error) {
	query := `SELECT ` + visaColumns + ` FROM visa_applications WHERE id = $1 AND user_id = $2`

	var app models.VisaApplication
	err := r.db.Get(&app, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application for user: %w", err)
	}

	return &app, nil
}

// GetByIDForExpert fetches an application scoped to its assigned expert
func (r *VisaApplicationRepository) GetByIDForExpert(id, expertID uuid.UUID) (*models.VisaApplication, error) {
	query := `
		SELECT a.id, a.application_id, a.user_id, a.full_name, a.dob, a.nationality,
			a.passport_number, a.passport_expiry, a.destination_country, a.travel_purpose,
			a.travel_date, a.return_date, a.email, a.phone, a.address, a.employment_status,
			a.monthly_income, a.previous_visits, a.notes, a.application_status,
			a.payment_status, a.assigned_expert, a.priority, a.processing_deadline,
			a.is_draft, a.created_at, a.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM visa_applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1 AND a.assigned_expert = $2
	`

	var app models.VisaApplication
	err := r.db.Get(&app, query, id, expertID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application for expert: %w", err)
	}

	return &app, nil
}

// ListByUser returns all applications owned by the user, drafts included
func (r *VisaApplicationRepository) ListByUser(userID uuid.UUID) ([]models.VisaApplication, error) {
	query := `SELECT ` + visaColumns + ` FROM visa_applications WHERE user_id = $1 ORDER BY created_at DESC`

	apps := []models.VisaApplication{}
	if err := r.db.Select(&apps, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list applications for user: %w", err)
	}

	return apps, nil
}

// ListAll returns every submitted application (admin view)
func (r *VisaApplicationRepository) ListAll() ([]models.VisaApplication, error) {
	query := `
		SELECT a.id, a.application_id, a.user_id, a.full_name, a.destination_country,
			a.travel_purpose, a.application_status, a.payment_status, a.assigned_expert,
			a.priority, a.processing_deadline, a.is_draft, a.created_at, a.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM visa_applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.is_draft = false
		ORDER BY a.created_at DESC
	`

	apps := []models.VisaApplication{}
	if err := r.db.Select(&apps, query); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil
}

// ListByExpert returns submitted applications assigned to the expert
func (r *VisaApplicationRepository) ListByExpert(expertID uuid.UUID) ([]models.VisaApplication, error) {
	query := `
		SELECT a.id, a.application_id, a.user_id, a.full_name, a.destination_country,
			a.travel_purpose, a.application_status, a.payment_status, a.assigned_expert,
			a.priority, a.processing_deadline, a.is_draft, a.created_at, a.updated_at,
			u.name AS user_name, u.email AS user_email
		FROM visa_applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.assigned_expert = $1 AND a.is_draft = false
		ORDER BY a.created_at DESC
	`

	apps := []models.VisaApplication{}
	if err := r.db.Select(&apps, query, expertID); err != nil {
		return nil, fmt.Errorf("failed to list applications for expert: %w", err)
	}

	return apps, nil
}

// UpdateStatus sets the application status
func (r *VisaApplicationRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE visa_applications SET application_status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// AssignExpert attaches an expert, priority and deadline to an application
func (r *VisaApplicationRepository) AssignExpert(id, expertID uuid.UUID, priority string, deadline models.NullTime) error {
	query := `
		UPDATE visa_applications
		SET assigned_expert = $1, priority = $2, processing_deadline = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(query, expertID, priority, deadline, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to assign expert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// MarkPaidByProduct flips payment status to Paid on the application
// matching both the product id and the paying user. Ownership scoping here
// is what stops a valid payment from marking someone else's case paid.
func (r *VisaApplicationRepository) MarkPaidByProduct(productID string, userID uuid.UUID) error {
	query := `
		UPDATE visa_applications
		SET payment_status = $1, updated_at = $2
		WHERE id::text = $3 AND user_id = $4
	`

	result, err := r.db.Exec(query, models.PaymentPaid, time.Now(), productID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark application paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// CountByStatusForUser returns how many of the user's applications carry
// the given status; empty status counts everything
func (r *VisaApplicationRepository) CountByStatusForUser(userID uuid.UUID, status string) (int, error) {
	var count int
	var err error
	if status == "" {
		err = r.db.Get(&count,
			`SELECT COUNT(*) FROM visa_applications WHERE user_id = $1 AND is_draft = false`, userID)
	} else {
		err = r.db.Get(&count,
			`SELECT COUNT(*) FROM visa_applications WHERE user_id = $1 AND is_draft = false AND application_status = $2`,
			userID, status)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

// CountByStatus returns platform-wide counts (admin dashboard)
func (r *VisaApplicationRepository) CountByStatus(status string) (int, error) {
	var count int
	var err error
	if status == "" {
		err = r.db.Get(&count, `SELECT COUNT(*) FROM visa_applications WHERE is_draft = false`)
	} else {
		err = r.db.Get(&count,
			`SELECT COUNT(*) FROM visa_applications WHERE is_draft = false AND application_status = $1`, status)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

// CountByStatusForExpert returns counts scoped to an expert's caseload
func (r *VisaApplicationRepository) CountByStatusForExpert(expertID uuid.UUID, status string) (int, error) {
	var count int
	var err error
	if status == "" {
		err = r.db.Get(&count,
			`SELECT COUNT(*) FROM visa_applications WHERE assigned_expert = $1 AND is_draft = false`, expertID)
	} else {
		err = r.db.Get(&count,
			`SELECT COUNT(*) FROM visa_applications WHERE assigned_expert = $1 AND is_draft = false AND application_status = $2`,
			expertID, status)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count applications for expert: %w", err)
	}
	return count, nil
}

// RecentForUser returns the user's latest submitted applications
func (r *VisaApplicationRepository) RecentForUser(userID uuid.UUID, limit int) ([]models.VisaApplication, error) {
	query := `
		SELECT id, destination_country, travel_purpose, application_status, user_id,
			payment_status, previous_visits, is_draft, created_at, updated_at
		FROM visa_applications
		WHERE user_id = $1 AND is_draft = false
		ORDER BY created_at DESC
		LIMIT $2
	`

	apps := []models.VisaApplication{}
	if err := r.db.Select(&apps, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}

	return apps, nil
}

// Checklist operations

// AddChecklistItem appends a requested document to an application
func (r *VisaApplicationRepository) AddChecklistItem(item *models.ChecklistItem) error {
	item.ID = uuid.New()
	item.Accepted = models.ChecklistPending
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	query := `
		INSERT INTO visa_checklist_items (id, visa_application_id, note, subnote, accepted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query, item.ID, item.VisaApplicationID, item.Note, item.Subnote,
		item.Accepted, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add checklist item: %w", err)
	}

	return nil
}

// GetChecklistItem fetches one checklist item scoped to its application
func (r *VisaApplicationRepository) GetChecklistItem(itemID, applicationID uuid.UUID) (*models.ChecklistItem, error) {
	query := `
		SELECT id, visa_application_id, note, subnote, file, accepted, remarks, created_at, updated_at
		FROM visa_checklist_items
		WHERE id = $1 AND visa_application_id = $2
	`

	var item models.ChecklistItem
	err := r.db.Get(&item, query, itemID, applicationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrChecklistItemNotFound
		}
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}

	return &item, nil
}

// ListChecklist returns all checklist items for an application
func (r *VisaApplicationRepository) ListChecklist(applicationID uuid.UUID) ([]models.ChecklistItem, error) {
	query := `
		SELECT id, visa_application_id, note, subnote, file, accepted, remarks, created_at, updated_at
		FROM visa_checklist_items
		WHERE visa_application_id = $1
		ORDER BY created_at ASC
	`

	items := []models.ChecklistItem{}
	if err := r.db.Select(&items, query, applicationID); err != nil {
		return nil, fmt.Errorf("failed to list checklist: %w", err)
	}

	return items, nil
}

// SetChecklistFile records an uploaded file and resets the review state:
// a fresh upload always goes back to Pending with remarks cleared.
func (r *VisaApplicationRepository) SetChecklistFile(itemID uuid.UUID, filePath string) error {
	query := `
		UPDATE visa_checklist_items
		SET file = $1, accepted = $2, remarks = NULL, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(query, filePath, models.ChecklistPending, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("failed to set checklist file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrChecklistItemNotFound
	}

	return nil
}

// ReviewChecklistItem records an accept/reject decision with remarks
func (r *VisaApplicationRepository) ReviewChecklistItem(itemID uuid.UUID, accepted string, remarks models.NullString) error {
	query := `
		UPDATE visa_checklist_items
		SET accepted = $1, remarks = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(query, accepted, remarks, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("failed to review checklist item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrChecklistItemNotFound
	}

	return nil
}
