package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
)

// ErrPackageNotFound is returned when no package matches the lookup
var ErrPackageNotFound = errors.New("package not found")

// PackageRepository handles service package database operations
type PackageRepository struct {
	db DB
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db DB) *PackageRepository {
	return &PackageRepository{
		db: db,
	}
}

const packageColumns = `id, name, description, price, currency, features, active, created_at, updated_at`

// Create inserts a new package
func (r *PackageRepository) Create(p *models.ServicePackage) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO packages (id, name, description, price, currency, features, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(query, p.ID, p.Name, p.Description, p.Price, p.Currency,
		p.Features, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}

	return nil
}

// Update replaces the editable fields of a package
func (r *PackageRepository) Update(p *models.ServicePackage) error {
	query := `
		UPDATE packages
		SET name = $1, description = $2, price = $3, currency = $4, features = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.Exec(query, p.Name, p.Description, p.Price, p.Currency,
		p.Features, time.Now(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPackageNotFound
	}

	return nil
}

// SetActive toggles package visibility
func (r *PackageRepository) SetActive(id uuid.UUID, active bool) error {
	query := `UPDATE packages SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set package active flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPackageNotFound
	}

	return nil
}

// Delete removes a package
func (r *PackageRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPackageNotFound
	}

	return nil
}

// GetByID fetches a single package
func (r *PackageRepository) GetByID(id uuid.UUID) (*models.ServicePackage, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`

	var p models.ServicePackage
	err := r.db.Get(&p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	return &p, nil
}

// ListActive returns publicly visible packages
func (r *PackageRepository) ListActive() ([]models.ServicePackage, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE active = true ORDER BY price ASC`

	packages := []models.ServicePackage{}
	if err := r.db.Select(&packages, query); err != nil {
		return nil, fmt.Errorf("failed to list active packages: %w", err)
	}

	return packages, nil
}

// ListAll returns every package including inactive ones (admin)
func (r *PackageRepository) ListAll() ([]models.ServicePackage, error) {
	query := `SELECT ` + packageColumns + ` FROM packages ORDER BY created_at DESC`

	packages := []models.ServicePackage{}
	if err := r.db.Select(&packages, query); err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	return packages, nil
}
