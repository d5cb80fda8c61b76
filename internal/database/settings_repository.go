package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/shopspring/decimal"
)

// SettingsRepository handles the singleton platform settings row
type SettingsRepository struct {
	db DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db DB) *SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

// Get returns the settings row, falling back to defaults when none exists
func (r *SettingsRepository) Get() (*models.PlatformSettings, error) {
	query := `
		SELECT id, visa_fee, passport_fee, service_fee, currency, support_email,
			support_phone, maintenance_mode, updated_at
		FROM platform_settings
		WHERE id = 1
	`

	var s models.PlatformSettings
	err := r.db.Get(&s, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.PlatformSettings{
				ID:           1,
				VisaFee:      decimal.Zero,
				PassportFee:  decimal.Zero,
				ServiceFee:   decimal.Zero,
				Currency:     "INR",
				SupportEmail: "support@axevisa.com",
			}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &s, nil
}

// Update upserts the settings row
func (r *SettingsRepository) Update(s *models.PlatformSettings) error {
	s.ID = 1
	s.UpdatedAt = time.Now()

	query := `
		INSERT INTO platform_settings (id, visa_fee, passport_fee, service_fee, currency,
			support_email, support_phone, maintenance_mode, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			visa_fee = EXCLUDED.visa_fee,
			passport_fee = EXCLUDED.passport_fee,
			service_fee = EXCLUDED.service_fee,
			currency = EXCLUDED.currency,
			support_email = EXCLUDED.support_email,
			support_phone = EXCLUDED.support_phone,
			maintenance_mode = EXCLUDED.maintenance_mode,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(query, s.VisaFee, s.PassportFee, s.ServiceFee, s.Currency,
		s.SupportEmail, s.SupportPhone, s.MaintenanceMode, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	return nil
}
