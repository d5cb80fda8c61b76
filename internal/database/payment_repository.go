package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPaymentNotFound is returned when no payment matches the lookup
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

const paymentColumns = `id, user_id, order_id, payment_id, signature, amount, currency,
	type_of_payment, product_id, status, created_at, updated_at`

// Create inserts a payment row in created state
func (r *PaymentRepository) Create(p *models.Payment) error {
	p.ID = uuid.New()
	p.Status = models.PaymentStatusCreated
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO payments (id, user_id, order_id, amount, currency, type_of_payment, product_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(query, p.ID, p.UserID, p.OrderID, p.Amount, p.Currency,
		p.TypeOfPayment, p.ProductID, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByOrderID fetches a payment scoped to its owner
func (r *PaymentRepository) GetByOrderID(orderID string, userID uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 AND user_id = $2`

	var p models.Payment
	err := r.db.Get(&p, query, orderID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by order id: %w", err)
	}

	return &p, nil
}

// GetByPaymentID fetches a payment by the gateway payment id
func (r *PaymentRepository) GetByPaymentID(paymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	var p models.Payment
	err := r.db.Get(&p, query, paymentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by payment id: %w", err)
	}

	return &p, nil
}

// MarkVerified records the verification outcome for an order
func (r *PaymentRepository) MarkVerified(orderID, paymentID, signature, status string) error {
	query := `
		UPDATE payments
		SET payment_id = $1, signature = $2, status = $3, updated_at = $4
		WHERE order_id = $5
	`

	result, err := r.db.Exec(query, paymentID, signature, status, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to mark payment verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

// ListAll returns every payment, newest first (admin)
func (r *PaymentRepository) ListAll() ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC`

	payments := []models.Payment{}
	if err := r.db.Select(&payments, query); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

// ListByUser returns the user's payments, newest first
func (r *PaymentRepository) ListByUser(userID uuid.UUID) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	payments := []models.Payment{}
	if err := r.db.Select(&payments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list payments for user: %w", err)
	}

	return payments, nil
}

// SumSuccessful totals all successful payment amounts (admin dashboard)
func (r *PaymentRepository) SumSuccessful() (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = $1`

	if err := r.db.Get(&total, query, models.PaymentStatusSuccess); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}

	return total, nil
}

// CountByStatus returns how many payments carry the given status
func (r *PaymentRepository) CountByStatus(status string) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM payments WHERE status = $1`, status); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}
