package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Payment types
const (
	PaymentTypeVisa     = "visa"
	PaymentTypePassport = "passport"
	PaymentTypeOther    = "other"
)

// Payment record status values
const (
	PaymentStatusCreated = "created"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// ValidPaymentType reports whether t is a known payment type
func ValidPaymentType(t string) bool {
	switch t {
	case PaymentTypeVisa, PaymentTypePassport, PaymentTypeOther:
		return true
	}
	return false
}

// Payment represents a gateway payment attempt. Amounts are carried as
// decimals, never floats.
type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	OrderID       string          `json:"orderId" db:"order_id"`
	PaymentID     NullString      `json:"paymentId,omitempty" db:"payment_id"` // gateway id, set on verify
	Signature     NullString      `json:"-" db:"signature"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      string          `json:"currency" db:"currency"`
	TypeOfPayment string          `json:"typeOfPayment" db:"type_of_payment"`
	ProductID     NullString      `json:"productId,omitempty" db:"product_id"` // application being paid for
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// ServicePackage is a purchasable processing package
type ServicePackage struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description NullString      `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Currency    string          `json:"currency" db:"currency"`
	Features    pq.StringArray  `json:"features" db:"features"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// PlatformSettings is the singleton fee and contact configuration row
type PlatformSettings struct {
	ID              int64           `json:"-" db:"id"`
	VisaFee         decimal.Decimal `json:"visaFee" db:"visa_fee"`
	PassportFee     decimal.Decimal `json:"passportFee" db:"passport_fee"`
	ServiceFee      decimal.Decimal `json:"serviceFee" db:"service_fee"`
	Currency        string          `json:"currency" db:"currency"`
	SupportEmail    string          `json:"supportEmail" db:"support_email"`
	SupportPhone    NullString      `json:"supportPhone,omitempty" db:"support_phone"`
	MaintenanceMode bool            `json:"maintenanceMode" db:"maintenance_mode"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// VisaTotal returns visa fee plus service fee
func (s PlatformSettings) VisaTotal() decimal.Decimal {
	return s.VisaFee.Add(s.ServiceFee)
}

// PassportTotal returns passport fee plus service fee
func (s PlatformSettings) PassportTotal() decimal.Decimal {
	return s.PassportFee.Add(s.ServiceFee)
}
