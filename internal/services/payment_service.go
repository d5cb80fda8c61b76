package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/pkg/mailer"
	"github.com/axevisa/visa-backend/pkg/razorpay"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrInvalidSignature is returned when the gateway signature does not
// match the order and payment ids
var ErrInvalidSignature = errors.New("invalid payment signature")

// ErrUnknownPaymentType is returned for payment types outside the known set
var ErrUnknownPaymentType = errors.New("unknown payment type")

// paidMarker marks an application paid, scoped to the paying user
type paidMarker interface {
	MarkPaidByProduct(productID string, userID uuid.UUID) error
}

// PaymentService creates gateway orders and verifies payment callbacks.
// Verification is idempotent on the gateway payment id.
type PaymentService struct {
	gateway   *razorpay.Client
	payments  *database.PaymentRepository
	visas     paidMarker
	passports paidMarker
	packages  *database.PackageRepository
	settings  *database.SettingsRepository
	mail      *mailer.Mailer
	logger    *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	gateway *razorpay.Client,
	payments *database.PaymentRepository,
	visas *database.VisaApplicationRepository,
	passports *database.PassportRepository,
	packages *database.PackageRepository,
	settings *database.SettingsRepository,
	mail *mailer.Mailer,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:   gateway,
		payments:  payments,
		visas:     visas,
		passports: passports,
		packages:  packages,
		settings:  settings,
		mail:      mail,
		logger:    logger,
	}
}

// CreateOrderInput describes what the user wants to pay for
type CreateOrderInput struct {
	UserID        uuid.UUID
	TypeOfPayment string
	ProductID     string
	PackageID     *uuid.UUID
}

// CreateOrder prices the request, creates a gateway order and persists
// the pending payment row.
func (s *PaymentService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Payment, error) {
	amount, currency, err := s.price(in)
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, amount, currency, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	payment := &models.Payment{
		UserID:        in.UserID,
		OrderID:       order.ID,
		Amount:        amount,
		Currency:      currency,
		TypeOfPayment: in.TypeOfPayment,
		ProductID:     models.NewNullString(in.ProductID),
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// price resolves the charge from the selected package or, failing that,
// from the platform fee settings for the payment type.
func (s *PaymentService) price(in CreateOrderInput) (decimal.Decimal, string, error) {
	if in.PackageID != nil {
		pkg, err := s.packages.GetByID(*in.PackageID)
		if err != nil {
			return decimal.Zero, "", err
		}
		return pkg.Price, pkg.Currency, nil
	}

	settings, err := s.settings.Get()
	if err != nil {
		return decimal.Zero, "", err
	}

	switch in.TypeOfPayment {
	case models.PaymentTypeVisa:
		return settings.VisaTotal(), settings.Currency, nil
	case models.PaymentTypePassport:
		return settings.PassportTotal(), settings.Currency, nil
	case models.PaymentTypeOther:
		return settings.ServiceFee, settings.Currency, nil
	}

	return decimal.Zero, "", ErrUnknownPaymentType
}

// VerifyInput is the gateway callback payload
type VerifyInput struct {
	UserID    uuid.UUID
	OrderID   string
	PaymentID string
	Signature string
	UserName  string
	UserEmail string
}

// Verify checks the callback signature against the user's own order. A
// matching signature marks the payment and its application paid and sends
// a confirmation email; a mismatch records the failure and returns
// ErrInvalidSignature. Replays of an already verified payment id return
// the stored payment unchanged.
func (s *PaymentService) Verify(in VerifyInput) (*models.Payment, error) {
	if existing, err := s.payments.GetByPaymentID(in.PaymentID); err == nil {
		if existing.Status == models.PaymentStatusSuccess && existing.UserID == in.UserID {
			return existing, nil
		}
	} else if !errors.Is(err, database.ErrPaymentNotFound) {
		return nil, err
	}

	payment, err := s.payments.GetByOrderID(in.OrderID, in.UserID)
	if err != nil {
		return nil, err
	}

	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		if err := s.payments.MarkVerified(in.OrderID, in.PaymentID, in.Signature, models.PaymentStatusFailed); err != nil {
			s.logger.WithError(err).WithField("order_id", in.OrderID).Error("failed to record failed payment")
		}
		return nil, ErrInvalidSignature
	}

	if err := s.payments.MarkVerified(in.OrderID, in.PaymentID, in.Signature, models.PaymentStatusSuccess); err != nil {
		return nil, err
	}

	if payment.ProductID.Valid {
		if err := s.markProductPaid(payment.TypeOfPayment, payment.ProductID.String, in.UserID); err != nil {
			return nil, err
		}
	}

	payment.PaymentID = models.NewNullString(in.PaymentID)
	payment.Status = models.PaymentStatusSuccess

	if in.UserEmail != "" {
		go s.sendConfirmation(in.UserEmail, in.UserName, in.PaymentID, payment.Amount.StringFixed(2), payment.Currency)
	}

	return payment, nil
}

func (s *PaymentService) markProductPaid(typeOfPayment, productID string, userID uuid.UUID) error {
	switch typeOfPayment {
	case models.PaymentTypeVisa:
		return s.visas.MarkPaidByProduct(productID, userID)
	case models.PaymentTypePassport:
		return s.passports.MarkPaidByProduct(productID, userID)
	}
	return nil
}

func (s *PaymentService) sendConfirmation(email, name, paymentID, amount, currency string) {
	subject, body := mailer.PaymentConfirmationEmail(name, paymentID, amount, currency)
	if err := s.mail.Send(email, subject, body); err != nil {
		s.logger.WithError(err).WithField("email", email).Error("failed to send payment confirmation email")
	}
}
