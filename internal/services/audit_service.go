package services

import (
	"fmt"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/internal/utils"
	"github.com/google/uuid"
)

// AuditService records security events: logins, OTP activity and payment
// verifications. Device info is parsed from the user agent and stored as
// JSONB details.
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID // nil for pre-authentication events
	Action     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	Details    models.JSONMap
}

// LogLogin logs a successful login
func (s *AuditService) LogLogin(userID uuid.UUID, method, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "login",
		EntityType: "user",
		EntityID:   userID.String(),
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: models.JSONMap{
			"method":      method, // password, otp, google
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogOTPRequest logs an OTP issue attempt
func (s *AuditService) LogOTPRequest(email, ipAddress, userAgent string, success bool, reason string) error {
	details := models.JSONMap{
		"email":       email,
		"success":     success,
		"device_info": utils.ParseUserAgent(userAgent),
	}
	if reason != "" {
		details["reason"] = reason
	}

	return s.logEvent(AuditEvent{
		Action:     "otp_request",
		EntityType: "otp",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogOTPVerification logs an OTP verification attempt
func (s *AuditService) LogOTPVerification(userID *uuid.UUID, email string, success bool, ipAddress, userAgent, failureReason string) error {
	details := models.JSONMap{
		"email":       email,
		"success":     success,
		"device_info": utils.ParseUserAgent(userAgent),
	}
	if !success && failureReason != "" {
		details["failure_reason"] = failureReason
	}

	action := "otp_verify_failed"
	if success {
		action = "otp_verify_success"
	}

	return s.logEvent(AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "otp",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogPaymentVerification logs a payment signature check outcome
func (s *AuditService) LogPaymentVerification(userID uuid.UUID, orderID string, success bool, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "payment_verify",
		EntityType: "payment",
		EntityID:   orderID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: models.JSONMap{
			"success":     success,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// logEvent writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	var entityID interface{}
	if event.EntityID != "" {
		entityID = event.EntityID
	}

	_, err := s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		entityID,
		event.IPAddress,
		event.UserAgent,
		event.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
