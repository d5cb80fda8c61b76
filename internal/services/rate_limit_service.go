package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/axevisa/visa-backend/internal/database"
)

// RateLimitService throttles OTP email requests per account and per IP.
// It is database backed: the AI checker uses the Redis limiter in
// middleware instead, since those limits are hot-path and per-IP only.
type RateLimitService struct {
	db          database.DB
	maxRequests int
	window      time.Duration
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, maxRequests, windowMinutes int) *RateLimitService {
	return &RateLimitService{
		db:          db,
		maxRequests: maxRequests,
		window:      time.Duration(windowMinutes) * time.Minute,
	}
}

// RateLimitError reports an exceeded limit with its retry time
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Check returns a RateLimitError when the email or IP has exceeded the
// allowed OTP requests inside the window.
func (s *RateLimitService) Check(email, ip string) error {
	for _, id := range []struct{ value, kind string }{
		{email, "email"},
		{ip, "ip"},
	} {
		if id.value == "" {
			continue
		}

		count, lastRequest, err := s.requestCount(id.value, id.kind)
		if err != nil {
			return fmt.Errorf("failed to check %s rate limit: %w", id.kind, err)
		}

		if count >= s.maxRequests {
			retryAfter := lastRequest.Add(s.window)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many OTP requests. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
			}
		}
	}

	return nil
}

// Record logs an OTP request against both identifiers
func (s *RateLimitService) Record(email, ip string) error {
	query := `INSERT INTO otp_rate_limits (identifier, identifier_type, created_at) VALUES ($1, $2, NOW())`

	for _, id := range []struct{ value, kind string }{
		{email, "email"},
		{ip, "ip"},
	} {
		if id.value == "" {
			continue
		}
		if _, err := s.db.Exec(query, id.value, id.kind); err != nil {
			return fmt.Errorf("failed to record %s rate limit entry: %w", id.kind, err)
		}
	}

	return nil
}

// Cleanup removes entries older than the window
func (s *RateLimitService) Cleanup() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM otp_rate_limits WHERE created_at < $1`, time.Now().Add(-s.window))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func (s *RateLimitService) requestCount(identifier, identifierType string) (int, time.Time, error) {
	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM otp_rate_limits
		WHERE identifier = $1 AND identifier_type = $2 AND created_at > $3
	`

	var count int
	var lastRequest time.Time
	err := s.db.QueryRow(query, identifier, identifierType, time.Now().Add(-s.window)).Scan(&count, &lastRequest)
	if err != nil && err != sql.ErrNoRows {
		return 0, time.Time{}, err
	}

	return count, lastRequest, nil
}
