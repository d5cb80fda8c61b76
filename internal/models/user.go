package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleUser   = "USER"
	RoleExpert = "EXPERT"
	RoleAdmin  = "ADMIN"
)

// User represents an account in the system. Experts and admins share the
// same table and are distinguished by role.
type User struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Phone       NullString `json:"phone,omitempty" db:"phone"`
	Password    string     `json:"-" db:"password"` // bcrypt hash, never exposed
	Role        string     `json:"role" db:"role"`
	Nationality NullString `json:"nationality,omitempty" db:"nationality"`
	Country     NullString `json:"country,omitempty" db:"country"`
	Address     NullString `json:"address,omitempty" db:"address"`
	ProfilePic  NullString `json:"profilePic,omitempty" db:"profile_pic"`
	Expertise   NullString `json:"expertise,omitempty" db:"expertise"`
	Active      bool       `json:"active" db:"active"`
	GoogleID    NullString `json:"-" db:"google_id"`
	OTP         NullString `json:"-" db:"otp"` // never exposed
	OTPExpiry   NullTime   `json:"-" db:"otp_expiry"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// ValidRole reports whether role is one of the known account roles
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleExpert, RoleAdmin:
		return true
	}
	return false
}

// AuditLog represents a security event record
type AuditLog struct {
	ID         int64      `json:"id" db:"id"`
	UserID     NullUUID   `json:"userId,omitempty" db:"user_id"`
	Action     string     `json:"action" db:"action"`
	EntityType NullString `json:"entityType,omitempty" db:"entity_type"`
	EntityID   NullString `json:"entityId,omitempty" db:"entity_id"`
	IPAddress  NullString `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"userAgent,omitempty" db:"user_agent"`
	Details    JSONMap    `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}
