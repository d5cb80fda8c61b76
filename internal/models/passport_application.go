package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Passport application status values
const (
	PassportStatusPending    = "PENDING"
	PassportStatusInProgress = "IN_PROGRESS"
	PassportStatusCompleted  = "COMPLETED"
	PassportStatusRejected   = "REJECTED"
)

// Passport processing priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Passport application types
const (
	PassportTypeFresh       = "Fresh"
	PassportTypeReissue     = "Re-issue"
	PassportTypeLostDamaged = "Lost/Damaged"
)

// ValidPassportStatus reports whether s is a known passport status
func ValidPassportStatus(s string) bool {
	switch s {
	case PassportStatusPending, PassportStatusInProgress, PassportStatusCompleted, PassportStatusRejected:
		return true
	}
	return false
}

// ValidPassportType reports whether t is a known passport application type
func ValidPassportType(t string) bool {
	switch t {
	case PassportTypeFresh, PassportTypeReissue, PassportTypeLostDamaged:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known processing priority
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PassportApplication represents a passport service request
type PassportApplication struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	UserID             uuid.UUID  `json:"userId" db:"user_id"`
	FullName           string     `json:"fullName" db:"full_name"`
	DOB                time.Time  `json:"dob" db:"dob"`
	Gender             string     `json:"gender" db:"gender"`               // Male, Female, Other
	MaritalStatus      string     `json:"maritalStatus" db:"marital_status"` // Single, Married, Divorced
	Nationality        string     `json:"nationality" db:"nationality"`
	Email              NullString `json:"email,omitempty" db:"email"`
	Phone              NullString `json:"phone,omitempty" db:"phone"`
	Address            NullString `json:"address,omitempty" db:"address"`
	ApplicationType    string     `json:"applicationType" db:"application_type"`
	Status             string     `json:"status" db:"status"`
	Priority           string     `json:"priority" db:"priority"`
	PaymentStatus      string     `json:"paymentStatus" db:"payment_status"`
	AssignedExpert     NullUUID   `json:"assignedExpert,omitempty" db:"assigned_expert"`
	ProcessingDeadline NullTime   `json:"processingDeadline,omitempty" db:"processing_deadline"`

	// Documents
	AadharCard              string         `json:"aadharCard" db:"aadhar_card"`
	DOBProof                string         `json:"dobProof" db:"dob_proof"`
	IdentityProof           string         `json:"identityProof" db:"identity_proof"`
	PassportPhotos          pq.StringArray `json:"passportPhotos" db:"passport_photos"`
	EmploymentProof         NullString     `json:"employmentProof,omitempty" db:"employment_proof"`
	Annexures               pq.StringArray `json:"annexures,omitempty" db:"annexures"`
	OldPassport             NullString     `json:"oldPassport,omitempty" db:"old_passport"`
	PoliceVerificationProof NullString     `json:"policeVerificationProof,omitempty" db:"police_verification_proof"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Populated by joins
	UserName  NullString `json:"userName,omitempty" db:"user_name"`
	UserEmail NullString `json:"userEmail,omitempty" db:"user_email"`
}

// PassportListFilter narrows paginated passport application listings
type PassportListFilter struct {
	Status          string
	ApplicationType string
	Priority        string
	PaymentStatus   string
	Gender          string
	FromDate        NullTime
	ToDate          NullTime
}
