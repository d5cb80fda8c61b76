package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Emergency request status values
const (
	EmergencyPending  = "pending"
	EmergencyReviewed = "reviewed"
	EmergencyApproved = "approved"
	EmergencyRejected = "rejected"
)

// Emergency travel purposes
const (
	EmergencyTourism   = "tourism"
	EmergencyBusiness  = "business"
	EmergencyMedical   = "medical"
	EmergencyFuneral   = "funeral"
	EmergencyEducation = "education"
	EmergencyOther     = "other"
)

// ValidEmergencyStatus reports whether s is a known emergency request status
func ValidEmergencyStatus(s string) bool {
	switch s {
	case EmergencyPending, EmergencyReviewed, EmergencyApproved, EmergencyRejected:
		return true
	}
	return false
}

// ValidEmergencyPurpose reports whether p is a known emergency travel purpose
func ValidEmergencyPurpose(p string) bool {
	switch p {
	case EmergencyTourism, EmergencyBusiness, EmergencyMedical, EmergencyFuneral, EmergencyEducation, EmergencyOther:
		return true
	}
	return false
}

// EmergencyVisaRequest is a public walk-in request, no account required
type EmergencyVisaRequest struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Email          string     `json:"email" db:"email"`
	Phone          string     `json:"phone" db:"phone"`
	PassportNumber string     `json:"passportNumber" db:"passport_number"`
	Destination    string     `json:"destination" db:"destination"`
	TravelDate     time.Time  `json:"travelDate" db:"travel_date"`
	Purpose        string     `json:"purpose" db:"purpose"`
	Description    NullString `json:"description,omitempty" db:"description"`
	Status         string     `json:"status" db:"status"`

	// Documents
	Passport           NullString     `json:"passport,omitempty" db:"passport"`
	Invitation         NullString     `json:"invitation,omitempty" db:"invitation"`
	Flight             NullString     `json:"flight,omitempty" db:"flight"`
	Hotel              NullString     `json:"hotel,omitempty" db:"hotel"`
	SupportingDocument pq.StringArray `json:"supportingDocument,omitempty" db:"supporting_document"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ContactQuery is a public "contact us" submission
type ContactQuery struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	Resolved  bool      `json:"resolved" db:"resolved"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
