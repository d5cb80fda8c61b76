package models

import (
	"time"

	"github.com/google/uuid"
)

// Application status values. No transition graph is enforced; any known
// status may follow any other.
const (
	StatusPending              = "Pending"
	StatusUnderReview          = "Under Review"
	StatusDocumentsRequired    = "Documents Required"
	StatusAppointmentScheduled = "Appointment Scheduled"
	StatusCasePrepared         = "Case Prepared"
	StatusVisaApproved         = "Visa Approved"
	StatusVisaRejected         = "Visa Rejected"
	StatusDispatched           = "Dispatched / Passport Sent"
	StatusOnHold               = "On Hold"
	StatusWithdrawn            = "Withdrawn by Applicant"
	StatusComplete             = "Complete"
	StatusCancelled            = "Cancelled"
)

// Payment status values on applications
const (
	PaymentUnpaid = "Unpaid"
	PaymentPaid   = "Paid"
)

// Travel purposes
const (
	PurposeTourism  = "Tourism"
	PurposeBusiness = "Business"
	PurposeStudy    = "Study"
	PurposeMedical  = "Medical"
	PurposeTransit  = "Transit"
	PurposeOther    = "Other"
)

// Checklist review states
const (
	ChecklistPending  = "Pending"
	ChecklistAccepted = "Accepted"
	ChecklistRejected = "Rejected"
)

var applicationStatuses = map[string]bool{
	StatusPending:              true,
	StatusUnderReview:          true,
	StatusDocumentsRequired:    true,
	StatusAppointmentScheduled: true,
	StatusCasePrepared:         true,
	StatusVisaApproved:         true,
	StatusVisaRejected:         true,
	StatusDispatched:           true,
	StatusOnHold:               true,
	StatusWithdrawn:            true,
	StatusComplete:             true,
	StatusCancelled:            true,
}

// ValidApplicationStatus reports whether s is a known application status
func ValidApplicationStatus(s string) bool {
	return applicationStatuses[s]
}

// ValidTravelPurpose reports whether p is a known travel purpose
func ValidTravelPurpose(p string) bool {
	switch p {
	case PurposeTourism, PurposeBusiness, PurposeStudy, PurposeMedical, PurposeTransit, PurposeOther:
		return true
	}
	return false
}

// VisaApplication represents a visa case, draft or submitted
type VisaApplication struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	ApplicationID      NullString `json:"applicationId,omitempty" db:"application_id"` // human-facing code, set on submit
	UserID             uuid.UUID  `json:"userId" db:"user_id"`
	FullName           NullString `json:"fullName,omitempty" db:"full_name"`
	DOB                NullTime   `json:"dob,omitempty" db:"dob"`
	Nationality        NullString `json:"nationality,omitempty" db:"nationality"`
	PassportNumber     NullString `json:"passportNumber,omitempty" db:"passport_number"`
	PassportExpiry     NullTime   `json:"passportExpiry,omitempty" db:"passport_expiry"`
	DestinationCountry NullString `json:"destinationCountry,omitempty" db:"destination_country"`
	TravelPurpose      NullString `json:"travelPurpose,omitempty" db:"travel_purpose"`
	TravelDate         NullTime   `json:"travelDate,omitempty" db:"travel_date"`
	ReturnDate         NullTime   `json:"returnDate,omitempty" db:"return_date"`
	Email              NullString `json:"email,omitempty" db:"email"`
	Phone              NullString `json:"phone,omitempty" db:"phone"`
	Address            NullString `json:"address,omitempty" db:"address"`
	EmploymentStatus   NullString `json:"employmentStatus,omitempty" db:"employment_status"`
	MonthlyIncome      NullString `json:"monthlyIncome,omitempty" db:"monthly_income"`
	PreviousVisits     bool       `json:"previousVisits" db:"previous_visits"`
	Notes              NullString `json:"notes,omitempty" db:"notes"`
	ApplicationStatus  string     `json:"applicationStatus" db:"application_status"`
	PaymentStatus      string     `json:"paymentStatus" db:"payment_status"`
	AssignedExpert     NullUUID   `json:"assignedExpert,omitempty" db:"assigned_expert"`
	Priority           NullString `json:"priority,omitempty" db:"priority"`
	ProcessingDeadline NullTime   `json:"processingDeadline,omitempty" db:"processing_deadline"`
	IsDraft            bool       `json:"isDraft" db:"is_draft"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`

	// Populated by joins, not stored on the row
	Checklist []ChecklistItem `json:"checklist,omitempty" db:"-"`
	UserName  NullString      `json:"userName,omitempty" db:"user_name"`
	UserEmail NullString      `json:"userEmail,omitempty" db:"user_email"`
}

// ChecklistItem is a single requested document on a visa application
type ChecklistItem struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	VisaApplicationID uuid.UUID  `json:"visaApplicationId" db:"visa_application_id"`
	Note              string     `json:"note" db:"note"`
	Subnote           NullString `json:"subnote,omitempty" db:"subnote"`
	File              NullString `json:"file,omitempty" db:"file"`
	Accepted          string     `json:"accepted" db:"accepted"` // Pending, Accepted, Rejected
	Remarks           NullString `json:"remarks,omitempty" db:"remarks"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// Notification recipients. The recipient is a coarse role tag, not a user
// id: user feeds join through owned applications, the admin feed filters
// by tag alone.
const (
	NotifyUser  = "user"
	NotifyAdmin = "admin"
)

// Notification is an in-app message tied to a visa application
type Notification struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	VisaApplicationID uuid.UUID  `json:"visaApplicationId" db:"visa_application_id"`
	To                string     `json:"to" db:"recipient"`
	Title             string     `json:"title" db:"title"`
	Message           NullString `json:"message,omitempty" db:"message"`
	Read              bool       `json:"read" db:"read"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}
