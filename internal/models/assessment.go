package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PersonalDetails is the contact slice of an AI assessment request. It is
// stored separately and never reaches the AI model.
type PersonalDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ApplicationDetails is the case slice of an AI assessment request. It must
// never carry name, email or phone.
type ApplicationDetails struct {
	Citizenship        string   `json:"citizenship"`
	Destination        string   `json:"destination"`
	Purpose            string   `json:"purpose"`
	Age                int      `json:"age"`
	TripDuration       int      `json:"tripDuration"`
	PreviousRejections string   `json:"previousRejections,omitempty"` // yes or no
	RejectionCountries []string `json:"rejectionCountries,omitempty"`
	RejectionDetails   string   `json:"rejectionDetails,omitempty"`
	CriminalRecord     string   `json:"criminalRecord,omitempty"` // yes or no
	CriminalDetails    string   `json:"criminalDetails,omitempty"`
	NoTravelHistory    bool     `json:"noTravelHistory,omitempty"`
	VisitedCountries   []string `json:"visitedCountries,omitempty"`
	BankSavings        float64  `json:"bankSavings,omitempty"`
	MonthlyIncome      float64  `json:"monthlyIncome,omitempty"`
	EmploymentStatus   string   `json:"employmentStatus,omitempty"`
	CompanySchool      string   `json:"companySchool,omitempty"`
	AvailableDocuments []string `json:"availableDocuments,omitempty"`
}

// AIAnalysis is the normalized model verdict
type AIAnalysis struct {
	VisaChance           int       `json:"visaChance"`
	PositivePoints       []string  `json:"positivePoints"`
	NegativePoints       []string  `json:"negativePoints"`
	RiskFactors          []string  `json:"riskFactors"`
	RecommendedDocuments []string  `json:"recommendedDocuments"`
	FinalAdvice          string    `json:"finalAdvice"`
	AnalyzedAt           time.Time `json:"analyzedAt"`
}

// VisaAssessment is a persisted AI checker run
type VisaAssessment struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	PersonalDetails    PersonalDetails    `json:"personalDetails" db:"personal_details"`
	ApplicationDetails ApplicationDetails `json:"applicationDetails" db:"application_details"`
	AIAnalysis         AIAnalysis         `json:"aiAnalysis" db:"ai_analysis"`
	Degraded           bool               `json:"degraded" db:"degraded"`
	ClientIP           NullString         `json:"-" db:"client_ip"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
}

// JSONB plumbing for the three document columns.

// Value implements driver.Valuer
func (p PersonalDetails) Value() (driver.Value, error) { return json.Marshal(p) }

// Scan implements sql.Scanner
func (p *PersonalDetails) Scan(value interface{}) error { return scanJSON(value, p) }

// Value implements driver.Valuer
func (a ApplicationDetails) Value() (driver.Value, error) { return json.Marshal(a) }

// Scan implements sql.Scanner
func (a *ApplicationDetails) Scan(value interface{}) error { return scanJSON(value, a) }

// Value implements driver.Valuer
func (a AIAnalysis) Value() (driver.Value, error) { return json.Marshal(a) }

// Scan implements sql.Scanner
func (a *AIAnalysis) Scan(value interface{}) error { return scanJSON(value, a) }

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB column: unexpected type %T", value)
	}
	return json.Unmarshal(b, dest)
}
