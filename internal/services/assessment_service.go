package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// modelClient generates a text completion for a prompt
type modelClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// assessmentStore persists completed assessments
type assessmentStore interface {
	Create(a *models.VisaAssessment) error
}

// fallbackAdvice is returned when the model cannot be reached or parsed
const fallbackAdvice = "We could not complete the automated analysis right now. Please consult one of our visa experts for a manual review."

// serviceUnavailableNote marks a degraded verdict in the negative points
const serviceUnavailableNote = "AI Analysis Service Unavailable"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AssessmentInput is the public AI checker request body
type AssessmentInput struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	Citizenship        string   `json:"citizenship"`
	Destination        string   `json:"destination"`
	Purpose            string   `json:"purpose"`
	Age                int      `json:"age"`
	TripDuration       int      `json:"tripDuration"`
	PreviousRejections string   `json:"previousRejections"`
	RejectionCountries []string `json:"rejectionCountries"`
	RejectionDetails   string   `json:"rejectionDetails"`
	CriminalRecord     string   `json:"criminalRecord"`
	CriminalDetails    string   `json:"criminalDetails"`
	NoTravelHistory    bool     `json:"noTravelHistory"`
	VisitedCountries   []string `json:"visitedCountries"`
	BankSavings        float64  `json:"bankSavings"`
	MonthlyIncome      float64  `json:"monthlyIncome"`
	EmploymentStatus   string   `json:"employmentStatus"`
	CompanySchool      string   `json:"companySchool"`
	AvailableDocuments []string `json:"availableDocuments"`
}

// AssessmentService runs the AI checker pipeline: validate, partition,
// prompt, call, parse, normalize, persist. The model is advisory only; a
// failed call degrades the verdict instead of failing the request.
type AssessmentService struct {
	model  modelClient
	store  assessmentStore
	logger *logrus.Logger
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(model modelClient, store assessmentStore, logger *logrus.Logger) *AssessmentService {
	return &AssessmentService{
		model:  model,
		store:  store,
		logger: logger,
	}
}

// Validate returns the list of field problems; an empty list means the
// input is acceptable.
func (s *AssessmentService) Validate(in AssessmentInput) []string {
	var errs []string

	requireText := func(field, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			errs = append(errs, field+" is required")
			return
		}
		if len(value) < 2 || len(value) > 100 {
			errs = append(errs, field+" must be between 2 and 100 characters")
		}
	}

	requireText("name", in.Name)
	requireText("citizenship", in.Citizenship)
	requireText("destination", in.Destination)
	requireText("purpose", in.Purpose)

	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, "email is required")
	} else if !emailPattern.MatchString(in.Email) {
		errs = append(errs, "email is invalid")
	}

	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		errs = append(errs, "phone is required")
	} else if len(phone) < 5 || len(phone) > 20 {
		errs = append(errs, "phone must be between 5 and 20 characters")
	}

	if in.Age < 1 || in.Age > 120 {
		errs = append(errs, "age must be between 1 and 120")
	}
	if in.TripDuration < 1 || in.TripDuration > 365 {
		errs = append(errs, "tripDuration must be between 1 and 365")
	}
	if in.BankSavings < 0 || in.BankSavings > 1_000_000_000 {
		errs = append(errs, "bankSavings must be between 0 and 1000000000")
	}
	if in.MonthlyIncome < 0 || in.MonthlyIncome > 10_000_000 {
		errs = append(errs, "monthlyIncome must be between 0 and 10000000")
	}

	if in.PreviousRejections != "" && in.PreviousRejections != "yes" && in.PreviousRejections != "no" {
		errs = append(errs, "previousRejections must be yes or no")
	}
	if in.CriminalRecord != "" && in.CriminalRecord != "yes" && in.CriminalRecord != "no" {
		errs = append(errs, "criminalRecord must be yes or no")
	}

	if len(in.VisitedCountries) > 50 {
		errs = append(errs, "visitedCountries cannot exceed 50 entries")
	}
	if len(in.RejectionCountries) > 20 {
		errs = append(errs, "rejectionCountries cannot exceed 20 entries")
	}
	if len(in.AvailableDocuments) > 20 {
		errs = append(errs, "availableDocuments cannot exceed 20 entries")
	}

	return errs
}

// Assess runs the pipeline on validated input. It always returns an
// assessment: a model or parse failure yields the degraded verdict, and
// a persistence failure is logged without affecting the response.
func (s *AssessmentService) Assess(ctx context.Context, in AssessmentInput, clientIP string) *models.VisaAssessment {
	personal, application := partition(in)

	analysis, degraded := s.analyze(ctx, application)

	assessment := &models.VisaAssessment{
		PersonalDetails:    personal,
		ApplicationDetails: application,
		AIAnalysis:         analysis,
		Degraded:           degraded,
		ClientIP:           models.NewNullString(clientIP),
	}

	if err := s.store.Create(assessment); err != nil {
		s.logger.WithError(err).Error("failed to persist assessment")
	}

	return assessment
}

// partition splits contact data from case data. Only case data may reach
// the model or the stored applicationDetails document.
func partition(in AssessmentInput) (models.PersonalDetails, models.ApplicationDetails) {
	personal := models.PersonalDetails{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}

	application := models.ApplicationDetails{
		Citizenship:        strings.TrimSpace(in.Citizenship),
		Destination:        strings.TrimSpace(in.Destination),
		Purpose:            strings.TrimSpace(in.Purpose),
		Age:                in.Age,
		TripDuration:       in.TripDuration,
		PreviousRejections: in.PreviousRejections,
		RejectionCountries: in.RejectionCountries,
		RejectionDetails:   in.RejectionDetails,
		CriminalRecord:     in.CriminalRecord,
		CriminalDetails:    in.CriminalDetails,
		NoTravelHistory:    in.NoTravelHistory,
		VisitedCountries:   in.VisitedCountries,
		BankSavings:        in.BankSavings,
		MonthlyIncome:      in.MonthlyIncome,
		EmploymentStatus:   in.EmploymentStatus,
		CompanySchool:      in.CompanySchool,
		AvailableDocuments: in.AvailableDocuments,
	}

	return personal, application
}

func (s *AssessmentService) analyze(ctx context.Context, details models.ApplicationDetails) (models.AIAnalysis, bool) {
	prompt := buildPrompt(details)

	reply, err := s.model.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).Warn("model call failed, returning degraded verdict")
		return degradedAnalysis(), true
	}

	parsed, err := parseVerdict(reply)
	if err != nil {
		s.logger.WithError(err).Warn("model reply unparseable, returning degraded verdict")
		return degradedAnalysis(), true
	}

	return normalize(parsed), false
}

// verdict is the JSON shape the prompt demands from the model
type verdict struct {
	VisaChance           *int     `json:"visaChance"`
	PositivePoints       []string `json:"positivePoints"`
	NegativePoints       []string `json:"negativePoints"`
	RiskFactors          []string `json:"riskFactors"`
	RecommendedDocuments []string `json:"recommendedDocuments"`
	FinalAdvice          string   `json:"finalAdvice"`
}

func buildPrompt(d models.ApplicationDetails) string {
	caseJSON, _ := json.MarshalIndent(d, "", "  ")

	var b strings.Builder
	b.WriteString("You are a senior visa consultant. Assess the following visa application profile.\n\n")
	b.WriteString("Score the approval chance using these weighted pillars:\n")
	b.WriteString("1. Financial standing (savings, income, employment): 40%\n")
	b.WriteString("2. Travel history (visited countries, prior rejections): 30%\n")
	b.WriteString("3. Purpose of travel and home ties: 20%\n")
	b.WriteString("4. Documentation readiness: 10%\n\n")
	b.WriteString("Profile:\n")
	b.Write(caseJSON)
	b.WriteString("\n\nRespond with a single JSON object and nothing else, using exactly these keys:\n")
	b.WriteString(`{"visaChance": <integer 0-100>, "positivePoints": [...], "negativePoints": [...], ` +
		`"riskFactors": [...], "recommendedDocuments": [...], "finalAdvice": "<string>"}`)

	return b.String()
}

// parseVerdict strips markdown code fences and unmarshals the reply
func parseVerdict(reply string) (verdict, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var v verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return verdict{}, fmt.Errorf("failed to parse model verdict: %w", err)
	}

	return v, nil
}

// normalize clamps the score and fills missing fields with safe defaults
func normalize(v verdict) models.AIAnalysis {
	chance := 0
	if v.VisaChance != nil {
		chance = *v.VisaChance
	}
	if chance < 0 {
		chance = 0
	}
	if chance > 100 {
		chance = 100
	}

	advice := strings.TrimSpace(v.FinalAdvice)
	if advice == "" {
		advice = fallbackAdvice
	}

	return models.AIAnalysis{
		VisaChance:           chance,
		PositivePoints:       emptyIfNil(v.PositivePoints),
		NegativePoints:       emptyIfNil(v.NegativePoints),
		RiskFactors:          emptyIfNil(v.RiskFactors),
		RecommendedDocuments: emptyIfNil(v.RecommendedDocuments),
		FinalAdvice:          advice,
		AnalyzedAt:           time.Now(),
	}
}

func degradedAnalysis() models.AIAnalysis {
	return models.AIAnalysis{
		VisaChance:           0,
		PositivePoints:       []string{},
		NegativePoints:       []string{serviceUnavailableNote},
		RiskFactors:          []string{},
		RecommendedDocuments: []string{},
		FinalAdvice:          fallbackAdvice,
		AnalyzedAt:           time.Now(),
	}
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
