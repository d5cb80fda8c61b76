package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/axevisa/visa-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

type fakeAssessmentStore struct {
	saved *models.VisaAssessment
	err   error
}

func (f *fakeAssessmentStore) Create(a *models.VisaAssessment) error {
	if f.err != nil {
		return f.err
	}
	f.saved = a
	return nil
}

func validInput() AssessmentInput {
	return AssessmentInput{
		Name:             "Priya Sharma",
		Email:            "priya@example.com",
		Phone:            "+91 98765 43210",
		Citizenship:      "India",
		Destination:      "Germany",
		Purpose:          "Tourism",
		Age:              29,
		TripDuration:     14,
		BankSavings:      500000,
		MonthlyIncome:    90000,
		EmploymentStatus: "Employed",
		VisitedCountries: []string{"Thailand", "UAE"},
	}
}

func validVerdict() string {
	return `{"visaChance": 78, "positivePoints": ["Stable income"], "negativePoints": [],
		"riskFactors": ["Short travel history"], "recommendedDocuments": ["Bank statement"],
		"finalAdvice": "Apply with strong financial documents."}`
}

func newTestAssessmentService(model *fakeModel, store *fakeAssessmentStore) *AssessmentService {
	logger := logrus.New()
	return NewAssessmentService(model, store, logger)
}

func TestValidate_AcceptsGoodInput(t *testing.T) {
	svc := newTestAssessmentService(&fakeModel{}, &fakeAssessmentStore{})
	assert.Empty(t, svc.Validate(validInput()))
}

func TestValidate_RequiredFields(t *testing.T) {
	svc := newTestAssessmentService(&fakeModel{}, &fakeAssessmentStore{})

	errs := svc.Validate(AssessmentInput{})
	joined := strings.Join(errs, "; ")

	for _, want := range []string{"name", "email", "phone", "citizenship", "destination", "purpose", "age", "tripDuration"} {
		assert.Contains(t, joined, want)
	}
}

func TestValidate_Ranges(t *testing.T) {
	svc := newTestAssessmentService(&fakeModel{}, &fakeAssessmentStore{})

	in := validInput()
	in.Age = 121
	in.TripDuration = 366
	in.BankSavings = 2_000_000_000
	in.MonthlyIncome = 20_000_000

	errs := svc.Validate(in)
	assert.Len(t, errs, 4)
}

func TestValidate_ListCaps(t *testing.T) {
	svc := newTestAssessmentService(&fakeModel{}, &fakeAssessmentStore{})

	in := validInput()
	in.VisitedCountries = make([]string, 51)
	in.RejectionCountries = make([]string, 21)
	in.AvailableDocuments = make([]string, 21)

	errs := svc.Validate(in)
	assert.Len(t, errs, 3)
}

func TestAssess_PartitionsContactData(t *testing.T) {
	model := &fakeModel{reply: validVerdict()}
	store := &fakeAssessmentStore{}
	svc := newTestAssessmentService(model, store)

	result := svc.Assess(context.Background(), validInput(), "203.0.113.9")

	assert.Equal(t, "Priya Sharma", result.PersonalDetails.Name)
	assert.Equal(t, "priya@example.com", result.PersonalDetails.Email)

	// Contact data must never reach the model prompt or the case document
	assert.NotContains(t, model.prompt, "Priya Sharma")
	assert.NotContains(t, model.prompt, "priya@example.com")
	assert.NotContains(t, model.prompt, "98765")

	caseJSON, err := json.Marshal(result.ApplicationDetails)
	require.NoError(t, err)
	assert.NotContains(t, string(caseJSON), "Priya")
	assert.NotContains(t, string(caseJSON), "priya@example.com")
}

func TestAssess_ParsesFencedReply(t *testing.T) {
	model := &fakeModel{reply: "```json\n" + validVerdict() + "\n```"}
	store := &fakeAssessmentStore{}
	svc := newTestAssessmentService(model, store)

	result := svc.Assess(context.Background(), validInput(), "")

	assert.False(t, result.Degraded)
	assert.Equal(t, 78, result.AIAnalysis.VisaChance)
	assert.Equal(t, []string{"Stable income"}, result.AIAnalysis.PositivePoints)
}

func TestAssess_NormalizesVerdict(t *testing.T) {
	model := &fakeModel{reply: `{"visaChance": 140, "finalAdvice": ""}`}
	store := &fakeAssessmentStore{}
	svc := newTestAssessmentService(model, store)

	result := svc.Assess(context.Background(), validInput(), "")

	assert.False(t, result.Degraded)
	assert.Equal(t, 100, result.AIAnalysis.VisaChance)
	assert.NotNil(t, result.AIAnalysis.PositivePoints)
	assert.NotNil(t, result.AIAnalysis.NegativePoints)
	assert.NotEmpty(t, result.AIAnalysis.FinalAdvice)
}

func TestAssess_ClampsNegativeChance(t *testing.T) {
	model := &fakeModel{reply: `{"visaChance": -5, "finalAdvice": "x"}`}
	svc := newTestAssessmentService(model, &fakeAssessmentStore{})

	result := svc.Assess(context.Background(), validInput(), "")
	assert.Equal(t, 0, result.AIAnalysis.VisaChance)
}

func TestAssess_DegradedOnModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("upstream timeout")}
	store := &fakeAssessmentStore{}
	svc := newTestAssessmentService(model, store)

	result := svc.Assess(context.Background(), validInput(), "")

	assert.True(t, result.Degraded)
	assert.Equal(t, 0, result.AIAnalysis.VisaChance)
	assert.Equal(t, []string{"AI Analysis Service Unavailable"}, result.AIAnalysis.NegativePoints)
	assert.NotNil(t, store.saved, "degraded assessments are still persisted")
}

func TestAssess_DegradedOnUnparseableReply(t *testing.T) {
	model := &fakeModel{reply: "I think the chances are pretty good!"}
	svc := newTestAssessmentService(model, &fakeAssessmentStore{})

	result := svc.Assess(context.Background(), validInput(), "")

	assert.True(t, result.Degraded)
	assert.Equal(t, []string{"AI Analysis Service Unavailable"}, result.AIAnalysis.NegativePoints)
}

func TestAssess_StoreFailureStillReturnsResult(t *testing.T) {
	model := &fakeModel{reply: validVerdict()}
	store := &fakeAssessmentStore{err: errors.New("insert failed")}
	svc := newTestAssessmentService(model, store)

	result := svc.Assess(context.Background(), validInput(), "")

	assert.NotNil(t, result)
	assert.Equal(t, 78, result.AIAnalysis.VisaChance)
}
