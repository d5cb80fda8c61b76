package handlers

import (
	"net/http"
	"time"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/internal/services"
	"github.com/axevisa/visa-backend/internal/utils"
	"github.com/axevisa/visa-backend/pkg/mailer"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PublicHandler handles unauthenticated endpoints: emergency visa intake,
// contact queries, package listings and the AI eligibility checker.
type PublicHandler struct {
	emergencies *database.EmergencyVisaRepository
	contacts    *database.ContactRepository
	packages    *database.PackageRepository
	settings    *database.SettingsRepository
	assessments  *services.AssessmentService
	requirements *services.RequirementService
	files        *FileStore
	mail         *mailer.Mailer
	logger       *logrus.Logger
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(
	emergencies *database.EmergencyVisaRepository,
	contacts *database.ContactRepository,
	packages *database.PackageRepository,
	settings *database.SettingsRepository,
	assessments *services.AssessmentService,
	requirements *services.RequirementService,
	files *FileStore,
	mail *mailer.Mailer,
	logger *logrus.Logger,
) *PublicHandler {
	return &PublicHandler{
		emergencies:  emergencies,
		contacts:     contacts,
		packages:     packages,
		settings:     settings,
		assessments:  assessments,
		requirements: requirements,
		files:        files,
		mail:         mail,
		logger:       logger,
	}
}

// CreateEmergencyRequest handles POST /api/public/emergency-visa. The
// request is a multipart form; no account is required.
func (h *PublicHandler) CreateEmergencyRequest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	req := &models.EmergencyVisaRequest{
		Name:           c.PostForm("name"),
		Email:          c.PostForm("email"),
		Phone:          c.PostForm("phone"),
		PassportNumber: c.PostForm("passportNumber"),
		Destination:    c.PostForm("destination"),
		Purpose:        c.PostForm("purpose"),
	}

	if req.Name == "" || req.Email == "" || req.Phone == "" || req.PassportNumber == "" || req.Destination == "" {
		respondError(c, http.StatusBadRequest, "name, email, phone, passportNumber and destination are required")
		return
	}
	if !models.ValidEmergencyPurpose(req.Purpose) {
		respondError(c, http.StatusBadRequest, "Unknown travel purpose")
		return
	}

	travelDate, err := time.Parse("2006-01-02", c.PostForm("travelDate"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "travelDate must be a date in YYYY-MM-DD format")
		return
	}
	req.TravelDate = travelDate

	if v := c.PostForm("description"); v != "" {
		req.Description = models.NewNullString(v)
	}

	for field, dest := range map[string]*models.NullString{
		"passport":   &req.Passport,
		"invitation": &req.Invitation,
		"flight":     &req.Flight,
		"hotel":      &req.Hotel,
	} {
		file := formFile(c, field)
		if file == nil {
			continue
		}
		path, err := h.files.Save(c, file, "emergency")
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		*dest = models.NewNullString(path)
	}

	if supporting := form.File["supportingDocument"]; len(supporting) > 0 {
		paths, err := h.files.SaveAll(c, supporting, "emergency", 5)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		req.SupportingDocument = paths
	}

	if err := h.emergencies.Create(req); err != nil {
		h.logger.WithError(err).Error("failed to create emergency request")
		respondError(c, http.StatusInternalServerError, "Failed to submit request")
		return
	}

	go func() {
		subject, body := mailer.EmergencyAckEmail(req.Name, req.Destination)
		if err := h.mail.Send(req.Email, subject, body); err != nil {
			h.logger.WithError(err).WithField("email", req.Email).Error("failed to send emergency acknowledgement")
		}
	}()

	respondOK(c, http.StatusCreated, "Request submitted. Our team will contact you shortly.", req)
}

// ContactRequest is a public contact form submission
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=3,max=200"`
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

// CreateContactQuery handles POST /api/public/contact
func (h *PublicHandler) CreateContactQuery(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := &models.ContactQuery{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.contacts.Create(query); err != nil {
		h.logger.WithError(err).Error("failed to create contact query")
		respondError(c, http.StatusInternalServerError, "Failed to submit query")
		return
	}

	respondOK(c, http.StatusCreated, "Query submitted", nil)
}

// ListPackages handles GET /api/public/packages
func (h *PublicHandler) ListPackages(c *gin.Context) {
	packages, err := h.packages.ListActive()
	if err != nil {
		h.logger.WithError(err).Error("failed to list packages")
		respondError(c, http.StatusInternalServerError, "Failed to load packages")
		return
	}

	respondOK(c, http.StatusOK, "Packages loaded", packages)
}

// GetSettings handles GET /api/public/settings, exposing the fee and
// contact configuration.
func (h *PublicHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get()
	if err != nil {
		h.logger.WithError(err).Error("failed to load settings")
		respondError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	respondOK(c, http.StatusOK, "Settings loaded", settings)
}

// RequirementRequest asks which visa requirement applies between two
// countries, by ISO2 code.
type RequirementRequest struct {
	Source      string `json:"source" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// CheckRequirement handles POST /api/public/visa-requirement
func (h *PublicHandler) CheckRequirement(c *gin.Context) {
	var req RequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "source and destination are required")
		return
	}

	requirement, ok := h.requirements.Lookup(req.Source, req.Destination)
	if !ok {
		respondError(c, http.StatusNotFound, "Requirement not found")
		return
	}

	respondOK(c, http.StatusOK, "Requirement found", gin.H{"requirement": requirement})
}

// CheckVisa handles POST /api/public/ai-checker. A model outage still
// returns 200 with a degraded verdict.
func (h *PublicHandler) CheckVisa(c *gin.Context) {
	var input services.AssessmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := h.assessments.Validate(input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  errs,
		})
		return
	}

	assessment := h.assessments.Assess(c.Request.Context(), input, utils.GetRealIP(c))

	respondOK(c, http.StatusOK, "Assessment complete", assessment)
}
