package handlers

import (
	"errors"
	"net/http"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/middleware"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/internal/services"
	"github.com/axevisa/visa-backend/pkg/mailer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ExpertHandler handles the expert workspace: cases assigned to the
// signed-in expert only.
type ExpertHandler struct {
	visas     *database.VisaApplicationRepository
	passports *database.PassportRepository
	checklist *services.ChecklistService
	mail      *mailer.Mailer
	logger    *logrus.Logger
}

// NewExpertHandler creates a new expert handler
func NewExpertHandler(
	visas *database.VisaApplicationRepository,
	passports *database.PassportRepository,
	checklist *services.ChecklistService,
	mail *mailer.Mailer,
	logger *logrus.Logger,
) *ExpertHandler {
	return &ExpertHandler{
		visas:     visas,
		passports: passports,
		checklist: checklist,
		mail:      mail,
		logger:    logger,
	}
}

// ListVisas handles GET /api/expert/visa
func (h *ExpertHandler) ListVisas(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	apps, err := h.visas.ListByExpert(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list assigned applications")
		respondError(c, http.StatusInternalServerError, "Failed to load applications")
		return
	}

	respondOK(c, http.StatusOK, "Applications loaded", apps)
}

// GetVisa handles GET /api/expert/visa/:id
func (h *ExpertHandler) GetVisa(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	app, ok := h.assignedVisa(c, userCtx.UserID)
	if !ok {
		return
	}

	checklist, err := h.visas.ListChecklist(app.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to load checklist")
		respondError(c, http.StatusInternalServerError, "Failed to load application")
		return
	}
	app.Checklist = checklist

	respondOK(c, http.StatusOK, "Application loaded", app)
}

// UpdateStatusRequest changes an application's workflow status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateVisaStatus handles PUT /api/expert/visa/:id/status
func (h *ExpertHandler) UpdateVisaStatus(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidApplicationStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "Unknown application status")
		return
	}

	app, ok := h.assignedVisa(c, userCtx.UserID)
	if !ok {
		return
	}

	if err := h.visas.UpdateStatus(app.ID, req.Status); err != nil {
		h.logger.WithError(err).Error("failed to update status")
		respondError(c, http.StatusInternalServerError, "Failed to update status")
		return
	}

	sendStatusEmail(h.mail, h.logger, app, req.Status)

	respondOK(c, http.StatusOK, "Status updated", nil)
}

// ChecklistItemRequest requests a document from the applicant
type ChecklistItemRequest struct {
	Note    string `json:"note" binding:"required,min=2,max=200"`
	Subnote string `json:"subnote"`
}

// AddChecklistItem handles POST /api/expert/visa/:id/checklist
func (h *ExpertHandler) AddChecklistItem(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, ok := h.assignedVisa(c, userCtx.UserID)
	if !ok {
		return
	}

	item, err := h.checklist.AddItem(app.ID, req.Note, req.Subnote)
	if err != nil {
		h.logger.WithError(err).Error("failed to add checklist item")
		respondError(c, http.StatusInternalServerError, "Failed to add checklist item")
		return
	}

	respondOK(c, http.StatusCreated, "Checklist item added", item)
}

// ReviewChecklistRequest records an accept or reject decision
type ReviewChecklistRequest struct {
	Decision string `json:"decision" binding:"required"`
	Remarks  string `json:"remarks"`
}

// ReviewChecklistItem handles PUT /api/expert/visa/:id/checklist/:itemId
func (h *ExpertHandler) ReviewChecklistItem(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req ReviewChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, ok := h.assignedVisa(c, userCtx.UserID)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid checklist item id")
		return
	}

	if err := h.checklist.Review(app.ID, itemID, req.Decision, req.Remarks); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidChecklistDecision):
			respondError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, database.ErrChecklistItemNotFound):
			respondError(c, http.StatusNotFound, "Checklist item not found")
		default:
			h.logger.WithError(err).Error("failed to review checklist item")
			respondError(c, http.StatusInternalServerError, "Failed to review checklist item")
		}
		return
	}

	respondOK(c, http.StatusOK, "Checklist item reviewed", nil)
}

// ListPassports handles GET /api/expert/passport
func (h *ExpertHandler) ListPassports(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	apps, err := h.passports.ListByExpert(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list assigned passport applications")
		respondError(c, http.StatusInternalServerError, "Failed to load applications")
		return
	}

	respondOK(c, http.StatusOK, "Applications loaded", apps)
}

// GetPassport handles GET /api/expert/passport/:id
func (h *ExpertHandler) GetPassport(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	app, err := h.passports.GetByIDForExpert(id, userCtx.UserID)
	if err != nil {
		if errors.Is(err, database.ErrPassportApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return
		}
		h.logger.WithError(err).Error("failed to get passport application")
		respondError(c, http.StatusInternalServerError, "Failed to load application")
		return
	}

	respondOK(c, http.StatusOK, "Application loaded", app)
}

// UpdatePassportStatus handles PUT /api/expert/passport/:id/status
func (h *ExpertHandler) UpdatePassportStatus(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidPassportStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "Unknown passport status")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	if _, err := h.passports.GetByIDForExpert(id, userCtx.UserID); err != nil {
		if errors.Is(err, database.ErrPassportApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return
		}
		h.logger.WithError(err).Error("failed to get passport application")
		respondError(c, http.StatusInternalServerError, "Failed to update status")
		return
	}

	if err := h.passports.UpdateStatus(id, req.Status); err != nil {
		h.logger.WithError(err).Error("failed to update passport status")
		respondError(c, http.StatusInternalServerError, "Failed to update status")
		return
	}

	respondOK(c, http.StatusOK, "Status updated", nil)
}

// Stats handles GET /api/expert/stats
func (h *ExpertHandler) Stats(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	visaCounts := map[string]int{}
	for _, status := range []string{
		models.StatusPending,
		models.StatusUnderReview,
		models.StatusDocumentsRequired,
		models.StatusVisaApproved,
		models.StatusVisaRejected,
	} {
		n, err := h.visas.CountByStatusForExpert(userCtx.UserID, status)
		if err != nil {
			h.logger.WithError(err).Error("failed to count applications")
			respondError(c, http.StatusInternalServerError, "Failed to load stats")
			return
		}
		visaCounts[status] = n
	}

	passportCounts := map[string]int{}
	for _, status := range []string{
		models.PassportStatusPending,
		models.PassportStatusInProgress,
		models.PassportStatusCompleted,
		models.PassportStatusRejected,
	} {
		n, err := h.passports.CountByStatusForExpert(userCtx.UserID, status)
		if err != nil {
			h.logger.WithError(err).Error("failed to count passport applications")
			respondError(c, http.StatusInternalServerError, "Failed to load stats")
			return
		}
		passportCounts[status] = n
	}

	respondOK(c, http.StatusOK, "Stats loaded", gin.H{
		"visa":     visaCounts,
		"passport": passportCounts,
	})
}

// assignedVisa loads the visa application on the path, scoped to the expert
func (h *ExpertHandler) assignedVisa(c *gin.Context, expertID uuid.UUID) (*models.VisaApplication, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return nil, false
	}

	app, err := h.visas.GetByIDForExpert(id, expertID)
	if err != nil {
		if errors.Is(err, database.ErrApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return nil, false
		}
		h.logger.WithError(err).Error("failed to get application")
		respondError(c, http.StatusInternalServerError, "Failed to load application")
		return nil, false
	}

	return app, true
}

// sendStatusEmail notifies the applicant of a status change, best effort
func sendStatusEmail(mail *mailer.Mailer, logger *logrus.Logger, app *models.VisaApplication, status string) {
	if !app.UserEmail.Valid || app.UserEmail.String == "" {
		return
	}

	name := app.UserName.String
	if name == "" {
		name = "Applicant"
	}
	code := app.ApplicationID.String
	email := app.UserEmail.String

	go func() {
		subject, body := mailer.StatusUpdateEmail(name, code, status)
		if err := mail.Send(email, subject, body); err != nil {
			logger.WithError(err).WithField("email", email).Error("failed to send status email")
		}
	}()
}
