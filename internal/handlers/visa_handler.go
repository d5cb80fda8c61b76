package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/middleware"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VisaHandler handles the applicant side of visa applications: drafts,
// submission and checklist document uploads.
type VisaHandler struct {
	visas         *database.VisaApplicationRepository
	appIDs        *services.ApplicationIDService
	checklist     *services.ChecklistService
	notifications *database.NotificationRepository
	files         *FileStore
	logger        *logrus.Logger
}

// NewVisaHandler creates a new visa handler
func NewVisaHandler(
	visas *database.VisaApplicationRepository,
	appIDs *services.ApplicationIDService,
	checklist *services.ChecklistService,
	notifications *database.NotificationRepository,
	files *FileStore,
	logger *logrus.Logger,
) *VisaHandler {
	return &VisaHandler{
		visas:         visas,
		appIDs:        appIDs,
		checklist:     checklist,
		notifications: notifications,
		files:         files,
		logger:        logger,
	}
}

// DraftRequest carries visa application form fields. All fields are
// optional while drafting; submission enforces the required set.
type DraftRequest struct {
	FullName           *string `json:"fullName"`
	DOB                *string `json:"dob"` // 2006-01-02
	Nationality        *string `json:"nationality"`
	PassportNumber     *string `json:"passportNumber"`
	PassportExpiry     *string `json:"passportExpiry"`
	DestinationCountry *string `json:"destinationCountry"`
	TravelPurpose      *string `json:"travelPurpose"`
	TravelDate         *string `json:"travelDate"`
	ReturnDate         *string `json:"returnDate"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	Address            *string `json:"address"`
	EmploymentStatus   *string `json:"employmentStatus"`
	MonthlyIncome      *string `json:"monthlyIncome"`
	PreviousVisits     *bool   `json:"previousVisits"`
	Notes              *string `json:"notes"`
}

// CreateDraft handles POST /api/user/visa/draft
func (h *VisaHandler) CreateDraft(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TravelPurpose != nil && !models.ValidTravelPurpose(*req.TravelPurpose) {
		respondError(c, http.StatusBadRequest, "Unknown travel purpose")
		return
	}

	app := &models.VisaApplication{UserID: userCtx.UserID}
	if err := applyDraft(app, req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.visas.CreateDraft(app); err != nil {
		h.logger.WithError(err).Error("failed to create draft")
		respondError(c, http.StatusInternalServerError, "Failed to save draft")
		return
	}

	respondOK(c, http.StatusCreated, "Draft saved", app)
}

// UpdateDraft handles PUT /api/user/visa/draft/:id
func (h *VisaHandler) UpdateDraft(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TravelPurpose != nil && !models.ValidTravelPurpose(*req.TravelPurpose) {
		respondError(c, http.StatusBadRequest, "Unknown travel purpose")
		return
	}

	updates, err := draftUpdates(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.visas.UpdateDraft(id, userCtx.UserID, updates); err != nil {
		if errors.Is(err, database.ErrApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Draft not found")
			return
		}
		h.logger.WithError(err).Error("failed to update draft")
		respondError(c, http.StatusInternalServerError, "Failed to save draft")
		return
	}

	respondOK(c, http.StatusOK, "Draft saved", nil)
}

// Submit handles POST /api/user/visa/draft/:id/submit. The draft gets a
// human-facing application code and enters the Pending state.
func (h *VisaHandler) Submit(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	app, err := h.visas.GetByIDForUser(id, userCtx.UserID)
	if err != nil {
		if errors.Is(err, database.ErrApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Draft not found")
			return
		}
		h.logger.WithError(err).Error("failed to load draft")
		respondError(c, http.StatusInternalServerError, "Failed to submit application")
		return
	}

	if !app.IsDraft {
		respondError(c, http.StatusConflict, "Application already submitted")
		return
	}

	if missing := missingForSubmit(app); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Application is incomplete",
			Errors:  missing,
		})
		return
	}

	applicationID, err := h.appIDs.Generate(app.DestinationCountry.String, app.TravelPurpose.String)
	if err != nil {
		h.logger.WithError(err).Error("failed to generate application id")
		respondError(c, http.StatusInternalServerError, "Failed to submit application")
		return
	}

	if err := h.visas.Submit(id, userCtx.UserID, applicationID); err != nil {
		if errors.Is(err, database.ErrDuplicateApplicationID) {
			respondError(c, http.StatusConflict, "Please retry the submission")
			return
		}
		h.logger.WithError(err).Error("failed to submit application")
		respondError(c, http.StatusInternalServerError, "Failed to submit application")
		return
	}

	notification := &models.Notification{
		VisaApplicationID: id,
		To:                models.NotifyAdmin,
		Title:             "New visa application " + applicationID + " submitted",
	}
	if err := h.notifications.Create(notification); err != nil {
		h.logger.WithError(err).Warn("failed to create submission notification")
	}

	respondOK(c, http.StatusOK, "Application submitted", gin.H{"applicationId": applicationID})
}

// List handles GET /api/user/visa
func (h *VisaHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	apps, err := h.visas.ListByUser(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list applications")
		respondError(c, http.StatusInternalServerError, "Failed to load applications")
		return
	}

	respondOK(c, http.StatusOK, "Applications loaded", apps)
}

// Get handles GET /api/user/visa/:id, including the document checklist
func (h *VisaHandler) Get(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	app, err := h.visas.GetByIDForUser(id, userCtx.UserID)
	if err != nil {
		if errors.Is(err, database.ErrApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return
		}
		h.logger.WithError(err).Error("failed to get application")
		respondError(c, http.StatusInternalServerError, "Failed to load application")
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

// UploadChecklistDocument handles POST /api/user/visa/:id/checklist/:itemId
func (h *VisaHandler) UploadChecklistDocument(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid checklist item id")
		return
	}

	file := formFile(c, "document")
	if file == nil {
		respondError(c, http.StatusBadRequest, "document file is required")
		return
	}

	path, err := h.files.Save(c, file, "checklist")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.checklist.Upload(appID, userCtx.UserID, itemID, path)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrApplicationNotFound):
			respondError(c, http.StatusNotFound, "Application not found")
		case errors.Is(err, database.ErrChecklistItemNotFound):
			respondError(c, http.StatusNotFound, "Checklist item not found")
		default:
			h.logger.WithError(err).Error("failed to upload checklist document")
			respondError(c, http.StatusInternalServerError, "Failed to upload document")
		}
		return
	}

	respondOK(c, http.StatusOK, "Document uploaded", item)
}

// applyDraft copies request fields onto a new application
func applyDraft(app *models.VisaApplication, req DraftRequest) error {
	updates, err := draftUpdates(req)
	if err != nil {
		return err
	}

	for column, value := range updates {
		switch column {
		case "full_name":
			app.FullName = models.NewNullString(value.(string))
		case "dob":
			app.DOB = models.NewNullTime(value.(time.Time))
		case "nationality":
			app.Nationality = models.NewNullString(value.(string))
		case "passport_number":
			app.PassportNumber = models.NewNullString(value.(string))
		case "passport_expiry":
			app.PassportExpiry = models.NewNullTime(value.(time.Time))
		case "destination_country":
			app.DestinationCountry = models.NewNullString(value.(string))
		case "travel_purpose":
			app.TravelPurpose = models.NewNullString(value.(string))
		case "travel_date":
			app.TravelDate = models.NewNullTime(value.(time.Time))
		case "return_date":
			app.ReturnDate = models.NewNullTime(value.(time.Time))
		case "email":
			app.Email = models.NewNullString(value.(string))
		case "phone":
			app.Phone = models.NewNullString(value.(string))
		case "address":
			app.Address = models.NewNullString(value.(string))
		case "employment_status":
			app.EmploymentStatus = models.NewNullString(value.(string))
		case "monthly_income":
			app.MonthlyIncome = models.NewNullString(value.(string))
		case "previous_visits":
			app.PreviousVisits = value.(bool)
		case "notes":
			app.Notes = models.NewNullString(value.(string))
		}
	}

	return nil
}

// draftUpdates converts the request into a column update map
func draftUpdates(req DraftRequest) (map[string]interface{}, error) {
	updates := map[string]interface{}{}

	for column, value := range map[string]*string{
		"full_name":           req.FullName,
		"nationality":         req.Nationality,
		"passport_number":     req.PassportNumber,
		"destination_country": req.DestinationCountry,
		"travel_purpose":      req.TravelPurpose,
		"email":               req.Email,
		"phone":               req.Phone,
		"address":             req.Address,
		"employment_status":   req.EmploymentStatus,
		"monthly_income":      req.MonthlyIncome,
		"notes":               req.Notes,
	} {
		if value != nil {
			updates[column] = *value
		}
	}

	for column, value := range map[string]*string{
		"dob":             req.DOB,
		"passport_expiry": req.PassportExpiry,
		"travel_date":     req.TravelDate,
		"return_date":     req.ReturnDate,
	} {
		if value == nil {
			continue
		}
		t, err := time.Parse("2006-01-02", *value)
		if err != nil {
			return nil, errors.New(column + " must be a date in YYYY-MM-DD format")
		}
		updates[column] = t
	}

	if req.PreviousVisits != nil {
		updates["previous_visits"] = *req.PreviousVisits
	}

	return updates, nil
}

// missingForSubmit lists the required fields a draft still lacks
func missingForSubmit(app *models.VisaApplication) []string {
	var missing []string

	check := func(field string, ok bool) {
		if !ok {
			missing = append(missing, field+" is required")
		}
	}

	check("fullName", app.FullName.Valid && app.FullName.String != "")
	check("dob", app.DOB.Valid)
	check("nationality", app.Nationality.Valid && app.Nationality.String != "")
	check("passportNumber", app.PassportNumber.Valid && app.PassportNumber.String != "")
	check("passportExpiry", app.PassportExpiry.Valid)
	check("destinationCountry", app.DestinationCountry.Valid && app.DestinationCountry.String != "")
	check("travelPurpose", app.TravelPurpose.Valid && app.TravelPurpose.String != "")
	check("travelDate", app.TravelDate.Valid)
	check("email", app.Email.Valid && app.Email.String != "")
	check("phone", app.Phone.Valid && app.Phone.String != "")

	return missing
}
