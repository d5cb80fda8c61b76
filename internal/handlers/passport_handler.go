package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/middleware"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PassportHandler handles the applicant side of passport applications
type PassportHandler struct {
	passports *database.PassportRepository
	files     *FileStore
	logger    *logrus.Logger
}

// NewPassportHandler creates a new passport handler
func NewPassportHandler(passports *database.PassportRepository, files *FileStore, logger *logrus.Logger) *PassportHandler {
	return &PassportHandler{
		passports: passports,
		files:     files,
		logger:    logger,
	}
}

// Create handles POST /api/user/passport. The request is a multipart
// form carrying the applicant details plus the document files.
func (h *PassportHandler) Create(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	app := &models.PassportApplication{
		UserID:          userCtx.UserID,
		FullName:        c.PostForm("fullName"),
		Gender:          c.PostForm("gender"),
		MaritalStatus:   c.PostForm("maritalStatus"),
		Nationality:     c.PostForm("nationality"),
		ApplicationType: c.PostForm("applicationType"),
	}

	if app.FullName == "" || app.Gender == "" || app.MaritalStatus == "" || app.Nationality == "" {
		respondError(c, http.StatusBadRequest, "fullName, gender, maritalStatus and nationality are required")
		return
	}
	if !models.ValidPassportType(app.ApplicationType) {
		respondError(c, http.StatusBadRequest, "Unknown application type")
		return
	}

	dob, err := time.Parse("2006-01-02", c.PostForm("dob"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "dob must be a date in YYYY-MM-DD format")
		return
	}
	app.DOB = dob

	if v := c.PostForm("email"); v != "" {
		app.Email = models.NewNullString(v)
	}
	if v := c.PostForm("phone"); v != "" {
		app.Phone = models.NewNullString(v)
	}
	if v := c.PostForm("address"); v != "" {
		app.Address = models.NewNullString(v)
	}

	// Required documents
	for field, dest := range map[string]*string{
		"aadharCard":    &app.AadharCard,
		"dobProof":      &app.DOBProof,
		"identityProof": &app.IdentityProof,
	} {
		file := formFile(c, field)
		if file == nil {
			respondError(c, http.StatusBadRequest, field+" document is required")
			return
		}
		path, err := h.files.Save(c, file, "passport")
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		*dest = path
	}

	photos := form.File["passportPhotos"]
	if len(photos) == 0 {
		respondError(c, http.StatusBadRequest, "At least one passport photo is required")
		return
	}
	photoPaths, err := h.files.SaveAll(c, photos, "passport", 2)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	app.PassportPhotos = photoPaths

	// Optional documents
	if file := formFile(c, "employmentProof"); file != nil {
		path, err := h.files.Save(c, file, "passport")
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		app.EmploymentProof = models.NewNullString(path)
	}
	if file := formFile(c, "oldPassport"); file != nil {
		path, err := h.files.Save(c, file, "passport")
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		app.OldPassport = models.NewNullString(path)
	}
	if file := formFile(c, "policeVerificationProof"); file != nil {
		path, err := h.files.Save(c, file, "passport")
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		app.PoliceVerificationProof = models.NewNullString(path)
	}
	if annexures := form.File["annexures"]; len(annexures) > 0 {
		paths, err := h.files.SaveAll(c, annexures, "passport", 5)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		app.Annexures = paths
	}

	if err := h.passports.Create(app); err != nil {
		h.logger.WithError(err).Error("failed to create passport application")
		respondError(c, http.StatusInternalServerError, "Failed to create application")
		return
	}

	respondOK(c, http.StatusCreated, "Application created", app)
}

// List handles GET /api/user/passport with filter and pagination params
func (h *PassportHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	filter := models.PassportListFilter{
		Status:          c.Query("status"),
		ApplicationType: c.Query("applicationType"),
		Priority:        c.Query("priority"),
		PaymentStatus:   c.Query("paymentStatus"),
		Gender:          c.Query("gender"),
	}
	if v := c.Query("fromDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.FromDate = models.NewNullTime(t)
		}
	}
	if v := c.Query("toDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.ToDate = models.NewNullTime(t)
		}
	}

	page, limit := pagination(c)
	apps, total, err := h.passports.ListByUser(userCtx.UserID, filter, page, limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list passport applications")
		respondError(c, http.StatusInternalServerError, "Failed to load applications")
		return
	}

	respondOK(c, http.StatusOK, "Applications loaded", gin.H{
		"applications": apps,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

// Get handles GET /api/user/passport/:id
func (h *PassportHandler) Get(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	app, err := h.passports.GetByIDForUser(id, userCtx.UserID)
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
