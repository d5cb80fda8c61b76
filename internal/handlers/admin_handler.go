package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/axevisa/visa-backend/internal/config"
	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/middleware"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/internal/services"
	"github.com/axevisa/visa-backend/pkg/mailer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler handles the back-office surface: all applications,
// assignment, payments, packages, settings, tickets and staff accounts.
type AdminHandler struct {
	users       *database.UserRepository
	visas       *database.VisaApplicationRepository
	passports   *database.PassportRepository
	payments    *database.PaymentRepository
	packages    *database.PackageRepository
	settings    *database.SettingsRepository
	tickets     *database.TicketRepository
	contacts    *database.ContactRepository
	emergencies *database.EmergencyVisaRepository
	assessments *database.AssessmentRepository
	notices     *database.NotificationRepository
	checklist   *services.ChecklistService
	mail        *mailer.Mailer
	config      *config.Config
	logger      *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	users *database.UserRepository,
	visas *database.VisaApplicationRepository,
	passports *database.PassportRepository,
	payments *database.PaymentRepository,
	packages *database.PackageRepository,
	settings *database.SettingsRepository,
	tickets *database.TicketRepository,
	contacts *database.ContactRepository,
	emergencies *database.EmergencyVisaRepository,
	assessments *database.AssessmentRepository,
	notices *database.NotificationRepository,
	checklist *services.ChecklistService,
	mail *mailer.Mailer,
	cfg *config.Config,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:       users,
		visas:       visas,
		passports:   passports,
		payments:    payments,
		packages:    packages,
		settings:    settings,
		tickets:     tickets,
		contacts:    contacts,
		emergencies: emergencies,
		assessments: assessments,
		notices:     notices,
		checklist:   checklist,
		mail:        mail,
		config:      cfg,
		logger:      logger,
	}
}

// ListVisas handles GET /api/admin/visa
func (h *AdminHandler) ListVisas(c *gin.Context) {
	apps, err := h.visas.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list applications")
		respondError(c, http.StatusInternalServerError, "Failed to load applications")
		return
	}
	respondOK(c, http.StatusOK, "Applications loaded", apps)
}

// GetVisa handles GET /api/admin/visa/:id
func (h *AdminHandler) GetVisa(c *gin.Context) {
	app, ok := h.visaByID(c)
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

// AssignExpertRequest assigns a case to an expert
type AssignExpertRequest struct {
	ExpertID string `json:"expertId" binding:"required"`
	Priority string `json:"priority"`
	Deadline string `json:"deadline"` // 2006-01-02
}

// AssignVisaExpert handles PUT /api/admin/visa/:id/assign
func (h *AdminHandler) AssignVisaExpert(c *gin.Context) {
	app, ok := h.visaByID(c)
	if !ok {
		return
	}

	expertID, priority, deadline, ok := h.parseAssignment(c)
	if !ok {
		return
	}

	if err := h.visas.AssignExpert(app.ID, expertID, priority, deadline); err != nil {
		h.logger.WithError(err).Error("failed to assign expert")
		respondError(c, http.StatusInternalServerError, "Failed to assign expert")
		return
	}

	respondOK(c, http.StatusOK, "Expert assigned", nil)
}

// UpdateVisaStatus handles PUT /api/admin/visa/:id/status
func (h *AdminHandler) UpdateVisaStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidApplicationStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "Unknown application status")
		return
	}

	app, ok := h.visaByID(c)
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

// AddChecklistItem handles POST /api/admin/visa/:id/checklist
func (h *AdminHandler) AddChecklistItem(c *gin.Context) {
	var req ChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, ok := h.visaByID(c)
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

// ReviewChecklistItem handles PUT /api/admin/visa/:id/checklist/:itemId
func (h *AdminHandler) ReviewChecklistItem(c *gin.Context) {
	var req ReviewChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, ok := h.visaByID(c)
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

// ListPassports handles GET /api/admin/passport
func (h *AdminHandler) ListPassports(c *gin.Context) {
	apps, err := h.passports.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list passport applications")
		respondError(c, http.StatusInternalServerError, "Failed to load applications")
		return
	}
	respondOK(c, http.StatusOK, "Applications loaded", apps)
}

// GetPassport handles GET /api/admin/passport/:id
func (h *AdminHandler) GetPassport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	app, err := h.passports.GetByID(id)
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

// AssignPassportExpert handles PUT /api/admin/passport/:id/assign
func (h *AdminHandler) AssignPassportExpert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return
	}

	expertID, priority, deadline, ok := h.parseAssignment(c)
	if !ok {
		return
	}

	if err := h.passports.AssignExpert(id, expertID, priority, deadline); err != nil {
		if errors.Is(err, database.ErrPassportApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return
		}
		h.logger.WithError(err).Error("failed to assign expert")
		respondError(c, http.StatusInternalServerError, "Failed to assign expert")
		return
	}

	respondOK(c, http.StatusOK, "Expert assigned", nil)
}

// UpdatePassportStatus handles PUT /api/admin/passport/:id/status
func (h *AdminHandler) UpdatePassportStatus(c *gin.Context) {
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

	if err := h.passports.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, database.ErrPassportApplicationNotFound) {
			respondError(c, http.StatusNotFound, "Application not found")
			return
		}
		h.logger.WithError(err).Error("failed to update passport status")
		respondError(c, http.StatusInternalServerError, "Failed to update status")
		return
	}

	respondOK(c, http.StatusOK, "Status updated", nil)
}

// ListEmergencyRequests handles GET /api/admin/emergency-visa
func (h *AdminHandler) ListEmergencyRequests(c *gin.Context) {
	requests, err := h.emergencies.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list emergency requests")
		respondError(c, http.StatusInternalServerError, "Failed to load requests")
		return
	}
	respondOK(c, http.StatusOK, "Requests loaded", requests)
}

// GetEmergencyRequest handles GET /api/admin/emergency-visa/:id
func (h *AdminHandler) GetEmergencyRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request id")
		return
	}

	request, err := h.emergencies.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrEmergencyRequestNotFound) {
			respondError(c, http.StatusNotFound, "Request not found")
			return
		}
		h.logger.WithError(err).Error("failed to load emergency request")
		respondError(c, http.StatusInternalServerError, "Failed to load request")
		return
	}

	respondOK(c, http.StatusOK, "Request loaded", request)
}

// UpdateEmergencyStatus handles PUT /api/admin/emergency-visa/:id/status
func (h *AdminHandler) UpdateEmergencyStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidEmergencyStatus(req.Status) {
		respondError(c, http.StatusBadRequest, "Unknown request status")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request id")
		return
	}

	if err := h.emergencies.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, database.ErrEmergencyRequestNotFound) {
			respondError(c, http.StatusNotFound, "Request not found")
			return
		}
		h.logger.WithError(err).Error("failed to update emergency request")
		respondError(c, http.StatusInternalServerError, "Failed to update request")
		return
	}

	respondOK(c, http.StatusOK, "Request updated", nil)
}

// ListPayments handles GET /api/admin/payments
func (h *AdminHandler) ListPayments(c *gin.Context) {
	payments, err := h.payments.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list payments")
		respondError(c, http.StatusInternalServerError, "Failed to load payments")
		return
	}
	respondOK(c, http.StatusOK, "Payments loaded", payments)
}

// PackageRequest carries the editable package fields
type PackageRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Description string   `json:"description"`
	Price       string   `json:"price" binding:"required"`
	Currency    string   `json:"currency" binding:"required,len=3"`
	Features    []string `json:"features"`
	Active      *bool    `json:"active"`
}

// CreatePackage handles POST /api/admin/packages
func (h *AdminHandler) CreatePackage(c *gin.Context) {
	pkg, ok := h.bindPackage(c)
	if !ok {
		return
	}

	if err := h.packages.Create(pkg); err != nil {
		h.logger.WithError(err).Error("failed to create package")
		respondError(c, http.StatusInternalServerError, "Failed to create package")
		return
	}

	respondOK(c, http.StatusCreated, "Package created", pkg)
}

// UpdatePackage handles PUT /api/admin/packages/:id
func (h *AdminHandler) UpdatePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid package id")
		return
	}

	pkg, ok := h.bindPackage(c)
	if !ok {
		return
	}
	pkg.ID = id

	if err := h.packages.Update(pkg); err != nil {
		if errors.Is(err, database.ErrPackageNotFound) {
			respondError(c, http.StatusNotFound, "Package not found")
			return
		}
		h.logger.WithError(err).Error("failed to update package")
		respondError(c, http.StatusInternalServerError, "Failed to update package")
		return
	}

	respondOK(c, http.StatusOK, "Package updated", pkg)
}

// DeletePackage handles DELETE /api/admin/packages/:id
func (h *AdminHandler) DeletePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid package id")
		return
	}

	if err := h.packages.Delete(id); err != nil {
		if errors.Is(err, database.ErrPackageNotFound) {
			respondError(c, http.StatusNotFound, "Package not found")
			return
		}
		h.logger.WithError(err).Error("failed to delete package")
		respondError(c, http.StatusInternalServerError, "Failed to delete package")
		return
	}

	respondOK(c, http.StatusOK, "Package deleted", nil)
}

// ListPackages handles GET /api/admin/packages, including inactive ones
func (h *AdminHandler) ListPackages(c *gin.Context) {
	packages, err := h.packages.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list packages")
		respondError(c, http.StatusInternalServerError, "Failed to load packages")
		return
	}
	respondOK(c, http.StatusOK, "Packages loaded", packages)
}

// SettingsRequest updates the platform fee and contact configuration
type SettingsRequest struct {
	VisaFee         string `json:"visaFee" binding:"required"`
	PassportFee     string `json:"passportFee" binding:"required"`
	ServiceFee      string `json:"serviceFee" binding:"required"`
	Currency        string `json:"currency" binding:"required,len=3"`
	SupportEmail    string `json:"supportEmail" binding:"required,email"`
	SupportPhone    string `json:"supportPhone"`
	MaintenanceMode bool   `json:"maintenanceMode"`
}

// GetSettings handles GET /api/admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get()
	if err != nil {
		h.logger.WithError(err).Error("failed to load settings")
		respondError(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	respondOK(c, http.StatusOK, "Settings loaded", settings)
}

// UpdateSettings handles PUT /api/admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	visaFee, err1 := decimal.NewFromString(req.VisaFee)
	passportFee, err2 := decimal.NewFromString(req.PassportFee)
	serviceFee, err3 := decimal.NewFromString(req.ServiceFee)
	if err1 != nil || err2 != nil || err3 != nil {
		respondError(c, http.StatusBadRequest, "Fees must be decimal amounts")
		return
	}
	if visaFee.IsNegative() || passportFee.IsNegative() || serviceFee.IsNegative() {
		respondError(c, http.StatusBadRequest, "Fees cannot be negative")
		return
	}

	settings := &models.PlatformSettings{
		VisaFee:         visaFee,
		PassportFee:     passportFee,
		ServiceFee:      serviceFee,
		Currency:        req.Currency,
		SupportEmail:    req.SupportEmail,
		MaintenanceMode: req.MaintenanceMode,
	}
	if req.SupportPhone != "" {
		settings.SupportPhone = models.NewNullString(req.SupportPhone)
	}

	if err := h.settings.Update(settings); err != nil {
		h.logger.WithError(err).Error("failed to update settings")
		respondError(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	respondOK(c, http.StatusOK, "Settings updated", settings)
}

// ListTickets handles GET /api/admin/tickets
func (h *AdminHandler) ListTickets(c *gin.Context) {
	tickets, err := h.tickets.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list tickets")
		respondError(c, http.StatusInternalServerError, "Failed to load tickets")
		return
	}
	respondOK(c, http.StatusOK, "Tickets loaded", tickets)
}

// GetTicket handles GET /api/admin/tickets/:id
func (h *AdminHandler) GetTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	ticket, err := h.tickets.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrTicketNotFound) {
			respondError(c, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.WithError(err).Error("failed to get ticket")
		respondError(c, http.StatusInternalServerError, "Failed to load ticket")
		return
	}

	messages, err := h.tickets.ListMessages(ticket.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list ticket messages")
		respondError(c, http.StatusInternalServerError, "Failed to load ticket")
		return
	}
	ticket.Messages = messages

	respondOK(c, http.StatusOK, "Ticket loaded", ticket)
}

// ReplyTicket handles POST /api/admin/tickets/:id/messages
func (h *AdminHandler) ReplyTicket(c *gin.Context) {
	adminCtx := middleware.MustGetUserContext(c)

	var req ReplyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	if err := h.tickets.AddMessage(id, adminCtx.UserID, req.Message, models.SentByAdmin); err != nil {
		if errors.Is(err, database.ErrTicketNotFound) {
			respondError(c, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.WithError(err).Error("failed to add ticket message")
		respondError(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	respondOK(c, http.StatusCreated, "Message sent", nil)
}

// CloseTicket handles PUT /api/admin/tickets/:id/close
func (h *AdminHandler) CloseTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	if err := h.tickets.UpdateStatus(id, models.TicketClosed); err != nil {
		if errors.Is(err, database.ErrTicketNotFound) {
			respondError(c, http.StatusNotFound, "Ticket not found")
			return
		}
		h.logger.WithError(err).Error("failed to close ticket")
		respondError(c, http.StatusInternalServerError, "Failed to close ticket")
		return
	}

	respondOK(c, http.StatusOK, "Ticket closed", nil)
}

// ListContactQueries handles GET /api/admin/contact
func (h *AdminHandler) ListContactQueries(c *gin.Context) {
	queries, err := h.contacts.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list contact queries")
		respondError(c, http.StatusInternalServerError, "Failed to load queries")
		return
	}
	respondOK(c, http.StatusOK, "Queries loaded", queries)
}

// ResolveContactQuery handles PUT /api/admin/contact/:id/resolve
func (h *AdminHandler) ResolveContactQuery(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid query id")
		return
	}

	if err := h.contacts.MarkResolved(id); err != nil {
		if errors.Is(err, database.ErrContactQueryNotFound) {
			respondError(c, http.StatusNotFound, "Query not found")
			return
		}
		h.logger.WithError(err).Error("failed to resolve contact query")
		respondError(c, http.StatusInternalServerError, "Failed to update query")
		return
	}

	respondOK(c, http.StatusOK, "Query resolved", nil)
}

// ListAssessments handles GET /api/admin/assessments
func (h *AdminHandler) ListAssessments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	assessments, err := h.assessments.ListAll(limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list assessments")
		respondError(c, http.StatusInternalServerError, "Failed to load assessments")
		return
	}
	respondOK(c, http.StatusOK, "Assessments loaded", assessments)
}

// GetAssessment handles GET /api/admin/assessments/:id
func (h *AdminHandler) GetAssessment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	assessment, err := h.assessments.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrAssessmentNotFound) {
			respondError(c, http.StatusNotFound, "Assessment not found")
			return
		}
		h.logger.WithError(err).Error("failed to get assessment")
		respondError(c, http.StatusInternalServerError, "Failed to load assessment")
		return
	}

	respondOK(c, http.StatusOK, "Assessment loaded", assessment)
}

// ListNotifications handles GET /api/admin/notifications
func (h *AdminHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.notices.ListForAdmin(100)
	if err != nil {
		h.logger.WithError(err).Error("failed to list notifications")
		respondError(c, http.StatusInternalServerError, "Failed to load notifications")
		return
	}
	respondOK(c, http.StatusOK, "Notifications loaded", notifications)
}

// ListExperts handles GET /api/admin/experts
func (h *AdminHandler) ListExperts(c *gin.Context) {
	experts, err := h.users.ListByRole(models.RoleExpert)
	if err != nil {
		h.logger.WithError(err).Error("failed to list experts")
		respondError(c, http.StatusInternalServerError, "Failed to load experts")
		return
	}
	respondOK(c, http.StatusOK, "Experts loaded", experts)
}

// CreateExpertRequest creates a staff expert account
type CreateExpertRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Expertise string `json:"expertise"`
}

// CreateExpert handles POST /api/admin/experts
func (h *AdminHandler) CreateExpert(c *gin.Context) {
	var req CreateExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("failed to hash password")
		respondError(c, http.StatusInternalServerError, "Failed to create expert")
		return
	}

	expert, err := h.users.CreateUser(req.Name, req.Email, req.Phone, string(hash), models.RoleExpert)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			respondError(c, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.WithError(err).Error("failed to create expert")
		respondError(c, http.StatusInternalServerError, "Failed to create expert")
		return
	}

	if req.Expertise != "" {
		if err := h.users.UpdateProfile(expert.ID, map[string]interface{}{"expertise": req.Expertise}); err != nil {
			h.logger.WithError(err).Warn("failed to set expertise")
		}
	}

	respondOK(c, http.StatusCreated, "Expert created", expert)
}

// UpdateExpertRequest updates a staff expert profile
type UpdateExpertRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Expertise *string `json:"expertise"`
}

// UpdateExpert handles PUT /api/admin/experts/:id
func (h *AdminHandler) UpdateExpert(c *gin.Context) {
	var req UpdateExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid expert id")
		return
	}

	expert, err := h.users.GetByID(id)
	if err != nil || expert.Role != models.RoleExpert {
		respondError(c, http.StatusNotFound, "Expert not found")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Expertise != nil {
		updates["expertise"] = *req.Expertise
	}

	if err := h.users.UpdateProfile(id, updates); err != nil {
		h.logger.WithError(err).Error("failed to update expert")
		respondError(c, http.StatusInternalServerError, "Failed to update expert")
		return
	}

	respondOK(c, http.StatusOK, "Expert updated", nil)
}

// SetUserActiveRequest toggles an account
type SetUserActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetUserActive handles PUT /api/admin/users/:id/active
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	var req SetUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	if err := h.users.SetActive(id, *req.Active); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.WithError(err).Error("failed to update user")
		respondError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondOK(c, http.StatusOK, "User updated", nil)
}

// SendEmailRequest sends a branded email to an arbitrary recipient
type SendEmailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=1,max=200"`
	Message string `json:"message" binding:"required,min=1,max=10000"`
}

// SendEmail handles POST /api/admin/emails
func (h *AdminHandler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	subject, body := mailer.CustomEmail(req.Subject, req.Message)
	if err := h.mail.Send(req.To, subject, body); err != nil {
		h.logger.WithError(err).WithField("email", req.To).Error("failed to send email")
		respondError(c, http.StatusBadGateway, "Failed to send email")
		return
	}

	respondOK(c, http.StatusOK, "Email sent", nil)
}

// Stats handles GET /api/admin/stats for the back-office dashboard
func (h *AdminHandler) Stats(c *gin.Context) {
	visaCounts := map[string]int{}
	for _, status := range []string{
		models.StatusPending,
		models.StatusUnderReview,
		models.StatusDocumentsRequired,
		models.StatusVisaApproved,
		models.StatusVisaRejected,
		models.StatusComplete,
	} {
		n, err := h.visas.CountByStatus(status)
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
		n, err := h.passports.CountByStatus(status)
		if err != nil {
			h.logger.WithError(err).Error("failed to count passport applications")
			respondError(c, http.StatusInternalServerError, "Failed to load stats")
			return
		}
		passportCounts[status] = n
	}

	revenue, err := h.payments.SumSuccessful()
	if err != nil {
		h.logger.WithError(err).Error("failed to sum revenue")
		respondError(c, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	userCount, err := h.users.CountByRole(models.RoleUser)
	if err != nil {
		h.logger.WithError(err).Error("failed to count users")
		respondError(c, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	expertCount, err := h.users.CountByRole(models.RoleExpert)
	if err != nil {
		h.logger.WithError(err).Error("failed to count experts")
		respondError(c, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	respondOK(c, http.StatusOK, "Stats loaded", gin.H{
		"visa":     visaCounts,
		"passport": passportCounts,
		"revenue":  revenue,
		"users":    userCount,
		"experts":  expertCount,
	})
}

// visaByID loads the visa application named on the path
func (h *AdminHandler) visaByID(c *gin.Context) (*models.VisaApplication, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid application id")
		return nil, false
	}

	app, err := h.visas.GetByID(id)
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

// parseAssignment validates the expert assignment payload
func (h *AdminHandler) parseAssignment(c *gin.Context) (uuid.UUID, string, models.NullTime, bool) {
	var req AssignExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, "", models.NullTime{}, false
	}

	expertID, err := uuid.Parse(req.ExpertID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid expert id")
		return uuid.Nil, "", models.NullTime{}, false
	}

	expert, err := h.users.GetByID(expertID)
	if err != nil || expert.Role != models.RoleExpert || !expert.Active {
		respondError(c, http.StatusBadRequest, "Expert not found or inactive")
		return uuid.Nil, "", models.NullTime{}, false
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		respondError(c, http.StatusBadRequest, "Unknown priority")
		return uuid.Nil, "", models.NullTime{}, false
	}

	deadline := models.NullTime{}
	if req.Deadline != "" {
		t, err := time.Parse("2006-01-02", req.Deadline)
		if err != nil {
			respondError(c, http.StatusBadRequest, "deadline must be a date in YYYY-MM-DD format")
			return uuid.Nil, "", models.NullTime{}, false
		}
		deadline = models.NewNullTime(t)
	}

	return expertID, priority, deadline, true
}

// bindPackage validates and converts a package payload
func (h *AdminHandler) bindPackage(c *gin.Context) (*models.ServicePackage, bool) {
	var req PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		respondError(c, http.StatusBadRequest, "price must be a non-negative decimal amount")
		return nil, false
	}

	pkg := &models.ServicePackage{
		Name:     req.Name,
		Price:    price,
		Currency: req.Currency,
		Features: req.Features,
		Active:   true,
	}
	if req.Description != "" {
		pkg.Description = models.NewNullString(req.Description)
	}
	if req.Active != nil {
		pkg.Active = *req.Active
	}

	return pkg, true
}
