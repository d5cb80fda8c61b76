package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/middleware"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserHandler handles the signed-in user's profile, documents, tickets,
// notifications and dashboard.
type UserHandler struct {
	users         *database.UserRepository
	visas         *database.VisaApplicationRepository
	passports     *database.PassportRepository
	payments      *database.PaymentRepository
	documents     *database.DocumentRepository
	tickets       *database.TicketRepository
	notifications *database.NotificationRepository
	files         *FileStore
	logger        *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	users *database.UserRepository,
	visas *database.VisaApplicationRepository,
	passports *database.PassportRepository,
	payments *database.PaymentRepository,
	documents *database.DocumentRepository,
	tickets *database.TicketRepository,
	notifications *database.NotificationRepository,
	files *FileStore,
	logger *logrus.Logger,
) *UserHandler {
	return &UserHandler{
		users:         users,
		visas:         visas,
		passports:     passports,
		payments:      payments,
		documents:     documents,
		tickets:       tickets,
		notifications: notifications,
		files:         files,
		logger:        logger,
	}
}

// GetProfile handles GET /api/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.users.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.WithError(err).Error("failed to get profile")
		respondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	respondOK(c, http.StatusOK, "Profile loaded", user)
}

// UpdateProfileRequest carries the editable profile fields
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Nationality *string `json:"nationality"`
	Country     *string `json:"country"`
	Address     *string `json:"address"`
	Expertise   *string `json:"expertise"`
}

// UpdateProfile handles PUT /api/user/profile. Profile picture uploads
// come through the multipart form field profilePic.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	updates := map[string]interface{}{}

	if file := formFile(c, "profilePic"); file != nil {
		path, err := h.files.Save(c, file, "profiles")
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		updates["profile_pic"] = path

		// Other fields ride along as plain form values on multipart requests
		for form, column := range map[string]string{
			"name": "name", "phone": "phone", "nationality": "nationality",
			"country": "country", "address": "address", "expertise": "expertise",
		} {
			if v, ok := c.GetPostForm(form); ok {
				updates[column] = v
			}
		}
	} else {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		for column, value := range map[string]*string{
			"name": req.Name, "phone": req.Phone, "nationality": req.Nationality,
			"country": req.Country, "address": req.Address, "expertise": req.Expertise,
		} {
			if value != nil {
				updates[column] = *value
			}
		}
	}

	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	if err := h.users.UpdateProfile(userCtx.UserID, updates); err != nil {
		h.logger.WithError(err).Error("failed to update profile")
		respondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	user, err := h.users.GetByID(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("failed to reload profile")
		respondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	respondOK(c, http.StatusOK, "Profile updated", user)
}

// UploadDocuments handles POST /api/user/documents. Accepts multiple
// files under the documents field plus a documentType and description.
func (h *UserHandler) UploadDocuments(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	docType := c.PostForm("documentType")
	if docType == "" {
		respondError(c, http.StatusBadRequest, "documentType is required")
		return
	}

	files := form.File["documents"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "At least one document is required")
		return
	}

	paths, err := h.files.SaveAll(c, files, "documents", 10)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	description := models.NullString{}
	if d := c.PostForm("description"); d != "" {
		description = models.NewNullString(d)
	}

	count, err := h.documents.CreateMany(userCtx.UserID, docType, description, paths)
	if err != nil {
		h.logger.WithError(err).Error("failed to store documents")
		respondError(c, http.StatusInternalServerError, "Failed to store documents")
		return
	}

	respondOK(c, http.StatusCreated, "Documents uploaded", gin.H{"count": count, "paths": paths})
}

// UpdateDocument handles PUT /api/user/documents/:id, replacing the file
// and resetting its verification state.
func (h *UserHandler) UpdateDocument(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid document id")
		return
	}

	file := formFile(c, "document")
	if file == nil {
		respondError(c, http.StatusBadRequest, "document file is required")
		return
	}

	path, err := h.files.Save(c, file, "documents")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	docType := c.PostForm("documentType")
	description := models.NullString{}
	if d := c.PostForm("description"); d != "" {
		description = models.NewNullString(d)
	}

	if err := h.documents.Replace(docID, userCtx.UserID, docType, description, path); err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.WithError(err).Error("failed to replace document")
		respondError(c, http.StatusInternalServerError, "Failed to update document")
		return
	}

	respondOK(c, http.StatusOK, "Document updated", gin.H{"path": path})
}

// ListDocuments handles GET /api/user/documents with page/limit params
func (h *UserHandler) ListDocuments(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	page, limit := pagination(c)
	docs, total, err := h.documents.ListByUser(userCtx.UserID, page, limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list documents")
		respondError(c, http.StatusInternalServerError, "Failed to load documents")
		return
	}

	respondOK(c, http.StatusOK, "Documents loaded", gin.H{
		"documents": docs,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// CreateTicketRequest opens a support conversation
type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required,min=3,max=200"`
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

// CreateTicket handles POST /api/user/tickets
func (h *UserHandler) CreateTicket(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.tickets.Create(userCtx.UserID, req.Subject, req.Message)
	if err != nil {
		h.logger.WithError(err).Error("failed to create ticket")
		respondError(c, http.StatusInternalServerError, "Failed to create ticket")
		return
	}

	respondOK(c, http.StatusCreated, "Ticket created", ticket)
}

// ListTickets handles GET /api/user/tickets
func (h *UserHandler) ListTickets(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	tickets, err := h.tickets.ListByUser(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list tickets")
		respondError(c, http.StatusInternalServerError, "Failed to load tickets")
		return
	}

	respondOK(c, http.StatusOK, "Tickets loaded", tickets)
}

// GetTicket handles GET /api/user/tickets/:id, including the thread
func (h *UserHandler) GetTicket(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	ticket, ok := h.ownedTicket(c, userCtx.UserID)
	if !ok {
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

// ReplyTicketRequest appends a message to an open ticket
type ReplyTicketRequest struct {
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

// ReplyTicket handles POST /api/user/tickets/:id/messages
func (h *UserHandler) ReplyTicket(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req ReplyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, ok := h.ownedTicket(c, userCtx.UserID)
	if !ok {
		return
	}

	if ticket.Status == models.TicketClosed {
		respondError(c, http.StatusConflict, "Ticket is closed")
		return
	}

	if err := h.tickets.AddMessage(ticket.ID, userCtx.UserID, req.Message, models.SentByUser); err != nil {
		h.logger.WithError(err).Error("failed to add ticket message")
		respondError(c, http.StatusInternalServerError, "Failed to send message")
		return
	}

	respondOK(c, http.StatusCreated, "Message sent", nil)
}

// ListNotifications handles GET /api/user/notifications
func (h *UserHandler) ListNotifications(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	notifications, err := h.notifications.ListForUser(userCtx.UserID, 50)
	if err != nil {
		h.logger.WithError(err).Error("failed to list notifications")
		respondError(c, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	respondOK(c, http.StatusOK, "Notifications loaded", notifications)
}

// MarkNotificationRead handles PUT /api/user/notifications/:id/read
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.notifications.MarkRead(id, userCtx.UserID); err != nil {
		if errors.Is(err, database.ErrNotificationNotFound) {
			respondError(c, http.StatusNotFound, "Notification not found")
			return
		}
		h.logger.WithError(err).Error("failed to mark notification read")
		respondError(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	respondOK(c, http.StatusOK, "Notification updated", nil)
}

// ListPayments handles GET /api/user/payments
func (h *UserHandler) ListPayments(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	payments, err := h.payments.ListByUser(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list payments")
		respondError(c, http.StatusInternalServerError, "Failed to load payments")
		return
	}

	respondOK(c, http.StatusOK, "Payments loaded", payments)
}

// Stats handles GET /api/user/stats for the user dashboard
func (h *UserHandler) Stats(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	counts := map[string]int{}
	for _, status := range []string{
		models.StatusPending,
		models.StatusUnderReview,
		models.StatusDocumentsRequired,
		models.StatusVisaApproved,
		models.StatusVisaRejected,
		models.StatusComplete,
	} {
		n, err := h.visas.CountByStatusForUser(userCtx.UserID, status)
		if err != nil {
			h.logger.WithError(err).Error("failed to count applications")
			respondError(c, http.StatusInternalServerError, "Failed to load stats")
			return
		}
		counts[status] = n
	}

	recent, err := h.visas.RecentForUser(userCtx.UserID, 3)
	if err != nil {
		h.logger.WithError(err).Error("failed to load recent applications")
		respondError(c, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	respondOK(c, http.StatusOK, "Stats loaded", gin.H{
		"statusCounts": counts,
		"recent":       recent,
	})
}

// ownedTicket loads the ticket on the path and checks ownership
func (h *UserHandler) ownedTicket(c *gin.Context, userID uuid.UUID) (*models.SupportTicket, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ticket id")
		return nil, false
	}

	ticket, err := h.tickets.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrTicketNotFound) {
			respondError(c, http.StatusNotFound, "Ticket not found")
			return nil, false
		}
		h.logger.WithError(err).Error("failed to get ticket")
		respondError(c, http.StatusInternalServerError, "Failed to load ticket")
		return nil, false
	}

	if ticket.UserID != userID {
		respondError(c, http.StatusNotFound, "Ticket not found")
		return nil, false
	}

	return ticket, true
}

// pagination reads page and limit query params with sane bounds
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
