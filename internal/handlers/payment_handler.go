package handlers

import (
	"errors"
	"net/http"

	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/middleware"
	"github.com/axevisa/visa-backend/internal/services"
	"github.com/axevisa/visa-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PaymentHandler handles gateway order creation and callback verification
type PaymentHandler struct {
	payments *services.PaymentService
	audit    *services.AuditService
	users    *database.UserRepository
	logger   *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService, audit *services.AuditService, users *database.UserRepository, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		audit:    audit,
		users:    users,
		logger:   logger,
	}
}

// CreateOrderRequest asks for a gateway order
type CreateOrderRequest struct {
	TypeOfPayment string `json:"typeOfPayment" binding:"required"`
	ProductID     string `json:"productId"`
	PackageID     string `json:"packageId"`
}

// CreateOrder handles POST /api/user/payments/order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.CreateOrderInput{
		UserID:        userCtx.UserID,
		TypeOfPayment: req.TypeOfPayment,
		ProductID:     req.ProductID,
	}
	if req.PackageID != "" {
		pkgID, err := uuid.Parse(req.PackageID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid package id")
			return
		}
		in.PackageID = &pkgID
	}

	payment, err := h.payments.CreateOrder(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPaymentType):
			respondError(c, http.StatusBadRequest, "Unknown payment type")
		case errors.Is(err, database.ErrPackageNotFound):
			respondError(c, http.StatusNotFound, "Package not found")
		default:
			h.logger.WithError(err).Error("failed to create order")
			respondError(c, http.StatusInternalServerError, "Failed to create order")
		}
		return
	}

	respondOK(c, http.StatusCreated, "Order created", payment)
}

// VerifyRequest is the gateway checkout callback payload
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// Verify handles POST /api/user/payments/verify
func (h *PaymentHandler) Verify(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.VerifyInput{
		UserID:    userCtx.UserID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	}
	if user, err := h.users.GetByID(userCtx.UserID); err == nil {
		in.UserName = user.Name
		in.UserEmail = user.Email
	}

	payment, err := h.payments.Verify(in)

	ip := utils.GetRealIP(c)
	ua := utils.GetUserAgent(c)
	if auditErr := h.audit.LogPaymentVerification(userCtx.UserID, req.OrderID, err == nil, ip, ua); auditErr != nil {
		h.logger.WithError(auditErr).Warn("failed to write payment audit record")
	}

	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature):
			respondError(c, http.StatusBadRequest, "Invalid payment signature")
		case errors.Is(err, database.ErrPaymentNotFound):
			respondError(c, http.StatusNotFound, "Payment not found")
		case errors.Is(err, database.ErrApplicationNotFound),
			errors.Is(err, database.ErrPassportApplicationNotFound):
			respondError(c, http.StatusNotFound, "Application not found")
		default:
			h.logger.WithError(err).Error("failed to verify payment")
			respondError(c, http.StatusInternalServerError, "Payment verification failed")
		}
		return
	}

	respondOK(c, http.StatusOK, "Payment verified", payment)
}
