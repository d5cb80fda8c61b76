package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/axevisa/visa-backend/internal/config"
	"github.com/axevisa/visa-backend/internal/database"
	"github.com/axevisa/visa-backend/internal/models"
	"github.com/axevisa/visa-backend/internal/services"
	"github.com/axevisa/visa-backend/internal/utils"
	"github.com/axevisa/visa-backend/pkg/googleauth"
	"github.com/axevisa/visa-backend/pkg/jwt"
	"github.com/axevisa/visa-backend/pkg/mailer"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService       *jwt.Service
	otpService       *services.OTPService
	rateLimitService *services.RateLimitService
	auditService     *services.AuditService
	users            *database.UserRepository
	google           *googleauth.Client
	mail             *mailer.Mailer
	config           *config.Config
	logger           *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	otpService *services.OTPService,
	rateLimitService *services.RateLimitService,
	auditService *services.AuditService,
	users *database.UserRepository,
	google *googleauth.Client,
	mail *mailer.Mailer,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService:       jwtService,
		otpService:       otpService,
		rateLimitService: rateLimitService,
		auditService:     auditService,
		users:            users,
		google:           google,
		mail:             mail,
		config:           cfg,
		logger:           logger,
	}
}

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest represents the password login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the token and public profile after authentication
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/public/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("failed to hash password")
		respondError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user, err := h.users.CreateUser(req.Name, strings.ToLower(req.Email), req.Phone, string(hash), models.RoleUser)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			respondError(c, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.WithError(err).Error("failed to create user")
		respondError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	go func() {
		subject, body := mailer.WelcomeEmail(user.Name)
		if err := h.mail.Send(user.Email, subject, body); err != nil {
			h.logger.WithError(err).WithField("email", user.Email).Error("failed to send welcome email")
		}
	}()

	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.WithError(err).Error("failed to generate token")
		respondError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	respondOK(c, http.StatusCreated, "Account created", AuthResponse{Token: token, User: user})
}

// Login handles POST /api/public/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.WithError(err).Error("failed to look up user")
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	if !user.Active {
		respondError(c, http.StatusForbidden, "Account is disabled")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.WithError(err).Error("failed to generate token")
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := h.auditService.LogLogin(user.ID, "password", utils.GetRealIP(c), utils.GetUserAgent(c)); err != nil {
		h.logger.WithError(err).Warn("failed to write login audit record")
	}

	respondOK(c, http.StatusOK, "Login successful", AuthResponse{Token: token, User: user})
}

// OTPRequest asks for a one time code by email
type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestOTP handles POST /api/public/request-otp. The response is the
// same whether or not the account exists.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(req.Email)
	ip := utils.GetRealIP(c)
	ua := utils.GetUserAgent(c)

	if err := h.rateLimitService.Check(email, ip); err != nil {
		var rateErr *services.RateLimitError
		if errors.As(err, &rateErr) {
			h.logAudit(h.auditService.LogOTPRequest(email, ip, ua, false, "rate_limited"))
			respondError(c, http.StatusTooManyRequests, rateErr.Message)
			return
		}
		h.logger.WithError(err).Error("failed to check otp rate limit")
		respondError(c, http.StatusInternalServerError, "Failed to send code")
		return
	}

	if err := h.rateLimitService.Record(email, ip); err != nil {
		h.logger.WithError(err).Warn("failed to record otp request")
	}

	user, otp, err := h.otpService.Issue(email)
	if err != nil {
		// Unknown accounts get the generic success reply
		if errors.Is(err, database.ErrUserNotFound) {
			h.logAudit(h.auditService.LogOTPRequest(email, ip, ua, false, "unknown_email"))
			respondOK(c, http.StatusOK, "If the account exists, a code has been sent", nil)
			return
		}
		h.logger.WithError(err).Error("failed to issue otp")
		respondError(c, http.StatusInternalServerError, "Failed to send code")
		return
	}

	go func() {
		subject, body := mailer.OTPEmail(user.Name, otp, h.otpService.ExpiryMinutes())
		if err := h.mail.Send(user.Email, subject, body); err != nil {
			h.logger.WithError(err).WithField("email", user.Email).Error("failed to send otp email")
		}
	}()

	h.logAudit(h.auditService.LogOTPRequest(email, ip, ua, true, ""))
	respondOK(c, http.StatusOK, "If the account exists, a code has been sent", nil)
}

// VerifyOTPRequest carries the email and code for OTP login
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// VerifyOTP handles POST /api/public/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(req.Email)
	ip := utils.GetRealIP(c)
	ua := utils.GetUserAgent(c)

	user, err := h.otpService.Verify(email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOTPExpired):
			h.logAudit(h.auditService.LogOTPVerification(nil, email, false, ip, ua, "expired"))
			respondError(c, http.StatusUnauthorized, "Code has expired. Please request a new one.")
		case errors.Is(err, services.ErrOTPInvalid), errors.Is(err, services.ErrNoOTPFound), errors.Is(err, database.ErrUserNotFound):
			h.logAudit(h.auditService.LogOTPVerification(nil, email, false, ip, ua, "invalid"))
			respondError(c, http.StatusUnauthorized, "Invalid code")
		default:
			h.logger.WithError(err).Error("failed to verify otp")
			respondError(c, http.StatusInternalServerError, "Verification failed")
		}
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.WithError(err).Error("failed to generate token")
		respondError(c, http.StatusInternalServerError, "Verification failed")
		return
	}

	h.logAudit(h.auditService.LogOTPVerification(&user.ID, email, true, ip, ua, ""))
	h.logAudit(h.auditService.LogLogin(user.ID, "otp", ip, ua))

	respondOK(c, http.StatusOK, "Login successful", AuthResponse{Token: token, User: user})
}

// ForgotPassword handles POST /api/public/forgot-password. It reuses the
// OTP flow; the code is later exchanged in ResetPassword.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.RequestOTP(c)
}

// ResetPasswordRequest exchanges a valid code for a new password
type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required,len=6"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// ResetPassword handles POST /api/public/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.otpService.Verify(strings.ToLower(req.Email), req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOTPExpired):
			respondError(c, http.StatusUnauthorized, "Code has expired. Please request a new one.")
		case errors.Is(err, services.ErrOTPInvalid), errors.Is(err, services.ErrNoOTPFound), errors.Is(err, database.ErrUserNotFound):
			respondError(c, http.StatusUnauthorized, "Invalid code")
		default:
			h.logger.WithError(err).Error("failed to verify otp")
			respondError(c, http.StatusInternalServerError, "Password reset failed")
		}
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("failed to hash password")
		respondError(c, http.StatusInternalServerError, "Password reset failed")
		return
	}

	if err := h.users.UpdatePassword(user.ID, string(hash)); err != nil {
		h.logger.WithError(err).Error("failed to update password")
		respondError(c, http.StatusInternalServerError, "Password reset failed")
		return
	}

	respondOK(c, http.StatusOK, "Password updated. Please sign in.", nil)
}

// GoogleRedirect handles GET /api/public/auth/google
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	state, err := utils.GenerateSecret(16)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to start Google sign-in")
		return
	}

	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.ConsentURL(state))
}

// GoogleCallback handles GET /api/public/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != cookieState {
		respondError(c, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := c.Query("code")
	if code == "" {
		respondError(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.WithError(err).Error("failed to exchange google code")
		respondError(c, http.StatusBadGateway, "Google sign-in failed")
		return
	}

	user, err := h.users.UpsertGoogleUser(profile.Name, strings.ToLower(profile.Email), profile.ID)
	if err != nil {
		h.logger.WithError(err).Error("failed to upsert google user")
		respondError(c, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	if !user.Active {
		respondError(c, http.StatusForbidden, "Account is disabled")
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.logger.WithError(err).Error("failed to generate token")
		respondError(c, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	h.logAudit(h.auditService.LogLogin(user.ID, "google", utils.GetRealIP(c), utils.GetUserAgent(c)))

	respondOK(c, http.StatusOK, "Login successful", AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) logAudit(err error) {
	if err != nil {
		h.logger.WithError(err).Warn("failed to write audit record")
	}
}
