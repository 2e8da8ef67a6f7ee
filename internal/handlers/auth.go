package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luneclub/lune/backend/internal/config"
	"github.com/luneclub/lune/backend/internal/middleware"
	"github.com/luneclub/lune/backend/internal/services"
	"github.com/luneclub/lune/backend/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
	ldapEnabled bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, uploads *services.UploadService, queue services.TaskQueue) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT, &cfg.LDAP, uploads, queue),
		ldapEnabled: cfg.LDAP.Enabled,
	}
}

// RegisterMember accepts a multipart form with optional idDocument and
// incomeProof files.
// POST /api/auth/register
func (h *AuthHandler) RegisterMember(c *gin.Context) {
	var req services.RegisterMemberRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	idDocument, closeID, err := formFile(c, "idDocument")
	if err != nil {
		response.Error(c, response.NewValidation("unreadable idDocument upload"))
		return
	}
	defer closeID()
	incomeProof, closeIncome, err := formFile(c, "incomeProof")
	if err != nil {
		response.Error(c, response.NewValidation("unreadable incomeProof upload"))
		return
	}
	defer closeIncome()

	user, err := h.authService.RegisterMember(c.Request.Context(), &req, idDocument, incomeProof)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// RegisterCast
// POST /api/auth/register/cast
func (h *AuthHandler) RegisterCast(c *gin.Context) {
	var req services.RegisterCastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.RegisterCast(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh trades a refresh token for a new token pair.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Logout revokes the refresh token if one is sent. The access token simply
// expires.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "logged out successfully"})
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// GetAuthConfig returns authentication configuration
// GET /api/auth/config
func (h *AuthHandler) GetAuthConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"ldap_enabled": h.ldapEnabled,
	})
}

// ChangePassword
// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "password updated"})
}

func (h *AuthHandler) CreateAdminIfNotExists(email, password string) error {
	return h.authService.CreateAdminIfNotExists(email, password)
}

func (h *AuthHandler) PurgeExpiredRefreshTokens() (int64, error) {
	return h.authService.PurgeExpiredRefreshTokens()
}
