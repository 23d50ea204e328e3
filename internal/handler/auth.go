package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ishira-web/expense-tracker/internal/logger"
	"github.com/ishira-web/expense-tracker/internal/models"
	"github.com/ishira-web/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves registration, login and the password-recovery flow.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	AccessTTL  time.Duration
	SessionTTL time.Duration
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, accessMin, sessionDays, bcryptCost int) *AuthHandler {
	if accessMin <= 0 {
		accessMin = 15
	}
	if sessionDays <= 0 {
		sessionDays = 7
	}
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		AccessTTL:  time.Duration(accessMin) * time.Minute,
		SessionTTL: time.Duration(sessionDays) * 24 * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- register ----------

type registerReq struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

// Register creates a self-service account. Public registration always gets
// the plain user role; elevated roles are assigned through the admin
// create-user endpoint.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name, email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	// the unique index on email is the source of truth for duplicates
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "user already exists")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		}
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, user.Role, util.PurposeAccess, h.AccessTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user":  userBrief(&user),
	})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a short-lived access token plus a
// session token backed by a revocable Session row.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusBadRequest, util.CodeAuth, "invalid credentials")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeAuth, "invalid credentials")
		return
	}

	now := time.Now()
	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(h.SessionTTL),
	}
	if err := h.DB.Create(&session).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create session")
		return
	}

	accessToken, err := util.GenerateToken(h.JWTSecret, user.ID, user.Role, util.PurposeAccess, h.AccessTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}
	sessionToken, err := util.GenerateSessionToken(h.JWTSecret, user.ID, user.Role, util.PurposeSession, session.ID, h.SessionTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}

	user.LastActiveAt = &now
	_ = h.DB.Model(&user).Update("last_active_at", now).Error

	util.Success(c, util.Response{
		"accessToken":  accessToken,
		"sessionToken": sessionToken,
		"user":         userBrief(&user),
	})
}

// ---------- refresh ----------

type refreshReq struct {
	SessionToken string `json:"sessionToken" binding:"required"`
}

// Refresh exchanges a valid session token for a fresh access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "sessionToken is required")
		return
	}

	claims, err := util.ParseToken(h.JWTSecret, req.SessionToken, util.PurposeSession)
	if err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid or expired session")
		return
	}

	var session models.Session
	if err := h.DB.First(&session, "id = ?", claims.SessionID).Error; err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid or expired session")
		return
	}
	if session.Revoked || session.ExpiresAt.Before(time.Now()) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid or expired session")
		return
	}

	var user models.User
	if err := h.DB.First(&user, session.UserID).Error; err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "user no longer exists")
		return
	}

	accessToken, err := util.GenerateToken(h.JWTSecret, user.ID, user.Role, util.PurposeAccess, h.AccessTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}

	util.Success(c, util.Response{
		"accessToken": accessToken,
	})
}

// Logout revokes the session named by the provided session token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "sessionToken is required")
		return
	}

	claims, err := util.ParseToken(h.JWTSecret, req.SessionToken, util.PurposeSession)
	if err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid session")
		return
	}

	if err := h.DB.Model(&models.Session{}).
		Where("id = ?", claims.SessionID).
		Update("revoked", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to revoke session")
		return
	}

	util.Success(c, util.Response{
		"message": "logged out",
	})
}

// ---------- password recovery ----------

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a one-hour reset token for the account. The token is
// returned in the response; the frontend builds the reset link from it.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email is required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, user.Role, util.PurposeReset, time.Hour)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}

	logger.Infof("password reset token issued for user %d", user.ID)

	util.Success(c, util.Response{
		"message": "password reset link generated",
		"token":   token,
	})
}

type resetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=64"`
}

// ResetPassword sets a new password from a valid reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "token and new password are required")
		return
	}

	claims, err := util.ParseToken(h.JWTSecret, req.Token, util.PurposeReset)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid or expired token")
		return
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	if err := h.DB.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
		return
	}

	util.Success(c, util.Response{
		"message": "password updated successfully",
	})
}
