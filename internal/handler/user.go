package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ishira-web/expense-tracker/internal/middleware"
	"github.com/ishira-web/expense-tracker/internal/models"
	"github.com/ishira-web/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler serves profile and user-management endpoints.
type UserHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewUserHandler(db *gorm.DB, bcryptCost int) *UserHandler {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserHandler{DB: db, BcryptCost: bcryptCost}
}

// userBrief is the compact user payload embedded in auth responses.
func userBrief(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

// userResp is the full user payload, wallet counters included.
func userResp(u *models.User) gin.H {
	return gin.H{
		"id":                  u.ID,
		"name":                u.Name,
		"email":               u.Email,
		"role":                u.Role,
		"wallet_balance_cent": u.WalletBalanceCent,
		"wallet_balance":      formatCentToAmount(u.WalletBalanceCent),
		"total_deposited":     formatCentToAmount(u.TotalDepositedCent),
		"total_recovered":     formatCentToAmount(u.TotalRecoveredCent),
		"profile_picture":     u.ProfilePicture,
		"created_at":          u.CreatedAt,
	}
}

// GetMe returns the current user's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	util.Success(c, util.Response{
		"user": userResp(user),
	})
}

type updateProfileReq struct {
	Name string `json:"name" binding:"required,max=64"`
}

// UpdateProfile changes the current user's name. Email, role and the wallet
// counters cannot be edited here.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	if err := h.DB.Model(user).Update("name", name).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
		return
	}
	user.Name = name

	util.Success(c, util.Response{
		"message": "profile updated successfully",
		"user":    userResp(user),
	})
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// ChangePassword updates the current user's password after checking the old one.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "old and new password are required")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "old password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	if err := h.DB.Model(user).Update("password_hash", string(hash)).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
		return
	}

	util.Success(c, util.Response{
		"message": "password changed, please log in again",
	})
}

type createUserReq struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role"`
}

// CreateUser lets staff create accounts. Admin and superadmin may assign
// user, hr or admin; hr may only create plain users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	requester := middleware.CurrentUser(c)
	if requester == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name, email and password are required")
		return
	}

	assignedRole := models.RoleUser
	switch requester.Role {
	case models.RoleAdmin, models.RoleSuperadmin:
		if req.Role != "" {
			if req.Role == models.RoleSuperadmin || !models.ValidRole(req.Role) {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid role")
				return
			}
			assignedRole = req.Role
		}
	case models.RoleHR:
		// hr always creates plain users, requested role is ignored
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
		Role:         assignedRole,
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

	util.Success(c, util.Response{
		"message": "user created successfully",
		"user":    userResp(&user),
	})
}

// GetUserByID returns one user, wallet counters included.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid user id")
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	util.Success(c, util.Response{
		"user": userResp(&user),
	})
}

// ListUsers returns all users for staff roles.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, userResp(&users[i]))
	}

	util.Success(c, util.Response{
		"users": items,
		"total": len(items),
	})
}

// DeleteUser removes a user account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid user id")
		return
	}

	requester := middleware.CurrentUser(c)
	if requester != nil && requester.ID == uint(id) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot delete your own account")
		return
	}

	result := h.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete user")
		return
	}
	if result.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}

	util.Success(c, util.Response{
		"message": "user deleted successfully",
	})
}
