package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ishira-web/expense-tracker/internal/models"
	"github.com/ishira-web/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditHandler lists audit-log rows for admins.
type AuditHandler struct {
	DB *gorm.DB
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{DB: db}
}

type auditResp struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs returns audit-log rows, newest first, with pagination and an
// optional user filter.
func (h *AuditHandler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.AuditLog{})
	if idStr := c.Query("user_id"); idStr != "" {
		if id, err := strconv.Atoi(idStr); err == nil && id > 0 {
			base = base.Where("user_id = ?", id)
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list logs")
		return
	}

	var logs []models.AuditLog
	if err := base.Session(&gorm.Session{}).
		Order("id DESC").
		Limit(size).
		Offset(offset).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list logs")
		return
	}

	items := make([]auditResp, 0, len(logs))
	for _, l := range logs {
		items = append(items, auditResp{
			ID:        l.ID,
			UserID:    l.UserID,
			Method:    l.Method,
			Path:      l.Path,
			Action:    l.Action,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
