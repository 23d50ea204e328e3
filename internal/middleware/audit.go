package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/ishira-web/expense-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// sensitivePath reports whether a request body must stay out of the audit
// trail. Password change, reset and login bodies carry credentials in clear.
func sensitivePath(path string) bool {
	return strings.Contains(path, "password") || strings.HasSuffix(path, "/login")
}

// AuditMiddleware persists one AuditLog row per authenticated request.
// Bodies of credential-bearing endpoints are never captured, only the
// method and path are recorded for them.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// capture the body for the audit row; multipart and credential
		// bodies are skipped
		var bodyBytes []byte
		contentType := c.ContentType()
		if c.Request.Body != nil && !strings.HasPrefix(contentType, "multipart/") && !sensitivePath(c.Request.URL.Path) {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		user := CurrentUser(c)
		if user == nil {
			return
		}
		userID := user.ID

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
