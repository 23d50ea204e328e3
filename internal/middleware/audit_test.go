package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ishira-web/expense-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newAuditTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := models.User{Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", &user)
		c.Next()
	})
	r.Use(AuditMiddleware(db))
	r.POST("/api/profile/password", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/expenses/deposit", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r, db
}

func lastAuditLog(t *testing.T, db *gorm.DB) models.AuditLog {
	t.Helper()
	var log models.AuditLog
	if err := db.Order("id DESC").First(&log).Error; err != nil {
		t.Fatalf("load audit log: %v", err)
	}
	return log
}

func TestAuditMiddleware_PasswordBodyNotRecorded(t *testing.T) {
	r, db := newAuditTestRouter(t)

	body := `{"old_password":"old-secret-1","new_password":"new-secret-2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/profile/password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	log := lastAuditLog(t, db)
	if log.Path != "/api/profile/password" {
		t.Errorf("path = %q, want /api/profile/password", log.Path)
	}
	if strings.Contains(log.Action, "old-secret-1") || strings.Contains(log.Action, "new-secret-2") {
		t.Errorf("audit action leaks password material: %q", log.Action)
	}
	if strings.Contains(log.Action, "password\":") {
		t.Errorf("audit action contains body of password endpoint: %q", log.Action)
	}
}

func TestAuditMiddleware_RecordsPlainBody(t *testing.T) {
	r, db := newAuditTestRouter(t)

	body := `{"user_id":1,"amount":"5.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/expenses/deposit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	log := lastAuditLog(t, db)
	if log.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", log.Method)
	}
	if !strings.Contains(log.Action, `"amount":"5.00"`) {
		t.Errorf("audit action missing request body: %q", log.Action)
	}
}

func TestSensitivePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/profile/password", true},
		{"/api/auth/forgot-password", true},
		{"/api/auth/reset-password", true},
		{"/api/auth/login", true},
		{"/api/expenses", false},
		{"/api/expenses/deposit", false},
	}
	for _, tt := range tests {
		if got := sensitivePath(tt.path); got != tt.want {
			t.Errorf("sensitivePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
