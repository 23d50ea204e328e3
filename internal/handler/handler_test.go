package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ishira-web/expense-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Expense{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{Name: name, Email: email, PasswordHash: string(hash), Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// jsonContext builds a gin test context carrying an authenticated user and a
// JSON request body.
func jsonContext(t *testing.T, user *models.User, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if user != nil {
		c.Set("currentUser", user)
	}
	return c, w
}

// ---------- role assignment on user creation ----------

func TestCreateUser_RoleAssignment(t *testing.T) {
	tests := []struct {
		name          string
		requesterRole string
		requestedRole string
		wantStatus    int
		wantRole      string
	}{
		{"admin assigns hr", models.RoleAdmin, models.RoleHR, http.StatusOK, models.RoleHR},
		{"admin assigns admin", models.RoleAdmin, models.RoleAdmin, http.StatusOK, models.RoleAdmin},
		{"admin omits role", models.RoleAdmin, "", http.StatusOK, models.RoleUser},
		{"superadmin assigns admin", models.RoleSuperadmin, models.RoleAdmin, http.StatusOK, models.RoleAdmin},
		{"admin cannot mint superadmin", models.RoleAdmin, models.RoleSuperadmin, http.StatusBadRequest, ""},
		{"superadmin cannot mint superadmin", models.RoleSuperadmin, models.RoleSuperadmin, http.StatusBadRequest, ""},
		{"admin rejects unknown role", models.RoleAdmin, "owner", http.StatusBadRequest, ""},
		{"hr request for admin is ignored", models.RoleHR, models.RoleAdmin, http.StatusOK, models.RoleUser},
		{"hr creates plain user", models.RoleHR, "", http.StatusOK, models.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newHandlerTestDB(t)
			requester := seedUser(t, db, "Boss", "boss@example.com", tt.requesterRole)
			h := NewUserHandler(db, bcrypt.MinCost)

			body := `{"name":"New Hire","email":"hire@example.com","password":"password123"`
			if tt.requestedRole != "" {
				body += `,"role":"` + tt.requestedRole + `"`
			}
			body += `}`

			c, w := jsonContext(t, requester, http.MethodPost, "/api/users", body)
			h.CreateUser(c)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var created models.User
			if err := db.Where("email = ?", "hire@example.com").First(&created).Error; err != nil {
				t.Fatalf("load created user: %v", err)
			}
			if created.Role != tt.wantRole {
				t.Errorf("created role = %q, want %q", created.Role, tt.wantRole)
			}
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newHandlerTestDB(t)
	admin := seedUser(t, db, "Boss", "boss@example.com", models.RoleAdmin)
	seedUser(t, db, "Existing", "taken@example.com", models.RoleUser)
	h := NewUserHandler(db, bcrypt.MinCost)

	body := `{"name":"Dup","email":"taken@example.com","password":"password123"}`
	c, w := jsonContext(t, admin, http.MethodPost, "/api/users", body)
	h.CreateUser(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for duplicate email (body %s)", w.Code, w.Body.String())
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newHandlerTestDB(t)
	seedUser(t, db, "Existing", "taken@example.com", models.RoleUser)
	h := NewAuthHandler(db, "test-secret", 15, 7, bcrypt.MinCost)

	body := `{"name":"Dup","email":"taken@example.com","password":"password123"}`
	c, w := jsonContext(t, nil, http.MethodPost, "/api/auth/register", body)
	h.Register(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for duplicate email (body %s)", w.Code, w.Body.String())
	}
}

// ---------- listing scope ----------

func seedExpense(t *testing.T, db *gorm.DB, userID uint, amountCent int64) {
	t.Helper()
	e := models.Expense{
		UserID:        userID,
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		AmountCent:    amountCent,
		Description:   "lunch",
		Category:      models.CategoryFood,
		PaymentMethod: models.PaymentCash,
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("create expense: %v", err)
	}
}

type listResp struct {
	Code int `json:"code"`
	Data struct {
		Items []struct {
			UserID uint `json:"user_id"`
		} `json:"items"`
		Total int64 `json:"total"`
	} `json:"data"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listResp {
	t.Helper()
	var resp listResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
	return resp
}

func TestListExpenses_PlainUserSeesOnlyOwnRows(t *testing.T) {
	db := newHandlerTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	seedExpense(t, db, alice.ID, 1000)
	seedExpense(t, db, alice.ID, 2000)
	seedExpense(t, db, bob.ID, 3000)

	h := NewExpenseHandler(db, nil, nil)

	c, w := jsonContext(t, alice, http.MethodGet, "/api/expenses", "")
	h.ListExpenses(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	resp := decodeList(t, w)
	if resp.Data.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Data.Total)
	}
	for _, item := range resp.Data.Items {
		if item.UserID != alice.ID {
			t.Errorf("plain user sees row of user %d", item.UserID)
		}
	}
}

func TestListExpenses_PlainUserCannotFilterOthers(t *testing.T) {
	db := newHandlerTestDB(t)
	alice := seedUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	seedExpense(t, db, alice.ID, 1000)
	seedExpense(t, db, bob.ID, 3000)

	h := NewExpenseHandler(db, nil, nil)

	// user_id filter must be ignored for plain users
	c, w := jsonContext(t, alice, http.MethodGet, "/api/expenses?user_id=2", "")
	h.ListExpenses(c)

	resp := decodeList(t, w)
	if resp.Data.Total != 1 {
		t.Fatalf("total = %d, want 1", resp.Data.Total)
	}
	if resp.Data.Items[0].UserID != alice.ID {
		t.Errorf("row user = %d, want %d", resp.Data.Items[0].UserID, alice.ID)
	}
}

func TestListExpenses_StaffFilterByUser(t *testing.T) {
	db := newHandlerTestDB(t)
	admin := seedUser(t, db, "Boss", "boss@example.com", models.RoleAdmin)
	alice := seedUser(t, db, "Alice", "alice@example.com", models.RoleUser)
	bob := seedUser(t, db, "Bob", "bob@example.com", models.RoleUser)
	seedExpense(t, db, alice.ID, 1000)
	seedExpense(t, db, bob.ID, 3000)

	h := NewExpenseHandler(db, nil, nil)

	// unfiltered: staff sees everything
	c, w := jsonContext(t, admin, http.MethodGet, "/api/expenses", "")
	h.ListExpenses(c)
	if resp := decodeList(t, w); resp.Data.Total != 2 {
		t.Errorf("unfiltered total = %d, want 2", resp.Data.Total)
	}

	// filtered to bob
	c, w = jsonContext(t, admin, http.MethodGet, "/api/expenses?user_id="+strconv.Itoa(int(bob.ID)), "")
	h.ListExpenses(c)
	resp := decodeList(t, w)
	if resp.Data.Total != 1 {
		t.Fatalf("filtered total = %d, want 1", resp.Data.Total)
	}
	if resp.Data.Items[0].UserID != bob.ID {
		t.Errorf("filtered row user = %d, want %d", resp.Data.Items[0].UserID, bob.ID)
	}
}
