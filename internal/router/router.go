package router

import (
	"net/http"
	"time"

	"github.com/ishira-web/expense-tracker/internal/config"
	"github.com/ishira-web/expense-tracker/internal/handler"
	"github.com/ishira-web/expense-tracker/internal/middleware"
	"github.com/ishira-web/expense-tracker/internal/models"
	"github.com/ishira-web/expense-tracker/internal/upload"
	"github.com/ishira-web/expense-tracker/internal/wallet"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and wires all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, svc *wallet.Service, uploads *upload.Store) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	origins := cfg.CORS.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// stored proof images
	r.Static("/uploads", uploads.Dir)

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret

	authHandler := handler.NewAuthHandler(db, jwtSecret,
		cfg.JWT.AccessExpireMin, cfg.JWT.SessionExpireDays, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	userHandler := handler.NewUserHandler(db, cfg.Security.BcryptCost)
	protected.GET("/me", userHandler.GetMe)
	protected.PATCH("/profile", userHandler.UpdateProfile)
	protected.POST("/profile/password", userHandler.ChangePassword)

	staff := protected.Group("", middleware.RequireRoles(
		models.RoleHR, models.RoleAdmin, models.RoleSuperadmin))
	staff.POST("/users", userHandler.CreateUser)
	staff.GET("/users", userHandler.ListUsers)
	staff.GET("/users/:id", userHandler.GetUserByID)

	admin := protected.Group("", middleware.RequireRoles(
		models.RoleAdmin, models.RoleSuperadmin))
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	expenseHandler := handler.NewExpenseHandler(db, svc, uploads)
	protected.GET("/expenses", expenseHandler.ListExpenses)
	protected.POST("/expenses",
		middleware.RequireRoles(models.RoleUser), expenseHandler.CreateExpense)
	protected.POST("/expenses/deposit",
		middleware.RequireRoles(models.RoleHR, models.RoleAdmin, models.RoleSuperadmin),
		expenseHandler.Deposit)
	protected.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	protected.DELETE("/expenses/:id",
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperadmin),
		expenseHandler.DeleteExpense)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/expenses/export/csv", exportHandler.ExportCSV)
	protected.GET("/expenses/export/xlsx", exportHandler.ExportXLSX)

	auditHandler := handler.NewAuditHandler(db)
	admin.GET("/logs", auditHandler.ListLogs)

	return r
}
