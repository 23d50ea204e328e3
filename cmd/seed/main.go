// Command seed creates or refreshes the demo accounts.
package main

import (
	"log"

	"github.com/ishira-web/expense-tracker/internal/config"
	"github.com/ishira-web/expense-tracker/internal/database"
	"github.com/ishira-web/expense-tracker/internal/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type demoUser struct {
	Name        string
	Email       string
	Password    string
	Role        string
	BalanceCent int64
}

var demoUsers = []demoUser{
	{"Regular User", "user@example.com", "password123", models.RoleUser, 100000},
	{"Admin User", "admin@example.com", "password123", models.RoleAdmin, 500000},
	{"HR User", "hr@example.com", "password123", models.RoleHR, 0},
	{"Super Admin", "superadmin@example.com", "password123", models.RoleSuperadmin, 0},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	for _, d := range demoUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), cfg.Security.BcryptCost)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}

		var existing models.User
		err = db.Where("email = ?", d.Email).First(&existing).Error
		switch {
		case err == nil:
			// refresh credentials and role, keep the wallet as-is
			existing.Name = d.Name
			existing.Role = d.Role
			existing.PasswordHash = string(hash)
			if err := db.Save(&existing).Error; err != nil {
				log.Fatalf("update %s: %v", d.Email, err)
			}
			log.Printf("updated %s", d.Email)
		case err == gorm.ErrRecordNotFound:
			user := models.User{
				Name:              d.Name,
				Email:             d.Email,
				PasswordHash:      string(hash),
				Role:              d.Role,
				WalletBalanceCent: d.BalanceCent,
			}
			if err := db.Create(&user).Error; err != nil {
				log.Fatalf("create %s: %v", d.Email, err)
			}
			log.Printf("created %s", d.Email)
		default:
			log.Fatalf("lookup %s: %v", d.Email, err)
		}
	}

	log.Println("demo users ready")
}
