package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ishira-web/expense-tracker/internal/config"
	"github.com/ishira-web/expense-tracker/internal/database"
	"github.com/ishira-web/expense-tracker/internal/mail"
	"github.com/ishira-web/expense-tracker/internal/router"
	"github.com/ishira-web/expense-tracker/internal/upload"
	"github.com/ishira-web/expense-tracker/internal/wallet"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, real env vars win
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables")
	}

	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	uploads, err := upload.NewStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("init upload store: %v", err)
	}

	// wallet service; notifications are disabled when SMTP is not configured
	var notifier wallet.Notifier
	if mailer := mail.New(cfg.Mail, cfg.App.Currency); mailer != nil {
		notifier = mailer
	}
	svc := wallet.NewService(db, notifier)

	// setup router
	r := router.SetupRouter(cfg, db, svc, uploads)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
