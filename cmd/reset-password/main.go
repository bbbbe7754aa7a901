package main

import (
	"context"
	"flag"
	"time"

	"go-blindbox-store/internal/config"
	"go-blindbox-store/internal/repository"
	"go-blindbox-store/pkg/database"
	"go-blindbox-store/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "account to reset (defaults to SEED_ADMIN_EMAIL)")
	password := flag.String("password", "", "new password (defaults to SEED_ADMIN_PASSWORD)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Must(logger.Config{IsDevelopment: true, Level: "info"})
	defer log.Sync()

	if *email == "" {
		*email = cfg.Seed.AdminEmail
	}
	if *password == "" {
		*password = cfg.Seed.AdminPassword
	}
	if len(*password) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	db, err := database.ConnectDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatal("user not found", zap.String("email", *email), zap.Error(err))
	}

	if err := user.SetPassword(*password); err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}
	user.UpdatedBy = "reset-password"
	if err := users.Update(ctx, user); err != nil {
		log.Fatal("failed to update password", zap.Error(err))
	}
	// sign the account out everywhere
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		log.Fatal("failed to rotate session", zap.Error(err))
	}

	log.Info("password reset", zap.String("email", *email))
}
