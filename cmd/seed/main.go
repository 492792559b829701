package main

import (
	"context"
	"errors"
	"flag"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/config"
	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/internal/domain/repository"
	pginfra "github.com/oksasatya/go-auth-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

// seed creates a verified admin account. Existing accounts are left alone.
func main() {
	_ = godotenv.Load()

	email := flag.String("email", "admin@example.com", "admin email")
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	fullname := flag.String("fullname", "Administrator", "admin full name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	if len(*password) < 8 {
		logger.Fatal("-password must be at least 8 characters")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 2})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	hash, err := helpers.NewPasswordHasher(cfg.BcryptCost).Hash(*password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	u := &entity.User{
		Username:        *username,
		Email:           *email,
		FullName:        *fullname,
		Password:        hash,
		Role:            entity.RoleAdmin,
		IsEmailVerified: true,
	}
	repo := pginfra.NewUserRepository(pool)
	err = repo.Create(ctx, u)
	if errors.Is(err, repository.ErrDuplicate) {
		logger.WithField("email", *email).Info("admin already exists")
		return
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email}).Info("seeded admin user")
}
