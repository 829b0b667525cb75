// Command seedadmin creates the initial super_admin user so the service can
// be bootstrapped on an empty database. Idempotent: re-running with an
// existing email is a no-op.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/Neo52000/ma-papeterie-sub000/internal/config"
	"github.com/Neo52000/ma-papeterie-sub000/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"
	"github.com/Neo52000/ma-papeterie-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "super_admin email")
	name := flag.String("name", "Administrateur", "display name")
	flag.Parse()

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if *email == "" || password == "" {
		log.Fatal().Msg("usage: seedadmin -email <email> with SEED_ADMIN_PASSWORD set")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	repo := repository.NewUserRepository(db)

	if _, err := repo.FindByEmail(ctx, *email); err == nil {
		log.Info().Str("email", *email).Msg("user already exists, nothing to do")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	user := &model.User{
		Email:        *email,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("failed to create user")
	}
	log.Info().Str("email", *email).Str("id", user.ID.String()).Msg("super_admin created")
}
