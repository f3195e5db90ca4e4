package main

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/adapters/pdf"
	"github.com/khoahotran/career-compass/adapters/persistence"
	authUC "github.com/khoahotran/career-compass/internal/application/usecase/auth"
	profileUC "github.com/khoahotran/career-compass/internal/application/usecase/profile"
	"github.com/khoahotran/career-compass/internal/config"
	"github.com/khoahotran/career-compass/internal/domain/profile"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/auth"
	"github.com/khoahotran/career-compass/pkg/logger"
)

// Seeds a demo account (DEMO_EMAIL / DEMO_PASSWORD) with a partly filled profile.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}
	log := logger.NewZapLogger(cfg.App.Env)
	defer func() { _ = log.Sync() }()

	email := os.Getenv("DEMO_EMAIL")
	password := os.Getenv("DEMO_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("DEMO_EMAIL and DEMO_PASSWORD are required", nil)
	}

	pool, err := persistence.NewPostgresPool(cfg, log)
	if err != nil {
		log.Fatal("Cannot connect DB", err)
	}
	defer pool.Close()

	ctx := context.Background()
	userRepo := persistence.NewPostgresUserRepo(pool, log)
	profileRepo := persistence.NewPostgresProfileRepo(pool, log)
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	_, err = authUC.NewRegisterUseCase(userRepo, jwtSvc, log).
		Execute(ctx, authUC.RegisterInput{Email: email, Password: password})
	if err != nil && !errors.Is(err, apperror.ErrConflict) {
		log.Fatal("Cannot add demo user", err)
	}

	u, err := userRepo.FindByEmail(ctx, email)
	if err != nil {
		log.Fatal("Cannot load demo user", err)
	}

	name, degree, skills := "Demo User", "BSc Computer Science", "Go, SQL, Docker"
	_, err = profileUC.NewProfileUseCase(profileRepo, pdf.NewParser(), nil, log).
		ExecuteUpdateProfile(ctx, profileUC.UpdateProfileInput{
			UserID: u.ID,
			Patch:  profile.Patch{Name: &name, Degree: &degree, Skills: &skills},
		})
	if err != nil {
		log.Fatal("Cannot seed demo profile", err)
	}

	log.Info("Added or updated demo user successfully", zap.String("email", email))
}
