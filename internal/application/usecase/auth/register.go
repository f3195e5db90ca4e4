package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/domain/user"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/auth"
	"github.com/khoahotran/career-compass/pkg/logger"
)

type RegisterUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
}

func NewRegisterUseCase(repo user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{
		userRepo: repo,
		jwtSvc:   jwtSvc,
		logger:   log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

// Execute creates the user with an empty profile and signs the caller in.
// Emails are stored exactly as given; uniqueness is case-sensitive.
func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*TokenOutput, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, apperror.NewInvalidInput("email and password are required", nil)
	}

	hash, err := auth.HashPassword(input.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperror.NewInvalidInput("password must be at most "+strconv.Itoa(auth.MaxPasswordBytes)+" bytes", err)
	}
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	u := user.New(input.Email, hash, time.Now().UTC())
	if err := uc.userRepo.CreateWithProfile(ctx, u); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", u.ID.String()))
	uc.logger.Info("User registered", zap.String("user_id", u.ID.String()))

	out, err := issueToken(uc.jwtSvc, u)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		return nil, err
	}
	return out, nil
}
