package auth

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/domain/user"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/auth"
	"github.com/khoahotran/career-compass/pkg/logger"
)

const TokenTypeBearer = "bearer"

var ErrInvalidCredentials = errors.New("incorrect email or password")

type LoginUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
}

func NewLoginUseCase(repo user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		userRepo: repo,
		jwtSvc:   jwtSvc,
		logger:   log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

// TokenOutput is returned by both login and registration.
type TokenOutput struct {
	AccessToken string
	TokenType   string
	Email       string
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*TokenOutput, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	u, err := uc.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			err = apperror.NewUnauthorized("Incorrect email or password", ErrInvalidCredentials)
		}
		span.RecordError(err)
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		err := apperror.NewUnauthorized("Incorrect email or password", ErrInvalidCredentials)
		span.RecordError(err)
		return nil, err
	}

	out, err := issueToken(uc.jwtSvc, u)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", u.ID.String()))
	return out, nil
}

func issueToken(jwtSvc *auth.JWTService, u *user.User) (*TokenOutput, error) {
	token, err := jwtSvc.GenerateToken(u.Email)
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	return &TokenOutput{AccessToken: token, TokenType: TokenTypeBearer, Email: u.Email}, nil
}
