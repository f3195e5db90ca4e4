package auth

import (
	"context"

	"github.com/khoahotran/career-compass/internal/domain/user"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/auth"
)

// AuthenticateUseCase turns a bearer token back into the user it was issued to.
// Nothing is cached: every protected request re-validates.
type AuthenticateUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
}

func NewAuthenticateUseCase(repo user.Repository, jwtSvc *auth.JWTService) *AuthenticateUseCase {
	return &AuthenticateUseCase{userRepo: repo, jwtSvc: jwtSvc}
}

func (uc *AuthenticateUseCase) Execute(ctx context.Context, token string) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "Authenticate")
	defer span.End()

	email, err := uc.jwtSvc.ResolveSubject(token)
	if err != nil {
		return nil, err
	}

	u, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewUnauthorized("Could not validate credentials", err)
	}
	return u, nil
}
