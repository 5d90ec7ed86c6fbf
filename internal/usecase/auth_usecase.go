package usecase

import (
	"context"
	"errors"

	"datajobs/internal/pkg/jwt"
	"datajobs/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid source credentials")

// AuthUsecase exchanges a crawler source's API key for a short-lived
// ingest token.
type AuthUsecase struct {
	sources repository.SourceRepository
	jwt     jwt.Service
}

func NewAuthUsecase(sources repository.SourceRepository, jwtSvc jwt.Service) *AuthUsecase {
	return &AuthUsecase{sources: sources, jwt: jwtSvc}
}

func (u *AuthUsecase) IssueToken(ctx context.Context, sourceName, apiKey string) (string, error) {
	src, err := u.sources.GetByName(ctx, sourceName)
	if err != nil {
		if errors.Is(err, repository.ErrSourceNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(src.APIKeyHash), []byte(apiKey)) != nil {
		return "", ErrInvalidCredentials
	}

	return u.jwt.GenerateToken(src.ID, src.Name)
}
