package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"ms-cinema/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// ClerkStore looks up ticket clerk accounts.
type ClerkStore interface {
	GetClerkByUsername(ctx context.Context, username string) (*models.TicketClerk, error)
}

// Service authenticates ticket clerks and issues their session tokens.
type Service struct {
	Clerks ClerkStore
	Tokens *TokenIssuer
}

func NewService(clerks ClerkStore, tokens *TokenIssuer) *Service {
	return &Service{Clerks: clerks, Tokens: tokens}
}

// Login verifies the clerk's password and returns a signed token. Unknown
// usernames and wrong passwords are not distinguished.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	clerk, err := s.Clerks.GetClerkByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load clerk %q: %w", username, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(clerk.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.Tokens.Issue(clerk.Username)
}

// HashPassword returns the bcrypt hash stored for a clerk account, used by
// provisioning.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
