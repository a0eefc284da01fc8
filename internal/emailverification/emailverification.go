// Package emailverification is the in-memory reference implementation of the
// email-verification collaborator: issue a token, redeem it, remember what
// was verified.
package emailverification

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/veriflow/veriflow/internal/auth"
	"go.uber.org/fx"
)

// ErrInvalidToken is returned when a token is unknown or already redeemed
var ErrInvalidToken = errors.New("invalid email verification token")

type tokenData struct {
	userID string
	email  string
}

type Service struct {
	mu       sync.Mutex
	tokens   map[string]tokenData
	verified map[string]bool // userID|email
}

func NewService() *Service {
	return &Service{
		tokens:   make(map[string]tokenData),
		verified: make(map[string]bool),
	}
}

func (s *Service) CreateToken(ctx context.Context, userID, email string, userContext map[string]interface{}) (auth.EmailVerificationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.verified[verifiedKey(userID, email)] {
		return auth.EmailVerificationToken{OK: false}, nil
	}

	token := uuid.NewString()
	s.tokens[token] = tokenData{userID: userID, email: email}
	return auth.EmailVerificationToken{OK: true, Token: token}, nil
}

func (s *Service) VerifyUsingToken(ctx context.Context, token string, userContext map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.tokens[token]
	if !ok {
		return ErrInvalidToken
	}
	delete(s.tokens, token)
	s.verified[verifiedKey(data.userID, data.email)] = true
	return nil
}

// IsVerified reports whether the email was verified for the user.
func (s *Service) IsVerified(userID, email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified[verifiedKey(userID, email)]
}

func verifiedKey(userID, email string) string {
	return userID + "|" + email
}

// Module provides the email verification dependencies
var Module = fx.Module("emailverification",
	fx.Provide(
		fx.Annotate(
			NewService,
			fx.As(new(auth.EmailVerifier)),
		),
	),
)
