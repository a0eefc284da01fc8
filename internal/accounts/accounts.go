// Package accounts is the in-memory reference implementation of the account
// collaborator. It creates a local user per (provider, external id) pair and
// refuses emails already claimed by a different login method.
package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/veriflow/veriflow/internal/auth"
	"github.com/veriflow/veriflow/internal/auth/models"
	"go.uber.org/fx"
)

type Store struct {
	mu           sync.Mutex
	byThirdParty map[string]*models.User
	byEmail      map[string]*models.User
}

func NewStore() *Store {
	return &Store{
		byThirdParty: make(map[string]*models.User),
		byEmail:      make(map[string]*models.User),
	}
}

func (s *Store) SignInUp(ctx context.Context, thirdPartyID, thirdPartyUserID, email string, emailVerified bool, userContext map[string]interface{}) (auth.SignInUpRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := thirdPartyID + "|" + thirdPartyUserID
	if user, ok := s.byThirdParty[key]; ok {
		created := false
		return auth.SignInUpRecord{User: copyUser(user), CreatedNewUser: &created}, nil
	}

	if owner, ok := s.byEmail[email]; ok && owner.ThirdParty.ID != thirdPartyID {
		return auth.SignInUpRecord{
			IsFieldError: true,
			Error:        "This email already exists with a different login method",
		}, nil
	}

	user := &models.User{
		ID:         uuid.NewString(),
		Email:      email,
		TimeJoined: time.Now().UnixMilli(),
		ThirdParty: models.ThirdPartyInfo{ID: thirdPartyID, UserID: thirdPartyUserID},
	}
	s.byThirdParty[key] = user
	s.byEmail[email] = user

	created := true
	return auth.SignInUpRecord{User: copyUser(user), CreatedNewUser: &created}, nil
}

// GetUserByID returns a copy of the stored user, or nil.
func (s *Store) GetUserByID(id string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byThirdParty {
		if user.ID == id {
			return copyUser(user)
		}
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

// Module provides the account store dependencies
var Module = fx.Module("accounts",
	fx.Provide(
		fx.Annotate(
			NewStore,
			fx.As(new(auth.AccountStore)),
		),
	),
)
