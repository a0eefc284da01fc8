package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/config"
)

// ErrShouldNeverHappen marks an internal invariant violation: a collaborator
// returned a combination of fields its contract rules out. It is a
// programming fault, never a business outcome, and must not be mapped to a
// plausible-looking default.
var ErrShouldNeverHappen = errors.New("should never come here")

// AccountStore creates or links a local user record from a resolved external
// identity.
type AccountStore interface {
	SignInUp(ctx context.Context, thirdPartyID, thirdPartyUserID, email string, emailVerified bool, userContext map[string]interface{}) (SignInUpRecord, error)
}

// SignInUpRecord is the tri-state result of AccountStore.SignInUp. On
// success User and CreatedNewUser are both set; on a field error Error
// carries a non-empty message. Anything else violates the contract.
type SignInUpRecord struct {
	IsFieldError   bool
	Error          string
	User           *models.User
	CreatedNewUser *bool
}

// EmailVerifier issues and redeems email verification tokens.
type EmailVerifier interface {
	CreateToken(ctx context.Context, userID, email string, userContext map[string]interface{}) (EmailVerificationToken, error)
	VerifyUsingToken(ctx context.Context, token string, userContext map[string]interface{}) error
}

// EmailVerificationToken is the result of EmailVerifier.CreateToken. OK is
// false when there is nothing to verify (the email is already verified).
type EmailVerificationToken struct {
	OK    bool
	Token string
}

// SessionCreator binds a new session to a local user id.
type SessionCreator interface {
	CreateSession(ctx context.Context, r *http.Request, userID string, userContext map[string]interface{}) (*models.Session, error)
}

// APIOptions carries the per-request collaborators and context every API
// operation needs.
type APIOptions struct {
	AppInfo           config.AppInfo
	Request           *http.Request
	Response          http.ResponseWriter
	Accounts          AccountStore
	EmailVerification EmailVerifier
	Sessions          SessionCreator

	// HTTPClient performs the token exchange. Leave nil for the shared
	// default client.
	HTTPClient *http.Client
}

// AuthorizationURLResponse carries the final redirect URL for the provider's
// consent screen.
type AuthorizationURLResponse struct {
	URL string
}

type SignInUpStatus string

const (
	SignInUpStatusOK                     SignInUpStatus = "OK"
	SignInUpStatusFieldError             SignInUpStatus = "FIELD_ERROR"
	SignInUpStatusNoEmailGivenByProvider SignInUpStatus = "NO_EMAIL_GIVEN_BY_PROVIDER"
)

// SignInUpResponse is one of three mutually exclusive outcomes. Which fields
// are meaningful depends on Status; use the constructors.
type SignInUpResponse struct {
	Status           SignInUpStatus
	User             *models.User
	CreatedNewUser   bool
	AuthCodeResponse map[string]interface{}
	Session          *models.Session
	Error            string

	// EmailVerificationSynced is false when the provider asserted the email
	// as verified but mirroring that into the local verification records
	// failed. Sign-in still succeeds; callers decide whether to re-verify.
	EmailVerificationSynced bool
}

func SignInUpOK(user *models.User, createdNewUser bool, authCodeResponse map[string]interface{}, session *models.Session, emailVerificationSynced bool) SignInUpResponse {
	return SignInUpResponse{
		Status:                  SignInUpStatusOK,
		User:                    user,
		CreatedNewUser:          createdNewUser,
		AuthCodeResponse:        authCodeResponse,
		Session:                 session,
		EmailVerificationSynced: emailVerificationSynced,
	}
}

func SignInUpFieldError(message string) SignInUpResponse {
	return SignInUpResponse{Status: SignInUpStatusFieldError, Error: message}
}

func SignInUpNoEmailGivenByProvider() SignInUpResponse {
	return SignInUpResponse{Status: SignInUpStatusNoEmailGivenByProvider}
}
