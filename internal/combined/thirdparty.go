// Package combined lets a recipe that spans several login methods (e.g.
// email-password plus third-party) reuse the third-party API operations while
// keeping its own, richer result types. The adapter here maps each of the
// combined recipe's outcome kinds one-to-one back onto the third-party
// recipe's outcomes; combinations the contract rules out fail loudly.
package combined

import (
	"context"
	"fmt"

	"github.com/veriflow/veriflow/internal/auth"
	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/auth/providers"
)

type SignInUpStatus string

const (
	StatusOK                     SignInUpStatus = "OK"
	StatusFieldError             SignInUpStatus = "FIELD_ERROR"
	StatusNoEmailGivenByProvider SignInUpStatus = "NO_EMAIL_GIVEN_BY_PROVIDER"
)

// SignInUpResult is the combined recipe's own outcome for a third-party sign
// in/up. On OK every pointer field must be set.
type SignInUpResult struct {
	Status                  SignInUpStatus
	User                    *models.User
	CreatedNewUser          *bool
	AuthCodeResponse        map[string]interface{}
	Session                 *models.Session
	Error                   string
	EmailVerificationSynced bool
}

// APIInterface is the replaceable operation record a combined recipe
// implements. Nil fields fall back to the third-party defaults.
type APIInterface struct {
	DisableAuthorizationURLGet      bool
	DisableThirdPartySignInUpPost   bool
	DisableAppleRedirectHandlerPost bool

	AuthorizationURLGet      func(ctx context.Context, provider providers.Provider, opts auth.APIOptions, userContext map[string]interface{}) (auth.AuthorizationURLResponse, error)
	ThirdPartySignInUpPost   func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts auth.APIOptions, userContext map[string]interface{}) (SignInUpResult, error)
	AppleRedirectHandlerPost func(ctx context.Context, code, state string, opts auth.APIOptions) error
}

// ThirdPartyAPI builds a third-party API implementation that delegates to the
// combined recipe's operations, remapping outcomes on the way back.
func ThirdPartyAPI(impl *APIInterface) *auth.APIImplementation {
	out := auth.NewAPIImplementation()

	out.DisableAuthorizationURLGet = impl.DisableAuthorizationURLGet
	out.DisableSignInUpPost = impl.DisableThirdPartySignInUpPost
	out.DisableAppleRedirectHandlerPost = impl.DisableAppleRedirectHandlerPost

	if impl.AuthorizationURLGet != nil {
		out.AuthorizationURLGet = impl.AuthorizationURLGet
	}
	if impl.AppleRedirectHandlerPost != nil {
		out.AppleRedirectHandlerPost = impl.AppleRedirectHandlerPost
	}

	if !out.DisableSignInUpPost && impl.ThirdPartySignInUpPost != nil {
		out.SignInUpPost = func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts auth.APIOptions, userContext map[string]interface{}) (auth.SignInUpResponse, error) {
			result, err := impl.ThirdPartySignInUpPost(ctx, provider, code, redirectURI, clientID, authCodeResponse, opts, userContext)
			if err != nil {
				return auth.SignInUpResponse{}, err
			}
			return mapSignInUpResult(result)
		}
	}

	return out
}

func mapSignInUpResult(result SignInUpResult) (auth.SignInUpResponse, error) {
	switch result.Status {
	case StatusOK:
		if result.User == nil || result.CreatedNewUser == nil || result.AuthCodeResponse == nil || result.Session == nil {
			return auth.SignInUpResponse{}, fmt.Errorf("%w: combined recipe returned OK without user, created flag, token response or session", auth.ErrShouldNeverHappen)
		}
		if result.User.ThirdParty.ID == "" || result.User.ThirdParty.UserID == "" {
			return auth.SignInUpResponse{}, fmt.Errorf("%w: combined recipe returned a user without third-party info", auth.ErrShouldNeverHappen)
		}
		return auth.SignInUpOK(result.User, *result.CreatedNewUser, result.AuthCodeResponse, result.Session, result.EmailVerificationSynced), nil
	case StatusNoEmailGivenByProvider:
		return auth.SignInUpNoEmailGivenByProvider(), nil
	case StatusFieldError:
		if result.Error == "" {
			return auth.SignInUpResponse{}, fmt.Errorf("%w: combined recipe returned a field error without a message", auth.ErrShouldNeverHappen)
		}
		return auth.SignInUpFieldError(result.Error), nil
	default:
		return auth.SignInUpResponse{}, fmt.Errorf("%w: unmapped combined outcome %q", auth.ErrShouldNeverHappen, result.Status)
	}
}
