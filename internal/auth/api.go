package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/veriflow/veriflow/internal/auth/constants"
	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/auth/providers"
	"github.com/veriflow/veriflow/internal/logger"
	"github.com/veriflow/veriflow/internal/utils"
	"go.uber.org/zap"
)

// defaultHTTPClient performs token exchanges when APIOptions does not supply
// its own client. Timeout policy lives here, not in the flow.
var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// APIImplementation is the replaceable record of API operations. A composing
// recipe copies the defaults from NewAPIImplementation and swaps individual
// fields with delegating functions.
type APIImplementation struct {
	DisableAuthorizationURLGet      bool
	DisableSignInUpPost             bool
	DisableAppleRedirectHandlerPost bool

	AuthorizationURLGet      func(ctx context.Context, provider providers.Provider, opts APIOptions, userContext map[string]interface{}) (AuthorizationURLResponse, error)
	SignInUpPost             func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts APIOptions, userContext map[string]interface{}) (SignInUpResponse, error)
	AppleRedirectHandlerPost func(ctx context.Context, code, state string, opts APIOptions) error
}

// NewAPIImplementation returns the default implementation of every operation.
func NewAPIImplementation() *APIImplementation {
	return &APIImplementation{
		AuthorizationURLGet:      authorizationURLGet,
		SignInUpPost:             signInUpPost,
		AppleRedirectHandlerPost: appleRedirectHandlerPost,
	}
}

func authorizationURLGet(ctx context.Context, provider providers.Provider, opts APIOptions, userContext map[string]interface{}) (AuthorizationURLResponse, error) {
	info := provider.AuthorizationRequest(userContext)

	params := make(map[string]string, len(info.Params))
	for key, value := range info.Params {
		params[key] = value.Resolve(opts.Request)
	}

	redirectURI := provider.RedirectURI()
	if redirectURI != "" && !IsDevelopmentClientID(provider.ClientID()) {
		// The backend owns the callback URL. With a development client id the
		// relay already redirects back to the app, so injecting one here
		// would bounce the user through this API a second time.
		params["redirect_uri"] = redirectURI
	}

	authURL := info.URL
	if IsDevelopmentClientID(provider.ClientID()) {
		params["actual_redirect_uri"] = info.URL

		for key, value := range params {
			if value == provider.ClientID() {
				params[key] = StripDevPrefix(provider.ClientID())
			}
		}
		authURL = constants.DevOAuthAuthorizationURL
	}

	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}

	return AuthorizationURLResponse{URL: authURL + "?" + query.Encode()}, nil
}

// clientID is accepted for API-shape compatibility with clients that exchange
// tokens themselves; the configured provider credential is authoritative.
func signInUpPost(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts APIOptions, userContext map[string]interface{}) (SignInUpResponse, error) {
	if IsDevelopmentClientID(provider.ClientID()) {
		redirectURI = constants.DevOAuthRedirectURL
	} else if provider.RedirectURI() != "" {
		// The backend takes charge of the callback URL over whatever the
		// frontend supplied.
		redirectURI = provider.RedirectURI()
	}

	tokenResponse := authCodeResponse
	if tokenResponse == nil {
		request := provider.TokenRequest(redirectURI, code, userContext)
		if IsDevelopmentClientID(provider.ClientID()) {
			for key, value := range request.Params {
				if value == provider.ClientID() {
					request.Params[key] = StripDevPrefix(provider.ClientID())
				}
			}
		}

		var err error
		tokenResponse, err = exchangeToken(ctx, opts.httpClient(), request)
		if err != nil {
			return SignInUpResponse{}, fmt.Errorf("token exchange with %s failed: %w", provider.ID(), err)
		}
	}

	userInfo, err := provider.ProfileInfo(ctx, tokenResponse, userContext)
	if err != nil {
		// A provider refusing a login is an expected outcome. The message is
		// passed through verbatim.
		return SignInUpFieldError(err.Error()), nil
	}
	if userInfo.Email == nil {
		return SignInUpNoEmailGivenByProvider(), nil
	}
	email := userInfo.Email.ID
	emailVerified := userInfo.Email.IsVerified

	record, err := opts.Accounts.SignInUp(ctx, provider.ID(), userInfo.ID, email, emailVerified, userContext)
	if err != nil {
		return SignInUpResponse{}, fmt.Errorf("sign in up failed: %w", err)
	}

	if record.IsFieldError {
		if record.Error == "" {
			return SignInUpResponse{}, fmt.Errorf("%w: field error without a message", ErrShouldNeverHappen)
		}
		return SignInUpFieldError(record.Error), nil
	}
	if record.User == nil || record.CreatedNewUser == nil {
		return SignInUpResponse{}, fmt.Errorf("%w: sign in up succeeded without user or created flag", ErrShouldNeverHappen)
	}

	emailVerificationSynced := true
	if emailVerified {
		emailVerificationSynced, err = syncEmailVerification(ctx, opts, record.User, userContext)
		if err != nil {
			return SignInUpResponse{}, err
		}
	}

	session, err := opts.Sessions.CreateSession(ctx, opts.Request, record.User.ID, userContext)
	if err != nil {
		return SignInUpResponse{}, fmt.Errorf("failed to create session: %w", err)
	}

	return SignInUpOK(record.User, *record.CreatedNewUser, tokenResponse, session, emailVerificationSynced), nil
}

// syncEmailVerification mirrors a provider-asserted verified email into the
// local verification records by issuing and immediately redeeming a token.
// The provider already verified the address, so no user interaction is
// needed. Failures are soft: sign-in proceeds and the caller sees
// EmailVerificationSynced=false.
func syncEmailVerification(ctx context.Context, opts APIOptions, user *models.User, userContext map[string]interface{}) (bool, error) {
	tokenResult, err := opts.EmailVerification.CreateToken(ctx, user.ID, user.Email, userContext)
	if err != nil {
		logger.Warn("Failed to issue email verification token",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return false, nil
	}
	if !tokenResult.OK {
		// Nothing to do, the email is already verified locally.
		return true, nil
	}
	if tokenResult.Token == "" {
		return false, fmt.Errorf("%w: verification token created without a token", ErrShouldNeverHappen)
	}

	if err := opts.EmailVerification.VerifyUsingToken(ctx, tokenResult.Token, userContext); err != nil {
		logger.Warn("Failed to redeem email verification token",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

// exchangeToken performs the single code-for-token POST. Provider-side
// rejections come back inside the JSON payload and are handled at the
// profile-resolution step, so only transport and decode failures error here.
func exchangeToken(ctx context.Context, client *http.Client, request providers.TokenRequest) (map[string]interface{}, error) {
	form := url.Values{}
	for key, value := range request.Params {
		form.Set(key, value)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, request.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	httpRequest.Header.Set("Accept", "application/json")
	httpRequest.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logger.Error("Failed to close token response body", zap.Error(err))
		}
	}()

	var payload map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return payload, nil
}

func appleRedirectHandlerPost(ctx context.Context, code, state string, opts APIOptions) error {
	query := url.Values{"state": {state}, "code": {code}}
	redirectURI := opts.AppInfo.WebsiteDomain + opts.AppInfo.WebsiteBasePath + "/callback/apple?" + query.Encode()

	utils.WriteHTML(opts.Response, `<html><head><script>window.location.replace("`+redirectURI+`");</script></head></html>`)
	return nil
}

func (o APIOptions) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return defaultHTTPClient
}
