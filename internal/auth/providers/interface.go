package providers

import (
	"context"
	"net/http"

	"github.com/veriflow/veriflow/internal/auth/models"
)

// Param is one authorization-request parameter value. Most are literals, but
// a provider may defer a value until the inbound request is known (e.g. a
// PKCE challenge computed per request).
type Param struct {
	value   string
	compute func(*http.Request) string
}

// Literal returns a fixed parameter value
func Literal(v string) Param {
	return Param{value: v}
}

// Computed returns a parameter value derived from the inbound request
func Computed(fn func(*http.Request) string) Param {
	return Param{compute: fn}
}

// Resolve materializes the value. r may be nil for literal params.
func (p Param) Resolve(r *http.Request) string {
	if p.compute != nil {
		return p.compute(r)
	}
	return p.value
}

// AuthorizationRequest describes the redirect to a provider's consent screen:
// the authorize endpoint plus the query parameters to send along.
type AuthorizationRequest struct {
	URL    string
	Params map[string]Param
}

// TokenRequest describes the code-for-token exchange: the token endpoint plus
// the form-encoded body parameters.
type TokenRequest struct {
	URL    string
	Params map[string]string
}

// Provider is the strategy every OAuth provider implements. Implementations
// carry only their own immutable configuration and are safe for concurrent
// use.
type Provider interface {
	// ID returns the provider key, e.g. "google"
	ID() string

	// ClientID returns the configured (possibly development) client id
	ClientID() string

	// RedirectURI returns the backend-controlled callback URL, or "" when the
	// frontend supplies it
	RedirectURI() string

	// AuthorizationRequest builds the redirect info for the consent screen
	AuthorizationRequest(userContext map[string]interface{}) AuthorizationRequest

	// TokenRequest builds the code-for-token exchange info
	TokenRequest(redirectURI, code string, userContext map[string]interface{}) TokenRequest

	// ProfileInfo resolves a normalized profile from a raw token-endpoint
	// response. An error here means the provider rejected the login or
	// returned data we cannot use; callers surface it as a field error, not
	// as a fault.
	ProfileInfo(ctx context.Context, tokenResponse map[string]interface{}, userContext map[string]interface{}) (*models.UserInfo, error)
}
