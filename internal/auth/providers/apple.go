package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/config"
	"golang.org/x/oauth2"
)

// Apple has no endpoint entry in golang.org/x/oauth2/endpoints.
var appleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://appleid.apple.com/auth/authorize",
	TokenURL: "https://appleid.apple.com/auth/token",
}

// appleSecretValidity is the lifetime of the generated client secret. Apple
// caps it at six months.
const appleSecretValidity = 180 * 24 * time.Hour

type AppleProvider struct {
	cfg          config.ProviderConfig
	endpoint     oauth2.Endpoint
	clientSecret string
}

// NewAppleProvider signs the client secret up front, so malformed signing
// material fails at startup instead of surfacing as an opaque invalid_client
// from Apple mid-flow. The secret lives for the process lifetime, well within
// the validity Apple allows.
func NewAppleProvider(cfg config.ProviderConfig) (*AppleProvider, error) {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"email"}
	}
	secret, err := signClientSecret(cfg)
	if err != nil {
		return nil, err
	}
	return &AppleProvider{cfg: cfg, endpoint: appleEndpoint, clientSecret: secret}, nil
}

func (p *AppleProvider) ID() string          { return p.cfg.ID }
func (p *AppleProvider) ClientID() string    { return p.cfg.ClientID }
func (p *AppleProvider) RedirectURI() string { return p.cfg.RedirectURI }

func (p *AppleProvider) AuthorizationRequest(userContext map[string]interface{}) AuthorizationRequest {
	return AuthorizationRequest{
		URL: p.endpoint.AuthURL,
		Params: map[string]Param{
			"scope":         Literal(strings.Join(p.cfg.Scopes, " ")),
			"response_mode": Literal("form_post"),
			"response_type": Literal("code"),
			"client_id":     Literal(p.cfg.ClientID),
		},
	}
}

func (p *AppleProvider) TokenRequest(redirectURI, code string, userContext map[string]interface{}) TokenRequest {
	return TokenRequest{
		URL: p.endpoint.TokenURL,
		Params: map[string]string{
			"client_id":     p.cfg.ClientID,
			"client_secret": p.clientSecret,
			"grant_type":    "authorization_code",
			"code":          code,
			"redirect_uri":  redirectURI,
		},
	}
}

// signClientSecret builds the signed JWT Apple requires in place of a static
// client secret.
func signClientSecret(cfg config.ProviderConfig) (string, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(cfg.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse apple private key: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": cfg.TeamID,
		"iat": now.Unix(),
		"exp": now.Add(appleSecretValidity).Unix(),
		"aud": "https://appleid.apple.com",
		"sub": cfg.ClientID,
	})
	token.Header["kid"] = cfg.KeyID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign apple client secret: %w", err)
	}
	return signed, nil
}

func (p *AppleProvider) ProfileInfo(ctx context.Context, tokenResponse map[string]interface{}, userContext map[string]interface{}) (*models.UserInfo, error) {
	if err := providerError(tokenResponse); err != nil {
		return nil, err
	}

	rawIDToken, ok := tokenResponse["id_token"].(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("no id_token in token response")
	}

	// The id_token came straight from Apple's token endpoint over TLS, so the
	// claims are read without a second signature check.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id_token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("id_token is missing the sub claim")
	}

	userInfo := &models.UserInfo{ID: sub}
	if email, _ := claims["email"].(string); email != "" {
		userInfo.Email = &models.EmailInfo{
			ID:         email,
			IsVerified: appleEmailVerified(claims["email_verified"]),
		}
	}
	return userInfo, nil
}

// Apple encodes email_verified as a bool or as the string "true" depending on
// the flow.
func appleEmailVerified(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}
