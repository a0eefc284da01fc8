package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const facebookGraphURL = "https://graph.facebook.com/me"

type FacebookProvider struct {
	cfg      config.ProviderConfig
	endpoint oauth2.Endpoint
	graphURL string
}

func NewFacebookProvider(cfg config.ProviderConfig) *FacebookProvider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"email"}
	}
	return &FacebookProvider{
		cfg:      cfg,
		endpoint: endpoints.Facebook,
		graphURL: facebookGraphURL,
	}
}

func (p *FacebookProvider) ID() string          { return p.cfg.ID }
func (p *FacebookProvider) ClientID() string    { return p.cfg.ClientID }
func (p *FacebookProvider) RedirectURI() string { return p.cfg.RedirectURI }

func (p *FacebookProvider) AuthorizationRequest(userContext map[string]interface{}) AuthorizationRequest {
	return AuthorizationRequest{
		URL: p.endpoint.AuthURL,
		Params: map[string]Param{
			"scope":         Literal(strings.Join(p.cfg.Scopes, " ")),
			"response_type": Literal("code"),
			"client_id":     Literal(p.cfg.ClientID),
		},
	}
}

func (p *FacebookProvider) TokenRequest(redirectURI, code string, userContext map[string]interface{}) TokenRequest {
	return TokenRequest{
		URL: p.endpoint.TokenURL,
		Params: map[string]string{
			"client_id":     p.cfg.ClientID,
			"client_secret": p.cfg.ClientSecret,
			"grant_type":    "authorization_code",
			"code":          code,
			"redirect_uri":  redirectURI,
		},
	}
}

func (p *FacebookProvider) ProfileInfo(ctx context.Context, tokenResponse map[string]interface{}, userContext map[string]interface{}) (*models.UserInfo, error) {
	if err := providerError(tokenResponse); err != nil {
		return nil, err
	}

	accessToken, ok := tokenResponse["access_token"].(string)
	if !ok || accessToken == "" {
		return nil, errors.New("no access_token in token response")
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	query := url.Values{"fields": {"id,email"}}
	resp, err := client.Get(p.graphURL + "?" + query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to call graph endpoint: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph request failed with status %d", resp.StatusCode)
	}

	var fb struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fb); err != nil {
		return nil, fmt.Errorf("failed to decode graph response: %w", err)
	}
	if fb.ID == "" {
		return nil, errors.New("graph response is missing the user id")
	}

	userInfo := &models.UserInfo{ID: fb.ID}
	if fb.Email != "" {
		// Facebook only exposes emails it has verified itself.
		userInfo.Email = &models.EmailInfo{ID: fb.Email, IsVerified: true}
	}
	return userInfo, nil
}
