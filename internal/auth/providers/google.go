package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo?alt=json"

type GoogleProvider struct {
	cfg         config.ProviderConfig
	endpoint    oauth2.Endpoint
	userInfoURL string
}

func NewGoogleProvider(cfg config.ProviderConfig) *GoogleProvider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"https://www.googleapis.com/auth/userinfo.email"}
	}
	return &GoogleProvider{
		cfg:         cfg,
		endpoint:    google.Endpoint,
		userInfoURL: googleUserInfoURL,
	}
}

func (p *GoogleProvider) ID() string          { return p.cfg.ID }
func (p *GoogleProvider) ClientID() string    { return p.cfg.ClientID }
func (p *GoogleProvider) RedirectURI() string { return p.cfg.RedirectURI }

func (p *GoogleProvider) AuthorizationRequest(userContext map[string]interface{}) AuthorizationRequest {
	return AuthorizationRequest{
		URL: p.endpoint.AuthURL,
		Params: map[string]Param{
			"scope":                  Literal(strings.Join(p.cfg.Scopes, " ")),
			"access_type":            Literal("offline"),
			"include_granted_scopes": Literal("true"),
			"response_type":          Literal("code"),
			"client_id":              Literal(p.cfg.ClientID),
		},
	}
}

func (p *GoogleProvider) TokenRequest(redirectURI, code string, userContext map[string]interface{}) TokenRequest {
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

func (p *GoogleProvider) ProfileInfo(ctx context.Context, tokenResponse map[string]interface{}, userContext map[string]interface{}) (*models.UserInfo, error) {
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

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("userinfo response is missing the user id")
	}

	userInfo := &models.UserInfo{ID: info.ID}
	if info.Email != "" {
		userInfo.Email = &models.EmailInfo{ID: info.Email, IsVerified: info.VerifiedEmail}
	}
	return userInfo, nil
}
