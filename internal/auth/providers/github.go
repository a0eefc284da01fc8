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
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

type GitHubProvider struct {
	cfg       config.ProviderConfig
	endpoint  oauth2.Endpoint
	userURL   string
	emailsURL string
}

func NewGitHubProvider(cfg config.ProviderConfig) *GitHubProvider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"read:user", "user:email"}
	}
	return &GitHubProvider{
		cfg:       cfg,
		endpoint:  github.Endpoint,
		userURL:   githubUserURL,
		emailsURL: githubEmailsURL,
	}
}

func (p *GitHubProvider) ID() string          { return p.cfg.ID }
func (p *GitHubProvider) ClientID() string    { return p.cfg.ClientID }
func (p *GitHubProvider) RedirectURI() string { return p.cfg.RedirectURI }

func (p *GitHubProvider) AuthorizationRequest(userContext map[string]interface{}) AuthorizationRequest {
	return AuthorizationRequest{
		URL: p.endpoint.AuthURL,
		Params: map[string]Param{
			"scope":     Literal(strings.Join(p.cfg.Scopes, " ")),
			"client_id": Literal(p.cfg.ClientID),
		},
	}
}

func (p *GitHubProvider) TokenRequest(redirectURI, code string, userContext map[string]interface{}) TokenRequest {
	return TokenRequest{
		URL: p.endpoint.TokenURL,
		Params: map[string]string{
			"client_id":     p.cfg.ClientID,
			"client_secret": p.cfg.ClientSecret,
			"code":          code,
			"redirect_uri":  redirectURI,
		},
	}
}

func (p *GitHubProvider) ProfileInfo(ctx context.Context, tokenResponse map[string]interface{}, userContext map[string]interface{}) (*models.UserInfo, error) {
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

	var gh struct {
		ID int `json:"id"`
	}
	if err := p.getJSON(client, p.userURL, &gh); err != nil {
		return nil, err
	}
	if gh.ID == 0 {
		return nil, errors.New("user response is missing the user id")
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(client, p.emailsURL, &emails); err != nil {
		return nil, err
	}

	userInfo := &models.UserInfo{ID: fmt.Sprintf("%d", gh.ID)}
	for _, e := range emails {
		if e.Primary {
			userInfo.Email = &models.EmailInfo{ID: e.Email, IsVerified: e.Verified}
			break
		}
	}
	return userInfo, nil
}

func (p *GitHubProvider) getJSON(client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", url, err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s failed with status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}
