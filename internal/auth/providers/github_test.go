package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veriflow/veriflow/internal/config"
)

func githubConfig() config.ProviderConfig {
	return config.ProviderConfig{
		ID:           "github",
		ClientID:     "github-client",
		ClientSecret: "github-secret",
	}
}

func TestGitHubProfileInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "login": "octocat"}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"email": "old@b.com", "primary": false, "verified": true},
			{"email": "a@b.com", "primary": true, "verified": true}
		]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := NewGitHubProvider(githubConfig())
	p.userURL = server.URL + "/user"
	p.emailsURL = server.URL + "/user/emails"

	info, err := p.ProfileInfo(context.Background(), map[string]interface{}{"access_token": "at-1"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "42", info.ID)
	require.NotNil(t, info.Email)
	assert.Equal(t, "a@b.com", info.Email.ID)
	assert.True(t, info.Email.IsVerified)
}

func TestGitHubProfileInfoNoPrimaryEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 42}`))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := NewGitHubProvider(githubConfig())
	p.userURL = server.URL + "/user"
	p.emailsURL = server.URL + "/user/emails"

	info, err := p.ProfileInfo(context.Background(), map[string]interface{}{"access_token": "at-1"}, nil)
	require.NoError(t, err)
	assert.Nil(t, info.Email)
}

func TestGitHubProfileInfoProviderError(t *testing.T) {
	p := NewGitHubProvider(githubConfig())

	_, err := p.ProfileInfo(context.Background(), map[string]interface{}{"error": "bad_verification_code"}, nil)
	require.Error(t, err)
	assert.Equal(t, "bad_verification_code", err.Error())
}

func TestGitHubTokenRequest(t *testing.T) {
	p := NewGitHubProvider(githubConfig())

	request := p.TokenRequest("https://app.example.com/cb", "code-1", nil)
	assert.Equal(t, "https://github.com/login/oauth/access_token", request.URL)
	assert.Equal(t, "github-client", request.Params["client_id"])
	assert.Equal(t, "code-1", request.Params["code"])
}
