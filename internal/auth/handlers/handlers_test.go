package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veriflow/veriflow/internal/accounts"
	"github.com/veriflow/veriflow/internal/auth"
	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/auth/providers"
	"github.com/veriflow/veriflow/internal/config"
	"github.com/veriflow/veriflow/internal/emailverification"
	"github.com/veriflow/veriflow/internal/session"
)

func testService(t *testing.T) *auth.Service {
	t.Helper()
	cfg := &config.Config{
		AppInfo: config.AppInfo{
			APIDomain:       "https://api.example.com",
			APIBasePath:     "/auth",
			WebsiteDomain:   "https://www.example.com",
			WebsiteBasePath: "/auth",
		},
		Providers: []config.ProviderConfig{
			{ID: "google", ClientID: "google-client", ClientSecret: "google-secret"},
		},
	}
	service, err := auth.NewService(auth.ServiceParams{
		Config:            cfg,
		Accounts:          accounts.NewStore(),
		EmailVerification: emailverification.NewService(),
		Sessions:          session.NewManager(),
	})
	require.NoError(t, err)
	return service
}

func TestHandleAuthorizationURL(t *testing.T) {
	h := NewHandler(testService(t))

	w := httptest.NewRecorder()
	h.HandleAuthorizationURL(w, httptest.NewRequest(http.MethodGet, "/auth/authorizationurl?thirdPartyId=google", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		URL    string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)

	parsed, err := url.Parse(body.URL)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "google-client", parsed.Query().Get("client_id"))
}

func TestHandleAuthorizationURLUnknownProvider(t *testing.T) {
	h := NewHandler(testService(t))

	w := httptest.NewRecorder()
	h.HandleAuthorizationURL(w, httptest.NewRequest(http.MethodGet, "/auth/authorizationurl?thirdPartyId=myspace", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAuthorizationURLMethodNotAllowed(t *testing.T) {
	h := NewHandler(testService(t))

	w := httptest.NewRecorder()
	h.HandleAuthorizationURL(w, httptest.NewRequest(http.MethodPost, "/auth/authorizationurl?thirdPartyId=google", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleAuthorizationURLDisabled(t *testing.T) {
	service := testService(t)
	impl := service.API()
	impl.DisableAuthorizationURLGet = true
	h := NewHandler(service)

	w := httptest.NewRecorder()
	h.HandleAuthorizationURL(w, httptest.NewRequest(http.MethodGet, "/auth/authorizationurl?thirdPartyId=google", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSignInUpRequiresCodeOrTokenResponse(t *testing.T) {
	h := NewHandler(testService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signinup", strings.NewReader(`{"thirdPartyId": "google"}`))
	h.HandleSignInUp(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSignInUpInvalidBody(t *testing.T) {
	h := NewHandler(testService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signinup", strings.NewReader("{"))
	h.HandleSignInUp(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSignInUpSerializesOK(t *testing.T) {
	service := testService(t)
	impl := service.API()
	impl.SignInUpPost = func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts auth.APIOptions, userContext map[string]interface{}) (auth.SignInUpResponse, error) {
		user := &models.User{
			ID:         "local-1",
			Email:      "a@b.com",
			TimeJoined: 1700000000000,
			ThirdParty: models.ThirdPartyInfo{ID: "google", UserID: "g-1"},
		}
		s := &models.Session{Handle: "session-1", UserID: "local-1"}
		return auth.SignInUpOK(user, true, map[string]interface{}{"access_token": "at-1"}, s, true), nil
	}
	h := NewHandler(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signinup", strings.NewReader(`{"thirdPartyId": "google", "code": "code-1"}`))
	h.HandleSignInUp(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, true, body["createdNewUser"])
	assert.Equal(t, true, body["emailVerificationSynced"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "local-1", user["id"])
	assert.Equal(t, "a@b.com", user["email"])

	sess, ok := body["session"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "session-1", sess["handle"])
}

func TestHandleSignInUpSerializesFieldError(t *testing.T) {
	service := testService(t)
	impl := service.API()
	impl.SignInUpPost = func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts auth.APIOptions, userContext map[string]interface{}) (auth.SignInUpResponse, error) {
		return auth.SignInUpFieldError("invalid_grant"), nil
	}
	h := NewHandler(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signinup", strings.NewReader(`{"thirdPartyId": "google", "code": "code-1"}`))
	h.HandleSignInUp(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FIELD_ERROR", body["status"])
	assert.Equal(t, "invalid_grant", body["error"])
}

func TestHandleSignInUpSerializesNoEmail(t *testing.T) {
	service := testService(t)
	impl := service.API()
	impl.SignInUpPost = func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts auth.APIOptions, userContext map[string]interface{}) (auth.SignInUpResponse, error) {
		return auth.SignInUpNoEmailGivenByProvider(), nil
	}
	h := NewHandler(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signinup", strings.NewReader(`{"thirdPartyId": "google", "code": "code-1"}`))
	h.HandleSignInUp(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NO_EMAIL_GIVEN_BY_PROVIDER", body["status"])
}

func TestHandleSignInUpUnmappedStatusIsInternalError(t *testing.T) {
	service := testService(t)
	impl := service.API()
	impl.SignInUpPost = func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts auth.APIOptions, userContext map[string]interface{}) (auth.SignInUpResponse, error) {
		return auth.SignInUpResponse{}, nil
	}
	h := NewHandler(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signinup", strings.NewReader(`{"thirdPartyId": "google", "code": "code-1"}`))
	h.HandleSignInUp(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body["error"])
}

func TestHandleSignInUpInternalError(t *testing.T) {
	service := testService(t)
	impl := service.API()
	impl.SignInUpPost = func(ctx context.Context, provider providers.Provider, code, redirectURI, clientID string, authCodeResponse map[string]interface{}, opts auth.APIOptions, userContext map[string]interface{}) (auth.SignInUpResponse, error) {
		return auth.SignInUpResponse{}, auth.ErrShouldNeverHappen
	}
	h := NewHandler(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signinup", strings.NewReader(`{"thirdPartyId": "google", "code": "code-1"}`))
	h.HandleSignInUp(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleAppleRedirect(t *testing.T) {
	h := NewHandler(testService(t))

	form := url.Values{"code": {"code-1"}, "state": {"state-1"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/callback/apple", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.HandleAppleRedirect(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://www.example.com/auth/callback/apple?code=code-1&state=state-1")
}

func TestHandleAppleRedirectRejectsGet(t *testing.T) {
	h := NewHandler(testService(t))

	w := httptest.NewRecorder()
	h.HandleAppleRedirect(w, httptest.NewRequest(http.MethodGet, "/auth/callback/apple", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
