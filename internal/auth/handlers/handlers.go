package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/veriflow/veriflow/internal/auth"
	"github.com/veriflow/veriflow/internal/auth/models"
	"github.com/veriflow/veriflow/internal/logger"
	"github.com/veriflow/veriflow/internal/utils"
	"go.uber.org/zap"
)

// Handler adapts the sign-in/sign-up API operations to HTTP. Business
// outcomes are serialized as typed statuses; transport and invariant faults
// become a generic 500.
type Handler struct {
	service *auth.Service
}

// NewHandler creates a new Handler instance
func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

// HandleAuthorizationURL handles GET {basePath}/authorizationurl
func (h *Handler) HandleAuthorizationURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	impl := h.service.API()
	if impl.DisableAuthorizationURLGet {
		http.NotFound(w, r)
		return
	}

	provider, ok := h.service.Provider(r.URL.Query().Get("thirdPartyId"))
	if !ok {
		utils.WriteError(w, "invalid_request", "Unknown thirdPartyId", http.StatusBadRequest)
		return
	}

	result, err := impl.AuthorizationURLGet(r.Context(), provider, h.service.Options(w, r), map[string]interface{}{})
	if err != nil {
		logger.Error("Failed to build authorization URL",
			zap.String("provider", provider.ID()),
			zap.Error(err),
		)
		utils.WriteError(w, "internal_error", "Something went wrong", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "OK",
		"url":    result.URL,
	})
}

type signInUpRequest struct {
	ThirdPartyID     string                 `json:"thirdPartyId"`
	Code             string                 `json:"code"`
	RedirectURI      string                 `json:"redirectURI"`
	ClientID         string                 `json:"clientId"`
	AuthCodeResponse map[string]interface{} `json:"authCodeResponse"`
}

// HandleSignInUp handles POST {basePath}/signinup
func (h *Handler) HandleSignInUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	impl := h.service.API()
	if impl.DisableSignInUpPost {
		http.NotFound(w, r)
		return
	}

	var req signInUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}

	provider, ok := h.service.Provider(req.ThirdPartyID)
	if !ok {
		utils.WriteError(w, "invalid_request", "Unknown thirdPartyId", http.StatusBadRequest)
		return
	}
	if req.Code == "" && req.AuthCodeResponse == nil {
		utils.WriteError(w, "invalid_request", "Either code or authCodeResponse is required", http.StatusBadRequest)
		return
	}

	result, err := impl.SignInUpPost(
		r.Context(),
		provider,
		req.Code,
		req.RedirectURI,
		req.ClientID,
		req.AuthCodeResponse,
		h.service.Options(w, r),
		map[string]interface{}{},
	)
	if err != nil {
		logger.Error("Sign in up failed",
			zap.String("provider", provider.ID()),
			zap.Error(err),
		)
		utils.WriteError(w, "internal_error", "Something went wrong", http.StatusInternalServerError)
		return
	}

	body, err := serializeSignInUp(result)
	if err != nil {
		logger.Error("Sign in up returned an unserializable result",
			zap.String("provider", provider.ID()),
			zap.Error(err),
		)
		utils.WriteError(w, "internal_error", "Something went wrong", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, body)
}

// HandleAppleRedirect handles POST {basePath}/callback/apple. Apple posts the
// form straight to the API; the response is an HTML page that bounces the
// browser back to the website's own callback.
func (h *Handler) HandleAppleRedirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	impl := h.service.API()
	if impl.DisableAppleRedirectHandlerPost {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, "invalid_request", "Failed to parse form", http.StatusBadRequest)
		return
	}

	err := impl.AppleRedirectHandlerPost(
		r.Context(),
		r.FormValue("code"),
		r.FormValue("state"),
		h.service.Options(w, r),
	)
	if err != nil {
		logger.Error("Apple redirect handler failed", zap.Error(err))
		utils.WriteError(w, "internal_error", "Something went wrong", http.StatusInternalServerError)
	}
}

func serializeSignInUp(result auth.SignInUpResponse) (map[string]interface{}, error) {
	switch result.Status {
	case auth.SignInUpStatusOK:
		return map[string]interface{}{
			"status":                  "OK",
			"user":                    serializeUser(result.User),
			"createdNewUser":          result.CreatedNewUser,
			"session":                 map[string]interface{}{"handle": result.Session.Handle},
			"authCodeResponse":        result.AuthCodeResponse,
			"emailVerificationSynced": result.EmailVerificationSynced,
		}, nil
	case auth.SignInUpStatusFieldError:
		return map[string]interface{}{
			"status": "FIELD_ERROR",
			"error":  result.Error,
		}, nil
	case auth.SignInUpStatusNoEmailGivenByProvider:
		return map[string]interface{}{
			"status": "NO_EMAIL_GIVEN_BY_PROVIDER",
		}, nil
	default:
		return nil, fmt.Errorf("%w: unmapped sign in up status %q", auth.ErrShouldNeverHappen, result.Status)
	}
}

func serializeUser(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"timeJoined": user.TimeJoined,
		"thirdParty": map[string]interface{}{
			"id":     user.ThirdParty.ID,
			"userId": user.ThirdParty.UserID,
		},
	}
}
