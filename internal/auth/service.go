package auth

import (
	"fmt"
	"net/http"

	"github.com/veriflow/veriflow/internal/auth/providers"
	"github.com/veriflow/veriflow/internal/config"
	"go.uber.org/fx"
)

// Service owns the configured provider strategies and the replaceable API
// implementation, and hands out per-request APIOptions.
type Service struct {
	config            *config.Config
	providers         map[string]providers.Provider
	impl              *APIImplementation
	accounts          AccountStore
	emailVerification EmailVerifier
	sessions          SessionCreator
}

type ServiceParams struct {
	fx.In

	Config            *config.Config
	Accounts          AccountStore
	EmailVerification EmailVerifier
	Sessions          SessionCreator
}

// NewService builds every configured provider up front so that malformed
// provider configuration fails at startup, not mid-flow.
func NewService(params ServiceParams) (*Service, error) {
	provs := make(map[string]providers.Provider, len(params.Config.Providers))
	for _, pc := range params.Config.Providers {
		p, err := providers.New(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize provider %s: %w", pc.ID, err)
		}
		provs[pc.ID] = p
	}

	return &Service{
		config:            params.Config,
		providers:         provs,
		impl:              NewAPIImplementation(),
		accounts:          params.Accounts,
		emailVerification: params.EmailVerification,
		sessions:          params.Sessions,
	}, nil
}

// Provider returns the strategy registered under id.
func (s *Service) Provider(id string) (providers.Provider, bool) {
	p, ok := s.providers[id]
	return p, ok
}

// API returns the replaceable API implementation. A composing recipe may
// swap individual operation fields before the server starts serving.
func (s *Service) API() *APIImplementation {
	return s.impl
}

// UseAPI replaces the API implementation wholesale.
func (s *Service) UseAPI(impl *APIImplementation) {
	s.impl = impl
}

// Options assembles the per-request APIOptions.
func (s *Service) Options(w http.ResponseWriter, r *http.Request) APIOptions {
	return APIOptions{
		AppInfo:           s.config.AppInfo,
		Request:           r,
		Response:          w,
		Accounts:          s.accounts,
		EmailVerification: s.emailVerification,
		Sessions:          s.sessions,
	}
}

// Module provides the auth service dependencies
var Module = fx.Module("auth",
	fx.Provide(
		NewService,
	),
)
