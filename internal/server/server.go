// Package server wires the auth HTTP surface into one http.Server with
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/veriflow/veriflow/internal/auth/handlers"
	"github.com/veriflow/veriflow/internal/auth/middleware"
	"github.com/veriflow/veriflow/internal/config"
	"github.com/veriflow/veriflow/internal/jwtkeys"
	"github.com/veriflow/veriflow/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	config  *config.Config
	handler *handlers.Handler
	jwt     *jwtkeys.Recipe
}

type ServerParams struct {
	fx.In

	Config  *config.Config
	Handler *handlers.Handler
	JWT     *jwtkeys.Recipe
}

func NewServer(params ServerParams) *Server {
	return &Server{
		config:  params.Config,
		handler: params.Handler,
		jwt:     params.JWT,
	}
}

// Routes builds the full HTTP handler: auth endpoints under the configured
// API base path, wrapped with CORS for the website origin.
func (s *Server) Routes() http.Handler {
	base := s.config.AppInfo.APIBasePath

	mux := http.NewServeMux()
	mux.HandleFunc(base+"/authorizationurl", s.handler.HandleAuthorizationURL)
	mux.HandleFunc(base+"/signinup", s.handler.HandleSignInUp)
	mux.HandleFunc(base+"/callback/apple", s.handler.HandleAppleRedirect)
	mux.HandleFunc(base+"/jwt/jwks.json", s.jwt.HandleJWKS)

	return middleware.CORSWithOrigins([]string{s.config.AppInfo.WebsiteDomain})(mux)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting server", zap.String("address", addr))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

// Module provides the HTTP server dependencies
var Module = fx.Module("server",
	fx.Provide(
		NewServer,
		handlers.NewHandler,
	),
)
