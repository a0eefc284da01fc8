// Package session is the in-memory reference implementation of the session
// collaborator. Handles are opaque; nothing else in the flow inspects them.
package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/veriflow/veriflow/internal/auth"
	"github.com/veriflow/veriflow/internal/auth/models"
	"go.uber.org/fx"
)

type Manager struct {
	mu       sync.Mutex
	sessions map[string]string // handle -> user id
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]string)}
}

func (m *Manager) CreateSession(ctx context.Context, r *http.Request, userID string, userContext map[string]interface{}) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handle := uuid.NewString()
	m.sessions[handle] = userID
	return &models.Session{Handle: handle, UserID: userID}, nil
}

// UserID resolves a session handle back to its user id.
func (m *Manager) UserID(handle string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.sessions[handle]
	return userID, ok
}

// Revoke drops a session. It reports whether the handle existed.
func (m *Manager) Revoke(handle string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[handle]
	delete(m.sessions, handle)
	return ok
}

// Module provides the session manager dependencies
var Module = fx.Module("session",
	fx.Provide(
		fx.Annotate(
			NewManager,
			fx.As(new(auth.SessionCreator)),
		),
	),
)
