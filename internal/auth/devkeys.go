package auth

import (
	"strings"

	"github.com/veriflow/veriflow/internal/auth/constants"
)

// IsDevelopmentClientID reports whether a client id is a non-production
// credential: either it carries the reserved prefix or it is one of the
// shared demo client ids. Development credentials are routed through the
// relay instead of the real provider.
func IsDevelopmentClientID(clientID string) bool {
	if strings.HasPrefix(clientID, constants.DevKeyIdentifier) {
		return true
	}
	for _, id := range constants.DevOAuthClientIDs {
		if clientID == id {
			return true
		}
	}
	return false
}

// StripDevPrefix returns the real client id hiding behind a development one.
// Already-stripped ids come back unchanged, so stripping is idempotent.
func StripDevPrefix(clientID string) string {
	if strings.HasPrefix(clientID, constants.DevKeyIdentifier) {
		return strings.SplitN(clientID, constants.DevKeyIdentifier, 2)[1]
	}
	return clientID
}
