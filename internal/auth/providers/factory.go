package providers

import (
	"fmt"

	"github.com/veriflow/veriflow/internal/config"
)

// ErrUnsupportedProvider indicates an unknown provider id in the configuration
var ErrUnsupportedProvider = fmt.Errorf("unsupported OAuth provider")

// New builds the provider strategy for one configuration entry.
func New(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.ID {
	case "google":
		return NewGoogleProvider(cfg), nil
	case "github":
		return NewGitHubProvider(cfg), nil
	case "facebook":
		return NewFacebookProvider(cfg), nil
	case "apple":
		if cfg.KeyID == "" || cfg.TeamID == "" || cfg.PrivateKey == "" {
			return nil, fmt.Errorf("apple provider requires key_id, team_id and private_key")
		}
		p, err := NewAppleProvider(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.ID)
	}
}
