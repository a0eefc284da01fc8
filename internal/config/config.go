package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("veriflow version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	AppInfo   AppInfo          `mapstructure:"appinfo"`
	Providers []ProviderConfig `mapstructure:"providers"`
	JWT       JWTConfig        `mapstructure:"jwt"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Timeout string `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// AppInfo describes where the API and the website that consumes it live.
// WebsiteDomain/WebsiteBasePath are used to build the browser-side redirect
// for providers that post their callback to the API (Apple).
type AppInfo struct {
	APIDomain       string `mapstructure:"api_domain"`
	APIBasePath     string `mapstructure:"api_base_path"`
	WebsiteDomain   string `mapstructure:"website_domain"`
	WebsiteBasePath string `mapstructure:"website_base_path"`
}

// ProviderConfig is the static identity of one OAuth provider. It is built
// once at startup and never mutated afterwards.
type ProviderConfig struct {
	ID           string   `mapstructure:"id"` // google, github, facebook, apple
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
	// RedirectURI, when set, is the backend-controlled callback URL. It wins
	// over whatever redirect URI the frontend supplies.
	RedirectURI string `mapstructure:"redirect_uri"`

	// Apple-only: the client secret is a signed JWT derived from these.
	KeyID      string `mapstructure:"key_id"`
	TeamID     string `mapstructure:"team_id"`
	PrivateKey string `mapstructure:"private_key"`
}

type JWTConfig struct {
	// ValiditySeconds is the default lifetime of JWTs created by the jwtkeys
	// recipe when the caller does not pass one.
	ValiditySeconds int64 `mapstructure:"validity_seconds"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("config", "", "Path to the config file")
	// Note: no pflag.Parse() here as it's called in main.go
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("VERIFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/veriflow")
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.AppInfo.APIDomain == "" {
		return nil, fmt.Errorf("appinfo.api_domain is required, please adjust the config or set VERIFLOW_APPINFO_API_DOMAIN")
	}
	if config.AppInfo.WebsiteDomain == "" {
		return nil, fmt.Errorf("appinfo.website_domain is required, please adjust the config or set VERIFLOW_APPINFO_WEBSITE_DOMAIN")
	}
	if config.AppInfo.APIBasePath == "" {
		config.AppInfo.APIBasePath = "/auth"
	}
	if config.AppInfo.WebsiteBasePath == "" {
		config.AppInfo.WebsiteBasePath = "/auth"
	}

	if len(config.Providers) == 0 {
		return nil, fmt.Errorf("at least one provider must be configured under providers")
	}
	seen := make(map[string]struct{}, len(config.Providers))
	for _, p := range config.Providers {
		if p.ID == "" || p.ClientID == "" {
			return nil, fmt.Errorf("every provider needs an id and a client_id")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("provider %q is configured twice", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	if config.JWT.ValiditySeconds == 0 {
		config.JWT.ValiditySeconds = 3153600000
	}

	return &config, nil
}
