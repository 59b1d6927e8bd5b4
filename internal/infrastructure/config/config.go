package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration. The embed signing secret and
// site URL have no defaults on purpose: serving with a known fallback
// secret would sign dashboard capabilities anyone could forge.
type Config struct {
	Port       string `envconfig:"PORT" default:"8080"`
	AuthMode   string `envconfig:"AUTH_MODE" default:"secret"`
	AuthSecret string `envconfig:"AUTH_JWT_SECRET"`
	AuthJWKS   string `envconfig:"AUTH_JWKS_URL"`

	TableName string `envconfig:"TABLE_NAME" required:"true"`
	Region    string `envconfig:"AWS_REGION" required:"true"`

	MetabaseSiteURL   string        `envconfig:"METABASE_SITE_URL" required:"true"`
	MetabaseSecretKey string        `envconfig:"METABASE_SECRET_KEY" required:"true"`
	EmbedTokenTTL     time.Duration `envconfig:"EMBED_TOKEN_TTL" default:"10m"`

	OpenAIBaseURL       string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey        string        `envconfig:"OPENAI_API_KEY" required:"true"`
	ChatModel           string        `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	TranscriptionModel  string        `envconfig:"TRANSCRIPTION_MODEL" default:"whisper-1"`
	OpenAIClientTimeout time.Duration `envconfig:"OPENAI_CLIENT_TIMEOUT" default:"120s"`
}

// Load reads configuration from the environment and fails on any
// missing required value. Callers must treat an error as fatal.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.EmbedTokenTTL <= 0 {
		return nil, errors.New("EMBED_TOKEN_TTL must be positive")
	}
	switch cfg.AuthMode {
	case "none":
	case "secret":
		if cfg.AuthSecret == "" {
			return nil, errors.New("AUTH_JWT_SECRET is required for secret auth mode")
		}
	case "jwks":
		if cfg.AuthJWKS == "" {
			return nil, errors.New("AUTH_JWKS_URL is required for jwks auth mode")
		}
	default:
		return nil, errors.New("invalid auth mode")
	}
	return &cfg, nil
}
