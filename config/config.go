package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de betdesk.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Feed    FeedConfig    `yaml:"feed"`
	Storage StorageConfig `yaml:"storage"`
	Review  ReviewConfig  `yaml:"review"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig contiene el base URL del backend de apuestas (cloud functions).
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// FeedConfig contiene el URL del stream de documentos en tiempo real.
type FeedConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig controla dónde se persiste el espejo local de apuestas.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ReviewConfig controla el comportamiento de la revisión de apuestas.
type ReviewConfig struct {
	DefaultAddedStake     float64 `yaml:"default_added_stake"`     // stake inicial de selecciones añadidas a mano
	ApproveTimeoutSeconds int     `yaml:"approve_timeout_seconds"` // corta un approve colgado
	EventIdentity         string  `yaml:"event_identity"`          // name_time | name_time_competition
	Currency              string  `yaml:"currency"`                // código ISO para el render (GBP, USD, EUR)
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ApproveTimeout devuelve el timeout de aprobación como time.Duration.
func (c *Config) ApproveTimeout() time.Duration {
	return time.Duration(c.Review.ApproveTimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:5001"
	}
	if cfg.Feed.URL == "" {
		cfg.Feed.URL = "ws://localhost:8090/stream"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "betdesk.db"
	}
	if cfg.Review.DefaultAddedStake <= 0 {
		cfg.Review.DefaultAddedStake = 10
	}
	if cfg.Review.ApproveTimeoutSeconds <= 0 {
		cfg.Review.ApproveTimeoutSeconds = 30
	}
	if cfg.Review.EventIdentity == "" {
		cfg.Review.EventIdentity = "name_time"
	}
	if cfg.Review.Currency == "" {
		cfg.Review.Currency = "GBP"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
