// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. A timeout is a resolution failure
	// like any other transport error.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "safebites/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// OCREngine selects the optical-recognition backend.
type OCREngine string

const (
	EngineJaided    OCREngine = "jaided"
	EngineTesseract OCREngine = "tesseract"
)

// OCRConfig holds settings for the optical-recognition boundary.
type OCRConfig struct {
	// Engine is jaided (hosted) or tesseract (local).
	Engine OCREngine `json:"engine" yaml:"engine" mapstructure:"engine"`

	// URL is the hosted provider endpoint.
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Username and APIKey are the static provider credentials. When empty
	// they are read from .secrets/ocr-username and .secrets/ocr-api-key.
	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Language is the Tesseract language code (default "eng").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// MaxRetries bounds retries on HTTP 429 from the hosted provider.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// VerdictConfig holds settings for the allergy-check service client.
type VerdictConfig struct {
	// URL is the full scanproduct endpoint.
	URL string `json:"url" yaml:"url" mapstructure:"url"`
}

// CatalogConfig locates the static product catalog.
type CatalogConfig struct {
	// Path is a YAML or JSON file holding a list of {id, name}.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// MatcherConfig holds settings for incremental search.
type MatcherConfig struct {
	// QuietPeriod is the debounce interval (default 300ms).
	QuietPeriod time.Duration `json:"quiet_period" yaml:"quiet_period" mapstructure:"quiet_period"`

	// MaxResults caps committed results (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// SessionConfig locates the local session record.
type SessionConfig struct {
	// Path is the session file (default ~/.config/safebites/session.json).
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// BackendURL is the base URL of the service handling /login and /register.
	BackendURL string `json:"backend_url" yaml:"backend_url" mapstructure:"backend_url"`
}

// HistoryConfig holds settings for the local verdict history.
type HistoryConfig struct {
	// Dir holds history.db and exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default number of entries returned (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig holds settings for the reference allergy-check service.
type ServerConfig struct {
	Addr    string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Dataset string `json:"dataset" yaml:"dataset" mapstructure:"dataset"`
	DBPath  string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// FuzzyThreshold is the minimum similarity (exclusive, 0..100) for a
	// fuzzy product match (default 50).
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// Config groups all component configurations.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	OCR     OCRConfig     `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Verdict VerdictConfig `json:"verdict" yaml:"verdict" mapstructure:"verdict"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Matcher MatcherConfig `json:"matcher" yaml:"matcher" mapstructure:"matcher"`
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
}

// Defaults used when configuration leaves a value unset.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultUserAgent      = "safebites/0.1"
	DefaultOCRURL         = "https://jaided.ai/api/ocr"
	DefaultVerdictURL     = "http://localhost:7000/scanproduct"
	DefaultBackendURL     = "http://localhost:7000"
	DefaultQuietPeriod    = 300 * time.Millisecond
	DefaultMaxResults     = 5
	DefaultHistoryResults = 20
	DefaultServerAddr     = ":7000"
	DefaultFuzzyThreshold = 50
)
