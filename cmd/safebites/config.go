// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pdiddy/safebites/internal/catalog"
	"github.com/pdiddy/safebites/internal/history"
	"github.com/pdiddy/safebites/internal/ocr"
	"github.com/pdiddy/safebites/internal/ocr/tesseract"
	"github.com/pdiddy/safebites/internal/secrets"
	"github.com/pdiddy/safebites/internal/session"
	"github.com/pdiddy/safebites/internal/verdict"
	"github.com/pdiddy/safebites/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables are honored even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", types.DefaultTimeout)
	v.SetDefault("http.user_agent", types.DefaultUserAgent)
	v.SetDefault("ocr.engine", string(types.EngineJaided))
	v.SetDefault("ocr.url", types.DefaultOCRURL)
	v.SetDefault("ocr.username", "")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.max_retries", 3)
	v.SetDefault("verdict.url", types.DefaultVerdictURL)
	v.SetDefault("catalog.path", "")
	v.SetDefault("matcher.quiet_period", types.DefaultQuietPeriod)
	v.SetDefault("matcher.max_results", types.DefaultMaxResults)
	v.SetDefault("session.path", "")
	v.SetDefault("session.backend_url", types.DefaultBackendURL)
	v.SetDefault("history.dir", defaultHistoryDir())
	v.SetDefault("history.max_results", types.DefaultHistoryResults)
	v.SetDefault("server.addr", types.DefaultServerAddr)
	v.SetDefault("server.dataset", "")
	v.SetDefault("server.db_path", "safebites.db")
	v.SetDefault("server.fuzzy_threshold", types.DefaultFuzzyThreshold)
}

func defaultHistoryDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "history"
	}
	return filepath.Join(dir, "safebites", "history")
}

// loadConfig decodes the merged flag, env, file, and default settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func httpClient(cfg types.Config) *http.Client {
	timeout := cfg.HTTP.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func sessionStore(cfg types.Config) (*session.Store, error) {
	path := cfg.Session.Path
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return session.NewStore(path), nil
}

func sessionClient(cfg types.Config) *session.Client {
	return &session.Client{
		HTTP:      httpClient(cfg),
		BaseURL:   cfg.Session.BackendURL,
		UserAgent: cfg.HTTP.UserAgent,
	}
}

func loadCatalog(cfg types.Config) (*catalog.Catalog, error) {
	return catalog.LoadOrDefault(cfg.Catalog.Path)
}

func newResolver(cfg types.Config) *verdict.Resolver {
	client := &verdict.Client{
		HTTP:      httpClient(cfg),
		URL:       cfg.Verdict.URL,
		UserAgent: cfg.HTTP.UserAgent,
	}
	return verdict.NewResolver(client, os.Stderr)
}

func newRecognizer(cfg types.Config) (ocr.Recognizer, error) {
	switch cfg.OCR.Engine {
	case types.EngineTesseract:
		return &tesseract.Recognizer{Language: cfg.OCR.Language}, nil
	case types.EngineJaided, "":
		c := &ocr.HostedClient{
			HTTP:       httpClient(cfg),
			URL:        cfg.OCR.URL,
			Username:   loadedSecrets.Get(secrets.OCRUsername, cfg.OCR.Username),
			APIKey:     loadedSecrets.Get(secrets.OCRAPIKey, cfg.OCR.APIKey),
			UserAgent:  cfg.HTTP.UserAgent,
			MaxRetries: cfg.OCR.MaxRetries,
		}
		if c.Username == "" || c.APIKey == "" {
			return nil, fmt.Errorf("OCR credentials missing: set ocr.username and ocr.api_key or add .secrets/%s and .secrets/%s",
				secrets.OCRUsername, secrets.OCRAPIKey)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q: use %s or %s", cfg.OCR.Engine, types.EngineJaided, types.EngineTesseract)
	}
}

// openHistory opens the history store. History is optional: failures are
// reported and a nil store is returned.
func openHistory(cfg types.Config, disabled bool) *history.Store {
	if disabled {
		return nil
	}
	s, err := history.NewStore(cfg.History)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		return nil
	}
	return s
}
