// Package nrwe holds the shared configuration for the NRWE
// court-decision scraper pipeline.
package nrwe

import (
	"os"
	"path/filepath"

	"nrwe-scraper/lib/configutil"
)

type BrowserConfig struct {
	// Bin overrides the chrome binary used by the search scraper.
	Bin string `json:"bin"`
	// RemoteUrl is the websocket url of an external chrome instance.
	// Empty launches a local one.
	RemoteUrl string `json:"remote_url"`
	Headful   bool   `json:"headful"`
}

type Config struct {
	BaseUrl     string        `json:"base_url"`
	DataDir     string        `json:"data_dir"`
	Concurrency int           `json:"concurrency"`
	PageDelayMs int           `json:"page_delay_ms"`
	Browser     BrowserConfig `json:"browser"`
}

func DefaultConfig() Config {
	return Config{
		BaseUrl:     "https://www.justiz.nrw/BS/nrwe2/index.php",
		DataDir:     "data",
		Concurrency: 4,
		PageDelayMs: 1000,
	}
}

// LoadConfig reads the pipeline config, falling back to DefaultConfig
// when no file exists. Unset fields take their default value.
func LoadConfig(name string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](name)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}

	defaults := DefaultConfig()
	if cfg.BaseUrl == "" {
		cfg.BaseUrl = defaults.BaseUrl
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.PageDelayMs <= 0 {
		cfg.PageDelayMs = defaults.PageDelayMs
	}
	return cfg, nil
}

// DocsDir is where downloaded case documents live, mirroring url paths.
func (c Config) DocsDir() string {
	return filepath.Join(c.DataDir, "docs")
}

// StorePath is the sqlite database holding scraped case links.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "cases.db")
}

// ParsedPath is the output JSON Lines file of parsed records.
func (c Config) ParsedPath() string {
	return filepath.Join(c.DataDir, "parsed_docs.jsonl")
}
