package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	HTTPPort    string `env:"HTTP-PORT" ini:"http_port"`
	CatalogPath string `env:"CATALOG-PATH" ini:"catalog_path"`
	ModelsPath  string `env:"MODELS-PATH" ini:"models_path"`

	MaxCandidates     int `ini:"max_candidates"`
	RankerTokenBudget int `ini:"ranker_token_budget"`
	MaxExchanges      int `ini:"max_exchanges"`
	EmbedWorkers      int `ini:"embed_workers"`
	CallTimeoutSec    int `ini:"call_timeout_sec"`
}

// Defaults fills zero values with working defaults.
func (c *AppConfig) Defaults() {
	if c.HTTPPort == "" {
		c.HTTPPort = ":8081"
	}
	if c.CatalogPath == "" {
		c.CatalogPath = "data/offers.json"
	}
	if c.MaxCandidates == 0 {
		c.MaxCandidates = 8
	}
	if c.RankerTokenBudget == 0 {
		c.RankerTokenBudget = 6000
	}
	if c.MaxExchanges == 0 {
		c.MaxExchanges = 20
	}
	if c.EmbedWorkers == 0 {
		c.EmbedWorkers = 4
	}
	if c.CallTimeoutSec == 0 {
		c.CallTimeoutSec = 60
	}
}
