package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Config is the top-level configuration structure mapping to hakija.toml.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Form    FormConfig    `toml:"form"`
	Benefit BenefitConfig `toml:"benefit"`
}

// BackendConfig maps to the [backend] section in hakija.toml.
type BackendConfig struct {
	URL               string  `toml:"url"`
	Token             string  `toml:"token"`
	Language          string  `toml:"language"`
	RateLimit         float64 `toml:"rate_limit"`
	Burst             int     `toml:"burst"`
	UploadConcurrency int     `toml:"upload_concurrency"`
	SkipUnchanged     bool    `toml:"skip_unchanged"`
	LoginPath         string  `toml:"login_path"`
}

// FormConfig maps to the [form] section in hakija.toml.
type FormConfig struct {
	// Locale is the interface language: fi, sv or en.
	Locale string `toml:"locale"`
	// CatalogDir holds YAML translation overrides laid out as <locale>/*.yaml.
	CatalogDir string `toml:"catalog_dir"`
}

// BenefitConfig maps to the [benefit] section in hakija.toml.
type BenefitConfig struct {
	// Months is the default benefit period length.
	Months int `toml:"months"`
	// DeMinimisMax is the de minimis ceiling in euros, as a decimal string.
	DeMinimisMax string `toml:"de_minimis_max"`
}

// DeMinimisMaxAmount parses DeMinimisMax.
func (b BenefitConfig) DeMinimisMaxAmount() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(b.DeMinimisMax)
	if err != nil {
		return decimal.Zero, fmt.Errorf("benefit.de_minimis_max %q: %w", b.DeMinimisMax, err)
	}
	return d, nil
}
