package config

import (
	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/notify"
)

// NewDefaults returns a Config populated with all default values.
func NewDefaults() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:               "http://localhost:8000",
			Language:          "fi",
			RateLimit:         5,
			Burst:             2,
			UploadConcurrency: 3,
			LoginPath:         notify.DefaultLoginPath,
		},
		Form: FormConfig{
			Locale: "fi",
		},
		Benefit: BenefitConfig{
			Months:       application.DefaultBenefitMonths,
			DeMinimisMax: application.DefaultDeMinimisMax.String(),
		},
	}
}
