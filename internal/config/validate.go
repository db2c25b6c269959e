package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError marks a configuration hakija cannot run with.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning marks a configuration that works but is probably wrong.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g. "backend.url"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors()) > 0
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings()) > 0
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	return vr.bySeverity(SeverityError)
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	return vr.bySeverity(SeverityWarning)
}

func (vr *ValidationResult) bySeverity(s ValidationSeverity) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

// supportedLocales is the set of valid values for form.locale and
// backend.language.
var supportedLocales = map[string]bool{
	"fi": true,
	"sv": true,
	"en": true,
}

// Validate checks cfg and, when meta is non-nil, reports keys of the file
// that did not map to any field. Check HasErrors to decide whether the
// configuration is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateBackend(vr, &cfg.Backend)
	validateForm(vr, &cfg.Form)
	validateBenefit(vr, &cfg.Benefit)
	validateUnknownKeys(vr, meta)

	return vr
}

func validateBackend(vr *ValidationResult, b *BackendConfig) {
	if b.URL == "" {
		addError(vr, "backend.url", "must not be empty")
	} else if u, err := url.Parse(b.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		addError(vr, "backend.url", fmt.Sprintf("%q is not an http or https url", b.URL))
	}

	if b.Language != "" && !supportedLocales[b.Language] {
		addError(vr, "backend.language",
			fmt.Sprintf("unsupported language %q; must be one of: fi, sv, en", b.Language))
	}
	if b.RateLimit < 0 {
		addError(vr, "backend.rate_limit", "must not be negative")
	}
	if b.Burst < 0 {
		addError(vr, "backend.burst", "must not be negative")
	}
	if b.UploadConcurrency < 0 {
		addError(vr, "backend.upload_concurrency", "must not be negative")
	}
	if b.LoginPath != "" && !strings.HasPrefix(b.LoginPath, "/") {
		addError(vr, "backend.login_path", "must start with /")
	}

	if b.Token == "" {
		addWarning(vr, "backend.token", "no token configured; authenticated commands will fail")
	}
	if b.RateLimit == 0 {
		addWarning(vr, "backend.rate_limit", "request pacing is disabled")
	}
}

func validateForm(vr *ValidationResult, f *FormConfig) {
	if !supportedLocales[baseLocale(f.Locale)] {
		addError(vr, "form.locale",
			fmt.Sprintf("unsupported locale %q; must be one of: fi, sv, en", f.Locale))
	}
	if f.CatalogDir != "" {
		if _, err := os.Stat(f.CatalogDir); err != nil {
			addWarning(vr, "form.catalog_dir",
				fmt.Sprintf("directory %q does not exist", f.CatalogDir))
		}
	}
}

func validateBenefit(vr *ValidationResult, b *BenefitConfig) {
	if b.Months < 1 || b.Months > 24 {
		addError(vr, "benefit.months", fmt.Sprintf("must be between 1 and 24, got %d", b.Months))
	}
	max, err := b.DeMinimisMaxAmount()
	switch {
	case err != nil:
		addError(vr, "benefit.de_minimis_max", fmt.Sprintf("%q is not a decimal amount", b.DeMinimisMax))
	case !max.IsPositive():
		addError(vr, "benefit.de_minimis_max", "must be positive")
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}
	for _, key := range meta.Undecoded() {
		addWarning(vr, strings.Join(key, "."), "unknown configuration key")
	}
}

// baseLocale strips a region: "sv-FI" -> "sv".
func baseLocale(l string) string {
	if i := strings.IndexAny(l, "-_"); i > 0 {
		return strings.ToLower(l[:i])
	}
	return strings.ToLower(l)
}

func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityError, Field: field, Message: message})
}

func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Severity: SeverityWarning, Field: field, Message: message})
}
