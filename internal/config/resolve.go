package config

import (
	"fmt"
	"strconv"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the hakija.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the merged configuration with source tracking.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is the dotted path, e.g. "backend.url"
	Path    string                  // config file used, empty if none
}

// CLIOverrides captures flag values that override configuration. A nil
// pointer means the flag was not given.
type CLIOverrides struct {
	BackendURL *string
	Locale     *string
}

// EnvFunc looks up environment variables; os.LookupEnv in production.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// fileConfig is nil when no hakija.toml was found. An environment variable
// that does not parse as its key's type is an error.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) (*ResolvedConfig, error) {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	resolveDefaults(rc, defaults)
	if fileConfig != nil {
		resolveFile(rc, fileConfig)
	}
	if err := resolveFromEnv(rc, envFn); err != nil {
		return nil, err
	}
	resolveFromCLI(rc, overrides)
	return rc, nil
}

// --- Layer 1: Defaults ---

func resolveDefaults(rc *ResolvedConfig, d *Config) {
	b, f, n := &rc.Config.Backend, &rc.Config.Form, &rc.Config.Benefit
	src := rc.Sources

	setValue(&b.URL, d.Backend.URL, "backend.url", SourceDefault, src)
	setValue(&b.Token, d.Backend.Token, "backend.token", SourceDefault, src)
	setValue(&b.Language, d.Backend.Language, "backend.language", SourceDefault, src)
	setValue(&b.RateLimit, d.Backend.RateLimit, "backend.rate_limit", SourceDefault, src)
	setValue(&b.Burst, d.Backend.Burst, "backend.burst", SourceDefault, src)
	setValue(&b.UploadConcurrency, d.Backend.UploadConcurrency, "backend.upload_concurrency", SourceDefault, src)
	setValue(&b.SkipUnchanged, d.Backend.SkipUnchanged, "backend.skip_unchanged", SourceDefault, src)
	setValue(&b.LoginPath, d.Backend.LoginPath, "backend.login_path", SourceDefault, src)

	setValue(&f.Locale, d.Form.Locale, "form.locale", SourceDefault, src)
	setValue(&f.CatalogDir, d.Form.CatalogDir, "form.catalog_dir", SourceDefault, src)

	setValue(&n.Months, d.Benefit.Months, "benefit.months", SourceDefault, src)
	setValue(&n.DeMinimisMax, d.Benefit.DeMinimisMax, "benefit.de_minimis_max", SourceDefault, src)
}

// --- Layer 2: File ---

// resolveFile merges non-zero file values. A zero value in the file means
// "not set", so booleans can only be switched on from the file.
func resolveFile(rc *ResolvedConfig, file *Config) {
	b, f, n := &rc.Config.Backend, &rc.Config.Form, &rc.Config.Benefit
	src := rc.Sources

	mergeValue(&b.URL, file.Backend.URL, "backend.url", src)
	mergeValue(&b.Token, file.Backend.Token, "backend.token", src)
	mergeValue(&b.Language, file.Backend.Language, "backend.language", src)
	mergeValue(&b.RateLimit, file.Backend.RateLimit, "backend.rate_limit", src)
	mergeValue(&b.Burst, file.Backend.Burst, "backend.burst", src)
	mergeValue(&b.UploadConcurrency, file.Backend.UploadConcurrency, "backend.upload_concurrency", src)
	mergeValue(&b.SkipUnchanged, file.Backend.SkipUnchanged, "backend.skip_unchanged", src)
	mergeValue(&b.LoginPath, file.Backend.LoginPath, "backend.login_path", src)

	mergeValue(&f.Locale, file.Form.Locale, "form.locale", src)
	mergeValue(&f.CatalogDir, file.Form.CatalogDir, "form.catalog_dir", src)

	mergeValue(&n.Months, file.Benefit.Months, "benefit.months", src)
	mergeValue(&n.DeMinimisMax, file.Benefit.DeMinimisMax, "benefit.de_minimis_max", src)
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	HAKIJA_BACKEND_URL         -> backend.url
//	HAKIJA_TOKEN               -> backend.token
//	HAKIJA_BACKEND_LANGUAGE    -> backend.language
//	HAKIJA_RATE_LIMIT          -> backend.rate_limit
//	HAKIJA_UPLOAD_CONCURRENCY  -> backend.upload_concurrency
//	HAKIJA_SKIP_UNCHANGED      -> backend.skip_unchanged
//	HAKIJA_LOCALE              -> form.locale
//	HAKIJA_CATALOG_DIR         -> form.catalog_dir
//	HAKIJA_BENEFIT_MONTHS      -> benefit.months
//	HAKIJA_DE_MINIMIS_MAX      -> benefit.de_minimis_max
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) error {
	b, f, n := &rc.Config.Backend, &rc.Config.Form, &rc.Config.Benefit
	src := rc.Sources

	envString(envFn, "HAKIJA_BACKEND_URL", &b.URL, "backend.url", src)
	envString(envFn, "HAKIJA_TOKEN", &b.Token, "backend.token", src)
	envString(envFn, "HAKIJA_BACKEND_LANGUAGE", &b.Language, "backend.language", src)
	envString(envFn, "HAKIJA_LOCALE", &f.Locale, "form.locale", src)
	envString(envFn, "HAKIJA_CATALOG_DIR", &f.CatalogDir, "form.catalog_dir", src)
	envString(envFn, "HAKIJA_DE_MINIMIS_MAX", &n.DeMinimisMax, "benefit.de_minimis_max", src)

	if val, ok := envFn("HAKIJA_RATE_LIMIT"); ok {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("config: HAKIJA_RATE_LIMIT: %w", err)
		}
		b.RateLimit = rps
		src["backend.rate_limit"] = SourceEnv
	}
	if val, ok := envFn("HAKIJA_UPLOAD_CONCURRENCY"); ok {
		c, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("config: HAKIJA_UPLOAD_CONCURRENCY: %w", err)
		}
		b.UploadConcurrency = c
		src["backend.upload_concurrency"] = SourceEnv
	}
	if val, ok := envFn("HAKIJA_SKIP_UNCHANGED"); ok {
		skip, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("config: HAKIJA_SKIP_UNCHANGED: %w", err)
		}
		b.SkipUnchanged = skip
		src["backend.skip_unchanged"] = SourceEnv
	}
	if val, ok := envFn("HAKIJA_BENEFIT_MONTHS"); ok {
		m, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("config: HAKIJA_BENEFIT_MONTHS: %w", err)
		}
		n.Months = m
		src["benefit.months"] = SourceEnv
	}
	return nil
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, overrides *CLIOverrides) {
	if overrides.BackendURL != nil {
		rc.Config.Backend.URL = *overrides.BackendURL
		rc.Sources["backend.url"] = SourceCLI
	}
	if overrides.Locale != nil {
		rc.Config.Form.Locale = *overrides.Locale
		rc.Sources["form.locale"] = SourceCLI
	}
}

// --- Helpers ---

// setValue unconditionally sets target and records the source.
func setValue[T any](target *T, value T, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeValue overwrites target only when value is non-zero.
func mergeValue[T comparable](target *T, value T, path string, sources map[string]ConfigSource) {
	var zero T
	if value != zero {
		*target = value
		sources[path] = SourceFile
	}
}

func envString(envFn EnvFunc, key string, target *string, path string, sources map[string]ConfigSource) {
	if val, ok := envFn(key); ok {
		*target = val
		sources[path] = SourceEnv
	}
}
