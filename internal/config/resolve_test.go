package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

// mockEnvFunc creates an EnvFunc backed by a map.
func mockEnvFunc(vars map[string]string) EnvFunc {
	return func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}
}

func noEnv(_ string) (string, bool) {
	return "", false
}

func TestResolve_OnlyDefaults(t *testing.T) {
	t.Parallel()
	rc, err := Resolve(NewDefaults(), nil, noEnv, nil)
	require.NoError(t, err)

	assert.Equal(t, NewDefaults(), rc.Config)
	for _, key := range []string{"backend.url", "backend.token", "form.locale", "benefit.months", "benefit.de_minimis_max"} {
		assert.Equal(t, SourceDefault, rc.Sources[key], key)
	}
}

func TestResolve_FileOverridesNonZero(t *testing.T) {
	t.Parallel()
	file := &Config{
		Backend: BackendConfig{URL: "https://api.example.fi", SkipUnchanged: true},
		Benefit: BenefitConfig{Months: 6},
	}

	rc, err := Resolve(NewDefaults(), file, noEnv, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.fi", rc.Config.Backend.URL)
	assert.True(t, rc.Config.Backend.SkipUnchanged)
	assert.Equal(t, 6, rc.Config.Benefit.Months)
	assert.Equal(t, "fi", rc.Config.Form.Locale, "zero file values keep defaults")

	assert.Equal(t, SourceFile, rc.Sources["backend.url"])
	assert.Equal(t, SourceFile, rc.Sources["backend.skip_unchanged"])
	assert.Equal(t, SourceDefault, rc.Sources["form.locale"])
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	t.Parallel()
	file := &Config{Backend: BackendConfig{URL: "https://file.example", Token: "file-token"}}
	env := mockEnvFunc(map[string]string{
		"HAKIJA_TOKEN":              "env-token",
		"HAKIJA_RATE_LIMIT":         "0.5",
		"HAKIJA_UPLOAD_CONCURRENCY": "1",
		"HAKIJA_SKIP_UNCHANGED":     "true",
		"HAKIJA_LOCALE":             "en",
		"HAKIJA_BENEFIT_MONTHS":     "3",
		"HAKIJA_DE_MINIMIS_MAX":     "100000",
	})

	rc, err := Resolve(NewDefaults(), file, env, nil)
	require.NoError(t, err)

	c := rc.Config
	assert.Equal(t, "https://file.example", c.Backend.URL)
	assert.Equal(t, "env-token", c.Backend.Token)
	assert.Equal(t, 0.5, c.Backend.RateLimit)
	assert.Equal(t, 1, c.Backend.UploadConcurrency)
	assert.True(t, c.Backend.SkipUnchanged)
	assert.Equal(t, "en", c.Form.Locale)
	assert.Equal(t, 3, c.Benefit.Months)
	assert.Equal(t, "100000", c.Benefit.DeMinimisMax)

	assert.Equal(t, SourceFile, rc.Sources["backend.url"])
	assert.Equal(t, SourceEnv, rc.Sources["backend.token"])
	assert.Equal(t, SourceEnv, rc.Sources["benefit.months"])
}

func TestResolve_CLIOverridesEverything(t *testing.T) {
	t.Parallel()
	file := &Config{Form: FormConfig{Locale: "sv"}}
	env := mockEnvFunc(map[string]string{"HAKIJA_LOCALE": "en", "HAKIJA_BACKEND_URL": "https://env.example"})

	rc, err := Resolve(NewDefaults(), file, env, &CLIOverrides{
		Locale:     stringPtr("fi"),
		BackendURL: stringPtr("https://cli.example"),
	})
	require.NoError(t, err)

	assert.Equal(t, "fi", rc.Config.Form.Locale)
	assert.Equal(t, "https://cli.example", rc.Config.Backend.URL)
	assert.Equal(t, SourceCLI, rc.Sources["form.locale"])
	assert.Equal(t, SourceCLI, rc.Sources["backend.url"])
}

func TestResolve_InvalidEnvValues(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"HAKIJA_RATE_LIMIT":         "fast",
		"HAKIJA_UPLOAD_CONCURRENCY": "many",
		"HAKIJA_SKIP_UNCHANGED":     "perhaps",
		"HAKIJA_BENEFIT_MONTHS":     "a year",
	}
	for key, val := range tests {
		key, val := key, val
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			_, err := Resolve(NewDefaults(), nil, mockEnvFunc(map[string]string{key: val}), nil)
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestResolve_NilInputs(t *testing.T) {
	t.Parallel()
	rc, err := Resolve(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, rc.Config)
}
