package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/flow"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/tui"
)

// stubWizard replaces the interactive wizard for the duration of a test.
func stubWizard(t *testing.T, fn func(ctx context.Context, f *flow.Form, cfg tui.AppConfig) error) {
	t.Helper()
	old := runWizard
	runWizard = fn
	t.Cleanup(func() { runWizard = old })
}

func TestApplyCmd_NoToken(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	_, srv := newFakeBackend(t)
	stubWizard(t, func(context.Context, *flow.Form, tui.AppConfig) error {
		t.Fatal("wizard must not start without a token")
		return nil
	})

	_, stderr, code := captureOutput(t, "--api-url", srv.URL, "apply")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not signed in")
	assert.Contains(t, stderr, srv.URL+"/login")
}

func TestApplyCmd_RejectedToken(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	fb, srv := newFakeBackend(t)
	fb.user = http.StatusUnauthorized
	t.Setenv("HAKIJA_TOKEN", "expired")

	_, stderr, code := captureOutput(t, "--api-url", srv.URL, "apply")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "session expired")
}

func TestApplyCmd_ContinuesDraft(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	fb, srv := newFakeBackend(t)
	fb.put("app-1", map[string]any{"status": "draft", "company_name": "Oy Testi Ab", "start_date": "2024-03-01"})
	t.Setenv("HAKIJA_TOKEN", "valid")

	var seen bool
	stubWizard(t, func(_ context.Context, f *flow.Form, cfg tui.AppConfig) error {
		seen = true
		assert.Equal(t, "app-1", f.DraftID())
		assert.Equal(t, "hiring", f.Controller().Active().Name)
		v, _ := f.State().Value(form.P("companyName"))
		assert.Equal(t, "Oy Testi Ab", v)
		v, _ = f.State().Value(form.P("startDate"))
		assert.Equal(t, "1.3.2024", v)
		assert.NotNil(t, cfg.Translator)
		return nil
	})

	stdout, stderr, code := captureOutput(t, "--api-url", srv.URL, "--locale", "en", "apply", "--draft", "app-1", "--step", "hiring")

	require.Equal(t, 0, code, stderr)
	assert.True(t, seen)
	assert.Contains(t, stdout, "Draft saved: app-1")
}

func TestApplyCmd_UnfinishedStepIsNotAnError(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	_, srv := newFakeBackend(t)
	t.Setenv("HAKIJA_TOKEN", "valid")
	stubWizard(t, func(context.Context, *flow.Form, tui.AppConfig) error {
		return fmt.Errorf("submit: %w", flow.ErrInvalid)
	})

	_, stderr, code := captureOutput(t, "--api-url", srv.URL, "apply")

	assert.Equal(t, 0, code, stderr)
}

func TestApplyCmd_Redirected(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	_, srv := newFakeBackend(t)
	t.Setenv("HAKIJA_TOKEN", "valid")
	stubWizard(t, func(context.Context, *flow.Form, tui.AppConfig) error {
		return fmt.Errorf("session expired: %w", flow.ErrRedirected)
	})

	_, stderr, code := captureOutput(t, "--api-url", srv.URL, "apply")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "sign in again at "+srv.URL+"/login")
}

func TestApplyCmd_MissingDraft(t *testing.T) {
	resetRootCmd(t)
	inTempDir(t)
	_, srv := newFakeBackend(t)
	t.Setenv("HAKIJA_TOKEN", "valid")

	_, stderr, code := captureOutput(t, "--api-url", srv.URL, "apply", "--draft", "nope")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "opening draft nope")
}

func TestResolveStep(t *testing.T) {
	steps, err := application.Steps()
	require.NoError(t, err)

	idx, err := resolveStep(steps, "attachments")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = resolveStep(steps, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	for _, bad := range []string{"9", "-1", "payment"} {
		_, err = resolveStep(steps, bad)
		assert.Error(t, err, bad)
	}
	assert.False(t, errors.Is(err, flow.ErrInvalid))
}
