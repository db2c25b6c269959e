package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/auth"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/flow"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/tui"
)

var (
	applyDraftID string
	applyStep    string
)

// runWizard runs the interactive wizard over a mounted form. Tests replace it.
var runWizard = tui.RunTUI

// applyCmd implements "hakija apply".
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Fill in a benefit application",
	Long: `Open the application wizard. Without --draft a new application is started;
it is saved as a draft when the first step is completed.

Each step is validated before it is saved. The last step sends the
application for handling.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyDraftID, "draft", "", "Continue the draft with this id")
	applyCmd.Flags().StringVar(&applyStep, "step", "", "Open the wizard at this step (name or index)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	logger := logging.New("apply")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	session, err := auth.NewProvider(cfg.Backend.Token, client).Session(ctx)
	switch {
	case errors.Is(err, auth.ErrNoToken):
		return fmt.Errorf("not signed in: sign in at %s and set HAKIJA_TOKEN", loginURL(cfg))
	case err != nil:
		return err
	case !session.Authenticated:
		return fmt.Errorf("session expired: sign in again at %s", loginURL(cfg))
	}
	logger.Debug("signed in", "name", session.DisplayName, "organization", session.Organization)

	tr, err := newTranslator(cfg)
	if err != nil {
		return err
	}
	steps, err := application.Steps()
	if err != nil {
		return err
	}
	opts, err := flowOptions(cfg)
	if err != nil {
		return err
	}
	if applyStep != "" {
		idx, err := resolveStep(steps, applyStep)
		if err != nil {
			return err
		}
		opts = append(opts, flow.WithInitialStep(idx))
	}

	completed := false
	opts = append(opts, flow.WithCompletion(func(context.Context, form.Values) error {
		completed = true
		return nil
	}))

	f, err := flow.New(flow.Deps{API: client, Translator: tr, Steps: steps}, opts...)
	if err != nil {
		return err
	}
	if err := f.Mount(ctx, applyDraftID); err != nil {
		return fmt.Errorf("opening draft %s: %w", applyDraftID, err)
	}
	defer f.Unmount()

	err = runWizard(ctx, f, tui.AppConfig{
		Version:    buildinfo.GetInfo().Version,
		Translator: tr,
	})
	switch {
	case errors.Is(err, flow.ErrRedirected):
		return fmt.Errorf("%w: sign in again at %s", err, loginURL(cfg))
	case errors.Is(err, flow.ErrInvalid), errors.Is(err, flow.ErrBlocked):
		// The user left with the current step unfinished.
	case err != nil:
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case completed:
		fmt.Fprintln(out, tr.T("wizard.submitted", nil))
	case f.DraftID() != "":
		fmt.Fprintf(out, "%s: %s\n", tr.T("wizard.saved", nil), f.DraftID())
	}
	return nil
}

// resolveStep accepts a step name or a zero-based index.
func resolveStep(steps []application.StepSpec, s string) (int, error) {
	if idx := application.StepIndex(steps, s); idx >= 0 {
		return idx, nil
	}
	if idx, err := strconv.Atoi(s); err == nil && idx >= 0 && idx < len(steps) {
		return idx, nil
	}
	names := make([]string, len(steps))
	for i, st := range steps {
		names[i] = st.Step.Name
	}
	return 0, fmt.Errorf("unknown step %q (one of %v)", s, names)
}
