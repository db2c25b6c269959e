package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/config"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/draft"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

var draftShowJSON bool

// draftCmd groups the commands acting on stored applications.
var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect and delete saved applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// draftShowCmd implements "hakija draft show ID".
var draftShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftShow,
}

// draftDeleteCmd implements "hakija draft delete ID".
var draftDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a draft application",
	Long:  "Delete a draft. Applications that were already sent cannot be deleted.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftDelete,
}

func init() {
	draftShowCmd.Flags().BoolVar(&draftShowJSON, "json", false, "Output the application as JSON")
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftDeleteCmd)
	rootCmd.AddCommand(draftCmd)
}

func newAdapter() (*draft.Adapter, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return draft.NewAdapter(client, application.NewCodec()), cfg, nil
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	a, cfg, err := newAdapter()
	if err != nil {
		return err
	}
	max, err := cfg.Benefit.DeMinimisMaxAmount()
	if err != nil {
		return err
	}
	values, err := a.Load(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	app, err := application.FromValues(application.NewCodec(), values)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if draftShowJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(app)
	}
	printApplication(out, app, values, max)
	return nil
}

func runDraftDelete(cmd *cobra.Command, args []string) error {
	a, _, err := newAdapter()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	if _, err := a.Load(ctx, args[0]); err != nil {
		return err
	}
	if err := a.Delete(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %s\n", args[0])
	return nil
}

// printApplication writes a plain-text summary of app.
func printApplication(out io.Writer, app application.Application, values form.Values, max decimal.Decimal) {
	fmt.Fprintln(out, styleHeader.Render("Application "+app.ID))
	printLine(out, "status", string(app.Status))
	if app.ApplicationNumber != 0 {
		printLine(out, "number", fmt.Sprint(app.ApplicationNumber))
	}
	printLine(out, "company", strings.TrimSpace(app.CompanyName+" "+app.CompanyBusinessID))
	printLine(out, "employee", strings.TrimSpace(app.Employee.FirstName+" "+app.Employee.LastName))
	printLine(out, "benefit type", app.BenefitType)
	if app.StartDate != "" || app.EndDate != "" {
		printLine(out, "period", app.StartDate+" - "+app.EndDate)
	}

	if aids, err := application.AidListFromValues(values, max); err == nil && aids.Len() > 0 {
		printLine(out, "de minimis", fmt.Sprintf("%d grant(s), total %s", aids.Len(), aids.Total().StringFixed(2)))
	}

	have := make(map[application.AttachmentType]bool, len(app.Attachments))
	for _, att := range app.Attachments {
		have[att.AttachmentType] = true
		printLine(out, "attachment", fmt.Sprintf("%s (%s)", att.FileName, att.AttachmentType))
	}
	apprenticeship, _ := values["apprenticeshipProgram"].(bool)
	var missing []string
	for _, t := range application.RequiredAttachments(app.PaySubsidyGranted, apprenticeship) {
		if !have[t] {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Missing attachments: ")+strings.Join(missing, ", "))
	}
}

func printLine(out io.Writer, name, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(out, "  %-*s %s\n", 14, name+":", value)
}
