package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

var (
	deMinimisMax  string
	deMinimisWire bool
)

// deMinimisCmd groups the de minimis aid commands.
var deMinimisCmd = &cobra.Command{
	Use:   "deminimis",
	Short: "De minimis aid tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// deMinimisCheckCmd implements "hakija deminimis check FILE".
var deMinimisCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Sum the de minimis grants of an application",
	Long: `Read the deMinimisAidSet list of a YAML or JSON values file and compare its
total against the de minimis ceiling. Exits with an error when the total is
over the ceiling, since such an application cannot be granted.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeMinimisCheck,
}

func init() {
	deMinimisCheckCmd.Flags().StringVar(&deMinimisMax, "max", "", "Override the de minimis ceiling in euros")
	deMinimisCheckCmd.Flags().BoolVar(&deMinimisWire, "wire", false, "The file uses backend field names and formats")
	deMinimisCmd.AddCommand(deMinimisCheckCmd)
	rootCmd.AddCommand(deMinimisCmd)
}

func runDeMinimisCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	max, err := cfg.Benefit.DeMinimisMaxAmount()
	if err != nil {
		return err
	}
	if deMinimisMax != "" {
		if max, err = decimal.NewFromString(deMinimisMax); err != nil {
			return fmt.Errorf("--max %q: %w", deMinimisMax, err)
		}
	}

	values, err := readValuesFile(args[0], cmd.InOrStdin(), deMinimisWire)
	if err != nil {
		return err
	}
	aids, err := application.AidListFromValues(values, max)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, g := range aids.Grants() {
		fmt.Fprintf(out, "  %-30s %12s  %s\n", g.Granter, g.Amount.StringFixed(2), g.GrantedAt)
	}
	fmt.Fprintf(out, "Total %s of %s (%d grant(s))\n", aids.Total().StringFixed(2), max.StringFixed(2), aids.Len())

	if aids.Exceeded() {
		tr, err := newTranslator(cfg)
		if err != nil {
			return err
		}
		vars := map[string]string{"max": form.FormatNumber(max.InexactFloat64())}
		fmt.Fprintln(out, styleErrorLbl.Render(tr.T("deMinimis.maxExceeded", vars)))
		return fmt.Errorf("de minimis total %s exceeds %s", aids.Total().StringFixed(2), max.StringFixed(2))
	}
	fmt.Fprintln(out, styleSuccess.Render("Within the ceiling."))
	return nil
}
