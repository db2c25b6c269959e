package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
	flagLocale  string
	flagAPIURL  string
)

// rootCmd is the base command for hakija.
var rootCmd = &cobra.Command{
	Use:   "hakija",
	Short: "Employer benefit application client",
	Long: `hakija fills in, saves and sends employer benefit applications.

The application is a multi-step wizard: each step is validated before it is
saved as a draft, and the last step sends the application for handling.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: persistentPreRun,
}

func persistentPreRun(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("verbose") && os.Getenv("HAKIJA_VERBOSE") != "" {
		flagVerbose = true
	}
	if !cmd.Flags().Changed("quiet") && os.Getenv("HAKIJA_QUIET") != "" {
		flagQuiet = true
	}
	if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("HAKIJA_NO_COLOR") != "") {
		flagNoColor = true
	}

	logging.Setup(logging.Options{
		Verbose: flagVerbose,
		Quiet:   flagQuiet,
		Format:  logging.FormatFromEnv(os.LookupEnv),
	})

	if flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

func registerPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: HAKIJA_VERBOSE)")
	f.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: HAKIJA_QUIET)")
	f.StringVar(&flagConfig, "config", "", "Path to hakija.toml config file")
	f.BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: HAKIJA_NO_COLOR, NO_COLOR)")
	f.StringVar(&flagLocale, "locale", "", "Interface language: fi, sv or en (env: HAKIJA_LOCALE)")
	f.StringVar(&flagAPIURL, "api-url", "", "Backend base url (env: HAKIJA_BACKEND_URL)")
}

func init() {
	registerPersistentFlags(rootCmd)
}

// Execute runs the root command and returns the exit code. An interrupt
// cancels the command's context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd returns a fresh command tree with the same flags and
// subcommands, for the completion generator.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	rootCmd.PersistentFlags().VisitAll(func(fl *pflag.Flag) {
		cmd.PersistentFlags().AddFlag(fl)
	})
	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}

// commandContext returns the context cobra was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
