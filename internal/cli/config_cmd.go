package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/config"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
)

// configCmd is the parent "config" namespace command. It groups the debug
// and validate subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Inspect and validate the hakija configuration.",
	// RunE shows help when invoked with no subcommand.
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configDebugCmd implements "hakija config debug".
// It prints the fully-resolved configuration with source annotations.
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration with source annotations",
	Long: `Display the fully-resolved configuration showing each value and
the source where it came from (cli flag, environment variable, config file, or default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadAndResolveConfig()
		if err != nil {
			return err
		}
		printResolvedConfig(cmd, resolved)
		return nil
	},
}

// configValidateCmd implements "hakija config validate".
// It validates the resolved configuration and reports all errors and warnings.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and report issues",
	Long:  "Check the configuration for errors and warnings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadAndResolveConfig()
		if err != nil {
			return err
		}
		result := config.Validate(resolved.Config, meta)
		printValidationResult(cmd, result)
		if result.HasErrors() {
			return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDebugCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

// loadAndResolveConfig loads and resolves the configuration from all sources
// (file, env, CLI flags). It returns the resolved config, the TOML metadata
// (nil when no file was found), and any loading error.
//
// When flagConfig is set, that path is used directly. Otherwise,
// config.FindConfigFile searches upward from the current directory.
func loadAndResolveConfig() (*config.ResolvedConfig, *toml.MetaData, error) {
	cfgPath := flagConfig
	if cfgPath == "" {
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, nil, fmt.Errorf("finding config file: %w", err)
		}
		cfgPath = found
	}

	var (
		fileCfg *config.Config
		meta    *toml.MetaData
	)
	if cfgPath != "" {
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		fileCfg = fc
		meta = &md
	}

	resolved, err := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, cliOverrides())
	if err != nil {
		return nil, nil, fmt.Errorf("resolving config: %w", err)
	}
	resolved.Path = cfgPath
	return resolved, meta, nil
}

// loadConfig resolves the configuration and fails on validation errors.
// Warnings are logged.
func loadConfig() (*config.Config, error) {
	resolved, meta, err := loadAndResolveConfig()
	if err != nil {
		return nil, err
	}
	result := config.Validate(resolved.Config, meta)
	logger := logging.New("config")
	for _, w := range result.Warnings() {
		logger.Warn("config", "field", w.Field, "message", w.Message)
	}
	if result.HasErrors() {
		first := result.Errors()[0]
		return nil, fmt.Errorf("invalid configuration: %s: %s (run \"hakija config validate\")", first.Field, first.Message)
	}
	return resolved.Config, nil
}

// cliOverrides returns the persistent flags that override configuration.
func cliOverrides() *config.CLIOverrides {
	o := &config.CLIOverrides{}
	if flagAPIURL != "" {
		u := flagAPIURL
		o.BackendURL = &u
	}
	if flagLocale != "" {
		l := flagLocale
		o.Locale = &l
	}
	return o
}

// ---- Lipgloss styles --------------------------------------------------------

// sourceStyle returns a lipgloss style for a given ConfigSource.
// When --no-color is active, lipgloss automatically strips ANSI because
// the root PersistentPreRunE sets the color profile to Ascii.
func sourceStyle(src config.ConfigSource) lipgloss.Style {
	switch src {
	case config.SourceFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // bright blue
	case config.SourceEnv:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // bright yellow
	case config.SourceCLI:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // bright red
	default: // SourceDefault
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // bright green
	}
}

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSeparator = lipgloss.NewStyle()
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleErrorLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
)

// ---- printResolvedConfig ----------------------------------------------------

const fieldWidth = 24 // column width for field names

// printResolvedConfig writes the formatted resolved configuration to cmd's
// output writer (stdout by default).
func printResolvedConfig(cmd *cobra.Command, rc *config.ResolvedConfig) {
	out := cmd.OutOrStdout()

	header := styleHeader.Render("Configuration Debug")
	sep := styleSeparator.Render(strings.Repeat("=", len("Configuration Debug")))
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out)

	if rc.Path != "" {
		fmt.Fprintf(out, "Config file: %s\n", rc.Path)
	} else {
		fmt.Fprintln(out, "Config file: none found")
	}
	fmt.Fprintln(out)

	// --- [backend] ---
	fmt.Fprintln(out, styleSection.Render("[backend]"))
	b := rc.Config.Backend
	printField(out, "url", fmtStr(b.URL), rc.Sources["backend.url"])
	printField(out, "token", fmtSecret(b.Token), rc.Sources["backend.token"])
	printField(out, "language", fmtStr(b.Language), rc.Sources["backend.language"])
	printField(out, "rate_limit", strconv.FormatFloat(b.RateLimit, 'g', -1, 64), rc.Sources["backend.rate_limit"])
	printField(out, "burst", strconv.Itoa(b.Burst), rc.Sources["backend.burst"])
	printField(out, "upload_concurrency", strconv.Itoa(b.UploadConcurrency), rc.Sources["backend.upload_concurrency"])
	printField(out, "skip_unchanged", strconv.FormatBool(b.SkipUnchanged), rc.Sources["backend.skip_unchanged"])
	printField(out, "login_path", fmtStr(b.LoginPath), rc.Sources["backend.login_path"])
	fmt.Fprintln(out)

	// --- [form] ---
	fmt.Fprintln(out, styleSection.Render("[form]"))
	f := rc.Config.Form
	printField(out, "locale", fmtStr(f.Locale), rc.Sources["form.locale"])
	printField(out, "catalog_dir", fmtStr(f.CatalogDir), rc.Sources["form.catalog_dir"])
	fmt.Fprintln(out)

	// --- [benefit] ---
	fmt.Fprintln(out, styleSection.Render("[benefit]"))
	n := rc.Config.Benefit
	printField(out, "months", strconv.Itoa(n.Months), rc.Sources["benefit.months"])
	printField(out, "de_minimis_max", fmtStr(n.DeMinimisMax), rc.Sources["benefit.de_minimis_max"])
	fmt.Fprintln(out)
}

// printField writes a single key = value (source: ...) line.
func printField(out io.Writer, name, value string, src config.ConfigSource) {
	// Left-pad the field name to fieldWidth.
	padded := fmt.Sprintf("  %-*s", fieldWidth, name)
	srcLabel := sourceStyle(src).Render(fmt.Sprintf("(source: %s)", src))
	line := fmt.Sprintf("%s = %-40s %s\n", padded, value, srcLabel)
	fmt.Fprint(out, line)
}

// fmtStr formats a string value for display (quoted).
func fmtStr(s string) string {
	return fmt.Sprintf("%q", s)
}

// fmtSecret masks all but the last four characters of a token.
func fmtSecret(s string) string {
	if s == "" {
		return `""`
	}
	if len(s) <= 4 {
		return `"****"`
	}
	return fmt.Sprintf("%q", "****"+s[len(s)-4:])
}

// ---- printValidationResult --------------------------------------------------

// printValidationResult writes the formatted validation report to cmd's
// output writer.
func printValidationResult(cmd *cobra.Command, result *config.ValidationResult) {
	out := cmd.OutOrStdout()

	header := styleHeader.Render("Configuration Validation")
	sep := styleSeparator.Render(strings.Repeat("=", len("Configuration Validation")))
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out)

	errs := result.Errors()
	warns := result.Warnings()

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, styleErrorLbl.Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	if len(warns) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
