package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/notify"
)

// ---------------------------------------------------------------------------
// Color Palette
// ---------------------------------------------------------------------------

// ColorPrimary is the main brand color used for titles and the active step.
var ColorPrimary = lipgloss.AdaptiveColor{Light: "#0000BF", Dark: "#7B9CFF"}

// ColorAccent marks completed steps and positive indicators.
var ColorAccent = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}

// ColorSuccess represents successful operations (green).
var ColorSuccess = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}

// ColorWarning represents cautionary states (amber).
var ColorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// ColorError represents failures and blocking notifications (red).
var ColorError = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// ColorInfo represents informational messages (blue).
var ColorInfo = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// ColorMuted is a subdued foreground color for secondary text.
var ColorMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// ColorSubtle provides low-contrast borders and locked steps.
var ColorSubtle = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}

// ColorHighlight is a background highlight for buttons.
var ColorHighlight = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}

// ---------------------------------------------------------------------------
// Theme
// ---------------------------------------------------------------------------

// Theme holds the lipgloss styles of the application wizard.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	StepActive lipgloss.Style
	StepDone   lipgloss.Style
	StepOpen   lipgloss.Style
	StepLocked lipgloss.Style
	Separator  lipgloss.Style

	Notification lipgloss.Style
	LevelInfo    lipgloss.Style
	LevelSuccess lipgloss.Style
	LevelWarning lipgloss.Style
	LevelError   lipgloss.Style
	Link         lipgloss.Style

	Spinner   lipgloss.Style
	ErrorText lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	Container lipgloss.Style
}

// DefaultTheme returns the default theme with adaptive colors.
func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Subtitle: lipgloss.NewStyle().
			Foreground(ColorMuted),
		StepActive: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(ColorPrimary),
		StepDone: lipgloss.NewStyle().
			Foreground(ColorAccent),
		StepOpen: lipgloss.NewStyle().
			Foreground(ColorMuted),
		StepLocked: lipgloss.NewStyle().
			Foreground(ColorSubtle),
		Separator: lipgloss.NewStyle().
			Foreground(ColorSubtle).
			SetString(" › "),

		Notification: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			PaddingLeft(1).
			MarginBottom(1),
		LevelInfo:    lipgloss.NewStyle().Bold(true).Foreground(ColorInfo),
		LevelSuccess: lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess),
		LevelWarning: lipgloss.NewStyle().Bold(true).Foreground(ColorWarning),
		LevelError:   lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Link: lipgloss.NewStyle().
			Underline(true).
			Foreground(ColorInfo),

		Spinner: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		ErrorText: lipgloss.NewStyle().
			Foreground(ColorError),
		HelpKey: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(ColorSubtle),
		Container: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(1, 2),
	}
}

// levelStyle returns the title style of a notification level together with
// the border color of its box.
func (t Theme) levelStyle(l notify.Level) (lipgloss.Style, lipgloss.TerminalColor) {
	switch l {
	case notify.LevelSuccess:
		return t.LevelSuccess, ColorSuccess
	case notify.LevelWarning:
		return t.LevelWarning, ColorWarning
	case notify.LevelError:
		return t.LevelError, ColorError
	default:
		return t.LevelInfo, ColorInfo
	}
}
