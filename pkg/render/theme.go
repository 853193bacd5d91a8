package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles and glyphs the terminal renderer draws with.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons are the glyphs for summary kinds and failure statuses.
type ThemeIcons struct {
	Pass    string // clean metric
	Fail    string // failing metric, status "failure"
	Error   string // status "error"
	Aborted string // status "aborted"
	Fixed   string // failing in baseline, passing now
	Warn    string // unreadable input, warning metric
	Info    string
}

// KindStyle picks the glyph and style for a summary metric kind.
func (th Theme) KindStyle(kind string) (string, lipgloss.Style) {
	switch kind {
	case "success":
		return th.Icons.Pass, th.Success
	case "error":
		return th.Icons.Fail, th.Error
	case "warning":
		return th.Icons.Warn, th.Warning
	default:
		return th.Icons.Info, th.Primary
	}
}

// StatusStyle picks the glyph and style for a test-table row status.
func (th Theme) StatusStyle(status string) (string, lipgloss.Style) {
	switch status {
	case "fixed":
		return th.Icons.Fixed, th.Success
	case "failure":
		return th.Icons.Fail, th.Error
	case "error":
		return th.Icons.Error, th.Error
	case "aborted":
		return th.Icons.Aborted, th.Warning
	default:
		return th.Icons.Info, th.Muted
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// DefaultTheme is the full-color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Primary: fg("39"),
		Success: fg("34"),
		Warning: fg("214"),
		Error:   fg("196"),
		Muted:   fg("242"),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   ThemeIcons{Pass: "✓", Fail: "✗", Error: "✖", Aborted: "⊘", Fixed: "↺", Warn: "⚠", Info: "●"},
	}
}

// OrcaTheme is a muted palette for long CI logs.
func OrcaTheme() Theme {
	return Theme{
		Name:    "orca",
		Primary: fg("75"),
		Success: fg("108"),
		Warning: fg("179"),
		Error:   fg("167"),
		Muted:   fg("245"),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   ThemeIcons{Pass: "✓", Fail: "✗", Error: "✗", Aborted: "~", Fixed: "✓", Warn: "!", Info: "·"},
	}
}

// MonoTheme uses no color and ASCII glyphs only; NO_COLOR selects it.
func MonoTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:    "mono",
		Primary: plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Muted:   plain,
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons:   ThemeIcons{Pass: "+", Fail: "x", Error: "E", Aborted: "~", Fixed: "+", Warn: "!", Info: "*"},
	}
}

// ThemeNames lists the names ThemeByName recognizes.
var ThemeNames = []string{"default", "orca", "mono"}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
