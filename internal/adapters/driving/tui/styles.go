package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour palette for the chat view.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
		Border:  lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles for the chat view.
type Styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Status    lipgloss.Style
	InputBox  lipgloss.Style
}

// DefaultStyles builds the styles from the default theme.
func DefaultStyles() *Styles {
	theme := DefaultTheme()
	return &Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		User:      lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Assistant: lipgloss.NewStyle(),
		System:    lipgloss.NewStyle().Italic(true).Foreground(theme.Success),
		Error:     lipgloss.NewStyle().Foreground(theme.Error),
		Status:    lipgloss.NewStyle().Foreground(theme.Muted),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}
