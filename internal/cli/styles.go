package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/italia/publiccode-issueopener/internal/domain"
)

// Colors defines the color palette for command output.
var Colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"), // Purple
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Success: lipgloss.Color("#00B894"), // Green
	Warning: lipgloss.Color("#FDCB6E"), // Yellow
}

// Styles contains the lipgloss styles for command output.
type Styles struct {
	Header  lipgloss.Style
	Open    lipgloss.Style
	Closed  lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates styles for w. Colors are dropped when w is not a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Header:  r.NewStyle().Bold(true).Foreground(Colors.Primary),
		Open:    r.NewStyle().Foreground(Colors.Success),
		Closed:  r.NewStyle().Foreground(Colors.Muted),
		Warning: r.NewStyle().Foreground(Colors.Warning),
		Error:   r.NewStyle().Foreground(Colors.Error),
	}
}

// State renders an issue state.
func (s Styles) State(state domain.IssueState) string {
	if state == domain.IssueOpen {
		return s.Open.Render(string(state))
	}
	return s.Closed.Render(string(state))
}
