package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme encapsulates the visual palette for the calendar UI.
type Theme struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Accent    lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Danger    lipgloss.Style
	Faint     lipgloss.Style
	Highlight lipgloss.Style
	Border    lipgloss.Style
	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style

	Cell         lipgloss.Style
	CellCursor   lipgloss.Style
	CellSelected lipgloss.Style
	Today        lipgloss.Style
	Weekday      lipgloss.Style
	Modal        lipgloss.Style
}

// categoryHex maps category color names to their accent color.
var categoryHex = map[string]string{
	"blue":   "#42a5f5",
	"green":  "#66bb6a",
	"pink":   "#ec407a",
	"purple": "#ab47bc",
	"orange": "#ffa726",
}

const (
	backgroundHex = "#1e1e2e"
	fallbackHex   = "#9e9e9e"
)

// Default returns a high-contrast palette that plays nicely with common terminals.
func Default() Theme {
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("210"))
	cell := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	return Theme{
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true).Underline(true),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true),
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("219")).Bold(true),
		Primary:   base.Copy().Foreground(lipgloss.Color("81")),
		Secondary: lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("227")).Bold(true),
		Danger:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Faint:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Border:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HelpKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true),
		HelpValue: lipgloss.NewStyle().Foreground(lipgloss.Color("249")),

		Cell:         cell,
		CellCursor:   cell.Copy().BorderForeground(lipgloss.Color("219")),
		CellSelected: cell.Copy().BorderStyle(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("81")),
		Today:        lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Underline(true),
		Weekday:      lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		Modal:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("213")).Padding(1, 2),
	}
}

// CategoryAccent returns the accent color for a category color name.
func CategoryAccent(name string) lipgloss.Color {
	if hex, ok := categoryHex[name]; ok {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(fallbackHex)
}

// CategoryTint returns a muted chip background for a category color name,
// the accent blended toward the terminal background.
func CategoryTint(name string) lipgloss.Color {
	accent, err := colorful.Hex(string(CategoryAccent(name)))
	if err != nil {
		return lipgloss.Color(fallbackHex)
	}
	bg, _ := colorful.Hex(backgroundHex)
	return lipgloss.Color(accent.BlendLab(bg, 0.65).Clamped().Hex())
}

// Event styles an event chip for a category color name.
func (t Theme) Event(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(CategoryAccent(color)).
		Background(CategoryTint(color))
}
