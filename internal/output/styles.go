package output

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorDanger  = lipgloss.Color("#FF5F87")
	ColorMuted   = lipgloss.Color("#626262")
	ColorBorder  = lipgloss.Color("#3C3C3C")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Width(16)

	AmountStyle = lipgloss.NewStyle().
			Width(16).
			Align(lipgloss.Right)

	DeductionStyle = AmountStyle.
			Foreground(ColorDanger)

	TotalStyle = AmountStyle.
			Bold(true).
			Foreground(ColorSuccess)
)

// row renders a label and right-aligned amount on one line.
func row(label, amount string, style lipgloss.Style) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), style.Render(amount))
}
