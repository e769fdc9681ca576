package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/eventwise/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StageColor returns the style for a conversation stage: blue while
// collecting, yellow while a confirmation is pending, green once content exists.
func StageColor(stage domain.Stage) lipgloss.Style {
	switch stage {
	case domain.StageGreeting, domain.StageCollectingBasics, domain.StageCollectingDetails:
		return StyleBlue
	case domain.StageAwaitingConfirmation, domain.StageAwaitingPdfConfirmation:
		return StyleYellow
	case domain.StageConfirmed, domain.StageReviewingContent, domain.StagePdfGeneration:
		return StyleGreen
	default:
		return StyleDim
	}
}

// StageBadge returns a colored stage label such as "● AWAITING CONFIRMATION".
func StageBadge(stage domain.Stage) string {
	if stage == "" {
		return StyleDim.Render("● UNKNOWN")
	}
	label := strings.ToUpper(strings.ReplaceAll(string(stage), "_", " "))
	return StageColor(stage).Render("● " + label)
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
