package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Styles used throughout the player.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlain = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleCursorTag = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleTransition = lipgloss.NewStyle().
			Bold(true)

	styleButtons = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindPlain lineKind = iota
	kindTransition
	kindButtons
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is. The
// interpreter prints notices in brackets, journal transitions with a
// leading cursor tag, and table rows indented by two spaces.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace:"):
		return kindTrace
	case strings.HasPrefix(line, "[Event failed"),
		strings.HasPrefix(line, "[start failed"),
		strings.HasPrefix(line, "[Unknown command"),
		strings.HasPrefix(line, "[usage:"),
		strings.HasPrefix(line, "[Profile switch failed"):
		return kindError
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "["):
		return kindTransition
	case strings.HasPrefix(line, "  "):
		return kindButtons
	default:
		return kindPlain
	}
}

// styledTransition renders a journal record like "[3] puzzle gems (WIN1)"
// with the cursor tag dimmed and the rest bold.
func styledTransition(line string) string {
	if i := strings.Index(line, "] "); i >= 0 {
		return styleCursorTag.Render(line[:i+1]) + " " + styleTransition.Render(line[i+2:])
	}
	return styleTransition.Render(line)
}

// styledSystemMsg renders interpreter and player notices in gray.
func styledSystemMsg(text string) string {
	return styleSystem.Render(text)
}

// swatchesPerRow is how many palette cells a "palette" row holds.
const swatchesPerRow = 4

// swatchCell renders one palette entry as a colored block labeled with
// its index and hex value. The label flips to a dark foreground on
// light colors so it stays readable.
func swatchCell(index int, r, g, b byte) string {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	fg := lipgloss.Color("255")
	if _, _, l := c.Hsl(); l > 0.5 {
		fg = lipgloss.Color("16")
	}
	block := lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Foreground(fg)
	return fmt.Sprintf("%3d %s", index, block.Render(" "+c.Hex()+" "))
}
