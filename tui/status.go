package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/boltcore/engine/scene"
)

// renderStatusBar produces a full-width inverted status line showing
// the script cursor, the current card kind, hover state, and movie
// playback.
func (m Model) renderStatusBar() string {
	g := m.game
	e := g.Current()

	left := fmt.Sprintf(" [%d] %s | %s", g.Cursor(), e.Label, e.Op)
	if s := g.Scene(); s != nil && s.Hovered() != scene.NoButton {
		left += fmt.Sprintf(" | hover %d", s.Hovered())
	}

	movie := "movie: none"
	if g.MovieRunning() {
		movie = "movie: " + g.MovieName()
	}

	right := movie + " "

	// Show the profile slot if it fits, otherwise just the movie state.
	if ps := g.Profiles(); ps != nil {
		if p := ps.Current(); p != nil {
			candidate := fmt.Sprintf("slot %d, %d solved | %s ", ps.Slot(), len(p.Solved), movie)
			if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
				right = candidate
			}
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
