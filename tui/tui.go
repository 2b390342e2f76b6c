package tui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/boltcore/cli"
	"github.com/nathoo/boltcore/engine"
	"github.com/nathoo/boltcore/engine/gfx"
	"github.com/nathoo/boltcore/engine/host"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
// Lines with a pre-rendered form (palette swatches) bypass that pass.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool   // true for echoed commands
	isSystem bool   // true for player notices (help text, palette errors)
	styled   string // pre-rendered content, used verbatim when non-empty
}

// Model is the Bubble Tea model for the debug player. Commands run
// through the same interpreter the headless driver uses; the model
// captures its output and renders it into the viewport.
type Model struct {
	game *engine.Game
	sess *cli.CLI
	out  *bytes.Buffer
	pal  *gfx.MemoryRenderer

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated session lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	quitting bool
}

// gameOutputMsg carries interpreter output into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed command (empty for the opening)
	lines    []string // output lines
	isSystem bool     // true for player-generated output
}

// New creates a player wired to the given game. The palette renderer
// may be nil; the palette command then reports that no colors exist.
func New(g *engine.Game, clock *host.ManualClock, pal *gfx.MemoryRenderer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	out := &bytes.Buffer{}
	sess := cli.New(g, clock)
	sess.Out = out

	return Model{
		game:    g,
		sess:    sess,
		out:     out,
		pal:     pal,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(g *engine.Game, clock *host.ManualClock, pal *gfx.MemoryRenderer) error {
	m := New(g, clock, pal)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that starts the game and reports
// the opening transitions.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		lines := []string{"boltcore debug player", "Type help for the command list.", ""}
		if err := m.sess.Begin(); err != nil {
			return gameOutputMsg{lines: append(lines, fmt.Sprintf("start failed: %v", err)), isSystem: true}
		}
		return gameOutputMsg{lines: append(lines, m.drain()...)}
	}
}

// Update handles messages (key presses, window resize, session output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line. Help and palette are
// handled here because only the player can render them; everything
// else goes to the shared interpreter.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "help":
		m = m.appendOutput(gameOutputMsg{input: input, lines: m.cmdHelp(), isSystem: true})
		return m, nil

	case "palette":
		return m.cmdPalette(input, parts[1:]), nil
	}

	quit := m.sess.Exec(input)
	m = m.appendOutput(gameOutputMsg{input: input, lines: m.drain()})
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// drain returns the interpreter output accumulated since the last drain.
func (m Model) drain() []string {
	out := m.out.String()
	m.out.Reset()
	if out == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

// appendOutput adds lines to the scrollback and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between commands.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// appendStyled adds pre-rendered lines that bypass wrapping and
// classification.
func (m Model) appendStyled(input string, lines []string) Model {
	if input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + input, isInput: true,
		})
	}
	for _, line := range lines {
		m.rawLines = append(m.rawLines, rawLine{styled: line})
	}
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current
// width and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.styled != "" {
			styled = append(styled, rl.styled)
			continue
		}
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindTransition:
		return styledTransition(line)
	case kindButtons:
		return styleButtons.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return stylePlain.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Preserves existing newlines within the text.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// cmdPalette renders swatches for the foreground plane palette, a few
// entries per row.
func (m Model) cmdPalette(input string, args []string) Model {
	notice := func(text string) Model {
		return m.appendOutput(gameOutputMsg{input: input, lines: []string{text}, isSystem: true})
	}

	if m.pal == nil {
		return notice("No palette: the renderer keeps no color state.")
	}

	first, count := 0, 16
	var err error
	if len(args) > 2 {
		return notice("usage: palette [FIRST [COUNT]]")
	}
	if len(args) > 0 {
		if first, err = strconv.Atoi(args[0]); err != nil || first < 0 || first > 255 {
			return notice("usage: palette [FIRST [COUNT]]")
		}
	}
	if len(args) > 1 {
		if count, err = strconv.Atoi(args[1]); err != nil || count < 1 {
			return notice("usage: palette [FIRST [COUNT]]")
		}
	}
	if first+count > 256 {
		count = 256 - first
	}

	rgb := m.pal.Palette(gfx.PlaneFore, first, count)

	var rows []string
	var row strings.Builder
	for i := 0; i*3+2 < len(rgb); i++ {
		if row.Len() > 0 {
			row.WriteString("  ")
		}
		row.WriteString(swatchCell(first+i, rgb[i*3], rgb[i*3+1], rgb[i*3+2]))
		if (i+1)%swatchesPerRow == 0 {
			rows = append(rows, row.String())
			row.Reset()
		}
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return m.appendStyled(input, rows)
}

func (m Model) cmdHelp() []string {
	return []string{
		"Events:",
		"  click X Y     - left click at X,Y",
		"  hover X Y     - move the pointer to X,Y",
		"  rclick X Y    - right click at X,Y",
		"  tick [MS]     - advance time and pump one frame",
		"  timer ID      - fire a timer by id",
		"",
		"Queries:",
		"  buttons       - list the active scene's buttons",
		"  palette [FIRST [COUNT]] - show foreground palette swatches",
		"  state         - show cursor, movie, rng, and profile",
		"  journal       - print the transition journal",
		"",
		"Session:",
		"  profile SLOT  - switch the active profile slot",
		"  trace         - toggle trace output",
		"  again (g)     - repeat the last event",
		"  quit          - exit",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history, Esc to quit",
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
