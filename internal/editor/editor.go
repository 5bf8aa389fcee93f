package editor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"bytedit/internal/config"
	"bytedit/internal/session"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const bytesPerRow = session.BytesPerRow

// Lines used by everything except the hex rows: legend, column header, status.
const chromeLines = 3

// Help overlay chrome: legend, title and the two border lines.
const helpChromeLines = 4

const helpTitle = "HELP - bytedit"

type frameMsg time.Time

// Model renders a Session and feeds it keys and frame ticks.
type Model struct {
	sess   *session.Session
	config *config.Config
	styles *config.Styles

	width     int
	height    int
	lastFrame time.Time

	showHelp bool
	help     viewport.Model
}

func NewModel(sess *session.Session, cfg *config.Config) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	help := viewport.New(0, 0)
	help.SetContent(helpText)
	return &Model{
		sess:   sess,
		config: cfg,
		styles: config.NewStyles(&cfg.Theme),
		help:   help,
	}
}

func (m *Model) Init() tea.Cmd {
	m.lastFrame = time.Now()
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.config.Editor.FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// SetSize lays the model out for a terminal of the given size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.sess.Resize(m.visibleRows())
	m.help.Width = max(width-2, 1)
	m.help.Height = max(height-helpChromeLines, 1)
}

func (m *Model) visibleRows() int {
	rows := m.height - chromeLines
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			m.sess.Tick(now.Sub(m.lastFrame))
		}
		m.lastFrame = now
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.showHelp {
		switch key {
		case session.KeyForceQuit:
			return m, tea.Quit
		case session.KeyEscape, "?", "q":
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}

	if key == "?" {
		if _, ok := m.sess.Mode().(session.HexNav); ok {
			m.showHelp = true
			m.help.GotoTop()
			return m, nil
		}
	}

	if m.sess.Handle(key) {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderLegend())
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.styles.HelpTitle.Render(helpTitle))
		b.WriteString("\n")
		b.WriteString(m.styles.Border.Render(m.help.View()))
		return b.String()
	}

	b.WriteString(m.renderColumnHeader())
	b.WriteString("\n")
	b.WriteString(m.renderEditor())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m *Model) renderLegend() string {
	var items []string

	hl := func(text string, highlightIdx int) string {
		var result strings.Builder
		for i, ch := range text {
			if i == highlightIdx {
				result.WriteString(m.styles.Warning.Inherit(m.styles.Status).Render(string(ch)))
			} else {
				result.WriteString(m.styles.Status.Render(string(ch)))
			}
		}
		return result.String()
	}

	switch m.sess.Mode().(type) {
	case session.HexNav:
		items = append(items, hl("Quit", 0))
		items = append(items, hl("Write", 0))
		items = append(items, hl("eXit", 1))
		if m.sess.Panel() == session.PanelASCII {
			items = append(items, hl("Insert", 0))
		}
		items = append(items, hl("/search", 0))
		items = append(items, hl("Next", 0))
		items = append(items, hl("Prev", 0))
		items = append(items, hl(":goto", 0))
		items = append(items, hl("Undo", 0))
		items = append(items, hl("Yank", 0))
		items = append(items, m.styles.Status.Render("TAB"))
		items = append(items, hl("?help", 0))
	case session.AsciiInsert:
		items = append(items, m.styles.Status.Render("-- INSERT --"))
		items = append(items, m.styles.Status.Render("ESC Back"))
	default:
		items = append(items, m.styles.Status.Render("ENTER Confirm"))
		items = append(items, m.styles.Status.Render("ESC Back"))
	}

	legend := strings.Join(items, m.styles.Status.Render(" | "))
	// Width alone would wrap a long legend onto a second line.
	legend = ansi.Truncate(legend, m.width, "")
	return m.styles.Status.Width(m.width).Render(legend)
}

func (m *Model) renderColumnHeader() string {
	header := strings.Repeat(" ", 10)

	cursorCol := m.sess.Cursor() % bytesPerRow
	for i := 0; i < bytesPerRow; i++ {
		hex := fmt.Sprintf("%02X", i)
		if i == cursorCol {
			hex = m.styles.IndexMarker.Render(hex)
		}
		header += hex
		if i < bytesPerRow-1 {
			header += columnGap(i)
		}
	}

	return header
}

// columnGap returns the spacing after column col: one space between bytes,
// one more after each group of four and two more after eight.
func columnGap(col int) string {
	if (col+1)%8 == 0 {
		return "   "
	}
	if (col+1)%4 == 0 {
		return "  "
	}
	return " "
}

func (m *Model) renderEditor() string {
	data := m.sess.Bytes()
	cursor := m.sess.Cursor()
	cursorRow := cursor / bytesPerRow

	var lines []string
	for row := 0; row < m.sess.Rows(); row++ {
		rowIdx := m.sess.Viewport() + row
		rowOffset := rowIdx * bytesPerRow
		if rowOffset >= len(data) {
			break
		}

		offsetStr := fmt.Sprintf("%08X  ", rowOffset)
		if rowIdx == cursorRow {
			offsetStr = m.styles.IndexMarker.Render(offsetStr)
		} else {
			offsetStr = m.styles.Offset.Render(offsetStr)
		}

		var hexLine strings.Builder
		var asciiLine strings.Builder

		for col := 0; col < bytesPerRow; col++ {
			offset := rowOffset + col

			hexStr := "  "
			asciiStr := " "
			printable := true
			if offset < len(data) {
				c := data[offset]
				hexStr = fmt.Sprintf("%02X", c)
				if c >= 32 && c < 127 {
					asciiStr = string(c)
				} else {
					asciiStr = "."
					printable = false
				}
			}

			hexStyle, asciiStyle := m.styles.Normal, m.styles.Normal
			if !printable {
				asciiStyle = m.styles.NonPrint
			}
			if offset == cursor {
				hexStyle, asciiStyle = m.cursorStyles()
			}

			hexLine.WriteString(hexStyle.Render(hexStr))
			asciiLine.WriteString(asciiStyle.Render(asciiStr))

			if col < bytesPerRow-1 {
				hexLine.WriteString(columnGap(col))
			}
		}

		lines = append(lines, offsetStr+hexLine.String()+"  "+asciiLine.String())
	}

	return strings.Join(lines, "\n")
}

// cursorStyles picks the cursor highlight for the hex and ascii cells. The
// active panel gets the mode colour, the other one a shadow.
func (m *Model) cursorStyles() (lipgloss.Style, lipgloss.Style) {
	active := m.styles.Cursor
	switch {
	case m.sess.Pending():
		active = m.styles.Pending
	case isInsert(m.sess.Mode()):
		active = m.styles.Insert
	}

	if m.sess.Panel() == session.PanelASCII {
		return m.styles.Shadow, active
	}
	return active, m.styles.Shadow
}

func isInsert(mode session.Mode) bool {
	_, ok := mode.(session.AsciiInsert)
	return ok
}

func (m *Model) renderStatus() string {
	left := m.renderStatusLeft()
	right := m.renderStatusRight()

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderStatusLeft() string {
	switch mode := m.sess.Mode().(type) {
	case session.SearchEntry:
		return "/" + mode.Text() + "_"
	case session.GotoEntry:
		prompt := ":" + mode.Text() + "_"
		if m.sess.GotoInvalid() {
			prompt += "  " + m.styles.Warning.Render("Invalid offset")
		}
		return prompt
	}

	if msg := m.warning(); msg != "" {
		return m.styles.Warning.Render(msg)
	}
	if msg, isErr := m.sess.Status(); msg != "" {
		if isErr {
			return m.styles.Warning.Render(msg)
		}
		return m.styles.Notice.Render(msg)
	}
	if wrote, _ := m.sess.Wrote(); wrote {
		return m.styles.Notice.Render(fmt.Sprintf("Wrote %d bytes", m.sess.Len()))
	}

	name := filepath.Base(m.sess.Filename())
	name = runewidth.Truncate(name, m.width/2, "…")
	if m.sess.Modified() {
		name = m.styles.Modified.Render("*" + name)
	}
	return name
}

func (m *Model) warning() string {
	switch {
	case m.sess.NoLaterMatch():
		return "No later match"
	case m.sess.NoEarlierMatch():
		return "No earlier match"
	case m.sess.GotoInvalid():
		return "Invalid offset"
	case m.sess.OutOfRange():
		return "Out of range"
	}
	return ""
}

func (m *Model) renderStatusRight() string {
	var parts []string

	if q := m.sess.Query(); q != "" {
		parts = append(parts, fmt.Sprintf("%q: %d", q, m.sess.MatchCount()))
	}
	parts = append(parts, fmt.Sprintf("%s/%s", m.sess.Mode().Name(), strings.ToUpper(m.sess.Panel().String())))
	parts = append(parts, fmt.Sprintf("0x%08X/0x%08X", m.sess.Cursor(), m.sess.Len()-1))

	return strings.Join(parts, "  ")
}

const helpText = `NAVIGATION
  h j k l / Arrows   Move cursor
  Home / End         Start/end of row
  PgUp / PgDown      Page up/down
  g / G              First/last byte

EDITING
  0-9 a-f            Write a nibble (hex panel)
  TAB                Switch hex/ascii panel
  i                  Insert text (ascii panel)
  ESC                Back to hex navigation
  u                  Undo last edit

SEARCH AND GOTO
  /                  Search bytes
  n / p              Next/previous match
  :                  Goto offset (+N, -N, N or 0xN)

OTHER
  y                  Copy cursor offset
  w                  Write file
  x                  Write file and quit
  q                  Quit
  Ctrl+C             Quit immediately
  ?                  Help (this screen)

Press ESC or ? to close this help screen.
`
