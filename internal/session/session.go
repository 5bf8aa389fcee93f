package session

import (
	"fmt"
	"time"

	"bytedit/internal/buffer"
	"bytedit/internal/logger"

	"github.com/atotto/clipboard"
)

type Options struct {
	UndoCapacity int
	QueryLimit   int
	GotoLimit    int
	Warning      time.Duration
}

func DefaultOptions() Options {
	return Options{
		UndoCapacity: buffer.DefaultUndoCapacity,
		QueryLimit:   64,
		GotoLimit:    20,
		Warning:      2 * time.Second,
	}
}

var clipboardWrite = clipboard.WriteAll

// Session is one interactive run over a single loaded buffer. It is driven by
// one key token at a time and is not safe for concurrent use.
type Session struct {
	buf    *buffer.Buffer
	undo   *buffer.UndoLog
	cursor Cursor
	search Search
	mode   Mode
	panel  Panel
	opts   Options

	matchCount int
	matchDirty bool

	gotoInvalid Flash
	outOfRange  Flash
	wrote       Flash
	status      string
	statusErr   bool
	statusFlash Flash
}

func New(buf *buffer.Buffer, opts Options) *Session {
	def := DefaultOptions()
	if opts.UndoCapacity <= 0 {
		opts.UndoCapacity = def.UndoCapacity
	}
	if opts.QueryLimit <= 0 {
		opts.QueryLimit = def.QueryLimit
	}
	if opts.GotoLimit <= 0 {
		opts.GotoLimit = def.GotoLimit
	}
	if opts.Warning <= 0 {
		opts.Warning = def.Warning
	}

	logger.Info("session started", "file", buf.Filename(), "bytes", buf.Len())
	return &Session{
		buf:    buf,
		undo:   buffer.NewUndoLog(opts.UndoCapacity),
		cursor: NewCursor(buf.Len()),
		search: NewSearch(),
		mode:   HexNav{},
		opts:   opts,
	}
}

// Handle feeds one key token to the current mode and reports whether the
// session has ended.
func (s *Session) Handle(key string) bool {
	if key == KeyForceQuit {
		logger.Info("force quit", "mode", s.mode.Name())
		return true
	}

	var next Mode
	var quit bool
	switch m := s.mode.(type) {
	case HexNav:
		next, quit = s.handleHexNav(m, key)
	case AsciiInsert:
		next = s.handleAsciiInsert(m, key)
	case SearchEntry:
		next = s.handleSearchEntry(m, key)
	case GotoEntry:
		next = s.handleGotoEntry(m, key)
	default:
		next = HexNav{}
	}

	if next.Name() != s.mode.Name() {
		logger.Debug("mode change", "from", s.mode.Name(), "to", next.Name())
	}
	s.mode = next
	if quit {
		logger.Info("quit", "file", s.buf.Filename(), "modified", s.buf.Modified())
	}
	return quit
}

// Tick advances every timed message by the elapsed frame time.
func (s *Session) Tick(dt time.Duration) {
	s.search.NoEarlier.tick(dt)
	s.search.NoLater.tick(dt)
	s.gotoInvalid.tick(dt)
	s.outOfRange.tick(dt)
	s.wrote.tick(dt)
	s.statusFlash.tick(dt)
	if !s.statusFlash.Active() {
		s.status = ""
		s.statusErr = false
	}
}

// Resize sets the number of hex rows the renderer can show.
func (s *Session) Resize(rows int) {
	s.cursor.SetRows(rows)
}

func (s *Session) handleHexNav(m HexNav, key string) (Mode, bool) {
	switch key {
	case "q":
		return m, true
	case "w":
		s.Save()
		return m, false
	case "x":
		if err := s.Save(); err != nil {
			return m, false
		}
		return HexNav{}, true
	case KeyTab:
		if s.panel == PanelHex {
			s.panel = PanelASCII
		} else {
			s.panel = PanelHex
		}
		return HexNav{}, false
	case "i":
		if s.panel == PanelASCII {
			return AsciiInsert{}, false
		}
		return m, false
	case "/":
		return SearchEntry{}, false
	case ":":
		return GotoEntry{}, false
	case "h":
		key = KeyLeft
	case "j":
		key = KeyDown
	case "k":
		key = KeyUp
	case "l":
		key = KeyRight
	case "g":
		s.cursor.MoveTo(0)
		return HexNav{}, false
	case "G":
		s.cursor.MoveTo(s.buf.Len() - 1)
		return HexNav{}, false
	case "n":
		if s.SearchNext() {
			return HexNav{}, false
		}
		return m, false
	case "p":
		if s.SearchPrev() {
			return HexNav{}, false
		}
		return m, false
	case "u":
		s.Undo()
		return HexNav{}, false
	case "y":
		s.yankOffset()
		return m, false
	}

	if handled, moved := s.navigate(key); handled {
		if moved {
			return HexNav{}, false
		}
		return m, false
	}

	if d, ok := hexDigit(key); ok && s.panel == PanelHex {
		return s.writeNibble(m, d), false
	}
	return m, false
}

// writeNibble stores d in the high half of the byte under the cursor, or in
// the low half if the high half was just written. Only the first half records
// an undo entry; the second advances the cursor.
func (s *Session) writeNibble(m HexNav, d byte) HexNav {
	off := s.cursor.Offset()
	cur, err := s.buf.Get(off)
	if err != nil {
		return HexNav{}
	}

	if !m.pending {
		s.undo.Push(off, cur)
		s.setByte(off, d<<4|cur&0x0F)
		return HexNav{pending: true}
	}

	s.setByte(off, cur&0xF0|d)
	s.cursor.MoveBy(1)
	return HexNav{}
}

func (s *Session) handleAsciiInsert(m AsciiInsert, key string) Mode {
	if key == KeyEscape {
		return HexNav{}
	}
	if handled, _ := s.navigate(key); handled {
		return m
	}
	if isPrintable(key) {
		off := s.cursor.Offset()
		if cur, err := s.buf.Get(off); err == nil {
			s.undo.Push(off, cur)
			s.setByte(off, key[0])
			s.cursor.MoveBy(1)
		}
	}
	return m
}

func (s *Session) handleSearchEntry(m SearchEntry, key string) Mode {
	switch key {
	case KeyEscape:
		return HexNav{}
	case KeyEnter:
		// An empty entry repeats the previous query.
		if len(m.query) > 0 {
			s.search.Commit(m.query)
			s.matchDirty = true
		}
		s.SearchNext()
		return HexNav{}
	case KeyBackspace, KeyDelete:
		return SearchEntry{query: dropLast(m.query)}
	}
	if isPrintable(key) {
		return SearchEntry{query: appendBounded(m.query, key[0], s.opts.QueryLimit)}
	}
	return m
}

func (s *Session) handleGotoEntry(m GotoEntry, key string) Mode {
	switch key {
	case KeyEscape:
		return HexNav{}
	case KeyEnter:
		target, ok := ResolveGoto(string(m.input), s.cursor.Offset(), s.buf.Len())
		if !ok {
			logger.Debug("goto rejected", "input", string(m.input), "target", target, "length", s.buf.Len())
			s.gotoInvalid.Raise(s.opts.Warning)
			return GotoEntry{}
		}
		s.gotoInvalid.Clear()
		s.cursor.MoveTo(target)
		return HexNav{}
	case KeyBackspace, KeyDelete:
		return GotoEntry{input: dropLast(m.input)}
	}
	if isPrintable(key) {
		return GotoEntry{input: appendBounded(m.input, key[0], s.opts.GotoLimit)}
	}
	return m
}

// navigate handles the movement keys shared by HexNav and AsciiInsert.
func (s *Session) navigate(key string) (handled, moved bool) {
	switch key {
	case KeyLeft:
		return true, s.moveBy(-1)
	case KeyRight:
		return true, s.moveBy(1)
	case KeyUp:
		return true, s.moveBy(-BytesPerRow)
	case KeyDown:
		return true, s.moveBy(BytesPerRow)
	case KeyHome:
		s.cursor.RowStart()
		return true, true
	case KeyEnd:
		s.cursor.RowEnd()
		return true, true
	case KeyPgUp:
		s.cursor.Page(-1)
		return true, true
	case KeyPgDown:
		s.cursor.Page(1)
		return true, true
	}
	return false, false
}

func (s *Session) moveBy(delta int) bool {
	if !s.cursor.MoveBy(delta) {
		s.outOfRange.Raise(s.opts.Warning)
		return false
	}
	s.outOfRange.Clear()
	return true
}

func (s *Session) setByte(off int, v byte) {
	if err := s.buf.Set(off, v); err == nil {
		s.matchDirty = true
	}
}

// SearchNext jumps to the next match of the committed query.
func (s *Session) SearchNext() bool {
	pos, ok := s.search.Next(s.buf, s.opts.Warning)
	if !ok {
		if s.search.NoLater.Active() {
			logger.Debug("search exhausted", "direction", "forward", "query", s.search.Query())
		}
		return false
	}
	s.cursor.MoveTo(pos)
	return true
}

// SearchPrev jumps to the match before the last one.
func (s *Session) SearchPrev() bool {
	pos, ok := s.search.Prev(s.buf, s.opts.Warning)
	if !ok {
		if s.search.NoEarlier.Active() {
			logger.Debug("search exhausted", "direction", "backward", "query", s.search.Query())
		}
		return false
	}
	s.cursor.MoveTo(pos)
	return true
}

// Undo restores the most recent edit and moves the cursor onto it. An empty
// log is a no-op.
func (s *Session) Undo() bool {
	e, ok := s.undo.ApplyPop(s.buf)
	if !ok {
		return false
	}
	s.matchDirty = true
	s.cursor.MoveTo(e.Offset)
	return true
}

// Save writes the buffer back over its file. Failures are reported through
// the status line and returned; the in-memory buffer is never touched.
func (s *Session) Save() error {
	changed, err := s.buf.ChangedOnDisk()
	if err == nil && changed {
		logger.Warn("file changed on disk, overwriting", "file", s.buf.Filename())
	}

	if err := s.buf.Save(); err != nil {
		logger.Warn("save failed", "file", s.buf.Filename(), "error", err)
		s.setStatus(fmt.Sprintf("Error saving: %v", err), true)
		return err
	}

	logger.Info("file written", "file", s.buf.Filename(), "bytes", s.buf.Len())
	s.wrote.Raise(s.opts.Warning)
	if changed {
		s.setStatus("File had changed on disk and was overwritten", false)
	}
	return nil
}

func (s *Session) yankOffset() {
	text := fmt.Sprintf("0x%08X", s.cursor.Offset())
	if err := clipboardWrite(text); err != nil {
		logger.Warn("clipboard write failed", "error", err)
		s.setStatus(fmt.Sprintf("Clipboard unavailable: %v", err), true)
		return
	}
	s.setStatus("Copied offset "+text, false)
}

func (s *Session) setStatus(msg string, isErr bool) {
	s.status = msg
	s.statusErr = isErr
	s.statusFlash.Raise(s.opts.Warning)
}

func (s *Session) Bytes() []byte       { return s.buf.Bytes() }
func (s *Session) Len() int             { return s.buf.Len() }
func (s *Session) Filename() string     { return s.buf.Filename() }
func (s *Session) Modified() bool       { return s.buf.Modified() }
func (s *Session) Cursor() int          { return s.cursor.Offset() }
func (s *Session) Viewport() int        { return s.cursor.Viewport() }
func (s *Session) Rows() int            { return s.cursor.Rows() }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) Panel() Panel         { return s.panel }
func (s *Session) UndoDepth() int       { return s.undo.Len() }
func (s *Session) Query() string        { return s.search.Query() }
func (s *Session) NoEarlierMatch() bool { return s.search.NoEarlier.Active() }
func (s *Session) NoLaterMatch() bool   { return s.search.NoLater.Active() }
func (s *Session) GotoInvalid() bool    { return s.gotoInvalid.Active() }
func (s *Session) OutOfRange() bool     { return s.outOfRange.Active() }

func (s *Session) Pending() bool {
	m, ok := s.mode.(HexNav)
	return ok && m.pending
}

// EntryText returns what is being typed in SearchEntry or GotoEntry mode.
func (s *Session) EntryText() string {
	switch m := s.mode.(type) {
	case SearchEntry:
		return m.Text()
	case GotoEntry:
		return m.Text()
	}
	return ""
}

func (s *Session) LastMatch() (int, bool) {
	return s.search.LastMatch()
}

// MatchCount counts occurrences of the committed query, recounting only after
// edits or a new query.
func (s *Session) MatchCount() int {
	if s.matchDirty {
		s.matchCount = s.buf.CountMatches(s.search.query)
		s.matchDirty = false
	}
	return s.matchCount
}

// Wrote reports whether the file was written recently, with the time left
// before the notice clears.
func (s *Session) Wrote() (bool, time.Duration) {
	return s.wrote.Active(), s.wrote.Remaining()
}

func (s *Session) Status() (string, bool) {
	return s.status, s.statusErr
}
