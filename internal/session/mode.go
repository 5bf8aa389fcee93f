package session

// Mode is one of HexNav, AsciiInsert, SearchEntry or GotoEntry. Each variant
// carries only the state it needs.
type Mode interface {
	Name() string
	isMode()
}

// HexNav is the initial mode. pending is set between the two digits of a hex
// byte entry, so a half-written byte can only exist in this mode.
type HexNav struct {
	pending bool
}

func (m HexNav) Pending() bool { return m.pending }

type AsciiInsert struct{}

type SearchEntry struct {
	query []byte
}

func (m SearchEntry) Text() string { return string(m.query) }

type GotoEntry struct {
	input []byte
}

func (m GotoEntry) Text() string { return string(m.input) }

func (HexNav) Name() string      { return "HEX" }
func (AsciiInsert) Name() string { return "ASCII" }
func (SearchEntry) Name() string { return "SEARCH" }
func (GotoEntry) Name() string   { return "GOTO" }

func (HexNav) isMode()      {}
func (AsciiInsert) isMode() {}
func (SearchEntry) isMode() {}
func (GotoEntry) isMode()   {}

// Panel selects which grid edits apply to.
type Panel int

const (
	PanelHex Panel = iota
	PanelASCII
)

func (p Panel) String() string {
	if p == PanelASCII {
		return "ascii"
	}
	return "hex"
}

// appendBounded returns a fresh slice so mode values never share storage.
func appendBounded(b []byte, c byte, limit int) []byte {
	if len(b) >= limit {
		return b
	}
	out := make([]byte, len(b), len(b)+1)
	copy(out, b)
	return append(out, c)
}

func dropLast(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	return append([]byte(nil), b[:len(b)-1]...)
}
