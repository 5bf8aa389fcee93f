package buffer

const DefaultUndoCapacity = 1024

// Entry records the value a byte held before it was overwritten.
type Entry struct {
	Offset int
	Prev   byte
}

// UndoLog is a fixed-size ring of edits. Once full, each push overwrites the
// oldest entry.
type UndoLog struct {
	entries []Entry
	head    int // next slot to write
	tail    int // oldest live entry
	count   int
}

func NewUndoLog(capacity int) *UndoLog {
	if capacity <= 0 {
		capacity = DefaultUndoCapacity
	}
	return &UndoLog{entries: make([]Entry, capacity)}
}

func (u *UndoLog) Push(offset int, prev byte) {
	u.entries[u.head] = Entry{Offset: offset, Prev: prev}
	u.head = (u.head + 1) % len(u.entries)
	if u.count == len(u.entries) {
		u.tail = (u.tail + 1) % len(u.entries)
		return
	}
	u.count++
}

func (u *UndoLog) Pop() (Entry, bool) {
	if u.count == 0 {
		return Entry{}, false
	}
	u.head = (u.head - 1 + len(u.entries)) % len(u.entries)
	u.count--
	return u.entries[u.head], true
}

// ApplyPop pops the newest entry and restores its byte in buf. The restore
// itself is not recorded.
func (u *UndoLog) ApplyPop(buf *Buffer) (Entry, bool) {
	e, ok := u.Pop()
	if !ok {
		return Entry{}, false
	}
	if err := buf.Set(e.Offset, e.Prev); err != nil {
		return Entry{}, false
	}
	return e, true
}

func (u *UndoLog) Len() int {
	return u.count
}

func (u *UndoLog) Cap() int {
	return len(u.entries)
}
