package session

import (
	"time"

	"bytedit/internal/buffer"
)

// Search keeps the committed query and the offset of the last hit. Both
// directions search relative to the last hit, not to the cursor.
type Search struct {
	query []byte
	last  int

	NoEarlier Flash
	NoLater   Flash
}

func NewSearch() Search {
	return Search{last: -1}
}

func (s *Search) Query() string {
	return string(s.query)
}

func (s *Search) LastMatch() (int, bool) {
	return s.last, s.last >= 0
}

// Commit replaces the query and forgets the previous hit.
func (s *Search) Commit(query []byte) {
	s.query = append([]byte(nil), query...)
	s.last = -1
	s.NoEarlier.Clear()
	s.NoLater.Clear()
}

// Next finds the first occurrence after the last hit, or from the start of
// the buffer if there is none yet.
func (s *Search) Next(buf *buffer.Buffer, warn time.Duration) (int, bool) {
	if len(s.query) == 0 {
		return -1, false
	}

	start := 0
	if s.last >= 0 {
		start = s.last + 1
	}

	pos := buf.Find(s.query, start)
	if pos < 0 {
		s.NoLater.Raise(warn)
		return -1, false
	}
	s.hit(pos)
	return pos, true
}

// Prev finds the last occurrence before the last hit.
func (s *Search) Prev(buf *buffer.Buffer, warn time.Duration) (int, bool) {
	if len(s.query) == 0 {
		return -1, false
	}
	if s.last < 0 {
		s.NoEarlier.Raise(warn)
		return -1, false
	}

	pos := buf.FindLast(s.query, s.last)
	if pos < 0 {
		s.NoEarlier.Raise(warn)
		return -1, false
	}
	s.hit(pos)
	return pos, true
}

func (s *Search) hit(pos int) {
	s.last = pos
	s.NoEarlier.Clear()
	s.NoLater.Clear()
}
