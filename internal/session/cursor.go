package session

const BytesPerRow = 16

// Cursor is an offset into a buffer of fixed length plus the index of the
// topmost visible row. The offset always stays in [0, length-1].
type Cursor struct {
	offset   int
	viewport int
	rows     int
	length   int
}

func NewCursor(length int) Cursor {
	return Cursor{length: length, rows: 1}
}

func (c *Cursor) Offset() int   { return c.offset }
func (c *Cursor) Viewport() int { return c.viewport }
func (c *Cursor) Rows() int     { return c.rows }
func (c *Cursor) Row() int      { return c.offset / BytesPerRow }

func (c *Cursor) lastRow() int {
	return (c.length - 1) / BytesPerRow
}

// MoveTo sets the offset if it lies inside the buffer. Otherwise the cursor is
// left alone and false is returned.
func (c *Cursor) MoveTo(offset int) bool {
	if offset < 0 || offset >= c.length {
		return false
	}
	c.offset = offset
	c.follow()
	return true
}

func (c *Cursor) MoveBy(delta int) bool {
	return c.MoveTo(c.offset + delta)
}

func (c *Cursor) RowStart() {
	c.offset = c.clamp(c.offset - c.offset%BytesPerRow)
	c.follow()
}

func (c *Cursor) RowEnd() {
	c.offset = c.clamp(c.offset + (BytesPerRow - 1 - c.offset%BytesPerRow))
	c.follow()
}

// Page scrolls one screen in dir (negative is up). Cursor and viewport move
// by the same amount and are clamped to the buffer.
func (c *Cursor) Page(dir int) {
	if dir == 0 {
		return
	}
	step := 1
	if dir < 0 {
		step = -1
	}

	c.offset = c.clamp(c.offset + step*c.rows*BytesPerRow)

	c.viewport += step * c.rows
	if c.viewport > c.lastRow() {
		c.viewport = c.lastRow()
	}
	if c.viewport < 0 {
		c.viewport = 0
	}
	c.follow()
}

// SetRows updates the number of visible rows and keeps the cursor on screen.
func (c *Cursor) SetRows(rows int) {
	if rows < 1 {
		rows = 1
	}
	c.rows = rows
	c.follow()
}

func (c *Cursor) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > c.length-1 {
		return c.length - 1
	}
	return offset
}

func (c *Cursor) follow() {
	row := c.Row()
	if row < c.viewport {
		c.viewport = row
	} else if row >= c.viewport+c.rows {
		c.viewport = row - c.rows + 1
	}
}
