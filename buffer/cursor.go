package buffer

// Cursor is a forward-only reader over a received packet. Each protocol
// consumes its header from the front and leaves the rest for the layer above
//
// Consumed views alias the packet and stay valid only as long as it does
type Cursor struct {
	v   View
	off int
}

// NewCursor returns a cursor positioned at the start of v
func NewCursor(v View) *Cursor {
	return &Cursor{v: v}
}

// Consume returns the next n bytes and advances past them. When fewer than n
// bytes remain it returns false and the cursor does not move
func (c *Cursor) Consume(n int) (View, bool) {
	if n < 0 || n > c.Remaining() {
		return nil, false
	}

	// Cap the view so the caller can't grow it into bytes it didn't consume
	v := c.v[c.off : c.off+n : c.off+n]
	c.off += n

	return v, true
}

// Remaining returns the number of bytes not consumed yet
func (c *Cursor) Remaining() int {
	return len(c.v) - c.off
}

// Offset returns how many bytes have been consumed
func (c *Cursor) Offset() int {
	return c.off
}

// Rewind moves the cursor back to an offset previously returned by Offset.
// It panics if off is ahead of the current position
func (c *Cursor) Rewind(off int) {
	if off < 0 || off > c.off {
		panic("buffer: rewind past the read position")
	}
	c.off = off
}

// Rest returns the bytes that have not been consumed, without consuming them
func (c *Cursor) Rest() View {
	return c.v[c.off:]
}
