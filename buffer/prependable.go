package buffer

// Prependable is a buffer that grows backwards, that is, more data can be
// prepended to it. It is used to build outbound packets: the payload is
// appended at the back and every protocol on the way down adds its own header
// in front of what the layer above produced
type Prependable struct {
	// buf is the buffer backing the prependable. The used bytes are
	// buf[usedIdx:]
	buf View

	// usedIdx is the index where the used part of the buffer begins
	usedIdx int
}

// NewPrependable allocates a new prependable buffer with "size" bytes of
// headroom available for prepending
func NewPrependable(size int) *Prependable {
	return &Prependable{buf: NewView(size), usedIdx: size}
}

// Prepend reserves the requested space in front of the buffer, returning a
// slice that represents the reserved space. It returns nil if there isn't
// enough headroom left
func (p *Prependable) Prepend(size int) []byte {
	if size < 0 || size > p.usedIdx {
		return nil
	}

	p.usedIdx -= size
	return p.buf[p.usedIdx:][:size:size]
}

// Append copies b to the back of the buffer. Append may move the buffer, so
// slices returned by earlier Prepend calls must not be written after it
func (p *Prependable) Append(b []byte) {
	p.buf = append(p.buf, b...)
}

// View returns a View of the used part of the buffer
func (p *Prependable) View() View {
	return p.buf[p.usedIdx:]
}

// UsedLength returns the number of bytes used so far
func (p *Prependable) UsedLength() int {
	return len(p.buf) - p.usedIdx
}

// AvailableLength returns the headroom left for prepending
func (p *Prependable) AvailableLength() int {
	return p.usedIdx
}
