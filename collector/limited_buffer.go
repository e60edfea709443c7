package collector

import (
	"bytes"
)

// LimitedBuffer keeps at most limit bytes and remembers whether anything was dropped.
// Writes never fail so it can sit behind an io.TeeReader without disturbing the reader.
type LimitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

// NewLimitedBuffer creates a new LimitedBuffer with the given size limit.
func NewLimitedBuffer(limit int) *LimitedBuffer {
	return &LimitedBuffer{limit: limit}
}

// Write implements io.Writer and always reports len(p) bytes written.
func (b *LimitedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buf.Len()
	switch {
	case remaining <= 0:
		if len(p) > 0 {
			b.truncated = true
		}
	case len(p) > remaining:
		b.buf.Write(p[:remaining])
		b.truncated = true
	default:
		b.buf.Write(p)
	}
	return len(p), nil
}

// Truncated reports whether data beyond the limit was dropped.
func (b *LimitedBuffer) Truncated() bool {
	return b.truncated
}

// Len returns the number of kept bytes.
func (b *LimitedBuffer) Len() int {
	return b.buf.Len()
}

// String returns the kept bytes.
func (b *LimitedBuffer) String() string {
	return b.buf.String()
}
