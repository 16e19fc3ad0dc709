package stdio

import (
	"bytes"
	"iter"
)

// LineBuffer splits a byte stream into newline-terminated records. It holds
// exactly the bytes received so far that have not been emitted as part of a
// complete line. The zero value is ready to use. A LineBuffer is not safe for
// concurrent use.
type LineBuffer struct {
	pending []byte
}

// Feed appends chunk to the buffer and returns the lines it completes. Lines
// are trimmed of surrounding whitespace; blank lines are dropped. The sequence
// is lazy: lines are removed from the buffer only as they are yielded, so a
// consumer that stops early leaves the rest for the next Feed. Yielded slices
// are owned by the caller.
func (b *LineBuffer) Feed(chunk []byte) iter.Seq[[]byte] {
	b.pending = append(b.pending, chunk...)
	return func(yield func([]byte) bool) {
		off := 0
		defer func() { b.compact(off) }()
		for {
			i := bytes.IndexByte(b.pending[off:], '\n')
			if i < 0 {
				return
			}
			line := bytes.TrimSpace(b.pending[off : off+i])
			off += i + 1
			if len(line) == 0 {
				continue
			}
			if !yield(bytes.Clone(line)) {
				return
			}
		}
	}
}

// Pending returns a copy of the bytes not yet emitted as a line.
func (b *LineBuffer) Pending() []byte {
	return bytes.Clone(b.pending)
}

// Len returns the number of bytes not yet emitted as a line.
func (b *LineBuffer) Len() int {
	return len(b.pending)
}

// Reset discards any partial record.
func (b *LineBuffer) Reset() {
	b.pending = b.pending[:0]
}

func (b *LineBuffer) compact(off int) {
	if off == 0 {
		return
	}
	n := copy(b.pending, b.pending[off:])
	b.pending = b.pending[:n]
}
