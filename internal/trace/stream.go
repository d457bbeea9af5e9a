package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer formats each event as it arrives. File outputs are buffered
// and flushed on Flush/Close; stderr is written through so a crash loses
// nothing.
type StreamTracer struct {
	leveled
	format Format
	mu     sync.Mutex
	out    io.Writer
	buf    *bufio.Writer // nil for standard streams
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{leveled: leveled{level}, format: format, out: w}
	if !isStdStream(w) {
		t.buf = bufio.NewWriter(w)
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.accepts(ev) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// tracing never fails a run
	if t.buf != nil {
		_, _ = t.buf.Write(data)
	} else {
		_, _ = t.out.Write(data)
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf != nil {
		return t.buf.Flush()
	}
	return nil
}

// Close flushes and closes the output unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.out.(io.Closer); ok && !isStdStream(t.out) {
		return closer.Close()
	}
	return nil
}
