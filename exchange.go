package lineecho

import (
	"errors"
	"io"
)

var errBadCount = errors.New("writer reported an invalid byte count")

// SendAll writes msg to w, retrying with the unsent suffix until every
// byte has been accepted. It returns the number of bytes written.
//
// A write that accepts zero bytes without an error ends the loop with
// ErrPeerClosedEarly. A write error ends it with an *Error of kind ErrSend.
// In both cases the returned count is exact, so the caller knows which
// prefix of msg reached the transport.
func SendAll(w io.Writer, msg []byte) (int, error) {
	sent := 0
	for sent < len(msg) {
		n, err := w.Write(msg[sent:])
		if n < 0 || n > len(msg)-sent {
			return sent, &Error{Kind: ErrSend, Op: "send", Err: errBadCount}
		}
		sent += n

		if err != nil {
			return sent, &Error{Kind: ErrSend, Op: "send", Err: err}
		}
		if n == 0 {
			return sent, ErrPeerClosedEarly
		}
	}
	return sent, nil
}

// ReceiveUntilDelimiter reads from r until the most recently received byte
// is the delimiter, the peer closes, a read fails or capacity bytes have
// been accumulated. The accumulated bytes are returned in every case.
// A non-positive capacity means DefaultCapacity.
func ReceiveUntilDelimiter(r io.Reader, capacity int) ([]byte, error) {
	fr := NewFrameReader(r, capacity)
	return fr.Run()
}

// State is the position of a FrameReader in its receive cycle.
type State int

const (
	// StateFilling means the frame is incomplete and more reads are needed.
	StateFilling State = iota
	// StateComplete means the last received byte was the delimiter.
	StateComplete
	// StatePeerClosed means the stream ended before a delimiter.
	StatePeerClosed
	// StateFailed means a read returned an error.
	StateFailed
	// StateExhausted means the buffer filled up without a delimiter.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateFilling:
		return "filling"
	case StateComplete:
		return "complete"
	case StatePeerClosed:
		return "peer_closed"
	case StateFailed:
		return "failed"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// FrameReader accumulates one delimiter-terminated frame into a buffer of
// fixed capacity. Every state other than StateFilling is terminal.
type FrameReader struct {
	r     io.Reader
	buf   []byte
	n     int // write cursor, always <= len(buf)
	state State
	err   error
}

// NewFrameReader returns a FrameReader reading from r into a fresh buffer.
func NewFrameReader(r io.Reader, capacity int) *FrameReader {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FrameReader{r: r, buf: make([]byte, capacity)}
}

// Step performs one read into the unfilled suffix of the buffer and
// returns the resulting state. Calling Step in a terminal state is a no-op.
func (f *FrameReader) Step() State {
	if f.state != StateFilling {
		return f.state
	}

	n, err := f.r.Read(f.buf[f.n:])
	if n < 0 || n > len(f.buf)-f.n {
		f.state, f.err = StateFailed, &Error{Kind: ErrReceive, Op: "receive", Err: errBadCount}
		return f.state
	}
	f.n += n

	// Only the latest byte counts, and only after a read that produced one.
	if n > 0 && f.buf[f.n-1] == Delimiter {
		f.state = StateComplete
		return f.state
	}

	switch {
	case errors.Is(err, io.EOF), err == nil && n == 0:
		f.state, f.err = StatePeerClosed, ErrPeerClosedEarly
	case err != nil:
		f.state, f.err = StateFailed, &Error{Kind: ErrReceive, Op: "receive", Err: err}
	case f.n == len(f.buf):
		f.state, f.err = StateExhausted, ErrBufferExhausted
	}
	return f.state
}

// Run steps until a terminal state and returns the accumulated bytes
// together with the error matching that state (nil for StateComplete).
func (f *FrameReader) Run() ([]byte, error) {
	for f.Step() == StateFilling {
	}
	return f.Bytes(), f.err
}

// State returns the current state.
func (f *FrameReader) State() State { return f.state }

// Bytes returns the bytes accumulated so far. The slice aliases the
// internal buffer.
func (f *FrameReader) Bytes() []byte { return f.buf[:f.n] }

// Capacity returns the size of the buffer.
func (f *FrameReader) Capacity() int { return len(f.buf) }

// Err returns the error of a terminal state, or nil.
func (f *FrameReader) Err() error { return f.err }
