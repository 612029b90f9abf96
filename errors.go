package lineecho

import "errors"

// Setup failures. Any of these ends the process with a non-zero status.
var (
	// ErrResolution is returned when a host/service pair yields no usable candidate.
	ErrResolution = errors.New("address resolution failed")
	// ErrNoReachableEndpoint is returned when no candidate accepted a connect.
	ErrNoReachableEndpoint = errors.New("no reachable endpoint")
	// ErrNoBindableEndpoint is returned when no candidate could be bound.
	ErrNoBindableEndpoint = errors.New("no bindable endpoint")
	// ErrSocketOption is returned when the listening socket cannot be made reusable.
	ErrSocketOption = errors.New("socket option failed")
	// ErrListen is returned when a bound socket refuses to listen.
	ErrListen = errors.New("listen failed")
	// ErrAccept is returned when accepting the inbound connection fails.
	ErrAccept = errors.New("accept failed")
)

// Exchange failures. These end the current exchange but not the process.
var (
	// ErrSend is returned when the transport rejects a write.
	ErrSend = errors.New("send failed")
	// ErrReceive is returned when the transport rejects a read.
	ErrReceive = errors.New("receive failed")
	// ErrPeerClosedEarly is returned when the peer stops accepting or
	// producing bytes before a full message went through.
	ErrPeerClosedEarly = errors.New("peer closed early")
	// ErrBufferExhausted is returned when the receive buffer filled up
	// without the delimiter showing up as the last byte.
	ErrBufferExhausted = errors.New("receive buffer exhausted")
)

// Error records a failed protocol step together with its cause.
// errors.Is matches both Kind and Err.
type Error struct {
	Kind error  // one of the Err* values above
	Op   string // step that failed, e.g. "send" or "listen"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsFatal reports whether err is a setup failure that should end the process.
func IsFatal(err error) bool {
	for _, kind := range []error{
		ErrResolution,
		ErrNoReachableEndpoint,
		ErrNoBindableEndpoint,
		ErrSocketOption,
		ErrListen,
		ErrAccept,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
