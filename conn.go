// Package lineecho implements a newline-framed request/response exchange
// over TCP. A server accepts one connection, reads a single message and
// echoes it back; a client sends a message and reads the reply.
// Messages end with a single delimiter byte and may arrive in any number
// of fragments.
package lineecho

import (
	"errors"
	"net"
	"sync/atomic"
	"time"
)

// ErrConnectionClosed is returned when operating on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// tracedConn logs the size of every read and write on the wrapped conn.
type tracedConn struct {
	net.Conn
	logger Logger
}

func (t *tracedConn) Read(p []byte) (int, error) {
	n, err := t.Conn.Read(p)
	if n > 0 {
		t.logger.Debug("read bytes", "addr", t.RemoteAddr(), "n", n)
	}
	return n, err
}

func (t *tracedConn) Write(p []byte) (int, error) {
	n, err := t.Conn.Write(p)
	if n > 0 {
		t.logger.Debug("bytes sent", "addr", t.RemoteAddr(), "n", n)
	}
	return n, err
}

// Conn is one established connection. It is owned by a single goroutine:
// reads and writes happen one direction at a time.
type Conn struct {
	rawConn net.Conn
	traced  *tracedConn
	logger  Logger

	opts options

	closed atomic.Bool
}

// NewConn wraps an already connected net.Conn.
func NewConn(conn net.Conn, opt ...Option) *Conn {
	return newConnWithOptions(conn, newOptions(opt...))
}

func newConnWithOptions(c net.Conn, opts options) *Conn {
	return &Conn{
		rawConn: c,
		traced:  &tracedConn{Conn: c, logger: opts.logger},
		logger:  opts.logger,
		opts:    opts,
	}
}

// Send writes msg in full. See SendAll for the meaning of the results.
func (c *Conn) Send(msg []byte) (int, error) {
	if c.closed.Load() {
		return 0, ErrConnectionClosed
	}
	c.armDeadline()

	n, err := SendAll(c.traced, msg)
	if err != nil {
		c.logger.Warn("send stopped", "addr", c.Addr(), "sent", n, "len", len(msg), "error", err)
	}
	return n, err
}

// Receive reads one delimiter-terminated message. See ReceiveUntilDelimiter
// for the meaning of the results.
func (c *Conn) Receive() ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}
	c.armDeadline()

	msg, err := ReceiveUntilDelimiter(c.traced, c.opts.capacity)
	if err != nil {
		c.logger.Warn("receive stopped", "addr", c.Addr(), "received", len(msg), "error", err)
	}
	return msg, err
}

// Exchange performs the client side of a round trip: it sends msg and
// then reads the reply. The reply is not read if the send did not complete.
func (c *Conn) Exchange(msg []byte) ([]byte, error) {
	if _, err := c.Send(msg); err != nil {
		return nil, err
	}
	return c.Receive()
}

// Echo performs the server side of a round trip: it reads one message and
// writes exactly those bytes back. A message cut short by the peer closing
// or by the buffer filling up is still echoed, and the receive error is
// returned once the echo is done. A failed read is not echoed.
func (c *Conn) Echo() ([]byte, error) {
	msg, recvErr := c.Receive()
	if recvErr != nil && !errors.Is(recvErr, ErrPeerClosedEarly) && !errors.Is(recvErr, ErrBufferExhausted) {
		return msg, recvErr
	}

	n, sendErr := c.Send(msg)
	if sendErr != nil {
		return msg[:n], sendErr
	}
	return msg, recvErr
}

// Close closes the connection. Safe to call multiple times.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.rawConn.Close()
}

// IsClosed returns true if the connection has been closed.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Addr returns the remote address of the connection.
func (c *Conn) Addr() net.Addr {
	return c.rawConn.RemoteAddr()
}

// LocalAddr returns the local address of the connection.
func (c *Conn) LocalAddr() net.Addr {
	return c.rawConn.LocalAddr()
}

// abort makes any blocked read or write return immediately.
func (c *Conn) abort() {
	_ = c.rawConn.SetDeadline(time.Now())
}

func (c *Conn) armDeadline() {
	if c.opts.timeout <= 0 {
		return
	}
	_ = c.rawConn.SetDeadline(time.Now().Add(c.opts.timeout))
}
