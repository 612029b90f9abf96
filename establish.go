package lineecho

import (
	"net"

	"github.com/pkg/errors"
)

// backlog is the number of pending connections the listening socket queues.
const backlog = 10

// establisher walks resolved candidates in order until one of them yields
// a connected or listening socket. Failed attempts are closed before the
// next candidate is tried, so at most one descriptor is open on return.
type establisher struct {
	sys    socketAPI
	logger Logger
}

// connect returns a connection to the first reachable candidate.
func (e *establisher) connect(candidates []Candidate) (net.Conn, Candidate, error) {
	for _, c := range candidates {
		sa := c.sockaddr()
		if sa == nil {
			e.logger.Warn("skipping candidate", "candidate", c.String(), "family", c.Family.String())
			continue
		}

		fd, err := e.sys.Socket(c.Family.domain(), c.SocketType, c.Protocol)
		if err != nil {
			e.logger.Warn("failed to create socket", "candidate", c.String(), "error", err)
			continue
		}

		if err = e.sys.Connect(fd, sa); err != nil {
			e.close(fd)
			e.logger.Warn("failed to connect", "candidate", c.String(), "error", err)
			continue
		}

		conn, err := e.sys.FileConn(fd)
		if err != nil {
			return nil, c, &Error{Kind: ErrNoReachableEndpoint, Op: "adopt socket", Err: err}
		}
		return conn, c, nil
	}

	return nil, Candidate{}, errors.WithMessagef(ErrNoReachableEndpoint, "%d candidates tried", len(candidates))
}

// listen returns a listener on the first bindable candidate. Failing to
// set SO_REUSEADDR or to listen after a successful bind is fatal: no
// further candidates are tried.
func (e *establisher) listen(candidates []Candidate) (net.Listener, Candidate, error) {
	for _, c := range candidates {
		sa := c.sockaddr()
		if sa == nil {
			e.logger.Warn("skipping candidate", "candidate", c.String(), "family", c.Family.String())
			continue
		}

		fd, err := e.sys.Socket(c.Family.domain(), c.SocketType, c.Protocol)
		if err != nil {
			e.logger.Warn("failed to create socket", "candidate", c.String(), "error", err)
			continue
		}

		if err = e.sys.SetReuseAddr(fd); err != nil {
			e.close(fd)
			return nil, c, &Error{Kind: ErrSocketOption, Op: "set reuse address", Err: err}
		}

		if err = e.sys.Bind(fd, sa); err != nil {
			e.close(fd)
			e.logger.Warn("failed to bind", "candidate", c.String(), "error", err)
			continue
		}

		if err = e.sys.Listen(fd, backlog); err != nil {
			e.close(fd)
			return nil, c, &Error{Kind: ErrListen, Op: "listen", Err: err}
		}

		ln, err := e.sys.FileListener(fd)
		if err != nil {
			return nil, c, &Error{Kind: ErrListen, Op: "adopt socket", Err: err}
		}
		return ln, c, nil
	}

	return nil, Candidate{}, errors.WithMessagef(ErrNoBindableEndpoint, "%d candidates tried", len(candidates))
}

func (e *establisher) close(fd int) {
	if err := e.sys.Close(fd); err != nil {
		e.logger.Debug("close error", "fd", fd, "error", err)
	}
}
