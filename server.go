package lineecho

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server owns the listening socket. It hands out one Conn per accepted
// peer; the listener stays open until Close.
type Server struct {
	listener net.Listener
	logger   Logger
	opts     options
}

// Listen resolves cfg as a passive endpoint and listens on the first
// candidate that binds. Every resolved candidate is logged first.
func Listen(ctx context.Context, cfg Config, opt ...Option) (*Server, error) {
	opts := newOptions(opt...)

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: ErrResolution, Op: "config", Err: err}
	}

	candidates, err := opts.resolver.Resolve(ctx, cfg.Host, cfg.Service, true)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		opts.logger.Info("available address", "addr", c.Addr.String(), "port", c.Port, "family", c.Family.String())
	}

	e := establisher{sys: opts.sys, logger: opts.logger}
	ln, c, err := e.listen(candidates)
	if err != nil {
		return nil, err
	}

	opts.logger.Info("server listening", "addr", Describe(ln.Addr()), "candidate", c.String())
	return &Server{
		listener: ln,
		logger:   opts.logger,
		opts:     opts,
	}, nil
}

// Accept blocks until a peer connects and returns its connection.
func (s *Server) Accept() (*Conn, error) {
	raw, err := s.listener.Accept()
	if err != nil {
		return nil, &Error{Kind: ErrAccept, Op: "accept", Err: err}
	}

	s.logger.Info("got a connection", "addr", Describe(raw.RemoteAddr()))
	return newConnWithOptions(raw, s.opts), nil
}

// ServeOne accepts a single peer, echoes one message back to it and
// closes the connection. Canceling ctx unblocks a pending accept or
// exchange, in which case ctx.Err() is returned.
func (s *Server) ServeOne(ctx context.Context) ([]byte, error) {
	s.setDeadline(time.Time{})

	var (
		mu   sync.Mutex
		conn *Conn
		done = make(chan struct{})
	)

	var group errgroup.Group
	group.Go(func() error {
		select {
		case <-ctx.Done():
			s.logger.Debug("serve canceled", "addr", s.Addr())
			s.setDeadline(time.Now())
			mu.Lock()
			if conn != nil {
				conn.abort()
			}
			mu.Unlock()
		case <-done:
		}
		return nil
	})

	var (
		msg []byte
		err error
	)
	group.Go(func() error {
		defer close(done)

		c, acceptErr := s.Accept()
		if acceptErr != nil {
			err = acceptErr
			return nil
		}
		defer c.Close()

		mu.Lock()
		conn = c
		mu.Unlock()
		if ctx.Err() != nil {
			c.abort()
		}

		msg, err = c.Echo()
		return nil
	})
	_ = group.Wait()

	if err != nil && ctx.Err() != nil {
		return msg, ctx.Err()
	}
	return msg, err
}

func (s *Server) setDeadline(t time.Time) {
	if dl, ok := s.listener.(interface{ SetDeadline(time.Time) error }); ok {
		_ = dl.SetDeadline(t)
	}
}

// Close stops the server by closing the underlying listener.
// Any blocked Accept call will return with an error.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Addr returns the listener's network address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
