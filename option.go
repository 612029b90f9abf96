package lineecho

import (
	"time"
)

// options holds the configuration shared by clients, servers and connections.
type options struct {
	logger   Logger
	resolver Resolver
	sys      socketAPI

	capacity int           // receive buffer size, delimiter included
	timeout  time.Duration // per-operation deadline, zero means none
}

// Option is a function that configures options.
type Option func(*options)

// LoggerOption returns an Option that sets the logger.
// If not set, the default slog logger will be used.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// MessageMaxSize returns an Option that sets the receive buffer size.
// A message longer than this, delimiter included, ends in ErrBufferExhausted.
func MessageMaxSize(size int) Option {
	return func(o *options) {
		o.capacity = size
	}
}

// TimeoutOption returns an Option that bounds every send and receive with
// a deadline. By default operations block until the peer acts.
func TimeoutOption(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// ResolverOption returns an Option that replaces the resolver used by
// Dial and Listen.
func ResolverOption(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

func withSocketAPI(sys socketAPI) Option {
	return func(o *options) {
		o.sys = sys
	}
}

func newOptions(opt ...Option) options {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)
	return opts
}

// checkOptions sets default values for unset options.
func checkOptions(opts *options) {
	if opts.capacity <= 0 {
		opts.capacity = DefaultCapacity
	}

	if opts.timeout < 0 {
		opts.timeout = 0
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	if opts.resolver == nil {
		opts.resolver = NetResolver{}
	}

	if opts.sys == nil {
		opts.sys = sysSockets{}
	}
}
