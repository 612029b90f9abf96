package lineecho

import (
	"context"
)

// Dial resolves cfg and connects to the first reachable candidate.
// Candidates are tried in resolver order; the ones that fail are logged
// and skipped. If none connects the error matches ErrNoReachableEndpoint.
func Dial(ctx context.Context, cfg Config, opt ...Option) (*Conn, error) {
	opts := newOptions(opt...)

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: ErrResolution, Op: "config", Err: err}
	}

	candidates, err := opts.resolver.Resolve(ctx, cfg.Host, cfg.Service, false)
	if err != nil {
		return nil, err
	}

	e := establisher{sys: opts.sys, logger: opts.logger}
	raw, c, err := e.connect(candidates)
	if err != nil {
		return nil, err
	}

	opts.logger.Info("client connected", "addr", c.Addr.String(), "port", c.Port, "family", c.Family.String())
	return newConnWithOptions(raw, opts), nil
}
