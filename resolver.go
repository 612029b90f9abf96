package lineecho

import (
	"context"
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

// Resolver turns a host and service into an ordered list of candidates.
// passive selects wildcard addresses for an empty host, the way a server
// asks for addresses to bind to.
type Resolver interface {
	Resolve(ctx context.Context, host, service string, passive bool) ([]Candidate, error)
}

// NetResolver resolves through a *net.Resolver, net.DefaultResolver if nil.
type NetResolver struct {
	Resolver *net.Resolver
}

// Resolve implements Resolver.
func (r NetResolver) Resolve(ctx context.Context, host, service string, passive bool) ([]Candidate, error) {
	res := r.Resolver
	if res == nil {
		res = net.DefaultResolver
	}

	port, err := res.LookupPort(ctx, "tcp", service)
	if err != nil {
		return nil, &Error{Kind: ErrResolution, Op: "lookup port", Err: err}
	}

	var ips []netip.Addr
	switch {
	case host == "" && passive:
		ips = []netip.Addr{netip.IPv4Unspecified(), netip.IPv6Unspecified()}
	case host == "":
		ips = []netip.Addr{netip.AddrFrom4([4]byte{127, 0, 0, 1}), netip.IPv6Loopback()}
	default:
		ips, err = res.LookupNetIP(ctx, "ip", host)
		if err != nil {
			return nil, &Error{Kind: ErrResolution, Op: "lookup host", Err: err}
		}
	}

	candidates := make([]Candidate, 0, len(ips))
	for _, ip := range ips {
		if c, ok := NewCandidate(ip, port); ok {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, &Error{
			Kind: ErrResolution,
			Op:   "lookup host",
			Err:  errors.Errorf("no usable address for %q", host),
		}
	}
	return candidates, nil
}

// StaticResolver always yields the same candidates, whatever is asked.
type StaticResolver []Candidate

// Resolve implements Resolver.
func (r StaticResolver) Resolve(context.Context, string, string, bool) ([]Candidate, error) {
	if len(r) == 0 {
		return nil, &Error{Kind: ErrResolution, Op: "lookup host", Err: errors.New("no static candidates")}
	}
	return append([]Candidate(nil), r...), nil
}
