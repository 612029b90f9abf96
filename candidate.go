package lineecho

import (
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// Candidate is one resolved endpoint eligible for connect or bind.
type Candidate struct {
	Family     Family
	SocketType int
	Protocol   int
	Addr       Address
	Port       int
}

// NewCandidate returns a TCP stream candidate for ip and port.
// ok is false when ip is not a valid address.
func NewCandidate(ip netip.Addr, port int) (c Candidate, ok bool) {
	addr := AddressOf(ip)
	if addr == nil {
		return Candidate{}, false
	}
	return Candidate{
		Family:     addr.Family(),
		SocketType: unix.SOCK_STREAM,
		Protocol:   unix.IPPROTO_TCP,
		Addr:       addr,
		Port:       port,
	}, true
}

func (c Candidate) String() string {
	if c.Addr == nil {
		return net.JoinHostPort(unknownAddr, strconv.Itoa(c.Port))
	}
	return net.JoinHostPort(c.Addr.String(), strconv.Itoa(c.Port))
}

// sockaddr returns the raw socket address, or nil if the candidate
// carries no address or its family does not match the address.
func (c Candidate) sockaddr() unix.Sockaddr {
	if c.Addr == nil || c.Addr.Family() != c.Family {
		return nil
	}
	return c.Addr.sockaddr(c.Port)
}
