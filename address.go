package lineecho

import (
	"net"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

// Family is the address family of a candidate endpoint.
type Family int

const (
	FamilyUnspecified Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unspecified"
	}
}

// domain maps the family to its socket domain, or -1 if it has none.
func (f Family) domain() int {
	switch f {
	case FamilyIPv4:
		return unix.AF_INET
	case FamilyIPv6:
		return unix.AF_INET6
	default:
		return -1
	}
}

// Address is a numeric host address. The only implementations are
// IPv4Address and IPv6Address.
type Address interface {
	Family() Family
	// String returns the numeric host form used in diagnostics.
	String() string
	sockaddr(port int) unix.Sockaddr
}

// IPv4Address is a 4-byte IPv4 host address.
type IPv4Address [4]byte

func (a IPv4Address) Family() Family { return FamilyIPv4 }

func (a IPv4Address) String() string { return netip.AddrFrom4([4]byte(a)).String() }

func (a IPv4Address) sockaddr(port int) unix.Sockaddr {
	return &unix.SockaddrInet4{Port: port, Addr: [4]byte(a)}
}

// IPv6Address is a 16-byte IPv6 host address with an optional zone.
type IPv6Address struct {
	IP   [16]byte
	Zone string
}

func (a IPv6Address) Family() Family { return FamilyIPv6 }

func (a IPv6Address) String() string {
	return netip.AddrFrom16(a.IP).WithZone(a.Zone).String()
}

func (a IPv6Address) sockaddr(port int) unix.Sockaddr {
	return &unix.SockaddrInet6{Port: port, ZoneId: zoneIndex(a.Zone), Addr: a.IP}
}

func zoneIndex(zone string) uint32 {
	if zone == "" {
		return 0
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n)
	}
	ifi, err := net.InterfaceByName(zone)
	if err != nil {
		return 0
	}
	return uint32(ifi.Index)
}

// AddressOf converts ip into an Address. IPv4-mapped IPv6 addresses are
// reported as IPv4. It returns nil for an invalid ip.
func AddressOf(ip netip.Addr) Address {
	switch {
	case !ip.IsValid():
		return nil
	case ip.Is4() || ip.Is4In6():
		return IPv4Address(ip.Unmap().As4())
	default:
		return IPv6Address{IP: ip.As16(), Zone: ip.Zone()}
	}
}

const unknownAddr = "<unknown>"

// Describe returns the numeric host of addr for logging. It never fails:
// anything it cannot interpret is rendered as "<unknown>".
func Describe(addr net.Addr) string {
	if addr == nil {
		return unknownAddr
	}

	var ip netip.Addr
	switch a := addr.(type) {
	case *net.TCPAddr:
		ip, _ = netip.AddrFromSlice(a.IP)
		ip = ip.WithZone(a.Zone)
	case *net.UDPAddr:
		ip, _ = netip.AddrFromSlice(a.IP)
		ip = ip.WithZone(a.Zone)
	case *net.IPAddr:
		ip, _ = netip.AddrFromSlice(a.IP)
		ip = ip.WithZone(a.Zone)
	default:
		ap, err := netip.ParseAddrPort(addr.String())
		if err != nil {
			return unknownAddr
		}
		ip = ap.Addr()
	}

	if a := AddressOf(ip); a != nil {
		return a.String()
	}
	return unknownAddr
}
