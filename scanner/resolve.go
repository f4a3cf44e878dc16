package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrResolution indicates the target host could not be resolved to any address.
var ErrResolution = errors.New("could not resolve host")

// Family is the address family of a resolved target.
type Family int

const (
	IPv4 Family = iota + 1
	IPv6
)

// Network returns the dial network for the family.
func (f Family) Network() string {
	switch f {
	case IPv4:
		return "tcp4"
	case IPv6:
		return "tcp6"
	default:
		return "tcp"
	}
}

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// ResolvedTarget is the single address a scan runs against.
type ResolvedTarget struct {
	Family  Family
	Address string
}

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Resolve returns one address for host, preferring the first IPv4 result.
func Resolve(ctx context.Context, resolver Resolver, host string) (ResolvedTarget, error) {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return ResolvedTarget{}, fmt.Errorf("%w %s: %w", ErrResolution, host, err)
	}
	if len(addrs) == 0 {
		return ResolvedTarget{}, fmt.Errorf("%w %s: no addresses found", ErrResolution, host)
	}

	for _, addr := range addrs {
		if v4 := addr.IP.To4(); v4 != nil {
			return ResolvedTarget{Family: IPv4, Address: v4.String()}, nil
		}
	}

	first := addrs[0]
	if first.IP == nil {
		return ResolvedTarget{}, fmt.Errorf("%w %s: empty address", ErrResolution, host)
	}
	address := first.IP.String()
	if first.Zone != "" {
		address += "%" + first.Zone
	}
	return ResolvedTarget{Family: IPv6, Address: address}, nil
}
