package scanner

import (
	"context"
	"errors"
	"net"
	"testing"
)

type fakeResolver struct {
	addrs []net.IPAddr
	err   error
}

func (f fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	return f.addrs, f.err
}

func ipAddrs(values ...string) []net.IPAddr {
	out := make([]net.IPAddr, 0, len(values))
	for _, v := range values {
		out = append(out, net.IPAddr{IP: net.ParseIP(v)})
	}
	return out
}

func TestResolve_PrefersIPv4(t *testing.T) {
	resolver := fakeResolver{addrs: ipAddrs("2001:db8::1", "192.0.2.10", "192.0.2.11")}
	target, err := Resolve(context.Background(), resolver, "dual.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Family != IPv4 || target.Address != "192.0.2.10" {
		t.Fatalf("got %+v want ipv4 192.0.2.10", target)
	}
}

func TestResolve_FallsBackToFirstAddress(t *testing.T) {
	resolver := fakeResolver{addrs: ipAddrs("2001:db8::2", "2001:db8::3")}
	target, err := Resolve(context.Background(), resolver, "v6only.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Family != IPv6 || target.Address != "2001:db8::2" {
		t.Fatalf("got %+v want ipv6 2001:db8::2", target)
	}
}

func TestResolve_KeepsZone(t *testing.T) {
	resolver := fakeResolver{addrs: []net.IPAddr{{IP: net.ParseIP("fe80::1"), Zone: "eth0"}}}
	target, err := Resolve(context.Background(), resolver, "fe80::1%eth0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Address != "fe80::1%eth0" {
		t.Fatalf("got %q want fe80::1%%eth0", target.Address)
	}
}

func TestResolve_Errors(t *testing.T) {
	cases := map[string]fakeResolver{
		"lookup error": {err: errors.New("no such host")},
		"no addresses": {},
	}
	for name, resolver := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve(context.Background(), resolver, "missing.example")
			if !errors.Is(err, ErrResolution) {
				t.Fatalf("expected ErrResolution, got %v", err)
			}
		})
	}
}

func TestResolve_LiteralIPv4(t *testing.T) {
	target, err := Resolve(context.Background(), nil, "127.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Family != IPv4 || target.Address != "127.0.0.1" {
		t.Fatalf("got %+v", target)
	}
}

func TestFamilyNetwork(t *testing.T) {
	if IPv4.Network() != "tcp4" || IPv6.Network() != "tcp6" {
		t.Fatalf("unexpected networks %s %s", IPv4.Network(), IPv6.Network())
	}
}
