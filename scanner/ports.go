package scanner

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	minPort = 1
	maxPort = 65535
)

var (
	// ErrInvalidPortSpec indicates a token of the port specification is not a number.
	ErrInvalidPortSpec = errors.New("invalid port specification")
	// ErrNoPorts indicates the port specification selected no valid port.
	ErrNoPorts = errors.New("no valid ports specified")
)

// ParsePorts turns a specification such as "22,80,8000-8100" into an ascending,
// deduplicated list of ports. Reversed ranges are swapped and clipped to 1-65535;
// single ports outside that interval are dropped. An empty result is not an error here.
func ParsePorts(spec string) ([]int, error) {
	seen := make(map[int]struct{})

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			bounds := strings.SplitN(token, "-", 2)
			low, err := parsePortNumber(bounds[0], token)
			if err != nil {
				return nil, err
			}
			high, err := parsePortNumber(bounds[1], token)
			if err != nil {
				return nil, err
			}
			if low > high {
				low, high = high, low
			}
			low = max(low, minPort)
			high = min(high, maxPort)
			for port := low; port <= high; port++ {
				seen[port] = struct{}{}
			}
			continue
		}

		port, err := parsePortNumber(token, token)
		if err != nil {
			return nil, err
		}
		if port >= minPort && port <= maxPort {
			seen[port] = struct{}{}
		}
	}

	ports := make([]int, 0, len(seen))
	for port := range seen {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports, nil
}

func parsePortNumber(value, token string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidPortSpec, token)
	}
	return n, nil
}
