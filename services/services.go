// Package services maps TCP port numbers to well-known service names.
package services

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Unknown is returned for ports without a registered name.
const Unknown = "unknown"

// SystemFile is the conventional location of the services database.
const SystemFile = "/etc/services"

var wellKnown = map[int]string{
	7:     "echo",
	9:     "discard",
	13:    "daytime",
	20:    "ftp-data",
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	37:    "time",
	43:    "whois",
	53:    "domain",
	69:    "tftp",
	70:    "gopher",
	79:    "finger",
	80:    "http",
	88:    "kerberos",
	110:   "pop3",
	111:   "sunrpc",
	113:   "auth",
	119:   "nntp",
	123:   "ntp",
	135:   "epmap",
	137:   "netbios-ns",
	138:   "netbios-dgm",
	139:   "netbios-ssn",
	143:   "imap2",
	161:   "snmp",
	162:   "snmp-trap",
	179:   "bgp",
	194:   "irc",
	389:   "ldap",
	443:   "https",
	445:   "microsoft-ds",
	465:   "submissions",
	514:   "shell",
	515:   "printer",
	587:   "submission",
	631:   "ipp",
	636:   "ldaps",
	873:   "rsync",
	993:   "imaps",
	995:   "pop3s",
	1080:  "socks",
	1433:  "ms-sql-s",
	1521:  "ncube-lm",
	1723:  "pptp",
	2049:  "nfs",
	3306:  "mysql",
	3389:  "ms-wbt-server",
	5432:  "postgresql",
	5672:  "amqp",
	5900:  "vnc",
	6379:  "redis",
	6667:  "ircd",
	8080:  "http-alt",
	8443:  "https-alt",
	9418:  "git",
	11211: "memcache",
	27017: "mongodb",
}

// Table is a port to service-name lookup. The zero value is not usable; use New.
type Table struct {
	names map[int]string
}

// New returns a table seeded with the built-in well-known TCP services.
func New() *Table {
	names := make(map[int]string, len(wellKnown))
	for port, name := range wellKnown {
		names[port] = name
	}
	return &Table{names: names}
}

// Name returns the service registered for port, or Unknown.
func (t *Table) Name(port int) string {
	if name, ok := t.names[port]; ok && name != "" {
		return name
	}
	return Unknown
}

// Len returns the number of registered ports.
func (t *Table) Len() int {
	return len(t.names)
}

// LoadFile merges the tcp entries of a services(5) file into the table, overriding
// built-in names. It returns the number of entries added.
func (t *Table) LoadFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot open services file %s: %w", path, err)
	}
	defer file.Close()

	added := 0
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		name, port, ok, err := parseLine(scanner.Text())
		if err != nil {
			return added, fmt.Errorf("%s:%d: %w", path, lineNum, err)
		}
		if !ok {
			continue
		}
		t.names[port] = name
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, fmt.Errorf("error reading services file: %w", err)
	}
	return added, nil
}

// parseLine parses "name port/proto [aliases...] [# comment]". ok is false for
// blank lines, comments and non-tcp entries.
func parseLine(line string) (string, int, bool, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", 0, false, nil
	}
	if len(fields) < 2 {
		return "", 0, false, fmt.Errorf("missing port/protocol in %q", line)
	}

	portProto := strings.SplitN(fields[1], "/", 2)
	if len(portProto) != 2 {
		return "", 0, false, fmt.Errorf("invalid port/protocol %q", fields[1])
	}
	port, err := strconv.Atoi(portProto[0])
	if err != nil || port < 1 || port > 65535 {
		return "", 0, false, fmt.Errorf("invalid port %q", portProto[0])
	}
	if !strings.EqualFold(portProto[1], "tcp") {
		return "", 0, false, nil
	}
	return fields[0], port, true, nil
}
