package scanner

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxBannerLength is the number of characters of a banner kept in a report.
const MaxBannerLength = 100

// OpenPort is one line of the open-port report.
type OpenPort struct {
	Port    int    `json:"port"`
	Service string `json:"service"`
	Banner  string `json:"banner,omitempty"`
}

// ServiceLookup maps a port to a service name.
type ServiceLookup func(port int) string

// Aggregate keeps the open outcomes, orders them by port and annotates each with
// its service name and banner snippet.
func Aggregate(outcomes []ScanOutcome, lookup ServiceLookup) []OpenPort {
	report := make([]OpenPort, 0)
	for _, outcome := range outcomes {
		if !outcome.Open {
			continue
		}
		entry := OpenPort{Port: outcome.Port, Banner: BannerSnippet(outcome.Banner)}
		if lookup != nil {
			entry.Service = lookup(outcome.Port)
		}
		report = append(report, entry)
	}

	sort.Slice(report, func(i, j int) bool {
		return report[i].Port < report[j].Port
	})
	return report
}

// BannerSnippet decodes a captured banner for display: invalid UTF-8 is replaced,
// line breaks become spaces, surrounding whitespace is trimmed and the text is cut
// to MaxBannerLength characters.
func BannerSnippet(banner []byte) string {
	if len(banner) == 0 {
		return ""
	}

	text := strings.ToValidUTF8(string(banner), string(utf8.RuneError))
	text = strings.NewReplacer("\r", " ", "\n", " ").Replace(text)
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > MaxBannerLength {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:MaxBannerLength]))
	}
	return text
}

// FormatOpenPort renders a report entry as a single text line.
func FormatOpenPort(entry OpenPort) string {
	line := fmt.Sprintf("%5d/tcp  open  %s", entry.Port, entry.Service)
	if entry.Banner != "" {
		line += "  |  banner: " + entry.Banner
	}
	return line
}
