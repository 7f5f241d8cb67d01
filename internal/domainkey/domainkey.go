// Package domainkey reduces URLs and hostnames to the canonical registrable
// domain used as the key for account records.
package domainkey

import (
	"net/url"
	"regexp"
	"strings"
)

var ipv4Pattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)

// twoLevelSuffixes is a fixed table of second-level registrar labels
// (example.co.kr keeps three labels). Deliberately not a full public-suffix
// list: a small table is enough for the domains this tracker meets, at the
// cost of truncating registrants under suffixes outside the table.
var twoLevelSuffixes = map[string]struct{}{
	"co": {}, "com": {}, "net": {}, "org": {}, "edu": {},
	"gov": {}, "ac": {}, "or": {}, "ne": {}, "go": {},
}

// Normalize extracts the canonical domain from a URL or bare hostname.
// The second return is false when the input cannot be parsed; callers treat
// that as "skip this item", not as a failure.
func Normalize(hostnameOrURL string) (string, bool) {
	raw := strings.TrimSpace(hostnameOrURL)
	if raw == "" {
		return "", false
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	// Dotted-quad addresses and dotless hosts (localhost, intranet names)
	// pass through without suffix folding.
	if ipv4Pattern.MatchString(host) {
		return host, true
	}
	if !strings.Contains(host, ".") {
		return host, true
	}

	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host, true
	}

	if len(parts) >= 3 {
		if _, ok := twoLevelSuffixes[parts[len(parts)-2]]; ok {
			return strings.Join(parts[len(parts)-3:], "."), true
		}
	}

	return strings.Join(parts[len(parts)-2:], "."), true
}
