package javaruntime

import (
	"net"
	"net/url"
	"slices"
	"strings"
)

// rewriteURLs builds the candidate list for a download: the URL with
// its host swapped for each alternate host in order, followed by the
// original URL unless one of the rewrites already equals it. A bare
// hostname keeps the original port; a "host:port" value replaces both.
// Without alternate hosts the original URL is the only candidate.
func rewriteURLs(rawURL string, hosts []string) []string {
	if len(hosts) == 0 {
		return []string{rawURL}
	}

	candidates := make([]string, 0, len(hosts)+1)

	for _, host := range hosts {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			continue
		}

		if port := parsed.Port(); port != "" && !strings.Contains(host, ":") {
			parsed.Host = net.JoinHostPort(host, port)
		} else {
			parsed.Host = host
		}

		candidates = append(candidates, parsed.String())
	}

	if !slices.Contains(candidates, rawURL) {
		candidates = append(candidates, rawURL)
	}

	return candidates
}
