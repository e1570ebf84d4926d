package news

import (
	"net/url"
	"strings"
)

// Default hosts rejected before any fetch attempt: video and social
// platforms whose markup yields no usable article text.
var defaultBlockedDomains = []string{
	"youtube.com",
	"twitter.com",
	"x.com",
	"facebook.com",
}

// Blocklist matches hosts against exact entries and their subdomains.
type Blocklist struct {
	exact map[string]struct{}
}

// NewBlocklist builds a matcher from the given domain patterns. Entries are
// lowercased and trimmed; empty entries are dropped. A "*." or "." prefix is
// accepted and equivalent to the bare domain since subdomains always match.
func NewBlocklist(domains []string) *Blocklist {
	b := &Blocklist{exact: make(map[string]struct{})}
	for _, raw := range domains {
		value := strings.TrimSpace(strings.ToLower(raw))
		value = strings.TrimPrefix(value, "*.")
		value = strings.TrimPrefix(value, ".")
		if value == "" {
			continue
		}
		b.exact[value] = struct{}{}
	}
	return b
}

// DefaultBlocklist returns the built-in social/video blocklist.
func DefaultBlocklist() *Blocklist {
	return NewBlocklist(defaultBlockedDomains)
}

// DefaultBlockedDomains returns a copy of the built-in blocked domain set,
// for callers that extend it with configured entries.
func DefaultBlockedDomains() []string {
	return append([]string(nil), defaultBlockedDomains...)
}

// Blocks reports whether the link's host matches a blocked domain or one of
// its subdomains. Unparseable links are not blocked; the fetch path rejects
// them on its own terms.
func (b *Blocklist) Blocks(link string) bool {
	if b == nil || len(b.exact) == 0 {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for domain := range b.exact {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
