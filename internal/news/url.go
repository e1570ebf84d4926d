package news

import "net/url"

// Normalize canonicalizes a raw link to its stable identity key by dropping
// the query string and fragment. Parse failures return the input unchanged
// so normalization never fails the caller. The result doubles as the stored
// canonical link.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	normalized := u.String()
	if normalized == "" {
		return raw
	}
	return normalized
}
