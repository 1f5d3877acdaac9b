package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a URL cannot be parsed or uses a
// scheme the crawler does not speak.
var ErrInvalidURL = errors.New("invalid URL")

// NormalizeURL returns the canonical form of a URL. The canonical form
// is the identity key for a page throughout a research session: the
// frontier seen-set, the link graph, and the index all key on it.
//
// Normalization rules:
//   - scheme and host are lowercased
//   - default ports are stripped (:80 for http, :443 for https)
//   - the fragment is removed (it never changes server content)
//   - an empty path becomes "/" so example.com and example.com/ collide
//
// The function is idempotent: NormalizeURL(NormalizeURL(u)) yields the
// same string as NormalizeURL(u).
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}

	u.Host = strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// Domain returns the host part of a normalized URL, used as the key for
// per-domain pacing and policy caching. It returns an empty string for
// unparsable input; callers that only handle normalized URLs can ignore
// that case.
func Domain(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return ""
	}
	return u.Host
}
