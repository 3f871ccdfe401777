package sitemap

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrInvalidLoc = errors.New("invalid sitemap loc")

var duplicateSlashes = regexp.MustCompile(`/{2,}`)

// Normalizer canonicalizes candidate paths and turns them into locs
type Normalizer struct {
	site          *url.URL
	siteBase      string // scheme://host[/path] without trailing slash
	base          string // "" or "/prefix"
	trailingSlash bool
}

// NewNormalizer creates a normalizer. The site URL may be nil,
// in which case locs are base-relative.
func NewNormalizer(site *url.URL, base string, trailingSlash bool) *Normalizer {

	n := &Normalizer{
		site:          site,
		base:          cleanBase(base),
		trailingSlash: trailingSlash,
	}

	if site != nil {
		u := url.URL{Scheme: site.Scheme, Host: site.Host, Path: strings.TrimSuffix(site.Path, "/")}
		n.siteBase = u.String()
	}

	return n
}

func cleanBase(base string) string {
	base = strings.Trim(duplicateSlashes.ReplaceAllString(base, "/"), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

// Base returns the path prefix applied to every path
func (n *Normalizer) Base() string {
	return n.base
}

// Normalize canonicalizes a raw candidate.
// Root-relative and same-site absolute inputs become a root-relative path
// carrying the base prefix once and the trailing slash policy.
// Absolute inputs on another host are returned as they are.
// Normalize(Normalize(p)) == Normalize(p).
func (n *Normalizer) Normalize(raw string) (string, error) {

	if raw == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidLoc)
	}

	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidLoc, raw)
	}

	if strings.IndexFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}) >= 0 {
		return "", fmt.Errorf("%w: '%s' contains whitespace", ErrInvalidLoc, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLoc, err)
	}

	if u.Scheme != "" || u.Host != "" {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("%w: unsupported scheme in '%s'", ErrInvalidLoc, raw)
		}

		if u.Host == "" {
			return "", fmt.Errorf("%w: missing host in '%s'", ErrInvalidLoc, raw)
		}

		if n.site == nil || !strings.EqualFold(u.Host, n.site.Host) {
			return raw, nil
		}
	}

	p := u.EscapedPath()
	if n.site != nil && u.Host != "" {
		// Same site, the site's own path is re-added when building the loc
		sitePath := strings.TrimSuffix(n.site.EscapedPath(), "/")
		if sitePath != "" && (p == sitePath || strings.HasPrefix(p, sitePath+"/")) {
			p = strings.TrimPrefix(p, sitePath)
		}
	}

	p = n.withBase(cleanPath(p))
	p = n.applyTrailingSlash(p)

	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}

	return p, nil
}

// Loc normalizes a raw candidate and returns its absolute URL
func (n *Normalizer) Loc(raw string) (string, error) {

	p, err := n.Normalize(raw)
	if err != nil {
		return "", err
	}

	if isAbsolute(p) {
		return p, nil
	}

	return n.siteBase + p, nil
}

// RoutePath returns the path used for filtering and route rule matching:
// no base prefix, no query, no trailing slash.
func (n *Normalizer) RoutePath(normalized string) string {

	p := normalized
	if isAbsolute(p) {
		if u, err := url.Parse(p); err == nil {
			p = u.EscapedPath()
		}
	}

	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}

	if n.base != "" {
		if p == n.base {
			p = "/"
		} else if strings.HasPrefix(p, n.base+"/") {
			p = strings.TrimPrefix(p, n.base)
		}
	}

	return withoutTrailingSlash(cleanPath(p))
}

// withBase prefixes the base once. A path already carrying the base,
// including the base itself, is taken as base-prefixed: with base /docs
// a route /docs is the base root, not /docs/docs.
func (n *Normalizer) withBase(p string) string {
	if n.base == "" || p == n.base || strings.HasPrefix(p, n.base+"/") {
		return p
	}
	return n.base + p
}

func (n *Normalizer) applyTrailingSlash(p string) string {

	if p == "/" {
		return p
	}

	if !n.trailingSlash {
		return withoutTrailingSlash(p)
	}

	// Files never get a trailing slash appended
	if strings.HasSuffix(p, "/") || path.Ext(path.Base(p)) != "" {
		return p
	}

	return p + "/"
}

// cleanPath collapses duplicate slashes and ensures a leading slash
func cleanPath(p string) string {
	p = duplicateSlashes.ReplaceAllString(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func withoutTrailingSlash(p string) string {
	if p == "/" {
		return p
	}
	if trimmed := strings.TrimRight(p, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}

func isAbsolute(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}
