// Package frontend works out which web frontend a request came from so that
// confirmation links point back at it.
package frontend

import (
	"net/http"
	"net/url"
	"strings"
)

// Source names the header or setting a frontend URL was taken from.
type Source string

const (
	SourceOrigin   Source = "origin"
	SourceReferer  Source = "referer"
	SourceFallback Source = "fallback"
)

// Resolver picks the frontend base URL for a request. Header values are only
// used when they name an allowed origin; "*" allows any.
type Resolver struct {
	fallback string
	anyHost  bool
	allowed  map[string]struct{}
}

// NewResolver returns a Resolver for the given CORS allowlist. An empty
// allowlist admits nothing, so every link uses fallback.
func NewResolver(fallback string, allowedOrigins []string) *Resolver {
	r := &Resolver{fallback: fallback, allowed: make(map[string]struct{})}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			r.anyHost = true
			continue
		}
		if o != "" {
			r.allowed[strings.ToLower(o)] = struct{}{}
		}
	}
	return r
}

// Fallback is the configured frontend URL.
func (res *Resolver) Fallback() string { return res.fallback }

// Detect returns the frontend base URL for r. An allowed Origin header wins,
// then the scheme and host of an allowed Referer, then the fallback.
func (res *Resolver) Detect(r *http.Request) (string, Source) {
	if origin := r.Header.Get("Origin"); origin != "" && origin != "null" && res.allows(origin) {
		return origin, SourceOrigin
	}
	if ref := r.Header.Get("Referer"); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
			if base := u.Scheme + "://" + u.Host; res.allows(base) {
				return base, SourceReferer
			}
		}
	}
	return res.fallback, SourceFallback
}

func (res *Resolver) allows(origin string) bool {
	if res.anyHost {
		return true
	}
	_, ok := res.allowed[strings.ToLower(origin)]
	return ok
}

// ConfirmationURL builds the link embedded in confirmation emails.
func ConfirmationURL(base, code, kind string) string {
	q := url.Values{}
	q.Set("code", code)
	q.Set("type", kind)
	return base + "/confirm?" + q.Encode()
}
