// Package cookieslot stores slots as cookies in an http.CookieJar.
//
// Every slot is one cookie named "<prefix>_<location>_<index>". Blob bytes
// that are valid RFC 6265 cookie octets, '=' and '&' included, are stored
// as is; every other byte and '%' becomes a %XX escape. An ASCII blob
// without spaces, quotes, commas, semicolons or backslashes therefore
// occupies exactly its estimated size. Each UTF-8 byte of a non-ASCII rune
// takes three wire bytes, so such blobs can exceed the estimate. Locations
// without a configured lifetime produce session cookies; locations with
// one produce persistent cookies.
//
// The fingerprint is the jar's cookie header for the bound URL, the same
// signal a browser script sees in document.cookie, so cookies set by a
// server response in between two engine calls are detected.
//
// The medium is meant for embedding the engine in an HTTP client or a
// WebAssembly host that owns the jar. The slotkv command does not offer it
// as a backend: a jar lives only as long as the process that holds it.
package cookieslot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/slotkv/internal/core/domain"
	"github.com/yndnr/slotkv/internal/storage/slot"
)

// DefaultPrefix is the cookie name prefix.
const DefaultPrefix = "slotkv"

// Medium is a slot.Medium over an http.CookieJar.
type Medium struct {
	jar       http.CookieJar
	url       *url.URL
	prefix    string
	path      string
	lifetimes map[string]time.Duration
	now       func() time.Time
}

// Option configures a Medium.
type Option func(*Medium)

// WithPrefix sets the cookie name prefix.
func WithPrefix(prefix string) Option {
	return func(m *Medium) {
		m.prefix = prefix
	}
}

// WithLifetime makes slots of location persistent cookies expiring after ttl.
func WithLifetime(location string, ttl time.Duration) Option {
	return func(m *Medium) {
		m.lifetimes[location] = ttl
	}
}

// WithPath sets the cookie path. Default: "/".
func WithPath(path string) Option {
	return func(m *Medium) {
		m.path = path
	}
}

// New creates a cookie medium bound to u. A nil jar or URL yields a medium
// whose Ping reports domain.ErrMediumUnavailable.
func New(jar http.CookieJar, u *url.URL, opts ...Option) *Medium {
	m := &Medium{
		jar:       jar,
		url:       u,
		prefix:    DefaultPrefix,
		path:      "/",
		lifetimes: make(map[string]time.Duration),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Medium) cookieName(location string, index int) string {
	return m.prefix + "_" + slot.Name(location, index)
}

// Ping implements slot.Medium.
func (m *Medium) Ping(_ context.Context) error {
	if m.jar == nil {
		return domain.ErrMediumUnavailable.WithDetails("no cookie jar")
	}
	if m.url == nil || m.url.Host == "" {
		return domain.ErrMediumUnavailable.WithDetails("cookie url has no host")
	}
	return nil
}

// Store implements slot.Medium.
func (m *Medium) Store(ctx context.Context, location string, index int, blob string) error {
	if err := m.Ping(ctx); err != nil {
		return err
	}
	m.jar.SetCookies(m.url, []*http.Cookie{m.cookie(location, index, blob)})
	return nil
}

func (m *Medium) cookie(location string, index int, blob string) *http.Cookie {
	c := &http.Cookie{
		Name:  m.cookieName(location, index),
		Value: escapeValue(blob),
		Path:  m.path,
	}
	if ttl, ok := m.lifetimes[location]; ok && ttl > 0 {
		c.Expires = m.now().Add(ttl)
		c.MaxAge = int(ttl / time.Second)
	}
	return c
}

func (m *Medium) expired(name string) *http.Cookie {
	return &http.Cookie{Name: name, Path: m.path, MaxAge: -1}
}

// Rewrite implements slot.Rewriter. The new slots and the removal of the
// surplus ones go to the jar in a single SetCookies call.
func (m *Medium) Rewrite(ctx context.Context, location string, blobs []string) error {
	if err := m.Ping(ctx); err != nil {
		return err
	}
	batch := make([]*http.Cookie, 0, len(blobs))
	for i, blob := range blobs {
		batch = append(batch, m.cookie(location, i, blob))
	}
	for _, c := range m.jar.Cookies(m.url) {
		name, ok := strings.CutPrefix(c.Name, m.prefix+"_")
		if !ok {
			continue
		}
		if loc, idx, ok := slot.ParseName(name); ok && loc == location && idx >= len(blobs) {
			batch = append(batch, m.expired(c.Name))
		}
	}
	if len(batch) > 0 {
		m.jar.SetCookies(m.url, batch)
	}
	return nil
}

// Load implements slot.Medium.
func (m *Medium) Load(ctx context.Context, location string, index int) (string, bool, error) {
	if err := m.Ping(ctx); err != nil {
		return "", false, err
	}
	name := m.cookieName(location, index)
	for _, c := range m.jar.Cookies(m.url) {
		if c.Name != name {
			continue
		}
		blob, err := url.PathUnescape(c.Value)
		if err != nil {
			return "", false, domain.ErrMediumIO.WithCause(fmt.Errorf("cookie %s: %w", name, err))
		}
		return blob, true, nil
	}
	return "", false, nil
}

// Remove implements slot.Medium.
func (m *Medium) Remove(ctx context.Context, location string, index int) error {
	if err := m.Ping(ctx); err != nil {
		return err
	}
	m.jar.SetCookies(m.url, []*http.Cookie{m.expired(m.cookieName(location, index))})
	return nil
}

// CountOccupied implements slot.Medium. Every cookie visible at the URL
// counts, including ones this package did not write, because browsers cap
// cookies per domain regardless of who set them.
func (m *Medium) CountOccupied(ctx context.Context) (int, error) {
	if err := m.Ping(ctx); err != nil {
		return 0, err
	}
	return len(m.jar.Cookies(m.url)), nil
}

// Fingerprint implements slot.Medium.
func (m *Medium) Fingerprint(ctx context.Context) (string, error) {
	if err := m.Ping(ctx); err != nil {
		return "", err
	}
	cookies := m.jar.Cookies(m.url)
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; "), nil
}

const upperhex = "0123456789ABCDEF"

// escapeValue percent-encodes the bytes of blob that are not cookie octets.
// url.PathUnescape reverses it.
func escapeValue(blob string) string {
	n := 0
	for i := 0; i < len(blob); i++ {
		if !plainOctet(blob[i]) {
			n++
		}
	}
	if n == 0 {
		return blob
	}
	var b strings.Builder
	b.Grow(len(blob) + 2*n)
	for i := 0; i < len(blob); i++ {
		c := blob[i]
		if plainOctet(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

// plainOctet reports whether c is an RFC 6265 cookie-octet other than '%'.
func plainOctet(c byte) bool {
	switch {
	case c <= 0x20 || c >= 0x7f:
		return false
	case c == '"', c == ',', c == ';', c == '\\', c == '%':
		return false
	}
	return true
}
