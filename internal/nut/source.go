// Package nut acquires raw UPS state from a Network UPS Tools (NUT) server.
// A sample is the flat key/value listing that `upsc` prints, e.g.
//
//	battery.charge: 100
//	ups.status: OL CHRG
//
// The package exposes the acquisition as a small port so the poll loop and
// tests can swap the real `upsc` invocation for a sample file or a fake.
package nut

import (
	"context"
	"errors"
	"strings"
)

// ErrNoData is returned when the source responded but yielded no parseable
// key/value pairs.
var ErrNoData = errors.New("nut: no key/value data in response")

// Source supplies one raw UPS sample on demand. Implementations must return
// within a bounded time (enforcing their own timeout) so the poll loop is
// never blocked indefinitely.
type Source interface {
	Fetch(ctx context.Context) (map[string]string, error)
}

// Parse converts `upsc`-style output into a key → value map. Lines without
// a colon separator (SSL banners, warnings) are ignored; keys and values are
// trimmed of surrounding whitespace.
func Parse(content string) map[string]string {
	vars := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars
}
