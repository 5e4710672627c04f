// Package provider holds shared pieces of the source adapters. Each
// concrete provider lives in its own subpackage and implements a subset of
// the capability interfaces in models. Adapters never let provider-level
// failures escape as panics; every failure surfaces as an error the
// aggregator degrades to absent/empty.
package provider

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound means the provider answered but had no data for the symbol.
var ErrNotFound = errors.New("no data for symbol")

// ErrNotConfigured means the provider has no credentials and never
// participates in fan-out. Treated identically to a provider failure.
var ErrNotConfigured = errors.New("provider credentials not configured")

// ArticleID derives a stable article identity for deduplication: the URL
// when present, else title plus publication time.
func ArticleID(url, title string, publishedAt time.Time) string {
	seed := url
	if seed == "" {
		seed = fmt.Sprintf("%s|%d", title, publishedAt.Unix())
	}
	id := base64.StdEncoding.EncodeToString([]byte(seed))
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}
