// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import "github.com/sardap/voting-systems/cache"

// cacheSetter is implemented by handlers that can memoize a computed result
// snapshot. A nil *cache.Cache (the default) just disables caching.
type cacheSetter interface {
	setCache(*cache.Cache)
}

// Option configures a handler constructor. Passing no Option, or
// WithCache(nil), leaves caching disabled.
type Option func(cacheSetter)

// WithCache enables read-through/write-through result-snapshot caching on a
// handler. c may be nil, in which case the handler behaves as if the option
// were never passed.
func WithCache(c *cache.Cache) Option {
	return func(h cacheSetter) {
		h.setCache(c)
	}
}

func applyOptions(h cacheSetter, opts []Option) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
}
