// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package keypath provides pure functions for deriving, validating and
// slugifying hierarchical translation keys and the hrefs derived from them.
//
// Translation keys are dot-segmented strings (e.g. "headerMenu.item3.label").
// Child keys are always built by appending a token to the parent key, so a
// key's ancestry is recoverable from its prefix.
package keypath

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Separator joins key segments.
const Separator = "."

var (
	// tokenRegex is the unified key token grammar. The source system used
	// two grammars for the same concept (one case-sensitive, one not); we
	// accept the permissive form everywhere and lowercase on generation.
	tokenRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

	// labelStrip removes everything a key token may not contain.
	labelStrip = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// Slug returns the last dot segment of key, lower-cased.
// It is the short human token used when deriving hrefs.
func Slug(key string) string {
	if idx := strings.LastIndex(key, Separator); idx >= 0 {
		key = key[idx+1:]
	}
	return strings.ToLower(key)
}

// ChildKey derives a child key from a parent key and a label token.
// A label that already starts with the parent key is treated as fully
// qualified and returned unchanged, which makes ChildKey idempotent:
// ChildKey(p, ChildKey(p, l)) == ChildKey(p, l).
func ChildKey(parent, label string) string {
	if parent == "" {
		return label
	}
	if strings.HasPrefix(label, parent) {
		return label
	}
	return parent + Separator + label
}

// IsDescendant reports whether key is parent itself or a dot-descendant
// of parent.
func IsDescendant(parent, key string) bool {
	if key == parent {
		return true
	}
	return strings.HasPrefix(key, parent+Separator)
}

// InheritHref derives an href for a child node from its parent's href and
// the child's key. The key suggestion endpoint uses it to propose a link
// target when the operator left the href field blank; the console applies
// the same rule client-side while the operator types.
func InheritHref(parentHref, childKey string) string {
	if parentHref == "" {
		return "/" + Slug(childKey)
	}
	return strings.TrimSuffix(parentHref, "/") + "/" + Slug(childKey)
}

// IsValidToken reports whether s is a valid key token or dotted key.
func IsValidToken(s string) bool {
	return tokenRegex.MatchString(s)
}

// IsValidHref reports whether s is acceptable as a link target.
// Absolute URLs, rooted paths, bare paths, query strings and fragments are
// all accepted: menu entries routinely point at anchors and filtered lists,
// so the policy is deliberately permissive.
func IsValidHref(s string) bool {
	if s == "" {
		return false
	}
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		return true
	}
	switch s[0] {
	case '/', '?', '#':
		return true
	}
	// Bare relative path: no spaces, parseable.
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	_, err := url.Parse(s)
	return err == nil
}

// LabelToken converts free operator text into a key token: transliterate
// to ASCII, lowercase, collapse everything outside the token grammar into
// single hyphens.
func LabelToken(label string) string {
	s := unidecode.Unidecode(label)
	s = strings.ToLower(strings.TrimSpace(s))
	s = labelStrip.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	return s
}
