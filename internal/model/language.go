// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Language represents a content language enabled on the site backend.
type Language struct {
	Code    string `json:"code"`    // ISO 639-1: en, ru, uz
	Name    string `json:"name"`    // English, Russian, Uzbek
	Enabled bool   `json:"enabled"` // enabled for site content
}

// EnabledCodes returns the codes of the enabled languages, in order.
func EnabledCodes(langs []Language) []string {
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		if l.Enabled {
			codes = append(codes, l.Code)
		}
	}
	return codes
}
