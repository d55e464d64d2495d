// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n provides internationalization support for the console UI.
// These are the console's own messages (validation errors, notifications);
// site content translations are a separate concern handled by the
// translation store.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales
var localesFS embed.FS

// Message represents a single translatable message.
type Message struct {
	ID          string `json:"id"`
	Translation string `json:"translation"`
}

// MessageFile represents the structure of a messages JSON file.
type MessageFile struct {
	Language string    `json:"language"`
	Messages []Message `json:"messages"`
}

// Catalog holds all translations for all supported console languages.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> translation
	matcher      language.Matcher
	supported    []language.Tag
	defaultLang  string
	logger       *slog.Logger
}

// catalog is the global catalog instance.
var catalog *Catalog

// SupportedLanguages lists the console UI languages we support.
var SupportedLanguages = []string{"ru", "en"}

// Init initializes the i18n system with the given logger.
func Init(logger *slog.Logger) error {
	catalog = &Catalog{
		translations: make(map[string]map[string]string),
		defaultLang:  "ru",
		logger:       logger,
	}

	tags := make([]language.Tag, 0, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		tags = append(tags, language.MustParse(lang))
	}
	catalog.supported = tags
	catalog.matcher = language.NewMatcher(tags)

	for _, lang := range SupportedLanguages {
		if err := catalog.loadLanguage(lang); err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	if logger != nil {
		logger.Info("i18n initialized", "languages", SupportedLanguages)
	}
	return nil
}

// loadLanguage loads translations for a specific language.
func (c *Catalog) loadLanguage(lang string) error {
	path := fmt.Sprintf("locales/%s/messages.json", lang)
	data, err := localesFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var msgFile MessageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.translations[lang] = make(map[string]string)
	for _, msg := range msgFile.Messages {
		c.translations[lang][msg.ID] = msg.Translation
	}
	return nil
}

// T translates a message key to the specified language.
// If the key is not found, it returns the key itself.
// Supports optional arguments for string formatting.
func T(lang, key string, args ...any) string {
	if catalog == nil {
		return key
	}

	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	langTranslations, ok := catalog.translations[lang]
	if !ok {
		langTranslations, ok = catalog.translations[catalog.defaultLang]
		if !ok {
			return key
		}
	}

	translation, ok := langTranslations[key]
	if !ok {
		if lang != catalog.defaultLang {
			if defaults, ok := catalog.translations[catalog.defaultLang]; ok {
				if translation, ok = defaults[key]; ok {
					if len(args) > 0 {
						return fmt.Sprintf(translation, args...)
					}
					return translation
				}
			}
		}
		return key
	}

	if len(args) > 0 {
		return fmt.Sprintf(translation, args...)
	}
	return translation
}

// MatchLanguage finds the best matching supported console language for an
// Accept-Language header or bare language code.
func MatchLanguage(acceptLang string) string {
	if catalog == nil {
		return "ru"
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return catalog.defaultLang
		}
		tags = []language.Tag{tag}
	}

	_, idx, _ := catalog.matcher.Match(tags...)
	if idx >= 0 && idx < len(catalog.supported) {
		return catalog.supported[idx].String()
	}
	return catalog.defaultLang
}

// DefaultLanguage returns the default console UI language.
func DefaultLanguage() string {
	if catalog == nil {
		return "ru"
	}
	return catalog.defaultLang
}

// IsSupported checks if a language code is supported for the console UI.
func IsSupported(lang string) bool {
	lang = strings.ToLower(lang)
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}
