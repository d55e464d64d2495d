// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/langdesk/langdesk/internal/model"
)

// KeyValues is one translation key with its full language map, used for
// batched key creation.
type KeyValues struct {
	Key    string            `json:"key"`
	Values map[string]string `json:"values"`
}

// Cell is a single (key, language) value used for batched patches.
type Cell struct {
	Key   string `json:"key"`
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// ExportOptions selects which languages an export archive includes.
type ExportOptions struct {
	Codes       []string
	EnabledOnly bool
}

// ImportFile is one uploaded translation file.
type ImportFile struct {
	Name    string
	Content io.Reader
}

// ListLanguages fetches the configured content languages.
func (c *Client) ListLanguages(ctx context.Context) ([]model.Language, error) {
	var langs []model.Language
	if err := c.do(ctx, http.MethodGet, "/languages", nil, nil, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// ListTranslations fetches the full per-language translation payload:
// language code -> key -> value.
func (c *Client) ListTranslations(ctx context.Context) (map[string]map[string]string, error) {
	payload := make(map[string]map[string]string)
	if err := c.do(ctx, http.MethodGet, "/translations", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateTranslations creates the given keys with their full language maps
// in one request.
func (c *Client) CreateTranslations(ctx context.Context, items []KeyValues) error {
	if len(items) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/translations", nil, items, nil)
}

// PatchTranslations updates individual (key, language) cells.
func (c *Client) PatchTranslations(ctx context.Context, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}
	body := struct {
		Items []Cell `json:"items"`
	}{Items: cells}
	return c.do(ctx, http.MethodPatch, "/translations", nil, body, nil)
}

// DeleteTranslations removes the given keys across all languages.
func (c *Client) DeleteTranslations(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	body := struct {
		Keys []string `json:"keys"`
	}{Keys: keys}
	return c.do(ctx, http.MethodDelete, "/translations", nil, body, nil)
}

// ExportTranslations requests an export archive. The returned reader is
// the raw archive body; the caller must close it. The filename comes from
// the Content-Disposition header when present.
func (c *Client) ExportTranslations(ctx context.Context, opts ExportOptions) (string, io.ReadCloser, error) {
	query := url.Values{}
	for _, code := range opts.Codes {
		query.Add("langKey", code)
	}
	query.Set("enabledOnly", strconv.FormatBool(opts.EnabledOnly))

	resp, err := c.send(ctx, http.MethodGet, "/translations/export", query, nil)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return "", nil, c.asRequestError(resp)
	}

	filename := "translations.zip"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}
	return filename, resp.Body, nil
}

// ImportTranslations uploads translation files and returns the merged
// per-language payload the backend accepted.
func (c *Client) ImportTranslations(ctx context.Context, files []ImportFile) (map[string]map[string]string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("building import payload: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("reading import file %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translations/import", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Status: 0, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.asRequestError(resp)
	}

	merged := make(map[string]map[string]string)
	if err := jsonDecode(resp.Body, &merged); err != nil {
		return nil, err
	}
	return merged, nil
}
