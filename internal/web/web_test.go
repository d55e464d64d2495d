// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdesk/langdesk/internal/auth"
	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/config"
	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/imaging"
	"github.com/langdesk/langdesk/internal/middleware"
	"github.com/langdesk/langdesk/internal/model"
	"github.com/langdesk/langdesk/internal/session"
	"github.com/langdesk/langdesk/internal/store"
	"github.com/langdesk/langdesk/internal/translation"
	"github.com/langdesk/langdesk/internal/version"
)

const testPassword = "correct-horse-battery"

func TestMain(m *testing.M) {
	if err := i18n.Init(slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeBackend is an in-memory stand-in for the content backend.
type fakeBackend struct {
	mu           sync.Mutex
	translations map[string]map[string]string // lang -> key -> value
	menu         []model.MenuItem
	blocks       []model.FooterBlock
	tabs         []model.Tab
	requests     []string // method+path log, mutations only
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		translations: map[string]map[string]string{"ru": {}, "en": {}},
	}
}

func (b *fakeBackend) record(r *http.Request) {
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /languages", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"code":"ru","name":"Russian","enabled":true},{"code":"en","name":"English","enabled":true}]`))
	})
	mux.HandleFunc("GET /translations", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.translations)
	})
	mux.HandleFunc("POST /translations", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.record(r)
		var items []backend.KeyValues
		_ = json.NewDecoder(r.Body).Decode(&items)
		for _, item := range items {
			for lang, v := range item.Values {
				if b.translations[lang] == nil {
					b.translations[lang] = map[string]string{}
				}
				b.translations[lang][item.Key] = v
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PATCH /translations", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.record(r)
		var req struct {
			Items []backend.Cell `json:"items"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, c := range req.Items {
			b.translations[c.Lang][c.Key] = c.Value
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /translations", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.record(r)
		var req struct {
			Keys []string `json:"keys"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, k := range req.Keys {
			for lang := range b.translations {
				delete(b.translations[lang], k)
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /header-menu", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.menu == nil {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_ = json.NewEncoder(w).Encode(b.menu)
	})
	mux.HandleFunc("PATCH /header-menu", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.record(r)
		var env struct {
			JSON []model.MenuItem `json:"json"`
		}
		_ = json.NewDecoder(r.Body).Decode(&env)
		b.menu = env.JSON
		_ = json.NewEncoder(w).Encode(b.menu)
	})
	mux.HandleFunc("GET /footer", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.blocks == nil {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_ = json.NewEncoder(w).Encode(b.blocks)
	})
	mux.HandleFunc("POST /footer", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.record(r)
		var block model.FooterBlock
		_ = json.NewDecoder(r.Body).Decode(&block)
		// The backend canonicalizes the client's provisional ID
		block.ID = fmt.Sprintf("blk%d", len(b.blocks)+1)
		b.blocks = append(b.blocks, block)
		_ = json.NewEncoder(w).Encode(block)
	})
	mux.HandleFunc("PATCH /footer/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.record(r)
		var block model.FooterBlock
		_ = json.NewDecoder(r.Body).Decode(&block)
		for i := range b.blocks {
			if b.blocks[i].ID == block.ID {
				b.blocks[i] = block
			}
		}
		_ = json.NewEncoder(w).Encode(block)
	})
	mux.HandleFunc("GET /tabs", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		kind := model.TabKind(r.URL.Query().Get("type"))
		out := []model.Tab{}
		for _, t := range b.tabs {
			if t.Kind == kind {
				out = append(out, t)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	return mux
}

// testEnv is a running console with its fake backend.
type testEnv struct {
	backend *fakeBackend
	handler *Handler
	srv     *httptest.Server
	client  *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fb := newFakeBackend()
	backendSrv := httptest.NewServer(fb.handler())
	t.Cleanup(backendSrv.Close)

	db, err := store.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))

	verifier, err := auth.NewVerifier(testPassword)
	require.NoError(t, err)

	client := backend.New(backendSrv.URL, backend.StaticToken("tok"), nil)
	cfg := &config.Config{
		BackendURL:    backendSrv.URL,
		SessionSecret: "0123456789abcdef0123456789abcdef",
		Env:           "development",
		UploadsDir:    t.TempDir(),
		UILang:        "ru",
	}

	h := NewHandler(Config{
		Cfg:          cfg,
		DB:           db,
		Sessions:     session.New(db, true),
		Client:       client,
		Translations: translation.NewStore(client, nil, nil),
		Verifier:     verifier,
		Processor:    imaging.NewProcessor(cfg.UploadsDir),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Build:        version.Info{Version: "v0.0.0-test"},
	})

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		backend: fb,
		handler: h,
		srv:     srv,
		client:  &http.Client{Jar: jar},
	}
}

// doJSON issues a JSON request against the console.
func (e *testEnv) doJSON(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// login authenticates the test client.
func (e *testEnv) login(t *testing.T) {
	t.Helper()
	resp, _ := e.doJSON(t, http.MethodPost, "/login", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login must succeed")
}

// seedKey stores a key with values in the fake backend.
func (b *fakeBackend) seedKey(key string, values map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for lang, v := range values {
		if b.translations[lang] == nil {
			b.translations[lang] = map[string]string{}
		}
		b.translations[lang][key] = v
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.doJSON(t, http.MethodPost, "/login", map[string]string{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Неверный пароль", body["error"])
}

func TestAPIRequiresAuth(t *testing.T) {
	e := newTestEnv(t)

	resp, _ := e.doJSON(t, http.MethodGet, "/api/languages", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginLogoutCycle(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	resp, body := e.doJSON(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", body["operator"])
	assert.Equal(t, "ru", body["uiLang"])

	resp, _ = e.doJSON(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.doJSON(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSetUILang(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	resp, _ := e.doJSON(t, http.MethodPut, "/api/session/lang", map[string]string{"lang": "en"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := e.doJSON(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, "en", body["uiLang"])

	resp, _ = e.doJSON(t, http.MethodPut, "/api/session/lang", map[string]string{"lang": "xx"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTranslations(t *testing.T) {
	e := newTestEnv(t)
	e.backend.seedKey("headerMenu.item.a.label", map[string]string{"ru": "А", "en": "A"})
	e.login(t)

	resp, body := e.doJSON(t, http.MethodGet, "/api/translations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := body["translations"].(map[string]any)
	entry := payload["headerMenu.item.a.label"].(map[string]any)
	assert.Equal(t, "А", entry["ru"])
	assert.Equal(t, "A", entry["en"])
}

func TestCreateTranslationsRejectsBadKey(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	resp, body := e.doJSON(t, http.MethodPost, "/api/translations", []map[string]any{
		{"key": "bad key with spaces", "values": map[string]string{"ru": "x"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "bad key with spaces")
	assert.Empty(t, e.backend.requests, "invalid keys must not reach the backend")
}

func TestSuggestKey(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	q := url.Values{
		"label":      {"О нас"},
		"parent":     {"headerMenu.item.nav1"},
		"parentHref": {"/company/"},
	}
	resp, body := e.doJSON(t, http.MethodGet, "/api/translations/suggest?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "o-nas", body["token"], "Cyrillic label must transliterate")
	assert.Equal(t, "headerMenu.item.nav1.o-nas", body["key"])
	assert.Equal(t, "/company/o-nas", body["href"])

	resp, _ = e.doJSON(t, http.MethodGet, "/api/translations/suggest?label=%21%21%21", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRateLimiterThrottlesFloods(t *testing.T) {
	e := newTestEnv(t)
	e.handler.limiter = middleware.NewGlobalRateLimiter(1, 2)
	srv := httptest.NewServer(e.handler.Router())
	t.Cleanup(srv.Close)

	for range 2 {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "rate_limit_exceeded", body.Error.Code)
}

func TestSaveMenuItemFullFlow(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	item := model.NewMenuItem("nav1")
	item.Href = "/about"
	resp, body := e.doJSON(t, http.MethodPut, "/api/header-menu/items/nav1", map[string]any{
		"item": item,
		"values": map[string]map[string]string{
			item.LabelKey: {"ru": "О нас", "en": "About"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)
	assert.Equal(t, "Сохранено", body["message"])

	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	require.Len(t, e.backend.menu, 1)
	assert.Equal(t, "nav1", e.backend.menu[0].ID)
	assert.Equal(t, "О нас", e.backend.translations["ru"][item.LabelKey])

	// Keys are created before the structure is saved
	assert.Equal(t, []string{"POST /translations", "PATCH /header-menu"}, e.backend.requests)
}

func TestSaveMenuItemValidationStopsBeforeBackend(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	item := model.NewMenuItem("nav1")
	item.Href = "/about"
	resp, body := e.doJSON(t, http.MethodPut, "/api/header-menu/items/nav1", map[string]any{
		"item": item,
		"values": map[string]map[string]string{
			item.LabelKey: {"ru": "О нас"}, // en missing
		},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Обязательное поле", fields[item.LabelKey+".en"])
	assert.Empty(t, e.backend.requests, "validation failure must not mutate the backend")
}

func TestDeleteMenuItem(t *testing.T) {
	e := newTestEnv(t)
	item := model.NewMenuItem("nav1")
	item.Href = "/about"
	e.backend.menu = []model.MenuItem{*item}
	e.backend.seedKey(item.LabelKey, map[string]string{"ru": "О нас", "en": "About"})
	e.login(t)

	resp, body := e.doJSON(t, http.MethodDelete, "/api/header-menu/items/nav1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Удалено", body["message"])

	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	assert.Empty(t, e.backend.menu)
	assert.NotContains(t, e.backend.translations["ru"], item.LabelKey)
}

func TestDeleteMenuItemNotFound(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	resp, _ := e.doJSON(t, http.MethodDelete, "/api/header-menu/items/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateFooterBlockRemapsProvisionalKeys(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	block := model.NewFooterBlock("tmp-abc123")
	resp, body := e.doJSON(t, http.MethodPost, "/api/footer", map[string]any{
		"block": block,
		"values": map[string]map[string]string{
			block.TitleKey: {"ru": "Контакты", "en": "Contacts"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)

	saved := body["block"].(map[string]any)
	assert.Equal(t, "blk1", saved["id"], "backend-assigned ID wins")
	assert.Equal(t, "footer.block.blk1.title", saved["titleKey"])

	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	assert.Equal(t, "Контакты", e.backend.translations["ru"]["footer.block.blk1.title"])
	assert.NotContains(t, e.backend.translations["ru"], block.TitleKey,
		"no key may survive under the provisional ID")
}

func TestListTabsRejectsUnknownKind(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	resp, _ := e.doJSON(t, http.MethodGet, "/api/tabs?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventsListing(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	_, err := e.handler.queries.CreateEvent(t.Context(), store.CreateEventParams{
		Level:    model.EventLevelWarning,
		Category: model.EventCategoryMenu,
		Message:  "menu item saved",
		Operator: "admin",
	})
	require.NoError(t, err)

	resp, body := e.doJSON(t, http.MethodGet, "/api/events?category=menu", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	events := body["events"].([]any)
	require.Len(t, events, 1)
	assert.Equal(t, "menu item saved", events[0].(map[string]any)["message"])
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.doJSON(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotContains(t, body, "version", "unauthenticated callers get the bare status")

	e.login(t)
	_, body = e.doJSON(t, http.MethodGet, "/healthz", nil)
	assert.Contains(t, body["version"], "v0.0.0-test")
}

func TestUploadAndDeletePromo(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for x := 0; x < 800; x += 40 {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "promo.png")
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/uploads/promo", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(800), body["width"])
	id := body["id"].(string)
	src := body["src"].(string)
	assert.True(t, strings.HasPrefix(src, "/uploads/originals/"+id+"/"), "src = %q", src)

	// The uploaded original is served back
	getResp, err := e.client.Get(e.srv.URL + src)
	require.NoError(t, err)
	_ = getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	delResp, _ := e.doJSON(t, http.MethodDelete, "/api/uploads/promo/"+id, nil)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
}
