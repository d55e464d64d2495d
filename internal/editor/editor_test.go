// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/model"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(nil); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeStore records every mutation in order so tests can assert exact
// batch contents and sequencing.
type fakeStore struct {
	existing map[string]map[string]string // key -> lang -> value

	ops        []string
	created    []backend.KeyValues
	updated    []backend.Cell
	deleted    [][]string
	failDelete bool
	failCreate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: make(map[string]map[string]string)}
}

func (f *fakeStore) put(key string, values map[string]string) {
	f.existing[key] = values
}

func (f *fakeStore) Has(key string) bool {
	_, ok := f.existing[key]
	return ok
}

func (f *fakeStore) ValueFor(key, lang string) string {
	return f.existing[key][lang]
}

func (f *fakeStore) CreateBatch(_ context.Context, items []backend.KeyValues) error {
	if len(items) == 0 {
		return nil
	}
	if f.failCreate {
		return errors.New("create rejected")
	}
	f.ops = append(f.ops, "create")
	f.created = append(f.created, items...)
	return nil
}

func (f *fakeStore) UpdateBatch(_ context.Context, cells []backend.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	f.ops = append(f.ops, "update")
	f.updated = append(f.updated, cells...)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if f.failDelete {
		return errors.New("delete rejected")
	}
	f.ops = append(f.ops, "delete")
	f.deleted = append(f.deleted, keys)
	return nil
}

func (f *fakeStore) mutations() int {
	return len(f.ops)
}

type captureNotifier struct {
	successes []string
	errors    []string
}

func (n *captureNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *captureNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

var testLangs = []model.Language{
	{Code: "ru", Name: "Russian", Enabled: true},
	{Code: "en", Name: "English", Enabled: true},
	{Code: "de", Name: "German", Enabled: false},
}

// dropdownFixture builds a dropdown item with two sub-items whose keys all
// exist in the store with values for both enabled languages.
func dropdownFixture(store *fakeStore) *model.MenuItem {
	item := model.NewMenuItem("nav1")
	_ = item.SetKind(model.MenuDropdown)
	_ = item.AddSubItem()
	item.Items[0].Href = "/catalog"
	item.Items[1].Href = "/sale"

	for _, key := range item.AllKeys() {
		store.put(key, map[string]string{"ru": "значение", "en": "value"})
	}
	return item
}

func openSession(t *testing.T, store *fakeStore, item *model.MenuItem, n Notifier, save func(context.Context, Entity) error) *Session {
	t.Helper()
	if save == nil {
		save = func(context.Context, Entity) error { return nil }
	}
	s, err := Open(context.Background(), Config{
		Store:     store,
		Notifier:  n,
		Languages: testLangs,
		Load: func(context.Context) (Entity, error) {
			return item.Clone(), nil
		},
		SaveStructure: save,
	})
	require.NoError(t, err)
	require.Equal(t, StateReady, s.State())
	return s
}

func TestOpenCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, Config{
		Store: newFakeStore(),
		Load: func(ctx context.Context) (Entity, error) {
			return model.NewMenuItem("x"), nil
		},
		SaveStructure: func(context.Context, Entity) error { return nil },
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidateMissingValue(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	s := openSession(t, store, item, nil, nil)

	// A freshly added sub-item has a key with no values anywhere.
	draft := s.Draft().(*model.MenuItem)
	require.NoError(t, draft.AddSubItem())
	draft.Items[2].Href = "/new"

	verr := s.Validate()
	require.NotNil(t, verr)
	newKey := draft.Items[2].LabelKey
	assert.Equal(t, "Обязательное поле", verr.Fields[newKey+".ru"])
	assert.Equal(t, "Обязательное поле", verr.Fields[newKey+".en"])
	assert.NotContains(t, verr.Fields, newKey+".de", "disabled language must not be validated")
	assert.Equal(t, StateReady, s.State())
}

func TestValidateHrefs(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	item.Items[0].Href = ""
	item.Items[1].Href = "no spaces allowed here"
	s := openSession(t, store, item, nil, nil)

	verr := s.Validate()
	require.NotNil(t, verr)
	assert.Equal(t, "Обязательное поле", verr.Fields["items.0.href"])
	assert.Equal(t, "Недопустимая ссылка", verr.Fields["items.1.href"])
}

func TestValidateSkipsHiddenNodes(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	item.Items[1].Href = ""
	s := openSession(t, store, item, nil, nil)

	draft := s.Draft().(*model.MenuItem)
	require.NoError(t, draft.ToggleVisible(model.Sub(1)))

	assert.Nil(t, s.Validate(), "hidden node's empty link must not block")
}

func TestSaveAbortsOnValidationWithoutNetwork(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	item.Items[0].Href = ""
	s := openSession(t, store, item, nil, nil)

	err := s.Save(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, store.mutations(), "validation failure must not reach the backend")
	assert.Equal(t, StateReady, s.State())
}

func TestSaveOrderAndBatchContents(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	notifier := &captureNotifier{}

	structureSaved := false
	s := openSession(t, store, item, notifier, func(_ context.Context, e Entity) error {
		// Translation work must be done before the structure lands.
		require.Len(t, store.ops, 3)
		structureSaved = true
		return nil
	})

	draft := s.Draft().(*model.MenuItem)
	removedKey := draft.Items[1].LabelKey
	require.NoError(t, draft.RemoveSubItem(1))
	require.NoError(t, draft.AddSubItem())
	draft.Items[1].Href = "/fresh"
	newKey := draft.Items[1].LabelKey

	require.NoError(t, s.SetValue(newKey, "ru", "Новинки"))
	require.NoError(t, s.SetValue(newKey, "en", "New"))
	require.NoError(t, s.SetValue(draft.LabelKey, "ru", "Каталог"))

	require.NoError(t, s.Save(context.Background()))
	assert.True(t, structureSaved)
	assert.Equal(t, StateClosed, s.State())

	assert.Equal(t, []string{"delete", "create", "update"}, store.ops)
	require.Len(t, store.deleted, 1)
	assert.Equal(t, []string{removedKey}, store.deleted[0])

	require.Len(t, store.created, 1)
	assert.Equal(t, newKey, store.created[0].Key)
	assert.Equal(t, map[string]string{"ru": "Новинки", "en": "New"}, store.created[0].Values)

	require.Len(t, store.updated, 1)
	assert.Equal(t, backend.Cell{Key: draft.LabelKey, Lang: "ru", Value: "Каталог"}, store.updated[0])

	assert.Equal(t, []string{"Сохранено"}, notifier.successes)
}

func TestFirstSaveWithHiddenNodeIssuesNoDelete(t *testing.T) {
	// A brand-new entity is loaded from the posted draft itself, so the
	// snapshot can hold keys that were never created on the backend. When
	// the operator hides such a node before the first save, the diff marks
	// its key deleted; the save must not ask the backend to delete it.
	store := newFakeStore()
	item := model.NewMenuItem("nav2")
	require.NoError(t, item.SetKind(model.MenuDropdown))
	require.NoError(t, item.AddSubItem())
	item.Items[0].Href = "/catalog"
	item.Items[1].Href = "/sale"

	s := openSession(t, store, item, nil, nil)

	draft := s.Draft().(*model.MenuItem)
	require.NoError(t, draft.ToggleVisible(model.Sub(1)))
	require.NoError(t, draft.ToggleVisible(model.Sub(1)))
	require.False(t, *draft.Items[1].Visible)
	hiddenKey := draft.Items[1].LabelKey

	for _, key := range draft.VisibleKeys() {
		require.NoError(t, s.SetValue(key, "ru", "значение"))
		require.NoError(t, s.SetValue(key, "en", "value"))
	}

	require.NoError(t, s.Save(context.Background()))

	assert.Equal(t, []string{"create"}, store.ops, "nothing to delete or update on a first save")
	assert.Empty(t, store.deleted)
	for _, kv := range store.created {
		assert.NotEqual(t, hiddenKey, kv.Key, "hidden node's key must not be created either")
	}
}

func TestSaveNoChangesSkipsBatches(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	s := openSession(t, store, item, nil, nil)

	require.NoError(t, s.Save(context.Background()))
	assert.Zero(t, store.mutations(), "an untouched draft produces no translation requests")
	assert.Equal(t, StateClosed, s.State())
}

func TestStructuralFailureRollsBackCreatedKeys(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	notifier := &captureNotifier{}

	s := openSession(t, store, item, notifier, func(context.Context, Entity) error {
		return errors.New("backend unavailable")
	})

	draft := s.Draft().(*model.MenuItem)
	require.NoError(t, draft.AddSubItem())
	draft.Items[2].Href = "/x"
	newKey := draft.Items[2].LabelKey
	require.NoError(t, s.SetValue(newKey, "ru", "Раздел"))
	require.NoError(t, s.SetValue(newKey, "en", "Section"))

	err := s.Save(context.Background())
	require.Error(t, err)

	// First delete is the (empty, skipped) reconciliation delete, so the
	// rollback is the only recorded delete and targets the created key.
	require.Len(t, store.deleted, 1)
	assert.Equal(t, []string{newKey}, store.deleted[0])
	assert.Equal(t, StateReady, s.State(), "rolled-back save is retryable")
	require.Len(t, notifier.errors, 1)
	assert.Contains(t, notifier.errors[0], "Не удалось сохранить")
}

func TestRollbackFailureIsPartialSave(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)

	s := openSession(t, store, item, nil, func(context.Context, Entity) error {
		// Fail structure, then make the compensating delete fail too.
		store.failDelete = true
		return errors.New("backend unavailable")
	})

	draft := s.Draft().(*model.MenuItem)
	require.NoError(t, draft.AddSubItem())
	draft.Items[2].Href = "/x"
	newKey := draft.Items[2].LabelKey
	require.NoError(t, s.SetValue(newKey, "ru", "Раздел"))
	require.NoError(t, s.SetValue(newKey, "en", "Section"))

	err := s.Save(context.Background())
	var perr *PartialSaveError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{newKey}, perr.Orphaned)
	assert.Equal(t, StateFailed, s.State())
}

func TestClosedSessionRejectsEdits(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	s := openSession(t, store, item, nil, nil)
	s.Close()

	assert.ErrorIs(t, s.SetValue("k", "ru", "v"), ErrNotReady)
	assert.ErrorIs(t, s.Save(context.Background()), ErrNotReady)
	assert.Equal(t, StateClosed, s.State())
}

func TestValueFallsThroughToStore(t *testing.T) {
	store := newFakeStore()
	item := dropdownFixture(store)
	s := openSession(t, store, item, nil, nil)

	assert.Equal(t, "значение", s.Value(item.LabelKey, "ru"))
	require.NoError(t, s.SetValue(item.LabelKey, "ru", "правка"))
	assert.Equal(t, "правка", s.Value(item.LabelKey, "ru"))
	assert.Equal(t, "value", s.Value(item.LabelKey, "en"), "untouched cell still reads the store")
}
