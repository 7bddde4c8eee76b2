package localstore_test

import (
	"path/filepath"
	"sort"
	"testing"

	"notevault/localstore"
	"notevault/models"
)

// setupDuckDB opens a store in a temp directory and returns a cleanup func.
func setupDuckDB(t *testing.T) (*localstore.DuckDB, string, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "vault.ddb")
	db, err := localstore.OpenDuckDB(path)
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	return db, path, func() { _ = db.Close() }
}

func TestDuckDBSaveLoadClear(t *testing.T) {
	db, _, cleanup := setupDuckDB(t)
	defer cleanup()

	if _, ok, err := db.Load(models.LocalKeyModules); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	blob := []byte(`[{"id":"1","title":"MATH","createdAt":1}]`)
	if err := db.Save(models.LocalKeyModules, blob); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := db.Load(models.LocalKeyModules)
	if err != nil || !ok || string(got) != string(blob) {
		t.Fatalf("Load returned %q ok=%v err=%v", got, ok, err)
	}

	if err := db.Save(models.LocalKeyModules, []byte("[]")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = db.Load(models.LocalKeyModules)
	if string(got) != "[]" {
		t.Errorf("expected overwritten value, got %q", got)
	}

	if err := db.Clear(models.LocalKeyModules); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := db.Load(models.LocalKeyModules); ok {
		t.Error("key still present after Clear")
	}
	if err := db.Clear("never-set"); err != nil {
		t.Errorf("clearing a missing key should succeed, got %v", err)
	}
}

func TestDuckDBPersistsAcrossReopen(t *testing.T) {
	db, path, _ := setupDuckDB(t)
	if err := db.Save(models.LocalKeyItems, []byte(`[{"id":"n"}]`)); err != nil {
		t.Fatal(err)
	}
	if err := db.Save(models.LocalKeyAuth, []byte("true")); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := localstore.OpenDuckDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	keys := reopened.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != models.LocalKeyAuth || keys[1] != models.LocalKeyItems {
		t.Errorf("unexpected keys after reopen: %v", keys)
	}
	got, ok, err := reopened.Load(models.LocalKeyItems)
	if err != nil || !ok || string(got) != `[{"id":"n"}]` {
		t.Errorf("value lost across reopen: %q ok=%v err=%v", got, ok, err)
	}
}

func TestDuckDBLoadReturnsCopy(t *testing.T) {
	db, _, cleanup := setupDuckDB(t)
	defer cleanup()

	if err := db.Save("k", []byte("abc")); err != nil {
		t.Fatal(err)
	}
	got, _, _ := db.Load("k")
	got[0] = 'z'
	again, _, _ := db.Load("k")
	if string(again) != "abc" {
		t.Errorf("caller mutation leaked into the cache: %q", again)
	}
}

func TestDuckDBBacksStore(t *testing.T) {
	db, err := localstore.OpenDuckDB("")
	if err != nil {
		t.Fatalf("in-memory open: %v", err)
	}
	defer db.Close()

	s := models.NewStore(db, nil)
	s.LoadLocal()
	cat, err := s.CreateCategory(t.Context(), models.CategoryInput{Title: "duck"})
	if err != nil {
		t.Fatal(err)
	}

	fresh := models.NewStore(db, nil)
	snap := fresh.LoadLocal()
	if len(snap.Categories) != 1 || snap.Categories[0].ID != cat.ID {
		t.Errorf("category not persisted through DuckDB: %+v", snap.Categories)
	}
}
