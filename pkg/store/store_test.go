package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/wbsgen/pkg/errors"
	"github.com/matzehuels/wbsgen/pkg/layout"
	"github.com/matzehuels/wbsgen/pkg/outline"
	"github.com/matzehuels/wbsgen/pkg/style"
)

func testDocument(t *testing.T, name string, lines ...string) *Document {
	t.Helper()
	if len(lines) == 0 {
		lines = []string{"1 Project", "1.1 Plan", "1.2 Build", "1.1.1 Scope", "1.3.1 Lost"}
	}
	items, err := outline.Sort(outline.ParseLines(lines))
	if err != nil {
		t.Fatal(err)
	}
	forest, _, err := outline.Build(items, outline.WithOrphanPolicy(outline.OrphanAdopt))
	if err != nil {
		t.Fatal(err)
	}
	cfg := layout.DefaultConfig()
	geoms := layout.Layout(forest, cfg)
	return &Document{
		Name:     name,
		Source:   "plan.txt",
		Config:   cfg,
		Styles:   style.DefaultTable(),
		Orphans:  outline.OrphanAdopt,
		Items:    items,
		Geometry: geoms,
		Overflow: layout.CheckOverflow(cfg, geoms),
	}
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	doc := testDocument(t, "plan")
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("Save() should assign an ID")
	}
	if doc.CreatedAt.IsZero() {
		t.Fatal("Save() should set CreatedAt")
	}

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "plan" || got.Source != "plan.txt" || got.Orphans != outline.OrphanAdopt {
		t.Errorf("Get() = %+v, want stored fields back", got)
	}
	if !got.CreatedAt.Equal(doc.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, doc.CreatedAt)
	}
	if len(got.Items) != len(doc.Items) || got.Items[3] != doc.Items[3] {
		t.Errorf("Items = %v, want %v", got.Items, doc.Items)
	}
	if got.Config.WBSWidth != doc.Config.WBSWidth || got.Config.PerLevelExtraGap.At(3) != doc.Config.PerLevelExtraGap.At(3) {
		t.Errorf("Config = %+v, want %+v", got.Config, doc.Config)
	}
	if got.Styles.For(1) != doc.Styles.For(1) {
		t.Errorf("Styles.For(1) = %+v, want %+v", got.Styles.For(1), doc.Styles.For(1))
	}

	forest, geoms, err := got.Forest()
	if err != nil {
		t.Fatalf("Forest() error: %v", err)
	}
	if forest.Len() != len(doc.Geometry) {
		t.Fatalf("Forest().Len() = %d, want %d", forest.Len(), len(doc.Geometry))
	}
	for i, g := range geoms {
		want := doc.Geometry[i]
		if g.Node == nil || g.Code != want.Code || g.X != want.X || g.Y != want.Y || g.Width != want.Width {
			t.Errorf("geometry[%d] = %+v, want %+v", i, g, want)
		}
	}

	// Replace keeps the ID and creation time.
	created := doc.CreatedAt
	doc.Name = "plan-v2"
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save() replace error: %v", err)
	}
	got, err = s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "plan-v2" || !got.CreatedAt.Equal(created) {
		t.Errorf("after replace: name=%q created=%v, want plan-v2 %v", got.Name, got.CreatedAt, created)
	}

	older := testDocument(t, "older", "1 Old")
	older.CreatedAt = created.Add(-time.Hour)
	if err := s.Save(ctx, older); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d documents, want 2", len(list))
	}
	if list[0].ID != doc.ID || list[1].ID != older.ID {
		t.Errorf("List() order = [%s %s], want newest first", list[0].Name, list[1].Name)
	}
	if list[0].Items != len(doc.Items) || list[1].Items != 1 {
		t.Errorf("List() item counts = %d, %d, want %d, 1", list[0].Items, list[1].Items, len(doc.Items))
	}

	if err := s.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, older.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() after Delete error = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, older.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second Delete() error = %v, want NOT_FOUND", err)
	}

	bad := testDocument(t, "bad/name")
	if err := s.Save(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("Save() with invalid name error = %v, want INVALID_NAME", err)
	}
	bad = testDocument(t, "ok")
	bad.ID = "../escape"
	if err := s.Save(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Save() with invalid id error = %v, want INVALID_INPUT", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	doc := testDocument(t, "plan")
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	doc.Items[0].Text = "mutated"

	got, err := s.Get(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Items[0].Text == "mutated" {
		t.Error("caller mutation leaked into the store")
	}
	if got.Geometry[0].Node != nil {
		t.Error("stored geometry should not keep node pointers")
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	testStore(t, s)

	// A corrupt file is skipped by List.
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() returned %d documents, want 1", len(list))
	}
}

func TestFileStoreRejectsPathIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), "../../etc/passwd"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get() with path id error = %v, want NOT_FOUND", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("WBSGEN_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WBSGEN_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db := "wbsgen_test_" + time.Now().Format("150405")
	s, err := NewMongoStore(ctx, uri, db)
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer func() {
		_ = s.client.Database(db).Drop(ctx)
		s.Close()
	}()
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		uri  string
		want string
	}{
		{"", "*store.MemoryStore"},
		{"memory:", "*store.MemoryStore"},
		{"file://" + filepath.Join(dir, "docs"), "*store.FileStore"},
		{"sqlite://" + filepath.Join(dir, "docs.db"), "*store.SQLiteStore"},
		{"sqlite::memory:", "*store.SQLiteStore"},
	}
	for _, tt := range tests {
		s, err := Open(ctx, tt.uri)
		if err != nil {
			t.Errorf("Open(%q) error: %v", tt.uri, err)
			continue
		}
		if got := typeName(s); got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.uri, got, tt.want)
		}
		s.Close()
	}

	if _, err := Open(ctx, "ftp://example.com/docs"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(ftp) error = %v, want INVALID_INPUT", err)
	}
}

func typeName(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return "*store.MemoryStore"
	case *FileStore:
		return "*store.FileStore"
	case *SQLiteStore:
		return "*store.SQLiteStore"
	case *MongoStore:
		return "*store.MongoStore"
	}
	return "unknown"
}
