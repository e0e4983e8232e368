package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/core/render"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/holdings"
)

// clock returns a fake time source advancing one second per call.
func clock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func record(id string) *Record {
	h := holdings.File{Currency: "EUR", Holdings: []holdings.Holding{
		{Name: "ACME", Value: 60},
		{Name: "Initech", Value: 40, Icon: "initech.svg"},
	}}
	c := Canvas{Width: 400, Height: 300, Padding: 1}
	l := treemap.Build(h.Items(), treemap.Canvas{Width: c.Width, Height: c.Height, Padding: c.Padding})
	return &Record{
		ID:       id,
		Name:     "portfolio " + id,
		Holdings: h,
		Canvas:   c,
		Layout:   document.FromScene(render.Decorate(l, palette.Default, nil)),
	}
}

// testStore runs the behavior every Store must share.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	if _, err := s.Load(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Delete(missing) error = %v, want NOT_FOUND", err)
	}
	if err := s.Save(ctx, &Record{}); err == nil {
		t.Error("Save() without ID should fail")
	}

	a := record("a")
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save(a) error: %v", err)
	}
	if a.CreatedAt.IsZero() || !a.CreatedAt.Equal(a.UpdatedAt) {
		t.Errorf("first Save() stamps = %v, %v, want equal non-zero", a.CreatedAt, a.UpdatedAt)
	}

	got, err := s.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load(a) error: %v", err)
	}
	if diff := cmp.Diff(a, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Load(a) mismatch (-want +got):\n%s", diff)
	}

	b := record("b")
	if err := s.Save(ctx, b); err != nil {
		t.Fatalf("Save(b) error: %v", err)
	}

	// Resave a without CreatedAt: the original creation time survives.
	created := a.CreatedAt
	again := record("a")
	if err := s.Save(ctx, again); err != nil {
		t.Fatalf("Save(a again) error: %v", err)
	}
	if !again.CreatedAt.Equal(created) || !again.UpdatedAt.After(created) {
		t.Errorf("resave stamps = %v, %v, want created %v and later update", again.CreatedAt, again.UpdatedAt, created)
	}

	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}

	if list, _ := s.List(ctx, 1); len(list) != 1 || list[0].ID != "a" {
		t.Errorf("List(1) = %d records, want only a", len(list))
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete(a) error: %v", err)
	}
	if _, err := s.Load(ctx, "a"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(deleted) error = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	s.now = clock()
	testStore(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := record("x")
	if err := s.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Holdings.Holdings[0].Name = "mutated"

	got, _ := s.Load(ctx, "x")
	if got.Holdings.Holdings[0].Name != "ACME" {
		t.Errorf("stored record changed through caller's copy: %q", got.Holdings.Holdings[0].Name)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()
	s.now = clock()
	testStore(t, s)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	err := s.Save(context.Background(), &Record{ID: "../escape"})
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Save(../escape) error = %v, want INVALID_PATH", err)
	}
	if _, err := s.Load(context.Background(), "../escape"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(../escape) error = %v, want NOT_FOUND", err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SQUAREMAP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SQUAREMAP_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, uri, "squaremap_test_"+time.Now().Format("20060102150405"))
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer s.Close()
	defer s.coll.Database().Drop(context.Background())
	s.now = clock()
	testStore(t, s)
}

func TestFileStoreIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	if err := s.Save(ctx, &Record{ID: "good", Name: "portfolio"}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	recs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "good" {
		t.Errorf("List() = %+v, want only the good record", recs)
	}

	if err := s.Save(ctx, &Record{ID: "nested/id"}); err == nil {
		t.Error("Save(nested/id) expected error")
	}
}
