package gormdb

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/awsl-project/lsdir/internal/domain"
)

func setupTestRepo(t *testing.T) *RecentDirRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewRecentDirRepository(db)
	clock := time.UnixMilli(1_700_000_000_000)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func TestRecentDirRepository_Record(t *testing.T) {
	repo := setupTestRepo(t)

	first, err := repo.Record("/tmp/a", 3)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if first.ListCount != 1 || first.EntryCount != 3 {
		t.Errorf("first record = %+v, want count 1 and 3 entries", first)
	}

	second, err := repo.Record("/tmp/a", 5)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Record() created a new row %d, want upsert of %d", second.ID, first.ID)
	}
	if second.ListCount != 2 || second.EntryCount != 5 {
		t.Errorf("second record = %+v, want count 2 and 5 entries", second)
	}
	if !second.LastListedAt.After(first.LastListedAt) {
		t.Errorf("LastListedAt not advanced: %v -> %v", first.LastListedAt, second.LastListedAt)
	}
}

func TestRecentDirRepository_RecordConcurrent(t *testing.T) {
	repo := setupTestRepo(t)
	fixed := time.UnixMilli(1_700_000_000_000)
	repo.now = func() time.Time { return fixed }

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Record("/tmp/shared", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Record() error = %v", err)
	}

	got, err := repo.GetByPath("/tmp/shared")
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if got.ListCount != workers {
		t.Errorf("ListCount = %d, want %d", got.ListCount, workers)
	}
	dirs, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(dirs) != 1 {
		t.Errorf("len(List()) = %d, want a single row", len(dirs))
	}
}

func TestRecentDirRepository_ListOrder(t *testing.T) {
	repo := setupTestRepo(t)

	for _, p := range []string{"/a", "/b", "/c", "/a"} {
		if _, err := repo.Record(p, 0); err != nil {
			t.Fatalf("Record(%q) error = %v", p, err)
		}
	}

	dirs, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var got []string
	for _, d := range dirs {
		got = append(got, d.Path)
	}
	if want := "/a,/c,/b"; strings.Join(got, ",") != want {
		t.Errorf("List() = %v, want %s", got, want)
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(List(2)) = %d, want 2", len(limited))
	}
}

func TestRecentDirRepository_GetByPathAndDelete(t *testing.T) {
	repo := setupTestRepo(t)

	long := "/" + strings.Repeat("deep/", 200)
	rec, err := repo.Record(long, 1)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := repo.GetByPath(long)
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if got.Path != long {
		t.Errorf("GetByPath().Path length = %d, want %d", len(got.Path), len(long))
	}

	if err := repo.Delete(rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByPath(long); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByPath() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(rec.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestRecentDirRepository_Prune(t *testing.T) {
	repo := setupTestRepo(t)

	for _, p := range []string{"/1", "/2", "/3", "/4", "/5"} {
		repo.Record(p, 0)
	}

	removed, err := repo.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune() removed %d, want 3", removed)
	}

	dirs, _ := repo.List(0)
	if len(dirs) != 2 || dirs[0].Path != "/5" || dirs[1].Path != "/4" {
		t.Errorf("List() after prune = %+v", dirs)
	}

	if removed, _ := repo.Prune(10); removed != 0 {
		t.Errorf("Prune(10) removed %d, want 0", removed)
	}
}

func TestDetectDialector(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{"/var/lib/lsdir.db", "sqlite", false},
		{"sqlite:///var/lib/lsdir.db", "sqlite", false},
		{"mysql://user:pw@tcp(localhost:3306)/lsdir?parseTime=true", "mysql", false},
		{"host=localhost port=5432 dbname=lsdir sslmode=disable", "postgres", false},
		{"redis://localhost:6379", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := detectDialector(tt.dsn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("detectDialector() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("detectDialector() = %q, want %q", got, tt.want)
			}
		})
	}
}
