package bird_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calvinalkan/aviary/internal/bird"
	"github.com/calvinalkan/aviary/pkg/pedigree"
)

func newStore(t *testing.T) *bird.Store {
	t.Helper()

	return bird.NewStore(filepath.Join(t.TempDir(), ".birds"), zap.NewNop())
}

func mustCreate(t *testing.T, s *bird.Store, b *bird.Bird) *bird.Bird {
	t.Helper()

	require.NoError(t, s.Create(b))

	return b
}

func TestStoreCreateAndLoad(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	father := mustCreate(t, s, &bird.Bird{Name: "Pai", Sex: pedigree.SexMale})
	child := mustCreate(t, s, &bird.Bird{Name: "Filho", Father: father.ID, Notes: "primeira muda"})

	if !bird.ValidID(child.ID) || child.Created.IsZero() || child.SchemaVersion != bird.SchemaVersion {
		t.Fatalf("Create did not fill identity fields: %+v", child)
	}

	loaded, err := s.Load(child.ID)
	require.NoError(t, err)

	if loaded.Name != "Filho" || loaded.Father != father.ID || loaded.Notes != "primeira muda" {
		t.Errorf("Load() = %+v", loaded)
	}

	if loaded.Path != s.Path(child.ID) {
		t.Errorf("Load().Path = %q, want %q", loaded.Path, s.Path(child.ID))
	}

	info, err := os.Stat(loaded.Path)
	require.NoError(t, err)

	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestStoreCreateValidation(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	if err := s.Create(&bird.Bird{Name: "  "}); !errors.Is(err, bird.ErrNameRequired) {
		t.Errorf("Create(blank name) error = %v, want ErrNameRequired", err)
	}

	if err := s.Create(&bird.Bird{Name: "Orphan", Mother: "0000000000A1"}); !errors.Is(err, bird.ErrParentNotFound) {
		t.Errorf("Create(missing mother) error = %v, want ErrParentNotFound", err)
	}
}

func TestStoreLoadErrors(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	if _, err := s.Load(""); !errors.Is(err, bird.ErrIDRequired) {
		t.Errorf("Load(\"\") error = %v", err)
	}

	if _, err := s.Load("0000000000A1"); !errors.Is(err, bird.ErrBirdNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}

	if _, err := s.Load("../escape"); !errors.Is(err, bird.ErrBirdNotFound) {
		t.Errorf("Load(traversal) error = %v", err)
	}
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	b := mustCreate(t, s, &bird.Bird{Name: "Filho"})

	updated, err := s.Update(b.ID, func(b *bird.Bird) error {
		b.SetManual("fm", "Avó")

		return b.SetParent(pedigree.Mother, "0000000000A1")
	})
	require.NoError(t, err)

	if updated.ManualAncestors["fm"] != "Avó" || updated.Mother != "0000000000A1" {
		t.Errorf("Update() = %+v", updated)
	}

	content, err := os.ReadFile(s.Path(b.ID))
	require.NoError(t, err)

	if !strings.Contains(string(content), "manual-ancestors:\n  fm: Avó\n") {
		t.Errorf("file not rewritten:\n%s", content)
	}

	_, err = s.Update(b.ID, func(b *bird.Bird) error {
		return b.SetParent(pedigree.Father, b.ID)
	})
	if !errors.Is(err, bird.ErrSelfParent) {
		t.Errorf("Update(self parent) error = %v, want ErrSelfParent", err)
	}

	reloaded, err := s.Load(b.ID)
	require.NoError(t, err)

	if reloaded.Father != "" {
		t.Errorf("failed update was written: father = %q", reloaded.Father)
	}
}

func TestStoreReadAllReportsBrokenFiles(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	good := mustCreate(t, s, &bird.Bird{Name: "Bom"})

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "0000000000A1.md"), []byte("not a bird"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("ignored"), 0o600))

	// A valid file whose id does not match its name.
	content, err := os.ReadFile(s.Path(good.ID))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "0000000000A2.md"), content, 0o600))

	results, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	var okCount int

	for _, r := range results {
		switch filepath.Base(r.Path) {
		case "0000000000A1.md":
			if !errors.Is(r.Err, bird.ErrNoFrontmatter) {
				t.Errorf("broken file error = %v", r.Err)
			}
		case "0000000000A2.md":
			if !errors.Is(r.Err, bird.ErrIDMismatch) {
				t.Errorf("mismatched file error = %v", r.Err)
			}
		default:
			require.NoError(t, r.Err)

			okCount++
		}
	}

	if okCount != 1 {
		t.Errorf("valid results = %d, want 1", okCount)
	}
}

func TestStoreReadAllMissingDir(t *testing.T) {
	t.Parallel()

	results, err := newStore(t).ReadAll(context.Background())
	require.NoError(t, err)

	if len(results) != 0 {
		t.Errorf("ReadAll() on missing dir = %v", results)
	}
}

func TestStoreList(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	mustCreate(t, s, &bird.Bird{Name: "A", Sex: pedigree.SexMale, Species: "Serinus canaria"})
	mustCreate(t, s, &bird.Bird{Name: "B", Sex: pedigree.SexFemale, Species: "Serinus canaria"})
	mustCreate(t, s, &bird.Bird{Name: "C", Sex: pedigree.SexFemale, Species: "Taeniopygia guttata"})

	female := pedigree.SexFemale

	tests := []struct {
		name      string
		opts      bird.ListOptions
		wantNames []string
		wantErr   bool
	}{
		{name: "all", opts: bird.ListOptions{}, wantNames: []string{"A", "B", "C"}},
		{name: "by sex", opts: bird.ListOptions{Sex: &female}, wantNames: []string{"B", "C"}},
		{name: "by species", opts: bird.ListOptions{Species: "serinus CANARIA"}, wantNames: []string{"A", "B"}},
		{name: "limit", opts: bird.ListOptions{Limit: 2}, wantNames: []string{"A", "B"}},
		{name: "offset", opts: bird.ListOptions{Offset: 1, Limit: 1}, wantNames: []string{"B"}},
		{name: "offset past end", opts: bird.ListOptions{Offset: 3}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			birds, _, err := s.List(context.Background(), tc.opts)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			names := make([]string, len(birds))
			for i, b := range birds {
				names[i] = b.Name
			}

			require.Equal(t, tc.wantNames, names)
		})
	}
}

func TestStoreSnapshotResolves(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	grandfather := mustCreate(t, s, &bird.Bird{Name: "Avô", Ring: "R-1", Sex: pedigree.SexMale})
	father := mustCreate(t, s, &bird.Bird{
		Name: "Pai", Father: grandfather.ID,
		ManualAncestors: map[pedigree.Path]string{"m": "Avó Desconhecida"},
	})
	child := mustCreate(t, s, &bird.Bird{Name: "Filho", Father: father.ID})

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "0000000000A1.md"), []byte("---\n"), 0o600))

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	if len(snap.Broken) != 1 || snap.Index.Len() != 3 {
		t.Fatalf("snapshot: %d broken, %d indexed", len(snap.Broken), snap.Index.Len())
	}

	subject, err := snap.Subject(child.ID)
	require.NoError(t, err)

	if got := snap.Index.Resolve(subject, "ff"); got.ID != grandfather.ID || got.Ring != "R-1" {
		t.Errorf("Resolve(ff) = %+v", got)
	}

	if got := snap.Index.Resolve(subject, "fm"); got.Name != "Avó Desconhecida" || got.Tier != pedigree.TierManualInherited {
		t.Errorf("Resolve(fm) = %+v", got)
	}

	if _, err := snap.Subject("0000000000A9"); !errors.Is(err, bird.ErrBirdNotFound) {
		t.Errorf("Subject(missing) error = %v", err)
	}
}
