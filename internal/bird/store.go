package bird

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/calvinalkan/aviary/pkg/pedigree"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600

	fileExt = ".md"
)

// Store reads and writes bird files in one directory.
type Store struct {
	dir string
	log *zap.Logger
}

// NewStore returns a store rooted at dir. A nil logger discards logs.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	return &Store{dir: dir, log: log.Named("store")}
}

// Dir returns the bird directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Exists reports whether a file for id exists.
func (s *Store) Exists(id string) bool {
	if !ValidID(id) {
		return false
	}

	_, err := os.Stat(s.Path(id))

	return err == nil
}

// Create assigns b a fresh ID and creation time and writes it. Parent
// references must name existing birds.
func (s *Store) Create(b *Bird) error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrNameRequired
	}

	for _, parent := range []string{b.Father, b.Mother} {
		if parent != "" && !s.Exists(parent) {
			return fmt.Errorf("%w: %s", ErrParentNotFound, parent)
		}
	}

	mkdirErr := os.MkdirAll(s.dir, dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating bird directory: %w", mkdirErr)
	}

	id, err := NewID()
	if err != nil {
		return err
	}

	b.ID = id
	b.SchemaVersion = SchemaVersion
	b.Path = s.Path(id)

	if b.Created.IsZero() {
		b.Created = time.Now().UTC()
	}

	content, err := Format(b)
	if err != nil {
		return err
	}

	return WithLock(b.Path, func() error {
		if _, statErr := os.Stat(b.Path); statErr == nil {
			return fmt.Errorf("%w: %s", ErrBirdFileExists, b.Path)
		}

		writeErr := atomic.WriteFile(b.Path, strings.NewReader(content))
		if writeErr != nil {
			return fmt.Errorf("writing bird file: %w", writeErr)
		}

		chmodErr := os.Chmod(b.Path, filePerms)
		if chmodErr != nil {
			return fmt.Errorf("setting file permissions: %w", chmodErr)
		}

		s.log.Debug("created bird", zap.String("id", id), zap.String("path", b.Path))

		return nil
	})
}

// Load reads the bird with the given ID.
func (s *Store) Load(id string) (*Bird, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	if !s.Exists(id) {
		return nil, fmt.Errorf("%w: %s", ErrBirdNotFound, id)
	}

	return s.loadFile(s.Path(id))
}

func (s *Store) loadFile(path string) (*Bird, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bird: %w", err)
	}

	b, err := Parse(content)
	if err != nil {
		return nil, err
	}

	if want := strings.TrimSuffix(filepath.Base(path), fileExt); b.ID != want {
		return nil, fmt.Errorf("%w: %s in %s", ErrIDMismatch, b.ID, filepath.Base(path))
	}

	b.Path = path

	return b, nil
}

// Update applies fn to the bird under the file lock and writes the result.
// If fn returns an error nothing is written.
func (s *Store) Update(id string, fn func(b *Bird) error) (*Bird, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	if !s.Exists(id) {
		return nil, fmt.Errorf("%w: %s", ErrBirdNotFound, id)
	}

	path := s.Path(id)

	var updated *Bird

	err := WithFileLock(path, func(content []byte) ([]byte, error) {
		b, parseErr := Parse(content)
		if parseErr != nil {
			return nil, parseErr
		}

		b.Path = path

		fnErr := fn(b)
		if fnErr != nil {
			return nil, fnErr
		}

		formatted, formatErr := Format(b)
		if formatErr != nil {
			return nil, formatErr
		}

		updated = b

		if bytes.Equal(content, []byte(formatted)) {
			return nil, nil
		}

		return []byte(formatted), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("updated bird", zap.String("id", id))

	return updated, nil
}

// Result holds the outcome of reading one bird file.
type Result struct {
	Bird *Bird
	Path string
	Err  error
}

// ListOptions filters List output.
type ListOptions struct {
	Sex     *pedigree.Sex // nil = all
	Species string        // case-insensitive exact match, "" = all
	Limit   int           // 0 = no limit
	Offset  int
}

var errOffsetOutOfBounds = errors.New("offset out of bounds")

// ReadAll parses every bird file in parallel. Results are sorted by file name
// (and so by creation). A missing directory is an empty flock. Files that fail
// to parse are returned with Err set; the caller decides how to report them.
func (s *Store) ReadAll(ctx context.Context) ([]Result, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Result{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading bird directory: %w", err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		names = append(names, entry.Name())
	}

	slices.Sort(names)

	results := make([]Result, len(names))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, name := range names {
		group.Go(func() error {
			if ctxErr := groupCtx.Err(); ctxErr != nil {
				return ctxErr
			}

			path := filepath.Join(s.dir, name)
			b, loadErr := s.loadFile(path)

			results[i] = Result{Bird: b, Path: path, Err: loadErr}

			return nil
		})
	}

	waitErr := group.Wait()
	if waitErr != nil {
		return nil, fmt.Errorf("reading birds: %w", waitErr)
	}

	for _, r := range results {
		if r.Err != nil {
			s.log.Debug("skipping invalid bird file", zap.String("path", r.Path), zap.Error(r.Err))
		}
	}

	s.log.Debug("read flock", zap.Int("files", len(results)), zap.String("dir", s.dir))

	return results, nil
}

// List returns the valid birds matching opts plus the results that failed to
// parse. Pagination applies to the valid birds only.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Bird, []Result, error) {
	results, err := s.ReadAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	var (
		birds  []*Bird
		broken []Result
	)

	for _, r := range results {
		if r.Err != nil {
			broken = append(broken, r)

			continue
		}

		if opts.Sex != nil && r.Bird.Sex != *opts.Sex {
			continue
		}

		if opts.Species != "" && !strings.EqualFold(r.Bird.Species, opts.Species) {
			continue
		}

		birds = append(birds, r.Bird)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(birds) && len(birds) > 0 {
			return nil, nil, fmt.Errorf("%w: %d", errOffsetOutOfBounds, opts.Offset)
		}

		birds = birds[min(opts.Offset, len(birds)):]
	}

	if opts.Limit > 0 && len(birds) > opts.Limit {
		birds = birds[:opts.Limit]
	}

	return birds, broken, nil
}

// Snapshot is one consistent read of the whole flock.
type Snapshot struct {
	Index  *pedigree.Index
	Birds  map[string]*Bird
	Broken []Result
}

// Snapshot reads the flock and indexes it for pedigree resolution.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	results, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Birds: make(map[string]*Bird, len(results))}
	records := make([]pedigree.Bird, 0, len(results))

	for _, r := range results {
		if r.Err != nil {
			snap.Broken = append(snap.Broken, r)

			continue
		}

		snap.Birds[r.Bird.ID] = r.Bird
		records = append(records, r.Bird.Pedigree())
	}

	snap.Index = pedigree.NewIndex(records)

	return snap, nil
}

// Subject returns the engine record for id from the snapshot.
func (snap *Snapshot) Subject(id string) (*pedigree.Bird, error) {
	b, ok := snap.Index.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBirdNotFound, id)
	}

	return b, nil
}
