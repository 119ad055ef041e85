// Package history persists conversation logs as one JSON file per local
// calendar day.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lexhaven/lexrag/internal/domain"
)

// Store reads and appends the day's conversation log. Writes to the same day
// are serialized with a per-day mutex, and the file is replaced atomically so
// a crashed write never leaves a truncated log behind.
type Store struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Tests use it to cross day boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store rooted at dir, creating it if missing.
func NewStore(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:   dir,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return s, nil
}

// The partition key is the server's local date. A service restarted after
// midnight starts a fresh log; earlier days stay readable on disk.
func (s *Store) day() string {
	return s.now().Format("2006-01-02")
}

func (s *Store) path(day string) string {
	return filepath.Join(s.dir, day+".json")
}

func (s *Store) dayLock(day string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[day]
	if !ok {
		l = &sync.Mutex{}
		s.locks[day] = l
	}
	return l
}

// Today returns the current day's log. A missing file is an empty log, not an
// error.
func (s *Store) Today() ([]domain.Turn, error) {
	return s.load(s.day())
}

func (s *Store) load(day string) ([]domain.Turn, error) {
	data, err := os.ReadFile(s.path(day))
	if os.IsNotExist(err) {
		return []domain.Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", day, err)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", day, err)
	}
	return turns, nil
}

// Append adds turns to the current day's log and returns the full updated
// log. The load-concat-store cycle holds the day's mutex, so concurrent
// appends never lose each other's turns.
func (s *Store) Append(turns ...domain.Turn) ([]domain.Turn, error) {
	day := s.day()

	lock := s.dayLock(day)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.load(day)
	if err != nil {
		return nil, err
	}
	updated := append(existing, turns...)

	if err := s.write(day, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// write marshals the log and swaps it into place via rename, so readers only
// ever see a complete file.
func (s *Store) write(day string, turns []domain.Turn) error {
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history %s: %w", day, err)
	}

	tmp, err := os.CreateTemp(s.dir, day+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write history %s: %w", day, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(day)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history %s: %w", day, err)
	}
	return nil
}
