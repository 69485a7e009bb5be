// Package store persists edited chunks in SQLite as zstd wire snapshots.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"voxcore/internal/wire"
	"voxcore/internal/world"
)

var ErrNotFound = errors.New("store: chunk not found")

type saveReq struct {
	origin world.Pos
	blob   []byte
}

// Store is a chunk table with a single writer goroutine. Saves are queued and
// visible to Load immediately; Load may be called from any goroutine.
type Store struct {
	db     *sql.DB
	logger *log.Logger

	ch   chan saveReq
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	mu      sync.Mutex
	pending map[world.Pos][]byte

	saved atomic.Int64
	bytes atomic.Int64
}

// Open creates or opens the database at path.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		z INTEGER NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (x, y, z)
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger == nil {
		logger = log.New(os.Stdout, "[store] ", log.LstdFlags)
	}

	s := &Store{
		db:      db,
		logger:  logger,
		ch:      make(chan saveReq, 1024),
		pending: make(map[world.Pos][]byte),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

// Save queues a snapshot of c for writing.
func (s *Store) Save(c *world.Chunk) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	r := saveReq{origin: c.Origin(), blob: wire.Encode(wire.Snapshot(c))}
	s.mu.Lock()
	s.pending[r.origin] = r.blob
	s.mu.Unlock()
	s.ch <- r
	return nil
}

// Load restores the voxels saved for c's origin into c. It returns
// ErrNotFound when nothing was saved.
func (s *Store) Load(c *world.Chunk) error {
	origin := c.Origin()
	s.mu.Lock()
	blob, ok := s.pending[origin]
	s.mu.Unlock()
	if !ok {
		err := s.db.QueryRow(`SELECT payload FROM chunks WHERE x=? AND y=? AND z=?`,
			origin.X, origin.Y, origin.Z).Scan(&blob)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("store: load %v: %w", origin, err)
		}
	}
	p, err := wire.Decode(blob)
	if err != nil {
		return fmt.Errorf("store: decode %v: %w", origin, err)
	}
	if _, err := wire.Apply(c, p); err != nil {
		return fmt.Errorf("store: apply %v: %w", origin, err)
	}
	return nil
}

// Stats returns the number of chunks written and their compressed size.
func (s *Store) Stats() (chunks, bytes int64) {
	return s.saved.Load(), s.bytes.Load()
}

// Close drains queued saves and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *Store) loop() {
	upsert, err := s.db.Prepare(`INSERT OR REPLACE INTO chunks(x,y,z,payload) VALUES(?,?,?,?)`)
	if err != nil {
		s.logger.Printf("prepare: %v", err)
		for range s.ch {
		}
		return
	}
	defer upsert.Close()

	for r := range s.ch {
		if _, err := upsert.Exec(r.origin.X, r.origin.Y, r.origin.Z, r.blob); err != nil {
			s.logger.Printf("save %v: %v", r.origin, err)
		} else {
			s.saved.Add(1)
			s.bytes.Add(int64(len(r.blob)))
		}
		s.mu.Lock()
		// A newer save for the same origin may be queued behind this one.
		if cur, ok := s.pending[r.origin]; ok && &cur[0] == &r.blob[0] {
			delete(s.pending, r.origin)
		}
		s.mu.Unlock()
	}
}
