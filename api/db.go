// Package api is the engine's entry point: Open/Close a database
// directory and create/get/drop the tables inside it, adapted from
// the teacher's api.DB (api/db.go) with the SQL executor and parser
// stripped out — this engine's only query surface is the per-table
// operations in package lstore (spec §1's non-goals exclude SQL).
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/Felmond13/lstore/lstore"
	"github.com/Felmond13/lstore/storage"
)

// Option configures a Database at Open time.
type Option func(*options)

type options struct {
	bufferPoolCapacity int
	mergeThreshold      float64
}

// WithBufferPoolCapacity overrides the default buffer-pool size
// (storage.DefaultCapacity pages).
func WithBufferPoolCapacity(n int) Option {
	return func(o *options) { o.bufferPoolCapacity = n }
}

// WithMergeThreshold overrides the default updates/base-records ratio
// (lstore.DefaultMergeThreshold) that triggers a background merge.
func WithMergeThreshold(t float64) Option {
	return func(o *options) { o.mergeThreshold = t }
}

// Database is one open L-Store database: a shared buffer pool and
// background merge worker, and the set of tables currently loaded.
type Database struct {
	mu     sync.RWMutex
	path   string
	store  *storage.DirStore
	pool   *storage.BufferPool
	worker *lstore.MergeWorker
	tables map[string]*lstore.Table
	opts   options
}

// Open opens (creating if necessary) the database rooted at path,
// restoring every table found there (spec §4.13/§6).
func Open(path string, opts ...Option) (*Database, error) {
	return open(path, storage.OSFS{}, opts...)
}

// OpenFS opens a database using a caller-supplied filesystem, letting
// tests exercise the persistence format without touching disk.
func OpenFS(path string, fs storage.FS, opts ...Option) (*Database, error) {
	return open(path, fs, opts...)
}

func open(path string, fs storage.FS, opts ...Option) (*Database, error) {
	o := options{
		bufferPoolCapacity: storage.DefaultCapacity,
		mergeThreshold:     lstore.DefaultMergeThreshold,
	}
	for _, fn := range opts {
		fn(&o)
	}

	store := storage.NewDirStore(path, fs)
	worker := lstore.NewMergeWorker()

	db := &Database{
		path:   path,
		store:  store,
		worker: worker,
		tables: make(map[string]*lstore.Table),
		opts:   o,
	}
	db.pool = storage.NewBufferPool(o.bufferPoolCapacity, store)

	names, err := store.ListTables()
	if err != nil {
		return nil, fmt.Errorf("api: list tables under %q: %w", path, err)
	}
	for _, name := range names {
		raw, err := store.ReadTableMeta(name)
		if err != nil {
			log.Printf("api: open: skipping table %q: %v", name, err)
			continue
		}
		var meta lstore.TableMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			log.Printf("api: open: table %q has corrupt metadata: %v", name, err)
			continue
		}
		table := lstore.RestoreTable(meta, db.pool)
		table.Worker = worker
		table.SetMergeThreshold(o.mergeThreshold)
		db.tables[name] = table
	}

	return db, nil
}

// CreateTable registers a new, empty table. num_columns is the
// user-visible column count; key_index selects the primary-key
// column. Duplicate names are rejected (spec §6).
func (db *Database) CreateTable(name string, numColumns, keyIndex int) (*lstore.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tables[name]; ok {
		return nil, lstore.ErrTableExists
	}
	table := lstore.NewTable(name, numColumns, keyIndex, db.pool)
	table.Worker = db.worker
	table.SetMergeThreshold(db.opts.mergeThreshold)
	db.tables[name] = table
	return table, nil
}

// GetTable returns the table registered under name.
func (db *Database) GetTable(name string) (*lstore.Table, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	table, ok := db.tables[name]
	if !ok {
		return nil, lstore.ErrTableNotFound
	}
	return table, nil
}

// DropTable removes a table's in-memory registration. Its on-disk
// pages are left behind until overwritten by a future table of the
// same name; this mirrors the engine's append-only, no-reclaim
// persistence model.
func (db *Database) DropTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tables[name]; !ok {
		return lstore.ErrTableNotFound
	}
	delete(db.tables, name)
	return nil
}

// Close flushes every resident dirty page and every table's metadata
// to disk, then stops the background merge worker. Persistence errors
// are logged but do not abort the close (spec §7).
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for name, table := range db.tables {
		meta := table.Meta()
		raw, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			log.Printf("api: close: table %q: marshal metadata: %v", name, err)
			continue
		}
		if err := db.store.WriteTableMeta(name, raw); err != nil {
			log.Printf("api: close: table %q: write metadata: %v", name, err)
		}
	}

	db.pool.FlushAll()
	db.worker.Stop()
	return nil
}
