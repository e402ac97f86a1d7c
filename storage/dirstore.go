package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/snappy"
)

// DirStore is the PageStore backing persistence: one data file and
// one sidecar metadata file per column, laid out as
//
//	<root>/<table>/<base|tail>_<idx>/page_<col>.dat
//	<root>/<table>/<base|tail>_<idx>/page_<col>.meta
//
// Page data is snappy-compressed on disk; in memory a Page always
// holds its raw uncompressed 4096 bytes so the slot-packing invariants
// never have to account for compression.
type DirStore struct {
	root string
	fs   FS
}

// NewDirStore returns a DirStore rooted at path using fs for all file
// access.
func NewDirStore(path string, fs FS) *DirStore {
	return &DirStore{root: path, fs: fs}
}

func (s *DirStore) pageDir(key PageKey) string {
	return filepath.Join(s.root, key.Table, fmt.Sprintf("%s_%d", key.Kind, key.PageIndex))
}

func (s *DirStore) dataPath(key PageKey) string {
	return filepath.Join(s.pageDir(key), fmt.Sprintf("page_%d.dat", key.Col))
}

func (s *DirStore) metaPath(key PageKey) string {
	return filepath.Join(s.pageDir(key), fmt.Sprintf("page_%d.meta", key.Col))
}

// LoadPage hydrates a Page from disk. A page with no data file yet
// (a logical page that was allocated but never flushed) loads as
// empty rather than erroring.
func (s *DirStore) LoadPage(key PageKey) (*Page, error) {
	raw, err := s.fs.ReadFile(s.dataPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewPage(), nil
		}
		return nil, fmt.Errorf("dirstore: read %s: %w", s.dataPath(key), err)
	}
	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("dirstore: decode %s: %w", s.dataPath(key), err)
	}
	page := NewPage()
	n := copy(page.Data[:], decoded)
	if n < PageSize {
		// short page on disk: remaining bytes stay zero.
	}

	metaRaw, err := s.fs.ReadFile(s.metaPath(key))
	if err == nil {
		if n, convErr := strconv.Atoi(strings.TrimSpace(string(metaRaw))); convErr == nil {
			page.NumRecords = n
		}
	}
	return page, nil
}

// FlushPage writes a page's data and record-count sidecar to disk.
func (s *DirStore) FlushPage(key PageKey, page *Page) error {
	data, numRecords := page.Snapshot()
	encoded := snappy.Encode(nil, data[:])
	if err := s.fs.WriteFile(s.dataPath(key), encoded); err != nil {
		return fmt.Errorf("dirstore: write %s: %w", s.dataPath(key), err)
	}
	meta := []byte(strconv.Itoa(numRecords))
	if err := s.fs.WriteFile(s.metaPath(key), meta); err != nil {
		return fmt.Errorf("dirstore: write %s: %w", s.metaPath(key), err)
	}
	return nil
}

// TableDir returns the root-relative directory a table's metadata and
// pages live under.
func (s *DirStore) TableDir(table string) string {
	return filepath.Join(s.root, table)
}

// ListTables returns the names of tables found under root.
func (s *DirStore) ListTables() ([]string, error) {
	if !s.fs.Exists(s.root) {
		return nil, nil
	}
	return s.fs.ReadDir(s.root)
}

// ReadTableMeta reads the raw bytes of a table's metadata file.
func (s *DirStore) ReadTableMeta(table string) ([]byte, error) {
	return s.fs.ReadFile(filepath.Join(s.TableDir(table), table+".meta"))
}

// WriteTableMeta writes a table's metadata file.
func (s *DirStore) WriteTableMeta(table string, data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.TableDir(table), table+".meta"), data)
}
