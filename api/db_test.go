package api

import (
	"testing"

	"github.com/Felmond13/lstore/lstore"
	"github.com/Felmond13/lstore/storage"
)

func TestCreateGetDropTable(t *testing.T) {
	db, err := OpenFS("/db", storage.NewMemFS())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.CreateTable("jobs", 3, 0); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.CreateTable("jobs", 3, 0); err != lstore.ErrTableExists {
		t.Errorf("err = %v, want ErrTableExists", err)
	}

	tbl, err := db.GetTable("jobs")
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	if tbl.Name != "jobs" {
		t.Errorf("table name = %q, want jobs", tbl.Name)
	}

	if err := db.DropTable("jobs"); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if _, err := db.GetTable("jobs"); err != lstore.ErrTableNotFound {
		t.Errorf("err = %v, want ErrTableNotFound", err)
	}
}

func TestGetUnknownTableReturnsNotFound(t *testing.T) {
	db, err := OpenFS("/db", storage.NewMemFS())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.GetTable("missing"); err != lstore.ErrTableNotFound {
		t.Errorf("err = %v, want ErrTableNotFound", err)
	}
}

func TestCloseThenReopenRestoresTableData(t *testing.T) {
	fs := storage.NewMemFS()

	db, err := OpenFS("/db", fs)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	jobs, err := db.CreateTable("jobs", 2, 0)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := jobs.Insert([]int64{1, 100}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := jobs.Insert([]int64{2, 200}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := jobs.CreateIndex(1); err != nil {
		t.Fatalf("create index: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := OpenFS("/db", fs)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	jobs2, err := db2.GetTable("jobs")
	if err != nil {
		t.Fatalf("get table after reopen: %v", err)
	}
	recs, err := jobs2.Select(1, 0, nil)
	if err != nil {
		t.Fatalf("select after reopen: %v", err)
	}
	if len(recs) != 1 || recs[0].Columns[1] != 100 {
		t.Errorf("recs = %v, want col1=100", recs)
	}

	byIndex, err := jobs2.Select(200, 1, nil)
	if err != nil {
		t.Fatalf("select by secondary index after reopen: %v", err)
	}
	if len(byIndex) != 1 {
		t.Errorf("indexed select after reopen = %v, want 1 match", byIndex)
	}
}

func TestOpenEmptyDirectoryHasNoTables(t *testing.T) {
	db, err := OpenFS("/fresh", storage.NewMemFS())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.GetTable("anything"); err != lstore.ErrTableNotFound {
		t.Errorf("err = %v, want ErrTableNotFound on a fresh database", err)
	}
}

func TestBufferPoolCapacityOption(t *testing.T) {
	db, err := OpenFS("/db", storage.NewMemFS(), WithBufferPoolCapacity(4))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if db.pool == nil {
		t.Fatal("expected a buffer pool to be configured")
	}
}
