// Command lstore demonstrates the storage engine end to end: create a
// table, insert, select, update, sum a range, build a secondary index,
// delete, merge, and reopen from disk. Adapted from the teacher's
// cmd/example/main.go with the SQL query strings replaced by direct
// Table calls (this engine has no query language).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Felmond13/lstore/api"
	"github.com/Felmond13/lstore/lstore"
)

const (
	colID     = 0
	colType   = 1
	colRetry  = 2
	colTotal  = 3
	numCols   = 4
	keyColumn = colID
)

func main() {
	const dbPath = "lstore-example.db"
	defer os.RemoveAll(dbPath)

	db, err := api.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== L-Store — example run ===")
	fmt.Println()

	fmt.Println("--- create_table ---")
	jobs, err := db.CreateTable("jobs", numCols, keyColumn)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- insert ---")
	rows := [][]int64{
		{1, 100, 5, 0},
		{2, 200, 2, 0},
		{3, 300, 0, 0},
		{4, 100, 8, 0},
		{5, 200, 1, 0},
	}
	for _, r := range rows {
		if err := jobs.Insert(r); err != nil {
			log.Fatalf("insert %v: %v", r, err)
		}
	}
	fmt.Printf("  inserted %d rows\n\n", len(rows))

	fmt.Println("--- select key=3 ---")
	printRecords(jobs, 3, keyColumn, nil)

	fmt.Println("--- update key=3: retry=99 ---")
	retry99 := int64(99)
	if err := jobs.Update(3, []*int64{nil, nil, &retry99, nil}); err != nil {
		log.Fatalf("update: %v", err)
	}
	printRecords(jobs, 3, keyColumn, nil)

	fmt.Println("--- sum(retry) over keys [1,5] ---")
	total, err := jobs.Sum(1, 5, colRetry)
	if err != nil {
		log.Fatalf("sum: %v", err)
	}
	fmt.Printf("  total retry = %d\n\n", total)

	fmt.Println("--- create_index on type ---")
	if err := jobs.CreateIndex(colType); err != nil {
		log.Fatalf("create index: %v", err)
	}
	fmt.Println("  index created")
	fmt.Println()

	fmt.Println("--- select type=200 (indexed) ---")
	printRecords(jobs, 200, colType, nil)

	fmt.Println("--- delete key=5 ---")
	if err := jobs.Delete(5); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("  deleted")
	fmt.Println()

	fmt.Println("--- increment key=1 col=retry ---")
	if err := jobs.Increment(1, colRetry); err != nil {
		log.Fatalf("increment: %v", err)
	}
	printRecords(jobs, 1, keyColumn, nil)

	fmt.Println("--- force merge ---")
	if err := jobs.Merge(); err != nil {
		log.Printf("  merge: %v", err)
	} else {
		fmt.Println("  merge complete")
	}
	fmt.Println()

	if err := db.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}

	fmt.Println("--- reopen and verify ---")
	db2, err := api.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db2.Close()

	jobs2, err := db2.GetTable("jobs")
	if err != nil {
		log.Fatal(err)
	}
	printRecords(jobs2, 3, keyColumn, nil)

	fmt.Println("=== Done ===")
}

func printRecords(table *lstore.Table, key int64, col int, projection []bool) {
	recs, err := table.Select(key, col, projection)
	if err != nil {
		log.Fatalf("select: %v", err)
	}
	if len(recs) == 0 {
		fmt.Println("  (no results)")
	}
	for _, rec := range recs {
		fmt.Printf("  [rid=%d key=%d] %v\n", rec.RID, rec.Key, rec.Columns)
	}
	fmt.Println()
}
