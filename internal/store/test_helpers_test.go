package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/jobtree/internal/trace"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleRecords is a short trace: a root with one pinging child.
func sampleRecords() []trace.Record {
	return []trace.Record{
		{Seq: 1, Kind: trace.KindBorn, Job: 1, Type: "listener"},
		{Seq: 2, Kind: trace.KindBorn, Job: 2, Type: "pinger", Parent: 1},
		{Seq: 3, Kind: trace.KindTick, Job: 1, Type: "listener", Duration: 10 * time.Millisecond},
		{Seq: 4, Kind: trace.KindTick, Job: 2, Type: "pinger", Parent: 1, Duration: 10 * time.Millisecond},
		{Seq: 5, Kind: trace.KindEvent, Job: 1, Type: "listener", Event: "ping", Sender: 2},
		{Seq: 6, Kind: trace.KindDied, Job: 2, Type: "pinger", Parent: 1},
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}
