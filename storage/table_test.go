package storage

import (
	"os"
	"path/filepath"
	"testing"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

type sampleRow struct {
	ID    int64   `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	Value float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=16)"`
	Label string  `tiledb:"dtype=string,ftype=attr" filters:"zstd(level=16)"`
}

func newTestContext(t *testing.T) *tiledb.Context {
	t.Helper()
	config, err := tiledb.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	defer config.Free()
	ctx, err := tiledb.NewContext(config)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	defer ctx.Free()

	dir := t.TempDir()
	uri := filepath.Join(dir, "sample.tiledb")

	rows := []sampleRow{
		{ID: 1, Value: 1.5, Label: "a"},
		{ID: 2, Value: 2.5, Label: "bb"},
		{ID: 3, Value: 3.5, Label: "ccc"},
	}

	if err := WriteTable(uri, ctx, rows); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	got, found, err := ReadTable[sampleRow](uri, ctx)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !found {
		t.Fatalf("expected the array to be found")
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
}

func TestWriteTableEmptyRowsIsIdempotent(t *testing.T) {
	ctx := newTestContext(t)
	defer ctx.Free()

	dir := t.TempDir()
	uri := filepath.Join(dir, "empty.tiledb")

	if err := WriteTable(uri, ctx, []sampleRow{}); err != nil {
		t.Fatalf("WriteTable with no rows: %v", err)
	}
	if _, err := os.Stat(uri); err == nil {
		t.Fatalf("expected no array directory to be created for an empty shard")
	}
}

func TestReadTableMissingArrayIsNotAnError(t *testing.T) {
	ctx := newTestContext(t)
	defer ctx.Free()

	dir := t.TempDir()
	uri := filepath.Join(dir, "does-not-exist.tiledb")

	rows, found, err := ReadTable[sampleRow](uri, ctx)
	if err != nil {
		t.Fatalf("expected no error for a missing array, got %v", err)
	}
	if found {
		t.Fatalf("expected found=false for a missing array")
	}
	if rows != nil {
		t.Fatalf("expected nil rows for a missing array")
	}
}
