// Package storage is the table sink for the pipeline's four append-only
// output tables (anchorages, port events, port visits, visit state). It
// generalizes the teacher repo's reflection-driven TileDB array writer
// (tiledb.go / schema.go / attitude.go's ToTileDB) from a fixed set of
// GSF sensor records to any tagged Go struct, and adds the date-shard
// WRITE_TRUNCATE semantics spec §5/§6 require: each day's output is
// committed by recreating that day's TileDB group, so a retry after a
// partial failure is idempotent.
package storage

import "errors"

var ErrCreateSchema = errors.New("error creating TileDB schema")
var ErrCreateAttribute = errors.New("error creating TileDB attribute")
var ErrCreateDimension = errors.New("error creating TileDB dimension")
var ErrCreateArray = errors.New("error creating TileDB array")
var ErrWriteArray = errors.New("error writing TileDB array")
var ErrReadArray = errors.New("error reading TileDB array")
var ErrAddFilters = errors.New("error adding filter to filter list")
var ErrUnsupportedField = errors.New("error: struct field type is unsupported for TileDB encoding")
var ErrMissingTag = errors.New("error: required tiledb struct tag is missing")
