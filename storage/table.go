package storage

import (
	"bytes"
	"errors"
	"math"
	"os"
	"reflect"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// ArrayOpen is a helper for opening a TileDB array in the given mode.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := array.Open(mode); err != nil {
		array.Free()
		return nil, err
	}
	return array, nil
}

func schemaAttrs(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	values := reflect.ValueOf(t).Elem()
	types := values.Type()
	filtDefs, _ := stgpsr.ParseStruct(t, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(t, "tiledb")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name
		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, v := range tdbDefs[name] {
			fieldTdbDefs[v.Name()] = v
		}

		def, status := fieldTdbDefs["ftype"]
		if !status {
			return errors.Join(ErrMissingTag, errors.New("ftype tag not found for "+name))
		}
		ftype, _ := def.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		if err := CreateAttr(name, filtDefs[name], fieldTdbDefs, schema, ctx); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}
	return nil
}

// createArray builds the dense, row-dimensioned array schema for a
// tagged record type T and creates the array at uri. nrows sizes the
// single tile of the `__tiledb_rows` dimension; that dimension is never
// queried directly, it only anchors the dense layout, since every
// dataset here is read back wholesale per date shard.
func createArray(uri string, ctx *tiledb.Context, sample any, nrows uint64) error {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	defer domain.Free()

	tileSz := uint64(math.Max(1, math.Min(50000, float64(nrows))))
	dim, err := tiledb.NewDimension(ctx, "__tiledb_rows", tiledb.TILEDB_UINT64, []uint64{0, nrows - 1}, tileSz)
	if err != nil {
		return errors.Join(ErrCreateDimension, err)
	}
	defer dim.Free()

	if err := domain.AddDimensions(dim); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	defer schema.Free()

	if err := schema.SetDomain(domain); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	if err := schemaAttrs(sample, schema, ctx); err != nil {
		return err
	}

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return errors.Join(ErrCreateArray, err)
	}
	defer array.Free()

	if err := array.Create(schema); err != nil {
		return errors.Join(ErrCreateArray, err)
	}
	return nil
}

// columnName -> (kind, values) extracted from rows via reflection; kept
// generic so WriteTable works against any of the tagged Row types
// (AnchoragePointRow, PortEventRow, PortVisitRow, VisitStateRow,
// TaggedAnchorageRow) without per-type boilerplate.
func setColumnBuffer(query *tiledb.Query, name string, rowsVal reflect.Value, fieldIdx int) error {
	n := rowsVal.Len()
	if n == 0 {
		return nil
	}
	sample := rowsVal.Index(0).Field(fieldIdx)

	switch sample.Interface().(type) {
	case int64:
		data := make([]int64, n)
		for i := 0; i < n; i++ {
			data[i] = rowsVal.Index(i).Field(fieldIdx).Int()
		}
		_, err := query.SetDataBuffer(name, data)
		return err
	case uint64:
		data := make([]uint64, n)
		for i := 0; i < n; i++ {
			data[i] = rowsVal.Index(i).Field(fieldIdx).Uint()
		}
		_, err := query.SetDataBuffer(name, data)
		return err
	case int:
		data := make([]int64, n)
		for i := 0; i < n; i++ {
			data[i] = rowsVal.Index(i).Field(fieldIdx).Int()
		}
		_, err := query.SetDataBuffer(name, data)
		return err
	case float64:
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			data[i] = rowsVal.Index(i).Field(fieldIdx).Float()
		}
		_, err := query.SetDataBuffer(name, data)
		return err
	case bool:
		data := make([]uint8, n)
		for i := 0; i < n; i++ {
			if rowsVal.Index(i).Field(fieldIdx).Bool() {
				data[i] = 1
			}
		}
		_, err := query.SetDataBuffer(name, data)
		return err
	case time.Time:
		data := make([]int64, n)
		for i := 0; i < n; i++ {
			t := rowsVal.Index(i).Field(fieldIdx).Interface().(time.Time)
			data[i] = t.UnixNano()
		}
		_, err := query.SetDataBuffer(name, data)
		return err
	case string:
		var flat bytes.Buffer
		offsets := make([]uint64, n)
		for i := 0; i < n; i++ {
			s := rowsVal.Index(i).Field(fieldIdx).String()
			offsets[i] = uint64(flat.Len())
			flat.WriteString(s)
		}
		if _, err := query.SetOffsetsBuffer(name, offsets); err != nil {
			return err
		}
		_, err := query.SetDataBuffer(name, flat.Bytes())
		return err
	default:
		return errors.Join(ErrUnsupportedField, errors.New(name))
	}
}

// WriteTable writes rows to a fresh dense TileDB array at uri, replacing
// whatever was there (WRITE_TRUNCATE semantics, spec §5). T's exported
// fields must carry `tiledb:"dtype=...,ftype=attr"` tags (see CreateAttr
// for supported dtypes); `ftype=dim` fields are skipped, there being no
// attribute-bearing dimensions in these record types.
func WriteTable[T any](uri string, ctx *tiledb.Context, rows []T) error {
	if err := os.RemoveAll(uri); err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrWriteArray, err)
	}
	if len(rows) == 0 {
		// an empty shard: nothing to commit, and the removal above already
		// made the retry idempotent.
		return nil
	}
	nrows := uint64(len(rows))

	var sample T
	if err := createArray(uri, ctx, &sample, nrows); err != nil {
		return err
	}

	array, err := ArrayOpen(ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	rowsVal := reflect.ValueOf(rows)
	sampleType := reflect.TypeOf(sample)
	tdbDefs, _ := stgpsr.ParseStruct(&sample, "tiledb")

	for i := 0; i < sampleType.NumField(); i++ {
		name := sampleType.Field(i).Name
		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, v := range tdbDefs[name] {
			fieldTdbDefs[v.Name()] = v
		}
		if def, ok := fieldTdbDefs["ftype"]; ok {
			if v, _ := def.Attribute("ftype"); v == "dim" {
				continue
			}
		}
		if err := setColumnBuffer(query, name, rowsVal, i); err != nil {
			return errors.Join(ErrWriteArray, err)
		}
	}

	subarr, err := array.NewSubarray()
	if err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	defer subarr.Free()

	rng := tiledb.MakeRange(uint64(0), nrows-1)
	if err := subarr.AddRangeByName("__tiledb_rows", rng); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := query.SetSubarray(subarr); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteArray, err)
	}
	if err := query.Finalize(); err != nil {
		return errors.Join(ErrWriteArray, err)
	}

	return nil
}

// ReadTable reads every row back out of the dense array at uri. A
// missing array (no prior partition written for this date shard) is not
// an error: it returns (nil, false, nil) so callers can fall back to a
// zero-value carry-over (spec §7's "missing prior state" case).
func ReadTable[T any](uri string, ctx *tiledb.Context) ([]T, bool, error) {
	if _, err := os.Stat(uri); err != nil {
		return nil, false, nil
	}

	array, err := ArrayOpen(ctx, uri, tiledb.TILEDB_READ)
	if err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	defer array.Free()
	defer array.Close()

	nonEmpty, isEmpty, err := array.NonEmptyDomain()
	if err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	if isEmpty || len(nonEmpty) == 0 {
		return nil, true, nil
	}
	rng := nonEmpty[0].Range.([2]uint64)
	nrows := int(rng[1] - rng[0] + 1)

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}

	var sample T
	sampleType := reflect.TypeOf(sample)
	tdbDefs, _ := stgpsr.ParseStruct(&sample, "tiledb")

	columns := make(map[string]any, sampleType.NumField())
	for i := 0; i < sampleType.NumField(); i++ {
		name := sampleType.Field(i).Name
		fieldTdbDefs := make(map[string]stgpsr.Definition)
		for _, v := range tdbDefs[name] {
			fieldTdbDefs[v.Name()] = v
		}
		if def, ok := fieldTdbDefs["ftype"]; ok {
			if v, _ := def.Attribute("ftype"); v == "dim" {
				continue
			}
		}
		buf, err := readColumnBuffer(query, name, sampleType.Field(i).Type, nrows)
		if err != nil {
			return nil, false, errors.Join(ErrReadArray, err)
		}
		columns[name] = buf
	}

	if err := query.Submit(); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}

	rows := make([]T, nrows)
	rowsVal := reflect.ValueOf(rows)
	for i := 0; i < sampleType.NumField(); i++ {
		name := sampleType.Field(i).Name
		col, ok := columns[name]
		if !ok {
			continue
		}
		assignColumn(rowsVal, i, col, sampleType.Field(i).Type)
	}

	return rows, true, nil
}

func readColumnBuffer(query *tiledb.Query, name string, fieldType reflect.Type, n int) (any, error) {
	switch fieldType.Kind() {
	case reflect.Int64, reflect.Int:
		data := make([]int64, n)
		_, err := query.SetDataBuffer(name, data)
		return data, err
	case reflect.Uint64, reflect.Uint:
		data := make([]uint64, n)
		_, err := query.SetDataBuffer(name, data)
		return data, err
	case reflect.Float64:
		data := make([]float64, n)
		_, err := query.SetDataBuffer(name, data)
		return data, err
	case reflect.Bool:
		data := make([]uint8, n)
		_, err := query.SetDataBuffer(name, data)
		return data, err
	case reflect.Struct: // time.Time
		data := make([]int64, n)
		_, err := query.SetDataBuffer(name, data)
		return data, err
	case reflect.String:
		data := make([]byte, n*64)
		offsets := make([]uint64, n)
		if _, err := query.SetOffsetsBuffer(name, offsets); err != nil {
			return nil, err
		}
		_, err := query.SetDataBuffer(name, data)
		return []any{data, offsets}, err
	default:
		return nil, errors.Join(ErrUnsupportedField, errors.New(name))
	}
}

func assignColumn(rowsVal reflect.Value, fieldIdx int, col any, fieldType reflect.Type) {
	n := rowsVal.Len()
	switch fieldType.Kind() {
	case reflect.Int64, reflect.Int:
		data := col.([]int64)
		for i := 0; i < n; i++ {
			rowsVal.Index(i).Field(fieldIdx).SetInt(data[i])
		}
	case reflect.Uint64, reflect.Uint:
		data := col.([]uint64)
		for i := 0; i < n; i++ {
			rowsVal.Index(i).Field(fieldIdx).SetUint(data[i])
		}
	case reflect.Float64:
		data := col.([]float64)
		for i := 0; i < n; i++ {
			rowsVal.Index(i).Field(fieldIdx).SetFloat(data[i])
		}
	case reflect.Bool:
		data := col.([]uint8)
		for i := 0; i < n; i++ {
			rowsVal.Index(i).Field(fieldIdx).SetBool(data[i] != 0)
		}
	case reflect.Struct: // time.Time, stored as unix nanoseconds
		data := col.([]int64)
		for i := 0; i < n; i++ {
			rowsVal.Index(i).Field(fieldIdx).Set(reflect.ValueOf(time.Unix(0, data[i]).UTC()))
		}
	case reflect.String:
		pair := col.([]any)
		data := pair[0].([]byte)
		offsets := pair[1].([]uint64)
		for i := 0; i < n; i++ {
			start := offsets[i]
			end := uint64(len(data))
			if i+1 < len(offsets) {
				end = offsets[i+1]
			}
			rowsVal.Index(i).Field(fieldIdx).SetString(string(data[start:end]))
		}
	}
}
