package storage

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// AddFilters sequentially appends compression filters to the filter
// pipeline list.
func AddFilters(filter_list *tiledb.FilterList, filter ...*tiledb.Filter) error {
	for _, filt := range filter {
		if err := filter_list.AddFilter(filt); err != nil {
			return err
		}
	}
	return nil
}

// ZstdFilter initialises the Zstandard compression filter at the given
// compression level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// AttachFilters sets the same filter-list pipeline on a batch of
// attributes.
func AttachFilters(filter_list *tiledb.FilterList, attrs ...*tiledb.Attribute) error {
	for _, attr := range attrs {
		if err := attr.SetFilterList(filter_list); err != nil {
			return err
		}
	}
	return nil
}

// CreateAttr creates a TileDB attribute, including its compression
// filter pipeline, from the `tiledb`/`filters` struct tags attached to a
// record field. Supported dtype values: int8, uint8, int16, uint16,
// int32, uint32, int64, uint64, float32, float64, datetime_ns, string.
// Tags for filters include zstd(level=16); filters are attached in the
// order listed. Variable-length fields (string, or the `var` tag) get a
// default offsets pipeline of positive-delta + zstandard(level=16).
func CreateAttr(
	field_name string,
	filter_defs []stgpsr.Definition,
	tiledb_defs map[string]stgpsr.Definition,
	schema *tiledb.ArraySchema,
	ctx *tiledb.Context,
) error {
	def, status := tiledb_defs["dtype"]
	if !status {
		return errors.Join(ErrMissingTag, errors.New("dtype tag not found for "+field_name))
	}
	dtype, _ := def.Attribute("dtype")

	var tdbDtype tiledb.Datatype
	isVar := dtype == "string"
	switch dtype {
	case "int8":
		tdbDtype = tiledb.TILEDB_INT8
	case "uint8":
		tdbDtype = tiledb.TILEDB_UINT8
	case "int16":
		tdbDtype = tiledb.TILEDB_INT16
	case "uint16":
		tdbDtype = tiledb.TILEDB_UINT16
	case "int32":
		tdbDtype = tiledb.TILEDB_INT32
	case "uint32":
		tdbDtype = tiledb.TILEDB_UINT32
	case "int64":
		tdbDtype = tiledb.TILEDB_INT64
	case "uint64":
		tdbDtype = tiledb.TILEDB_UINT64
	case "float32":
		tdbDtype = tiledb.TILEDB_FLOAT32
	case "float64":
		tdbDtype = tiledb.TILEDB_FLOAT64
	case "datetime_ns":
		tdbDtype = tiledb.TILEDB_DATETIME_NS
	case "string":
		tdbDtype = tiledb.TILEDB_STRING_UTF8
	default:
		return errors.Join(ErrUnsupportedField, errors.New(dtype.(string)))
	}

	attrFilts, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	defer attrFilts.Free()

	for _, filter := range filter_defs {
		if filter.Name() != "zstd" {
			continue
		}
		level, status := filter.Attribute("level")
		if !status {
			return errors.Join(ErrCreateAttribute, errors.New("zstd level not defined"))
		}
		filt, err := ZstdFilter(ctx, int32(level.(int64)))
		if err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
		defer filt.Free()
		if err := attrFilts.AddFilter(filt); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}

	attr, err := tiledb.NewAttribute(ctx, field_name, tdbDtype)
	if err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}
	defer attr.Free()

	if _, hasVarTag := tiledb_defs["var"]; hasVarTag || isVar {
		if err := attr.SetCellValNum(tiledb.TILEDB_VAR_NUM); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}

	if err := AttachFilters(attrFilts, attr); err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}

	if err := schema.AddAttributes(attr); err != nil {
		return errors.Join(ErrCreateAttribute, err)
	}

	if _, hasVarTag := tiledb_defs["var"]; hasVarTag || isVar {
		offsetFilts, err := tiledb.NewFilterList(ctx)
		if err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
		ddFilt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_POSITIVE_DELTA)
		if err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
		zstdFilt, err := ZstdFilter(ctx, int32(16))
		if err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
		if err := AddFilters(offsetFilts, ddFilt, zstdFilt); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
		if err := schema.SetOffsetsFilterList(offsetFilts); err != nil {
			return errors.Join(ErrCreateAttribute, err)
		}
	}

	return nil
}
