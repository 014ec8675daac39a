package anchorage

import (
	"encoding/json"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// WriteJson serialises data to a JSON file via the TileDB VFS layer, so
// the destination may be a local path or an object store URI (s3://,
// gs://, ...) using the same config resolution as the array sinks.
func WriteJson(file_uri string, config_uri string, data any) (int, error) {
	var config *tiledb.Config
	var err error

	if config_uri == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			return 0, err
		}
	} else {
		config, err = tiledb.LoadConfig(config_uri)
		if err != nil {
			return 0, err
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return 0, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, err
	}
	defer vfs.Free()

	// the vfs api auto checks for a file's existence and removes it if we are wanting to write
	stream, err := vfs.Open(file_uri, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, err
	}

	bytesWritten, err := stream.Write(jsn)
	if err != nil {
		return 0, err
	}

	return bytesWritten, nil
}

// JsonDumps constructs a JSON string of the supplied data.
func JsonDumps(data any) (string, error) {
	jsn, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}

// JsonIndentDumps constructs a JSON string of the supplied data using an
// indentation of four spaces.
func JsonIndentDumps(data any) (string, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return "", err
	}
	return string(jsn), nil
}
