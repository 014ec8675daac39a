// Package search recursively trawls an input table location for the
// date-sharded NDJSON files the pipeline reads. It is the same TileDB-VFS
// based trawl the teacher used for `*.gsf` discovery, generalized to the
// `*.json`/`*.ndjson` shard naming this pipeline's `--input-table` and
// `--anchorage-table` URIs use, so local directories and object-store
// URIs (s3://, gs://) are searched identically.
package search

import (
	"errors"
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// FindShards recursively searches uri for files matching pattern (e.g.
// "*.json" or "*.ndjson"), using the TileDB VFS layer so the search works
// uniformly over local filesystems and object stores. config_uri may be
// empty to use a generic config.
func FindShards(uri, pattern, config_uri string) ([]string, error) {
	var config *tiledb.Config
	var err error

	if config_uri == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(config_uri)
	}
	if err != nil {
		return nil, errors.Join(errors.New("error loading TileDB config"), err)
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, errors.Join(errors.New("error creating TileDB context"), err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, errors.Join(errors.New("error creating TileDB VFS"), err)
	}
	defer vfs.Free()

	return trawl(vfs, pattern, uri, make([]string, 0))
}
