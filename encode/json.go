// Package encode writes pipeline output records to newline-delimited
// JSON, the human-inspectable sibling of the TileDB-backed table sink in
// the storage package. Every output table (anchorages, port events, port
// visits, visit state) can be dumped this way in addition to its TileDB
// array, matching the teacher's habit of always emitting a JSON
// companion file alongside the primary columnar output.
package encode

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
)

// WriteJson writes a single JSON document to file_uri, overwriting any
// existing file.
func WriteJson(file_uri string, data any) (int, error) {
	jsn, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return 0, err
	}

	f, err := os.Create(file_uri)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return f.Write(jsn)
}

// WriteNDJson writes rows as newline-delimited JSON, one row per record,
// overwriting any existing file. Every output table is written in this
// shard format alongside its TileDB array.
func WriteNDJson[T any](file_uri string, rows []T) (int, error) {
	f, err := os.Create(file_uri)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	counter := &byteCounter{}
	enc := json.NewEncoder(io.MultiWriter(w, counter))
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return counter.n, err
		}
	}
	return counter.n, nil
}

type byteCounter struct{ n int }

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}

// ReadNDJson reads newline-delimited JSON rows from file_uri.
func ReadNDJson[T any](file_uri string) ([]T, error) {
	f, err := os.Open(file_uri)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []T
	dec := json.NewDecoder(f)
	for dec.More() {
		var row T
		if err := dec.Decode(&row); err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
