package frame

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

func init() {
	// Row values are stored as `any`; gob needs every concrete type that
	// might occupy one of those slots registered up front.
	gob.Register([]string{})
	gob.Register([]any{})
	gob.Register(map[string]any{})
	gob.Register([]Row{})
	gob.Register(float64(0))
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(bool(false))
}

// WritePartition gob-encodes rows and writes them zstd-compressed to path,
// creating parent directories as needed. This stands in for the Parquet
// columnar format named in spec §6 of the build this package serves -- no
// Parquet/Arrow encoder exists anywhere in the retrieval pack, so this
// hand-rolled container (gob for structure, zstd for the actual compression,
// a real wired dependency) is the closest equivalent available. Shared by
// every package that materializes a Frame to disk: the source cache, the
// columnar output writer, and the price engine's data lake.
func WritePartition(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rows); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if _, err := zw.Write(buf.Bytes()); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadPartition reverses WritePartition.
func ReadPartition(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
