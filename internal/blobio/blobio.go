// Package blobio is the filesystem edge for binary blobs: save blocks, ROM
// text dumps and generated SQL scripts. It handles transparent xz
// (de)compression based on the file extension and identifies content by
// BLAKE3 hash.
package blobio

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/mossdeep/dexkit/core/errors"
)

// Sum returns the hex-encoded BLAKE3 hash of data.
func Sum(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ReadFile reads a blob from disk. Files ending in .xz are decompressed
// transparently.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, errors.NewIO("decompress", path, err)
		}
		reader = xzr
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

// HashFile reads a blob (decompressing if needed) and returns its content
// together with the BLAKE3 hash of the decompressed bytes.
func HashFile(path string) ([]byte, string, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, Sum(data), nil
}

// WriteFile writes a blob to disk. A .xz destination is compressed on the
// way out, so ReadFile(WriteFile(path, data)) round-trips for either kind
// of path.
func WriteFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}

	if strings.HasSuffix(path, ".xz") {
		xw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return errors.NewIO("compress", path, err)
		}
		if _, err := xw.Write(data); err != nil {
			xw.Close()
			f.Close()
			return errors.NewIO("write", path, err)
		}
		if err := xw.Close(); err != nil {
			f.Close()
			return errors.NewIO("compress", path, err)
		}
	} else {
		if _, err := f.Write(data); err != nil {
			f.Close()
			return errors.NewIO("write", path, err)
		}
	}

	if err := f.Close(); err != nil {
		return errors.NewIO("close", path, err)
	}
	return nil
}
