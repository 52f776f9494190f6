/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

Copy/hash stream plumbing shared by Local's Copy and Hash: optional gzip
on either end, optional sha256 of the logical content.
*/
package fs

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// decompressingReader wraps r with a gzip reader when compressed is true.
// The returned io.Closer, if non-nil, must be closed by the caller; it is
// distinct from the underlying source, which the caller already owns.
func decompressingReader(r io.Reader, compressed bool) (io.Reader, io.Closer, error) {
	if !compressed {
		return r, nil, nil
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return gz, gz, nil
}

// copyStream copies from src to dst, optionally decompressing src and/or
// compressing dst, optionally hashing the logical (decompressed) bytes
// read from src.
func copyStream(src io.Reader, dst io.Writer, srcCompressed, dstCompress, hash bool) (CopyResult, error) {
	reader, closer, err := decompressingReader(src, srcCompressed)
	if err != nil {
		return CopyResult{}, err
	}
	if closer != nil {
		defer closer.Close()
	}

	var h interface {
		io.Writer
		Sum([]byte) []byte
	}
	if hash {
		h = sha256.New()
		reader = io.TeeReader(reader, h)
	}

	var writer io.Writer = dst
	var gz *gzip.Writer
	if dstCompress {
		gz = gzip.NewWriter(dst)
		writer = gz
	}

	n, err := io.Copy(writer, reader)
	if err != nil {
		return CopyResult{}, err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return CopyResult{}, err
		}
	}

	result := CopyResult{Size: n}
	if hash {
		result.Checksum = hex.EncodeToString(h.Sum(nil))
	}
	return result, nil
}
