// Copyright (c) 2026 The go-ps2ident Authors
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-ps2ident.
//
// go-ps2ident is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ps2ident is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ps2ident.  If not, see <https://www.gnu.org/licenses/>.

// Package byteio provides the random-access, never-erroring-on-short-read
// view over a disc image file shared by the udf and scanner packages and
// their discimage and library callers.
package byteio

import (
	"fmt"
	"io"
	"os"
)

// Reader is a random-access, read-only view over a disc image. It never
// returns an error for a request that runs past end of file; the caller
// gets back whatever bytes exist.
type Reader struct {
	r    io.ReaderAt
	size int64
}

// Open opens path and stats its size.
func Open(path string) (*Reader, *os.File, error) {
	f, err := os.Open(path) //nolint:gosec // Path from user input is expected
	if err != nil {
		return nil, nil, fmt.Errorf("open disc image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat disc image: %w", err)
	}

	return New(f, info.Size()), f, nil
}

// New wraps an already-open io.ReaderAt of known size.
func New(r io.ReaderAt, size int64) *Reader {
	return &Reader{r: r, size: size}
}

// Size returns the total size of the image in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// ReadAt reads up to n bytes starting at offset. Requests that run past
// end of file are shortened rather than erroring; a request entirely past
// end of file returns a zero-length slice. The only errors returned are
// genuine I/O failures from the underlying reader.
func (r *Reader) ReadAt(offset int64, n int) ([]byte, error) {
	if offset >= r.size || n <= 0 {
		return nil, nil
	}

	if remaining := r.size - offset; int64(n) > remaining {
		n = int(remaining)
	}

	buf := make([]byte, n)
	read, err := r.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read at offset %d: %w", offset, err)
	}

	return buf[:read], nil
}

// SequentialScan streams the image from the start in chunks of chunkSize,
// invoking fn with each chunk and the chunk's starting offset. It stops
// early if fn returns false, or once the image is exhausted.
func (r *Reader) SequentialScan(chunkSize int, fn func(chunk []byte, offset int64) (keepGoing bool)) error {
	if chunkSize <= 0 {
		return fmt.Errorf("sequential scan: non-positive chunk size %d", chunkSize)
	}

	for offset := int64(0); offset < r.size; {
		chunk, err := r.ReadAt(offset, chunkSize)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			return nil
		}
		if !fn(chunk, offset) {
			return nil
		}
		offset += int64(len(chunk))
	}

	return nil
}
