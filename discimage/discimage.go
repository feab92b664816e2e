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

// Package discimage orchestrates PS2 disc identification: try the UDF
// reader, fall through to ISO9660, fall through to a raw binary scan, and
// resolve whatever serial number candidate surfaces against the region
// databases.
package discimage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gotterz/go-ps2ident/internal/byteio"
	"github.com/gotterz/go-ps2ident/iso9660"
	"github.com/gotterz/go-ps2ident/regiondb"
	"github.com/gotterz/go-ps2ident/scanner"
	"github.com/gotterz/go-ps2ident/serial"
	"github.com/gotterz/go-ps2ident/udf"
)

// DiscType records which reader ultimately produced a Result.
type DiscType string

// The three disc types the orchestrator can report.
const (
	DiscTypeDVD    DiscType = "DVD"
	DiscTypeCD     DiscType = "CD"
	DiscTypeBinary DiscType = "Binary"
)

// Result is a successfully identified PS2 disc.
type Result struct {
	SerialNumber string          `json:"serial_number"`
	Region       regiondb.Region `json:"region"`
	Title        string          `json:"title"`
	DiscType     DiscType        `json:"disc_type"`
}

// Errors the orchestrator can return to a caller. Every other failure
// mode inside an individual reader is recovered internally and causes a
// fallthrough to the next reader instead.
var (
	// ErrNotSupportedFile is returned when path's extension is neither
	// ".iso" nor ".bin".
	ErrNotSupportedFile = errors.New("not a supported disc image file")

	// ErrNotFoundInDatabase is returned when every reader was exhausted
	// (or none applied) without a serial number resolving against any
	// region database.
	ErrNotFoundInDatabase = errors.New("game not found in database")
)

var supportedExtensions = map[string]bool{
	".iso": true,
	".bin": true,
}

// Identify opens path, reads it with whichever of the UDF, ISO9660 or
// binary-scan readers applies, and resolves the first valid serial number
// candidate against db.
func Identify(path string, db *regiondb.Database) (Result, error) {
	if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
		return Result{}, fmt.Errorf("%w: %s", ErrNotSupportedFile, path)
	}

	r, f, err := byteio.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = f.Close() }()

	result, err := IdentifyReader(r, f, db)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", err, path)
	}
	return result, nil
}

// IdentifyReader runs the same UDF/ISO9660/binary-scan fallthrough chain
// as Identify, but against an already-open reader rather than a path on
// disk. It applies no extension guard: callers that unwrap an archive
// member, a CUE sheet's referenced BIN, a CHD container or a mounted
// directory onto an io.ReaderAt use this directly, since none of those
// entry points have a meaningful file extension of their own to check.
func IdentifyReader(r *byteio.Reader, f io.ReaderAt, db *regiondb.Database) (Result, error) {
	candidates, discType := gatherCandidates(r, f)

	for _, candidate := range candidates {
		valid, ok := serial.Valid(candidate)
		if !ok {
			continue
		}
		if title, region, found := db.Resolve(valid); found {
			return Result{SerialNumber: valid, Region: region, Title: title, DiscType: discType}, nil
		}
	}

	return Result{}, ErrNotFoundInDatabase
}

// gatherCandidates runs the UDF reader, then ISO9660, then the binary
// scanner, returning the first one that produces any file-name candidates
// at all (not necessarily a database hit) alongside which disc type that
// was.
func gatherCandidates(r *byteio.Reader, f io.ReaderAt) ([]string, DiscType) {
	if names, err := readUDFEntries(r); err == nil && len(names) > 0 {
		return names, DiscTypeDVD
	}

	if names, err := readISO9660Entries(f, r.Size()); err == nil && len(names) > 0 {
		return names, DiscTypeCD
	}

	if candidate, ok, err := scanner.FindSerial(r); err == nil && ok {
		return []string{candidate}, DiscTypeBinary
	}

	return nil, ""
}

// readUDFEntries mounts r as UDF and returns every root directory entry's
// raw name. A CorruptDescriptor, UnsupportedFeature or NotUDF error here
// is the normal "this isn't UDF" signal and is returned unwrapped so the
// caller can fall through.
func readUDFEntries(r *byteio.Reader) ([]string, error) {
	vol, err := udf.Open(r)
	if err != nil {
		return nil, err
	}

	entries, err := vol.RootDirectory()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// readISO9660Entries parses r as ISO9660 and returns every file path in
// the volume (root and subdirectories alike, matching the original
// reference's full-tree scan), with the leading path separator trimmed.
func readISO9660Entries(f io.ReaderAt, size int64) ([]string, error) {
	image, err := iso9660.OpenReader(f, size)
	if err != nil {
		return nil, err
	}

	files, err := image.IterFiles(false)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, strings.TrimPrefix(file.Path, "/"))
	}
	return names, nil
}
