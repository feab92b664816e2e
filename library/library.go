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

// Package library identifies collections of PS2 disc images beyond the
// single ".iso"/".bin" file discimage.Identify accepts directly: CUE/BIN
// pairs, CHD containers, ZIP/7z/RAR archives holding a disc dump, and
// directories a disc image has already been mounted/extracted into.
//
// Every format this package unwraps ultimately feeds a plain
// io.ReaderAt into discimage.IdentifyReader, so the extension guard that
// protects Identify's single-file entry point is never weakened: nothing
// here accepts an arbitrary byte stream as if it were already a disc
// image, it only ever unwraps a known container down to one.
package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gotterz/go-ps2ident/archive"
	"github.com/gotterz/go-ps2ident/chd"
	"github.com/gotterz/go-ps2ident/discimage"
	"github.com/gotterz/go-ps2ident/internal/byteio"
	"github.com/gotterz/go-ps2ident/iso9660"
	"github.com/gotterz/go-ps2ident/regiondb"
)

// Source describes where within a container a Result was found, for
// batch scans over archives or directories with more than one entry.
type Source struct {
	// Container is the archive, CHD or CUE file path that was opened.
	Container string
	// Member is the path within Container the disc image was read from,
	// empty when Container itself is the disc image (CHD, mounted dir).
	Member string
}

// Entry pairs a Source with the Result identified from it.
type Entry struct {
	Source Source
	Result discimage.Result
}

// IdentifyCue opens the first BIN file referenced by a CUE sheet and
// identifies it as a raw binary stream.
func IdentifyCue(cuePath string, db *regiondb.Database) (discimage.Result, error) {
	cue, err := iso9660.ParseCue(cuePath)
	if err != nil {
		return discimage.Result{}, fmt.Errorf("parse cue sheet: %w", err)
	}
	if len(cue.BinFiles) == 0 {
		return discimage.Result{}, fmt.Errorf("cue sheet %s references no BIN files", cuePath)
	}

	r, f, err := byteio.Open(cue.BinFiles[0])
	if err != nil {
		return discimage.Result{}, err
	}
	defer func() { _ = f.Close() }()

	return discimage.IdentifyReader(r, f, db)
}

// IdentifyCHD opens a CHD container and identifies the disc image found
// on its first data track, skipping any leading audio tracks (as on a
// mixed-mode Neo Geo CD-style disc).
func IdentifyCHD(path string, db *regiondb.Database) (discimage.Result, error) {
	chdFile, err := chd.Open(path)
	if err != nil {
		return discimage.Result{}, fmt.Errorf("open CHD: %w", err)
	}
	defer func() { _ = chdFile.Close() }()

	reader := chdFile.DataTrackSectorReader()
	size := chdFile.DataTrackSize()

	r := byteio.New(reader, size)
	return discimage.IdentifyReader(r, reader, db)
}

// IdentifyMounted identifies a disc image that has already been
// extracted onto disk as a directory tree, by locating the largest
// ".iso" or ".bin" file directly inside it and identifying that.
//
// This does not use iso9660.MountedDisc's filesystem emulation, since
// the udf/iso9660/scanner chain all expect a single contiguous byte
// stream; it exists to make batch scans over "already unpacked" disc
// collections share the same entry point as every other container type
// here.
func IdentifyMounted(dirPath string, db *regiondb.Database) (discimage.Result, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return discimage.Result{}, fmt.Errorf("read mounted directory: %w", err)
	}

	var largest string
	var largestSize int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".iso" && ext != ".bin" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > largestSize {
			largest = entry.Name()
			largestSize = info.Size()
		}
	}

	if largest == "" {
		return discimage.Result{}, fmt.Errorf("no .iso or .bin file found in %s", dirPath)
	}

	return discimage.Identify(filepath.Join(dirPath, largest), db)
}

// IdentifyArchive opens a ZIP, 7z or RAR archive, locates the first
// member with a ".iso" or ".bin" extension, and identifies it. The
// member is buffered into memory to support the random access the
// udf/iso9660 readers need.
func IdentifyArchive(path string, db *regiondb.Database) (discimage.Result, error) {
	arc, err := archive.Open(path)
	if err != nil {
		return discimage.Result{}, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = arc.Close() }()

	member, err := archive.DetectGameFile(arc)
	if err != nil {
		return discimage.Result{}, err
	}

	reader, size, closer, err := arc.OpenReaderAt(member)
	if err != nil {
		return discimage.Result{}, fmt.Errorf("open archive member %s: %w", member, err)
	}
	defer func() { _ = closer.Close() }()

	r := byteio.New(reader, size)
	return discimage.IdentifyReader(r, reader, db)
}

// Identify dispatches path to whichever of the above handles its format,
// falling back to discimage.Identify for a plain .iso/.bin file.
func Identify(path string, db *regiondb.Database) (discimage.Result, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".cue":
		return IdentifyCue(path, db)
	case ext == ".chd":
		return IdentifyCHD(path, db)
	case archive.IsArchiveExtension(ext):
		return IdentifyArchive(path, db)
	default:
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			return IdentifyMounted(path, db)
		}
		return discimage.Identify(path, db)
	}
}

// ScanCHD identifies the disc image on a CHD's data track and wraps it
// as a single-entry Entry slice, so batch tooling that walks a mixed
// collection of archives and CHDs can treat both the same way.
func ScanCHD(path string, db *regiondb.Database) ([]Entry, error) {
	result, err := IdentifyCHD(path, db)
	if err != nil {
		return nil, err
	}
	return []Entry{{Source: Source{Container: path}, Result: result}}, nil
}

// ScanArchive identifies every disc image inside an archive, rather than
// only the first one IdentifyArchive stops at. Useful for archives that
// bundle more than one disc of a multi-disc release.
func ScanArchive(path string, db *regiondb.Database) ([]Entry, error) {
	arc, err := archive.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = arc.Close() }()

	files, err := arc.List()
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}

	var entries []Entry
	for _, file := range files {
		if !archive.IsGameFile(file.Name) {
			continue
		}

		var reader io.ReaderAt
		var size int64
		var closer io.Closer
		reader, size, closer, err = arc.OpenReaderAt(file.Name)
		if err != nil {
			continue
		}

		r := byteio.New(reader, size)
		result, identifyErr := discimage.IdentifyReader(r, reader, db)
		_ = closer.Close()
		if identifyErr != nil {
			continue
		}

		entries = append(entries, Entry{
			Source: Source{Container: path, Member: file.Name},
			Result: result,
		})
	}

	return entries, nil
}
