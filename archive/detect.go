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

package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// discExtensions are the disc-image file extensions this reader accepts,
// matching the extension guard discimage.Identify applies to files on
// disk: only a raw ISO/BIN dump is something the udf/iso9660/scanner
// chain can make sense of.
var discExtensions = map[string]bool{
	".iso": true,
	".bin": true,
}

// IsGameFile checks if a filename has a recognized disc-image extension.
func IsGameFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return discExtensions[ext]
}

// DetectGameFile finds the first disc-image file in an archive.
// It scans the archive's file list and returns the path to the first
// file that has a recognized .iso or .bin extension.
func DetectGameFile(arc Archive) (string, error) {
	files, err := arc.List()
	if err != nil {
		return "", fmt.Errorf("list archive files: %w", err)
	}

	for _, file := range files {
		if IsGameFile(file.Name) {
			return file.Name, nil
		}
	}

	return "", NoGameFilesError{Archive: "archive"}
}
