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

package library_test

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gotterz/go-ps2ident/library"
	"github.com/gotterz/go-ps2ident/regiondb"
)

func writeRegionDB(t *testing.T, titles map[string]string) *regiondb.Database {
	t.Helper()

	dir := t.TempDir()
	regionFiles := []string{
		"db_playstation2_official_as.json",
		"db_playstation2_official_au.json",
		"db_playstation2_official_eu.json",
		"db_playstation2_official_jp.json",
		"db_playstation2_official_ko.json",
		"db_playstation2_official_us.json",
	}

	data, err := json.Marshal(titles)
	if err != nil {
		t.Fatalf("marshal region fixture: %v", err)
	}
	empty, err := json.Marshal(map[string]string{})
	if err != nil {
		t.Fatalf("marshal empty region fixture: %v", err)
	}

	for i, name := range regionFiles {
		content := empty
		if i == len(regionFiles)-1 {
			content = data
		}
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o600); err != nil {
			t.Fatalf("write region fixture %s: %v", name, err)
		}
	}

	db, err := regiondb.Load(dir)
	if err != nil {
		t.Fatalf("regiondb.Load() error = %v", err)
	}
	return db
}

func binaryDiscFixture() []byte {
	data := append([]byte("\x00\x00\x00garbage"), []byte("SLUS_200.62;1")...)
	return append(data, []byte("more garbage\x00\x00")...)
}

//nolint:gosec // test helper, writes fixtures into t.TempDir()
func createTestZIP(t *testing.T, dir, name string, files map[string][]byte) string {
	t.Helper()

	zipPath := filepath.Join(dir, name)
	f, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer func() { _ = f.Close() }()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := entry.Write(content); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return zipPath
}

func TestIdentifyArchiveZIP(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := createTestZIP(t, dir, "game.zip", map[string][]byte{
		"readme.txt": []byte("readme"),
		"disc.bin":   binaryDiscFixture(),
	})

	db := writeRegionDB(t, map[string]string{"SLUS-20062": "Gran Turismo 3: A-Spec"})

	result, err := library.IdentifyArchive(zipPath, db)
	if err != nil {
		t.Fatalf("IdentifyArchive() error = %v", err)
	}
	if result.SerialNumber != "SLUS-20062" {
		t.Errorf("SerialNumber = %q, want %q", result.SerialNumber, "SLUS-20062")
	}
	if result.Title != "Gran Turismo 3: A-Spec" {
		t.Errorf("Title = %q, want %q", result.Title, "Gran Turismo 3: A-Spec")
	}
}

func TestIdentifyArchiveNoGames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := createTestZIP(t, dir, "empty.zip", map[string][]byte{
		"readme.txt": []byte("readme"),
	})

	db := writeRegionDB(t, nil)

	_, err := library.IdentifyArchive(zipPath, db)
	if err == nil {
		t.Error("expected error for archive with no disc images")
	}
}

func TestScanArchiveMultipleDiscs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	zipPath := createTestZIP(t, dir, "multidisc.zip", map[string][]byte{
		"disc1.bin": binaryDiscFixture(),
		"disc2.bin": binaryDiscFixture(),
	})

	db := writeRegionDB(t, map[string]string{"SLUS-20062": "Gran Turismo 3: A-Spec"})

	entries, err := library.ScanArchive(zipPath, db)
	if err != nil {
		t.Fatalf("ScanArchive() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Result.SerialNumber != "SLUS-20062" {
			t.Errorf("entry %s: SerialNumber = %q, want %q", e.Source.Member, e.Result.SerialNumber, "SLUS-20062")
		}
		if e.Source.Container != zipPath {
			t.Errorf("entry %s: Container = %q, want %q", e.Source.Member, e.Source.Container, zipPath)
		}
	}
}

func TestIdentifyMounted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "disc.bin"), binaryDiscFixture(), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	db := writeRegionDB(t, map[string]string{"SLUS-20062": "Gran Turismo 3: A-Spec"})

	result, err := library.IdentifyMounted(dir, db)
	if err != nil {
		t.Fatalf("IdentifyMounted() error = %v", err)
	}
	if result.SerialNumber != "SLUS-20062" {
		t.Errorf("SerialNumber = %q, want %q", result.SerialNumber, "SLUS-20062")
	}
}

func TestIdentifyMountedNoDiscFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	db := writeRegionDB(t, nil)

	_, err := library.IdentifyMounted(dir, db)
	if err == nil {
		t.Error("expected error for directory with no disc image file")
	}
}

func TestIdentifyCue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binPath := filepath.Join(dir, "disc.bin")
	if err := os.WriteFile(binPath, binaryDiscFixture(), 0o600); err != nil {
		t.Fatalf("write bin fixture: %v", err)
	}

	cuePath := filepath.Join(dir, "disc.cue")
	cueContent := "FILE \"disc.bin\" BINARY\n  TRACK 01 MODE1/2352\n    INDEX 01 00:00:00\n"
	if err := os.WriteFile(cuePath, []byte(cueContent), 0o600); err != nil {
		t.Fatalf("write cue fixture: %v", err)
	}

	db := writeRegionDB(t, map[string]string{"SLUS-20062": "Gran Turismo 3: A-Spec"})

	result, err := library.IdentifyCue(cuePath, db)
	if err != nil {
		t.Fatalf("IdentifyCue() error = %v", err)
	}
	if result.SerialNumber != "SLUS-20062" {
		t.Errorf("SerialNumber = %q, want %q", result.SerialNumber, "SLUS-20062")
	}
}

func TestIdentifyDispatchesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	binPath := filepath.Join(dir, "disc.bin")
	if err := os.WriteFile(binPath, binaryDiscFixture(), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	db := writeRegionDB(t, map[string]string{"SLUS-20062": "Gran Turismo 3: A-Spec"})

	result, err := library.Identify(binPath, db)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if result.SerialNumber != "SLUS-20062" {
		t.Errorf("SerialNumber = %q, want %q", result.SerialNumber, "SLUS-20062")
	}
}

func TestScanCHDMissingFile(t *testing.T) {
	t.Parallel()

	db := writeRegionDB(t, nil)
	_, err := library.ScanCHD(filepath.Join(t.TempDir(), "missing.chd"), db)
	if err == nil {
		t.Error("expected error opening a nonexistent CHD file")
	}
}

func TestIdentifyUnknownContainer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("not a disc"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	db := writeRegionDB(t, nil)

	_, err := library.Identify(path, db)
	if err == nil {
		t.Error("expected error for unsupported file")
	}
}
