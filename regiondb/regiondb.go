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

// Package regiondb resolves a canonical PS2 serial number to a release
// title and region, backed by six flat JSON serial-to-title maps (one
// per region Sony published PS2 titles in).
package regiondb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Region identifies one of the six PS2 release regions this package
// resolves against, in the fixed lookup order the orchestrator uses.
type Region string

// The six regions, in resolution order: Asia, Australia, Europe, Japan,
// Korea, USA. A serial present in more than one region's database
// resolves to whichever comes first here.
const (
	RegionAsia      Region = "Asia"
	RegionAustralia Region = "Australia"
	RegionEurope    Region = "Europe"
	RegionJapan     Region = "Japan"
	RegionKorea     Region = "Korea"
	RegionUSA       Region = "USA"
)

// LookupOrder is the fixed region resolution order: the first region
// whose database contains a given serial wins.
var LookupOrder = []Region{
	RegionAsia, RegionAustralia, RegionEurope, RegionJapan, RegionKorea, RegionUSA,
}

// fileNames maps each region to the on-disk JSON file name carrying its
// serial-to-title map.
var fileNames = map[Region]string{
	RegionAsia:      "db_playstation2_official_as.json",
	RegionAustralia: "db_playstation2_official_au.json",
	RegionEurope:    "db_playstation2_official_eu.json",
	RegionJapan:     "db_playstation2_official_jp.json",
	RegionKorea:     "db_playstation2_official_ko.json",
	RegionUSA:       "db_playstation2_official_us.json",
}

// Database holds the loaded serial-to-title maps for all six regions.
type Database struct {
	titles map[Region]map[string]string
}

// Load reads all six region JSON files from dir. Each file must be a flat
// JSON object mapping a canonical serial number to its release title.
func Load(dir string) (*Database, error) {
	db := &Database{titles: make(map[Region]map[string]string, len(LookupOrder))}

	for _, region := range LookupOrder {
		path := filepath.Join(dir, fileNames[region])

		titles, err := loadRegionFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s region database: %w", region, err)
		}
		db.titles[region] = titles
	}

	return db, nil
}

func loadRegionFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from configuration, not request input
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var titles map[string]string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return titles, nil
}

// Resolve looks up a canonical serial number across all six regions in
// LookupOrder, returning the first match.
func (db *Database) Resolve(serialNumber string) (title string, region Region, found bool) {
	for _, r := range LookupOrder {
		if title, ok := db.titles[r][serialNumber]; ok {
			return title, r, true
		}
	}
	return "", "", false
}
