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

// Command ps2id identifies a PlayStation 2 disc image and prints its
// serial number, title and region.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/gotterz/go-ps2ident/discimage"
	"github.com/gotterz/go-ps2ident/regiondb"
)

var (
	inputFile  = flag.String("i", "", "input disc image path, .iso or .bin (required)")
	dbDir      = flag.String("db-dir", "", "directory containing the six db_playstation2_official_*.json region files (required)")
	jsonOutput = flag.Bool("json", false, "output as JSON")
	version    = flag.Bool("version", false, "print version and exit")
)

const appVersion = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i <file> -db-dir <dir> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Identifies a PlayStation 2 disc image.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i game.iso -db-dir ./regiondb\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i game.bin -db-dir ./regiondb -json\n", os.Args[0])
	}
	flag.Parse()

	if *version {
		fmt.Printf("ps2id version %s\n", appVersion)
		return
	}

	if *inputFile == "" || *dbDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -i and -db-dir are both required")
		flag.Usage()
		os.Exit(1)
	}

	db, err := regiondb.Load(*dbDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading region databases: %v\n", err)
		os.Exit(1)
	}

	result, err := discimage.Identify(*inputFile, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error identifying disc: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		outputJSON(result)
	} else {
		outputText(result)
	}
}

func outputJSON(result discimage.Result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func outputText(result discimage.Result) {
	fmt.Printf("Serial: %s\n", result.SerialNumber)
	fmt.Printf("Title: %s\n", result.Title)
	fmt.Printf("Region: %s\n", result.Region)
	fmt.Printf("Disc Type: %s\n", result.DiscType)
}
