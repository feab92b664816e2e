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

// Package serial canonicalizes PlayStation 2 serial-number candidates and
// validates them against the set of publisher prefixes Sony ever issued.
package serial

import "strings"

// Prefixes lists every publisher prefix a retail PS2 serial number can
// begin with, ordered by descending number of releases that used it.
// Ordering only matters for anyone iterating the slice; lookups below
// use the derived set instead.
var Prefixes = []string{
	"SLPM", "SLES", "SCES", "SLUS", "SLPS", "SCUS", "SCPS", "SCAJ",
	"SLKA", "SCKA", "SLAJ", "NPJD", "TCPS", "KOEI", "NPUD", "ALCH",
	"PBGP", "NPED", "CPCS", "FVGK", "SCED", "NPJC", "GN", "GUST",
	"HSN", "SLED", "DMP", "INCH", "PBPX", "KAD", "SLPN", "TCES",
	"NPUC", "DESR", "PAPX", "PBPS", "PCPX", "ROSE", "SRPM", "SCEE",
	"HAKU", "GER", "HKID", "MPR", "GWS", "HKHS", "NS", "XSPL",
	"Sierra", "ARZE", "VUGJ", "VO", "WFLD",
}

var prefixSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Prefixes))
	for _, p := range Prefixes {
		set[strings.ToUpper(p)] = struct{}{}
	}
	return set
}()

// placeholderBody is the "no serial assigned" body some PS2 discs embed
// (e.g. "SLUS_999.99;1") that must never be treated as a real serial.
const placeholderBody = "99999"

// Canonicalize normalizes a raw serial-number candidate the way the
// database keys expect: upper case, periods dropped, underscores turned
// to hyphens, and any trailing ";version" suffix stripped.
func Canonicalize(raw string) string {
	s := strings.ToUpper(raw)
	if semi := strings.IndexByte(s, ';'); semi != -1 {
		s = s[:semi]
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "_", "-")
	return s
}

// HasKnownPrefix reports whether candidate (already canonicalized) begins
// with one of the publisher prefixes in Prefixes.
func HasKnownPrefix(candidate string) bool {
	prefix, _, found := strings.Cut(candidate, "-")
	if !found {
		return false
	}
	_, ok := prefixSet[prefix]
	return ok
}

// IsPlaceholder reports whether candidate is Sony's "no serial assigned"
// placeholder body rather than a real serial number.
func IsPlaceholder(candidate string) bool {
	return strings.Contains(candidate, placeholderBody)
}

// Valid canonicalizes raw and reports whether the result is a usable,
// non-placeholder serial number carrying a recognized publisher prefix.
// It returns the canonical form alongside the verdict so callers don't
// need to canonicalize twice.
func Valid(raw string) (candidate string, ok bool) {
	candidate = Canonicalize(raw)
	if candidate == "" {
		return candidate, false
	}
	if IsPlaceholder(candidate) {
		return candidate, false
	}
	if !HasKnownPrefix(candidate) {
		return candidate, false
	}
	return candidate, true
}
