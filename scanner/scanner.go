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

// Package scanner is the last-resort identifier: a streaming regular
// expression scan over the raw bytes of a disc image, used when neither
// the udf nor the iso9660 reader can make sense of it.
package scanner

import (
	"regexp"
	"strings"

	"github.com/gotterz/go-ps2ident/internal/byteio"
	"github.com/gotterz/go-ps2ident/serial"
)

// bufferSize matches the 10 MiB read buffer the reference scanner uses;
// large enough that a serial number crossing a buffer boundary is a rare
// edge case rather than the common one.
const bufferSize = 1024 * 1024 * 10

// maxPrefixLen is the number of trailing bytes of each window carried
// into the next one. A serial whose first byte lies within those last
// bytes is found whole in the next window; a serial that begins earlier
// and still crosses the boundary is not found in either window.
const maxPrefixLen = 6

var serialPattern = func() *regexp.Regexp {
	quoted := make([]string, len(serial.Prefixes))
	for i, p := range serial.Prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?:` + strings.Join(quoted, "|") + `)[_-][0-9.]+;`)
}()

// FindSerial streams r from the start looking for the first byte range
// matching <prefix>[_-][0-9.]+; for any prefix in serial.Prefixes,
// rejecting the "999.99" placeholder body, and returns it canonicalized.
// It reports ok == false if no such candidate exists anywhere in r.
func FindSerial(r *byteio.Reader) (candidate string, ok bool, err error) {
	var carry []byte

	scanErr := r.SequentialScan(bufferSize, func(chunk []byte, offset int64) bool {
		window := chunk
		if len(carry) > 0 {
			window = append(append([]byte{}, carry...), chunk...)
		}

		if match := findSerialInWindow(window); match != "" {
			candidate = match
			ok = true
			return false
		}

		carry = nil
		if len(window) > maxPrefixLen {
			carry = append(carry, window[len(window)-maxPrefixLen:]...)
		}

		return true
	})
	if scanErr != nil {
		return "", false, scanErr
	}

	return candidate, ok, nil
}

// findSerialInWindow returns the first valid, non-placeholder serial
// candidate in window, or "" if there is none.
func findSerialInWindow(window []byte) string {
	for _, loc := range serialPattern.FindAllIndex(window, -1) {
		raw := string(window[loc[0]:loc[1]])
		if candidate, ok := serial.Valid(raw); ok {
			return candidate
		}
	}
	return ""
}
