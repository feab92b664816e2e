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

package udf

import (
	"fmt"
)

// decodeDString decodes a UDF d-string: a fixed-size field whose first
// byte is an OSTA compression ID (8 or 16) and whose last byte is the
// number of bytes actually used. Compression ID 8 is one byte per
// character (Latin-1); compression ID 16 is two bytes per character,
// big-endian. Either way the content is passed through as-is rather than
// transcoded to UTF-8, matching the behavior of the reference this
// package is ported from.
func decodeDString(buf []byte) (string, error) {
	if len(buf) < 2 {
		return "", fmt.Errorf("%w: d-string field needs at least 2 bytes, got %d", ErrCorruptDescriptor, len(buf))
	}

	compressionID := buf[0]
	length := int(buf[len(buf)-1])
	content := buf[1 : len(buf)-1]

	if length == 0 {
		return "", nil
	}
	if length > len(content) {
		return "", fmt.Errorf("%w: d-string claims length %d, field only carries %d content bytes", ErrCorruptDescriptor, length, len(content))
	}

	return decodeDChars(content[:length], compressionID)
}

// decodeDChars decodes a run of d-characters given an explicit byte count
// and OSTA compression ID, with no trailing length byte to strip. Used
// for file identifiers, where the length is carried separately in the
// File Identifier Descriptor.
func decodeDChars(buf []byte, compressionID byte) (string, error) {
	switch compressionID {
	case 8:
		return string(buf), nil
	case 16:
		if len(buf)%2 != 0 {
			return "", fmt.Errorf("%w: 16-bit d-characters field has odd length %d", ErrCorruptDescriptor, len(buf))
		}
		return string(buf), nil
	default:
		return "", fmt.Errorf("%w: unknown d-characters compression id %d", ErrUnsupportedFeature, compressionID)
	}
}
