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

import "errors"

// Sentinel errors distinguishing the three ways a UDF parse can fail. All
// are recovered by the orchestrator (discimage falls through to iso9660),
// but are kept distinct so callers and tests can tell a "not UDF at all"
// image, a corrupt one, and a "UDF, but uses a feature we don't read"
// image apart.
var (
	// ErrCorruptDescriptor indicates a tag checksum mismatch, a non-zero
	// reserved field, a truncated buffer, or a tag identifier that is
	// unexpected in context.
	ErrCorruptDescriptor = errors.New("corrupt UDF descriptor")

	// ErrUnsupportedFeature indicates a structurally valid UDF volume
	// that uses something this reader does not implement: an allocation
	// type other than short/embedded, a partition map type other than 1,
	// or a logical volume that is not OSTA UDF compliant.
	ErrUnsupportedFeature = errors.New("unsupported UDF feature")

	// ErrNotUDF indicates the image does not begin with a UDF volume
	// recognition sequence at all.
	ErrNotUDF = errors.New("not a UDF volume")
)
