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
	"encoding/binary"
	"fmt"
)

// fileEntryHeaderSize is the fixed portion of a File Entry, up to and
// including length_of_allocation_descriptors. The extended attributes and
// allocation descriptors that follow are variable length.
const fileEntryHeaderSize = 176

// FileEntry is the ICB content describing one file or directory: its
// type, and where its data extents live.
//
// The source this package is ported from reads
// length_of_allocation_descriptors from offset 173, one byte past where
// ECMA-167 §4/14.9.12 places it (offset 172); that one-byte slip also
// shifts every read after it on a big-endian host and silently drops
// alignment on little-endian ones. It also builds StrategyParameter as
// buffer[start+6:start+2], an empty slice on any Go-like slicing
// semantics, where ECMA-167 §4/14.6.5 specifies 2 bytes at offset 6. Both
// are read at their correct offsets here.
type FileEntry struct {
	Tag                           DescriptorTag
	ICBTag                        ICBTag
	InformationLength             uint64
	LengthOfExtendedAttributes    uint32
	LengthOfAllocationDescriptors uint32
	AllocationDescriptors         []byte
}

func parseFileEntry(buf []byte) (FileEntry, error) {
	tag, err := parseDescriptorTag(buf)
	if err != nil {
		return FileEntry{}, err
	}
	if err := expectTag(tag, TagFileEntry); err != nil {
		return FileEntry{}, err
	}

	if len(buf) < fileEntryHeaderSize {
		return FileEntry{}, fmt.Errorf("%w: file entry needs %d bytes, got %d", ErrCorruptDescriptor, fileEntryHeaderSize, len(buf))
	}

	icbTag, err := parseICBTag(buf, 16)
	if err != nil {
		return FileEntry{}, err
	}

	lengthEA := binary.LittleEndian.Uint32(buf[168:172])
	lengthAD := binary.LittleEndian.Uint32(buf[172:176])
	infoLength := binary.LittleEndian.Uint64(buf[56:64])

	adStart := fileEntryHeaderSize + int(lengthEA)
	adEnd := adStart + int(lengthAD)
	if adEnd > len(buf) {
		return FileEntry{}, fmt.Errorf("%w: file entry allocation descriptors run past buffer end", ErrCorruptDescriptor)
	}

	return FileEntry{
		Tag:                           tag,
		ICBTag:                        icbTag,
		InformationLength:             infoLength,
		LengthOfExtendedAttributes:    lengthEA,
		LengthOfAllocationDescriptors: lengthAD,
		AllocationDescriptors:         buf[adStart:adEnd],
	}, nil
}

// contentExtent is one (source bytes, file-relative offset) span used to
// assemble a file's content from its short allocation descriptors.
type contentExtent struct {
	fileOffset uint64
	byteOffset uint64
	length     uint32
}

// resolveExtents walks a File Entry's short allocation descriptors,
// translating logical-block locations within the owning partition into
// byte offsets within the disc image. Long and extended allocation are
// not implemented. Embedded content has no extents to resolve, so it is
// rejected here as well; Volume.readFileEntryContent reads it straight
// from the File Entry's allocation-descriptor region instead.
func resolveExtents(entry FileEntry, partitionStart uint64, blockSize uint32) ([]contentExtent, error) {
	switch entry.ICBTag.AllocationType {
	case AllocationEmbedded:
		return nil, fmt.Errorf("%w: embedded allocation", ErrUnsupportedFeature)
	case AllocationLong:
		return nil, fmt.Errorf("%w: long allocation descriptors", ErrUnsupportedFeature)
	case AllocationExtended:
		return nil, fmt.Errorf("%w: extended allocation descriptors", ErrUnsupportedFeature)
	case AllocationShort:
	default:
		return nil, fmt.Errorf("%w: allocation type %d", ErrUnsupportedFeature, entry.ICBTag.AllocationType)
	}

	var extents []contentExtent
	var fileOffset uint64

	buf := entry.AllocationDescriptors
	for i := 0; i+8 <= len(buf); i += 8 {
		sad, err := parseShortAllocationDescriptor(buf, i)
		if err != nil {
			return nil, err
		}
		if sad.ExtentLength == 0 {
			break
		}
		if sad.Flags != 0 {
			return nil, fmt.Errorf("%w: short allocation descriptor is not recorded and allocated", ErrUnsupportedFeature)
		}

		extents = append(extents, contentExtent{
			fileOffset: fileOffset,
			byteOffset: partitionStart + uint64(sad.Location)*uint64(blockSize),
			length:     sad.ExtentLength,
		})
		fileOffset += uint64(sad.ExtentLength)
	}

	return extents, nil
}

// FileIdentifier is one entry in a directory listing.
type FileIdentifier struct {
	Name            string
	Characteristics uint8
	ICB             LongAllocationDescriptor
}

// File identifier characteristic bits (ECMA-167 §4/14.4.3).
const (
	charExistence uint8 = 0x01
	charDirectory uint8 = 0x02
	charDeleted   uint8 = 0x04
	charParent    uint8 = 0x08
	charMetadata  uint8 = 0x10
)

// IsDirectory reports whether this entry names a subdirectory.
func (f FileIdentifier) IsDirectory() bool {
	return f.Characteristics&charDirectory != 0
}

// parseFileIdentifierDescriptor parses one File Identifier Descriptor
// starting at offset start in buf, returning the entry and the number of
// bytes it occupies once rounded up to a 4-byte boundary.
func parseFileIdentifierDescriptor(buf []byte, start int) (FileIdentifier, int, error) {
	const fixedSize = 38
	if start+fixedSize > len(buf) {
		return FileIdentifier{}, 0, fmt.Errorf("%w: file identifier descriptor truncated", ErrCorruptDescriptor)
	}

	tag, err := parseDescriptorTag(buf[start:])
	if err != nil {
		return FileIdentifier{}, 0, err
	}
	if err := expectTag(tag, TagFileIdentifierDescriptor); err != nil {
		return FileIdentifier{}, 0, err
	}

	characteristics := buf[start+18]
	lengthOfFileID := int(buf[start+19])
	icb, err := parseLongAllocationDescriptor(buf, start+20)
	if err != nil {
		return FileIdentifier{}, 0, err
	}
	lengthOfImplUse := int(binary.LittleEndian.Uint16(buf[start+36 : start+38]))

	nameStart := start + 38 + lengthOfImplUse
	nameEnd := nameStart + lengthOfFileID
	if nameEnd > len(buf) {
		return FileIdentifier{}, 0, fmt.Errorf("%w: file identifier descriptor name runs past buffer end", ErrCorruptDescriptor)
	}

	var name string
	if lengthOfFileID > 0 {
		compressionID := buf[nameStart]
		name, err = decodeDChars(buf[nameStart+1:nameEnd], compressionID)
		if err != nil {
			return FileIdentifier{}, 0, err
		}
	}

	size := roundUp(38+lengthOfImplUse+lengthOfFileID, 4)
	return FileIdentifier{Name: name, Characteristics: characteristics, ICB: icb}, size, nil
}

func roundUp(value, unit int) int {
	return (value + unit - 1) / unit * unit
}

// enumerateDirectory parses every File Identifier Descriptor in a
// directory's content bytes, skipping deleted entries and the parent
// ("..") entry.
func enumerateDirectory(content []byte) ([]FileIdentifier, error) {
	var entries []FileIdentifier

	pos := 0
	for pos < len(content) {
		entry, size, err := parseFileIdentifierDescriptor(content, pos)
		if err != nil {
			return nil, err
		}
		if size <= 0 {
			return nil, fmt.Errorf("%w: file identifier descriptor reported zero size", ErrCorruptDescriptor)
		}

		if entry.Characteristics&(charDeleted|charParent) == 0 {
			entries = append(entries, entry)
		}

		pos += size
	}

	return entries, nil
}
