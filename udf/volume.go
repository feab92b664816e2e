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
	"bytes"
	"encoding/binary"
	"fmt"
)

// AnchorVolumeDescriptorPointer points at the main and reserve Volume
// Descriptor Sequences. It always lives at logical sector 256.
type AnchorVolumeDescriptorPointer struct {
	Tag                          DescriptorTag
	MainVolumeDescriptorSequence ExtentDescriptor
}

func parseAnchorVolumeDescriptorPointer(buf []byte) (AnchorVolumeDescriptorPointer, error) {
	tag, err := parseDescriptorTag(buf)
	if err != nil {
		return AnchorVolumeDescriptorPointer{}, err
	}
	if err := expectTag(tag, TagAnchorVolumeDescriptorPointer); err != nil {
		return AnchorVolumeDescriptorPointer{}, err
	}

	main, err := parseExtentDescriptor(buf, 16)
	if err != nil {
		return AnchorVolumeDescriptorPointer{}, err
	}

	return AnchorVolumeDescriptorPointer{Tag: tag, MainVolumeDescriptorSequence: main}, nil
}

// primaryVolumeDescriptor carries only the fields the identifier needs
// downstream; the rest of ECMA-167 §3/7.2 (character sets, timestamps,
// application identifier) is parsed in the original reference but never
// consumed by anything in this pipeline.
type primaryVolumeDescriptor struct {
	Tag              DescriptorTag
	VolumeIdentifier string
}

func parsePrimaryVolumeDescriptor(buf []byte) (primaryVolumeDescriptor, error) {
	tag, err := parseDescriptorTag(buf)
	if err != nil {
		return primaryVolumeDescriptor{}, err
	}
	if err := expectTag(tag, TagPrimaryVolumeDescriptor); err != nil {
		return primaryVolumeDescriptor{}, err
	}

	volID, err := decodeDString(buf[24:56])
	if err != nil {
		return primaryVolumeDescriptor{}, err
	}

	return primaryVolumeDescriptor{Tag: tag, VolumeIdentifier: volID}, nil
}

// partitionDescriptor records where a physical partition's blocks live on
// disk and the partition number logical volumes reference it by.
type partitionDescriptor struct {
	Tag              DescriptorTag
	PartitionNumber  uint16
	StartingLocation uint32
	Length           uint32
}

func parsePartitionDescriptor(buf []byte) (partitionDescriptor, error) {
	tag, err := parseDescriptorTag(buf)
	if err != nil {
		return partitionDescriptor{}, err
	}
	if err := expectTag(tag, TagPartitionDescriptor); err != nil {
		return partitionDescriptor{}, err
	}

	return partitionDescriptor{
		Tag:              tag,
		PartitionNumber:  binary.LittleEndian.Uint16(buf[22:24]),
		StartingLocation: binary.LittleEndian.Uint32(buf[188:192]),
		Length:           binary.LittleEndian.Uint32(buf[192:196]),
	}, nil
}

// logicalVolumeDescriptor names which physical partitions back a logical
// volume, in partition map order, plus where to find its File Set
// Descriptor.
type logicalVolumeDescriptor struct {
	Tag                       DescriptorTag
	LogicalBlockSize          uint32
	PartitionMaps             []Type1PartitionMap
	FileSetDescriptorLocation LongAllocationDescriptor
}

var ostaCompliantMarker = []byte("*OSTA UDF Compliant")

func parseLogicalVolumeDescriptor(buf []byte) (logicalVolumeDescriptor, error) {
	tag, err := parseDescriptorTag(buf)
	if err != nil {
		return logicalVolumeDescriptor{}, err
	}
	if err := expectTag(tag, TagLogicalVolumeDescriptor); err != nil {
		return logicalVolumeDescriptor{}, err
	}

	domain, err := parseEntityID(buf, 216)
	if err != nil {
		return logicalVolumeDescriptor{}, err
	}
	if !bytes.Contains(domain.Identifier, ostaCompliantMarker) {
		return logicalVolumeDescriptor{}, fmt.Errorf("%w: logical volume is not OSTA UDF compliant", ErrUnsupportedFeature)
	}

	fsdLocation, err := parseLongAllocationDescriptor(buf[248:264], 0)
	if err != nil {
		return logicalVolumeDescriptor{}, err
	}

	numMaps := binary.LittleEndian.Uint32(buf[268:272])
	mapBuf := buf[440:512]

	maps := make([]Type1PartitionMap, 0, numMaps)
	offset := 0
	for i := uint32(0); i < numMaps; i++ {
		pm, err := parseType1PartitionMap(mapBuf, offset)
		if err != nil {
			return logicalVolumeDescriptor{}, err
		}
		maps = append(maps, pm)
		offset += type1PartitionMapSize
	}

	return logicalVolumeDescriptor{
		Tag:                       tag,
		LogicalBlockSize:          binary.LittleEndian.Uint32(buf[212:216]),
		PartitionMaps:             maps,
		FileSetDescriptorLocation: fsdLocation,
	}, nil
}

// fileSetDescriptor names the root directory's ICB within its logical
// partition.
type fileSetDescriptor struct {
	Tag              DescriptorTag
	RootDirectoryICB LongAllocationDescriptor
}

func parseFileSetDescriptor(buf []byte) (fileSetDescriptor, error) {
	tag, err := parseDescriptorTag(buf)
	if err != nil {
		return fileSetDescriptor{}, err
	}
	if err := expectTag(tag, TagFileSetDescriptor); err != nil {
		return fileSetDescriptor{}, err
	}

	root, err := parseLongAllocationDescriptor(buf, 400)
	if err != nil {
		return fileSetDescriptor{}, err
	}

	return fileSetDescriptor{Tag: tag, RootDirectoryICB: root}, nil
}

func parseTerminatingDescriptor(buf []byte) (DescriptorTag, error) {
	tag, err := parseDescriptorTag(buf)
	if err != nil {
		return DescriptorTag{}, err
	}
	if err := expectTag(tag, TagTerminatingDescriptor); err != nil {
		return DescriptorTag{}, err
	}
	return tag, nil
}
