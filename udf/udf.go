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

	"github.com/gotterz/go-ps2ident/internal/byteio"
)

// headerSize is the reserved System Area at the start of every UDF
// volume: 32 KiB that predates the volume recognition sequence.
const headerSize = 32 * 1024

// candidateSectorSizes are tried, largest first, when locating the
// Anchor Volume Descriptor Pointer: a disc image gives no other way to
// learn its own sector size up front.
var candidateSectorSizes = []int{4096, 2048, 1024, 512}

// IsValid reports whether r begins with a UDF volume recognition
// sequence: after the 32 KiB system area, a run of 2048-byte Volume
// Structure Descriptor sectors containing at least one BEA01 (beginning
// extended area), one NSR02/NSR03 (the actual UDF/NSR descriptor), and
// one TEA01 (terminating extended area), in any order, with no
// unrecognized standard identifier breaking the run before all three
// have been seen.
func IsValid(r *byteio.Reader) bool {
	const vrsSectorSize = 2048

	if r.Size() < int64(headerSize+vrsSectorSize) {
		return false
	}

	var hasBEA, hasNSR, hasTEA bool

	for offset := int64(headerSize); offset+vrsSectorSize <= r.Size(); offset += vrsSectorSize {
		sector, err := r.ReadAt(offset, vrsSectorSize)
		if err != nil || len(sector) < vrsSectorSize {
			break
		}

		identifier := string(sector[1:6])
		switch identifier {
		case "BEA01":
			hasBEA = true
		case "NSR02", "NSR03":
			hasNSR = true
		case "TEA01":
			hasTEA = true
		case "BOOT2", "CD001", "CDW02":
			// Recognized but irrelevant sector types; keep scanning.
		default:
			return hasBEA && hasNSR && hasTEA
		}
	}

	return hasBEA && hasNSR && hasTEA
}

// SectorSize probes the physical sector size of a UDF volume by trying
// each candidate size and checking whether sector 256 (the fixed AVDP
// location by UDF convention) holds a Descriptor Tag that both
// checksums and self-reports tag_location 256.
func SectorSize(r *byteio.Reader) (int, error) {
	for _, size := range candidateSectorSizes {
		if r.Size() < int64(257*size) {
			continue
		}

		offset := int64(256 * size)
		buf, err := r.ReadAt(offset, tagSize)
		if err != nil || len(buf) < tagSize {
			continue
		}

		tag, err := parseDescriptorTag(buf)
		if err != nil {
			continue
		}
		if tag.Location != 256 {
			continue
		}
		if tag.Identifier != TagAnchorVolumeDescriptorPointer {
			continue
		}

		return size, nil
	}

	return 0, fmt.Errorf("%w: no candidate sector size produced a valid anchor volume descriptor pointer", ErrCorruptDescriptor)
}

// physicalPartition is a byte-addressable span of the disc image backing
// one UDF partition number.
type physicalPartition struct {
	byteOffset int64
	length     int64
}

// Volume is a mounted UDF volume: enough state to resolve the root
// directory and read any file reachable from it.
type Volume struct {
	r                 *byteio.Reader
	sectorSize        int
	blockSize         uint32
	physicalByNumber  map[uint16]physicalPartition
	logicalToPhysical []uint16 // index: logical partition reference number
	rootDirectoryICB  LongAllocationDescriptor
}

// Open performs the full UDF mount procedure described in ECMA-167 §5/2
// and the corresponding OSTA UDF "mount procedure": validate the volume
// recognition sequence, probe the sector size, read the Anchor Volume
// Descriptor Pointer, walk the Volume Descriptor Sequence accumulating
// every descriptor it needs, resolve the logical-to-physical partition
// mapping, and locate the root directory's ICB. It does not itself
// enumerate the root directory; call RootDirectory for that.
func Open(r *byteio.Reader) (*Volume, error) {
	if !IsValid(r) {
		return nil, fmt.Errorf("%w", ErrNotUDF)
	}

	sectorSize, err := SectorSize(r)
	if err != nil {
		return nil, err
	}

	avdpBuf, err := r.ReadAt(int64(256*sectorSize), 512)
	if err != nil {
		return nil, fmt.Errorf("read anchor volume descriptor pointer: %w", err)
	}
	avdp, err := parseAnchorVolumeDescriptorPointer(avdpBuf)
	if err != nil {
		return nil, err
	}

	vol, err := walkVolumeDescriptorSequence(r, avdp, sectorSize)
	if err != nil {
		return nil, err
	}

	return vol, nil
}

// vdsState accumulates the descriptors the Volume Descriptor Sequence
// walk is looking for. Every Partition Descriptor encountered is kept
// (a volume may legitimately span more than one physical partition),
// correcting the single-partition assumption the reference this reader
// is ported from makes by stopping at the first one.
type vdsState struct {
	partitions    map[uint16]physicalPartition
	lvd           *logicalVolumeDescriptor
	sawTerminator bool
}

func walkVolumeDescriptorSequence(r *byteio.Reader, avdp AnchorVolumeDescriptorPointer, sectorSize int) (*Volume, error) {
	state := vdsState{partitions: make(map[uint16]physicalPartition)}

	startSector := int64(avdp.MainVolumeDescriptorSequence.Location)
	extentSectors := int64(avdp.MainVolumeDescriptorSequence.Length) / int64(sectorSize)

	for sector := startSector; sector < startSector+extentSectors; sector++ {
		offset := sector * int64(sectorSize)

		tagBuf, err := r.ReadAt(offset, tagSize)
		if err != nil || len(tagBuf) < tagSize {
			break
		}
		tag, err := parseDescriptorTag(tagBuf)
		if err != nil {
			continue
		}

		buf, err := r.ReadAt(offset, 512)
		if err != nil {
			return nil, fmt.Errorf("read volume descriptor sector %d: %w", sector, err)
		}

		switch tag.Identifier {
		case TagPrimaryVolumeDescriptor:
			if _, err := parsePrimaryVolumeDescriptor(buf); err != nil {
				return nil, err
			}
		case TagPartitionDescriptor:
			pd, err := parsePartitionDescriptor(buf)
			if err != nil {
				return nil, err
			}
			state.partitions[pd.PartitionNumber] = physicalPartition{
				byteOffset: int64(pd.StartingLocation) * int64(sectorSize),
				length:     int64(pd.Length) * int64(sectorSize),
			}
		case TagLogicalVolumeDescriptor:
			lvd, err := parseLogicalVolumeDescriptor(buf)
			if err != nil {
				return nil, err
			}
			state.lvd = &lvd
		case TagTerminatingDescriptor:
			if _, err := parseTerminatingDescriptor(buf); err != nil {
				return nil, err
			}
			state.sawTerminator = true
		case TagVolumeDescriptorPointer, TagImplementationUseVolumeDescriptor,
			TagUnallocatedSpaceDescriptor, TagLogicalVolumeIntegrityDescriptor:
			// Recognized but not needed to resolve the root directory.
		default:
			return nil, fmt.Errorf("%w: unexpected tag identifier %d in volume descriptor sequence", ErrCorruptDescriptor, tag.Identifier)
		}

		if state.lvd != nil && len(state.partitions) > 0 && state.sawTerminator {
			break
		}
	}

	if state.lvd == nil {
		return nil, fmt.Errorf("%w: volume descriptor sequence has no logical volume descriptor", ErrCorruptDescriptor)
	}
	if len(state.partitions) == 0 {
		return nil, fmt.Errorf("%w: volume descriptor sequence has no partition descriptor", ErrCorruptDescriptor)
	}
	if !state.sawTerminator {
		return nil, fmt.Errorf("%w: volume descriptor sequence has no terminating descriptor", ErrCorruptDescriptor)
	}

	logicalToPhysical := make([]uint16, len(state.lvd.PartitionMaps))
	for i, pm := range state.lvd.PartitionMaps {
		if _, ok := state.partitions[pm.PartitionNumber]; !ok {
			return nil, fmt.Errorf("%w: partition map references unknown partition number %d", ErrCorruptDescriptor, pm.PartitionNumber)
		}
		logicalToPhysical[i] = pm.PartitionNumber
	}

	return &Volume{
		r:                 r,
		sectorSize:        sectorSize,
		blockSize:         state.lvd.LogicalBlockSize,
		physicalByNumber:  state.partitions,
		logicalToPhysical: logicalToPhysical,
		rootDirectoryICB:  state.lvd.FileSetDescriptorLocation,
	}, nil
}

// resolveLongAllocation turns a Long Allocation Descriptor into an
// absolute byte offset in the disc image.
func (v *Volume) resolveLongAllocation(lad LongAllocationDescriptor) (int64, error) {
	if int(lad.Location.PartitionRef) >= len(v.logicalToPhysical) {
		return 0, fmt.Errorf("%w: logical partition reference %d out of range", ErrCorruptDescriptor, lad.Location.PartitionRef)
	}
	physicalNumber := v.logicalToPhysical[lad.Location.PartitionRef]
	part, ok := v.physicalByNumber[physicalNumber]
	if !ok {
		return 0, fmt.Errorf("%w: unknown physical partition %d", ErrCorruptDescriptor, physicalNumber)
	}
	return part.byteOffset + int64(lad.Location.Block)*int64(v.blockSize), nil
}

// readExtent reads a tagged descriptor (File Set Descriptor or File
// Entry) living at the extent named by lad.
func (v *Volume) readExtent(lad LongAllocationDescriptor) ([]byte, error) {
	offset, err := v.resolveLongAllocation(lad)
	if err != nil {
		return nil, err
	}
	buf, err := v.r.ReadAt(offset, int(lad.ExtentLength))
	if err != nil {
		return nil, fmt.Errorf("read extent at byte offset %d: %w", offset, err)
	}
	return buf, nil
}

// rootFileEntry resolves the File Set Descriptor and then the File Entry
// for the root directory's ICB.
func (v *Volume) rootFileEntry() (FileEntry, uint16, error) {
	fsdBuf, err := v.readExtent(v.rootDirectoryICB)
	if err != nil {
		return FileEntry{}, 0, err
	}
	fsd, err := parseFileSetDescriptor(fsdBuf)
	if err != nil {
		return FileEntry{}, 0, err
	}

	entryBuf, err := v.readExtent(fsd.RootDirectoryICB)
	if err != nil {
		return FileEntry{}, 0, err
	}
	entry, err := parseFileEntry(entryBuf)
	if err != nil {
		return FileEntry{}, 0, err
	}
	if entry.ICBTag.FileType != FileTypeDirectory {
		return FileEntry{}, 0, fmt.Errorf("%w: root directory ICB does not reference a directory (file type %d)", ErrCorruptDescriptor, entry.ICBTag.FileType)
	}

	return entry, fsd.RootDirectoryICB.Location.PartitionRef, nil
}

// readFileEntryContent reads and concatenates the bytes of every content
// extent belonging to entry, which must live in the logical partition
// named by partitionRef.
func (v *Volume) readFileEntryContent(entry FileEntry, partitionRef uint16) ([]byte, error) {
	if entry.ICBTag.AllocationType == AllocationEmbedded {
		content := entry.AllocationDescriptors
		if uint64(len(content)) > entry.InformationLength {
			content = content[:entry.InformationLength]
		}
		return content, nil
	}

	if int(partitionRef) >= len(v.logicalToPhysical) {
		return nil, fmt.Errorf("%w: logical partition reference %d out of range", ErrCorruptDescriptor, partitionRef)
	}
	physicalNumber := v.logicalToPhysical[partitionRef]
	part, ok := v.physicalByNumber[physicalNumber]
	if !ok {
		return nil, fmt.Errorf("%w: unknown physical partition %d", ErrCorruptDescriptor, physicalNumber)
	}

	extents, err := resolveExtents(entry, uint64(part.byteOffset), v.blockSize)
	if err != nil {
		return nil, err
	}

	content := make([]byte, 0, entry.InformationLength)
	for _, extent := range extents {
		chunk, err := v.r.ReadAt(int64(extent.byteOffset), int(extent.length))
		if err != nil {
			return nil, fmt.Errorf("read file content extent: %w", err)
		}
		content = append(content, chunk...)
	}

	if uint64(len(content)) > entry.InformationLength {
		content = content[:entry.InformationLength]
	}

	return content, nil
}

// RootDirectory enumerates the root directory's immediate children.
func (v *Volume) RootDirectory() ([]FileIdentifier, error) {
	entry, partitionRef, err := v.rootFileEntry()
	if err != nil {
		return nil, err
	}

	content, err := v.readFileEntryContent(entry, partitionRef)
	if err != nil {
		return nil, err
	}

	return enumerateDirectory(content)
}

// ReadFile reads the full content of the file or directory named by id.
func (v *Volume) ReadFile(id FileIdentifier) ([]byte, error) {
	entryBuf, err := v.readExtent(id.ICB)
	if err != nil {
		return nil, err
	}
	entry, err := parseFileEntry(entryBuf)
	if err != nil {
		return nil, err
	}
	return v.readFileEntryContent(entry, id.ICB.Location.PartitionRef)
}
