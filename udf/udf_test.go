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
	"errors"
	"testing"

	"github.com/gotterz/go-ps2ident/internal/byteio"
)

func buildPartitionDescriptor(sector []byte, partitionNumber uint16, startingLocation, length uint32) {
	buildTag(sector, TagPartitionDescriptor, 0)
	binary.LittleEndian.PutUint16(sector[22:24], partitionNumber)
	binary.LittleEndian.PutUint32(sector[188:192], startingLocation)
	binary.LittleEndian.PutUint32(sector[192:196], length)
}

func buildLogicalVolumeDescriptor(sector []byte, blockSize uint32, partitionNumbers []uint16, fsdExtentLength, fsdBlock uint32) {
	buildTag(sector, TagLogicalVolumeDescriptor, 0)
	binary.LittleEndian.PutUint32(sector[212:216], blockSize)
	copy(sector[217:240], ostaCompliantMarker)
	binary.LittleEndian.PutUint32(sector[248:252], fsdExtentLength) // FileSetDescriptorLocation.ExtentLength
	binary.LittleEndian.PutUint32(sector[252:256], fsdBlock)        // FileSetDescriptorLocation.Location.Block
	binary.LittleEndian.PutUint32(sector[268:272], uint32(len(partitionNumbers)))

	offset := 440
	for _, pn := range partitionNumbers {
		sector[offset] = 1 // partition map type
		sector[offset+1] = type1PartitionMapSize
		binary.LittleEndian.PutUint16(sector[offset+4:offset+6], pn)
		offset += type1PartitionMapSize
	}
}

func buildTerminatingDescriptor(sector []byte) {
	buildTag(sector, TagTerminatingDescriptor, 0)
}

// TestWalkVolumeDescriptorSequenceMultiplePartitions builds a Volume
// Descriptor Sequence with two Partition Descriptors and a Logical Volume
// Descriptor whose partition maps reference both. The reference this
// reader is ported from stops at the first Partition Descriptor seen;
// resolving the partition-map entry for partition 1 would then fail here,
// since partition 1 would never have been registered.
func TestWalkVolumeDescriptorSequenceMultiplePartitions(t *testing.T) {
	t.Parallel()

	const sectorSize = 512
	buf := make([]byte, 4*sectorSize)

	buildPartitionDescriptor(buf[0*sectorSize:1*sectorSize], 0, 100, 50)
	buildPartitionDescriptor(buf[1*sectorSize:2*sectorSize], 1, 200, 50)
	buildLogicalVolumeDescriptor(buf[2*sectorSize:3*sectorSize], sectorSize, []uint16{0, 1}, 0, 0)
	buildTerminatingDescriptor(buf[3*sectorSize : 4*sectorSize])

	r := byteio.New(bytes.NewReader(buf), int64(len(buf)))
	avdp := AnchorVolumeDescriptorPointer{
		MainVolumeDescriptorSequence: ExtentDescriptor{Location: 0, Length: uint32(len(buf))},
	}

	vol, err := walkVolumeDescriptorSequence(r, avdp, sectorSize)
	if err != nil {
		t.Fatalf("walkVolumeDescriptorSequence() error = %v", err)
	}

	if len(vol.physicalByNumber) != 2 {
		t.Fatalf("got %d physical partitions, want 2: %+v", len(vol.physicalByNumber), vol.physicalByNumber)
	}
	if p, ok := vol.physicalByNumber[0]; !ok || p.byteOffset != 100*sectorSize || p.length != 50*sectorSize {
		t.Errorf("partition 0 = %+v, ok=%v", p, ok)
	}
	if p, ok := vol.physicalByNumber[1]; !ok || p.byteOffset != 200*sectorSize || p.length != 50*sectorSize {
		t.Errorf("partition 1 = %+v, ok=%v", p, ok)
	}

	want := []uint16{0, 1}
	if len(vol.logicalToPhysical) != len(want) {
		t.Fatalf("logicalToPhysical = %v, want %v", vol.logicalToPhysical, want)
	}
	for i, pn := range want {
		if vol.logicalToPhysical[i] != pn {
			t.Errorf("logicalToPhysical[%d] = %d, want %d", i, vol.logicalToPhysical[i], pn)
		}
	}
}

func TestWalkVolumeDescriptorSequenceMissingPartition(t *testing.T) {
	t.Parallel()

	const sectorSize = 512
	buf := make([]byte, 3*sectorSize)

	buildPartitionDescriptor(buf[0*sectorSize:1*sectorSize], 0, 100, 50)
	// References partition 1, never described.
	buildLogicalVolumeDescriptor(buf[1*sectorSize:2*sectorSize], sectorSize, []uint16{1}, 0, 0)
	buildTerminatingDescriptor(buf[2*sectorSize : 3*sectorSize])

	r := byteio.New(bytes.NewReader(buf), int64(len(buf)))
	avdp := AnchorVolumeDescriptorPointer{
		MainVolumeDescriptorSequence: ExtentDescriptor{Location: 0, Length: uint32(len(buf))},
	}

	_, err := walkVolumeDescriptorSequence(r, avdp, sectorSize)
	if !errors.Is(err, ErrCorruptDescriptor) {
		t.Errorf("error = %v, want ErrCorruptDescriptor", err)
	}
}

func TestWalkVolumeDescriptorSequenceMissingTerminator(t *testing.T) {
	t.Parallel()

	const sectorSize = 512
	buf := make([]byte, 2*sectorSize)

	buildPartitionDescriptor(buf[0*sectorSize:1*sectorSize], 0, 100, 50)
	buildLogicalVolumeDescriptor(buf[1*sectorSize:2*sectorSize], sectorSize, []uint16{0}, 0, 0)

	r := byteio.New(bytes.NewReader(buf), int64(len(buf)))
	avdp := AnchorVolumeDescriptorPointer{
		MainVolumeDescriptorSequence: ExtentDescriptor{Location: 0, Length: uint32(len(buf))},
	}

	_, err := walkVolumeDescriptorSequence(r, avdp, sectorSize)
	if !errors.Is(err, ErrCorruptDescriptor) {
		t.Errorf("error = %v, want ErrCorruptDescriptor", err)
	}
}

// synthesizedVolume builds a complete, minimal UDF disc image: a volume
// recognition sequence, an Anchor Volume Descriptor Pointer, a Volume
// Descriptor Sequence with one partition, a File Set Descriptor, a root
// File Entry addressed with a short allocation descriptor, and a root
// directory holding one file identifier.
func synthesizedVolume(t *testing.T, rootName string) []byte {
	t.Helper()

	const sectorSize = 2048
	const imageSize = 540000
	image := make([]byte, imageSize)

	copy(image[32768+1:32768+6], "BEA01")
	copy(image[34816+1:34816+6], "NSR02")
	copy(image[36864+1:36864+6], "TEA01")

	const avdpSector = 256
	const vdsStartSector = avdpSector + 1 // 257
	const vdsSectors = 3
	const partitionStartSector = vdsStartSector + vdsSectors + 1 // 261, leaves 260 unused as a gap

	avdpOff := avdpSector * sectorSize
	buildTag(image[avdpOff:], TagAnchorVolumeDescriptorPointer, avdpSector)
	binary.LittleEndian.PutUint32(image[avdpOff+16:avdpOff+20], vdsSectors*sectorSize) // Length
	binary.LittleEndian.PutUint32(image[avdpOff+20:avdpOff+24], vdsStartSector)        // Location

	pdOff := vdsStartSector * sectorSize
	buildPartitionDescriptor(image[pdOff:pdOff+512], 0, partitionStartSector, 20)

	lvdOff := (vdsStartSector + 1) * sectorSize
	buildLogicalVolumeDescriptor(image[lvdOff:lvdOff+512], sectorSize, []uint16{0}, sectorSize, 0)

	termOff := (vdsStartSector + 2) * sectorSize
	buildTerminatingDescriptor(image[termOff : termOff+512])

	partitionByteOffset := partitionStartSector * sectorSize

	// File Set Descriptor at partition-relative block 0.
	fsdOff := partitionByteOffset
	buildTag(image[fsdOff:], TagFileSetDescriptor, 0)
	binary.LittleEndian.PutUint32(image[fsdOff+400:fsdOff+404], sectorSize) // RootDirectoryICB.ExtentLength
	binary.LittleEndian.PutUint32(image[fsdOff+404:fsdOff+408], 1)          // RootDirectoryICB.Location.Block

	// Root File Entry at partition-relative block 1.
	entryOff := partitionByteOffset + 1*sectorSize
	buildTag(image[entryOff:], TagFileEntry, 0)
	image[entryOff+16+11] = byte(FileTypeDirectory) // ICBTag.FileType
	binary.LittleEndian.PutUint64(image[entryOff+56:entryOff+64], 0)    // InformationLength, filled in below
	binary.LittleEndian.PutUint32(image[entryOff+168:entryOff+172], 0)  // LengthOfExtendedAttributes
	binary.LittleEndian.PutUint32(image[entryOff+172:entryOff+176], 8)  // LengthOfAllocationDescriptors
	binary.LittleEndian.PutUint32(image[entryOff+176:entryOff+180], 0)  // allocation descriptor ExtentLength, filled below
	binary.LittleEndian.PutUint32(image[entryOff+180:entryOff+184], 2)  // allocation descriptor Location (block 2)

	// Root directory content at partition-relative block 2: one file
	// identifier descriptor naming rootName.
	dirOff := partitionByteOffset + 2*sectorSize
	dirBuf := make([]byte, 256)
	size := buildFileIdentifierDescriptor(dirBuf, 0, charExistence, rootName)
	copy(image[dirOff:], dirBuf[:size])

	binary.LittleEndian.PutUint64(image[entryOff+56:entryOff+64], uint64(size))
	binary.LittleEndian.PutUint32(image[entryOff+176:entryOff+180], uint32(size))

	return image
}

func TestOpenAndRootDirectory(t *testing.T) {
	t.Parallel()

	image := synthesizedVolume(t, "SLUS_200.62;1")
	r := byteio.New(bytes.NewReader(image), int64(len(image)))

	if !IsValid(r) {
		t.Fatal("IsValid() = false, want true")
	}

	vol, err := Open(r)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	entries, err := vol.RootDirectory()
	if err != nil {
		t.Fatalf("RootDirectory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(entries), entries)
	}
	if entries[0].Name != "SLUS_200.62;1" {
		t.Errorf("Name = %q, want %q", entries[0].Name, "SLUS_200.62;1")
	}
}

func TestSectorSizeNoValidAnchor(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 300*512)
	r := byteio.New(bytes.NewReader(buf), int64(len(buf)))

	_, err := SectorSize(r)
	if !errors.Is(err, ErrCorruptDescriptor) {
		t.Errorf("error = %v, want ErrCorruptDescriptor", err)
	}
}

func TestIsValidRejectsTooSmall(t *testing.T) {
	t.Parallel()

	r := byteio.New(bytes.NewReader(make([]byte, 1024)), 1024)
	if IsValid(r) {
		t.Error("IsValid() = true, want false")
	}
}

func TestIsValidRejectsMissingSequence(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 64*1024)
	r := byteio.New(bytes.NewReader(buf), int64(len(buf)))
	if IsValid(r) {
		t.Error("IsValid() = true, want false for an all-zero volume recognition sequence")
	}
}
