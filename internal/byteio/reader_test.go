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

package byteio

import (
	"bytes"
	"testing"
)

func TestReaderReadAt(t *testing.T) {
	t.Parallel()

	data := []byte("0123456789")
	r := New(bytes.NewReader(data), int64(len(data)))

	tests := []struct {
		name   string
		offset int64
		n      int
		want   string
	}{
		{"within bounds", 2, 4, "2345"},
		{"exact end", 8, 2, "89"},
		{"short read past end", 8, 10, "89"},
		{"entirely past end", 20, 4, ""},
		{"zero length", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.ReadAt(tt.offset, tt.n)
			if err != nil {
				t.Fatalf("ReadAt() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReaderSize(t *testing.T) {
	t.Parallel()

	r := New(bytes.NewReader([]byte("abc")), 3)
	if r.Size() != 3 {
		t.Errorf("Size() = %d, want 3", r.Size())
	}
}

func TestReaderSequentialScan(t *testing.T) {
	t.Parallel()

	data := []byte("0123456789abcde")
	r := New(bytes.NewReader(data), int64(len(data)))

	var chunks []string
	var offsets []int64
	err := r.SequentialScan(4, func(chunk []byte, offset int64) bool {
		chunks = append(chunks, string(chunk))
		offsets = append(offsets, offset)
		return true
	})
	if err != nil {
		t.Fatalf("SequentialScan() error = %v", err)
	}

	wantChunks := []string{"0123", "4567", "89ab", "cde"}
	if len(chunks) != len(wantChunks) {
		t.Fatalf("got %d chunks, want %d: %v", len(chunks), len(wantChunks), chunks)
	}
	for i, c := range wantChunks {
		if chunks[i] != c {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], c)
		}
	}
	wantOffsets := []int64{0, 4, 8, 12}
	for i, o := range wantOffsets {
		if offsets[i] != o {
			t.Errorf("offset %d = %d, want %d", i, offsets[i], o)
		}
	}
}

func TestReaderSequentialScanEarlyStop(t *testing.T) {
	t.Parallel()

	data := []byte("0123456789")
	r := New(bytes.NewReader(data), int64(len(data)))

	var calls int
	err := r.SequentialScan(2, func(chunk []byte, offset int64) bool {
		calls++
		return calls < 2
	})
	if err != nil {
		t.Fatalf("SequentialScan() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestReaderSequentialScanInvalidChunkSize(t *testing.T) {
	t.Parallel()

	r := New(bytes.NewReader([]byte("abc")), 3)
	if err := r.SequentialScan(0, func([]byte, int64) bool { return true }); err == nil {
		t.Error("SequentialScan() with chunk size 0 should error")
	}
}
