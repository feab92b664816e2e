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
	"errors"
	"testing"
)

func TestDecodeDString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		buf     []byte
		want    string
		wantErr error
	}{
		{
			name: "8-bit compression",
			buf:  []byte{8, 'H', 'I', 2},
			want: "HI",
		},
		{
			name: "16-bit compression",
			buf:  []byte{16, 0x00, 0x41, 0x00, 0x42, 4},
			want: "\x00A\x00B",
		},
		{
			name: "zero length",
			buf:  []byte{8, 'X', 'Y', 0},
			want: "",
		},
		{
			name:    "too short",
			buf:     []byte{8},
			wantErr: ErrCorruptDescriptor,
		},
		{
			name:    "claimed length exceeds content",
			buf:     []byte{8, 'H', 'I', 5},
			wantErr: ErrCorruptDescriptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := decodeDString(tt.buf)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("decodeDString() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeDString() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("decodeDString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeDChars(t *testing.T) {
	t.Parallel()

	t.Run("8-bit passthrough", func(t *testing.T) {
		t.Parallel()

		got, err := decodeDChars([]byte("SLUS-20062"), 8)
		if err != nil {
			t.Fatalf("decodeDChars() error = %v", err)
		}
		if got != "SLUS-20062" {
			t.Errorf("decodeDChars() = %q, want %q", got, "SLUS-20062")
		}
	})

	t.Run("16-bit odd length", func(t *testing.T) {
		t.Parallel()

		_, err := decodeDChars([]byte{0x00, 0x41, 0x00}, 16)
		if !errors.Is(err, ErrCorruptDescriptor) {
			t.Errorf("error = %v, want ErrCorruptDescriptor", err)
		}
	})

	t.Run("unknown compression id", func(t *testing.T) {
		t.Parallel()

		_, err := decodeDChars([]byte("X"), 4)
		if !errors.Is(err, ErrUnsupportedFeature) {
			t.Errorf("error = %v, want ErrUnsupportedFeature", err)
		}
	})
}
