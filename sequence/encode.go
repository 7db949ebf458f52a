// elCorrect: quality-aware correction of sequencing reads.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elcorrect/blob/master/LICENSE.txt>.

package sequence

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/elcorrect/utils/nibbles"
)

/*
Encoded is the [NofBases x L] boolean matrix representation of a
nucleotide sequence: base b is set at position pos iff b is consistent
with the symbol at pos.

The matrix is held both column-wise, as one 4-bit mask per position,
and row-wise, as one bit plane per strict base. Encoded values are
immutable after construction and safe for concurrent use.
*/
type Encoded struct {
	masks  nibbles.Nibbles
	planes [NofBases]*bitset.BitSet
}

// Encode encodes the given symbols. Symbols are case-insensitive and
// may include ambiguity codes.
func Encode(symbols string) (*Encoded, error) {
	return EncodePadded(symbols, len(symbols))
}

// EncodePadded encodes the given symbols, right-padded with empty
// columns up to the given length.
func EncodePadded(symbols string, length int) (*Encoded, error) {
	if length < len(symbols) {
		return nil, &LengthMismatchError{What: "padded sequence", Index: -1, Expected: len(symbols), Actual: length}
	}
	masks := nibbles.Make(length)
	for pos := 0; pos < len(symbols); pos++ {
		mask := symbolMasks[symbols[pos]]
		if mask == 0 {
			return nil, &EncodingError{Symbol: symbols[pos], Position: pos}
		}
		masks.Set(pos, mask)
	}
	return fromMasks(masks), nil
}

// FromMasks creates an encoded sequence from per-position base masks.
func FromMasks(masks []byte) *Encoded {
	return fromMasks(nibbles.FromBytes(masks))
}

func fromMasks(masks nibbles.Nibbles) *Encoded {
	length := uint(masks.Len())
	e := &Encoded{masks: masks}
	for b := range e.planes {
		e.planes[b] = bitset.New(length)
	}
	for pos := uint(0); pos < length; pos++ {
		mask := masks.Get(int(pos))
		for b := 0; b < NofBases; b++ {
			if mask&(1<<uint(b)) != 0 {
				e.planes[b].Set(pos)
			}
		}
	}
	return e
}

// Len returns the number of positions.
func (e *Encoded) Len() int {
	return e.masks.Len()
}

// Mask returns the base mask at the given position.
func (e *Encoded) Mask(pos int) byte {
	return e.masks.Get(pos)
}

// Has reports whether the given base index is consistent with the
// symbol at the given position.
func (e *Encoded) Has(base, pos int) bool {
	return e.masks.Intersects(pos, 1<<uint(base))
}

// Plane returns the bit plane of the given base index. The result must
// not be modified.
func (e *Encoded) Plane(base int) *bitset.BitSet {
	return e.planes[base]
}

// Call returns the lowest base index consistent with the symbol at the
// given position, or 0 for a padding column.
func (e *Encoded) Call(pos int) int {
	mask := e.masks.Get(pos)
	for b := 0; b < NofBases; b++ {
		if mask&(1<<uint(b)) != 0 {
			return b
		}
	}
	return 0
}

// Masks returns a copy of the per-position base masks.
func (e *Encoded) Masks() []byte {
	return e.masks.Expand()
}

// Equal reports whether e and f encode the same base sets.
func (e *Encoded) Equal(f *Encoded) bool {
	return e.masks.Equal(f.masks)
}

// String returns the canonical upper case symbols, with '-' for padding.
func (e *Encoded) String() string {
	result := make([]byte, e.Len())
	for pos := range result {
		result[pos] = MaskSymbol(e.masks.Get(pos))
	}
	return string(result)
}
