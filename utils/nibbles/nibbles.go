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

package nibbles

import (
	"log"
	"strconv"
)

// Nibbles is a slice-like data structure for storing
// sequences of 4-bit values, two per byte. The high
// nibble of a byte holds the even index.
type Nibbles struct {
	len   int
	bytes []byte
}

// Make creates zeroed nibbles of the given length.
func Make(n int) Nibbles {
	return Nibbles{
		len:   n,
		bytes: make([]byte, (n+1)>>1),
	}
}

// FromBytes creates nibbles holding the low 4 bits of each given byte.
func FromBytes(values []byte) Nibbles {
	n := Make(len(values))
	for i, value := range values {
		n.set(i, value)
	}
	return n
}

// Len returns the number of 4-bit values stored in these nibbles.
func (n Nibbles) Len() int {
	return n.len
}

func (n Nibbles) get(index int) byte {
	return 0xF & (n.bytes[index>>1] >> uint((1^(index&1))<<2))
}

func (n Nibbles) set(index int, value byte) {
	i := index >> 1
	bit := index & 1
	n.bytes[i] = ((0xF << uint(bit<<2)) & n.bytes[i]) | ((0xF & value) << uint((1^bit)<<2))
}

// Get returns the nibble at the given index.
func (n Nibbles) Get(index int) byte {
	if index < 0 || index >= n.len {
		log.Panic("index out of range")
	}
	return n.get(index)
}

// Set sets the nibble at the given index.
func (n Nibbles) Set(index int, value byte) {
	if index < 0 || index >= n.len {
		log.Panic("index out of range")
	}
	n.set(index, value)
}

// Intersects reports whether the nibbles at the given index share
// at least one bit with the given mask.
func (n Nibbles) Intersects(index int, mask byte) bool {
	return n.Get(index)&mask != 0
}

// Expand returns a byte slice with the same contents, but where each entry is stored in a byte.
func (n Nibbles) Expand() []byte {
	result := make([]byte, n.len)
	for k := range result {
		result[k] = n.get(k)
	}
	return result
}

// Equal reports whether n and m hold the same values.
func (n Nibbles) Equal(m Nibbles) bool {
	if n.len != m.len {
		return false
	}
	for i := 0; i < n.len; i++ {
		if n.get(i) != m.get(i) {
			return false
		}
	}
	return true
}

// String returns a string representation of the given nibbles.
func (n Nibbles) String() string {
	if n.len == 0 {
		return "[]"
	}
	b := []byte("[")
	b = strconv.AppendInt(b, int64(n.get(0)), 10)
	for i := 1; i < n.len; i++ {
		b = append(b, ' ')
		b = strconv.AppendInt(b, int64(n.get(i)), 10)
	}
	return string(append(b, ']'))
}
