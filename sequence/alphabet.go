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

// NofBases is the number of strict bases.
const NofBases = 4

// Bases lists the strict bases in index order. Base indexes used
// throughout this package refer to positions in this string, which is
// also the tie-break order for base calls.
const Bases = "ACGT"

// Base masks, one bit per strict base in Bases order.
const (
	MaskA byte = 1 << iota
	MaskC
	MaskG
	MaskT

	MaskN = MaskA | MaskC | MaskG | MaskT
)

// symbolMasks maps each recognized symbol, in upper and lower case,
// to its set of strict bases. Zero entries are not part of the
// alphabet.
var symbolMasks = [256]byte{
	'A': MaskA, 'a': MaskA,
	'C': MaskC, 'c': MaskC,
	'G': MaskG, 'g': MaskG,
	'T': MaskT, 't': MaskT,
	'R': MaskA | MaskG, 'r': MaskA | MaskG,
	'Y': MaskC | MaskT, 'y': MaskC | MaskT,
	'S': MaskC | MaskG, 's': MaskC | MaskG,
	'W': MaskA | MaskT, 'w': MaskA | MaskT,
	'K': MaskG | MaskT, 'k': MaskG | MaskT,
	'M': MaskA | MaskC, 'm': MaskA | MaskC,
	'B': MaskC | MaskG | MaskT, 'b': MaskC | MaskG | MaskT,
	'D': MaskA | MaskG | MaskT, 'd': MaskA | MaskG | MaskT,
	'H': MaskA | MaskC | MaskT, 'h': MaskA | MaskC | MaskT,
	'V': MaskA | MaskC | MaskG, 'v': MaskA | MaskC | MaskG,
	'N': MaskN, 'n': MaskN,
}

// maskSymbols is the inverse of symbolMasks for upper case symbols.
// The empty mask maps to '-', which marks padding.
var maskSymbols = [16]byte{
	0:                     '-',
	MaskA:                 'A',
	MaskC:                 'C',
	MaskG:                 'G',
	MaskT:                 'T',
	MaskA | MaskG:         'R',
	MaskC | MaskT:         'Y',
	MaskC | MaskG:         'S',
	MaskA | MaskT:         'W',
	MaskG | MaskT:         'K',
	MaskA | MaskC:         'M',
	MaskC | MaskG | MaskT: 'B',
	MaskA | MaskG | MaskT: 'D',
	MaskA | MaskC | MaskT: 'H',
	MaskA | MaskC | MaskG: 'V',
	MaskN:                 'N',
}

var complements = [256]byte{
	'A': 'T', 'a': 't',
	'C': 'G', 'c': 'g',
	'G': 'C', 'g': 'c',
	'T': 'A', 't': 'a',
	'N': 'N', 'n': 'n',
	'R': 'Y', 'r': 'y',
	'Y': 'R', 'y': 'r',
	'S': 'W', 's': 'w',
	'W': 'S', 'w': 's',
	'K': 'M', 'k': 'm',
	'M': 'K', 'm': 'k',
	'B': 'V', 'b': 'v',
	'D': 'H', 'd': 'h',
	'H': 'D', 'h': 'd',
	'V': 'B', 'v': 'b',
}

// SymbolMask returns the set of strict bases denoted by the given
// symbol, and false if the symbol is not part of the alphabet.
func SymbolMask(symbol byte) (byte, bool) {
	mask := symbolMasks[symbol]
	return mask, mask != 0
}

// MaskSymbol returns the canonical upper case symbol for a base mask.
func MaskSymbol(mask byte) byte {
	return maskSymbols[mask&MaskN]
}

// IsStrict reports whether the given symbol is one of A, C, G, T in
// either case.
func IsStrict(symbol byte) bool {
	switch symbolMasks[symbol] {
	case MaskA, MaskC, MaskG, MaskT:
		return true
	default:
		return false
	}
}

// Complement returns the complement of every symbol, preserving case.
func Complement(symbols string) (string, error) {
	result := make([]byte, len(symbols))
	for i := 0; i < len(symbols); i++ {
		c := complements[symbols[i]]
		if c == 0 {
			return "", &EncodingError{Symbol: symbols[i], Position: i}
		}
		result[i] = c
	}
	return string(result), nil
}

// ReverseComplement returns the complement of the given symbols in
// reverse order.
func ReverseComplement(symbols string) (string, error) {
	n := len(symbols)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complements[symbols[i]]
		if c == 0 {
			return "", &EncodingError{Symbol: symbols[i], Position: i}
		}
		result[n-1-i] = c
	}
	return string(result), nil
}
