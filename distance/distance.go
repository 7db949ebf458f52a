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

/*
Package distance implements ambiguity-aware Hamming distances on
encoded nucleotide sequences.

Two positions match when their base sets intersect, so N matches every
base and R matches A and G, but not C or T. All comparisons work on the
per-base bit planes of sequence.Encoded, 64 positions at a time.
*/
package distance

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elcorrect/sequence"
)

func checkLengths(a, b *sequence.Encoded) error {
	if a.Len() != b.Len() {
		return &sequence.LengthMismatchError{What: "sequence", Index: -1, Expected: a.Len(), Actual: b.Len()}
	}
	return nil
}

func mismatchMask(a, b *sequence.Encoded) *bitset.BitSet {
	shared := a.Plane(0).Intersection(b.Plane(0))
	for k := 1; k < sequence.NofBases; k++ {
		shared.InPlaceUnion(a.Plane(k).Intersection(b.Plane(k)))
	}
	return shared.Complement()
}

// MismatchMask returns the set of positions at which the base sets of
// a and b do not intersect.
func MismatchMask(a, b *sequence.Encoded) (*bitset.BitSet, error) {
	if err := checkLengths(a, b); err != nil {
		return nil, err
	}
	return mismatchMask(a, b), nil
}

// mismatchesUpTo counts mismatches, but stops early once the count
// exceeds limit. A negative limit never stops early.
func mismatchesUpTo(a, b *sequence.Encoded, limit int) int {
	length := a.Len()
	var wa, wb [sequence.NofBases][]uint64
	for k := range wa {
		wa[k] = a.Plane(k).Bytes()
		wb[k] = b.Plane(k).Bytes()
	}
	nofWords := (length + 63) >> 6
	count := 0
	for w := 0; w < nofWords; w++ {
		shared := (wa[0][w] & wb[0][w]) | (wa[1][w] & wb[1][w]) | (wa[2][w] & wb[2][w]) | (wa[3][w] & wb[3][w])
		miss := ^shared
		if w == nofWords-1 {
			if rest := uint(length & 63); rest != 0 {
				miss &= (uint64(1) << rest) - 1
			}
		}
		count += bits.OnesCount64(miss)
		if limit >= 0 && count > limit {
			return count
		}
	}
	return count
}

// Mismatches returns the number of positions at which the base sets of
// a and b do not intersect.
func Mismatches(a, b *sequence.Encoded) (int, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	return mismatchesUpTo(a, b, -1), nil
}

// NeighborsWithin returns the indexes of all candidates within d
// mismatches of seq, in candidate order, together with their mismatch
// masks. Candidates of a different length are never neighbors.
func NeighborsWithin(seq *sequence.Encoded, candidates []*sequence.Encoded, d int) (indices []int, masks []*bitset.BitSet) {
	for i, candidate := range candidates {
		if candidate.Len() != seq.Len() {
			continue
		}
		if mismatchesUpTo(seq, candidate, d) > d {
			continue
		}
		indices = append(indices, i)
		masks = append(masks, mismatchMask(seq, candidate))
	}
	return indices, masks
}

// EncodeUniform encodes all given sequences and checks that they have
// the given length. A negative length takes the length of the first
// sequence.
func EncodeUniform(what string, sequences []string, length int) ([]*sequence.Encoded, error) {
	result := make([]*sequence.Encoded, len(sequences))
	for i, s := range sequences {
		if length < 0 {
			length = len(s)
		}
		if len(s) != length {
			return nil, &sequence.LengthMismatchError{What: what, Index: i, Expected: length, Actual: len(s)}
		}
		e, err := sequence.Encode(s)
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// HammingDistance returns the number of mismatching positions of two
// equal-length sequences.
func HammingDistance(s1, s2 string) (int, error) {
	if len(s1) != len(s2) {
		return 0, &sequence.LengthMismatchError{What: "sequence", Index: -1, Expected: len(s1), Actual: len(s2)}
	}
	a, err := sequence.Encode(s1)
	if err != nil {
		return 0, err
	}
	b, err := sequence.Encode(s2)
	if err != nil {
		return 0, err
	}
	return mismatchesUpTo(a, b, -1), nil
}

// HammingDistances returns the distances between s and each sequence
// in list.
func HammingDistances(s string, list []string) ([]int, error) {
	a, err := sequence.Encode(s)
	if err != nil {
		return nil, err
	}
	encoded, err := EncodeUniform("sequence", list, len(s))
	if err != nil {
		return nil, err
	}
	distances := make([]int, len(encoded))
	for i, b := range encoded {
		distances[i] = mismatchesUpTo(a, b, -1)
	}
	return distances, nil
}

func makeMatrix(rows, columns int) [][]int {
	cells := make([]int, rows*columns)
	matrix := make([][]int, rows)
	for i := range matrix {
		matrix[i] = cells[i*columns : (i+1)*columns : (i+1)*columns]
	}
	return matrix
}

// HammingDistanceMatrix returns the distances between every sequence
// in list1 (rows) and every sequence in list2 (columns).
func HammingDistanceMatrix(list1, list2 []string) ([][]int, error) {
	length := -1
	if len(list1) > 0 {
		length = len(list1[0])
	}
	encoded1, err := EncodeUniform("sequence", list1, length)
	if err != nil {
		return nil, err
	}
	encoded2, err := EncodeUniform("sequence", list2, length)
	if err != nil {
		return nil, err
	}
	matrix := makeMatrix(len(encoded1), len(encoded2))
	parallel.Range(0, len(encoded1), 0, func(low, high int) {
		for i := low; i < high; i++ {
			row := matrix[i]
			for j, b := range encoded2 {
				row[j] = mismatchesUpTo(encoded1[i], b, -1)
			}
		}
	})
	return matrix, nil
}

// PairwiseHammingDistances returns the symmetric distance matrix of the
// given sequences. Each unordered pair is compared once.
func PairwiseHammingDistances(list []string) ([][]int, error) {
	encoded, err := EncodeUniform("sequence", list, -1)
	if err != nil {
		return nil, err
	}
	matrix := makeMatrix(len(encoded), len(encoded))
	parallel.Range(0, len(encoded), 0, func(low, high int) {
		for i := low; i < high; i++ {
			for j := i + 1; j < len(encoded); j++ {
				d := mismatchesUpTo(encoded[i], encoded[j], -1)
				matrix[i][j] = d
				matrix[j][i] = d
			}
		}
	})
	return matrix, nil
}
