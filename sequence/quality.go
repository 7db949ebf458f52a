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

// EncodeQuality checks numeric quality scores against an expected
// length and right-pads them with zeros. A negative length means no
// length is expected. The argument is never modified.
func EncodeQuality(scores []byte, length int) ([]byte, error) {
	if length < 0 {
		length = len(scores)
	} else if length < len(scores) {
		return nil, &LengthMismatchError{What: "quality", Index: -1, Expected: length, Actual: len(scores)}
	}
	result := make([]byte, length)
	copy(result, scores)
	return result, nil
}

// ScoreMatrix holds one score per strict base and position.
type ScoreMatrix [NofBases][]int

// NewScoreMatrix allocates a zeroed score matrix for the given length.
func NewScoreMatrix(length int) (m ScoreMatrix) {
	for b := range m {
		m[b] = make([]int, length)
	}
	return
}

// Len returns the number of positions.
func (m *ScoreMatrix) Len() int {
	return len(m[0])
}

// Best returns the base index with the maximum score at pos. Ties go
// to the base that comes first in Bases.
func (m *ScoreMatrix) Best(pos int) int {
	best := 0
	for b := 1; b < NofBases; b++ {
		if m[b][pos] > m[best][pos] {
			best = b
		}
	}
	return best
}

// MostLikelyCall returns, per position, the strict base with the
// maximum score.
func MostLikelyCall(m ScoreMatrix) string {
	result := make([]byte, m.Len())
	for pos := range result {
		result[pos] = Bases[m.Best(pos)]
	}
	return string(result)
}
