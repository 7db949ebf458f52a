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

// Package quality converts between textual Phred quality strings and
// numeric base quality scores.
package quality

import "fmt"

const (
	// PhredOffset is the Sanger/Illumina 1.8+ character offset.
	PhredOffset = 33

	// MaxScore is the largest score representable in printable ASCII
	// with PhredOffset.
	MaxScore = 93
)

// A RangeError reports a quality character or score outside the
// supported range.
type RangeError struct {
	Value    int
	Position int
}

func (err *RangeError) Error() string {
	return fmt.Sprintf("quality score %v at position %v outside range 0-%v", err.Value, err.Position, MaxScore)
}

// Decode converts a quality string into numeric scores, subtracting
// offset from each character.
func Decode(text []byte, offset byte) ([]byte, error) {
	scores := make([]byte, len(text))
	for i, c := range text {
		score := int(c) - int(offset)
		if score < 0 || score > MaxScore {
			return nil, &RangeError{Value: score, Position: i}
		}
		scores[i] = byte(score)
	}
	return scores, nil
}

// DecodeString is Decode for strings with PhredOffset.
func DecodeString(text string) ([]byte, error) {
	return Decode([]byte(text), PhredOffset)
}

// Check verifies that all scores are within 0-MaxScore.
func Check(scores []byte) error {
	for i, score := range scores {
		if score > MaxScore {
			return &RangeError{Value: int(score), Position: i}
		}
	}
	return nil
}

// Encode converts numeric scores into a quality string with the given
// offset. Scores above MaxScore are capped.
func Encode(scores []byte, offset byte) string {
	text := make([]byte, len(scores))
	for i, score := range scores {
		if score > MaxScore {
			score = MaxScore
		}
		text[i] = score + offset
	}
	return string(text)
}
