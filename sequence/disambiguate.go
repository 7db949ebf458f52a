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

/*
An Expansion enumerates the strict base strings consistent with an
encoded sequence, in lexicographic order over Bases with the leftmost
position varying slowest.

The number of strings is the product of the number of bases per
position, so it grows exponentially with the number of ambiguous
positions. An encoded sequence with a padding column has no
expansions.

	x := sequence.Disambiguate(e)
	for x.Next() {
		use(x.Sequence())
	}
*/
type Expansion struct {
	choices [][]byte
	digits  []int
	started bool
	done    bool
	buf     []byte
}

// Disambiguate returns a restartable expansion of the given encoded
// sequence.
func Disambiguate(e *Encoded) *Expansion {
	x := &Expansion{
		choices: make([][]byte, e.Len()),
		digits:  make([]int, e.Len()),
		buf:     make([]byte, e.Len()),
	}
	for pos := range x.choices {
		mask := e.Mask(pos)
		for b := 0; b < NofBases; b++ {
			if mask&(1<<uint(b)) != 0 {
				x.choices[pos] = append(x.choices[pos], Bases[b])
			}
		}
	}
	x.Reset()
	return x
}

// Reset restarts the enumeration from the first string.
func (x *Expansion) Reset() {
	for i := range x.digits {
		x.digits[i] = 0
	}
	x.started = false
	x.done = false
	for _, c := range x.choices {
		if len(c) == 0 {
			x.done = true
		}
	}
}

const maxCount = int(^uint(0) >> 1)

// Count returns the total number of strings in the enumeration. Counts
// that do not fit in an int saturate at the largest int.
func (x *Expansion) Count() int {
	count := 1
	for _, c := range x.choices {
		n := len(c)
		if n == 0 {
			return 0
		}
		if count > maxCount/n {
			count = maxCount
			continue
		}
		count *= n
	}
	return count
}

// Next advances to the next string and reports whether there is one.
func (x *Expansion) Next() bool {
	if x.done {
		return false
	}
	if !x.started {
		x.started = true
		return true
	}
	for pos := len(x.digits) - 1; pos >= 0; pos-- {
		x.digits[pos]++
		if x.digits[pos] < len(x.choices[pos]) {
			return true
		}
		x.digits[pos] = 0
	}
	x.done = true
	return false
}

// Sequence returns the current string.
func (x *Expansion) Sequence() string {
	for pos, d := range x.digits {
		x.buf[pos] = x.choices[pos][d]
	}
	return string(x.buf)
}

// All collects the remaining strings of the enumeration.
func (x *Expansion) All() (result []string) {
	for x.Next() {
		result = append(result, x.Sequence())
	}
	return result
}
