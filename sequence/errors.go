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

import "fmt"

// An EncodingError reports a symbol outside the nucleotide alphabet.
type EncodingError struct {
	Symbol   byte
	Position int
}

func (err *EncodingError) Error() string {
	return fmt.Sprintf("unknown nucleotide %q at position %v", err.Symbol, err.Position)
}

// A LengthMismatchError reports inconsistent sequence, quality or
// whitelist lengths.
type LengthMismatchError struct {
	What     string
	Index    int
	Expected int
	Actual   int
}

func (err *LengthMismatchError) Error() string {
	if err.Index >= 0 {
		return fmt.Sprintf("%v at index %v has length %v, expected %v", err.What, err.Index, err.Actual, err.Expected)
	}
	return fmt.Sprintf("%v has length %v, expected %v", err.What, err.Actual, err.Expected)
}

// A DuplicateWhitelistError reports a whitelist entry that occurs more
// than once.
type DuplicateWhitelistError struct {
	Entry          string
	First, Second int
}

func (err *DuplicateWhitelistError) Error() string {
	return fmt.Sprintf("whitelist contains duplicate %v at indexes %v and %v", err.Entry, err.First, err.Second)
}

// An InputCardinalityError reports a different number of sequences
// and qualities.
type InputCardinalityError struct {
	Sequences, Qualities int
}

func (err *InputCardinalityError) Error() string {
	return fmt.Sprintf("%v sequences and %v qualities were provided", err.Sequences, err.Qualities)
}

// An OptionError reports an invalid numeric option.
type OptionError struct {
	Option string
	Value  interface{}
	Reason string
}

func (err *OptionError) Error() string {
	return fmt.Sprintf("invalid %v %v: %v", err.Option, err.Value, err.Reason)
}
