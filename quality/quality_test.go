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

package quality

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	scores, err := DecodeString("!+5I~")
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{0, 10, 20, 40, 93}
	for i := range expected {
		if scores[i] != expected[i] {
			t.Errorf("Decode returned %v, expected %v", scores, expected)
			break
		}
	}
	if Encode(scores, PhredOffset) != "!+5I~" {
		t.Error("Encode did not round trip")
	}
}

func TestDecodeRange(t *testing.T) {
	var rangeErr *RangeError
	if _, err := DecodeString("II\x1fI"); !errors.As(err, &rangeErr) || rangeErr.Position != 2 {
		t.Errorf("expected RangeError at position 2, got %v", err)
	}
	if _, err := Decode([]byte{64 + 94}, 64); !errors.As(err, &rangeErr) {
		t.Errorf("expected RangeError, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	if Check([]byte{0, 40, 93}) != nil {
		t.Error("Check rejected valid scores")
	}
	if Check([]byte{0, 94}) == nil {
		t.Error("Check accepted 94")
	}
	if Encode([]byte{120}, PhredOffset) != "~" {
		t.Error("Encode did not cap the score")
	}
}
