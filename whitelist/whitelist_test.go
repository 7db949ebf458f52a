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

package whitelist

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/exascience/elcorrect/sequence"
	"github.com/exascience/elcorrect/utils/parmap"
)

func uniformQualities(reads []string, q byte) [][]byte {
	qualities := make([][]byte, len(reads))
	for i, read := range reads {
		qualities[i] = make([]byte, len(read))
		for j := range qualities[i] {
			qualities[i][j] = q
		}
	}
	return qualities
}

func repeat(s string, n int) []string {
	result := make([]string, n)
	for i := range result {
		result[i] = s
	}
	return result
}

func TestExactMatch(t *testing.T) {
	reads := []string{"ACGT", "ACGT", "TTTT"}
	corrections, err := CorrectDetailed(reads, uniformQualities(reads, 0), []string{"TTTT", "ACGT"}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range corrections {
		if c.Status != Exact || c.Barcode != reads[i] || c.Log10Confidence != 0 {
			t.Errorf("read %v corrected to %+v", i, c)
		}
	}
}

func TestNoNeighbor(t *testing.T) {
	reads := []string{"GGGG", "AAAA", "GGGG"}
	corrections, err := CorrectDetailed(reads, uniformQualities(reads, 40), []string{"AAAA", "CCCC"}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{0, 2} {
		if corrections[i].Barcode != "" || corrections[i].Status != NoNeighbor || !math.IsInf(corrections[i].Log10Confidence, -1) {
			t.Errorf("read %v corrected to %+v", i, corrections[i])
		}
	}
	if corrections[1].Barcode != "AAAA" {
		t.Errorf("exact read corrected to %+v", corrections[1])
	}
}

func TestSingleNeighbor(t *testing.T) {
	reads := []string{"AAAT"}
	result, err := Correct(reads, uniformQualities(reads, 40), []string{"AAAA", "CCCC"}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if result[0] != "AAAA" {
		t.Errorf("AAAT corrected to %q", result[0])
	}
}

func TestPriorResolvesTie(t *testing.T) {
	whitelist := []string{"AAAA", "AAAT"}
	reads := []string{"AAAG"}
	corrections, err := CorrectDetailed(reads, uniformQualities(reads, 30), whitelist, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if corrections[0].Status != LowConfidence || corrections[0].Barcode != "" {
		t.Errorf("equally likely barcodes corrected to %+v", corrections[0])
	}
	if math.Abs(corrections[0].Log10Confidence+math.Log10(2)) > 1e-9 {
		t.Errorf("confidence %v, expected log10(0.5)", corrections[0].Log10Confidence)
	}

	reads = append(repeat("AAAA", 50), "AAAG")
	corrections, err = CorrectDetailed(reads, uniformQualities(reads, 30), whitelist, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	last := corrections[len(corrections)-1]
	if last.Status != Corrected || last.Barcode != "AAAA" {
		t.Errorf("frequent barcode not preferred: %+v", last)
	}
	expected := -math.Log10(1 + 1.0/51)
	if math.Abs(last.Log10Confidence-expected) > 1e-9 {
		t.Errorf("confidence %v, expected %v", last.Log10Confidence, expected)
	}
}

func TestQualityDecides(t *testing.T) {
	whitelist := []string{"AACC", "ATCG"}
	reads := []string{"ATCC"}
	// the mismatch against AACC is at a low quality base
	qualities := [][]byte{{40, 2, 40, 40}}
	result, err := Correct(reads, qualities, whitelist, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if result[0] != "AACC" {
		t.Errorf("ATCC corrected to %q", result[0])
	}
}

func TestAmbiguousExactMatch(t *testing.T) {
	reads := []string{"AAAN", "AAAN"}
	corrections, err := CorrectDetailed(reads, uniformQualities(reads, 40), []string{"AAAA", "AAAT"}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range corrections {
		if c.Status != LowConfidence {
			t.Errorf("ambiguous exact match corrected to %+v", c)
		}
	}
}

func TestDeterminism(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	whitelist := make([]string, 300)
	seen := make(map[string]bool)
	for i := 0; i < len(whitelist); {
		b := make([]byte, 10)
		for j := range b {
			b[j] = sequence.Bases[r.Intn(4)]
		}
		if s := string(b); !seen[s] {
			seen[s] = true
			whitelist[i] = s
			i++
		}
	}
	reads := make([]string, 3000)
	qualities := make([][]byte, len(reads))
	for i := range reads {
		b := []byte(whitelist[r.Intn(len(whitelist))])
		for k := r.Intn(3); k > 0; k-- {
			b[r.Intn(len(b))] = "ACGTN"[r.Intn(5)]
		}
		reads[i] = string(b)
		qualities[i] = make([]byte, len(b))
		for j := range qualities[i] {
			qualities[i][j] = byte(r.Intn(41))
		}
	}
	opts := DefaultOptions()
	opts.Mapper = parmap.New(1)
	one, err := CorrectDetailed(reads, qualities, whitelist, opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.Mapper = parmap.New(8)
	eight, err := CorrectDetailed(reads, qualities, whitelist, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range one {
		if one[i] != eight[i] {
			t.Errorf("read %v: %+v with 1 worker, %+v with 8", i, one[i], eight[i])
		}
	}
}

func TestValidation(t *testing.T) {
	whitelist := []string{"AAAA", "CCCC"}
	var cardErr *sequence.InputCardinalityError
	if _, err := Correct([]string{"AAAA"}, nil, whitelist, DefaultOptions()); !errors.As(err, &cardErr) {
		t.Errorf("expected InputCardinalityError, got %v", err)
	}
	var lenErr *sequence.LengthMismatchError
	if _, err := Correct([]string{"AAAA"}, [][]byte{{1, 2}}, whitelist, DefaultOptions()); !errors.As(err, &lenErr) {
		t.Errorf("expected LengthMismatchError for qualities, got %v", err)
	}
	reads := []string{"AAAA", "AAA"}
	if _, err := Correct(reads, uniformQualities(reads, 1), whitelist, DefaultOptions()); !errors.As(err, &lenErr) {
		t.Errorf("expected LengthMismatchError for reads, got %v", err)
	}
	reads = []string{"AAA"}
	if _, err := Correct(reads, uniformQualities(reads, 1), whitelist, DefaultOptions()); !errors.As(err, &lenErr) {
		t.Errorf("expected LengthMismatchError against whitelist, got %v", err)
	}
	if _, err := Correct(nil, nil, []string{"AAAA", "CCC"}, DefaultOptions()); !errors.As(err, &lenErr) {
		t.Errorf("expected LengthMismatchError for whitelist, got %v", err)
	}
	var duplicate *sequence.DuplicateWhitelistError
	if _, err := Correct(nil, nil, []string{"AAAA", "CCCC", "AAAA"}, DefaultOptions()); !errors.As(err, &duplicate) || duplicate.First != 0 || duplicate.Second != 2 {
		t.Errorf("expected DuplicateWhitelistError, got %v", err)
	}
	var encErr *sequence.EncodingError
	reads = []string{"AAXA"}
	if _, err := Correct(reads, uniformQualities(reads, 1), whitelist, DefaultOptions()); !errors.As(err, &encErr) {
		t.Errorf("expected EncodingError, got %v", err)
	}
	var optErr *sequence.OptionError
	if _, err := Correct(nil, nil, whitelist, Options{MaxDistance: 1, Confidence: 0}); !errors.As(err, &optErr) {
		t.Errorf("expected OptionError, got %v", err)
	}
}
