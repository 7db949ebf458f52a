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

package cmd

import (
	"math"
	"testing"

	"github.com/exascience/elcorrect/fastq"
	"github.com/exascience/elcorrect/whitelist"
)

func TestGroupRecords(t *testing.T) {
	records := []fastq.Record{
		{Name: "r1_AAC"}, {Name: "r2_GGT"}, {Name: "r3_AAC"}, {Name: "r4"},
	}
	groups := groupRecords(records, "_")
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %v", groups)
	}
	if groups[0].name != "AAC" || len(groups[0].members) != 2 || groups[0].members[1] != 2 {
		t.Errorf("unexpected first group %+v", groups[0])
	}
	if groups[2].name != defaultGroup || groups[2].members[0] != 3 {
		t.Errorf("unexpected last group %+v", groups[2])
	}
	if all := groupRecords(records, ""); len(all) != 1 || len(all[0].members) != 4 {
		t.Errorf("unexpected groups without separator %+v", all)
	}
}

func TestFormatCorrections(t *testing.T) {
	rec := fastq.Record{Name: "r1", Seq: "AAAT"}
	rows := []correctedRead{
		{record: &rec, correction: whitelist.Correction{Barcode: "AAAA", Status: whitelist.Exact}},
		{record: &rec, correction: whitelist.Correction{Status: whitelist.NoNeighbor, Log10Confidence: math.Inf(-1)}},
	}
	out := string(formatCorrections(rows, nil))
	expected := "r1\tAAAT\tAAAA\texact\t1\nr1\tAAAT\t*\tno-neighbor\t0\n"
	if out != expected {
		t.Errorf("formatCorrections produced %q, expected %q", out, expected)
	}
}

func TestFormatDistanceRows(t *testing.T) {
	rows := []distanceRow{
		{name: "*", columns: []string{"AA", "AC"}},
		{name: "AA", distances: []int{0, 1}},
	}
	if out := string(formatDistanceRows(rows, nil)); out != "*\tAA\tAC\nAA\t0\t1\n" {
		t.Errorf("formatDistanceRows produced %q", out)
	}
}

func TestCountDistinct(t *testing.T) {
	if n := countDistinct([]string{"A", "C", "A"}); n != 2 {
		t.Errorf("countDistinct returned %v", n)
	}
}
