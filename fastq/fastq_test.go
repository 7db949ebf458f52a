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

package fastq

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/exascience/elcorrect/quality"
)

func TestRecordsRoundTrip(t *testing.T) {
	records := []Record{
		{Name: "read1", Seq: "ACGTN", Qual: []byte{40, 30, 20, 10, 0}},
		{Name: "read2", Seq: "TTTT", Qual: []byte{2, 2, 2, 2}},
	}
	for _, name := range []string{"reads.fastq", "reads.fastq.gz"} {
		filename := filepath.Join(t.TempDir(), name)
		if err := WriteRecords(filename, records, quality.PhredOffset); err != nil {
			t.Fatal(err)
		}
		read, err := ReadFile(filename, quality.PhredOffset)
		if err != nil {
			t.Fatal(err)
		}
		if len(read) != len(records) {
			t.Fatalf("%v: read %v records, expected %v", name, len(read), len(records))
		}
		for i := range records {
			if read[i].Name != records[i].Name || read[i].Seq != records[i].Seq || !bytes.Equal(read[i].Qual, records[i].Qual) {
				t.Errorf("%v: record %v read as %+v", name, i, read[i])
			}
		}
	}
}

func TestAppendRecord(t *testing.T) {
	buf := AppendRecord(nil, Record{Name: "r", Seq: "AC", Qual: []byte{40, 0}}, quality.PhredOffset)
	if string(buf) != "@r\nAC\n+\nI!\n" {
		t.Errorf("AppendRecord produced %q", buf)
	}
}

func TestReadList(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "whitelist.txt")
	content := "# barcodes\nAAAA\n\nCCCC\textra\n  GGGG  \n"
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	list, err := ReadList(filename)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"AAAA", "CCCC", "GGGG"}
	if len(list) != len(expected) {
		t.Fatalf("ReadList returned %v", list)
	}
	for i := range expected {
		if list[i] != expected[i] {
			t.Errorf("ReadList returned %v, expected %v", list, expected)
		}
	}
}

func TestSequences(t *testing.T) {
	sequences, qualities := Sequences([]Record{{Seq: "A", Qual: []byte{1}}, {Seq: "CG", Qual: []byte{2, 3}}})
	if len(sequences) != 2 || sequences[1] != "CG" || qualities[1][1] != 3 {
		t.Errorf("Sequences returned %v %v", sequences, qualities)
	}
}

func TestReadFileErrorReleasesReader(t *testing.T) {
	records := make([]Record, 20*chunkBufferSize*chunkSize/10)
	for i := range records {
		records[i] = Record{Name: "r", Seq: "ACGT", Qual: []byte{40, 40, 40, 40}}
	}
	filename := filepath.Join(t.TempDir(), "reads.fastq")
	if err := WriteRecords(filename, records, quality.PhredOffset); err != nil {
		t.Fatal(err)
	}
	before := runtime.NumGoroutine()
	// 'I' is below this offset, so the first record fails to decode
	_, err := ReadFile(filename, 80)
	var rangeErr *quality.RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("%v goroutines after failed read, %v before", runtime.NumGoroutine(), before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
