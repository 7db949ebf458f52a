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
Package fastq reads and writes the files the elcorrect commands work
on: FASTQ reads, plain sequence lists such as barcode whitelists, and
tab-separated result tables. All files may be gzip compressed, and "-"
denotes standard input or output.
*/
package fastq

import (
	"fmt"
	"io"
	"strings"

	"github.com/exascience/pargo/pipeline"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"

	"github.com/exascience/elcorrect/internal"
	"github.com/exascience/elcorrect/quality"
)

// A Record is a FASTQ entry with numeric base qualities.
type Record struct {
	Name string
	Seq  string
	Qual []byte
}

const (
	chunkBufferSize = 10
	chunkSize       = 1000
)

// ReadFile reads all records of a FASTQ file and decodes their
// qualities with the given character offset.
func ReadFile(filename string, offset byte) (records []Record, err error) {
	reader, err := fastx.NewDefaultReader(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	chunks := reader.ChunkChan(chunkBufferSize, chunkSize)
	defer func() {
		// unblock the producer after an early return
		for range chunks {
		}
	}()
	for chunk := range chunks {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		for _, rec := range chunk.Data {
			if len(rec.Seq.Qual) != len(rec.Seq.Seq) {
				return nil, fmt.Errorf("record %s in %v has %v bases but %v qualities", rec.ID, filename, len(rec.Seq.Seq), len(rec.Seq.Qual))
			}
			qual, err := quality.Decode(rec.Seq.Qual, offset)
			if err != nil {
				return nil, fmt.Errorf("%w, in record %s of %v", err, rec.ID, filename)
			}
			records = append(records, Record{
				Name: string(rec.ID),
				Seq:  string(rec.Seq.Seq),
				Qual: qual,
			})
		}
	}
	return records, nil
}

// Sequences returns the sequences and qualities of the given records.
func Sequences(records []Record) (sequences []string, qualities [][]byte) {
	sequences = make([]string, len(records))
	qualities = make([][]byte, len(records))
	for i, rec := range records {
		sequences[i] = rec.Seq
		qualities[i] = rec.Qual
	}
	return sequences, qualities
}

// ReadList reads one sequence per line, using the first field of each
// line. Empty lines and lines starting with '#' are skipped.
func ReadList(filename string) (list []string, err error) {
	reader, err := xopen.Ropen(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := reader.Close(); err == nil {
			err = nerr
		}
	}()
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(reader))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		entries := make([]string, 0, len(lines))
		for _, line := range lines {
			fields := strings.Fields(line)
			if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			entries = append(entries, fields[0])
		}
		return entries
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		list = append(list, data.([]string)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// A Formatter appends the textual representation of a batch of
// entries to buf. The batch has the slice type of the source passed to
// WriteFile.
type Formatter func(batch interface{}, buf []byte) []byte

// WriteFile formats the entries of source, which must be a slice, in
// parallel batches and writes them to filename in order.
func WriteFile(filename string, source interface{}, format Formatter) (err error) {
	writer, err := xopen.Wopen(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := writer.Close(); err == nil {
			err = nerr
		}
	}()
	return write(writer, source, format)
}

func write(writer io.Writer, source interface{}, format Formatter) error {
	var p pipeline.Pipeline
	p.Source(source)
	p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			buf := internal.ReserveByteBuffer()
			*buf = format(data, *buf)
			return buf
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			buf := data.(*[]byte)
			if _, err := writer.Write(*buf); err != nil {
				p.SetErr(fmt.Errorf("%v, while writing output", err))
			}
			internal.ReleaseByteBuffer(buf)
			return nil
		})),
	)
	p.Run()
	return p.Err()
}

// AppendRecord appends a FASTQ entry with the given quality offset.
func AppendRecord(buf []byte, rec Record, offset byte) []byte {
	buf = append(buf, '@')
	buf = append(buf, rec.Name...)
	buf = append(buf, '\n')
	buf = append(buf, rec.Seq...)
	buf = append(buf, "\n+\n"...)
	buf = append(buf, quality.Encode(rec.Qual, offset)...)
	return append(buf, '\n')
}

// FormatRecords returns a Formatter for []Record sources.
func FormatRecords(offset byte) Formatter {
	return func(batch interface{}, buf []byte) []byte {
		for _, rec := range batch.([]Record) {
			buf = AppendRecord(buf, rec, offset)
		}
		return buf
	}
}

// WriteRecords writes FASTQ records to filename.
func WriteRecords(filename string, records []Record, offset byte) error {
	return WriteFile(filename, records, FormatRecords(offset))
}
