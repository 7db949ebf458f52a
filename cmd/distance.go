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
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/exascience/elcorrect/distance"
	"github.com/exascience/elcorrect/fastq"
)

// DistanceHelp is the help string for this command.
const DistanceHelp = "distance parameters:\n" +
	"elcorrect distance sequence-file output-file\n" +
	"[--against sequence-file]\n" +
	"[--log-path path]\n"

// A distanceRow is a table line: the header if columns is set,
// otherwise the distances of one sequence.
type distanceRow struct {
	name      string
	columns   []string
	distances []int
}

func formatDistanceRows(batch interface{}, buf []byte) []byte {
	for _, row := range batch.([]distanceRow) {
		buf = append(buf, row.name...)
		for _, column := range row.columns {
			buf = append(buf, '\t')
			buf = append(buf, column...)
		}
		for _, d := range row.distances {
			buf = append(buf, '\t')
			buf = strconv.AppendInt(buf, int64(d), 10)
		}
		buf = append(buf, '\n')
	}
	return buf
}

// Distance implements the elcorrect distance command.
func Distance() error {
	var logPath, against string

	var flags flag.FlagSet
	flags.StringVar(&against, "against", "", "compute distances to the sequences in the specified file")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(flags, 4, DistanceHelp)

	input := getFilename(os.Args[2], DistanceHelp)
	output := getFilename(os.Args[3], DistanceHelp)

	setLogOutput(logPath)

	if !checkExist("", input) || !checkCreate("", output) || (against != "" && !checkExist("--against", against)) {
		fmt.Fprint(os.Stderr, DistanceHelp)
		os.Exit(1)
	}

	rows, err := fastq.ReadList(input)
	if err != nil {
		return err
	}
	columns := rows
	var matrix [][]int
	if against != "" {
		if columns, err = fastq.ReadList(against); err != nil {
			return err
		}
		matrix, err = distance.HammingDistanceMatrix(rows, columns)
	} else {
		matrix, err = distance.PairwiseHammingDistances(rows)
	}
	if err != nil {
		return err
	}
	log.Printf("Computed %v x %v distances.\n", len(rows), len(columns))

	table := make([]distanceRow, 0, len(rows)+1)
	table = append(table, distanceRow{name: "*", columns: columns})
	for i, name := range rows {
		table = append(table, distanceRow{name: name, distances: matrix[i]})
	}
	return fastq.WriteFile(output, table, formatDistanceRows)
}
