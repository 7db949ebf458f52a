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
	"bytes"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/exascience/elcorrect/fastq"
	"github.com/exascience/elcorrect/quality"
	"github.com/exascience/elcorrect/whitelist"
)

// CorrectHelp is the help string for this command.
const CorrectHelp = "correct parameters:\n" +
	"elcorrect correct fastq-file whitelist-file output-file\n" +
	"[--max-distance nr]\n" +
	"[--confidence probability]\n" +
	"[--quality-offset nr]\n" +
	"[--nr-of-threads nr]\n" +
	"[--progress]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

type correctedRead struct {
	record     *fastq.Record
	correction whitelist.Correction
}

func formatCorrections(batch interface{}, buf []byte) []byte {
	for _, c := range batch.([]correctedRead) {
		buf = append(buf, c.record.Name...)
		buf = append(buf, '\t')
		buf = append(buf, c.record.Seq...)
		buf = append(buf, '\t')
		if c.correction.Status.Resolved() {
			buf = append(buf, c.correction.Barcode...)
		} else {
			buf = append(buf, '*')
		}
		buf = append(buf, '\t')
		buf = append(buf, c.correction.Status.String()...)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, math.Pow(10, c.correction.Log10Confidence), 'g', 6, 64)
		buf = append(buf, '\n')
	}
	return buf
}

func countDistinct(reads []string) int {
	seen := make(map[string]struct{}, len(reads))
	for _, read := range reads {
		seen[read] = struct{}{}
	}
	return len(seen)
}

// Correct implements the elcorrect correct command.
func Correct() error {
	var (
		profile, logPath         string
		maxDistance, nrOfThreads int
		qualityOffset            int
		confidence               float64
		timed, progress          bool
	)

	var flags flag.FlagSet

	flags.IntVar(&maxDistance, "max-distance", 1, "maximum number of mismatches to a whitelist entry")
	flags.Float64Var(&confidence, "confidence", 0.9, "minimum posterior probability of a correction")
	flags.IntVar(&qualityOffset, "quality-offset", quality.PhredOffset, "character offset of quality scores")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&progress, "progress", false, "show a progress bar")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 5, CorrectHelp)

	input := getFilename(os.Args[2], CorrectHelp)
	whitelistFile := getFilename(os.Args[3], CorrectHelp)
	output := getFilename(os.Args[4], CorrectHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) || !checkExist("", whitelistFile) {
		sanityChecksFailed = true
	}

	if !checkCreate("", output) {
		sanityChecksFailed = true
	}

	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}

	if maxDistance < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid max-distance: ", maxDistance)
	}

	if !(confidence > 0 && confidence <= 1) {
		sanityChecksFailed = true
		log.Println("Error: Invalid confidence: ", confidence)
	}

	if !checkThreads(nrOfThreads) || !checkQualityOffset(qualityOffset) {
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, CorrectHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " correct ", input, " ", whitelistFile, " ", output)
	fmt.Fprint(&command, " --max-distance ", maxDistance, " --confidence ", confidence)
	if qualityOffset != quality.PhredOffset {
		fmt.Fprint(&command, " --quality-offset ", qualityOffset)
	}
	if nrOfThreads > 0 {
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if progress {
		fmt.Fprint(&command, " --progress")
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	var (
		records     []fastq.Record
		barcodes    []string
		corrections []whitelist.Correction
	)

	err := timedRun(timed, profile, "Reading reads and whitelist.", 1, func() (err error) {
		if records, err = fastq.ReadFile(input, byte(qualityOffset)); err != nil {
			return err
		}
		barcodes, err = fastq.ReadList(whitelistFile)
		return err
	})
	if err != nil {
		return err
	}
	log.Printf("Read %v reads and %v whitelist entries.\n", len(records), len(barcodes))

	err = timedRun(timed, profile, "Correcting reads to whitelist.", 2, func() (err error) {
		reads, qualities := fastq.Sequences(records)
		mapper, finish := newMapper(nrOfThreads, progress, countDistinct(reads))
		defer finish()
		corrections, err = whitelist.CorrectDetailed(reads, qualities, barcodes, whitelist.Options{
			MaxDistance: maxDistance,
			Confidence:  confidence,
			Mapper:      mapper,
		})
		return err
	})
	if err != nil {
		return err
	}

	var counts [4]int
	for _, c := range corrections {
		counts[c.Status]++
	}
	log.Printf("%v exact, %v corrected, %v without neighbor, %v below confidence.\n",
		counts[whitelist.Exact], counts[whitelist.Corrected], counts[whitelist.NoNeighbor], counts[whitelist.LowConfidence])

	return timedRun(timed, profile, "Write to file.", 3, func() error {
		rows := make([]correctedRead, len(records))
		for i := range records {
			rows[i] = correctedRead{record: &records[i], correction: corrections[i]}
		}
		return fastq.WriteFile(output, rows, formatCorrections)
	})
}
