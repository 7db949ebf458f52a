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
	"os"
	"strconv"
	"strings"

	"github.com/exascience/elcorrect/consensus"
	"github.com/exascience/elcorrect/fastq"
	"github.com/exascience/elcorrect/quality"
)

// ConsensusHelp is the help string for this command.
const ConsensusHelp = "consensus parameters:\n" +
	"elcorrect consensus fastq-file output-fastq-file\n" +
	"[--q-threshold nr]\n" +
	"[--proportion fraction]\n" +
	"[--group-separator string]\n" +
	"[--assignments file]\n" +
	"[--quality-offset nr]\n" +
	"[--nr-of-threads nr]\n" +
	"[--progress]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

const defaultGroup = "consensus"

type readGroup struct {
	name    string
	members []int
}

// groupRecords groups records by the part of their name after the last
// occurrence of separator, in order of first appearance. Without a
// separator, all records form a single group.
func groupRecords(records []fastq.Record, separator string) []readGroup {
	var groups []readGroup
	index := make(map[string]int)
	for i, rec := range records {
		name := defaultGroup
		if separator != "" {
			if k := strings.LastIndex(rec.Name, separator); k >= 0 {
				name = rec.Name[k+len(separator):]
			}
		}
		g, ok := index[name]
		if !ok {
			g = len(groups)
			index[name] = g
			groups = append(groups, readGroup{name: name})
		}
		groups[g].members = append(groups[g].members, i)
	}
	return groups
}

type assignment struct {
	read  string
	group string
	id    int
}

func formatAssignments(batch interface{}, buf []byte) []byte {
	for _, a := range batch.([]assignment) {
		buf = append(buf, a.read...)
		buf = append(buf, '\t')
		buf = append(buf, a.group...)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(a.id), 10)
		buf = append(buf, '\n')
	}
	return buf
}

// Consensus implements the elcorrect consensus command.
func Consensus() error {
	var (
		profile, logPath, separator, assignments string
		qThreshold, nrOfThreads, qualityOffset   int
		proportion                               float64
		timed, progress                          bool
	)

	var flags flag.FlagSet

	flags.IntVar(&qThreshold, "q-threshold", 30, "quality budget per position")
	flags.Float64Var(&proportion, "proportion", 0.05, "fraction of positions that may mismatch")
	flags.StringVar(&separator, "group-separator", "", "group reads by the read name suffix after the last occurrence of this string")
	flags.StringVar(&assignments, "assignments", "", "write the cluster of each read to the specified file")
	flags.IntVar(&qualityOffset, "quality-offset", quality.PhredOffset, "character offset of quality scores")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&progress, "progress", false, "show a progress bar")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(flags, 4, ConsensusHelp)

	input := getFilename(os.Args[2], ConsensusHelp)
	output := getFilename(os.Args[3], ConsensusHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", input) || !checkCreate("", output) {
		sanityChecksFailed = true
	}

	if assignments != "" && !checkCreate("--assignments", assignments) {
		sanityChecksFailed = true
	}

	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}

	if qThreshold < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid q-threshold: ", qThreshold)
	}

	if proportion < 0 || proportion > 1 {
		sanityChecksFailed = true
		log.Println("Error: Invalid proportion: ", proportion)
	}

	if !checkThreads(nrOfThreads) || !checkQualityOffset(qualityOffset) {
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ConsensusHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " consensus ", input, " ", output)
	fmt.Fprint(&command, " --q-threshold ", qThreshold, " --proportion ", proportion)
	if separator != "" {
		fmt.Fprintf(&command, " --group-separator %q", separator)
	}
	if assignments != "" {
		fmt.Fprint(&command, " --assignments ", assignments)
	}
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
		records []fastq.Record
		groups  []readGroup
		results []*consensus.Result
	)

	err := timedRun(timed, profile, "Reading reads.", 1, func() (err error) {
		records, err = fastq.ReadFile(input, byte(qualityOffset))
		return err
	})
	if err != nil {
		return err
	}
	groups = groupRecords(records, separator)
	log.Printf("Read %v reads in %v groups.\n", len(records), len(groups))

	err = timedRun(timed, profile, "Calling consensus sequences.", 2, func() error {
		opts := consensus.Options{QThreshold: qThreshold, Proportion: proportion, ReturnQualities: true}
		results = make([]*consensus.Result, len(groups))
		errs := make([]error, len(groups))
		mapper, finish := newMapper(nrOfThreads, progress, len(groups))
		mapper.Map(len(groups), func(g int) {
			members := groups[g].members
			sequences := make([]string, len(members))
			qualities := make([][]byte, len(members))
			for k, m := range members {
				sequences[k] = records[m].Seq
				qualities[k] = records[m].Qual
			}
			results[g], errs[g] = consensus.CallWithQualities(sequences, qualities, opts)
		})
		finish()
		for g, err := range errs {
			if err != nil {
				return fmt.Errorf("%w, in read group %v", err, groups[g].name)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return timedRun(timed, profile, "Write to file.", 3, func() error {
		var consensusRecords []fastq.Record
		for g, result := range results {
			sizes := result.Sizes()
			for id, seq := range result.Consensuses {
				consensusRecords = append(consensusRecords, fastq.Record{
					Name: fmt.Sprintf("%v:%v size=%v", groups[g].name, id, sizes[id]),
					Seq:  seq,
					Qual: result.Qualities[id],
				})
			}
		}
		log.Printf("Called %v consensus sequences.\n", len(consensusRecords))
		if err := fastq.WriteRecords(output, consensusRecords, byte(qualityOffset)); err != nil {
			return err
		}
		if assignments == "" {
			return nil
		}
		rows := make([]assignment, len(records))
		for g, group := range groups {
			for k, m := range group.members {
				rows[m] = assignment{read: records[m].Name, group: group.name, id: results[g].Assignments[k]}
			}
		}
		return fastq.WriteFile(assignments, rows, formatAssignments)
	})
}
