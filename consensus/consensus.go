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
Package consensus partitions a set of quality-scored reads into
clusters and calls one consensus sequence per cluster.

Calling proceeds in rounds over the pool of reads not assigned yet. In
each round, every position votes for the strict base with the highest
summed base quality among consistent reads. A read's cost is the summed
quality at the positions where its own call differs from the vote, the
negative log probability that all its differences are sequencing
errors. Reads with a cost up to the threshold, or up to the lowest cost
in the pool if that is larger, are assigned, and the consensus is
called again using only these reads. A pool of a single read is its
own consensus. Rounds end when the pool is empty,
so there are at most as many rounds as reads.
*/
package consensus

import (
	"math"

	"github.com/exascience/elcorrect/sequence"
)

// Options control consensus calling.
type Options struct {
	// QThreshold is the per-position quality budget.
	QThreshold int

	// Proportion is the fraction of positions that may mismatch at
	// QThreshold quality each.
	Proportion float64

	// ReturnQualities requests per-cluster consensus qualities.
	ReturnQualities bool
}

// DefaultOptions returns QThreshold 30 and Proportion 0.05.
func DefaultOptions() Options {
	return Options{QThreshold: 30, Proportion: 0.05}
}

// Result holds the consensus calls.
type Result struct {
	// Consensuses lists distinct consensus sequences in order of
	// first creation. The index is the cluster id.
	Consensuses []string

	// Assignments maps each read to its cluster id.
	Assignments []int

	// Qualities holds numeric per-position qualities for each cluster
	// if requested, nil otherwise.
	Qualities [][]byte
}

// Sizes returns the number of reads assigned to each cluster.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Consensuses))
	for _, id := range r.Assignments {
		sizes[id]++
	}
	return sizes
}

type read struct {
	seq  *sequence.Encoded
	qual []byte
}

// vote sums qualities per consistent base over the given reads.
func vote(reads []read, members []int, length int) sequence.ScoreMatrix {
	scores := sequence.NewScoreMatrix(length)
	for _, m := range members {
		r := reads[m]
		for pos := 0; pos < length; pos++ {
			mask := r.seq.Mask(pos)
			q := int(r.qual[pos])
			for b := 0; b < sequence.NofBases; b++ {
				if mask&(1<<uint(b)) != 0 {
					scores[b][pos] += q
				}
			}
		}
	}
	return scores
}

func calls(scores *sequence.ScoreMatrix) []int {
	result := make([]int, scores.Len())
	for pos := range result {
		result[pos] = scores.Best(pos)
	}
	return result
}

func ownCalls(r read) []int {
	result := make([]int, r.seq.Len())
	for pos := range result {
		result[pos] = r.seq.Call(pos)
	}
	return result
}

func consensusOf(reads []read, members []int, length int) []int {
	scores := vote(reads, members, length)
	return calls(&scores)
}

func callString(c []int) string {
	result := make([]byte, len(c))
	for pos, b := range c {
		result[pos] = sequence.Bases[b]
	}
	return string(result)
}

func cost(r read, consensus []int) (sum int) {
	for pos, b := range consensus {
		if r.seq.Call(pos) != b {
			sum += int(r.qual[pos])
		}
	}
	return sum
}

func validate(sequences []string, qualities [][]byte, opts Options) (length int, err error) {
	if len(sequences) != len(qualities) {
		return 0, &sequence.InputCardinalityError{Sequences: len(sequences), Qualities: len(qualities)}
	}
	if opts.Proportion < 0 || opts.Proportion > 1 || math.IsNaN(opts.Proportion) {
		return 0, &sequence.OptionError{Option: "proportion", Value: opts.Proportion, Reason: "must be between 0 and 1"}
	}
	for i, s := range sequences {
		if len(s) != len(qualities[i]) {
			return 0, &sequence.LengthMismatchError{What: "quality", Index: i, Expected: len(s), Actual: len(qualities[i])}
		}
		if len(s) > length {
			length = len(s)
		}
	}
	return length, nil
}

// CallWithQualities calls consensus sequences for the given reads.
// Sequences may differ in length; shorter ones are padded to the
// longest. Each quality slice must have the same length as its
// sequence.
func CallWithQualities(sequences []string, qualities [][]byte, opts Options) (*Result, error) {
	length, err := validate(sequences, qualities, opts)
	if err != nil {
		return nil, err
	}
	reads := make([]read, len(sequences))
	for i, s := range sequences {
		seq, err := sequence.EncodePadded(s, length)
		if err != nil {
			return nil, err
		}
		qual, err := sequence.EncodeQuality(qualities[i], length)
		if err != nil {
			return nil, err
		}
		reads[i] = read{seq: seq, qual: qual}
	}

	result := &Result{Assignments: make([]int, len(reads))}
	if len(reads) == 0 {
		if opts.ReturnQualities {
			result.Qualities = [][]byte{}
		}
		return result, nil
	}

	threshold := float64(opts.QThreshold) * (float64(length) * opts.Proportion)
	ids := make(map[string]int)
	pool := make([]int, len(reads))
	for i := range pool {
		pool[i] = i
	}
	costs := make([]int, len(reads))
	for len(pool) > 0 {
		var consensus string
		var assigned, remaining []int
		if len(pool) == 1 {
			// a lone read is its own consensus
			assigned = pool
			consensus = callString(ownCalls(reads[pool[0]]))
		} else {
			provisional := consensusOf(reads, pool, length)
			minCost := math.MaxInt64
			for k, m := range pool {
				c := cost(reads[m], provisional)
				costs[k] = c
				if c < minCost {
					minCost = c
				}
			}
			limit := math.Max(threshold, float64(minCost))
			for k, m := range pool {
				if float64(costs[k]) <= limit {
					assigned = append(assigned, m)
				} else {
					remaining = append(remaining, m)
				}
			}
			consensus = callString(consensusOf(reads, assigned, length))
		}
		id, ok := ids[consensus]
		if !ok {
			id = len(result.Consensuses)
			ids[consensus] = id
			result.Consensuses = append(result.Consensuses, consensus)
		}
		for _, m := range assigned {
			result.Assignments[m] = id
		}
		pool = remaining
	}

	if opts.ReturnQualities {
		result.Qualities = consensusQualities(reads, result)
	}
	return result, nil
}

// consensusQualities returns, per cluster and position, the highest
// quality among the cluster's reads that agree with the consensus
// base there, or 0 if none agrees.
func consensusQualities(reads []read, result *Result) [][]byte {
	best := make([][]byte, len(result.Consensuses))
	for id, consensus := range result.Consensuses {
		best[id] = make([]byte, len(consensus))
	}
	for i, r := range reads {
		id := result.Assignments[i]
		consensus := result.Consensuses[id]
		q := best[id]
		for pos := range q {
			mask, _ := sequence.SymbolMask(consensus[pos])
			if r.seq.Mask(pos)&mask != 0 && r.qual[pos] > q[pos] {
				q[pos] = r.qual[pos]
			}
		}
	}
	return best
}
