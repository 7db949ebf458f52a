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
Package whitelist corrects barcode reads to a known set of barcodes.

Correction runs in three phases. First, every distinct read is
compared against the whitelist, and reads that match exactly one
barcode are corrected to it. Exact matches also provide empirical
barcode counts, which are turned into Laplace-smoothed log10 priors.
Finally, every remaining read is assigned to the most likely barcode
within the mismatch distance, where the likelihood of a barcode is its
prior times the probability that all mismatching bases are sequencing
errors, as given by their base qualities. The assignment is kept only
if the posterior probability of the best barcode reaches the requested
confidence.
*/
package whitelist

import (
	"math"
	"sort"

	"github.com/bits-and-blooms/bitset"
	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/elcorrect/distance"
	"github.com/exascience/elcorrect/sequence"
	"github.com/exascience/elcorrect/utils/parmap"
)

// Options control whitelist correction.
type Options struct {
	// MaxDistance is the largest number of mismatches between a read
	// and a barcode it can be corrected to.
	MaxDistance int

	// Confidence is the smallest posterior probability of the best
	// barcode for a correction to be made.
	Confidence float64

	// Mapper runs the neighbor search. Nil means parmap.Sequential.
	Mapper parmap.Mapper
}

// DefaultOptions returns MaxDistance 1 and Confidence 0.9 with
// sequential execution.
func DefaultOptions() Options {
	return Options{MaxDistance: 1, Confidence: 0.9, Mapper: parmap.Sequential}
}

// Status tells how a read was, or was not, corrected.
type Status int

const (
	// NoNeighbor means no barcode is within the mismatch distance.
	NoNeighbor Status = iota

	// LowConfidence means the best barcode did not reach the confidence.
	LowConfidence

	// Exact means the read matches exactly one barcode.
	Exact

	// Corrected means the read was assigned by likelihood.
	Corrected
)

var statusNames = [...]string{"no-neighbor", "low-confidence", "exact", "corrected"}

func (s Status) String() string {
	return statusNames[s]
}

// Resolved reports whether the status carries a barcode.
func (s Status) Resolved() bool {
	return s == Exact || s == Corrected
}

// A Correction is the outcome for a single read.
type Correction struct {
	// Barcode is the whitelist entry, or "" if unresolved.
	Barcode string

	Status Status

	// Log10Confidence is the log10 posterior probability of the best
	// barcode: 0 for exact matches, -Inf without neighbors.
	Log10Confidence float64
}

type stringSorter []string

func (s stringSorter) SequentialSort(i, j int) {
	sort.Strings(s[i:j])
}

func (s stringSorter) NewTemp() psort.StableSorter {
	return stringSorter(make([]string, len(s)))
}

func (s stringSorter) Len() int {
	return len(s)
}

func (s stringSorter) Less(i, j int) bool {
	return s[i] < s[j]
}

func (s stringSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stringSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

func validate(reads []string, qualities [][]byte, whitelist []string, opts Options) error {
	if len(reads) != len(qualities) {
		return &sequence.InputCardinalityError{Sequences: len(reads), Qualities: len(qualities)}
	}
	if opts.MaxDistance < 0 {
		return &sequence.OptionError{Option: "maximum distance", Value: opts.MaxDistance, Reason: "must not be negative"}
	}
	if !(opts.Confidence > 0 && opts.Confidence <= 1) {
		return &sequence.OptionError{Option: "confidence", Value: opts.Confidence, Reason: "must be in (0, 1]"}
	}
	for i, read := range reads {
		if len(read) != len(qualities[i]) {
			return &sequence.LengthMismatchError{What: "quality", Index: i, Expected: len(read), Actual: len(qualities[i])}
		}
	}
	for i, read := range reads {
		if len(read) != len(reads[0]) {
			return &sequence.LengthMismatchError{What: "read", Index: i, Expected: len(reads[0]), Actual: len(read)}
		}
	}
	seen := make(map[string]int, len(whitelist))
	for i, barcode := range whitelist {
		if len(barcode) != len(whitelist[0]) {
			return &sequence.LengthMismatchError{What: "whitelist entry", Index: i, Expected: len(whitelist[0]), Actual: len(barcode)}
		}
		if first, ok := seen[barcode]; ok {
			return &sequence.DuplicateWhitelistError{Entry: barcode, First: first, Second: i}
		}
		seen[barcode] = i
	}
	if len(reads) > 0 && len(whitelist) > 0 && len(reads[0]) != len(whitelist[0]) {
		return &sequence.LengthMismatchError{What: "reads versus whitelist", Index: -1, Expected: len(whitelist[0]), Actual: len(reads[0])}
	}
	return nil
}

type neighborhood struct {
	indices []int
	masks   []*bitset.BitSet
}

// log10Priors returns log10((count_i + 1) / (sum counts + M)).
func log10Priors(counts []float64) []float64 {
	total := float64(len(counts))
	for _, c := range counts {
		total += c
	}
	priors := make([]float64, len(counts))
	for i, c := range counts {
		priors[i] = math.Log10((c + 1) / total)
	}
	return priors
}

// mostLikely returns the neighbor with the highest log10 likelihood
// and its log10 posterior, or -1 if there are no neighbors.
func mostLikely(qual []byte, nb neighborhood, priors []float64) (best int, log10Confidence float64) {
	if len(nb.indices) == 0 {
		return -1, math.Inf(-1)
	}
	likelihoods := make([]float64, len(nb.indices))
	best = -1
	maxLikelihood := math.Inf(-1)
	for k, i := range nb.indices {
		penalty := 0
		mask := nb.masks[k]
		for pos, ok := mask.NextSet(0); ok; pos, ok = mask.NextSet(pos + 1) {
			penalty += int(qual[pos])
		}
		ll := priors[i] - float64(penalty)/10
		likelihoods[k] = ll
		if best < 0 || ll > maxLikelihood {
			best, maxLikelihood = i, ll
		}
	}
	// log10 of the sum of likelihoods, shifted by the maximum
	sum := 0.0
	for _, ll := range likelihoods {
		sum += math.Pow(10, ll-maxLikelihood)
	}
	return best, -math.Log10(sum)
}

// CorrectDetailed corrects reads to the whitelist and reports a status
// and confidence for every read. Reads may contain duplicates, the
// whitelist may not. All reads and barcodes must have the same length,
// and every quality slice must match its read.
func CorrectDetailed(reads []string, qualities [][]byte, whitelist []string, opts Options) ([]Correction, error) {
	if err := validate(reads, qualities, whitelist, opts); err != nil {
		return nil, err
	}
	mapper := opts.Mapper
	if mapper == nil {
		mapper = parmap.Sequential
	}
	length := -1
	if len(whitelist) > 0 {
		length = len(whitelist[0])
	}
	encodedWhitelist, err := distance.EncodeUniform("whitelist entry", whitelist, length)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var distinct []string
	for _, read := range reads {
		if counts[read] == 0 {
			distinct = append(distinct, read)
		}
		counts[read]++
	}
	psort.StableSort(stringSorter(distinct))
	encodedReads, err := distance.EncodeUniform("read", distinct, -1)
	if err != nil {
		return nil, err
	}

	// phase 1
	neighborhoods := make([]neighborhood, len(distinct))
	mapper.Map(len(distinct), func(i int) {
		indices, masks := distance.NeighborsWithin(encodedReads[i], encodedWhitelist, opts.MaxDistance)
		neighborhoods[i] = neighborhood{indices: indices, masks: masks}
	})
	distinctIndex := make(map[string]int, len(distinct))
	exact := make([]int, len(distinct))
	barcodeCounts := make([]float64, len(whitelist))
	for i, read := range distinct {
		distinctIndex[read] = i
		exact[i] = -1
		nb := neighborhoods[i]
		var matches []int
		for k, j := range nb.indices {
			if nb.masks[k].None() {
				matches = append(matches, j)
			}
		}
		if len(matches) == 1 {
			exact[i] = matches[0]
		}
		for _, j := range matches {
			barcodeCounts[j] += float64(counts[read]) / float64(len(matches))
		}
	}

	// phase 2
	priors := log10Priors(barcodeCounts)

	// phase 3
	minConfidence := math.Log10(opts.Confidence)
	corrections := make([]Correction, len(reads))
	for r, read := range reads {
		i := distinctIndex[read]
		if j := exact[i]; j >= 0 {
			corrections[r] = Correction{Barcode: whitelist[j], Status: Exact}
			continue
		}
		best, log10Confidence := mostLikely(qualities[r], neighborhoods[i], priors)
		switch {
		case best < 0:
			corrections[r] = Correction{Status: NoNeighbor, Log10Confidence: log10Confidence}
		case log10Confidence >= minConfidence:
			corrections[r] = Correction{Barcode: whitelist[best], Status: Corrected, Log10Confidence: log10Confidence}
		default:
			corrections[r] = Correction{Status: LowConfidence, Log10Confidence: log10Confidence}
		}
	}
	return corrections, nil
}

// Correct corrects reads to the whitelist. Unresolved reads, whether
// they have no barcode within the mismatch distance or no barcode with
// enough confidence, are returned as "".
func Correct(reads []string, qualities [][]byte, whitelist []string, opts Options) ([]string, error) {
	corrections, err := CorrectDetailed(reads, qualities, whitelist, opts)
	if err != nil {
		return nil, err
	}
	result := make([]string, len(corrections))
	for i, c := range corrections {
		result[i] = c.Barcode
	}
	return result, nil
}
