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

// Package parmap provides the parallel map used for the
// embarrassingly parallel parts of read correction.
package parmap

import (
	"runtime"

	"github.com/exascience/pargo/parallel"
)

// A Mapper calls a function for every index of a range. Implementations
// may call the function concurrently, but every index is visited exactly
// once, so functions that only write to their own result slot produce
// the same results for every Mapper.
type Mapper interface {
	Workers() int
	Map(n int, f func(i int))
}

// ProgressFunc receives the number of indexes completed since the last
// call. It is called concurrently and must be safe for that.
type ProgressFunc func(done int)

// Pool is a Mapper backed by pargo that splits a range into one
// contiguous batch per worker.
type Pool struct {
	workers  int
	progress ProgressFunc
}

// Sequential is a Mapper that visits all indexes in order on the
// calling goroutine.
var Sequential Mapper = New(1)

// New returns a Pool with the given number of workers. A value <= 0
// selects runtime.GOMAXPROCS(0).
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// WithProgress returns a copy of the pool that reports to f.
func (p *Pool) WithProgress(f ProgressFunc) *Pool {
	return &Pool{workers: p.workers, progress: f}
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// progressStep is the number of indexes between progress reports
// within a batch.
const progressStep = 1024

func (p *Pool) batch(low, high int, f func(i int)) {
	if p.progress == nil {
		for i := low; i < high; i++ {
			f(i)
		}
		return
	}
	for step := low; step < high; step += progressStep {
		end := step + progressStep
		if end > high {
			end = high
		}
		for i := step; i < end; i++ {
			f(i)
		}
		p.progress(end - step)
	}
}

// Map implements the Mapper interface.
func (p *Pool) Map(n int, f func(i int)) {
	if n <= 0 {
		return
	}
	batches := p.workers
	if batches > n {
		batches = n
	}
	if batches <= 1 {
		p.batch(0, n, f)
		return
	}
	parallel.Range(0, n, batches, func(low, high int) {
		p.batch(low, high, f)
	})
}
