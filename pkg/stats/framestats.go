//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package stats

import (
	"fmt"
	"io"
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

const (
	kMaxFrameSize       = int64(1) << 40
	kMaxCheckLatency    = int64(3600 * time.Second)
	kSignificantFigures = 3
)

type (
	Outcome int

	// FrameStat accumulates the validity checks made against frames of one
	// opcode.
	FrameStat struct {
		mtx       sync.Mutex
		name      string
		sizes     *hdrhistogram.Histogram
		latencies *hdrhistogram.Histogram
		outcomes  [kNumOutcomes]int64
	}

	Statistics struct {
		perOpcode [256]FrameStat
	}

	StatsData struct {
		Name          string
		NumChecks     int64
		NumValid      int64
		NumIncomplete int64
		NumFatal      int64
		P50Size       int64
		P99Size       int64
		MaxSize       int64
		AvgLatency    time.Duration
		P99Latency    time.Duration
	}
)

const (
	OutcomeValid Outcome = iota
	OutcomeIncomplete
	OutcomeFatal
	kNumOutcomes
)

// Frames collects validity check statistics for the whole process.
var Frames Statistics

func (s *FrameStat) init() {
	if s.sizes == nil {
		s.sizes = hdrhistogram.New(1, kMaxFrameSize, kSignificantFigures)
		s.latencies = hdrhistogram.New(1, kMaxCheckLatency, kSignificantFigures)
	}
}

func (s *FrameStat) Put(name string, outcome Outcome, size int64, tm time.Duration) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.init()
	s.name = name
	s.outcomes[outcome]++
	s.latencies.RecordValue(int64(tm))
	if outcome == OutcomeValid && size > 0 {
		s.sizes.RecordValue(size)
	}
}

// GetStats returns zero stats for an opcode that has never been checked.
func (s *FrameStat) GetStats() (stat StatsData) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.sizes == nil {
		return
	}
	stat.Name = s.name
	stat.NumValid = s.outcomes[OutcomeValid]
	stat.NumIncomplete = s.outcomes[OutcomeIncomplete]
	stat.NumFatal = s.outcomes[OutcomeFatal]
	stat.NumChecks = stat.NumValid + stat.NumIncomplete + stat.NumFatal
	stat.P50Size = s.sizes.ValueAtQuantile(50.)
	stat.P99Size = s.sizes.ValueAtQuantile(99.)
	stat.MaxSize = s.sizes.Max()
	stat.AvgLatency = time.Duration(s.latencies.Mean())
	stat.P99Latency = time.Duration(s.latencies.ValueAtQuantile(99.))
	return
}

func (s *FrameStat) Reset() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.sizes == nil {
		return
	}
	s.sizes.Reset()
	s.latencies.Reset()
	s.outcomes = [kNumOutcomes]int64{}
}

func (s *Statistics) Put(opcode uint8, name string, outcome Outcome, size int64, tm time.Duration) {
	s.perOpcode[opcode].Put(name, outcome, size, tm)
}

func (s *Statistics) Get(opcode uint8) StatsData {
	return s.perOpcode[opcode].GetStats()
}

func (s *Statistics) Reset() {
	for i := range s.perOpcode {
		s.perOpcode[i].Reset()
	}
}

func (s *Statistics) PrettyPrint(w io.Writer) {
	round := func(d time.Duration) time.Duration {
		return d.Round(time.Microsecond)
	}
	fmt.Fprintln(w,
		`
  opcode    |   checks   |   valid    | incomplete |   fatal    |  p50 size  |  p99 size  |  max size  | avg check  | p99 check
------------+------------+------------+------------+------------+------------+------------+------------+------------+------------`)
	for i := range s.perOpcode {
		stat := s.perOpcode[i].GetStats()
		if stat.NumChecks == 0 {
			continue
		}
		fmt.Fprintf(w, "%11s %12d %12d %12d %12d %12d %12d %12d %12s %12s\n",
			stat.Name, stat.NumChecks, stat.NumValid, stat.NumIncomplete, stat.NumFatal,
			stat.P50Size, stat.P99Size, stat.MaxSize, round(stat.AvgLatency), round(stat.P99Latency))
	}
}
