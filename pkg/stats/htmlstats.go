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
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"os"
	"time"
)

type (
	IHtmlStatsSection interface {
		Title() template.HTML
		Body() template.HTML
	}

	HtmlStats struct {
		Title    string
		Version  string
		Source   string
		Sections []IHtmlStatsSection
	}

	// RunInfo describes the process that collected the statistics.
	RunInfo struct {
		StartTime  time.Time
		MessageDir string
	}

	// FrameSection renders the per opcode validity check table.
	FrameSection struct {
		Stats *Statistics
	}
)

func (s *RunInfo) Title() template.HTML {
	return template.HTML("Run Info")
}

func (s *RunInfo) Body() template.HTML {
	var buf bytes.Buffer
	buf.WriteString(
		`<div id="id-run-info"><table title="run-info">
<tr><th>Start Time</th><th>Process ID</th><th>Message Directory</th></tr>`)

	fmt.Fprintf(&buf, "<tr><td>%s</td><td>%d</td><td>%s</td></tr></table></div>",
		s.StartTime.Format("2006-01-02 15:04:05"), os.Getpid(), html.EscapeString(s.MessageDir))

	return template.HTML(buf.String())
}

func (s *FrameSection) Title() template.HTML {
	return template.HTML("Frame Checks")
}

func (s *FrameSection) Body() template.HTML {
	var buf bytes.Buffer
	buf.WriteString(`<div id="id-frame-checks"><table title="frame-checks">
<tr><th>Opcode</th><th>Checks</th><th>Valid</th><th>Incomplete</th><th>Fatal</th><th>P50 Size</th><th>P99 Size</th><th>Max Size</th><th>Avg Check</th><th>P99 Check</th></tr>`)

	for i := range s.Stats.perOpcode {
		stat := s.Stats.perOpcode[i].GetStats()
		if stat.NumChecks == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(stat.Name), stat.NumChecks, stat.NumValid, stat.NumIncomplete, stat.NumFatal,
			stat.P50Size, stat.P99Size, stat.MaxSize,
			HtmlDurationEscapeString(stat.AvgLatency.Round(time.Microsecond)),
			HtmlDurationEscapeString(stat.P99Latency.Round(time.Microsecond)))
	}
	buf.WriteString("</table></div>")
	return template.HTML(buf.String())
}

func (s *HtmlStats) AddSection(sec IHtmlStatsSection) {
	s.Sections = append(s.Sections, sec)
}

func (s *HtmlStats) Write(w io.Writer) error {
	return HtmlStatsTmpl.Execute(w, s)
}
