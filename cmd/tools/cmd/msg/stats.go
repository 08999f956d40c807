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

package msg

import (
	"fmt"
	"os"
	"strings"
	"time"

	"imaged/pkg/cmd"
	"imaged/pkg/netmsg"
	"imaged/pkg/stats"
	"imaged/pkg/version"
)

type cmdStatsT struct {
	cmdMsgCommon
	optCompress bool
	optHtml     string
}

func (c *cmdStatsT) Init(name string, desc string) {
	c.cmdMsgCommon.Init(name, desc)
	c.SetSynopsis("[options] <frame-file>...")
	c.BoolOption(&c.optCompress, "z|snappy", false, "the files are snappy compressed")
	c.StringOption(&c.optHtml, "html", "", "also write the statistics as an html page to this file")
	c.AddExample(name+" /var/imaged/messages/*", "frame size and check time percentiles of stored frames")
}

func (c *cmdStatsT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	if c.NArg() < 1 {
		err = fmt.Errorf("missing frame file")
	}
	return
}

func (c *cmdStatsT) Exec() {
	c.Validate()
	teardown, err := c.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		return
	}
	defer teardown()

	start := time.Now()
	stats.Frames.Reset()
	for _, file := range c.Args() {
		r, closer, err := openInput(file, c.optCompress)
		if err != nil {
			fmt.Fprintf(os.Stderr, "* %s\n", err)
			continue
		}
		if _, err = forEachFrame(r, func(*netmsg.Message) error { return nil }); err != nil {
			fmt.Fprintf(os.Stderr, "* %s: %s\n", file, err)
		}
		closer()
	}
	stats.Frames.PrettyPrint(os.Stdout)

	if c.optHtml != "" {
		if err = c.writeHtml(start); err != nil {
			fmt.Fprintf(os.Stderr, "* %s\n", err)
		}
	}
}

func (c *cmdStatsT) writeHtml(start time.Time) error {
	page := stats.HtmlStats{
		Title:   "Frame Statistics",
		Version: version.OnelineVersionString(),
		Source:  strings.Join(c.Args(), " "),
	}
	page.AddSection(&stats.RunInfo{StartTime: start, MessageDir: netmsg.DefaultAllocator().Dir()})
	page.AddSection(&stats.FrameSection{Stats: &stats.Frames})

	f, err := os.Create(c.optHtml)
	if err != nil {
		return err
	}
	if err = page.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	b := &cmdBuildT{}
	b.Init("build", "build a frame from the command line")
	i := &cmdInspectT{}
	i.Init("inspect", "show the sections of netmsg frames")
	d := &cmdDumpT{}
	d.Init("dump", "export frame files as one frame stream")
	l := &cmdLoadT{}
	l.Init("load", "receive the frames of a stream")
	s := &cmdStatsT{}
	s.Init("stats", "print validity check statistics of frame files")

	cmd.RegisterNewGroup("frame", b, i)
	cmd.RegisterNewGroup("stream", d, l, s)
}
