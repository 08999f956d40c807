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
	"io"
	"os"

	"imaged/pkg/netmsg"
)

type cmdDumpT struct {
	cmdMsgCommon
	optOutput   string
	optCompress bool
}

func (c *cmdDumpT) Init(name string, desc string) {
	c.cmdMsgCommon.Init(name, desc)
	c.SetSynopsis("[options] <frame-file>...")
	c.StringOption(&c.optOutput, "o|output", "-", "output file")
	c.BoolOption(&c.optCompress, "z|snappy", false, "snappy compress the output stream")
	c.AddDetails("\tEvery frame is validated before it is written. The first frame that\n\tcannot be received stops the dump.\n")
	c.AddExample(name+" -z -o frames.sz /var/imaged/messages/3 /var/imaged/messages/7", "export two stored frames as one compressed stream")
}

func (c *cmdDumpT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	if c.NArg() < 1 {
		err = fmt.Errorf("missing frame file")
	}
	return
}

func (c *cmdDumpT) Exec() {
	c.Validate()
	teardown, err := c.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		return
	}
	defer teardown()

	w, closer, err := openOutput(c.optOutput, c.optCompress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		return
	}
	total, err := c.dump(w, c.Args())
	if cerr := closer(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "* dump failed: %s\n", err)
	}
	fmt.Fprintf(os.Stderr, "%d frame(s) dumped\n", total)
}

func (c *cmdDumpT) dump(w io.Writer, files []string) (total int, err error) {
	for _, file := range files {
		var n int
		if n, err = dumpFile(w, file); err != nil {
			err = fmt.Errorf("%s: %w", file, err)
		}
		total += n
		if err != nil {
			return
		}
	}
	return
}

func dumpFile(w io.Writer, file string) (int, error) {
	r, closer, err := openInput(file, false)
	if err != nil {
		return 0, err
	}
	defer closer()
	return forEachFrame(r, func(m *netmsg.Message) (err error) {
		_, err = m.WriteTo(w)
		return
	})
}
