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

	"imaged/pkg/netmsg"
	"imaged/pkg/stats"
)

type cmdLoadT struct {
	cmdMsgCommon
	optCompress bool
	optQuiet    bool
}

func (c *cmdLoadT) Init(name string, desc string) {
	c.cmdMsgCommon.Init(name, desc)
	c.SetSynopsis("[options] <stream-file>|-")
	c.BoolOption(&c.optCompress, "z|snappy", false, "the stream is snappy compressed")
	c.BoolOption(&c.optQuiet, "q|quiet", false, "print the summary only")
	c.AddDetails("\tReceives the frames of a stream one at a time into the message directory,\n\tthe way the daemon receives them from a connection.\n")
	c.AddExample(name+" -z frames.sz", "receive a compressed stream made by dump")
}

func (c *cmdLoadT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	if c.NArg() < 1 {
		err = fmt.Errorf("missing stream file")
	}
	return
}

func (c *cmdLoadT) Exec() {
	c.Validate()
	teardown, err := c.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		return
	}
	defer teardown()

	r, closer, err := openInput(c.Arg(0), c.optCompress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		return
	}
	defer closer()

	n, err := forEachFrame(r, func(m *netmsg.Message) error {
		if c.optQuiet {
			return nil
		}
		digest, err := m.Digest()
		if err != nil {
			return err
		}
		label := ""
		if m.Opcode().NeedsLabel() {
			label, _ = m.Label()
		}
		fmt.Printf("%-10s %10d  %s  %q\n", m.Opcode(), m.Size(), digest, label)
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
	}
	fmt.Printf("\n%d frame(s) received\n", n)
	stats.Frames.PrettyPrint(os.Stdout)
}
