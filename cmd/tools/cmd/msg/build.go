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
)

type cmdBuildT struct {
	cmdMsgCommon
	optOpcode   string
	optLabel    string
	optData     string
	optDataFile string
	optOutput   string
	optCompress bool
}

func (c *cmdBuildT) Init(name string, desc string) {
	c.cmdMsgCommon.Init(name, desc)
	c.SetSynopsis("[options] -op <opcode>")
	c.StringOption(&c.optOpcode, "op", "", "WRITE, SIGN, BUNDLE, HEARTBEAT, ACK or ERROR")
	c.StringOption(&c.optLabel, "l|label", "", "label of a WRITE, BUNDLE or ERROR frame")
	c.StringOption(&c.optData, "data", "", "payload of a WRITE or BUNDLE frame")
	c.StringOption(&c.optDataFile, "data-file", "", "read the payload from a file")
	c.StringOption(&c.optOutput, "o|output", "-", "output file")
	c.BoolOption(&c.optCompress, "z|snappy", false, "write the frame snappy compressed")
	c.AddExample(name+" -op WRITE -label obj42 -data hello -o obj42.frame", "build a 27 byte WRITE frame")
}

func (c *cmdBuildT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	if c.optOpcode == "" {
		err = fmt.Errorf("missing -op")
		return
	}
	if c.optData != "" && c.optDataFile != "" {
		err = fmt.Errorf("-data and -data-file are exclusive")
	}
	return
}

func (c *cmdBuildT) Exec() {
	c.Validate()
	teardown, err := c.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		return
	}
	defer teardown()

	if err = c.build(); err != nil {
		fmt.Fprintf(os.Stderr, "* build failed: %s\n", err)
	}
}

func (c *cmdBuildT) build() error {
	op, err := netmsg.ParseOpcode(c.optOpcode)
	if err != nil {
		return err
	}
	data := []byte(c.optData)
	if c.optDataFile != "" {
		if data, err = os.ReadFile(c.optDataFile); err != nil {
			return err
		}
	}

	m, err := netmsg.New(op)
	if err != nil {
		return err
	}
	defer m.Teardown()

	if op.NeedsLabel() {
		m.SetLabel(c.optLabel)
	}
	if op.NeedsData() {
		if err = m.SetData(data); err != nil {
			return err
		}
	}
	if valid, _ := m.IsValid(); !valid {
		return fmt.Errorf("built an invalid %s frame: %s", op, m.LastError())
	}

	w, closer, err := openOutput(c.optOutput, c.optCompress)
	if err != nil {
		return err
	}
	if _, err = m.WriteTo(w); err != nil {
		closer()
		return err
	}
	return closer()
}
