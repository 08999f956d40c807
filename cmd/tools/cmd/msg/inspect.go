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
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"imaged/pkg/netmsg"
	"imaged/pkg/util"
)

type cmdInspectT struct {
	cmdMsgCommon
	optHex      string
	optCompress bool
	optDump     bool
}

func (c *cmdInspectT) Init(name string, desc string) {
	c.cmdMsgCommon.Init(name, desc)
	c.SetSynopsis("[options] <frame-file> | -hex <hex-string>")
	c.StringOption(&c.optHex, "hex", "", "inspect the frame given as a hex string")
	c.BoolOption(&c.optCompress, "z|snappy", false, "the frame file is snappy compressed")
	c.BoolOption(&c.optDump, "x", false, "hex dump each frame")
	c.AddExample(name+" -x obj42.frame", "show the frames of a file with a hex dump")
	c.AddExample(name+" -hex 0100000000000000056f626a34320000000000000005", "tell why a partial WRITE frame is incomplete")
}

func (c *cmdInspectT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	if c.optHex == "" && c.NArg() < 1 {
		err = fmt.Errorf("missing frame file")
	}
	return
}

func (c *cmdInspectT) Exec() {
	c.Validate()
	teardown, err := c.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
		return
	}
	defer teardown()

	var r io.Reader
	if c.optHex != "" {
		raw, err := hex.DecodeString(c.optHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "* %s\n", err)
			return
		}
		r = bytes.NewReader(raw)
	} else {
		in, closer, err := openInput(c.Arg(0), c.optCompress)
		if err != nil {
			fmt.Fprintf(os.Stderr, "* %s\n", err)
			return
		}
		defer closer()
		r = in
	}

	n, err := forEachFrame(r, func(m *netmsg.Message) error {
		return describe(os.Stdout, m, c.optDump)
	})
	fmt.Printf("%d frame(s)\n", n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %s\n", err)
	}
}

// describe prints the sections of a valid frame.
func describe(w io.Writer, m *netmsg.Message, dump bool) error {
	digest, err := m.Digest()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s frame, %d bytes\n", m.Opcode(), m.Size())
	fmt.Fprintf(w, "  tag    : %s", m.Tag())
	if tm, err := util.GetTimeFromUUIDString(m.Tag()); err == nil {
		fmt.Fprintf(w, " (received %s)", tm.Format("2006-01-02 15:04:05.000"))
	}
	fmt.Fprintf(w, "\n  digest : %s\n", digest)
	if m.Opcode().NeedsLabel() {
		label, err := m.Label()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  label  : %q\n", label)
	}
	if m.Opcode().NeedsData() {
		data, err := m.Data()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  data   : %d bytes %s\n", len(data), util.ToPrintableString(head(data, 32)))
	}
	if dump {
		var buf bytes.Buffer
		if _, err = m.WriteTo(&buf); err != nil {
			return err
		}
		fmt.Fprintln(w)
		util.HexDump(w, buf.Bytes())
	}
	return nil
}

func head(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
