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

// Package msg implements the msgtool commands working on netmsg frames.
package msg

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/golang/snappy"

	"imaged/cmd/tools/msgtool/config"
	"imaged/pkg/cmd"
	"imaged/pkg/initmgr"
	"imaged/pkg/logging"
	"imaged/pkg/logging/otel"
	"imaged/pkg/netmsg"
)

type cmdMsgCommon struct {
	cmd.Command
	optConfigFile string
	optLogLevel   string
	optMsgDir     string
}

func (c *cmdMsgCommon) Init(name string, desc string) {
	c.Command.Init(name, desc)
	c.StringOption(&c.optConfigFile, "c|config", "", "specify toml config file")
	c.StringOption(&c.optLogLevel, "log-level", "", "specify log level, overriding the config")
	c.StringOption(&c.optMsgDir, "d|dir", "", "specify the message directory, overriding the config")
}

// setup brings up logging, metrics and the message directory. The returned
// function tears them down again.
func (c *cmdMsgCommon) setup() (teardown func(), err error) {
	if err = config.LoadConfig(c.optConfigFile); err != nil {
		return
	}
	cfg := config.ToolConfig()
	if c.optLogLevel != "" {
		cfg.LogLevel = c.optLogLevel
	}
	if c.optMsgDir != "" {
		cfg.Netmsg.MessageDir = c.optMsgDir
	}
	initmgr.RegisterWithFuncs(logging.Initialize, logging.Finalize, cfg.LogLevel)
	initmgr.RegisterWithFuncs(otel.Initialize, otel.Finalize, &cfg.Otel)
	initmgr.RegisterWithFuncs(netmsg.Initialize, netmsg.Finalize, &cfg.Netmsg)
	initmgr.Init()
	if glog.V(2) {
		cfg.Dump()
	}
	teardown = initmgr.Finalize
	return
}

// openInput opens name for reading, with "-" standing for stdin. With
// compressed set the content is expected in the snappy framing format.
func openInput(name string, compressed bool) (r io.Reader, closer func(), err error) {
	var f *os.File
	if name == "-" {
		f = os.Stdin
		closer = func() {}
	} else {
		if f, err = os.Open(name); err != nil {
			return
		}
		closer = func() { f.Close() }
	}
	if compressed {
		r = snappy.NewReader(f)
	} else {
		r = bufio.NewReader(f)
	}
	return
}

// openOutput creates name for writing, with "-" standing for stdout. With
// compressed set the content is written in the snappy framing format.
func openOutput(name string, compressed bool) (w io.Writer, closer func() error, err error) {
	var f *os.File
	if name == "-" {
		f = os.Stdout
	} else if f, err = os.Create(name); err != nil {
		return
	}
	fileClose := func() error {
		if f == os.Stdout {
			return nil
		}
		return f.Close()
	}
	if compressed {
		sw := snappy.NewBufferedWriter(f)
		w = sw
		closer = func() error {
			if err := sw.Close(); err != nil {
				fileClose()
				return err
			}
			return fileClose()
		}
	} else {
		bw := bufio.NewWriter(f)
		w = bw
		closer = func() error {
			if err := bw.Flush(); err != nil {
				fileClose()
				return err
			}
			return fileClose()
		}
	}
	return
}

// forEachFrame receives the frames of r one by one and calls fn for each
// until the stream ends. A frame that cannot be received ends the loop
// since the position of the next frame is unknown.
func forEachFrame(r io.Reader, fn func(m *netmsg.Message) error) (n int, err error) {
	for {
		var m *netmsg.Message
		if m, err = netmsg.Receive(r, netmsg.DefaultAllocator()); err != nil {
			if err == io.EOF {
				err = nil
			} else {
				err = fmt.Errorf("frame %d: %w", n, err)
			}
			return
		}
		err = fn(m)
		m.Teardown()
		if err != nil {
			return
		}
		n++
	}
}
