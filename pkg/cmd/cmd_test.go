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

package cmd

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

type testCmd struct {
	Command
	compress bool
	count    int
	executed bool
}

func (c *testCmd) Init(name string, desc string) {
	c.Command.Init(name, desc)
	c.SetSynopsis("[options] <file>")
	c.BoolOption(&c.compress, "z|snappy", false, "snappy compress the output")
	c.IntOption(&c.count, "n", 1, "number of frames")
}

func (c *testCmd) Exec() {
	c.executed = true
}

func TestParseArgs(t *testing.T) {
	c := &testCmd{}
	c.Init("testdump", "dump frames for a test")
	if !Register(c) {
		t.Fatal("register failed")
	}
	if Register(c) {
		t.Error("second registration of the same name succeeded")
	}

	found, args := commands.lookup([]string{"-version", "testdump", "-z", "-n", "3", "frame.bin"})
	if found != c {
		t.Fatalf("command not found")
	}
	if expected := []string{"-version", "-z", "-n", "3", "frame.bin"}; !reflect.DeepEqual(args, expected) {
		t.Errorf("args %v", args)
	}
	if err := c.Parse(args[1:]); err != nil {
		t.Fatal(err)
	}
	if !c.compress || c.count != 3 || c.Arg(0) != "frame.bin" {
		t.Errorf("parsed compress=%v count=%d arg=%q", c.compress, c.count, c.Arg(0))
	}
	if cmd, args := commands.lookup([]string{"nosuch"}); cmd != nil || len(args) != 1 {
		t.Error("unregistered command found")
	}
}

func TestUsage(t *testing.T) {
	c := &testCmd{}
	c.Init("testusage", "print usage for a test")
	c.AddExample("testusage -z a.bin", "compress a frame")

	var buf bytes.Buffer
	WriteUsage(&buf, c)
	usage := buf.String()
	for _, s := range []string{"testusage - print usage for a test", "-z, -snappy", "(default 1)", "compress a frame", "[options] <file>"} {
		if !strings.Contains(usage, s) {
			t.Errorf("usage lacks %q:\n%s", s, usage)
		}
	}
}

func TestRegistryListing(t *testing.T) {
	r := &registry{byName: make(map[string]ICommand)}
	newCmd := func(name string) ICommand {
		c := &testCmd{}
		c.Init(name, name+" frames")
		return c
	}
	r.addGroup("stream", []ICommand{newCmd("dump"), newCmd("load")})
	r.addGroup("frame", []ICommand{newCmd("build")})
	if r.addGroup("frame", []ICommand{newCmd("inspect")}) != nil {
		t.Error("group registered twice")
	}
	if r.add(newCmd("dump")) {
		t.Error("command registered twice")
	}

	var buf bytes.Buffer
	r.write(&buf)
	out := buf.String()
	frame, stream := strings.Index(out, "  frame\n"), strings.Index(out, "  stream\n")
	if frame < 0 || stream < frame {
		t.Errorf("groups out of order:\n%s", out)
	}
	if strings.Contains(out, "inspect") || !strings.Contains(out, "load frames") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}
