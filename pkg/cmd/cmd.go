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

// Package cmd is a small sub-command framework for the tools: each command
// owns its flag set and usage text, and main dispatches on the first
// argument naming a registered command.
package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/golang/glog"

	"imaged/pkg/version"
)

type (
	ICommand interface {
		Name() string
		Usage() *Usage
		Init(name string, desc string)
		Exec()
		Parse(args []string) error
		PrintUsage()
	}

	// Usage is what the usage page of a command is rendered from.
	Usage struct {
		Name     string
		Desc     string // one line
		Synopsis string
		Details  string
		Options  string
		Examples []Example
	}

	Example struct {
		Desc    string
		Command string
	}

	Command struct {
		Option
		usage      Usage
		optVModule string
		optVerbose string
	}

	Group struct {
		name string
		cmds []ICommand
	}

	registry struct {
		byName    map[string]ICommand
		groups    []*Group
		ungrouped []ICommand
	}
)

var commands = &registry{byName: make(map[string]ICommand)}

func (c *Command) Init(name string, desc string) {
	c.usage = Usage{Name: name, Desc: desc}
	c.Option.Init(name, flag.ContinueOnError)
	c.StringVar(&c.optVModule, "vmodule", "", "comma-separated list of pattern=N settings for file-filtered logging")
	c.StringVar(&c.optVerbose, "v", "", "log level for V logs")
	c.Option.Usage = c.PrintUsage
}

func (c *Command) Name() string {
	return c.usage.Name
}

// Usage returns the usage record with the current option descriptions.
func (c *Command) Usage() *Usage {
	c.usage.Options = c.GetOptionDesc()
	return &c.usage
}

func (c *Command) SetSynopsis(str string) {
	c.usage.Synopsis = str
}

func (c *Command) AddExample(cmdExample string, desc string) {
	c.usage.Examples = append(c.usage.Examples, Example{Desc: desc, Command: cmdExample})
}

func (c *Command) AddDetails(txt string) {
	c.usage.Details += txt
}

func (c *Command) PrintUsage() {
	var buf bytes.Buffer
	WriteUsage(&buf, c)
	page(&buf)
}

func (c *Command) Validate() {
	if !c.Parsed() {
		glog.Exit("not parsed")
	}
}

// Parse parses the command options and hands the logging ones over to glog.
func (c *Command) Parse(arguments []string) (err error) {
	if err = c.Option.Parse(arguments); err != nil {
		return
	}
	if c.optVModule != "" {
		err = flag.Set("vmodule", c.optVModule)
	}
	if err == nil && c.optVerbose != "" {
		err = flag.Set("v", c.optVerbose)
	}
	return
}

// WriteUsage renders the usage page of c.
func WriteUsage(w io.Writer, c interface{ Usage() *Usage }) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := usageTemplate.Execute(tw, c.Usage()); err != nil {
		fmt.Fprintln(w, err)
	}
	tw.Flush()
}

// add fails when a command of the same name is already known.
func (r *registry) add(c ICommand) bool {
	if _, found := r.byName[c.Name()]; found {
		glog.Warningf("command %s has been registered", c.Name())
		return false
	}
	r.byName[c.Name()] = c
	return true
}

func (r *registry) addGroup(name string, cmds []ICommand) *Group {
	for _, g := range r.groups {
		if g.name == name {
			glog.Warningf("group %s has been registered", name)
			return nil
		}
	}
	grp := &Group{name: name}
	for _, c := range cmds {
		if r.add(c) {
			grp.cmds = append(grp.cmds, c)
		}
	}
	r.groups = append(r.groups, grp)
	sort.Slice(r.groups, func(i, j int) bool { return r.groups[i].name < r.groups[j].name })
	return grp
}

// lookup returns the first argument naming a known command, and the other
// arguments in order.
func (r *registry) lookup(arguments []string) (ICommand, []string) {
	for i, arg := range arguments {
		if c, ok := r.byName[arg]; ok {
			args := append(append([]string{}, arguments[:i]...), arguments[i+1:]...)
			return c, args
		}
	}
	return nil, arguments
}

func (r *registry) write(w io.Writer) {
	if len(r.byName) == 0 {
		return
	}
	list := func(cmds []ICommand) {
		for _, c := range cmds {
			fmt.Fprintf(w, "    * %s\n      %s\n", c.Name(), c.Usage().Desc)
		}
	}
	fmt.Fprintln(w, "\nCOMMAND")
	for _, g := range r.groups {
		fmt.Fprintf(w, "  %s\n", g.name)
		list(g.cmds)
	}
	if len(r.ungrouped) != 0 {
		if len(r.groups) != 0 {
			fmt.Fprintln(w, "  others")
		}
		list(r.ungrouped)
	}
}

func RegisterNewGroup(name string, cmds ...ICommand) *Group {
	return commands.addGroup(name, cmds)
}

func Register(c ICommand) bool {
	if !commands.add(c) {
		return false
	}
	commands.ungrouped = append(commands.ungrouped, c)
	return true
}

func GetCommand(name string) ICommand {
	return commands.byName[name]
}

// ParseCommandLine returns the first registered command named in os.Args,
// and the arguments around it with the command name removed.
func ParseCommandLine() (ICommand, []string) {
	return commands.lookup(os.Args[1:])
}

func Write(w io.Writer) {
	fmt.Fprintf(w, "\nUSAGE\n  %s [-version] [[options] <command> [<args>]] \n\n", filepath.Base(os.Args[0]))
	commands.write(w)
}

func PrintUsage() {
	var buf bytes.Buffer
	Write(&buf)
	page(&buf)
}

// page shows the text through less, or prints it as is when less cannot
// run.
func page(buf *bytes.Buffer) {
	text := buf.Bytes()
	less := exec.Command("less")
	less.Stdin = bytes.NewReader(text)
	less.Stdout = os.Stdout
	if err := less.Run(); err != nil {
		os.Stdout.Write(text)
	}
}

func PrintVersionOrUsage() {
	var option Option
	var displayVersion bool
	option.Init("", flag.ContinueOnError)
	option.BoolOption(&displayVersion, "version", false, "display version info.")
	option.Usage = PrintUsage
	if err := option.Parse(os.Args[1:]); err == nil {
		if displayVersion {
			version.PrintVersionInfo()
		} else {
			PrintUsage()
		}
	}
}
