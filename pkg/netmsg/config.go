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

package netmsg

import (
	"fmt"
	"os"

	"github.com/golang/glog"
)

type Config struct {
	// MessageDir holds the files of disk backed messages.
	MessageDir string
	// RelocateChunkSize bounds the memory used to move data when a label
	// is replaced by one of a different length.
	RelocateChunkSize uint32
	// ReceiveChunkSize bounds a single read in Receive.
	ReceiveChunkSize uint32
}

var NetmsgConfig = Config{
	MessageDir:        "/var/imaged/messages",
	RelocateChunkSize: 32 * 1024,
	ReceiveChunkSize:  64 * 1024,
}

var (
	relocateChunkSize = int64(NetmsgConfig.RelocateChunkSize)
	receiveChunkSize  = int64(NetmsgConfig.ReceiveChunkSize)
)

func (c *Config) Validate() {
	if c.MessageDir == "" {
		c.MessageDir = NetmsgConfig.MessageDir
	}
	if c.RelocateChunkSize == 0 {
		c.RelocateChunkSize = 32 * 1024
	}
	if c.ReceiveChunkSize == 0 {
		c.ReceiveChunkSize = 64 * 1024
	}
}

func (c *Config) Dump() {
	glog.Infof("MessageDir: %s", c.MessageDir)
	glog.Infof("RelocateChunkSize: %d", c.RelocateChunkSize)
	glog.Infof("ReceiveChunkSize: %d", c.ReceiveChunkSize)
}

// Initialize applies a *Config and sets up the default allocator over its
// message directory, creating the directory if needed.
func Initialize(args ...interface{}) (err error) {
	if len(args) < 1 {
		return fmt.Errorf("netmsg config argument expected")
	}
	c, ok := args[0].(*Config)
	if !ok {
		return fmt.Errorf("wrong argument type")
	}
	c.Validate()
	c.Dump()
	if err = os.MkdirAll(c.MessageDir, 0770); err != nil {
		return
	}
	relocateChunkSize = int64(c.RelocateChunkSize)
	receiveChunkSize = int64(c.ReceiveChunkSize)
	InitDefaultAllocator(c.MessageDir)
	return
}

func Finalize() {
}
