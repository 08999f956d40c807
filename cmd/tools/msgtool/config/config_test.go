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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	saved := toolConfig
	defer func() { toolConfig = saved }()

	file := filepath.Join(t.TempDir(), "msgtool.toml")
	content := `
LogLevel = "debug"

[Netmsg]
MessageDir = "/tmp/imaged/msgs"
RelocateChunkSize = 4096

[Otel]
Enabled = true
Port = 14318
`
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadConfig(file); err != nil {
		t.Fatal(err)
	}
	c := ToolConfig()
	if c.LogLevel != "debug" || c.Netmsg.MessageDir != "/tmp/imaged/msgs" || c.Netmsg.RelocateChunkSize != 4096 {
		t.Errorf("unexpected config %+v", c)
	}
	if c.Netmsg.ReceiveChunkSize != 64*1024 {
		t.Errorf("default ReceiveChunkSize lost: %d", c.Netmsg.ReceiveChunkSize)
	}
	if !c.Otel.Enabled || c.Otel.Port != 14318 || c.Otel.Poolname != "msgtool" || c.Otel.Resolution != 10 {
		t.Errorf("unexpected otel config %+v", c.Otel)
	}
	c.Dump()
}

func TestLoadConfigErrors(t *testing.T) {
	saved := toolConfig
	defer func() { toolConfig = saved }()

	if err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
	file := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(file, []byte(`LogLevel = "chatty"`), 0644)
	if err := LoadConfig(file); err == nil {
		t.Error("bad log level accepted")
	}
	if err := initialize(42); err == nil {
		t.Error("non string argument accepted")
	}
}
