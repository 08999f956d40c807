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
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"

	"imaged/pkg/initmgr"
	otelCfg "imaged/pkg/logging/otel/config"
	"imaged/pkg/netmsg"
)

var Initializer initmgr.IInitializer = initmgr.NewInitializer(initialize, finalize)

type Config struct {
	LogLevel string
	Netmsg   netmsg.Config
	Otel     otelCfg.Config
}

var toolConfig = Config{
	LogLevel: "warning",
	Netmsg: netmsg.Config{
		MessageDir: filepath.Join(os.TempDir(), "msgtool"),
	},
	Otel: otelCfg.Config{
		Host:       "127.0.0.1",
		Port:       4318,
		Poolname:   "msgtool",
		Resolution: 10,
	},
}

// LoadConfig decodes file over the defaults. An empty name keeps the
// defaults.
func LoadConfig(file string) (err error) {
	if file != "" {
		if _, err = toml.DecodeFile(file, &toolConfig); err != nil {
			return
		}
	}
	return toolConfig.Validate()
}

func ToolConfig() *Config {
	return &toolConfig
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "error", "warning", "info", "debug", "verbose":
	default:
		return fmt.Errorf("invalid LogLevel %q", c.LogLevel)
	}
	c.Netmsg.Validate()
	c.Otel.Validate()
	if c.Otel.Enabled && c.Otel.Port > 65535 {
		return fmt.Errorf("invalid Otel.Port %d", c.Otel.Port)
	}
	return nil
}

func (c *Config) Dump() {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(c); err != nil {
		glog.Warningf("config dump: %s", err)
		return
	}
	glog.Info(buf.String())
}

func initialize(args ...interface{}) (err error) {
	if len(args) < 1 {
		err = fmt.Errorf("a string config file name argument expected")
		return
	}
	filename, ok := args[0].(string)
	if !ok {
		err = fmt.Errorf("wrong argument type. a string config file name expected")
		return
	}
	return LoadConfig(filename)
}

func finalize() {
}
