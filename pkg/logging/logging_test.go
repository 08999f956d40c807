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

package logging

import (
	"flag"
	"testing"
)

type opName string

func (o opName) String() string { return string(o) }

func TestKeyValueBuffer(t *testing.T) {
	b := NewKVBufferForLog()
	b.AddOpCode(opName("WRITE")).AddTag("").AddPath("/var/msg/3").AddLength(27).AddSectionLengths(5, -1).AddStatus("valid")

	expected := "op=WRITE,path=/var/msg/3,len=27,llen=5,st=valid"
	if b.String() != expected {
		t.Errorf("expected %q, got %q", expected, b.String())
	}
}

func TestInitLogging(t *testing.T) {
	tests := []struct {
		level string
		v     string
		fail  bool
	}{
		{"info", "0", false},
		{"DEBUG", "2", false},
		{"verbose", "3", false},
		{"chatty", "", true},
	}
	for _, tc := range tests {
		err := InitLogging(tc.level)
		if tc.fail {
			if err == nil {
				t.Errorf("level %s: expected error", tc.level)
			}
			continue
		}
		if err != nil {
			t.Errorf("level %s: %v", tc.level, err)
			continue
		}
		if got := flag.Lookup("v").Value.String(); got != tc.v {
			t.Errorf("level %s: v=%s, expected %s", tc.level, got, tc.v)
		}
	}
	InitLogging("info")
}
