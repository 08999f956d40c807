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

package version

import (
	"bytes"
	"strings"
	"testing"
)

func TestOnelineVersionString(t *testing.T) {
	saved := []string{Version, Revision, BuildId}
	defer func() { Version, Revision, BuildId = saved[0], saved[1], saved[2] }()

	Version, Revision, BuildId = "1.0", "", ""
	if s := OnelineVersionString(); s != "1.0" {
		t.Errorf("got %q", s)
	}
	Revision, BuildId = "abc123", "42"
	if s := OnelineVersionString(); s != "1.0.abc123.42" {
		t.Errorf("got %q", s)
	}

	var buf bytes.Buffer
	WriteVersionInfo(&buf)
	if !strings.Contains(buf.String(), "Git Commit: abc123") {
		t.Errorf("version info missing revision:\n%s", buf.String())
	}
}
