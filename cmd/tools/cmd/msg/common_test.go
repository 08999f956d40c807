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
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	imgerr "imaged/pkg/errors"
	"imaged/pkg/netmsg"
)

func frameBytes(t *testing.T, op netmsg.Opcode, label string, data string) []byte {
	t.Helper()
	m, err := netmsg.New(op)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Teardown()
	if op.NeedsLabel() {
		m.SetLabel(label)
	}
	if op.NeedsData() {
		if err = m.SetData([]byte(data)); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if _, err = m.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDumpAndLoadCompressed(t *testing.T) {
	dir := t.TempDir()
	netmsg.InitDefaultAllocator(filepath.Join(dir, "messages"))
	os.Mkdir(filepath.Join(dir, "messages"), 0770)

	a := filepath.Join(dir, "a.frame")
	b := filepath.Join(dir, "b.frame")
	os.WriteFile(a, frameBytes(t, netmsg.OpCodeWrite, "obj42", "hello"), 0644)
	os.WriteFile(b, append(frameBytes(t, netmsg.OpCodeError, "retry", ""), frameBytes(t, netmsg.OpCodeAck, "", "")...), 0644)

	out := filepath.Join(dir, "frames.sz")
	w, closer, err := openOutput(out, true)
	if err != nil {
		t.Fatal(err)
	}
	c := &cmdDumpT{}
	n, err := c.dump(w, []string{a, b})
	if err != nil || n != 3 {
		t.Fatalf("dumped %d frames: %v", n, err)
	}
	if err = closer(); err != nil {
		t.Fatal(err)
	}

	r, rcloser, err := openInput(out, true)
	if err != nil {
		t.Fatal(err)
	}
	defer rcloser()
	var seen []string
	n, err = forEachFrame(r, func(m *netmsg.Message) error {
		var buf bytes.Buffer
		if err := describe(&buf, m, true); err != nil {
			return err
		}
		seen = append(seen, buf.String())
		return nil
	})
	if err != nil || n != 3 {
		t.Fatalf("loaded %d frames: %v", n, err)
	}
	if !strings.Contains(seen[0], "WRITE frame, 27 bytes") || !strings.Contains(seen[0], `label  : "obj42"`) || !strings.Contains(seen[0], "data   : 5 bytes hello") {
		t.Errorf("unexpected description\n%s", seen[0])
	}
	if !strings.Contains(seen[1], `ERROR frame`) || !strings.Contains(seen[2], "ACK frame, 1 bytes") {
		t.Errorf("unexpected descriptions\n%s\n%s", seen[1], seen[2])
	}
	if netmsg.DefaultAllocator().NumInUse() != 0 {
		t.Error("frames not torn down")
	}
}

func TestForEachFrameStopsOnBadFrame(t *testing.T) {
	dir := t.TempDir()
	netmsg.InitDefaultAllocator(dir)

	stream := append(frameBytes(t, netmsg.OpCodeHeartbeat, "", ""), 0xee)
	n, err := forEachFrame(bytes.NewReader(stream), func(*netmsg.Message) error { return nil })
	if n != 1 || !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Errorf("got %d frames, %v", n, err)
	}

	stream = frameBytes(t, netmsg.OpCodeWrite, "obj42", "hello")
	n, err = forEachFrame(bytes.NewReader(stream[:20]), func(*netmsg.Message) error { return nil })
	if n != 0 || !errors.Is(err, imgerr.ErrIncomplete) {
		t.Errorf("got %d frames, %v", n, err)
	}

	n, err = forEachFrame(bytes.NewReader(nil), func(*netmsg.Message) error { return io.ErrUnexpectedEOF })
	if n != 0 || err != nil {
		t.Errorf("empty stream: %d frames, %v", n, err)
	}
}
