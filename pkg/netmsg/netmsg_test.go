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
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	imgerr "imaged/pkg/errors"
	"imaged/pkg/membuf"
)

func TestConstructTeardown(t *testing.T) {
	alloc := NewFileIdAllocator(t.TempDir())

	for _, op := range allOpcodes {
		m := newTestMessage(t, alloc, op)
		if m.Opcode() != op {
			t.Errorf("%s: opcode %s", op, m.Opcode())
		}
		if sz := m.Size(); sz != 1 {
			t.Errorf("%s: expected 1 byte stored, got %d", op, sz)
		}
		var b [1]byte
		m.Seek(0, io.SeekStart)
		if n, err := m.Read(b[:]); n != 1 || err != nil || Opcode(b[0]) != op {
			t.Errorf("%s: byte 0 is %d (%d, %v)", op, b[0], n, err)
		}

		path := m.Path()
		if op.DiskBacked() {
			if path == "" {
				t.Fatalf("%s: no backing file", op)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("%s: %s", op, err)
			}
		} else if path != "" {
			t.Errorf("%s: unexpected backing file %s", op, path)
		}

		m.Teardown()
		if op.DiskBacked() {
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("%s: %s not removed", op, path)
			}
			if alloc.NumInUse() != 0 {
				t.Errorf("%s: id not released", op)
			}
			p, _ := alloc.ReservePath()
			if p != path {
				t.Errorf("%s: expected id of %s to be reused, got %s", op, path, p)
			}
			alloc.ReleasePath(p)
		}
	}
}

func TestIllegalOpcode(t *testing.T) {
	alloc := NewFileIdAllocator(t.TempDir())
	for _, op := range []Opcode{0, 7, 200, 255} {
		m, err := NewWithAllocator(alloc, op)
		if m != nil || !errors.Is(err, imgerr.ErrInvalidArgument) {
			t.Errorf("%d: expected invalid argument, got %v", uint8(op), err)
		}
		if !strings.Contains(err.Error(), "illegal message type") {
			t.Errorf("%d: unexpected error text %q", uint8(op), err.Error())
		}
	}
	if alloc.NumInUse() != 0 {
		t.Error("illegal opcode reserved an id")
	}
}

func TestDiskMessageWithoutAllocator(t *testing.T) {
	if _, err := NewWithAllocator(nil, OpCodeWrite); !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
	m, err := NewWithAllocator(nil, OpCodeAck)
	if err != nil {
		t.Fatal(err)
	}
	m.Teardown()
}

func TestOpenFailureReleasesId(t *testing.T) {
	alloc := NewFileIdAllocator(filepath.Join(t.TempDir(), "missing"))
	_, err := NewWithAllocator(alloc, OpCodeWrite)
	if !errors.Is(err, imgerr.ErrIO) {
		t.Fatalf("expected i/o error, got %v", err)
	}
	if !strings.Contains(err.Error(), "open message file") {
		t.Errorf("unexpected error text %q", err.Error())
	}
	if alloc.NumInUse() != 0 {
		t.Errorf("%d ids still in use", alloc.NumInUse())
	}
}

func TestCommitOpcodeAborts(t *testing.T) {
	f := membuf.Open()
	f.Close()
	m := &Message{opcode: OpCodeAck, storage: f}
	expectAbort(t, "closed storage", m.commitOpcode)
}

func TestRawWrappersRecordErrors(t *testing.T) {
	alloc := NewFileIdAllocator(t.TempDir())

	for _, op := range []Opcode{OpCodeWrite, OpCodeError} {
		m := newTestMessage(t, alloc, op)

		if _, err := m.Seek(-1, io.SeekStart); err == nil {
			t.Errorf("%s: negative seek succeeded", op)
		}
		text := m.LastError()
		if text == "" {
			t.Errorf("%s: seek failure not recorded", op)
		}

		if _, err := m.Seek(0, io.SeekEnd); err != nil {
			t.Fatal(err)
		}
		if n, err := m.Write([]byte("abc")); n != 3 || err != nil {
			t.Fatalf("%s: write: %d, %v", op, n, err)
		}
		if m.LastError() != text {
			t.Errorf("%s: successful write changed the error text to %q", op, m.LastError())
		}

		m.Seek(1, io.SeekStart)
		buf := make([]byte, 8)
		n, _ := m.Read(buf)
		if string(buf[:n]) != "abc" {
			t.Errorf("%s: read back %q", op, buf[:n])
		}
		m.ClearError()
		if n, err := m.Read(buf); n != 0 || err != io.EOF {
			t.Errorf("%s: expected EOF, got %d, %v", op, n, err)
		}
		if m.LastError() != "" {
			t.Errorf("%s: EOF recorded as %q", op, m.LastError())
		}

		if err := m.Truncate(-1); err == nil {
			t.Errorf("%s: negative truncate succeeded", op)
		} else if m.LastError() == "" {
			t.Errorf("%s: truncate failure not recorded", op)
		}
		m.Teardown()
	}
}

func TestErrorTextIsBounded(t *testing.T) {
	m := newTestMessage(t, nil, OpCodeAck)
	defer m.Teardown()

	m.setError(strings.Repeat("x", 3*kErrorTextSize))
	if len(m.LastError()) != kErrorTextSize {
		t.Errorf("error text is %d bytes", len(m.LastError()))
	}
	m.ClearError()
	if m.LastError() != "" {
		t.Error("error text not cleared")
	}
}

func TestTagsAreDistinct(t *testing.T) {
	a := newTestMessage(t, nil, OpCodeAck)
	b := newTestMessage(t, nil, OpCodeAck)
	defer a.Teardown()
	defer b.Teardown()
	if a.Tag() == b.Tag() {
		t.Errorf("two messages share tag %s", a.Tag())
	}
}

func TestWriteToAndDigest(t *testing.T) {
	alloc := NewFileIdAllocator(t.TempDir())

	build := func(op Opcode, label string, data []byte) *Message {
		m := newTestMessage(t, alloc, op)
		m.SetLabel(label)
		if err := m.SetData(data); err != nil {
			t.Fatal(err)
		}
		return m
	}
	a := build(OpCodeWrite, "obj42", []byte("hello"))
	b := build(OpCodeWrite, "obj42", []byte("hello"))
	c := build(OpCodeWrite, "obj42", []byte("hellO"))
	defer a.Teardown()
	defer b.Teardown()
	defer c.Teardown()

	var out bytes.Buffer
	n, err := a.WriteTo(&out)
	if err != nil || n != 27 {
		t.Fatalf("WriteTo: %d, %v", n, err)
	}
	expected := append([]byte{byte(OpCodeWrite), 0, 0, 0, 0, 0, 0, 0, 5}, "obj42"...)
	expected = append(expected, 0, 0, 0, 0, 0, 0, 0, 5)
	expected = append(expected, "hello"...)
	if !bytes.Equal(out.Bytes(), expected) {
		t.Errorf("unexpected frame\n%x\n%x", out.Bytes(), expected)
	}

	da, _ := a.Digest()
	db, _ := b.Digest()
	dc, _ := c.Digest()
	if len(da) != 32 {
		t.Errorf("digest %q", da)
	}
	if da != db {
		t.Errorf("identical frames digest to %s and %s", da, db)
	}
	if da == dc {
		t.Error("different frames share a digest")
	}
}
