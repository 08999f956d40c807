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

package membuf

import (
	"bytes"
	"errors"
	"io"
	"testing"

	imgerr "imaged/pkg/errors"
)

func TestWriteReadSeek(t *testing.T) {
	f := Open()
	defer f.Close()

	if n, err := f.Write([]byte("hello world")); err != nil || n != 11 {
		t.Fatalf("write: n=%d err=%v", n, err)
	}
	if off, err := f.Seek(6, io.SeekStart); err != nil || off != 6 {
		t.Fatalf("seek: off=%d err=%v", off, err)
	}
	buf := make([]byte, 16)
	n, err := f.Read(buf)
	if err != nil || string(buf[:n]) != "world" {
		t.Errorf("read %q err=%v", buf[:n], err)
	}
	if n, err = f.Read(buf); n != 0 || err != io.EOF {
		t.Errorf("expected EOF, got n=%d err=%v", n, err)
	}
	if off, _ := f.Seek(0, io.SeekEnd); off != 11 {
		t.Errorf("wrong end offset %d", off)
	}
	if off, _ := f.Seek(-5, io.SeekCurrent); off != 6 {
		t.Errorf("wrong current offset %d", off)
	}
}

func TestSeekPastEndThenWriteZeroFills(t *testing.T) {
	f := Open()
	defer f.Close()

	f.Write([]byte("ab"))
	f.Seek(5, io.SeekStart)
	f.Write([]byte("z"))

	if f.Len() != 6 {
		t.Fatalf("wrong length %d", f.Len())
	}
	f.Seek(0, io.SeekStart)
	got, _ := io.ReadAll(f)
	if !bytes.Equal(got, []byte{'a', 'b', 0, 0, 0, 'z'}) {
		t.Errorf("unexpected content %v", got)
	}
}

func TestTruncate(t *testing.T) {
	f := Open()
	defer f.Close()

	f.Write([]byte("0123456789"))
	if err := f.Truncate(4); err != nil {
		t.Fatal(err)
	}
	// cursor is not moved by truncate
	if off, _ := f.Seek(0, io.SeekCurrent); off != 10 {
		t.Errorf("cursor moved to %d", off)
	}
	// growing again must not resurrect the old bytes
	if err := f.Truncate(8); err != nil {
		t.Fatal(err)
	}
	f.Seek(0, io.SeekStart)
	got, _ := io.ReadAll(f)
	if !bytes.Equal(got, []byte{'0', '1', '2', '3', 0, 0, 0, 0}) {
		t.Errorf("unexpected content %v", got)
	}
	if err := f.Truncate(-1); !errors.Is(err, imgerr.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestNegativeSeek(t *testing.T) {
	f := Open()
	defer f.Close()
	if _, err := f.Seek(-1, io.SeekStart); err == nil {
		t.Error("expected error seeking before start")
	}
	if _, err := f.Seek(0, 42); err == nil {
		t.Error("expected error for bad whence")
	}
}

func TestClosed(t *testing.T) {
	f := Open()
	f.Write([]byte("x"))
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Read(make([]byte, 1)); !errors.Is(err, imgerr.ErrClosed) {
		t.Errorf("read after close: %v", err)
	}
	if _, err := f.Write([]byte("x")); !errors.Is(err, imgerr.ErrClosed) {
		t.Errorf("write after close: %v", err)
	}
	if err := f.Close(); !errors.Is(err, imgerr.ErrClosed) {
		t.Errorf("double close: %v", err)
	}

	g := Open()
	defer g.Close()
	if g.Len() != 0 {
		t.Errorf("reused region not empty: %d", g.Len())
	}
}
