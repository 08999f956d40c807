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

// Package membuf provides an in-memory file with regular file semantics for
// read, write, seek and truncate.
package membuf

import (
	"io"
	"sync"

	"imaged/pkg/errors"
)

const (
	kDefaultRegionSize = 512
	kMaxPooledSize     = 64 * 1024
)

var regionPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, kDefaultRegionSize)
		return &b
	},
}

// File is a growable byte region with its own cursor. The zero value is not
// usable; call Open.
//
// Note: File is not goroutine safe.
type File struct {
	buf    []byte
	off    int64
	closed bool
}

func Open() *File {
	bp := regionPool.Get().(*[]byte)
	return &File{buf: (*bp)[:0]}
}

func (f *File) Read(p []byte) (n int, err error) {
	if f.closed {
		return 0, errors.ErrClosed
	}
	if f.off >= int64(len(f.buf)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = copy(p, f.buf[f.off:])
	f.off += int64(n)
	return
}

func (f *File) Write(p []byte) (n int, err error) {
	if f.closed {
		return 0, errors.ErrClosed
	}
	end := f.off + int64(len(p))
	if end > int64(len(f.buf)) {
		f.resize(end)
	}
	n = copy(f.buf[f.off:end], p)
	f.off = end
	return
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, errors.ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.off + offset
	case io.SeekEnd:
		abs = int64(len(f.buf)) + offset
	default:
		return 0, errors.ErrInvalidArgument.Newf("membuf: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.ErrInvalidArgument.Newf("membuf: negative position %d", abs)
	}
	f.off = abs
	return abs, nil
}

// Truncate changes the size of the region. The cursor is left untouched.
func (f *File) Truncate(size int64) error {
	if f.closed {
		return errors.ErrClosed
	}
	if size < 0 {
		return errors.ErrInvalidArgument.Newf("membuf: negative size %d", size)
	}
	f.resize(size)
	return nil
}

func (f *File) Close() error {
	if f.closed {
		return errors.ErrClosed
	}
	f.closed = true
	if cap(f.buf) <= kMaxPooledSize {
		b := f.buf[:0]
		regionPool.Put(&b)
	}
	f.buf = nil
	f.off = 0
	return nil
}

// Len returns the current size of the region.
func (f *File) Len() int {
	return len(f.buf)
}

// resize sets the region length to n, zero filling any newly exposed bytes.
func (f *File) resize(n int64) {
	cur := int64(len(f.buf))
	if n <= cur {
		f.buf = f.buf[:n]
		return
	}
	if n > int64(cap(f.buf)) {
		newCap := 2 * int64(cap(f.buf))
		if newCap < n {
			newCap = n
		}
		nb := make([]byte, cur, newCap)
		copy(nb, f.buf)
		f.buf = nb
	}
	f.buf = f.buf[:n]
	for i := cur; i < n; i++ {
		f.buf[i] = 0
	}
}
