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
	"io"
	"os"

	"github.com/golang/glog"
	uuid "github.com/satori/go.uuid"
	"github.com/spaolacci/murmur3"

	"imaged/pkg/errors"
	"imaged/pkg/logging"
	"imaged/pkg/logging/otel"
)

const kErrorTextSize = 500

// Message is one frame marshalled into its own storage. The opcode is fixed
// at construction and written to byte 0 of the storage right away.
//
// Note: a Message is not goroutine safe.
type Message struct {
	opcode  Opcode
	storage Storage
	path    string
	alloc   *FileIdAllocator
	tag     uuid.UUID
	errText string
}

// New constructs a message using the default allocator for disk backed
// opcodes.
func New(op Opcode) (*Message, error) {
	return NewWithAllocator(DefaultAllocator(), op)
}

func NewWithAllocator(alloc *FileIdAllocator, op Opcode) (m *Message, err error) {
	if !op.IsValid() {
		return nil, errors.ErrInvalidArgument.Newf("illegal message type %d", uint8(op))
	}
	m = &Message{opcode: op, tag: uuid.NewV1()}

	if op.DiskBacked() {
		if alloc == nil {
			return nil, errors.ErrInvalidArgument.Newf("no message directory for %s message", op)
		}
		if m.path, err = alloc.ReservePath(); err != nil {
			glog.Warningf("netmsg: %s", err)
			return nil, err
		}
		if m.storage, err = openDiskStorage(m.path); err != nil {
			glog.Warningf("netmsg: open %s: %s", m.path, err)
			os.Remove(m.path)
			alloc.ReleasePath(m.path)
			return nil, errors.ErrIO.Newf("open message file %s: %s", m.path, err)
		}
		m.alloc = alloc
	} else {
		m.storage = openBufferStorage()
	}

	m.commitOpcode()
	otel.RecordCreate(op.String())
	if glog.V(2) {
		glog.Infof("netmsg created %s", logging.NewKVBufferForLog().AddOpCode(op).AddTag(m.Tag()).AddPath(m.path).String())
	}
	return m, nil
}

// commitOpcode writes the opcode to byte 0. A fresh backend is not expected
// to fail here.
func (m *Message) commitOpcode() {
	if _, err := m.storage.Seek(0, io.SeekStart); err != nil {
		abort("netmsg commit: could not seek to start of storage: %s", err)
	}
	if n, err := m.storage.Write([]byte{byte(m.opcode)}); err != nil || n != 1 {
		abort("netmsg commit: could not write opcode (%d bytes written): %v", n, err)
	}
	if off, err := m.storage.Seek(0, io.SeekStart); err != nil || off != 0 {
		abort("netmsg commit: could not seek to start after opcode commit: %v", err)
	}
}

// Teardown releases the storage and, for disk backed messages, removes the
// file and recycles its id. It must be called exactly once.
func (m *Message) Teardown() {
	if err := m.storage.Close(); err != nil {
		glog.Warningf("netmsg teardown: close: %s", err)
	}
	if m.path != "" {
		if err := os.Remove(m.path); err != nil {
			glog.Warningf("netmsg teardown: %s", err)
		}
		m.alloc.ReleasePath(m.path)
	}
	otel.RecordTeardown(m.opcode.String())
	if glog.V(2) {
		glog.Infof("netmsg torn down %s", logging.NewKVBufferForLog().AddOpCode(m.opcode).AddTag(m.Tag()).AddPath(m.path).String())
	}
	m.storage = nil
}

func (m *Message) Opcode() Opcode {
	return m.opcode
}

// Path returns the backing file of a disk backed message, or "" for buffer
// backed ones.
func (m *Message) Path() string {
	return m.path
}

// Tag identifies the message in logs.
func (m *Message) Tag() string {
	return m.tag.String()
}

// LastError returns the text of the most recent recorded failure.
func (m *Message) LastError() string {
	return m.errText
}

func (m *Message) ClearError() {
	m.errText = ""
}

func (m *Message) setError(text string) {
	if len(text) > kErrorTextSize {
		text = text[:kErrorTextSize]
	}
	m.errText = text
}

func (m *Message) setErrorf(format string, args ...interface{}) {
	m.setError(fmt.Sprintf(format, args...))
}

// Read reads from the current position. Reaching the end of storage is
// reported with io.EOF and is not recorded as a failure.
func (m *Message) Read(p []byte) (n int, err error) {
	if n, err = m.storage.Read(p); err != nil && err != io.EOF {
		m.setError(err.Error())
	}
	return
}

func (m *Message) Write(p []byte) (n int, err error) {
	if n, err = m.storage.Write(p); err != nil {
		m.setError(err.Error())
	}
	return
}

func (m *Message) Seek(offset int64, whence int) (off int64, err error) {
	if off, err = m.storage.Seek(offset, whence); err != nil {
		m.setError(err.Error())
	}
	return
}

func (m *Message) Truncate(size int64) (err error) {
	if err = m.storage.Truncate(size); err != nil {
		m.setError(err.Error())
	}
	return
}

// Size returns the number of bytes currently stored.
func (m *Message) Size() int64 {
	return m.seekOrAbort("size", 0, io.SeekEnd)
}

// WriteTo writes the stored frame to w. The position is left at the end of
// storage.
func (m *Message) WriteTo(w io.Writer) (n int64, err error) {
	if _, err = m.Seek(0, io.SeekStart); err != nil {
		return
	}
	return io.Copy(w, m.storage)
}

// Digest returns the hex encoded 128 bit murmur3 hash of the stored frame.
func (m *Message) Digest() (string, error) {
	h := murmur3.New128()
	if _, err := m.WriteTo(h); err != nil {
		return "", err
	}
	h1, h2 := h.Sum128()
	return fmt.Sprintf("%016x%016x", h1, h2), nil
}

func (m *Message) seekOrAbort(where string, offset int64, whence int) int64 {
	off, err := m.storage.Seek(offset, whence)
	if err != nil {
		abort("netmsg %s: could not seek to %d (whence %d): %s", where, offset, whence, err)
	}
	return off
}

func (m *Message) truncateOrAbort(where string, size int64) {
	if err := m.storage.Truncate(size); err != nil {
		abort("netmsg %s: could not truncate to %d: %s", where, size, err)
	}
}

func (m *Message) writeOrAbort(where string, p []byte) {
	if n, err := m.storage.Write(p); err != nil || n != len(p) {
		abort("netmsg %s: wrote %d of %d bytes: %v", where, n, len(p), err)
	}
}
