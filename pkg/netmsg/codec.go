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
	"encoding/binary"
	"io"
	"math"

	"imaged/pkg/errors"
)

const (
	kOpcodeSize      = 1
	kSizeFieldSize   = 8
	kLabelSizeOffset = kOpcodeSize
	kLabelOffset     = kOpcodeSize + kSizeFieldSize

	// claimed section sizes above this cannot be addressed in storage
	kMaxSectionSize = uint64(math.MaxInt64 / 4)
)

// probeSize reads the 8 byte big endian size field at off. A field not yet
// fully stored is recoverable; any other failure aborts.
func (m *Message) probeSize(what string, off int64, record bool) (uint64, error) {
	m.seekOrAbort(what+" size probe", off, io.SeekStart)

	var field [kSizeFieldSize]byte
	n, err := readUpTo(m.storage, field[:])
	if err != nil {
		abort("netmsg %s size probe: could not read storage: %s", what, err)
	}
	if n < kSizeFieldSize {
		e := errors.ErrIncomplete.Newf("%s size is incompletely received", what)
		if record {
			m.setError(e.What())
		}
		return 0, e
	}
	return binary.BigEndian.Uint64(field[:]), nil
}

func (m *Message) claimedLabelSize() (uint64, error) {
	return m.probeSize("label", kLabelSizeOffset, true)
}

func (m *Message) dataSizeOffset(labelSize uint64) (int64, error) {
	if labelSize > kMaxSectionSize {
		e := errors.ErrIncomplete.Newf("label size %d exceeds addressable storage", labelSize)
		m.setError(e.What())
		return 0, e
	}
	return kLabelOffset + int64(labelSize), nil
}

func (m *Message) claimedDataSize() (uint64, error) {
	labelSize, err := m.claimedLabelSize()
	if err != nil {
		return 0, err
	}
	off, err := m.dataSizeOffset(labelSize)
	if err != nil {
		return 0, err
	}
	return m.probeSize("data", off, true)
}

// expectedSizeIfValid is the total frame size implied by the size fields of
// the sections the opcode carries. A section whose size is not available does
// not contribute. The error text is always cleared.
// expectedSizeIfValid probes only the sections the opcode carries. Control
// frames have no placeholder sections, so bytes after their opcode can never
// be read as a size field and are reported as a mismatch.
func (m *Message) expectedSizeIfValid() uint64 {
	total := uint64(kOpcodeSize)

	if m.opcode.NeedsLabel() {
		if size, err := m.claimedLabelSize(); err == nil {
			total += kSizeFieldSize + size
		}
	}
	if m.opcode.NeedsData() {
		if size, err := m.claimedDataSize(); err == nil {
			total += kSizeFieldSize + size
		}
	}
	m.ClearError()
	return total
}

// readSection reads up to claimed bytes at off. Fewer bytes are returned when
// the section is still arriving.
func (m *Message) readSection(what string, off int64, claimed uint64) []byte {
	end := m.seekOrAbort(what+" read", 0, io.SeekEnd)
	avail := end - off
	if avail < 0 {
		avail = 0
	}
	size := claimed
	if uint64(avail) < size {
		size = uint64(avail)
	}
	out := make([]byte, size)

	m.seekOrAbort(what+" read", off, io.SeekStart)
	n, err := readUpTo(m.storage, out)
	if err != nil {
		abort("netmsg %s read: could not read storage: %s", what, err)
	}
	return out[:n]
}

// Label returns the label as far as it is stored.
func (m *Message) Label() (string, error) {
	size, err := m.claimedLabelSize()
	if err != nil {
		return "", err
	}
	return string(m.readSection("label", kLabelOffset, size)), nil
}

// SetLabel replaces the label. Bytes stored after an existing label, such as
// the data section, are kept unchanged behind the new label.
func (m *Message) SetLabel(label string) {
	newLabelEnd := int64(kLabelOffset + len(label))

	oldSize, err := m.probeSize("label", kLabelSizeOffset, false)
	if err == nil && oldSize <= kMaxSectionSize {
		oldLabelEnd := kLabelOffset + int64(oldSize)
		end := m.seekOrAbort("set label", 0, io.SeekEnd)
		if trailing := end - oldLabelEnd; trailing > 0 {
			m.relocate(oldLabelEnd, newLabelEnd, trailing)
			m.truncateOrAbort("set label", newLabelEnd+trailing)
		} else {
			m.truncateOrAbort("set label", kOpcodeSize)
		}
	} else {
		m.truncateOrAbort("set label", kOpcodeSize)
	}

	section := make([]byte, kSizeFieldSize+len(label))
	binary.BigEndian.PutUint64(section, uint64(len(label)))
	copy(section[kSizeFieldSize:], label)

	m.seekOrAbort("set label", kLabelSizeOffset, io.SeekStart)
	m.writeOrAbort("set label", section)
}

// relocate moves n bytes from offset from to offset to, one bounded chunk at
// a time. Chunks are moved in the order that never overwrites bytes not yet
// moved.
func (m *Message) relocate(from, to, n int64) {
	if from == to || n <= 0 {
		return
	}
	chunkSize := relocateChunkSize
	if chunkSize > n {
		chunkSize = n
	}
	chunk := make([]byte, chunkSize)

	if to > from {
		for remaining := n; remaining > 0; {
			c := chunkSize
			if c > remaining {
				c = remaining
			}
			remaining -= c
			m.moveChunk(from+remaining, to+remaining, chunk[:c])
		}
	} else {
		for done := int64(0); done < n; {
			c := chunkSize
			if c > n-done {
				c = n - done
			}
			m.moveChunk(from+done, to+done, chunk[:c])
			done += c
		}
	}
}

func (m *Message) moveChunk(src, dst int64, buf []byte) {
	m.seekOrAbort("relocate", src, io.SeekStart)
	if n, err := readUpTo(m.storage, buf); err != nil || n != len(buf) {
		abort("netmsg relocate: read %d of %d bytes at %d: %v", n, len(buf), src, err)
	}
	m.seekOrAbort("relocate", dst, io.SeekStart)
	m.writeOrAbort("relocate", buf)
}

// Data returns the data section as far as it is stored.
func (m *Message) Data() ([]byte, error) {
	labelSize, err := m.claimedLabelSize()
	if err != nil {
		return nil, err
	}
	dataSize, err := m.claimedDataSize()
	if err != nil {
		return nil, err
	}
	off := kLabelOffset + int64(labelSize) + kSizeFieldSize
	return m.readSection("data", off, dataSize), nil
}

// SetData replaces the data section. The label size must already be stored
// since the data section starts right after the label.
func (m *Message) SetData(data []byte) error {
	labelSize, err := m.claimedLabelSize()
	if err != nil {
		return err
	}
	off, err := m.dataSizeOffset(labelSize)
	if err != nil {
		return err
	}
	m.truncateOrAbort("set data", off)
	m.seekOrAbort("set data", 0, io.SeekEnd)

	var field [kSizeFieldSize]byte
	binary.BigEndian.PutUint64(field[:], uint64(len(data)))
	m.writeOrAbort("set data", field[:])
	m.writeOrAbort("set data", data)
	return nil
}
