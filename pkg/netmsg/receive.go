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
	"io"

	"github.com/golang/glog"

	"imaged/pkg/errors"
)

// Receive reads exactly one frame from r into a new message. It never reads
// past the end of the frame, so r may carry further frames.
//
// A frame that can never become valid is dropped with errors.ErrMismatch; a
// stream ending mid-frame gives errors.ErrIncomplete. Read deadlines are the
// caller's business.
func Receive(r io.Reader, alloc *FileIdAllocator) (*Message, error) {
	var op [kOpcodeSize]byte
	if _, err := io.ReadFull(r, op[:]); err != nil {
		return nil, err
	}
	m, err := NewWithAllocator(alloc, Opcode(op[0]))
	if err != nil {
		return nil, err
	}

	buf := make([]byte, receiveChunkSize)
	for {
		want := m.remaining()
		if want == 0 {
			break
		}
		if want > int64(len(buf)) {
			want = int64(len(buf))
		}
		n, rerr := r.Read(buf[:want])
		if n > 0 {
			if _, err = m.Seek(0, io.SeekEnd); err == nil {
				_, err = m.Write(buf[:n])
			}
			if err != nil {
				m.Teardown()
				return nil, err
			}
		}
		if rerr == io.EOF {
			if m.remaining() == 0 {
				break
			}
			m.Teardown()
			return nil, errors.ErrIncomplete.Newf("%s frame truncated, %d more bytes expected", m.opcode, want-int64(n))
		} else if rerr != nil {
			m.Teardown()
			return nil, rerr
		}
	}

	if valid, fatal := m.IsValid(); !valid {
		text := m.LastError()
		m.Teardown()
		if fatal {
			return nil, errors.ErrMismatch.Newf("dropped %s frame: %s", m.opcode, text)
		}
		return nil, errors.ErrIncomplete.Newf("%s frame incomplete: %s", m.opcode, text)
	}
	if glog.V(2) {
		glog.Infof("netmsg received %s frame of %d bytes (tag %s)", m.opcode, m.Size(), m.Tag())
	}
	return m, nil
}

// remaining returns how many more bytes the frame needs before the next size
// field or section is complete, or 0 when every section the opcode carries is
// fully stored.
func (m *Message) remaining() int64 {
	size := m.Size()
	if !m.opcode.NeedsLabel() {
		return 0
	}
	defer m.ClearError()

	if size < kLabelOffset {
		return kLabelOffset - size
	}
	labelSize, _ := m.claimedLabelSize()
	dataSizeOff, err := m.dataSizeOffset(labelSize)
	if err != nil {
		return 0
	}
	if size < dataSizeOff {
		return dataSizeOff - size
	}
	if !m.opcode.NeedsData() {
		return 0
	}

	dataOff := dataSizeOff + kSizeFieldSize
	if size < dataOff {
		return dataOff - size
	}
	dataSize, _ := m.claimedDataSize()
	if dataSize > kMaxSectionSize {
		return 0
	}
	if end := dataOff + int64(dataSize); size < end {
		return end - size
	}
	return 0
}
