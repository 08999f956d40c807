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
	"time"

	"github.com/golang/glog"

	"imaged/pkg/logging"
	"imaged/pkg/logging/otel"
	"imaged/pkg/stats"
)

// IsValid checks that the stored frame is complete and consistent with the
// message's opcode. When it is not, fatal tells whether more bytes could
// still make it valid (false) or the frame must be dropped (true). The reason
// is recorded in the error text.
func (m *Message) IsValid() (valid bool, fatal bool) {
	start := time.Now()
	valid, fatal = m.checkFrame()

	outcome, result := stats.OutcomeIncomplete, otel.ResultIncomplete
	var size int64
	switch {
	case valid:
		outcome, result = stats.OutcomeValid, otel.ResultValid
		size = m.Size()
	case fatal:
		outcome, result = stats.OutcomeFatal, otel.ResultFatal
	}
	stats.Frames.Put(uint8(m.opcode), m.opcode.String(), outcome, size, time.Since(start))
	otel.RecordValidation(m.opcode.String(), result, size)

	if fatal {
		glog.Errorf("netmsg invalid %s", logging.NewKVBufferForLog().AddOpCode(m.opcode).AddTag(m.Tag()).AddPath(m.path).AddStatus(result).AddErrorText(m.errText).String())
	} else if glog.V(3) {
		glog.Infof("netmsg checked %s", logging.NewKVBufferForLog().AddOpCode(m.opcode).AddTag(m.Tag()).AddLength(size).AddStatus(result).AddErrorText(m.errText).String())
	}
	return
}

func (m *Message) checkFrame() (valid bool, fatal bool) {
	m.seekOrAbort("validate", 0, io.SeekStart)

	var stored [kOpcodeSize]byte
	n, err := readUpTo(m.storage, stored[:])
	if err != nil {
		abort("netmsg validate: could not read opcode: %s", err)
	}
	if n != kOpcodeSize {
		m.setError("complete message type not present")
		return false, false
	}
	if Opcode(stored[0]) != m.opcode {
		m.setErrorf("cached opcode %d doesn't match marshalled opcode %d", uint8(m.opcode), stored[0])
		return false, true
	}

	if m.opcode.NeedsLabel() {
		claimed, err := m.claimedLabelSize()
		if err != nil {
			return false, false
		}
		if actual := uint64(len(m.readSection("label", kLabelOffset, claimed))); actual != claimed {
			m.setErrorf("claimed label size %d != actual label size %d", claimed, actual)
			return false, false
		}
	}

	if m.opcode.NeedsData() {
		labelSize, err := m.claimedLabelSize()
		if err != nil {
			return false, false
		}
		claimed, err := m.claimedDataSize()
		if err != nil {
			return false, false
		}
		off := kLabelOffset + int64(labelSize) + kSizeFieldSize
		if actual := uint64(len(m.readSection("data", off, claimed))); actual != claimed {
			m.setErrorf("claimed data size %d != actual data size %d", claimed, actual)
			return false, false
		}
	}

	expected := m.expectedSizeIfValid()
	actual := m.seekOrAbort("validate", 0, io.SeekEnd)
	if uint64(actual) != expected {
		m.setErrorf("claimed message size %d != actual message size %d", expected, actual)
		return false, true
	}
	return true, false
}
