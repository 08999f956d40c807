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
	"strings"

	"imaged/pkg/errors"
)

type Opcode uint8

const (
	OpCodeWrite Opcode = iota + 1
	OpCodeSign
	OpCodeBundle
	OpCodeHeartbeat
	OpCodeAck
	OpCodeError
	kOpCodeLastInvalid
)

var opCodeNames = [kOpCodeLastInvalid]string{
	"",
	"WRITE",
	"SIGN",
	"BUNDLE",
	"HEARTBEAT",
	"ACK",
	"ERROR",
}

func (op Opcode) IsValid() bool {
	return op >= OpCodeWrite && op < kOpCodeLastInvalid
}

func (op Opcode) String() string {
	if op.IsValid() {
		return opCodeNames[op]
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(op))
}

func (op Opcode) NeedsLabel() bool {
	switch op {
	case OpCodeWrite, OpCodeBundle, OpCodeError:
		return true
	}
	return false
}

func (op Opcode) NeedsData() bool {
	switch op {
	case OpCodeWrite, OpCodeBundle:
		return true
	}
	return false
}

// DiskBacked reports whether messages of op are stored in a file under the
// message directory rather than in memory.
func (op Opcode) DiskBacked() bool {
	return op == OpCodeWrite || op == OpCodeBundle
}

func ParseOpcode(name string) (Opcode, error) {
	for i := OpCodeWrite; i < kOpCodeLastInvalid; i++ {
		if strings.EqualFold(opCodeNames[i], name) {
			return i, nil
		}
	}
	return 0, errors.ErrInvalidArgument.Newf("unknown opcode %q", name)
}
