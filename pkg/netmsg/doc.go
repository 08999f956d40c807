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

/*
Package netmsg frames, stores and validates single imaged RPC messages.

Message frame

A message is one opcode tagged frame. The label and data sections are present
only when the opcode requires them; no empty placeholders are written.

  +----------+-------------------------+---------+------------------------+--------+
  | opcode   | label size              | label   | data size              | data   |
  | 1 byte   | 8 bytes, big endian     | n bytes | 8 bytes, big endian    | m bytes|
  +----------+-------------------------+---------+------------------------+--------+

  opcode:
    0x01	Write      label, data    disk backed
    0x02	Sign                      buffer backed
    0x03	Bundle     label, data    disk backed
    0x04	Heartbeat                 buffer backed
    0x05	Ack                       buffer backed
    0x06	Error      label          buffer backed

Storage

Disk backed messages live in <message dir>/<file id>. File ids come from a
FileIdAllocator and are recycled on Teardown, most recently released first.
Buffer backed messages use an in-memory membuf.File with the same contract.

Errors

Conditions that more bytes can resolve (a size prefix not yet fully received)
are returned as errors.ErrIncomplete and recorded in the message's bounded
error text. Failures that can only mean a broken internal invariant, such as
a read error right after a successful size probe, terminate the process.
IsValid reports a third notion: fatal means the frame can never become valid
by receiving more bytes, and the caller should drop it.
*/
package netmsg
