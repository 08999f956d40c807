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

package logging

import (
	"bytes"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// glog verbosity for each level name. Lifecycle traces log at V(2).
const (
	kVerboseDebug   = "2"
	kVerboseVerbose = "3"
)

// InitLogging points glog at stderr and sets the verbosity for level.
// Recognized levels are error, warning, info, debug and verbose.
func InitLogging(level string) error {
	if f := flag.Lookup("logtostderr"); f != nil {
		f.Value.Set("true")
	}
	var v string
	switch strings.ToLower(level) {
	case "error", "warning", "info", "":
		v = "0"
	case "debug":
		v = kVerboseDebug
	case "verbose":
		v = kVerboseVerbose
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	if f := flag.Lookup("v"); f != nil {
		return f.Value.Set(v)
	}
	return nil
}

func Initialize(args ...interface{}) (err error) {
	if len(args) < 1 {
		return fmt.Errorf("a string log level expected")
	}
	level, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("a string log level expected")
	}
	return InitLogging(level)
}

func Finalize() {
	glog.Flush()
}

type KeyValueBuffer struct {
	bytes.Buffer
	delimiter     byte
	pairDelimiter byte
}

func NewKVBufferForLog() *KeyValueBuffer {
	b := &KeyValueBuffer{
		delimiter:     '=',
		pairDelimiter: ',',
	}
	return b
}

var (
	logDataKeyOpCode    []byte = []byte("op")
	logDataKeyStatus    []byte = []byte("st")
	logDataKeyFileId    []byte = []byte("fid")
	logDataKeyTag       []byte = []byte("tag")
	logDataKeyPath      []byte = []byte("path")
	logDataKeyLength    []byte = []byte("len")
	logDataKeyLabelLen  []byte = []byte("llen")
	logDataKeyDataLen   []byte = []byte("dlen")
	logDataKeyErrorText []byte = []byte("m_err")
)

func (b *KeyValueBuffer) AddBytes(key []byte, value []byte) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.Write(value)
	return b
}

func (b *KeyValueBuffer) Add(key []byte, value string) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.WriteString(value)
	return b
}

func (b *KeyValueBuffer) AddInt64(key []byte, value int64) *KeyValueBuffer {
	return b.Add(key, strconv.FormatInt(value, 10))
}

func (b *KeyValueBuffer) AddUInt64(key []byte, value uint64) *KeyValueBuffer {
	return b.Add(key, strconv.FormatUint(value, 10))
}

func (b *KeyValueBuffer) AddOpCode(opcode fmt.Stringer) *KeyValueBuffer {
	return b.Add(logDataKeyOpCode, opcode.String())
}

func (b *KeyValueBuffer) AddStatus(st string) *KeyValueBuffer {
	return b.Add(logDataKeyStatus, st)
}

func (b *KeyValueBuffer) AddTag(tag string) *KeyValueBuffer {
	if tag != "" {
		b.Add(logDataKeyTag, tag)
	}
	return b
}

// AddPath logs the backing file of a disk message. Buffer messages have none.
func (b *KeyValueBuffer) AddPath(path string) *KeyValueBuffer {
	if path != "" {
		b.Add(logDataKeyPath, path)
	}
	return b
}

func (b *KeyValueBuffer) AddFileId(id uint64) *KeyValueBuffer {
	return b.AddUInt64(logDataKeyFileId, id)
}

func (b *KeyValueBuffer) AddLength(n int64) *KeyValueBuffer {
	return b.AddInt64(logDataKeyLength, n)
}

func (b *KeyValueBuffer) AddSectionLengths(labelLen, dataLen int64) *KeyValueBuffer {
	if labelLen >= 0 {
		b.AddInt64(logDataKeyLabelLen, labelLen)
	}
	if dataLen >= 0 {
		b.AddInt64(logDataKeyDataLen, dataLen)
	}
	return b
}

func (b *KeyValueBuffer) AddErrorText(text string) *KeyValueBuffer {
	if text != "" {
		b.Add(logDataKeyErrorText, text)
	}
	return b
}
