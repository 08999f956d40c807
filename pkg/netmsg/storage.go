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
	"os"

	"imaged/pkg/membuf"
)

// Storage is the backend a message is marshalled into. *os.File and
// *membuf.File both satisfy it.
type Storage interface {
	io.ReadWriteSeeker
	io.Closer
	Truncate(size int64) error
}

const kMessageFileMode os.FileMode = 0660

// openDiskStorage creates path empty. The descriptor is close-on-exec, which
// os.OpenFile always requests.
func openDiskStorage(path string) (Storage, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, kMessageFileMode)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func openBufferStorage() Storage {
	return membuf.Open()
}

// readUpTo reads until p is full or the end of storage is reached. Reaching
// the end early is reported as a short count, not an error.
func readUpTo(r io.Reader, p []byte) (int, error) {
	n, err := io.ReadFull(r, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}
