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
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"imaged/pkg/errors"
)

// FileIdAllocator issues the numeric file names of disk backed messages and
// recycles them once released. Released ids are reused before new ones are
// minted, last released first.
type FileIdAllocator struct {
	mtx    sync.Mutex
	dir    string
	free   []uint64
	inUse  map[uint64]struct{}
	nextId uint64
}

var (
	defaultMtx       sync.Mutex
	defaultAllocator *FileIdAllocator
)

func NewFileIdAllocator(dir string) *FileIdAllocator {
	return &FileIdAllocator{
		dir:   filepath.Clean(dir),
		inUse: make(map[uint64]struct{}),
	}
}

// InitDefaultAllocator sets up the process wide allocator used by New. It
// lives until the process exits.
func InitDefaultAllocator(dir string) *FileIdAllocator {
	defaultMtx.Lock()
	defer defaultMtx.Unlock()
	defaultAllocator = NewFileIdAllocator(dir)
	return defaultAllocator
}

func DefaultAllocator() *FileIdAllocator {
	defaultMtx.Lock()
	defer defaultMtx.Unlock()
	return defaultAllocator
}

func (a *FileIdAllocator) Dir() string {
	return a.dir
}

func (a *FileIdAllocator) pathOf(id uint64) string {
	return a.dir + string(filepath.Separator) + strconv.FormatUint(id, 10)
}

// ReservePath returns the path for a free file id. The id stays in use until
// ReleasePath is called with the same path.
func (a *FileIdAllocator) ReservePath() (string, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	var id uint64
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if a.nextId == math.MaxUint64 {
			return "", errors.ErrResourceExhausted.Newf("no message file id left in %s", a.dir)
		}
		id = a.nextId
		a.nextId++
	}
	a.inUse[id] = struct{}{}
	return a.pathOf(id), nil
}

// ReleasePath returns the id of path to the free pool. A path this allocator
// did not issue is an invariant violation and aborts the process.
func (a *FileIdAllocator) ReleasePath(path string) {
	id, ok := a.parseId(path)
	if !ok {
		abort("msgfile release: failed to extract file id from %s", path)
		return
	}

	a.mtx.Lock()
	_, found := a.inUse[id]
	if found {
		delete(a.inUse, id)
		a.free = append(a.free, id)
	}
	a.mtx.Unlock()

	if !found {
		abort("msgfile release: file id %d of %s is not in use", id, path)
	}
}

func (a *FileIdAllocator) parseId(path string) (id uint64, ok bool) {
	prefix := a.dir + string(filepath.Separator)
	if !strings.HasPrefix(path, prefix) {
		return
	}
	var err error
	if id, err = strconv.ParseUint(path[len(prefix):], 10, 64); err != nil {
		return
	}
	ok = true
	return
}

// NumInUse returns the number of ids currently backing a message.
func (a *FileIdAllocator) NumInUse() int {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return len(a.inUse)
}
