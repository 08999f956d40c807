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
Package util implements some utility functions.
*/
package util

import (
	"encoding/binary"
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
)

const uuidEpoch = 122192928000000000 // UUID epoch (October 15, 1582)

// GetTimeFromUUIDv1 returns the creation time embedded in a version 1 UUID.
func GetTimeFromUUIDv1(id uuid.UUID) (tm time.Time, err error) {
	if id.Version() != uuid.V1 {
		err = fmt.Errorf("not v1 UUID")
		return
	}
	var buf [8]byte
	buf[0] = id[6] & 0xF
	buf[1] = id[7]
	buf[2] = id[4]
	buf[3] = id[5]
	copy(buf[4:], id[:4])

	timestamp := (binary.BigEndian.Uint64(buf[:]) - uuidEpoch) * 100
	tm = time.Unix(0, int64(timestamp))
	return
}

// GetTimeFromUUIDString parses s and returns the creation time of a version
// 1 UUID.
func GetTimeFromUUIDString(s string) (time.Time, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return time.Time{}, err
	}
	return GetTimeFromUUIDv1(id)
}
