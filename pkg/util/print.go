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

package util

import (
	"fmt"
	"io"
)

func ToPrintableString(b []byte) string {
	buf := make([]byte, len(b))
	for i, c := range b {
		if c < 32 || c > 126 {
			buf[i] = '.'
		} else {
			buf[i] = c
		}
	}
	return string(buf)
}

func ToPrintableAndHexString(data []byte) string {
	return fmt.Sprintf("%s [%X]", ToPrintableString(data), data)
}

// HexDump writes data to w, 16 bytes a row: the offset, the bytes in hex
// and their printable form.
func HexDump(w io.Writer, data []byte) {
	fmt.Fprintf(w, "%9s ", "")
	for i := 0; i < 16; i++ {
		fmt.Fprintf(w, "%2X ", i)
	}
	fmt.Fprint(w, "\n")

	for start := 0; start < len(data); start += 16 {
		end := start + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(w, "%09X ", start)
		for j := start; j < end; j++ {
			fmt.Fprintf(w, "%02X ", data[j])
		}
		for j := end; j < start+16; j++ {
			fmt.Fprint(w, "   ")
		}
		fmt.Fprintf(w, " %s\n", ToPrintableString(data[start:end]))
	}
}
