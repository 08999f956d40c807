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

package errors

import (
	"fmt"
)

const (
	KErrInvalidArgument uint32 = iota + 1
	KErrResourceExhausted
	KErrIncomplete
	KErrMismatch
	KErrClosed
	KErrIO
)

var (
	ErrInvalidArgument   = &Error{what: "invalid argument", errno: KErrInvalidArgument}
	ErrResourceExhausted = &Error{what: "resource exhausted", errno: KErrResourceExhausted}
	ErrIncomplete        = &Error{what: "incomplete", errno: KErrIncomplete}
	ErrMismatch          = &Error{what: "mismatch", errno: KErrMismatch}
	ErrClosed            = &Error{what: "closed", errno: KErrClosed}
	ErrIO                = &Error{what: "i/o error", errno: KErrIO}
)

type Error struct {
	what  string
	errno uint32
}

func NewError(what string, errno uint32) *Error {
	return &Error{what: what, errno: errno}
}

func (e *Error) Error() string {
	return fmt.Sprintf("error: %s (%d) ", e.what, e.errno)
}

func (e *Error) ErrNo() uint32 {
	return e.errno
}

// Is reports whether target carries the same errno, so a detailed error made
// with NewError matches the package sentinel of its class.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.errno == e.errno
	}
	return false
}

// Newf returns an error of the same class as e with a detailed description.
func (e *Error) Newf(format string, args ...interface{}) *Error {
	return &Error{what: fmt.Sprintf(format, args...), errno: e.errno}
}

// What returns the description without the errno decoration.
func (e *Error) What() string {
	return e.what
}
