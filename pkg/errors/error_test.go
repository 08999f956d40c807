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
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassMatching(t *testing.T) {
	detailed := ErrIncomplete.Newf("label size is incompletely received")
	wrapped := fmt.Errorf("probe: %w", detailed)

	if !errors.Is(wrapped, ErrIncomplete) {
		t.Errorf("expected %v to match ErrIncomplete", wrapped)
	}
	if errors.Is(wrapped, ErrMismatch) {
		t.Errorf("%v should not match ErrMismatch", wrapped)
	}
	if detailed.ErrNo() != KErrIncomplete {
		t.Errorf("wrong errno %d", detailed.ErrNo())
	}
	if detailed.What() != "label size is incompletely received" {
		t.Errorf("wrong description %q", detailed.What())
	}
}
