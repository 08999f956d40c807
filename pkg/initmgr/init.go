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

// Package initmgr brings up registered subsystems in weight order and tears
// them down in reverse.
package initmgr

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/golang/glog"
)

type IInitializer interface {
	Name() string
	Initialize(args ...interface{}) error
	Finalize()
}

// subsystem is one registration. up is set once Initialize succeeded and
// cleared by the first Finalize.
type subsystem struct {
	IInitializer
	weight int
	args   []interface{}
	up     bool
}

type manager struct {
	mtx        sync.Mutex
	subsystems []*subsystem
	started    bool
}

var mgr manager

func (m *manager) register(rc IInitializer, weight int, args []interface{}) {
	m.mtx.Lock()
	m.subsystems = append(m.subsystems, &subsystem{IInitializer: rc, weight: weight, args: args})
	m.mtx.Unlock()
}

func (m *manager) nextWeight() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.subsystems)
}

// start returns the name of the failing subsystem together with its error.
// Subsystems brought up before it are finalized again.
func (m *manager) start() (failed string, err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.started {
		return
	}
	m.started = true
	sort.SliceStable(m.subsystems, func(i, j int) bool {
		return m.subsystems[i].weight < m.subsystems[j].weight
	})

	for _, s := range m.subsystems {
		if err = s.Initialize(s.args...); err != nil {
			fmt.Fprintf(os.Stderr, "... [fail] initmgr.initialize %s\t (error: %s)\n", s.Name(), err)
			m.stopLocked()
			return s.Name(), err
		}
		s.up = true
		fmt.Fprintf(os.Stderr, "... [ok]   initmgr.initialize %s\n", s.Name())
	}
	return
}

func (m *manager) stop() {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.stopLocked()
}

func (m *manager) stopLocked() {
	for i := len(m.subsystems) - 1; i >= 0; i-- {
		if s := m.subsystems[i]; s.up {
			s.up = false
			fmt.Fprintf(os.Stderr, "... initmgr.finalize %s\n", s.Name())
			s.Finalize()
		}
	}
}

// Init initializes every registered subsystem. On the first failure the
// ones already up are finalized and the process exits.
func Init() {
	signal.Ignore(syscall.SIGPIPE)
	finalizeOnSignal(syscall.SIGTERM, syscall.SIGINT)

	if failed, err := mgr.start(); err != nil {
		glog.Errorf("initmgr: %s failed: %s", failed, err)
		delay := time.Second + time.Duration(rand.Int63n(int64(time.Second)))
		fmt.Fprintf(os.Stderr, "\n... Initialization FAILURE. Exit in %s ...\n\n", delay)
		time.Sleep(delay)
		os.Stderr.Sync()
		os.Exit(255)
	}
}

func finalizeOnSignal(sigs ...os.Signal) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, sigs...)
	go func() {
		sig := <-ch
		fmt.Fprintf(os.Stderr, "... signal %d (%s) received\n", sig, sig)
		Finalize()
		os.Stderr.Sync()
		os.Exit(0)
	}()
}

// Finalize tears down the subsystems that are up, last initialized first.
// Calling it again is a no-op.
func Finalize() {
	mgr.stop()
}

func Register(rc IInitializer, args ...interface{}) {
	mgr.register(rc, mgr.nextWeight(), args)
}

func RegisterWithFuncs(initializeFunc func(args ...interface{}) error, finalizeFunc func(), args ...interface{}) {
	Register(NewInitializer(initializeFunc, finalizeFunc), args...)
}

// RegisterWithWeight registers rc to be initialized before every subsystem
// of a higher weight.
func RegisterWithWeight(rc IInitializer, weight int, args ...interface{}) {
	mgr.register(rc, weight, args)
}

// Initializer adapts a pair of functions to IInitializer.
type Initializer struct {
	name           string
	InitializeFunc func(args ...interface{}) error
	FinalizeFunc   func()
}

func (i *Initializer) Name() string {
	return i.name
}

func (i *Initializer) Initialize(args ...interface{}) error {
	if i.InitializeFunc == nil {
		return nil
	}
	return i.InitializeFunc(args...)
}

func (i *Initializer) Finalize() {
	if i.FinalizeFunc != nil {
		i.FinalizeFunc()
	}
}

// NewInitializer names the initializer after the package of initializeFunc.
func NewInitializer(initializeFunc func(args ...interface{}) error, finalizeFunc func()) IInitializer {
	name := "unknown package"
	if fn := runtime.FuncForPC(reflect.ValueOf(initializeFunc).Pointer()); fn != nil {
		if full := fn.Name(); strings.LastIndex(full, ".") > 0 {
			name = full[:strings.LastIndex(full, ".")]
		}
	}
	return &Initializer{name: name, InitializeFunc: initializeFunc, FinalizeFunc: finalizeFunc}
}
