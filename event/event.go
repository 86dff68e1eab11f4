// Copyright 2018 The AbeyChain Authors
// This file is part of the abey library.
//
// The abey library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The abey library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the abey library. If not, see <http://www.gnu.org/licenses/>.

// Package event is a minimal adaptation of the upstream TypeMux: a
// type-keyed pub/sub bus subscribers use to observe lifecycle
// notifications (e.g. blocksync's StartEvent/DoneEvent) without the
// publisher holding direct references to its listeners.
package event

import (
	"errors"
	"reflect"
	"sync"
)

// ErrMuxClosed is returned by Post once Stop has been called.
var ErrMuxClosed = errors.New("event: mux closed")

// TypeMux dispatches posted values to subscribers registered for that
// value's concrete type.
type TypeMux struct {
	mu     sync.RWMutex
	subm   map[reflect.Type][]*TypeMuxSubscription
	stopped bool
}

// Subscribe registers a subscription for every concrete type in types.
// Duplicate types are subscribed more than once, matching upstream's
// behavior (each registration yields its own delivery).
func (mux *TypeMux) Subscribe(types ...interface{}) *TypeMuxSubscription {
	sub := newSub(mux)

	mux.mu.Lock()
	defer mux.mu.Unlock()

	if mux.stopped {
		close(sub.postC)
		return sub
	}
	if mux.subm == nil {
		mux.subm = make(map[reflect.Type][]*TypeMuxSubscription)
	}
	for _, t := range types {
		rtyp := reflect.TypeOf(t)
		mux.subm[rtyp] = append(mux.subm[rtyp], sub)
	}
	return sub
}

// Post delivers ev to every subscriber registered for ev's concrete
// type. Each subscription has its own 16-slot buffered channel; Post
// blocks on a subscriber whose buffer is full until it reads or
// unsubscribes.
func (mux *TypeMux) Post(ev interface{}) error {
	rtyp := reflect.TypeOf(ev)

	mux.mu.RLock()
	if mux.stopped {
		mux.mu.RUnlock()
		return ErrMuxClosed
	}
	subs := mux.subm[rtyp]
	mux.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(ev)
	}
	return nil
}

// Stop closes every subscription and prevents further Posts.
func (mux *TypeMux) Stop() {
	mux.mu.Lock()
	defer mux.mu.Unlock()

	if mux.stopped {
		return
	}
	mux.stopped = true
	for _, subs := range mux.subm {
		for _, sub := range subs {
			sub.closewait()
		}
	}
	mux.subm = nil
}

func (mux *TypeMux) del(s *TypeMuxSubscription) {
	mux.mu.Lock()
	defer mux.mu.Unlock()

	for rtyp, subs := range mux.subm {
		for i, sub := range subs {
			if sub == s {
				mux.subm[rtyp] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// TypeMuxSubscription is the handle Subscribe returns; callers read
// delivered events from Chan and call Unsubscribe when done.
type TypeMuxSubscription struct {
	mux     *TypeMux
	postC   chan interface{}
	once    sync.Once
	unsubC  chan struct{}
}

func newSub(mux *TypeMux) *TypeMuxSubscription {
	return &TypeMuxSubscription{
		mux:    mux,
		postC:  make(chan interface{}, 16),
		unsubC: make(chan struct{}),
	}
}

func (s *TypeMuxSubscription) deliver(ev interface{}) {
	select {
	case s.postC <- ev:
	case <-s.unsubC:
	}
}

// Chan returns the channel events are delivered on. It is closed once
// Unsubscribe is called or the mux is stopped.
func (s *TypeMuxSubscription) Chan() <-chan interface{} { return s.postC }

// Unsubscribe removes the subscription from its mux and closes Chan.
func (s *TypeMuxSubscription) Unsubscribe() {
	s.mux.del(s)
	s.closewait()
}

func (s *TypeMuxSubscription) closewait() {
	s.once.Do(func() {
		close(s.unsubC)
		close(s.postC)
	})
}
