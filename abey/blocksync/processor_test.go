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

package blocksync

import "testing"

// TestProcessorTickCommitsNextBlock exercises spec.md §4.4 steps 2-3:
// a valid block at tip+1 is committed and the tip advances.
func TestProcessorTickCommitsNextBlock(t *testing.T) {
	keys := newFakeDelegates(4)
	chain := newFakeChain(genesis(), delegateSet(keys))
	r := NewRegistry()
	r.Init(0, 2)

	block := newSignedBlock(chain.LatestBlock(), keys)
	r.Receive(block)

	v := NewValidator(chain, &fakeExecutor{}, newFakeCrypto(keys), DefaultConfig)
	p := newProcessor(r, chain, v, DefaultConfig, func() {})

	if done := p.tick(); !done {
		t.Fatalf("tick() = false, want true (target reached)")
	}
	if got := chain.LatestNumber(); got != 1 {
		t.Fatalf("LatestNumber() = %d, want 1", got)
	}
}

// TestProcessorTickReachesTargetWithoutTakingNext exercises spec.md
// §4.4 step 1: once tip+1 == target, no block needs to be taken.
func TestProcessorTickReachesTargetWithoutTakingNext(t *testing.T) {
	keys := newFakeDelegates(4)
	chain := newFakeChain(genesis(), delegateSet(keys))
	r := NewRegistry()
	r.Init(0, 1) // target already equals tip+1

	v := NewValidator(chain, &fakeExecutor{}, newFakeCrypto(keys), DefaultConfig)
	p := newProcessor(r, chain, v, DefaultConfig, func() {})

	if done := p.tick(); !done {
		t.Fatalf("tick() = false, want true (already at target)")
	}
}

// TestProcessorTickRequeuesOnRejection exercises spec.md §4.4 step 4:
// a block that fails validation is not silently dropped, it goes back
// into to_download for redownload.
func TestProcessorTickRequeuesOnRejection(t *testing.T) {
	keys := newFakeDelegates(4)
	chain := newFakeChain(genesis(), delegateSet(keys))
	r := NewRegistry()
	r.Init(0, 2)

	block := newSignedBlock(chain.LatestBlock(), keys)
	block.Votes = nil // fails quorum check
	r.Receive(block)

	v := NewValidator(chain, &fakeExecutor{}, newFakeCrypto(keys), DefaultConfig)
	p := newProcessor(r, chain, v, DefaultConfig, func() {})

	if done := p.tick(); done {
		t.Fatalf("tick() = true, want false (block rejected)")
	}
	if got := chain.LatestNumber(); got != 0 {
		t.Fatalf("LatestNumber() = %d, want 0 (unchanged after rejection)", got)
	}
	n, ok := r.NextToRequest()
	if !ok || n != 1 {
		t.Fatalf("NextToRequest() after rejection = (%d, %v), want (1, true)", n, ok)
	}
}

// TestProcessorTickNoBlockAvailable exercises the case where to_process
// has nothing committable yet.
func TestProcessorTickNoBlockAvailable(t *testing.T) {
	keys := newFakeDelegates(4)
	chain := newFakeChain(genesis(), delegateSet(keys))
	r := NewRegistry()
	r.Init(0, 5)

	v := NewValidator(chain, &fakeExecutor{}, newFakeCrypto(keys), DefaultConfig)
	p := newProcessor(r, chain, v, DefaultConfig, func() {})

	if done := p.tick(); done {
		t.Fatalf("tick() = true, want false (nothing to process)")
	}
}
