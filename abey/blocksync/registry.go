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

import (
	"sync"
	"time"

	"github.com/abeychain/chainsync/core/types"
	"gopkg.in/karalabe/cookiejar.v2/collections/prque"
)

// Registry is the engine's sole mutable state (spec.md §3-4.1): the set
// of heights still to request, the set currently in flight, the set of
// received-but-unvalidated blocks, and the exclusive target height.
// Every mutation happens under one mutex; the Registry never blocks on
// anything but that mutex, matching the single coarse lock the teacher
// favors for moderate-cardinality in-memory state in
// consensus/election.Election and abey.ProtocolManager.
type Registry struct {
	lock sync.Mutex

	toDownload *prque.Prque            // heights not yet requested, ascending
	inFlight   map[uint64]time.Time    // height -> dispatch time
	toProcess  *prque.Prque            // received blocks awaiting validation, ascending by number

	target uint64 // exclusive upper bound
}

// NewRegistry returns an empty Registry. Call Init before using it.
func NewRegistry() *Registry {
	return &Registry{
		toDownload: prque.New(),
		inFlight:   make(map[uint64]time.Time),
		toProcess:  prque.New(),
	}
}

// Init clears all three work sets and repopulates to_download with
// every height in [tip+1, target) (spec.md §4.1).
func (r *Registry) Init(tip, target uint64) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.toDownload.Reset()
	r.toProcess.Reset()
	r.inFlight = make(map[uint64]time.Time)
	r.target = target

	for n := tip + 1; n < target; n++ {
		r.toDownload.Push(n, -float32(n))
	}
	r.updateGauges()
}

// Target returns the exclusive upper bound most recently set by Init.
func (r *Registry) Target() uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.target
}

// InFlightCount reports the number of outstanding requests (spec.md I3).
func (r *Registry) InFlightCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.inFlight)
}

// NextToRequest removes and returns the smallest height still awaiting
// a request, or ok=false if to_download is empty.
func (r *Registry) NextToRequest() (n uint64, ok bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.toDownload.Empty() {
		return 0, false
	}
	v, _ := r.toDownload.Pop()
	r.updateGauges()
	return v.(uint64), true
}

// MarkInFlight records that a request for height n was dispatched at now.
func (r *Registry) MarkInFlight(n uint64, now time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.inFlight[n] = now
	r.updateGauges()
}

// ReapTimeouts moves every in-flight height whose request is older than
// maxAge back into to_download and returns the reaped heights.
//
// spec.md §9 notes the source's timeout branch has an inverted
// comparison (it requeues entries that are NOT yet expired). That bug
// is intentionally not reproduced: this requeues entries whose age
// exceeds maxAge, which is what spec.md's invariants (P3, the timeout
// reissue scenario) require.
func (r *Registry) ReapTimeouts(now time.Time, maxAge time.Duration) []uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()

	var reaped []uint64
	for n, dispatched := range r.inFlight {
		if now.Sub(dispatched) > maxAge {
			delete(r.inFlight, n)
			r.toDownload.Push(n, -float32(n))
			reaped = append(reaped, n)
		}
	}
	if len(reaped) > 0 {
		timeoutMeter.Mark(int64(len(reaped)))
		r.updateGauges()
	}
	return reaped
}

// Receive removes block.Number from in_flight and adds the block to
// to_process (spec.md §4.1). It is the Inbox's sole write path into
// the Registry.
func (r *Registry) Receive(block *types.Block) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.inFlight, block.Number)
	r.toProcess.Push(block, -float32(block.Number))
	r.updateGauges()
}

// TakeNext discards any to_process entry with number <= tip, then
// removes and returns the entry at tip+1 if it is the least-numbered
// one remaining; otherwise it returns ok=false and leaves to_process
// untouched (spec.md §4.1, I5, P4).
func (r *Registry) TakeNext(tip uint64) (block *types.Block, ok bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for {
		if r.toProcess.Empty() {
			return nil, false
		}
		v, prio := r.toProcess.Pop()
		b := v.(*types.Block)

		if b.Number <= tip {
			// Stale: arrived for a height already committed. Drop it.
			continue
		}
		if b.Number == tip+1 {
			r.updateGauges()
			return b, true
		}
		// Not yet committable: put it back and report nothing ready.
		r.toProcess.Push(b, prio)
		r.updateGauges()
		return nil, false
	}
}

// Reinsert moves height n back into to_download after a failed commit
// (spec.md §4.1, §4.4). It also drops n from in_flight, since a height
// can be in at most one work set at a time (I1).
func (r *Registry) Reinsert(n uint64) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.inFlight, n)
	r.toDownload.Push(n, -float32(n))
	r.updateGauges()
}

// updateGauges must be called with r.lock held.
func (r *Registry) updateGauges() {
	toDownloadGauge.Update(int64(r.toDownload.Size()))
	inFlightGauge.Update(int64(len(r.inFlight)))
	toProcessGauge.Update(int64(r.toProcess.Size()))
}
