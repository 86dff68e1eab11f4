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
	"errors"
	"testing"
	"time"
)

// TestDownloaderTickRequestsFromIdleChannels exercises spec.md §4.2
// step 2: one GetBlock request per idle channel, draining to_download.
func TestDownloaderTickRequestsFromIdleChannels(t *testing.T) {
	r := NewRegistry()
	r.Init(0, 4) // heights 1,2,3 to download

	ch1 := &fakeChannel{id: "p1"}
	ch2 := &fakeChannel{id: "p2"}
	d := newDownloader(r, &fakePeerSet{channels: []Channel{ch1, ch2}}, DefaultConfig)

	d.tick(time.Now())

	if len(ch1.sent) != 1 || len(ch2.sent) != 1 {
		t.Fatalf("ch1.sent=%v ch2.sent=%v, want exactly one GetBlockMessage each", ch1.sent, ch2.sent)
	}
	if got := r.InFlightCount(); got != 2 {
		t.Fatalf("InFlightCount() = %d, want 2", got)
	}
}

// TestDownloaderTickRequeuesOnSendFailure exercises spec.md §4.2 step
// 3: a height popped for a request that fails to send must not vanish
// from every work set (I2).
func TestDownloaderTickRequeuesOnSendFailure(t *testing.T) {
	r := NewRegistry()
	r.Init(0, 2) // height 1 only

	ch := &fakeChannel{id: "p1", SendErr: errors.New("write failed")}
	d := newDownloader(r, &fakePeerSet{channels: []Channel{ch}}, DefaultConfig)

	d.tick(time.Now())

	if got := r.InFlightCount(); got != 0 {
		t.Fatalf("InFlightCount() after failed send = %d, want 0", got)
	}
	n, ok := r.NextToRequest()
	if !ok || n != 1 {
		t.Fatalf("NextToRequest() after failed send = (%d, %v), want (1, true)", n, ok)
	}
}

// TestDownloaderTickBackpressure exercises spec.md §4.2's implicit
// bound (I3): when in_flight already exceeds MaxBatchSize, a tick
// issues no new requests.
func TestDownloaderTickBackpressure(t *testing.T) {
	r := NewRegistry()
	r.Init(0, 100)

	cfg := DefaultConfig
	cfg.MaxBatchSize = 2
	for n := uint64(1); n <= 3; n++ {
		r.MarkInFlight(n, time.Now())
	}

	ch := &fakeChannel{id: "p1"}
	d := newDownloader(r, &fakePeerSet{channels: []Channel{ch}}, cfg)
	d.tick(time.Now())

	if len(ch.sent) != 0 {
		t.Fatalf("sent = %v, want none while in-flight exceeds MaxBatchSize", ch.sent)
	}
}

// TestDownloaderTickCapsChannelsToMaxBatchSize exercises spec.md §4.2
// step 1: no more than MaxBatchSize channels are drained in one tick.
func TestDownloaderTickCapsChannelsToMaxBatchSize(t *testing.T) {
	r := NewRegistry()
	r.Init(0, 10) // heights 1..9

	cfg := DefaultConfig
	cfg.MaxBatchSize = 3

	channels := make([]Channel, 5)
	fakes := make([]*fakeChannel, 5)
	for i := range channels {
		fakes[i] = &fakeChannel{id: string(rune('a' + i))}
		channels[i] = fakes[i]
	}
	d := newDownloader(r, &fakePeerSet{channels: channels}, cfg)
	d.tick(time.Now())

	total := 0
	for _, f := range fakes {
		total += len(f.sent)
	}
	if total != cfg.MaxBatchSize {
		t.Fatalf("total requests sent = %d, want %d (MaxBatchSize cap)", total, cfg.MaxBatchSize)
	}
}

// TestDownloaderTickReapsBeforeRequesting exercises that a tick reaps
// expired in-flight heights before issuing new requests, so a timed
// out height becomes requestable again within the same tick.
func TestDownloaderTickReapsBeforeRequesting(t *testing.T) {
	r := NewRegistry()
	r.Init(0, 2) // height 1 requested, then goes in-flight below

	r.NextToRequest()
	r.MarkInFlight(1, time.Now().Add(-time.Hour))

	cfg := DefaultConfig
	cfg.MaxDownloadTime = time.Minute

	ch := &fakeChannel{id: "p1"}
	d := newDownloader(r, &fakePeerSet{channels: []Channel{ch}}, cfg)
	d.tick(time.Now())

	if len(ch.sent) != 1 {
		t.Fatalf("sent = %v, want height 1 reissued after reap", ch.sent)
	}
}
