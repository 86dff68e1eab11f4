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
	"math/rand"
	"time"

	"github.com/abeychain/chainsync/log"
)

// downloader drains idle peers and issues GetBlock requests, tracking
// in-flight deadlines and reissuing on timeout (spec.md §4.2). It is
// driven by a time.Ticker the way abey/sync.go's syncer() drives
// forceSync - a single loop goroutine, no internal locking beyond what
// Registry already provides.
type downloader struct {
	registry *Registry
	peers    PeerSet
	cfg      Config

	quit chan struct{}
	done chan struct{}
}

func newDownloader(registry *Registry, peers PeerSet, cfg Config) *downloader {
	return &downloader{
		registry: registry,
		peers:    peers,
		cfg:      cfg,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (d *downloader) start() {
	go d.loop()
}

// stop requests the loop to exit and waits until it has. The loop
// checks quit only between ticks, so a tick already in progress,
// including its sends, runs to completion first.
func (d *downloader) stop() {
	close(d.quit)
	<-d.done
}

func (d *downloader) loop() {
	defer close(d.done)

	ticker := time.NewTicker(d.cfg.DownloaderPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.tick(time.Now())
		case <-d.quit:
			return
		}
	}
}

// tick runs one Downloader cycle (spec.md §4.2).
func (d *downloader) tick(now time.Time) {
	channels := d.peers.IdleChannels()
	if len(channels) > d.cfg.MaxBatchSize {
		rand.Shuffle(len(channels), func(i, j int) {
			channels[i], channels[j] = channels[j], channels[i]
		})
		channels = channels[:d.cfg.MaxBatchSize]
	}

	if d.registry.InFlightCount() > d.cfg.MaxBatchSize {
		// Backpressure: too much already outstanding, let timeouts drain first.
		return
	}
	d.registry.ReapTimeouts(now, d.cfg.MaxDownloadTime)

	for _, ch := range channels {
		if d.registry.InFlightCount() >= d.cfg.MaxBatchSize {
			// Keep in_flight within MaxBatchSize after the tick (I3).
			break
		}
		n, ok := d.registry.NextToRequest()
		if !ok {
			break
		}

		start := time.Now()
		err := ch.Send(GetBlockMessage{Number: n})
		requestTimer.UpdateSince(start)

		if err != nil {
			// Best-effort: dispatch failure is not retried this tick
			// (spec.md §4.2 step 3). NextToRequest already popped n out
			// of to_download, so it must go straight back in or it would
			// silently vanish from every work set (violating I2).
			sendFailedMeter.Mark(1)
			log.Debug("blocksync: send failed, requeueing", "number", n, "peer", ch.ID(), "err", err)
			d.registry.Reinsert(n)
			continue
		}

		requestMeter.Mark(1)
		d.registry.MarkInFlight(n, now)
	}
}
