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
	"sync/atomic"

	"github.com/abeychain/chainsync/event"
	"github.com/abeychain/chainsync/log"
)

// StartEvent is posted when a sync cycle begins.
type StartEvent struct{ Target uint64 }

// DoneEvent is posted when a sync cycle ends, whether the local tip
// reached target-1 or Stop released Start early.
type DoneEvent struct{ Tip uint64 }

// Engine is the explicit, caller-owned handle for the sync engine
// (spec.md §9's redesign note: a value created once at startup and
// passed around, not a package-level singleton like the source's
// lazily-constructed global). A single Engine is a singleton by
// construction: callers keep one instance, not by static storage.
type Engine struct {
	registry  *Registry
	chain     ChainReader
	validator *Validator
	peers     PeerSet
	cfg       Config
	eventMux  *event.TypeMux

	mu         sync.Mutex
	running    int32 // atomic; 1 while a sync cycle is in progress
	downloader *downloader
	processor  *processor
	inbox      *inbox
	done       chan struct{}
}

func (e *Engine) isRunning() bool { return atomic.LoadInt32(&e.running) == 1 }

// NewEngine wires together the Registry, Downloader, Processor and
// Validator against their external collaborators (spec.md §6).
func NewEngine(chain ChainReader, peers PeerSet, executor TxExecutor, crypto Crypto, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		registry:  NewRegistry(),
		chain:     chain,
		validator: NewValidator(chain, executor, crypto, cfg),
		peers:     peers,
		cfg:       cfg,
		eventMux:  new(event.TypeMux),
	}
}

// IsRunning reports whether the engine is mid-sync.
func (e *Engine) IsRunning() bool {
	return e.isRunning()
}

// Start brings the local chain up to target-1 (target is exclusive),
// blocking the caller until that height is committed or Stop is called
// (spec.md §4.6). It returns ErrAlreadyRunning if a sync is already in
// progress.
//
// Restart is allowed (spec.md L2): once a prior Start has returned,
// calling Start again with a higher target re-initializes the same
// Registry from the new tip and runs a fresh Downloader/Processor pair.
func (e *Engine) Start(target uint64) error {
	e.mu.Lock()
	if e.isRunning() {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	atomic.StoreInt32(&e.running, 1)
	e.done = make(chan struct{})
	e.registry.Init(e.chain.LatestNumber(), target)

	latch := make(chan struct{})
	e.downloader = newDownloader(e.registry, e.peers, e.cfg)
	e.processor = newProcessor(e.registry, e.chain, e.validator, e.cfg, func() {
		// onComplete fires from the Processor's own goroutine; signal
		// exactly once even if a straggler tick fires again before Stop
		// has torn the processor down.
		select {
		case <-latch:
		default:
			close(latch)
		}
	})
	e.inbox = newInbox(e.registry, e.isRunning)
	downloaderHandle := e.downloader
	processorHandle := e.processor
	e.mu.Unlock()

	e.eventMux.Post(StartEvent{Target: target})
	downloaderHandle.start()
	processorHandle.start()

	// Block until the Processor signals completion or an external Stop
	// releases e.done. A spurious wakeup here cannot happen: latch is
	// only ever closed by onComplete above, and e.done only by Stop.
	select {
	case <-latch:
	case <-e.done:
	}

	// Both loops check quit only between ticks and each stop waits for
	// its loop to exit, so the Downloader and the Processor both finish
	// whatever tick is already in flight; a commit in progress when Stop
	// is called always finishes before Start returns (spec.md §9
	// "Cancellation during mid-validation commit").
	downloaderHandle.stop()
	processorHandle.stop()

	e.mu.Lock()
	atomic.StoreInt32(&e.running, 0)
	e.mu.Unlock()

	e.eventMux.Post(DoneEvent{Tip: e.chain.LatestNumber()})
	log.Info("blocksync: sync complete", "tip", e.chain.LatestNumber(), "target", target)
	return nil
}

// Stop releases Start's completion latch. Repeated calls after the
// first are a no-op (spec.md L1).
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning() || e.done == nil {
		return
	}
	select {
	case <-e.done:
		// already stopped
	default:
		close(e.done)
	}
}

// OnMessage delivers a decoded peer message to the running engine's
// Inbox (spec.md §4.3). It is safe to call from a peer's own goroutine;
// messages received while no sync is in progress are Unhandled so the
// caller's protocol dispatcher can fall through to other handlers.
func (e *Engine) OnMessage(ch Channel, msg Message) Disposition {
	e.mu.Lock()
	ib := e.inbox
	e.mu.Unlock()

	if ib == nil {
		return Unhandled
	}
	return ib.OnMessage(ch, msg)
}

// SubscribeEvents lets callers observe Start/Done notifications, the
// way abey/downloader consumers subscribe to StartEvent/DoneEvent via
// an event.TypeMux.
func (e *Engine) SubscribeEvents() *event.TypeMuxSubscription {
	return e.eventMux.Subscribe(StartEvent{}, DoneEvent{})
}
