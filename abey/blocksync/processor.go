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
	"time"

	"github.com/abeychain/chainsync/log"
)

// processor pulls the next-in-order block from the Registry, validates
// and commits it, and advances the local tip (spec.md §4.4). Only one
// block is processed per tick, bounding the time spent holding
// scheduler resources and interleaving validation with download
// progress, exactly as abey/sync.go's syncer() interleaves its own
// periodic work.
type processor struct {
	registry  *Registry
	chain     ChainReader
	validator *Validator
	cfg       Config

	onComplete func()

	quit chan struct{}
	done chan struct{}
}

func newProcessor(registry *Registry, chain ChainReader, validator *Validator, cfg Config, onComplete func()) *processor {
	return &processor{
		registry:   registry,
		chain:      chain,
		validator:  validator,
		cfg:        cfg,
		onComplete: onComplete,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (p *processor) start() {
	go p.loop()
}

func (p *processor) stop() {
	close(p.quit)
	<-p.done
}

func (p *processor) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.cfg.ProcessorPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if p.tick() {
				p.onComplete()
			}
		case <-p.quit:
			return
		}
	}
}

// tick runs one Processor cycle and reports whether the target height
// has been reached (spec.md §4.4 step 1).
func (p *processor) tick() bool {
	tip := p.chain.LatestNumber()
	if tip+1 == p.registry.Target() {
		return true
	}

	block, ok := p.registry.TakeNext(tip)
	if !ok {
		return false
	}

	start := time.Now()
	err := p.validator.ValidateAndCommit(block, tip)
	validationTimer.UpdateSince(start)

	if err != nil {
		rejectMeter.Mark(1)
		log.Debug("blocksync: block rejected, requeueing height", "number", block.Number, "err", err)
		p.registry.Reinsert(block.Number)
		return false
	}

	commitMeter.Mark(1)
	log.Info("blocksync: committed block", "number", block.Number)
	return block.Number+1 == p.registry.Target()
}
