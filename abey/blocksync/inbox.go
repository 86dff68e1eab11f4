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

import "github.com/abeychain/chainsync/log"

// inbox is the single entry point for decoded peer messages (spec.md
// §4.3). It never validates blocks — misformed or adversarial blocks
// may enter to_process and are rejected later by the Validator.
type inbox struct {
	registry *Registry
	running  func() bool
}

func newInbox(registry *Registry, running func() bool) *inbox {
	return &inbox{registry: registry, running: running}
}

// OnMessage files an inbound Block message into the Registry. Any
// other message is either acted on (none, currently) or ignored.
func (ib *inbox) OnMessage(ch Channel, msg Message) Disposition {
	if !ib.running() {
		return Unhandled
	}

	switch m := msg.(type) {
	case BlockMessage:
		if m.Block == nil {
			log.Debug("blocksync: dropping nil block payload", "peer", ch.ID())
			return Handled
		}
		blockInMeter.Mark(1)
		ib.registry.Receive(m.Block)
		return Handled

	case BlockHeaderMessage:
		// Reserved for future header-first sync (spec.md §4.3); accepted
		// but not acted upon.
		return Handled

	default:
		return Unhandled
	}
}
