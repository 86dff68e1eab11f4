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

import "errors"

var (
	// ErrAlreadyRunning is returned by Start when the engine is already syncing.
	ErrAlreadyRunning = errors.New("blocksync: engine already running")

	// ErrBadLinkage is returned when a block's number or prev-hash does
	// not chain off the current tip.
	ErrBadLinkage = errors.New("blocksync: block does not link to tip")

	// ErrTxExecution is returned when any transaction in a block fails replay.
	ErrTxExecution = errors.New("blocksync: transaction execution failed")

	// ErrInsufficientQuorum is returned when a block carries fewer than
	// ceil(2n/3) valid votes from the current delegate set.
	ErrInsufficientQuorum = errors.New("blocksync: insufficient vote quorum")

	// ErrInvalidVote is returned when a vote's signer is not a current
	// delegate or its signature does not verify.
	ErrInvalidVote = errors.New("blocksync: invalid or unauthorized vote")
)
