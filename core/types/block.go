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

package types

import (
	"math/big"

	"github.com/abeychain/chainsync/common"
)

// VoteResult is the outcome a delegate attaches to a precommit.
type VoteResult uint8

const (
	// VoteAgree is cast by a delegate that approves a block at a given view.
	VoteAgree VoteResult = iota
	// VoteReject is cast by a delegate that rejects a block at a given view.
	VoteReject
)

// Block is the unit of work the sync engine downloads, validates and
// commits. It carries exactly the fields the sync engine touches; the
// payload it replays (Transactions) and the fork-choice bookkeeping
// a full chain implementation would add beyond these fields belong to
// the chain store, not to the synced wire format.
type Block struct {
	Number       uint64
	PrevHash     common.Hash
	CachedHash   common.Hash
	Coinbase     common.Address
	View         uint32
	Transactions []*Transaction
	Votes        []*PrecommitVote
}

// Hash returns the block's content hash. A real chain implementation
// derives this from the RLP encoding of the header; the sync engine
// treats it as opaque and only compares it for linkage (spec step 1)
// and vote-payload construction (spec step 5).
func (b *Block) Hash() common.Hash {
	return b.CachedHash
}

// NumberU64 returns the block height.
func (b *Block) NumberU64() uint64 { return b.Number }

// Transaction is a minimal opaque transaction envelope. Execution
// semantics belong to the external transaction executor (spec.md §1,
// "Out of scope: transaction execution").
type Transaction struct {
	From  common.Address
	To    *common.Address
	Nonce uint64
	Data  []byte
}

// PrecommitVote is a single delegate's signed precommit for a block at
// a given height and view, named after the BFT vocabulary in spec.md's
// glossary (the teacher's equivalent is consensus/minerva's PbftSign).
type PrecommitVote struct {
	BlockHash   common.Hash
	BlockNumber uint64
	View        uint32
	Vote        VoteResult
	Signature   []byte
	PublicKey   []byte
}

// Delegate is an account authorized to produce and vote on blocks in
// the current epoch (spec.md glossary "Delegate / Validator"); the
// teacher's equivalent is consensus/election's CommitteeMember.
type Delegate struct {
	Address   common.Address
	PublicKey []byte
}

// baseBlockReward is the fixed per-block emission amount (spec.md §8
// scenario 6 uses 50 as the literal example).
var baseBlockReward = big.NewInt(50)

// BlockReward returns the emission schedule amount for a given height.
// A production chain derives this from params.ChainConfig the way
// core/block_validator.go derives snail-block rewards; this is wired
// through Config.RewardSchedule so callers can swap in the real
// emission curve without touching the Validator.
func BlockReward(number uint64) *big.Int {
	if number == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Set(baseBlockReward)
}
