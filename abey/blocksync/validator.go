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
	"github.com/abeychain/chainsync/common"
	"github.com/abeychain/chainsync/core/types"
	"github.com/abeychain/chainsync/log"
	"github.com/abeychain/chainsync/rlp"
)

// precommitPayload is the canonical, binary-stable encoding of a
// precommit vote (spec.md §6). All implementations must agree on this
// encoding byte-for-byte or nodes diverge on quorum verification.
type precommitPayload struct {
	Type        uint8
	Vote        types.VoteResult
	BlockHash   common.Hash
	BlockNumber uint64
	View        uint32
}

const precommitType uint8 = 1

// encodePrecommit builds the canonical payload a delegate signs over
// when casting a precommit vote for a block, mirroring the way
// consensus/minerva verifies PbftSign against a block's (hash, height)
// pair but made explicit and RLP-stable per spec.md §6.
func encodePrecommit(blockHash common.Hash, number uint64, view uint32) ([]byte, error) {
	return rlp.EncodeToBytes(precommitPayload{
		Type:        precommitType,
		Vote:        types.VoteAgree,
		BlockHash:   blockHash,
		BlockNumber: number,
		View:        view,
	})
}

// Validator runs validate_and_commit (spec.md §4.5): an ordered pass
// over a block that rejects on the first failing check and otherwise
// stages its mutations on overlays before committing them atomically.
type Validator struct {
	chain    ChainReader
	executor TxExecutor
	crypto   Crypto
	cfg      Config
}

// NewValidator returns a Validator wired to its external collaborators
// (spec.md §6: chain store, transaction executor, crypto).
func NewValidator(chain ChainReader, executor TxExecutor, crypto Crypto, cfg Config) *Validator {
	return &Validator{chain: chain, executor: executor, crypto: crypto, cfg: cfg}
}

// ValidateAndCommit runs the seven ordered checks of spec.md §4.5. The
// first failing check returns a non-nil error and leaves no persisted
// mutation (P5); on success the block's overlays are committed and the
// chain is appended.
func (v *Validator) ValidateAndCommit(block *types.Block, tip uint64) error {
	// 1. Linkage.
	current := v.chain.LatestBlock()
	if block.Number != tip+1 || block.PrevHash != current.Hash() {
		log.Debug("blocksync: linkage check failed", "number", block.Number, "want", tip+1, "prevHash", block.PrevHash, "tipHash", current.Hash())
		return ErrBadLinkage
	}

	// 2. Overlay. All subsequent mutations happen on these, never on the
	// live stores directly.
	accounts := v.chain.AccountState().Track()
	delegates := v.chain.DelegateState().Track()

	// 3. Transaction replay.
	results, err := v.executor.Execute(block.Transactions, accounts, delegates, false)
	if err != nil {
		log.Debug("blocksync: transaction execution error", "number", block.Number, "err", err)
		return ErrTxExecution
	}
	for _, res := range results {
		if !res.Success {
			log.Debug("blocksync: transaction failed", "number", block.Number)
			return ErrTxExecution
		}
	}

	// 4. Quorum. The delegate set is read from the overlay after replay
	// (spec.md §4.5 step 4, §9 "Delegate set source" — the spec text is
	// explicit that V is derived post-replay, so that is what is
	// implemented here).
	validators := delegates.Delegates()
	n := len(validators)
	quorum := (2*n + 2) / 3 // ceil(2n/3)
	if len(block.Votes) < quorum {
		log.Debug("blocksync: insufficient votes", "number", block.Number, "have", len(block.Votes), "want", quorum)
		return ErrInsufficientQuorum
	}

	// 5. Vote authenticity.
	payload, err := encodePrecommit(block.Hash(), block.Number, block.View)
	if err != nil {
		return err
	}
	addrs := make(map[common.Address]struct{}, n)
	for _, d := range validators {
		addrs[d.Address] = struct{}{}
	}

	// Duplicate signatures from the same delegate are deduplicated here
	// (spec.md §9 "Duplicate votes" — the source does not deduplicate,
	// which would let q copies of one signature satisfy quorum; that is
	// not reproduced, see DESIGN.md).
	agreed := make(map[common.Address]struct{}, len(block.Votes))
	for _, vote := range block.Votes {
		addr := v.crypto.H160(vote.PublicKey)
		if _, ok := addrs[addr]; !ok {
			log.Debug("blocksync: vote from non-delegate", "number", block.Number, "addr", addr)
			return ErrInvalidVote
		}
		if !v.crypto.Verify(payload, vote.Signature, vote.PublicKey) {
			log.Debug("blocksync: vote signature invalid", "number", block.Number, "addr", addr)
			return ErrInvalidVote
		}
		agreed[addr] = struct{}{}
	}
	if len(agreed) < quorum {
		log.Debug("blocksync: insufficient distinct votes", "number", block.Number, "have", len(agreed), "want", quorum)
		return ErrInsufficientQuorum
	}

	// 6. Reward.
	if reward := v.cfg.RewardSchedule(block.Number); reward != nil && reward.Sign() > 0 {
		accounts.AddBalance(block.Coinbase, reward)
	}

	// 7. Commit.
	if err := accounts.Commit(); err != nil {
		return err
	}
	if err := delegates.Commit(); err != nil {
		return err
	}
	return v.chain.Append(block)
}
