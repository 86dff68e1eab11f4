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
	"math/big"

	"github.com/abeychain/chainsync/common"
	"github.com/abeychain/chainsync/core/types"
)

// ChainReader is the chain/state store collaborator. It is out of
// scope for this package (spec.md §1) beyond the narrow read/append
// surface the engine needs.
type ChainReader interface {
	LatestNumber() uint64
	LatestBlock() *types.Block
	Append(block *types.Block) error
	AccountState() AccountStore
	DelegateState() DelegateStore
}

// Overlay is a staged, uncommitted view of a persistent state store;
// mutations are visible only to the holder until Commit folds them
// back into the parent store. Dropping an Overlay without calling
// Commit discards its mutations.
type Overlay interface {
	Commit() error
}

// AccountStore produces account-state overlays for speculative
// execution.
type AccountStore interface {
	Track() AccountOverlay
}

// AccountOverlay is the account-state overlay a block's transactions
// and coinbase reward are applied against.
type AccountOverlay interface {
	Overlay
	AddBalance(addr common.Address, amount *big.Int)
}

// DelegateStore produces delegate-state overlays.
type DelegateStore interface {
	Track() DelegateOverlay
}

// DelegateOverlay is the delegate-state overlay transactions (e.g.
// staking/redeem operations) mutate; Delegates reports the validator
// set in its current (possibly just-mutated) form.
type DelegateOverlay interface {
	Overlay
	Delegates() []*types.Delegate
}

// TxResult is the per-transaction outcome the executor reports.
type TxResult struct {
	Success bool
}

// TxExecutor replays a block's transactions against a pair of
// overlays. It is pure with respect to anything but the overlays it is
// given (spec.md §6, "Consumed from the transaction executor").
type TxExecutor interface {
	Execute(txs []*types.Transaction, accounts AccountOverlay, delegates DelegateOverlay, isProposing bool) ([]TxResult, error)
}

// Crypto is the cryptographic primitives collaborator.
type Crypto interface {
	// Verify reports whether sig is a valid signature of msg under the
	// given public key.
	Verify(msg, sig, pubkey []byte) bool
	// H160 derives the 20-byte address bound to a public key.
	H160(pubkey []byte) common.Address
}

// Message is a decoded wire message handed to the Inbox. The concrete
// wire codec (RLP, protobuf, ...) is out of scope (spec.md §1); this
// package only needs the decoded shape.
type Message interface {
	messageCode() uint64
}

// GetBlockMessage requests a single block by height.
type GetBlockMessage struct {
	Number uint64
}

func (GetBlockMessage) messageCode() uint64 { return GetBlockMsg }

// BlockMessage delivers a block in response to a GetBlockMessage. Block
// may be nil, in which case the Inbox drops it silently (spec.md §4.3).
type BlockMessage struct {
	Block *types.Block
}

func (BlockMessage) messageCode() uint64 { return BlockMsg }

// BlockHeaderMessage is reserved for future header-first sync; the
// Inbox accepts it but takes no action (spec.md §4.3).
type BlockHeaderMessage struct {
	Number uint64
}

func (BlockHeaderMessage) messageCode() uint64 { return BlockHeaderMsg }

// Disposition reports whether the Inbox handled a message, mirroring
// the protocol manager's Handled/Unhandled convention so the host can
// fall through to other message handlers.
type Disposition int

const (
	// Unhandled means the host should try another handler.
	Unhandled Disposition = iota
	// Handled means the Inbox consumed the message.
	Handled
)

// Channel is a single outbound connection to a peer.
type Channel interface {
	ID() string
	Send(msg Message) error
}

// PeerSet enumerates the channels currently idle (not awaiting a
// response to an outstanding request of some other kind).
type PeerSet interface {
	IdleChannels() []Channel
}
