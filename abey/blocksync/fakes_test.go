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
	"fmt"
	"math/big"
	"sync"

	"github.com/abeychain/chainsync/common"
	"github.com/abeychain/chainsync/core/types"
)

// The fakes below mock out blocksync's external collaborators the way
// abey/fastdownloader's DownloadTester mocks out a local chain: in
// memory, single process, no networking.

func hashOf(n uint64) common.Hash {
	return common.BytesToHash([]byte(fmt.Sprintf("block-%d", n)))
}

func addrOf(i int) common.Address {
	return common.BytesToAddress([]byte(fmt.Sprintf("delegate-%d", i)))
}

// fakeDelegateKey pairs an address with deterministic key material so
// tests can assemble valid/invalid votes without real elliptic-curve
// signatures.
type fakeDelegateKey struct {
	addr   common.Address
	pubkey []byte
}

func newFakeDelegates(n int) []fakeDelegateKey {
	keys := make([]fakeDelegateKey, n)
	for i := 0; i < n; i++ {
		keys[i] = fakeDelegateKey{addr: addrOf(i), pubkey: []byte(fmt.Sprintf("pub-%d", i))}
	}
	return keys
}

func delegateSet(keys []fakeDelegateKey) []*types.Delegate {
	out := make([]*types.Delegate, len(keys))
	for i, k := range keys {
		out[i] = &types.Delegate{Address: k.addr, PublicKey: k.pubkey}
	}
	return out
}

// fakeCrypto treats a signature as valid iff it was produced by
// signFor for the same pubkey and payload, and resolves H160 by a
// fixed pubkey->address table (mirroring crypto.PubkeyToAddress
// without real key math).
type fakeCrypto struct {
	byPubkey map[string]common.Address
}

func newFakeCrypto(keys []fakeDelegateKey) *fakeCrypto {
	m := make(map[string]common.Address, len(keys))
	for _, k := range keys {
		m[string(k.pubkey)] = k.addr
	}
	return &fakeCrypto{byPubkey: m}
}

func (c *fakeCrypto) Verify(msg, sig, pubkey []byte) bool {
	return string(sig) == signatureFor(pubkey, msg)
}

func (c *fakeCrypto) H160(pubkey []byte) common.Address {
	return c.byPubkey[string(pubkey)]
}

func signatureFor(pubkey, payload []byte) string {
	return "sig:" + string(pubkey) + ":" + string(payload)
}

func signFor(pubkey, payload []byte) []byte {
	return []byte(signatureFor(pubkey, payload))
}

// fakeDelegateStore/fakeDelegateOverlay mirror impawnUtil's delegate
// set, fixed for the duration of a test rather than replayed from a
// staking contract.
type fakeDelegateStore struct {
	delegates []*types.Delegate
}

func (s *fakeDelegateStore) Track() DelegateOverlay {
	return &fakeDelegateOverlay{delegates: s.delegates}
}

type fakeDelegateOverlay struct {
	delegates []*types.Delegate
	committed bool
}

func (o *fakeDelegateOverlay) Delegates() []*types.Delegate { return o.delegates }
func (o *fakeDelegateOverlay) Commit() error                { o.committed = true; return nil }

// fakeAccountStore/fakeAccountOverlay track balances the way a real
// state.StateDB overlay would, minus tries and persistence.
type fakeAccountStore struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{balances: make(map[common.Address]*big.Int)}
}

func (s *fakeAccountStore) Track() AccountOverlay {
	return &fakeAccountOverlay{store: s}
}

func (s *fakeAccountStore) Balance(addr common.Address) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.balances[addr]; ok {
		return v
	}
	return big.NewInt(0)
}

type fakeAccountOverlay struct {
	store     *fakeAccountStore
	committed bool
}

func (o *fakeAccountOverlay) AddBalance(addr common.Address, amount *big.Int) {
	o.store.mu.Lock()
	defer o.store.mu.Unlock()
	cur, ok := o.store.balances[addr]
	if !ok {
		cur = big.NewInt(0)
	}
	o.store.balances[addr] = new(big.Int).Add(cur, amount)
}

func (o *fakeAccountOverlay) Commit() error { o.committed = true; return nil }

// fakeExecutor always succeeds unless fail is set, exercising the
// transaction-rejection path of ValidateAndCommit.
type fakeExecutor struct {
	fail bool
}

func (e *fakeExecutor) Execute(txs []*types.Transaction, accounts AccountOverlay, delegates DelegateOverlay, isProposing bool) ([]TxResult, error) {
	results := make([]TxResult, len(txs))
	for i := range txs {
		results[i] = TxResult{Success: !e.fail}
	}
	return results, nil
}

// fakeChain is an in-memory, append-only ledger of committed blocks.
type fakeChain struct {
	mu        sync.Mutex
	blocks    []*types.Block // index 0 is genesis
	accounts  *fakeAccountStore
	delegates *fakeDelegateStore
}

func newFakeChain(genesis *types.Block, delegates []*types.Delegate) *fakeChain {
	return &fakeChain{
		blocks:    []*types.Block{genesis},
		accounts:  newFakeAccountStore(),
		delegates: &fakeDelegateStore{delegates: delegates},
	}
}

func (c *fakeChain) LatestNumber() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks[len(c.blocks)-1].Number
}

func (c *fakeChain) LatestBlock() *types.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks[len(c.blocks)-1]
}

func (c *fakeChain) Append(block *types.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = append(c.blocks, block)
	return nil
}

func (c *fakeChain) AccountState() AccountStore   { return c.accounts }
func (c *fakeChain) DelegateState() DelegateStore { return c.delegates }

// newSignedBlock builds the block at prev.Number+1, linked to prev,
// carrying one valid agreeing vote from each key in votingKeys. Whether
// those votes reach quorum depends on how many keys the caller passes.
func newSignedBlock(prev *types.Block, votingKeys []fakeDelegateKey) *types.Block {
	block := &types.Block{
		Number:   prev.Number + 1,
		PrevHash: prev.Hash(),
		Coinbase: addrOf(0),
	}
	block.CachedHash = hashOf(block.Number)

	payload, err := encodePrecommit(block.Hash(), block.Number, block.View)
	if err != nil {
		panic(err)
	}
	votes := make([]*types.PrecommitVote, len(votingKeys))
	for i, k := range votingKeys {
		votes[i] = &types.PrecommitVote{
			BlockHash:   block.Hash(),
			BlockNumber: block.Number,
			View:        block.View,
			Vote:        types.VoteAgree,
			Signature:   signFor(k.pubkey, payload),
			PublicKey:   k.pubkey,
		}
	}
	block.Votes = votes
	return block
}

// fakeChannel records every message sent to it; SendErr forces Send to
// fail, exercising the Downloader's requeue-on-send-failure path.
type fakeChannel struct {
	id      string
	SendErr error
	sent    []Message
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Send(msg Message) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent = append(c.sent, msg)
	return nil
}

// fakePeerSet returns a fixed, mutable slice of idle channels.
type fakePeerSet struct {
	mu       sync.Mutex
	channels []Channel
}

func (p *fakePeerSet) IdleChannels() []Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Channel, len(p.channels))
	copy(out, p.channels)
	return out
}
