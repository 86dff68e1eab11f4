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

// Package common holds the fixed-size identifier types shared across the
// chain's packages: block/tx hashes and account addresses. It mirrors the
// shape (not the full surface) of the upstream common package every other
// abey/* and core/* package already imports by that name.
package common

import (
	"encoding/hex"
	"fmt"
)

const (
	// HashLength is the expected length of the content-addressed hash of
	// a block or transaction.
	HashLength = 32
	// AddressLength is the expected length of an account address.
	AddressLength = 20
)

// Hash represents the 32 byte hash of arbitrary data.
type Hash [HashLength]byte

// BytesToHash sets the last HashLength bytes of b (left-truncating or
// left-padding as needed) into a Hash.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// SetBytes sets the hash to the value of b, right-aligned.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Bytes returns the raw byte slice backing h.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of h.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// Format implements fmt.Formatter so log call sites can pass a Hash
// directly as a value argument without an explicit .Hex() call.
func (h Hash) Format(s fmt.State, c rune) {
	switch c {
	case 'v', 's':
		fmt.Fprint(s, h.Hex())
	default:
		fmt.Fprintf(s, "%"+string(c), h.Bytes())
	}
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// Address represents the 20 byte address of an account.
type Address [AddressLength]byte

// BytesToAddress sets the last AddressLength bytes of b into an Address.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// SetBytes sets the address to the value of b, right-aligned.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Bytes returns the raw byte slice backing a.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex encoding of a.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Format implements fmt.Formatter, matching Hash's log-friendly behavior.
func (a Address) Format(s fmt.State, c rune) {
	switch c {
	case 'v', 's':
		fmt.Fprint(s, a.Hex())
	default:
		fmt.Fprintf(s, "%"+string(c), a.Bytes())
	}
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }
