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

// Package rlp is a minimal adaptation of the upstream Recursive Length
// Prefix encoder: the canonical, deterministic wire encoding the sync
// engine signs precommit votes over (spec.md §6). Only encoding is
// implemented; nothing in this codebase decodes RLP.
package rlp

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
)

// ErrUnsupportedType is returned for a value this encoder cannot derive
// a canonical encoding for (e.g. a map, or a signed integer, whose RLP
// representation upstream deliberately leaves undefined).
var ErrUnsupportedType = errors.New("rlp: unsupported type")

// EncodeToBytes returns the canonical RLP encoding of val.
func EncodeToBytes(val interface{}) ([]byte, error) {
	return encode(reflect.ValueOf(val))
}

func encode(v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return encodeString(nil), nil
		}
		return encode(v.Elem())

	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return encodeString(uintBytes(v.Uint())), nil

	case reflect.String:
		return encodeString([]byte(v.String())), nil

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return encodeString(byteSliceOf(v)), nil
		}
		return encodeList(v)

	case reflect.Struct:
		if b, ok := v.Interface().(big.Int); ok {
			return encodeString(b.Bytes()), nil
		}
		return encodeStruct(v)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Kind())
	}
}

// byteSliceOf copies a []byte or [N]byte Value into a plain []byte.
func byteSliceOf(v reflect.Value) []byte {
	if v.Kind() == reflect.Slice {
		return v.Bytes()
	}
	b := make([]byte, v.Len())
	reflect.Copy(reflect.ValueOf(b), v)
	return b
}

func encodeStruct(v reflect.Value) ([]byte, error) {
	t := v.Type()
	var items [][]byte
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue // unexported
		}
		enc, err := encode(v.Field(i))
		if err != nil {
			return nil, err
		}
		items = append(items, enc)
	}
	return encodeListItems(items), nil
}

func encodeList(v reflect.Value) ([]byte, error) {
	var items [][]byte
	for i := 0; i < v.Len(); i++ {
		enc, err := encode(v.Index(i))
		if err != nil {
			return nil, err
		}
		items = append(items, enc)
	}
	return encodeListItems(items), nil
}

func encodeListItems(items [][]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	return append(listHead(len(payload)), payload...)
}

// uintBytes returns the big-endian minimal encoding of n (no leading
// zero bytes, empty slice for zero).
func uintBytes(n uint64) []byte {
	if n == 0 {
		return nil
	}
	return minimalBigEndian(n)
}

// encodeString returns the RLP encoding of a byte string: a single byte
// for len==1 values below 0x80, a short-string header for len<56, and a
// long-string header otherwise.
func encodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(stringHead(len(b)), b...)
}

func stringHead(size int) []byte {
	if size < 56 {
		return []byte{0x80 + byte(size)}
	}
	lenBytes := minimalBigEndian(uint64(size))
	head := make([]byte, 1+len(lenBytes))
	head[0] = 0xb7 + byte(len(lenBytes))
	copy(head[1:], lenBytes)
	return head
}

func listHead(size int) []byte {
	if size < 56 {
		return []byte{0xc0 + byte(size)}
	}
	lenBytes := minimalBigEndian(uint64(size))
	head := make([]byte, 1+len(lenBytes))
	head[0] = 0xf7 + byte(len(lenBytes))
	copy(head[1:], lenBytes)
	return head
}

func minimalBigEndian(n uint64) []byte {
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}
