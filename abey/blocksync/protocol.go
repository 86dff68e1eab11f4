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

// Wire message codes handled by the Inbox (spec.md §6). These live in
// their own small space the way abey/protocol.go enumerates the main
// eth-style wire protocol's message codes.
const (
	GetBlockMsg    = 0x00
	BlockMsg       = 0x01
	BlockHeaderMsg = 0x02
)
