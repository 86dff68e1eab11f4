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

// Package blocksync drives a node's local chain from its current height
// up to a caller-supplied target by requesting blocks from connected
// peers, validating each one under the committee's BFT quorum rule, and
// committing validated blocks in strict height order.
//
// Unlike abey/downloader and abey/fastdownloader, which fetch headers,
// bodies and receipts in separate phases for a total-difficulty chain,
// blocksync pulls whole blocks for a single canonical target and applies
// them through a committee quorum check instead of a difficulty
// comparison. It is deliberately the narrower of the two: no pivot
// block, no state snapshot sync, no fork choice.
package blocksync
