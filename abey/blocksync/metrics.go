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

// Contains the metrics collected by the block sync engine.

package blocksync

import (
	"github.com/abeychain/chainsync/metrics"
)

var (
	toDownloadGauge = metrics.NewRegisteredGauge("abey/blocksync/queue/to_download", nil)
	inFlightGauge   = metrics.NewRegisteredGauge("abey/blocksync/queue/in_flight", nil)
	toProcessGauge  = metrics.NewRegisteredGauge("abey/blocksync/queue/to_process", nil)

	requestMeter    = metrics.NewRegisteredMeter("abey/blocksync/requests/sent", nil)
	requestTimer    = metrics.NewRegisteredTimer("abey/blocksync/requests/rtt", nil)
	timeoutMeter    = metrics.NewRegisteredMeter("abey/blocksync/requests/timeout", nil)
	sendFailedMeter = metrics.NewRegisteredMeter("abey/blocksync/requests/send_failed", nil)

	blockInMeter     = metrics.NewRegisteredMeter("abey/blocksync/blocks/in", nil)
	blockDropMeter   = metrics.NewRegisteredMeter("abey/blocksync/blocks/drop", nil)
	commitMeter      = metrics.NewRegisteredMeter("abey/blocksync/commit", nil)
	rejectMeter      = metrics.NewRegisteredMeter("abey/blocksync/reject", nil)
	validationTimer  = metrics.NewRegisteredTimer("abey/blocksync/validate", nil)
)
