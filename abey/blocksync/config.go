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
	"time"

	"github.com/abeychain/chainsync/core/types"
)

// Config holds the engine's tunables (spec.md §6). Callers build a
// Config directly; NewEngine fills every zero field from DefaultConfig.
// Nothing in this package reads a config file or command-line flags.
type Config struct {
	// MaxBatchSize bounds the number of outstanding GetBlock requests
	// (spec.md I3).
	MaxBatchSize int

	// MaxDownloadTime is how long a dispatched request waits before its
	// height is returned to the to-download set.
	MaxDownloadTime time.Duration

	// DownloaderPeriod is how often the Downloader tick runs.
	DownloaderPeriod time.Duration

	// ProcessorPeriod is how often the Processor tick runs.
	ProcessorPeriod time.Duration

	// RewardSchedule computes the fixed block reward for a height
	// (spec.md §4.5 step 6). Defaults to types.BlockReward.
	RewardSchedule func(number uint64) *big.Int
}

// DefaultConfig contains the tunables spec.md §6 requires implementations
// to agree on byte-for-byte in order to interoperate.
var DefaultConfig = Config{
	MaxBatchSize:     32,
	MaxDownloadTime:  120 * time.Second,
	DownloaderPeriod: 500 * time.Millisecond,
	ProcessorPeriod:  200 * time.Millisecond,
	RewardSchedule:   types.BlockReward,
}

func (c Config) withDefaults() Config {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultConfig.MaxBatchSize
	}
	if c.MaxDownloadTime <= 0 {
		c.MaxDownloadTime = DefaultConfig.MaxDownloadTime
	}
	if c.DownloaderPeriod <= 0 {
		c.DownloaderPeriod = DefaultConfig.DownloaderPeriod
	}
	if c.ProcessorPeriod <= 0 {
		c.ProcessorPeriod = DefaultConfig.ProcessorPeriod
	}
	if c.RewardSchedule == nil {
		c.RewardSchedule = DefaultConfig.RewardSchedule
	}
	return c
}
