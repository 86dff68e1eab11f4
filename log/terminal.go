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

package log

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// colorLvl maps a level to its ANSI color code, matching the scheme the
// upstream terminal handler uses (red for errors, yellow for warnings).
func colorLvl(l Lvl) int {
	switch l {
	case LvlCrit:
		return 35 // magenta
	case LvlError:
		return 31 // red
	case LvlWarn:
		return 33 // yellow
	case LvlInfo:
		return 32 // green
	case LvlDebug:
		return 36 // cyan
	default:
		return 0
	}
}

// termFormat wraps LogfmtFormat with ANSI coloring keyed on severity.
func termFormat() Format {
	inner := LogfmtFormat()
	return formatFunc(func(r *Record) []byte {
		c := colorLvl(r.Lvl)
		if c == 0 {
			return inner.Format(r)
		}
		b := inner.Format(r)
		return append(append([]byte{0x1b, '[', byte('0' + c/10), byte('0' + c%10), 'm'}, b...), 0x1b, '[', '0', 'm')
	})
}

// init upgrades the root Handler to a colorized terminal one when stderr
// is attached to a real terminal, mirroring the upstream CLI's
// glog-handler auto-detection.
func init() {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		out := colorable.NewColorableStderr()
		root.h.Swap(LvlFilterHandler(LvlInfo, StreamHandler(out, termFormat())))
	}
}
