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

// Package log is a minimal adaptation of the upstream log15-style logger
// every abey/* package logs through: leveled, structured (key/value pairs
// trailing a message), with a swappable Handler rather than a fixed sink.
package log

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-stack/stack"
)

// Lvl is a log record's severity.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERROR"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DEBUG"
	case LvlTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Record is a single log event: a leveled message plus its structured
// context, captured with the caller frame that emitted it.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Handler writes a Record somewhere. Like upstream log15, a Handler is
// itself just a function plus whatever state it closes over, so filtering
// and multiplexing handlers compose by wrapping.
type Handler interface {
	Log(r *Record) error
}

// FuncHandler turns a plain function into a Handler.
type FuncHandler func(r *Record) error

func (h FuncHandler) Log(r *Record) error { return h(r) }

// Format renders a Record to bytes for a stream-based Handler.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(r *Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

// LogfmtFormat renders records as space-separated key=value pairs, the
// upstream default for file/non-terminal sinks.
func LogfmtFormat() Format {
	return formatFunc(func(r *Record) []byte {
		buf := fmt.Sprintf("%s[%s] %s", r.Lvl.String(), r.Time.Format("01-02|15:04:05.000"), r.Msg)
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			buf += fmt.Sprintf(" %v=%v", r.Ctx[i], formatValue(r.Ctx[i+1]))
		}
		return append([]byte(buf), '\n')
	})
}

func formatValue(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", v)
}

// TerminalFormat renders records the same way as LogfmtFormat, without
// color. When stderr is a terminal, terminal.go's init installs a
// handler using termFormat, which adds the ANSI color codes.
func TerminalFormat() Format {
	return LogfmtFormat()
}

// StreamHandler writes every Record to wr using fmtr, serializing writes
// so concurrent loggers never interleave a single record.
func StreamHandler(wr interface{ Write([]byte) (int, error) }, fmtr Format) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
}

// LvlFilterHandler drops any Record more verbose than maxLvl before it
// reaches h.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return FuncHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// Logger emits leveled, structured log records, optionally carrying a
// fixed context established by New.
type Logger interface {
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

type swapHandler struct {
	v atomic.Value
}

func (s *swapHandler) Log(r *Record) error {
	h, _ := s.v.Load().(Handler)
	if h == nil {
		return nil
	}
	return h.Log(r)
}

func (s *swapHandler) Swap(h Handler) { s.v.Store(h) }

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	r := &Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  append(append([]interface{}{}, l.ctx...), ctx...),
		Call: stack.Caller(2),
	}
	l.h.Log(r)
}

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{ctx: append(append([]interface{}{}, l.ctx...), ctx...), h: l.h}
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

var root = &logger{h: new(swapHandler)}

func init() {
	root.h.Swap(LvlFilterHandler(LvlInfo, StreamHandler(os.Stderr, TerminalFormat())))
}

// Root returns the package's root Logger.
func Root() Logger { return root }

// New returns a child of the root Logger carrying the given context.
func New(ctx ...interface{}) Logger { return root.New(ctx...) }

// SetHandler replaces the root Logger's Handler, e.g. to raise verbosity
// or redirect output to a file.
func SetHandler(h Handler) { root.h.Swap(h) }

func Trace(msg string, ctx ...interface{}) { root.write(LvlTrace, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(LvlDebug, msg, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(LvlInfo, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(LvlWarn, msg, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(LvlError, msg, ctx) }
func Crit(msg string, ctx ...interface{})  { root.write(LvlCrit, msg, ctx) }
