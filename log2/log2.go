// Package log2 is a small leveled logger over stdlib *log.Logger.
// Methods are safe on nil *Log, so components may run without logging.
// NewTest routes output into t.Logf for parallel tests.
package log2

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"math"
	"os"
	"sync/atomic"
	"testing"
)

const (
	Lmicroseconds     int = log.Lmicroseconds
	Lshortfile        int = log.Lshortfile
	LStdFlags         int = log.Ltime | Lshortfile
	LInteractiveFlags int = log.Ltime | Lshortfile | Lmicroseconds
	LServiceFlags     int = Lshortfile
	LTestFlags        int = Lshortfile | Lmicroseconds
)

type Level int32

const (
	LError Level = iota
	LInfo
	LDebug
	LAll Level = math.MaxInt32
)

func ParseLevel(s string) (Level, error) {
	switch s {
	case "error":
		return LError, nil
	case "", "info":
		return LInfo, nil
	case "debug":
		return LDebug, nil
	case "all":
		return LAll, nil
	}
	return LInfo, fmt.Errorf("log level=%s valid: error, info, debug, all", s)
}

type FmtFunc func(format string, args ...interface{})
type ErrorFunc func(error)

type Log struct {
	l      *log.Logger
	level  Level
	w      io.Writer
	fatalf FmtFunc
	errf   atomic.Value // ErrorFunc
}

func NewStderr(level Level) *Log { return NewWriter(os.Stderr, level) }
func NewWriter(w io.Writer, level Level) *Log {
	if w == ioutil.Discard {
		return nil
	}
	return &Log{
		l:     log.New(w, "", LStdFlags),
		level: level,
		w:     w,
	}
}

type funcWriter struct{ f FmtFunc }

func (fw funcWriter) Write(b []byte) (int, error) {
	fw.f("%s", string(b))
	return len(b), nil
}

func NewFunc(f FmtFunc, level Level) *Log { return NewWriter(funcWriter{f}, level) }

func NewTest(t testing.TB, level Level) *Log {
	self := NewFunc(t.Logf, level)
	self.SetFlags(LTestFlags)
	self.fatalf = t.Fatalf
	return self
}

// Clone shares writer and flags, level and prefix are independent.
func (self *Log) Clone(level Level) *Log {
	if self == nil {
		return nil
	}
	l := NewWriter(self.w, level)
	l.SetFlags(self.l.Flags())
	l.SetPrefix(self.l.Prefix())
	l.fatalf = self.fatalf
	return l
}

func (self *Log) SetLevel(l Level) {
	if self == nil {
		return
	}
	atomic.StoreInt32((*int32)(&self.level), int32(l))
}

func (self *Log) SetFlags(f int) {
	if self == nil {
		return
	}
	self.l.SetFlags(f)
}

func (self *Log) SetPrefix(prefix string) {
	if self == nil {
		return
	}
	self.l.SetPrefix(prefix)
}

// SetErrorFunc installs a hook called for every Error/Errorf.
func (self *Log) SetErrorFunc(f ErrorFunc) {
	if self == nil {
		return
	}
	self.errf.Store(f)
}

func (self *Log) Enabled(level Level) bool {
	if self == nil {
		return false
	}
	return atomic.LoadInt32((*int32)(&self.level)) >= int32(level)
}

func (self *Log) Log(level Level, s string) {
	if self.Enabled(level) {
		_ = self.l.Output(3, s)
	}
}
func (self *Log) Logf(level Level, format string, args ...interface{}) {
	if self.Enabled(level) {
		_ = self.l.Output(3, fmt.Sprintf(format, args...))
	}
}

func (self *Log) Error(args ...interface{}) {
	self.Log(LError, "error: "+fmt.Sprint(args...))
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			self.callErrorFunc(err)
			return
		}
	}
	self.callErrorFunc(fmt.Errorf("%s", fmt.Sprint(args...)))
}
func (self *Log) Errorf(format string, args ...interface{}) {
	self.Logf(LError, "error: "+format, args...)
	self.callErrorFunc(fmt.Errorf(format, args...))
}
func (self *Log) Info(args ...interface{}) {
	self.Log(LInfo, fmt.Sprint(args...))
}
func (self *Log) Infof(format string, args ...interface{}) {
	self.Logf(LInfo, format, args...)
}
func (self *Log) Debug(args ...interface{}) {
	self.Log(LDebug, "debug: "+fmt.Sprint(args...))
}
func (self *Log) Debugf(format string, args ...interface{}) {
	self.Logf(LDebug, "debug: "+format, args...)
}

func (self *Log) Fatalf(format string, args ...interface{}) {
	if self != nil && self.fatalf != nil {
		self.fatalf(format, args...)
		return
	}
	self.Logf(LError, "fatal: "+format, args...)
	os.Exit(1)
}
func (self *Log) Fatal(args ...interface{}) {
	s := fmt.Sprint(args...)
	if self != nil && self.fatalf != nil {
		self.fatalf("%s", s)
		return
	}
	self.Log(LError, "fatal: "+s)
	os.Exit(1)
}

func (self *Log) callErrorFunc(err error) {
	if self == nil {
		return
	}
	if f, ok := self.errf.Load().(ErrorFunc); ok && f != nil {
		f(err)
	}
}
