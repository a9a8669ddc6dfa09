package log2

import (
	"bytes"
	"fmt"
	"log"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog2(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fun  func(t testing.TB, l *Log) string
	}{
		{"caller/debug", func(t testing.TB, l *Log) string {
			l.SetFlags(log.Lshortfile)
			l.Debugf("queue category=%d len=%d", 2, 5)
			return formatCallerShort(1) + "debug: queue category=2 len=5\n"
		}},
		{"caller/info", func(t testing.TB, l *Log) string {
			l.SetFlags(log.Lshortfile)
			l.Infof("tick=%s", "2ms")
			return formatCallerShort(1) + "tick=2ms\n"
		}},
		{"caller/error", func(t testing.TB, l *Log) string {
			l.SetFlags(log.Lshortfile)
			l.Errorf("problem")
			return formatCallerShort(1) + "error: problem\n"
		}},
		{"error-func/error", func(t testing.TB, l *Log) string {
			ech := make(chan error, 1)
			l.SetErrorFunc(func(e error) { ech <- e })
			l.SetFlags(0)
			exactError := fmt.Errorf("gpio line busy")
			l.Error(exactError)
			close(ech)
			e := <-ech
			if l == nil {
				assert.Nil(t, e)
			} else {
				assert.Equal(t, exactError, e)
			}
			return "error: gpio line busy\n"
		}},
		{"error-func/string", func(t testing.TB, l *Log) string {
			ech := make(chan error, 1)
			l.SetErrorFunc(func(e error) { ech <- e })
			l.SetFlags(0)
			l.Errorf("overrun count=%d", 3)
			close(ech)
			e := <-ech
			if l == nil {
				assert.Nil(t, e)
			} else {
				assert.Equal(t, "overrun count=3", e.Error())
			}
			return "error: overrun count=3\n"
		}},
		{"level/skip", func(t testing.TB, l *Log) string {
			l.SetFlags(0)
			l.SetLevel(LInfo)
			l.Debugf("hidden")
			l.Infof("shown")
			return "shown\n"
		}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name+"/logger=nil", func(t *testing.T) {
			c.fun(t, nil)
		})
		t.Run(c.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			l := NewWriter(buf, LAll)
			expect := c.fun(t, l)
			assert.Equal(t, expect, buf.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, c := range []struct {
		input  string
		expect Level
		err    bool
	}{
		{"", LInfo, false},
		{"debug", LDebug, false},
		{"error", LError, false},
		{"all", LAll, false},
		{"loud", LInfo, true},
	} {
		l, err := ParseLevel(c.input)
		assert.Equal(t, c.expect, l, c.input)
		assert.Equal(t, c.err, err != nil, c.input)
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBuffer(nil)
	parent := NewWriter(buf, LError)
	parent.SetFlags(0)
	child := parent.Clone(LDebug)
	child.Debugf("from child")
	parent.Debugf("from parent")
	assert.Equal(t, "debug: from child\n", buf.String())
}

func callerShort(depth int) (file string, line int) {
	var ok bool
	_, file, line, ok = runtime.Caller(depth)
	if !ok {
		file = "???"
		line = 0
	}

	short := file
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			break
		}
	}
	file = short

	return
}

func formatCallerShort(depth int) string {
	file, line := callerShort(depth + 1)
	return fmt.Sprintf("%s:%d: ", file, line-1)
}
