package input

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/inputevent-go"
	"github.com/temoto/qcounter/hardware/gpio"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

func press(c Control) Levels {
	var lv Levels
	lv[c] = true
	return lv
}

func pollN(d *Debouncer, lv Levels, n int) []KeyEvent {
	var events []KeyEvent
	for i := 0; i < n; i++ {
		events = d.Poll(lv, events)
	}
	return events
}

func TestControl(t *testing.T) {
	t.Parallel()

	for _, c := range types.Categories {
		tc, cc := TokenControl(c), CallControl(c)
		assert.Equal(t, KindToken, tc.Kind())
		assert.Equal(t, KindCall, cc.Kind())
		assert.Equal(t, c, tc.Category())
		assert.Equal(t, c, cc.Category())
	}
	assert.Equal(t, "call/loan", CallLoan.String())
	assert.Equal(t, "Control(9)", Control(9).String())

	for _, c := range []Control{TokenWithdraw, TokenInquiry, CallAccount, CallLoan} {
		parsed, err := ParseControl(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	parsed, err := ParseControl("c/3")
	require.NoError(t, err)
	assert.Equal(t, CallLoan, parsed)
	for _, s := range []string{"", "loan", "ring/loan", "call/savings"} {
		_, err = ParseControl(s)
		assert.Error(t, err, s)
	}
}

func TestDebounce(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		window uint16
		hold   uint16
		polls  int
		expect []KeyEvent
	}{
		{"short", 10, 0, 9, nil},
		{"exact", 10, 0, 10, []KeyEvent{{Control: TokenLoan}}},
		{"long-press-once", 10, 0, 500, []KeyEvent{{Control: TokenLoan}}},
		{"hold", 10, 100, 100, []KeyEvent{{Control: TokenLoan}, {Control: TokenLoan, Long: true}}},
		{"hold-once", 10, 100, 1000, []KeyEvent{{Control: TokenLoan}, {Control: TokenLoan, Long: true}}},
		{"hold-not-reached", 10, 100, 99, []KeyEvent{{Control: TokenLoan}}},
		{"hold-equal-window", 10, 10, 50, []KeyEvent{{Control: TokenLoan}}},
		{"window-zero", 0, 0, 1, []KeyEvent{{Control: TokenLoan}}},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			d := NewDebouncer(c.window, c.hold)
			assert.Equal(t, c.expect, pollN(d, press(TokenLoan), c.polls))
		})
	}
}

func TestDebounceBounce(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(10, 0)
	// contact bounce: interrupted presses never reach window
	for i := 0; i < 20; i++ {
		assert.Empty(t, pollN(d, press(CallWithdraw), 7))
		assert.Empty(t, pollN(d, Levels{}, 1))
	}
	assert.Len(t, pollN(d, press(CallWithdraw), 10), 1)
	// release and press again produces new event
	assert.Empty(t, pollN(d, Levels{}, 3))
	assert.Len(t, pollN(d, press(CallWithdraw), 10), 1)
}

func TestDebounceScanOrder(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(3, 0)
	var all Levels
	for i := range all {
		all[i] = true
	}
	events := pollN(d, all, 3)
	require.Len(t, events, ControlCount)
	for i, e := range events {
		assert.Equal(t, Control(i), e.Control)
		assert.False(t, e.Long)
	}
}

func TestDebounceReset(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(5, 0)
	assert.Empty(t, pollN(d, press(TokenInquiry), 4))
	d.Reset()
	assert.Empty(t, pollN(d, press(TokenInquiry), 4))
	assert.Len(t, pollN(d, press(TokenInquiry), 1), 1)
}

func TestDebounceNoAlloc(t *testing.T) {
	d := NewDebouncer(1, 2)
	buf := make([]KeyEvent, 0, 2*ControlCount)
	var all Levels
	for i := range all {
		all[i] = true
	}
	allocs := testing.AllocsPerRun(100, func() {
		d.Reset()
		buf = d.Poll(all, buf[:0])
		buf = d.Poll(all, buf)
	})
	assert.Equal(t, float64(0), allocs)
	assert.Len(t, buf, 2*ControlCount)
}

func TestKeypad(t *testing.T) {
	t.Parallel()

	pins := gpio.NewMock()
	lines := []gpio.Line{10, 11, 12, 13, 20, 21, 22, 23}
	kp, err := NewKeypad(pins, lines, true)
	require.NoError(t, err)
	for _, l := range lines {
		dir, ok := pins.Direction(l)
		assert.True(t, ok)
		assert.Equal(t, gpio.DirectionInput, dir)
		pins.SetInput(l, true)
	}
	assert.Equal(t, Levels{}, kp.Scan())
	pins.SetInput(22, false)
	assert.Equal(t, press(CallLoan), kp.Scan())

	_, err = NewKeypad(pins, lines[:7], false)
	assert.Error(t, err)
	_, err = NewKeypad(gpio.NewMock(), []gpio.Line{1, 2, 3, 4, 5, 6, 7, 1}, false)
	assert.Error(t, err)
}

func encodeEvent(typ, code uint16, value int32) []byte {
	ev := inputevent.InputEvent{Type: typ, Code: code, Value: value}
	b := (*[inputevent.EventSizeof]byte)(unsafe.Pointer(&ev))
	return append([]byte(nil), b[:]...)
}

func TestEvdevKeypad(t *testing.T) {
	t.Parallel()

	codes := []uint16{2, 3, 4, 5, 16, 17, 18, 19}
	buf := bytes.NewBuffer(nil)
	buf.Write(encodeEvent(evKey, 4, int32(inputevent.KeyStateDown)))
	buf.Write(encodeEvent(0x04, 4, 7)) // EV_MSC ignored
	buf.Write(encodeEvent(evKey, 17, int32(inputevent.KeyStateDown)))
	buf.Write(encodeEvent(evKey, 17, int32(inputevent.KeyStateHold)))
	buf.Write(encodeEvent(evKey, 99, int32(inputevent.KeyStateDown))) // unmapped
	buf.Write(encodeEvent(evKey, 4, int32(inputevent.KeyStateUp)))
	kp, err := NewEvdevKeypad(ioutil.NopCloser(buf), codes, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	require.NoError(t, kp.Run())
	assert.Equal(t, press(CallAccount), kp.Scan())
	assert.Equal(t, EvdevTag, kp.String())

	_, err = NewEvdevKeypad(ioutil.NopCloser(bytes.NewReader(nil)), codes[:3], nil)
	assert.Error(t, err)
}

func TestEvdevShortRead(t *testing.T) {
	t.Parallel()

	kp, err := NewEvdevKeypad(ioutil.NopCloser(bytes.NewReader([]byte{1, 2, 3})), []uint16{1, 2, 3, 4, 5, 6, 7, 8}, nil)
	require.NoError(t, err)
	err = kp.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("expected=%d", inputevent.EventSizeof))
}

func TestDebouncerLimits(t *testing.T) {
	t.Parallel()

	for _, c := range []struct {
		window, hold       uint16
		expWindow, expHold uint16
	}{
		{10, 1000, 10, 1000},
		{0, 0, 1, 0},
		{10, 10, 10, 0},
		{10, 5, 10, 0},
	} {
		d := NewDebouncer(c.window, c.hold)
		assert.Equal(t, c.expWindow, d.Window(), "window=%d hold=%d", c.window, c.hold)
		assert.Equal(t, c.expHold, d.Hold(), "window=%d hold=%d", c.window, c.hold)
	}
}
