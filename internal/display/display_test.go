package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/qcounter/hardware/segment"
	"github.com/temoto/qcounter/internal/queue"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

type shown struct {
	pos int
	g   segment.Glyph
}

type fakeDigits struct{ log []shown }

func (self *fakeDigits) Show(pos int, g segment.Glyph) { self.log = append(self.log, shown{pos, g}) }

type fakeText struct {
	lines [][2]string
	ticks int
}

func (self *fakeText) SetLines(l1, l2 string) { self.lines = append(self.lines, [2]string{l1, l2}) }
func (self *fakeText) Tick()                  { self.ticks++ }

type testEnv struct {
	store  *queue.Store
	issuer *queue.Issuer
	ctl    *queue.Controller
	digits *fakeDigits
	text   *fakeText
	mux    *Multiplexer
}

func newTestEnv(t testing.TB, c Config) *testEnv {
	store, err := queue.NewStore(5, 0)
	require.NoError(t, err)
	env := &testEnv{store: store, digits: &fakeDigits{}, text: &fakeText{}}
	env.mux, err = NewMultiplexer(store, env.digits, env.text, c, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	env.issuer = queue.NewIssuer(store, nil, env.mux, types.Pattern{})
	env.ctl = queue.NewController(store, nil, env.mux, types.Pattern{})
	return env
}

func TestRotation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Config{})
	for i := 0; i < 12; i++ {
		assert.Equal(t, i%4, env.mux.Pos())
		env.mux.Tick()
		assert.Equal(t, i%4, env.mux.Frame().Lit)
	}
	require.Len(t, env.digits.log, 12)
	for i, s := range env.digits.log {
		assert.Equal(t, i%4, s.pos)
		assert.Equal(t, segment.GlyphBlank, s.g)
	}
}

func TestRotationHold(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Config{DigitHoldTicks: 2, FlickerBudget: 3})
	for i := 0; i < 8; i++ {
		env.mux.Tick()
	}
	var pos []int
	for _, s := range env.digits.log {
		pos = append(pos, s.pos)
	}
	assert.Equal(t, []int{0, 0, 1, 1, 2, 2, 3, 3}, pos)
}

func TestFlickerBudget(t *testing.T) {
	t.Parallel()

	store, err := queue.NewStore(1, 0)
	require.NoError(t, err)
	_, err = NewMultiplexer(store, nil, nil, Config{DigitHoldTicks: 3, FlickerBudget: 2}, nil)
	assert.Error(t, err)
}

func TestDigitsFollowCounters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Config{})
	for i := 0; i < 12; i++ {
		_, _ = env.issuer.Request(types.LoanServices)
		_, _ = env.ctl.Advance(types.LoanServices)
	}
	_, _ = env.issuer.Request(types.WithdrawDeposit)
	_, _ = env.ctl.CallNext(types.WithdrawDeposit)
	f := env.mux.Frame()
	assert.Equal(t, [4]segment.Glyph{segment.Digit(1), segment.GlyphBlank, segment.Digit(2), segment.GlyphBlank}, f.Digits)
}

func TestTextOnlyOnChange(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Config{})
	assert.True(t, env.mux.Refresh())
	assert.Equal(t, [][2]string{{"Please take a token", ""}}, env.text.lines)
	for i := 0; i < 100; i++ {
		env.mux.Tick()
		assert.False(t, env.mux.Refresh())
	}
	assert.Len(t, env.text.lines, 1)

	_, err := env.issuer.Request(types.LoanServices)
	require.NoError(t, err)
	assert.True(t, env.mux.Dirty())
	assert.True(t, env.mux.Refresh())
	assert.Equal(t, [2]string{"Loan Services", "Token: 1"}, env.text.lines[1])

	_, _ = env.ctl.CallNext(types.LoanServices)
	_, _ = env.ctl.CallNext(types.LoanServices)
	env.mux.Refresh()
	assert.Equal(t, [2]string{"Loan Services", "Serving 1"}, env.text.lines[2])
	f := env.mux.Frame()
	assert.Equal(t, "Loan Services", f.L1)
	assert.Equal(t, "Serving 1", f.L2)
}

func TestScrollTicks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, Config{ScrollTicks: 5})
	for i := 0; i < 20; i++ {
		env.mux.Tick()
	}
	assert.Equal(t, 4, env.text.ticks)
}

func TestMessages(t *testing.T) {
	t.Parallel()

	m := Messages{QueueFull: "Busy", Names: Names{Loan: "Loans"}}.WithDefaults()
	l1, l2 := m.Lines(types.Status{Kind: types.StatusQueueFull, Category: types.LoanServices})
	assert.Equal(t, "Loans", l1)
	assert.Equal(t, "Busy", l2)
	l1, l2 = m.Lines(types.Status{Kind: types.StatusIssued, Category: types.GeneralInquiry, Token: 42})
	assert.Equal(t, "General Inquiry", l1)
	assert.Equal(t, "Token: 42", l2)
	_, l2 = m.Lines(types.Status{Kind: types.StatusTokenOverflow, Category: types.AccountOpening})
	assert.Equal(t, "Tokens exhausted", l2)
}

func TestFrameString(t *testing.T) {
	t.Parallel()

	f := Frame{Digits: [4]segment.Glyph{segment.Digit(3), segment.GlyphBlank, segment.GlyphBlank, segment.Digit(9)}, Lit: 3, L1: "a", L2: "b"}
	assert.Equal(t, "[ 3 " + "      " + "(9)]\na\nb", f.String())
}
