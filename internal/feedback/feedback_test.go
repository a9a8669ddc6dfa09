package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/qcounter/hardware/gpio"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

const (
	testBuzzer gpio.Line = 20
	testLamp   gpio.Line = 21
)

func newTestSequencer(t testing.TB) (*Sequencer, *gpio.Mock) {
	pins := gpio.NewMock()
	s, err := NewSequencer(pins, testBuzzer, testLamp, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	return s, pins
}

// tick runs n ticks and returns flushed (buzzer, lamp) after each
func tick(s *Sequencer, pins *gpio.Mock, n int) (buzzer, lamp []bool) {
	for i := 0; i < n; i++ {
		s.Tick()
		_ = pins.Flush()
		buzzer = append(buzzer, pins.Output(testBuzzer))
		lamp = append(lamp, pins.Output(testLamp))
	}
	return
}

func TestSequencerPhases(t *testing.T) {
	t.Parallel()

	s, pins := newTestSequencer(t)
	s.Signal(types.Pattern{Name: "serving", Audible: 3, Visual: 2})
	phase, left := s.State()
	assert.Equal(t, PhaseAudible, phase)
	assert.Equal(t, uint16(3), left)

	// scheduler order: Signal, Tick, Flush in the same tick
	buzzer, lamp := tick(s, pins, 7)
	assert.Equal(t, []bool{true, true, true, false, false, false, false}, buzzer)
	assert.Equal(t, []bool{false, false, false, true, true, false, false}, lamp)
	phase, _ = s.State()
	assert.Equal(t, PhaseIdle, phase)
}

func TestSequencerSkipZeroPhase(t *testing.T) {
	t.Parallel()

	s, pins := newTestSequencer(t)
	s.Signal(types.Pattern{Visual: 2})
	phase, _ := s.State()
	assert.Equal(t, PhaseVisual, phase)
	buzzer, lamp := tick(s, pins, 3)
	assert.Equal(t, []bool{false, false, false}, buzzer)
	assert.Equal(t, []bool{true, true, false}, lamp)

	s.Signal(types.Pattern{})
	phase, _ = s.State()
	assert.Equal(t, PhaseIdle, phase)
}

func TestSequencerPending(t *testing.T) {
	t.Parallel()

	s, pins := newTestSequencer(t)
	first := types.Pattern{Name: "first", Audible: 2}
	second := types.Pattern{Name: "second", Audible: 1}
	third := types.Pattern{Name: "third", Audible: 2}
	s.Signal(first)
	s.Signal(second)
	s.Signal(third)
	p, ok := s.Pending()
	assert.True(t, ok)
	assert.Equal(t, third, p, "newest pending replaces older")

	// active pulse is not interrupted, idle tick separates pulses
	buzzer, _ := tick(s, pins, 6)
	assert.Equal(t, []bool{true, true, false, true, true, false}, buzzer)
	_, ok = s.Pending()
	assert.False(t, ok)
}

func TestSequencerSingleTick(t *testing.T) {
	t.Parallel()

	for _, c := range []struct {
		name    string
		pending bool
	}{{"idle", false}, {"pending", true}} {
		c := c
		t.Run(c.name, func(t *testing.T) {
			s, pins := newTestSequencer(t)
			if c.pending {
				s.Signal(types.Pattern{Visual: 1})
			}
			s.Signal(types.Pattern{Audible: 1})
			buzzer, _ := tick(s, pins, 5)
			high := 0
			for _, b := range buzzer {
				if b {
					high++
				}
			}
			assert.Equal(t, 1, high)
		})
	}
}

func TestSequencerConfigError(t *testing.T) {
	t.Parallel()

	_, err := NewSequencer(gpio.NewMock(), 5, 5, nil)
	assert.Error(t, err)
}
