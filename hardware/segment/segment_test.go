package segment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/qcounter/hardware/gpio"
)

var testConfig = Config{
	Segments: [SegmentCount]gpio.Line{1, 2, 3, 4, 5, 6, 7},
	Digits:   [DigitCount]gpio.Line{10, 11, 12, 13},
}

// orderPins records write order on top of Mock
type orderPins struct {
	*gpio.Mock
	log []string
}

func (self *orderPins) WriteDigital(l gpio.Line, v bool) {
	self.log = append(self.log, fmt.Sprintf("%d=%t", l, v))
	self.Mock.WriteDigital(l, v)
}

func TestGlyph(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "8", Digit(8).String())
	assert.Equal(t, "3", Digit(123).String())
	assert.Equal(t, "0", Digit(10).String())
	assert.Equal(t, " ", GlyphBlank.String())
	assert.Equal(t, "-", GlyphDash.String())
	assert.Equal(t, Glyph(0x7f), Digit(8))
}

func TestBankShow(t *testing.T) {
	t.Parallel()

	pins := gpio.NewMock()
	b, err := NewBank(pins, testConfig)
	require.NoError(t, err)
	assert.Equal(t, -1, b.Lit())

	b.Show(2, Digit(1))
	require.NoError(t, pins.Flush())
	assert.Equal(t, 2, b.Lit())
	// "1" is segments b,c
	for i, l := range testConfig.Segments {
		assert.Equal(t, i == 1 || i == 2, pins.Output(l), "segment=%d", i)
	}
	for i, l := range testConfig.Digits {
		assert.Equal(t, i == 2, pins.Output(l), "digit=%d", i)
	}

	b.Dark()
	require.NoError(t, pins.Flush())
	for _, l := range append(testConfig.Segments[:], testConfig.Digits[:]...) {
		assert.False(t, pins.Output(l))
	}
}

func TestBankSelectsOffFirst(t *testing.T) {
	t.Parallel()

	pins := &orderPins{Mock: gpio.NewMock()}
	b, err := NewBank(pins, testConfig)
	require.NoError(t, err)
	pins.log = nil
	b.Show(0, Digit(7))
	require.Len(t, pins.log, DigitCount+SegmentCount+1)
	for i := 0; i < DigitCount; i++ {
		assert.Equal(t, fmt.Sprintf("%d=false", testConfig.Digits[i]), pins.log[i])
	}
	assert.Equal(t, "10=true", pins.log[len(pins.log)-1])
}

func TestBankCommonAnode(t *testing.T) {
	t.Parallel()

	c := testConfig
	c.CommonAnode = true
	pins := gpio.NewMock()
	b, err := NewBank(pins, c)
	require.NoError(t, err)
	b.Show(3, GlyphDash)
	require.NoError(t, pins.Flush())
	for i, l := range c.Segments {
		assert.Equal(t, i != 6, pins.Output(l), "segment=%d", i)
	}
	assert.False(t, pins.Output(c.Digits[3]))
	assert.True(t, pins.Output(c.Digits[0]))
}

func TestBankDuplicateLine(t *testing.T) {
	t.Parallel()

	c := testConfig
	c.Digits[0] = c.Segments[0]
	_, err := NewBank(gpio.NewMock(), c)
	assert.Error(t, err)
}
