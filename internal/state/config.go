package state

import (
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/qcounter/hardware/input"
	"github.com/temoto/qcounter/hardware/lcd"
	"github.com/temoto/qcounter/hardware/segment"
	"github.com/temoto/qcounter/helpers"
	"github.com/temoto/qcounter/internal/display"
	"github.com/temoto/qcounter/internal/queue"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

const (
	DriverCdev   = "cdev"
	DriverPeriph = "periph"
	DriverMock   = "mock"
)

type PatternConfig struct {
	Audible int `hcl:"audible"`
	Visual  int `hcl:"visual"`
}

func (p PatternConfig) Pattern(name string) types.Pattern {
	return types.Pattern{Name: name, Audible: uint16(p.Audible), Visual: uint16(p.Visual)}
}

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Log struct {
		Level string `hcl:"level"`
	} `hcl:"log"`

	Hardware struct {
		Driver  string `hcl:"driver"` // cdev, periph, mock
		PinChip string `hcl:"pin_chip"`
		Pull    string `hcl:"pull"` // periph input bias
		Keypad  struct {
			ActiveLow bool     `hcl:"active_low"`
			Lines     []string `hcl:"lines"`
			Evdev     string   `hcl:"evdev"` // device path, replaces lines
			Codes     []int    `hcl:"codes"`
		} `hcl:"keypad"`
		Segment struct {
			Segments    []string `hcl:"segments"`
			Digits      []string `hcl:"digits"`
			CommonAnode bool     `hcl:"common_anode"`
		} `hcl:"segment"`
		Feedback struct {
			Buzzer string `hcl:"buzzer"`
			Lamp   string `hcl:"lamp"`
		} `hcl:"feedback"`
		HD44780 struct { //nolint:maligned
			Enable   bool       `hcl:"enable"`
			Codepage string     `hcl:"codepage"`
			Pinmap   lcd.PinMap `hcl:"pinmap"`
			Page1    bool       `hcl:"page1"`
			Width    int        `hcl:"width"`
		} `hcl:"hd44780"`
	} `hcl:"hardware"`

	Scheduler struct {
		TickUs       int `hcl:"tick_us"`
		StatInterval int `hcl:"stat_interval"`
	} `hcl:"scheduler"`

	Input struct {
		DebouncePolls int `hcl:"debounce_polls"`
		HoldPolls     int `hcl:"hold_polls"`
	} `hcl:"input"`

	Queue struct {
		Capacity   int `hcl:"capacity"`
		TokenLimit int `hcl:"token_limit"`
	} `hcl:"queue"`

	Display struct {
		DigitHoldTicks int `hcl:"digit_hold_ticks"`
		FlickerBudget  int `hcl:"flicker_budget"`
		ScrollTicks    int `hcl:"scroll_ticks"`
	} `hcl:"display"`

	Feedback struct {
		Issued  PatternConfig `hcl:"issued"`
		Serving PatternConfig `hcl:"serving"`
	} `hcl:"feedback"`

	UI display.Messages `hcl:"ui"`

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) TickPeriod() time.Duration {
	return time.Duration(c.Scheduler.TickUs) * time.Microsecond
}

func (c *Config) DisplayConfig() display.Config {
	return display.Config{
		DigitHoldTicks: uint16(c.Display.DigitHoldTicks),
		FlickerBudget:  uint16(c.Display.FlickerBudget),
		ScrollTicks:    uint16(c.Display.ScrollTicks),
		Messages:       c.UI,
	}
}

func setDefault(x *int, def int) {
	if *x == 0 {
		*x = def
	}
}

func setDefaultString(s *string, def string) {
	if *s == "" {
		*s = def
	}
}

func setDefaultLines(ss *[]string, first, n int) {
	if len(*ss) != 0 {
		return
	}
	*ss = make([]string, n)
	for i := range *ss {
		(*ss)[i] = strconv.Itoa(first + i)
	}
}

// Validate fills defaults and checks ranges. Errors are NotValid.
func (c *Config) Validate() error {
	errs := make([]error, 0, 8)
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, errors.NotValidf(format, args...))
		}
	}

	if _, err := log2.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, errors.NewNotValid(err, "config log.level"))
	}

	hw := &c.Hardware
	setDefaultString(&hw.Driver, DriverCdev)
	setDefaultString(&hw.PinChip, "/dev/gpiochip0")
	switch hw.Driver {
	case DriverCdev, DriverPeriph, DriverMock:
	default:
		check(false, "config hardware.driver=%s valid: cdev, periph, mock", hw.Driver)
	}
	setDefaultLines(&hw.Keypad.Lines, 0, input.ControlCount)
	check(len(hw.Keypad.Lines) == input.ControlCount, "config hardware.keypad.lines count=%d expected=%d", len(hw.Keypad.Lines), input.ControlCount)
	if hw.Keypad.Evdev != "" {
		check(len(hw.Keypad.Codes) == input.ControlCount, "config hardware.keypad.codes count=%d expected=%d", len(hw.Keypad.Codes), input.ControlCount)
		for _, code := range hw.Keypad.Codes {
			check(code > 0 && code <= 0xffff, "config hardware.keypad.codes code=%d", code)
		}
	}
	setDefaultLines(&hw.Segment.Segments, 8, segment.SegmentCount)
	setDefaultLines(&hw.Segment.Digits, 8+segment.SegmentCount, segment.DigitCount)
	check(len(hw.Segment.Segments) == segment.SegmentCount, "config hardware.segment.segments count=%d expected=%d", len(hw.Segment.Segments), segment.SegmentCount)
	check(len(hw.Segment.Digits) == segment.DigitCount, "config hardware.segment.digits count=%d expected=%d", len(hw.Segment.Digits), segment.DigitCount)
	setDefaultString(&hw.Feedback.Buzzer, "19")
	setDefaultString(&hw.Feedback.Lamp, "20")
	setDefault(&hw.HD44780.Width, 16)

	setDefault(&c.Scheduler.TickUs, 2000)
	check(c.Scheduler.TickUs > 0, "config scheduler.tick_us=%d", c.Scheduler.TickUs)
	check(c.Scheduler.StatInterval >= 0, "config scheduler.stat_interval=%d", c.Scheduler.StatInterval)

	setDefault(&c.Input.DebouncePolls, 10)
	setDefault(&c.Input.HoldPolls, 1000)
	check(c.Input.DebouncePolls > 0 && c.Input.DebouncePolls <= 0xffff, "config input.debounce_polls=%d", c.Input.DebouncePolls)
	check(c.Input.HoldPolls > 0 && c.Input.HoldPolls <= 0xffff, "config input.hold_polls=%d", c.Input.HoldPolls)

	setDefault(&c.Queue.Capacity, 16)
	setDefault(&c.Queue.TokenLimit, int(queue.DefaultTokenLimit))
	check(c.Queue.Capacity > 0 && c.Queue.Capacity <= queue.MaxCapacity, "config queue.capacity=%d valid: 1..%d", c.Queue.Capacity, queue.MaxCapacity)
	check(c.Queue.TokenLimit > 0 && c.Queue.TokenLimit <= int(queue.DefaultTokenLimit), "config queue.token_limit=%d", c.Queue.TokenLimit)

	setDefault(&c.Display.DigitHoldTicks, 1)
	setDefault(&c.Display.FlickerBudget, 1)
	check(c.Display.DigitHoldTicks > 0 && c.Display.DigitHoldTicks <= c.Display.FlickerBudget,
		"config display.digit_hold_ticks=%d flicker_budget=%d", c.Display.DigitHoldTicks, c.Display.FlickerBudget)
	check(c.Display.FlickerBudget <= 0xffff, "config display.flicker_budget=%d", c.Display.FlickerBudget)
	check(c.Display.ScrollTicks >= 0 && c.Display.ScrollTicks <= 0xffff, "config display.scroll_ticks=%d", c.Display.ScrollTicks)

	fb := &c.Feedback
	if fb.Issued == (PatternConfig{}) {
		fb.Issued = PatternConfig{Audible: 50}
	}
	if fb.Serving == (PatternConfig{}) {
		fb.Serving = PatternConfig{Audible: 100, Visual: 500}
	}
	for _, p := range []PatternConfig{fb.Issued, fb.Serving} {
		check(p.Audible >= 0 && p.Audible <= 0xffff && p.Visual >= 0 && p.Visual <= 0xffff, "config feedback pattern=%#v", p)
	}

	c.UI = c.UI.WithDefaults()
	return helpers.FoldErrors(errs)
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

// ReadConfig reads and validates config. Includes are relative to first name.
func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		return nil, errors.Errorf("code error ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		if err := osfs.SetBase(dir); err != nil {
			return nil, err
		}
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	if len(errs) == 0 {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
