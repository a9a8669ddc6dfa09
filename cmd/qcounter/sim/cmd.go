// Simulated counter on mock hardware, driven by text commands.
package sim

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/temoto/qcounter/cmd/qcounter/subcmd"
	"github.com/temoto/qcounter/hardware/gpio"
	"github.com/temoto/qcounter/hardware/input"
	"github.com/temoto/qcounter/helpers/cli"
	"github.com/temoto/qcounter/internal/scheduler"
	"github.com/temoto/qcounter/internal/state"
	"github.com/temoto/qcounter/internal/types"
)

const usage = `commands:
- press CONTROL [POLLS]  hold CONTROL for POLLS ticks (default debounce window), then release
- hold CONTROL           long press, hold_polls ticks
- tick [N]               run N scheduler ticks (default 1)
- release CATEGORY       operator release of serving token
- reset CATEGORY         operator reset of queue and counter
- show                   print digits, text, outputs and stat
- help
CONTROL is token/CATEGORY or call/CATEGORY, CATEGORY is withdraw, account, loan, inquiry
`

var Mod = subcmd.Mod{Name: "sim", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	forceMock(config)
	g.MustInit(ctx, config)

	sh, err := newShell(g, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprint(sh.w, usage)
	if err := cli.MainLoop("qcounter-sim", sh.exec, cli.FilterCompleter(suggests)); err != nil {
		return errors.Annotate(err, "sim input")
	}
	return errors.Annotate(g.CloseHardware(), "close hardware")
}

var suggests = []prompt.Suggest{
	{Text: "press"},
	{Text: "hold"},
	{Text: "tick"},
	{Text: "release"},
	{Text: "reset"},
	{Text: "show"},
	{Text: "help"},
}

// forceMock keeps behavior options, replaces every device with in-memory one.
func forceMock(config *state.Config) {
	config.Hardware.Driver = state.DriverMock
	config.Hardware.Keypad.Evdev = ""
	config.Hardware.HD44780.Enable = false
}

type shell struct {
	g     *state.Global
	w     io.Writer
	loop  *scheduler.Loop
	pins  *gpio.Mock
	lines []gpio.Line
}

func newShell(g *state.Global, w io.Writer) (*shell, error) {
	loop, err := g.Loop()
	if err != nil {
		return nil, errors.Annotate(err, "sim engine")
	}
	pins := g.MockPins()
	if pins == nil {
		return nil, errors.Errorf("sim requires hardware.driver=mock")
	}
	lines, err := gpio.ParseLines(g.Config.Hardware.Keypad.Lines)
	if err != nil {
		return nil, errors.Annotate(err, "config: hardware.keypad.lines")
	}
	self := &shell{g: g, w: w, loop: loop, pins: pins, lines: lines}
	for c := input.Control(0); c < input.ControlCount; c++ {
		self.set(c, false)
	}
	return self, nil
}

func (self *shell) exec(line string) {
	if err := self.run(line); err != nil {
		self.g.Log.Error(errors.ErrorStack(err))
	}
}

func (self *shell) run(line string) error {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	args := words[1:]
	switch words[0] {
	case "press":
		if len(args) < 1 || len(args) > 2 {
			return errors.NotValidf("syntax: press CONTROL [POLLS]")
		}
		c, err := input.ParseControl(args[0])
		if err != nil {
			return err
		}
		polls := self.g.Config.Input.DebouncePolls
		if len(args) == 2 {
			if polls, err = strconv.Atoi(args[1]); err != nil || polls < 0 {
				return errors.NotValidf("polls=%s", args[1])
			}
		}
		self.press(c, polls)

	case "hold":
		if len(args) != 1 {
			return errors.NotValidf("syntax: hold CONTROL")
		}
		c, err := input.ParseControl(args[0])
		if err != nil {
			return err
		}
		self.press(c, self.g.Config.Input.HoldPolls)

	case "tick":
		n := 1
		if len(args) == 1 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
				return errors.NotValidf("tick n=%s", args[0])
			}
		}
		self.ticks(n)

	case "release", "reset":
		if len(args) != 1 {
			return errors.NotValidf("syntax: %s CATEGORY", words[0])
		}
		cat, err := types.ParseCategory(args[0])
		if err != nil {
			return err
		}
		if words[0] == "release" {
			tok := self.loop.Release(cat)
			fmt.Fprintf(self.w, "released category=%s token=%d\n", cat.String(), tok)
		} else {
			self.loop.Reset(cat)
		}
		// operator actions take effect on display in next tick
		self.ticks(1)

	case "show":
		self.show()

	case "help":
		fmt.Fprint(self.w, usage)

	default:
		return errors.NotFoundf("command=%s", words[0])
	}
	return nil
}

// press holds control for polls ticks, then releases for one tick.
func (self *shell) press(c input.Control, polls int) {
	self.set(c, true)
	self.ticks(polls)
	self.set(c, false)
	self.ticks(1)
}

func (self *shell) ticks(n int) {
	for i := 0; i < n; i++ {
		self.loop.Tick()
	}
}

func (self *shell) set(c input.Control, pressed bool) {
	self.pins.SetInput(self.lines[c], pressed != self.g.Config.Hardware.Keypad.ActiveLow)
}

func (self *shell) show() {
	store := self.g.Store()
	fmt.Fprintf(self.w, "%s\n", self.g.Display().Frame().String())
	for _, c := range types.Categories {
		cs := store.Counter(c)
		fmt.Fprintf(self.w, "%-8s next=%d current=%d exhausted=%t waiting=%v\n",
			c.Key(), cs.Next, cs.Current, cs.Exhausted, store.Waiting(c))
	}
	if dev := self.g.MockTextDevice(); dev != nil {
		fmt.Fprintf(self.w, "lcd:\n%s\n", dev.String())
	}
	deb := self.loop.Debouncer()
	fmt.Fprintf(self.w, "digit pos=%d debounce=%d hold=%d\n", self.g.Display().Pos(), deb.Window(), deb.Hold())
	if err := self.loop.Check(); err != nil {
		fmt.Fprintf(self.w, "check error: %v\n", err)
	} else {
		fmt.Fprintf(self.w, "check ok\n")
	}
	fmt.Fprintf(self.w, "pins %s\n", self.pins.String())
	fmt.Fprintf(self.w, "stat %s\n", self.loop.Stat().String())
}
