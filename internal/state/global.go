// Package state holds configuration and lazily built process-wide parts.
package state

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/qcounter/hardware/input"
	"github.com/temoto/qcounter/internal/display"
	"github.com/temoto/qcounter/internal/queue"
	"github.com/temoto/qcounter/internal/scheduler"
	"github.com/temoto/qcounter/internal/types"
	"github.com/temoto/qcounter/log2"
)

type Global struct {
	Alive    *alive.Alive
	Config   *Config
	Hardware hardware // hardware.go
	Log      *log2.Log

	engine struct {
		once
		store *queue.Store
		mux   *display.Multiplexer
		loop  *scheduler.Loop
	}
}

const ContextKey = "run/state-global"

func NewContext(log *log2.Log) (context.Context, *Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}
	g := &Global{
		Alive: alive.NewAlive(),
		Log:   log,
	}
	ctx := context.WithValue(context.Background(), ContextKey, g)
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg
	if cfg.Log.Level != "" {
		level, err := log2.ParseLevel(cfg.Log.Level)
		if err != nil {
			return errors.Annotate(err, "config: log.level")
		}
		g.Log.SetLevel(level)
	}
	_, err := g.Loop()
	return err
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Fatal(err)
	}
}

// Loop builds engine from hardware parts once.
func (g *Global) Loop() (*scheduler.Loop, error) {
	x := &g.engine // short alias
	_ = x.do(func() error {
		cfg := g.Config
		pins, err := g.Pins()
		if err != nil {
			return err
		}
		source, err := g.Keypad()
		if err != nil {
			return err
		}
		digits, err := g.Digits()
		if err != nil {
			return err
		}
		text, err := g.TextDisplay()
		if err != nil {
			return err
		}
		seq, err := g.Feedback()
		if err != nil {
			return err
		}
		if x.store, err = queue.NewStore(cfg.Queue.Capacity, types.Token(cfg.Queue.TokenLimit)); err != nil {
			return errors.Annotate(err, "config: queue")
		}
		if x.mux, err = display.NewMultiplexer(x.store, digits, text, cfg.DisplayConfig(), g.Log.Clone(log2.LInfo)); err != nil {
			return errors.Annotate(err, "config: display")
		}
		issuer := queue.NewIssuer(x.store, seq, x.mux, cfg.Feedback.Issued.Pattern("issued"))
		ctl := queue.NewController(x.store, seq, x.mux, cfg.Feedback.Serving.Pattern("serving"))
		x.loop, err = scheduler.NewLoop(scheduler.Parts{
			Pins:       pins,
			Source:     source,
			Debouncer:  input.NewDebouncer(uint16(cfg.Input.DebouncePolls), uint16(cfg.Input.HoldPolls)),
			Store:      x.store,
			Issuer:     issuer,
			Controller: ctl,
			Feedback:   seq,
			Display:    x.mux,
		}, scheduler.Config{
			Period:       cfg.TickPeriod(),
			StatInterval: uint64(cfg.Scheduler.StatInterval),
		}, g.Log)
		return errors.Annotate(err, "scheduler")
	})
	return x.loop, x.err
}

// Store and Display are valid after successful Loop().
func (g *Global) Store() *queue.Store          { return g.engine.store }
func (g *Global) Display() *display.Multiplexer { return g.engine.mux }

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(errors.ErrorStack(err))
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Log.Fatal(err)
		os.Exit(1)
	}
}

func (g *Global) Stop() {
	g.Alive.Stop()
}

func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}
