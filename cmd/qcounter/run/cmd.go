// Main, counter facing mode of operation.
package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/qcounter/cmd/qcounter/subcmd"
	"github.com/temoto/qcounter/internal/state"
)

var Mod = subcmd.Mod{Name: "run", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	g.Log.Debugf("config=%+v", g.Config)

	loop, err := g.Loop()
	if err != nil {
		return errors.Annotate(err, "engine init")
	}

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigch:
			g.Log.Infof("signal=%s stopping", sig.String())
			g.Stop()
		case <-g.Alive.StopChan():
		}
	}()

	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Debugf("qcounter init complete")

	loop.Run(g.Alive)
	g.Alive.Wait()
	signal.Stop(sigch)
	g.Log.Infof("stat %s", loop.Stat().String())
	return errors.Annotate(g.CloseHardware(), "close hardware")
}
