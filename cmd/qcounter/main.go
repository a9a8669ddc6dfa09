package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/temoto/qcounter/cmd/qcounter/run"
	"github.com/temoto/qcounter/cmd/qcounter/sim"
	"github.com/temoto/qcounter/cmd/qcounter/subcmd"
	"github.com/temoto/qcounter/internal/state"
	"github.com/temoto/qcounter/log2"
)

var log = log2.NewStderr(log2.LDebug)

var modules = []subcmd.Mod{
	run.Mod,
	sim.Mod,
}

func main() {
	flagset := flag.NewFlagSet("qcounter", flag.ContinueOnError)
	flagConfig := flagset.String("config", "qcounter.hcl", "")
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "Usage: qcounter [option] [command]\n\nOptions:\n")
		flagset.PrintDefaults()
		fmt.Fprintf(flagset.Output(), "\nCommands: run (default), sim\n")
	}
	if err := flagset.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatal(err)
	}

	command := flagset.Arg(0)
	if command == "" {
		command = run.Mod.Name
	}
	mod, err := subcmd.Parse(command, modules)
	if err != nil {
		log.Fatal(err)
	}

	if subcmd.SdNotify("start") {
		// we're under systemd, assume systemd journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	log.Infof("qcounter command=%s", mod.Name)
	ctx, g := state.NewContext(log)
	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	if err := mod.Main(ctx, config); err != nil {
		g.Fatal(err)
	}
}
