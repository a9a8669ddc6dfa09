// Support sub-commands in qcounter application.
// It's simple but fine so far.
package subcmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/qcounter/internal/state"
)

type Mod struct {
	Name string
	Main func(context.Context, *state.Config) error
}

func Parse(command string, modules []Mod) (*Mod, error) {
	if command == "" {
		return nil, fmt.Errorf("empty command")
	}

	var found *Mod
	names := make([]string, 0, len(modules))
	for i := range modules {
		m := &modules[i]
		if m.Name == "" {
			panic(fmt.Sprintf("code error Name='' module=%#v", m))
		}
		names = append(names, m.Name)
		if found == nil && command == m.Name {
			found = m
		}
	}
	if found == nil {
		return nil, fmt.Errorf("unknown command='%s' valid: %s", command, strings.Join(names, ", "))
	}
	return found, nil
}

func SdNotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
