package subcmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/qcounter/internal/state"
)

func TestParse(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, *state.Config) error { return nil }
	mods := []Mod{{Name: "run", Main: noop}, {Name: "sim", Main: noop}}
	m, err := Parse("sim", mods)
	require.NoError(t, err)
	assert.Equal(t, "sim", m.Name)

	_, err = Parse("", mods)
	assert.Error(t, err)
	_, err = Parse("vmc", mods)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid: run, sim")
}
