package state

import (
	"context"
	"os"
	"testing"

	"github.com/temoto/qcounter/log2"
)

// NewTestContext builds Global on mock hardware from inline config.
func NewTestContext(t testing.TB, confString string) (context.Context, *Global) {
	fs := NewMockFullReader(map[string]string{
		"test-base":   `hardware { driver = "mock" }`,
		"test-inline": confString,
	})

	var log *log2.Log
	if os.Getenv("qcounter_test_log_stderr") == "1" {
		log = log2.NewStderr(log2.LDebug) // useful with panics
	} else {
		log = log2.NewTest(t, log2.LDebug)
	}
	log.SetFlags(log2.LTestFlags)
	ctx, g := NewContext(log)
	cfg, err := ReadConfig(log, fs, "test-base", "test-inline")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Init(ctx, cfg); err != nil {
		t.Fatal(err)
	}
	return ctx, g
}
