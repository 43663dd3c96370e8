package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/junbin-yang/go-smallfsm/pkg/statemachine"
)

func runInspect(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	begin := fs.Bool("begin", false, "Begin the machine before taking the snapshot")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: smallfsm inspect [options] <definition> [state...]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Print the machine snapshot as YAML, optionally after replaying states")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	log, cleanup, err := common.newLogger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Settings error: %v\n", err)
		return 1
	}
	defer cleanup()

	path := fs.Arg(0)
	_, m, err := loadMachine(path, io.Discard, log)
	if err != nil {
		printFailure(stderr, path, err)
		return 1
	}

	ctx := context.Background()
	if *begin {
		m.Begin(ctx)
	}
	for _, arg := range fs.Args()[1:] {
		if err := m.Transit(ctx, statemachine.State(arg), nil); err != nil {
			fmt.Fprintf(stderr, "✗ transit to %q: [%s] %v\n", arg, errorKind(err), err)
			return 1
		}
	}

	data, err := yaml.Marshal(m.Snapshot())
	if err != nil {
		fmt.Fprintf(stderr, "Marshal snapshot failed: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(data)
	return 0
}
