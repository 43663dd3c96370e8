package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/junbin-yang/go-smallfsm/pkg/statemachine"
)

func runRun(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	payload := fs.String("payload", "", "JSON object passed to every transition")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: smallfsm run [options] <definition> <state>...")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Begin the machine and transit through the given states in order")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintln(stderr, "  smallfsm run player.yml ready playing paused")
		fmt.Fprintln(stderr, `  smallfsm run -payload '{"user":"tom"}' player.yml ready`)
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 2
	}

	p, err := parsePayload(*payload)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid payload: %v\n", err)
		return 2
	}

	log, cleanup, err := common.newLogger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Settings error: %v\n", err)
		return 1
	}
	defer cleanup()

	path := fs.Arg(0)
	_, m, err := loadMachine(path, stdout, log)
	if err != nil {
		printFailure(stderr, path, err)
		return 1
	}

	ctx := context.Background()
	m.Begin(ctx)
	fmt.Fprintf(stdout, "begin %s\n", m.State())

	for _, arg := range fs.Args()[1:] {
		to := statemachine.State(arg)
		fmt.Fprintf(stdout, "%s %s %s\n", m.State(), statemachine.Arrow, to)
		if err := m.Transit(ctx, to, p); err != nil {
			fmt.Fprintf(stderr, "✗ transit to %q: [%s] %v\n", to, errorKind(err), err)
			return 1
		}
	}

	fmt.Fprintf(stdout, "final %s\n", m.State())
	fmt.Fprintf(stdout, "history %s\n", joinStates(m.History()))
	return 0
}

// parsePayload 解析 JSON 对象，空串返回 nil
func parsePayload(s string) (statemachine.Payload, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var p statemachine.Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return p, nil
}

func joinStates(states []statemachine.State) string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}
	return strings.Join(names, " ")
}
