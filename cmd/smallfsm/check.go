package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/junbin-yang/go-smallfsm/pkg/definition"
	"github.com/junbin-yang/go-smallfsm/pkg/statemachine"
)

func runCheck(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: smallfsm check [options] <definition>")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Build the machine described by a definition file and list its rules")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Examples:")
		fmt.Fprintln(stderr, "  smallfsm check player.yml")
		fmt.Fprintln(stderr, "  smallfsm check -log-level debug player.json")
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
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
	def, m, err := loadMachine(path, io.Discard, log)
	if err != nil {
		printFailure(stderr, path, err)
		return 1
	}
	printSummary(stdout, path, def, m)
	return 0
}

func printFailure(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "✗ %s: [%s] %v\n", path, errorKind(err), err)
}

// printSummary 输出机器概要与规则列表（按注册顺序）
func printSummary(w io.Writer, path string, def *definition.Definition, m *statemachine.Machine) {
	rules := m.Rules()
	fmt.Fprintf(w, "✓ %s: machine %q, initial %q, %d states, %d rules\n",
		path, def.Name, m.Initial(), len(m.States()), len(rules))

	for _, r := range rules {
		var flags []string
		if r.Generated {
			flags = append(flags, "generated")
		}
		if r.Overwritable {
			flags = append(flags, "overwritable")
		}
		if r.HasAction {
			flags = append(flags, "action")
		}

		line := "  " + strings.ReplaceAll(r.Key, statemachine.Separator, " "+statemachine.Arrow+" ")
		if len(r.Events) > 0 {
			line += "  events=" + strings.Join(r.Events, ",")
		}
		if len(flags) > 0 {
			line += "  (" + strings.Join(flags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
}
