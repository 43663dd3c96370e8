package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/junbin-yang/go-smallfsm/pkg/config"
	"github.com/junbin-yang/go-smallfsm/pkg/definition"
	"github.com/junbin-yang/go-smallfsm/pkg/logger"
)

func runWatch(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	debounce := fs.Duration("debounce", 300*time.Millisecond, "Delay before rebuilding after a change")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: smallfsm watch [options] <definition>")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Check a definition and check it again every time the file changes")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
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
	out := &lockedWriter{w: stdout}
	errOut := &lockedWriter{w: stderr}

	cm := config.NewManager(&definition.Definition{},
		config.WithEnvPrefix(definition.EnvPrefix),
		config.WithConfigFormats(&config.YAMLSerializer{}, &config.JSONSerializer{}),
		config.WithConfigWatch(true, *debounce),
		config.WithLogger(log),
	)
	defer cm.Close()

	report := func(def *definition.Definition) {
		m, err := buildChecked(def, io.Discard, log)
		if err != nil {
			printFailure(errOut, path, err)
			return
		}
		printSummary(out, path, def, m)
	}

	cm.OnChange(func(_, next interface{}) {
		def := next.(*definition.Definition)
		log.Info("definition reloaded", logger.String("path", path), logger.String("machine", def.Name))
		report(def)
	})

	if err := cm.LoadConfig(path); err != nil {
		printFailure(errOut, path, err)
		return 1
	}
	current, _ := cm.GetConfig()
	report(current.(*definition.Definition))

	fmt.Fprintf(out, "watching %s\n", path)
	<-ctx.Done()
	return 0
}
