package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"resonant/bench"
	"resonant/field"
	"resonant/session"
	"resonant/wasmsig"
)

var stopLogging = make(chan struct{})

func main() {
	var (
		runBench  = flag.Bool("bench", false, "replay the canned sessions and print a benchmark report")
		benchJSON = flag.String("bench-json", "", "also dump benchmark results as JSON to this path")
		baseDir   = flag.String("dir", "", "base directory for session state (default: home)")
	)
	flag.Parse()

	if *runBench {
		results := bench.Run(bench.DefaultSessionCases())
		fmt.Print(bench.MarkdownReport(results))
		if *benchJSON != "" {
			if err := bench.DumpJSON(*benchJSON, results); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
		return
	}

	go func() {
		for {
			select {
			case msg := <-logChannel:
				switch m := msg.(type) {
				case LogEvent:
					fmt.Println(m.Msg)
				default:
					fmt.Println(m)
				}
			case <-stopLogging:
				return
			}
		}
	}()

	dir := *baseDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = home
	}

	store := session.NewStore(dir)
	restored := store.Load()

	opts := []field.ControllerOption{}
	if restored != nil {
		opts = append(opts,
			field.WithAttractor(restored.Attractor),
			field.WithPeak(restored.PeakHarmony),
		)
	}

	ctx := context.Background()
	shaper, err := wasmsig.Load(ctx, filepath.Join(dir, ".resonant", "signals.wasm"))
	if err != nil {
		Log("⚠️ Signal module disabled: %v", err)
	}
	if shaper != nil {
		defer shaper.Close(ctx)
		opts = append(opts, field.WithSignalFilter(shaper.Filter(ctx)))
		Log("🧩 Signal module loaded")
	}

	controller := field.NewController(nil, opts...)

	// Opening a file from the command line replaces restored session text.
	if path := flag.Arg(0); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
			os.Exit(1)
		}
		if restored == nil {
			restored = &session.Data{}
		}
		restored.Text = string(raw)
		restored.CurrentFile = path
	}

	close(stopLogging)
	if err := StartEditorUI(controller, store, restored); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
