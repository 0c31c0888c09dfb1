package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cssmatch/cssmatch/internal/config"
	"github.com/cssmatch/cssmatch/internal/engine"
	"github.com/cssmatch/cssmatch/internal/exitcode"
	"github.com/cssmatch/cssmatch/internal/logger"
)

var helpText = func(colors logger.Colors) string {
	return `
` + colors.Bold + `Usage:` + colors.Reset + `
  cssmatch --stylesheet=FILE --trace=FILE [options]

` + colors.Bold + `Options:` + colors.Reset + `
  --stylesheet=FILE      A JSON array of selector texts
  --trace=FILE           A JSON-lines stream of DOM mutation commands
  --scenario-dir=DIR     Resolve stylesheet.json/trace.jsonl relative to DIR
                         (overrides the CSSMATCH_SCENARIO_DIR environment
                         variable; --stylesheet/--trace still win if given)
  --debug-assertions     Re-verify every skipped node against a full
                         recompute and abort if the skip was unsound
  -h, --help             Print this help text
`
}

func main() {
	osArgs := os.Args[1:]
	opts := config.Load()

	for _, arg := range osArgs {
		switch {
		case arg == "-h", arg == "-help", arg == "--help":
			fmt.Print(helpText(logger.TerminalColors))
			os.Exit(0)

		case strings.HasPrefix(arg, "--stylesheet="):
			opts.StylesheetPath = arg[len("--stylesheet="):]

		case strings.HasPrefix(arg, "--trace="):
			opts.TracePath = arg[len("--trace="):]

		case strings.HasPrefix(arg, "--scenario-dir="):
			opts.ScenarioDir = arg[len("--scenario-dir="):]

		case arg == "--debug-assertions":
			opts.DebugAssertions = true

		default:
			logger.PrintErrorToStderr(fmt.Sprintf("unknown argument: %s", arg))
			os.Exit(1)
		}
	}

	if opts.ScenarioDir != "" {
		if opts.StylesheetPath == "" {
			opts.StylesheetPath = filepath.Join(opts.ScenarioDir, "stylesheet.json")
		}
		if opts.TracePath == "" {
			opts.TracePath = filepath.Join(opts.ScenarioDir, "trace.jsonl")
		}
	}

	if opts.StylesheetPath == "" || opts.TracePath == "" {
		logger.PrintErrorToStderr("a stylesheet and a trace are required (--stylesheet, --trace, or --scenario-dir)")
		os.Exit(1)
	}

	log := logger.NewStderrLog()
	err := engine.Run(opts, log, os.Stdout)
	if err != nil {
		logger.PrintErrorToStderr(err.Error())
	}
	exitcode.Exit(err)
}
