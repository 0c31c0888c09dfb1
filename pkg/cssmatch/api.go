// Package cssmatch is the public entry point for embedding the incremental
// selector matcher in another Go program, mirroring the thin pkg/api layer
// esbuild exposes over its internal packages.
package cssmatch

import (
	"io"

	"github.com/cssmatch/cssmatch/internal/config"
	"github.com/cssmatch/cssmatch/internal/engine"
	"github.com/cssmatch/cssmatch/internal/logger"
)

// Options configures one run of the matcher over a stylesheet/trace pair.
type Options struct {
	StylesheetPath  string
	TracePath       string
	DebugAssertions bool
}

// Message is one non-fatal diagnostic produced while compiling the
// stylesheet or applying the trace (e.g. an unsupported selector or an
// unknown trace command).
type Message struct {
	Text string
	File string
	Line int
}

// Result holds the warnings a Run call collected along the way. The results
// dump is not part of Result: Run streams it to out as each recalculate
// happens. Warnings is what you'd otherwise lose by using
// logger.NewStderrLog.
type Result struct {
	Warnings []Message
}

// Run compiles opts.StylesheetPath and replays opts.TracePath against it,
// writing the §6 results dump to out after every recalculate command.
func Run(opts Options, out io.Writer) (Result, error) {
	log := logger.NewDeferLog()

	err := engine.Run(config.Options{
		StylesheetPath:  opts.StylesheetPath,
		TracePath:       opts.TracePath,
		DebugAssertions: opts.DebugAssertions,
	}, log, out)

	var warnings []Message
	for _, msg := range log.Done() {
		if msg.Kind != logger.Warning {
			continue
		}
		m := Message{Text: msg.Text}
		if msg.Location != nil {
			m.File = msg.Location.File
			m.Line = msg.Location.Line
		}
		warnings = append(warnings, m)
	}

	return Result{Warnings: warnings}, err
}
