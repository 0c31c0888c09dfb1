// Package engine wires the selector compiler, interner, NFA, arena,
// scheduler, trace decoder, and result collector into the single pipeline
// described by §2's data-flow diagram and expanded on in SPEC_FULL.md §4.8.
package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cssmatch/cssmatch/internal/config"
	"github.com/cssmatch/cssmatch/internal/dom"
	"github.com/cssmatch/cssmatch/internal/exitcode"
	"github.com/cssmatch/cssmatch/internal/interner"
	"github.com/cssmatch/cssmatch/internal/logger"
	"github.com/cssmatch/cssmatch/internal/match"
	"github.com/cssmatch/cssmatch/internal/nfa"
	"github.com/cssmatch/cssmatch/internal/result"
	"github.com/cssmatch/cssmatch/internal/selector"
	"github.com/cssmatch/cssmatch/internal/trace"
)

// Engine holds everything built once from the stylesheet: the interner, the
// compiled NFA, and the selector texts/accept cells the Result Collector
// needs. It is reused across every command application and recalculate.
type Engine struct {
	Interner *interner.Interner
	NFA      nfa.NFA
	Matches  []result.Match

	Arena     *dom.Arena
	Scheduler *match.Scheduler
}

// Compile parses the stylesheet (a JSON array of selector strings, §6) and
// builds the NFA. Selectors using unsupported constructs are dropped and
// reported as warnings (§4.2), never fatal.
func Compile(stylesheetPath string, log logger.Log) (*Engine, error) {
	data, err := os.ReadFile(stylesheetPath)
	if err != nil {
		return nil, exitcode.Set(fmt.Errorf("reading stylesheet: %w", err), 1)
	}

	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		return nil, exitcode.Set(fmt.Errorf("parsing stylesheet %s: %w", stylesheetPath, err), 1)
	}

	in := interner.New()
	builder := nfa.NewBuilder(in)

	var accepts []nfa.Cell
	var matches []result.Match

	for i, text := range texts {
		compound, err := selector.Parse(text)
		if err != nil {
			log.AddWarningWithID(logger.MsgID_CSS_UnsupportedSelector, stylesheetPath, i+1, err.Error())
			continue
		}
		accept := builder.Add(compound)
		accepts = append(accepts, accept)
		matches = append(matches, result.Match{Text: result.CompoundText(compound), Accept: accept})
	}

	built := builder.Build(accepts)

	arena := dom.NewArena(in, built.CellCount)
	return &Engine{
		Interner: in,
		NFA:      built,
		Matches:  matches,
		Arena:    arena,
		Scheduler: &match.Scheduler{NFA: built, Arena: arena},
	}, nil
}

// Run implements the full §6 CLI pipeline: compile the stylesheet, then
// decode and apply the trace file one command at a time, writing a results
// dump after every recalculate.
func Run(opts config.Options, log logger.Log, out io.Writer) error {
	eng, err := Compile(opts.StylesheetPath, log)
	if err != nil {
		return err
	}
	eng.Scheduler.DebugAssertions = opts.DebugAssertions

	f, err := os.Open(opts.TracePath)
	if err != nil {
		return exitcode.Set(fmt.Errorf("opening trace: %w", err), 1)
	}
	defer f.Close()

	return eng.RunTrace(f, log, out)
}

// RunTrace decodes commands from r and applies them in order. Fatal
// conditions (§7) abort the whole run with a nonzero exit code; unknown
// commands and layout_* frames are logged (or silently skipped) and never
// abort.
func (e *Engine) RunTrace(r io.Reader, log logger.Log, out io.Writer) error {
	dec := trace.NewDecoder(r)
	line := 0

	for {
		cmd, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return exitcode.Set(err, 1)
		}
		line++

		if err := e.apply(cmd, log, line); err != nil {
			return exitcode.Set(err, 1)
		}

		if cmd.Name == trace.Recalculate {
			e.Scheduler.Recompute()
			matches := result.Collect(e.Arena, e.Matches)
			if err := result.Write(out, matches); err != nil {
				return exitcode.Set(fmt.Errorf("writing results: %w", err), 1)
			}
		}
	}
}

func (e *Engine) apply(cmd trace.Command, log logger.Log, line int) error {
	switch cmd.Name {
	case trace.Init:
		e.Arena.Init(*cmd.Node)
		return nil

	case trace.Add:
		path := cmd.Path[:len(cmd.Path)-1]
		childIndex := cmd.Path[len(cmd.Path)-1]
		return e.Arena.Add(path, childIndex, *cmd.Node)

	case trace.Remove:
		return e.Arena.Remove(cmd.Path)

	case trace.ReplaceValue:
		return e.Arena.SetAttr(cmd.Path, dom.ReplaceValue, cmd.Key, cmd.Value, cmd.HasOldValue, cmd.OldValue)

	case trace.InsertValue:
		return e.Arena.SetAttr(cmd.Path, dom.InsertValue, cmd.Key, cmd.Value, cmd.HasOldValue, cmd.OldValue)

	case trace.DeleteValue:
		return e.Arena.SetAttr(cmd.Path, dom.DeleteValue, cmd.Key, cmd.Value, cmd.HasOldValue, cmd.OldValue)

	case trace.Recalculate, trace.Layout:
		return nil

	case trace.Unknown:
		log.AddWarningWithID(logger.MsgID_CSS_UnknownCommand, "trace", line, fmt.Sprintf("unknown command %q, skipping", cmd.RawName))
		return nil

	default:
		return nil
	}
}
