package logger

// Diagnostics are streamed through a Log as they happen rather than being
// collected into one big slice and sorted at the end. This mirrors the way
// the rest of this toolchain treats errors: cheap to produce, cheap to
// stream, sorted only when a human is going to read them.

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

type Log struct {
	AddMsg    func(Msg)
	HasErrors func() bool
	Done      func() []Msg
}

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Note
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		panic("internal error")
	}
}

// MsgID groups non-fatal diagnostics so a caller could in principle silence
// or elevate a whole category. Errors never get an ID: you cannot downgrade
// an error into a warning and still have the command do the right thing.
type MsgID uint8

const (
	MsgID_None MsgID = iota
	MsgID_CSS_UnsupportedSelector
	MsgID_CSS_UnknownCommand
)

type Msg struct {
	Kind     MsgKind
	ID       MsgID
	Text     string
	Location *MsgLocation
}

// MsgLocation points into one of the two input files (stylesheet or trace),
// not into a byte range within an AST node - this kernel has no need to
// underline a token, just to say which file/line a diagnostic came from.
type MsgLocation struct {
	File string
	Line int // 1-based; 0 means "no specific line"
}

type SortableMsgs []Msg

func (a SortableMsgs) Len() int      { return len(a) }
func (a SortableMsgs) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a SortableMsgs) Less(i, j int) bool {
	ai, aj := a[i], a[j]
	if ai.Location == nil || aj.Location == nil {
		return ai.Location == nil && aj.Location != nil
	}
	if ai.Location.File != aj.Location.File {
		return ai.Location.File < aj.Location.File
	}
	if ai.Location.Line != aj.Location.Line {
		return ai.Location.Line < aj.Location.Line
	}
	return ai.Text < aj.Text
}

type TerminalInfo struct {
	IsTTY           bool
	UseColorEscapes bool
	Width           int
	Height          int
}

type Colors struct {
	Reset string
	Bold  string
	Dim   string

	Red    string
	Green  string
	Yellow string
	Cyan   string
}

var TerminalColors = Colors{
	Reset:  "\033[0m",
	Bold:   "\033[1m",
	Dim:    "\033[37m",
	Red:    "\033[31m",
	Green:  "\033[32m",
	Yellow: "\033[33m",
	Cyan:   "\033[36m",
}

func hasNoColorEnvironmentVariable() bool {
	for _, key := range os.Environ() {
		if strings.HasPrefix(key, "NO_COLOR=") {
			return true
		}
	}
	return false
}

func (msg Msg) String(colors Colors) string {
	sb := strings.Builder{}

	kindColor := colors.Cyan
	switch msg.Kind {
	case Error:
		kindColor = colors.Red
	case Warning:
		kindColor = colors.Yellow
	}

	if msg.Location != nil && msg.Location.File != "" {
		if msg.Location.Line > 0 {
			fmt.Fprintf(&sb, "%s%s:%d: %s", colors.Bold, msg.Location.File, msg.Location.Line, colors.Reset)
		} else {
			fmt.Fprintf(&sb, "%s%s: %s", colors.Bold, msg.Location.File, colors.Reset)
		}
	}

	fmt.Fprintf(&sb, "%s%s%s: %s", kindColor, msg.Kind.String(), colors.Reset, msg.Text)
	return sb.String()
}

// NewStderrLog streams messages straight to stderr as they're added. This is
// what the CLI uses: diagnostics should be visible immediately, not buffered
// until the end of a run that might never finish cleanly.
func NewStderrLog() Log {
	var mutex sync.Mutex
	hasErrors := false
	colors := TerminalColors
	if !GetTerminalInfo(os.Stderr).UseColorEscapes || hasNoColorEnvironmentVariable() {
		colors = Colors{}
	}

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			if msg.Kind == Error {
				hasErrors = true
			}
			fmt.Fprintln(os.Stderr, msg.String(colors))
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			return hasErrors
		},
		Done: func() []Msg { return nil },
	}
}

// NewDeferLog collects messages instead of printing them, for tests and for
// callers (like pkg/cssmatch.Run) that want to inspect what would have
// been reported before deciding whether to print it at all.
func NewDeferLog() Log {
	var mutex sync.Mutex
	var msgs SortableMsgs

	return Log{
		AddMsg: func(msg Msg) {
			mutex.Lock()
			defer mutex.Unlock()
			msgs = append(msgs, msg)
		},
		HasErrors: func() bool {
			mutex.Lock()
			defer mutex.Unlock()
			for _, msg := range msgs {
				if msg.Kind == Error {
					return true
				}
			}
			return false
		},
		Done: func() []Msg {
			mutex.Lock()
			defer mutex.Unlock()
			sorted := append(SortableMsgs{}, msgs...)
			sort.Stable(sorted)
			return []Msg(sorted)
		},
	}
}

func (log Log) AddError(file string, line int, text string) {
	log.AddMsg(Msg{Kind: Error, Text: text, Location: &MsgLocation{File: file, Line: line}})
}

func (log Log) AddErrorNoLocation(text string) {
	log.AddMsg(Msg{Kind: Error, Text: text})
}

func (log Log) AddWarningWithID(id MsgID, file string, line int, text string) {
	log.AddMsg(Msg{Kind: Warning, ID: id, Text: text, Location: &MsgLocation{File: file, Line: line}})
}

// PrintErrorToStderr is for errors discovered before a Log exists yet, e.g.
// while parsing command-line flags.
func PrintErrorToStderr(text string) {
	colors := TerminalColors
	if !GetTerminalInfo(os.Stderr).UseColorEscapes || hasNoColorEnvironmentVariable() {
		colors = Colors{}
	}
	fmt.Fprintln(os.Stderr, Msg{Kind: Error, Text: text}.String(colors))
}
