// Package engine evaluates apparatus descriptions written in a small Lisp
// DSL. It wraps zygomys in a sandboxed environment and produces a volume
// tree from user source code, drawing materials from a material.Factory.
package engine

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/sirupsen/logrus"

	"github.com/chazu/g4basic/pkg/geometry"
	"github.com/chazu/g4basic/pkg/material"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use; each
// evaluation creates a fresh sandboxed environment for determinism.
type Engine struct {
	factory *material.Factory
	timeout time.Duration
	log     *logrus.Entry

	mu         sync.Mutex
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout replaces EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the logger used to trace evaluations.
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine whose programs draw materials from f.
func NewEngine(f *material.Factory, opts ...Option) *Engine {
	e := &Engine{factory: f, timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		e.log = logrus.NewEntry(quiet)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new volume tree. It is
// meant for interactive editing: starting a newer evaluation supersedes any
// still in flight.
//
// Return semantics:
//   - On success: returns tree + nil errors + nil error
//   - On parse/eval failure in user code: returns nil tree + eval errors + nil error
//   - On construction failure (unknown material, invalid solid), timeout,
//     supersession or panic: returns nil + nil + error
func (e *Engine) Evaluate(source string) (*geometry.Tree, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	stale := func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return gen != e.generation
	}
	return waitWithTimeout(e.start(source), e.timeout, stale)
}

// Run is Evaluate without supersession, for callers running the same
// program from several goroutines.
func (e *Engine) Run(source string) (*geometry.Tree, []EvalError, error) {
	return waitWithTimeout(e.start(source), e.timeout, nil)
}

func (e *Engine) start(source string) <-chan evalResult {
	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		t, evalErrs, err := e.evaluate(source)
		ch <- evalResult{tree: t, errors: evalErrs, err: err}
	}()
	return ch
}

// sandboxMu serializes sandbox setup: zygomys initializes package-level
// operator tables every time an environment is created.
var sandboxMu sync.Mutex

func newSandbox(st *evalState) *zygo.Zlisp {
	sandboxMu.Lock()
	defer sandboxMu.Unlock()
	env := zygo.NewZlispSandbox()
	registerBuiltins(env, st)
	return env
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*geometry.Tree, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, []EvalError{{Message: "program defines no world"}}, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	st := &evalState{factory: e.factory}
	env := newSandbox(st)
	defer env.Stop()

	if err := env.LoadString(prelude + preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err := env.Run()
	if st.err != nil {
		// A builtin failed for a reason that is not the program's syntax.
		return nil, nil, st.err
	}
	if err != nil {
		return nil, parseZygomysError(err), nil
	}
	if st.tree == nil {
		return nil, []EvalError{{Message: "program defines no world"}}, nil
	}

	e.log.WithFields(logrus.Fields{
		"tree":    st.tree.ID(),
		"volumes": st.tree.Len(),
	}).Debug("program evaluated")
	return st.tree, nil, nil
}

// Script binds an engine to a program so it can be constructed repeatedly,
// like detector.Builder.
type Script struct {
	engine *Engine
	source string
}

// Script returns source bound to e.
func (e *Engine) Script(source string) *Script {
	return &Script{engine: e, source: source}
}

// Construct runs the script. Eval errors are joined into the returned error.
func (s *Script) Construct() (*geometry.Tree, error) {
	tree, evalErrs, err := s.engine.Run(s.source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, ee := range evalErrs {
			msgs[i] = ee.Error()
		}
		return nil, fmt.Errorf("evaluate: %s", strings.Join(msgs, "; "))
	}
	return tree, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			// The prelude occupies the first lines of the loaded program.
			if line > preludeLines {
				line -= preludeLines
			}
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
