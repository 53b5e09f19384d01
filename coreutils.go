// Package coreutils is a registry of text utilities. Each utility lives in
// its own package and registers itself from init, so a binary only needs to
// import the utilities it wants to ship.
package coreutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cmdsMu sync.Mutex
var cmds = make(map[string]Runnable)

// ErrUnknownCommand is returned by Run for names nothing registered.
var ErrUnknownCommand = errors.New("unknown command")

func Register(name string, r Runnable) {
	cmdsMu.Lock()
	defer cmdsMu.Unlock()
	if r == nil {
		panic("Register called with nil Runnable: " + name)
	}
	if _, ok := cmds[name]; ok {
		panic("Register called with identical name: " + name)
	}
	cmds[name] = r
}

// Names returns the registered command names in sorted order.
func Names() []string {
	cmdsMu.Lock()
	defer cmdsMu.Unlock()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered reports whether name has a Runnable.
func Registered(name string) bool {
	cmdsMu.Lock()
	defer cmdsMu.Unlock()
	_, ok := cmds[name]
	return ok
}

// Runnable runs one command with its arguments, excluding the command name.
// It writes its own diagnostics to ctx.Stderr and returns a non-nil error
// whenever the process should exit with a failure status.
type Runnable func(ctx Context, args ...string) error

type Context struct {
	context.Context
	Dir    string
	GetEnv func(string) string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Log receives internal diagnostics. Nil means discard.
	Log *zap.Logger
}

// OSContext returns a Context wired to the process's standard streams and
// environment.
func OSContext(ctx context.Context, log *zap.Logger) Context {
	dir, _ := os.Getwd()
	return Context{
		Context: ctx,
		Dir:     dir,
		GetEnv:  os.Getenv,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Log:     log,
	}
}

// DebugEnv names the environment variable that turns on debug logging.
const DebugEnv = "COREUTILS_DEBUG"

// NewLogger returns a JSON logger on stderr at debug level when DebugEnv is
// set to anything but "" or "0", and a no-op logger otherwise.
func NewLogger(getenv func(string) string) (*zap.Logger, error) {
	if v := getenv(DebugEnv); v == "" || v == "0" {
		return zap.NewNop(), nil
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// Logger returns ctx.Log, or a no-op logger when none was set.
func (ctx Context) Logger() *zap.Logger {
	if ctx.Log == nil {
		return zap.NewNop()
	}
	return ctx.Log
}

// Run calls the command registered as name. Unset streams default to empty
// input and discarded output.
func Run(ctx Context, name string, args ...string) error {
	cmdsMu.Lock()
	fn := cmds[name]
	cmdsMu.Unlock()
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.GetEnv == nil {
		ctx.GetEnv = func(string) string { return "" }
	}
	if ctx.Stdin == nil {
		ctx.Stdin = strings.NewReader("")
	}
	if ctx.Stdout == nil {
		ctx.Stdout = io.Discard
	}
	if ctx.Stderr == nil {
		ctx.Stderr = io.Discard
	}
	ctx.Log = ctx.Logger().Named(name)
	return fn(ctx, args...)
}
