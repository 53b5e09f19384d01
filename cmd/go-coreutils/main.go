// Command go-coreutils runs the registered utilities. Invoked through a link
// named after a utility (nl, cat, yes) it behaves as that utility; otherwise
// the first argument names the utility:
//
//	go-coreutils nl -ba file
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	coreutils "github.com/cjneidhart/coreutils"
	_ "github.com/cjneidhart/coreutils/cat"
	_ "github.com/cjneidhart/coreutils/nl"
	_ "github.com/cjneidhart/coreutils/yes"
)

var shortHelp = map[string]string{
	"cat": "concatenate files and print on the standard output",
	"nl":  "number lines of files",
	"yes": "output a string repeatedly until killed",
}

// utilityError marks an error the utility already reported on stderr.
type utilityError struct{ err error }

func (e utilityError) Error() string { return e.err.Error() }
func (e utilityError) Unwrap() error { return e.err }

func newRootCmd(ctx coreutils.Context) *cobra.Command {
	root := &cobra.Command{
		Use:           "go-coreutils",
		Short:         "go-coreutils - text utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(ctx.Stdout)
	root.SetErr(ctx.Stderr)

	for _, name := range coreutils.Names() {
		name := name // per-iteration copy; go.mod targets go 1.21 loop semantics
		root.AddCommand(&cobra.Command{
			Use:                name + " [OPTION]... [ARG]...",
			Short:              shortHelp[name],
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx.Log.Debug("dispatch", zap.String("command", name), zap.Strings("args", args))
				if err := coreutils.Run(ctx, name, args...); err != nil {
					return utilityError{err}
				}
				return nil
			},
		})
	}
	return root
}

// run executes argv and returns the exit status.
func run(ctx coreutils.Context, argv []string) int {
	if ctx.Log == nil {
		ctx.Log = zap.NewNop()
	}

	var err error
	if name := filepath.Base(argv[0]); coreutils.Registered(name) {
		err = coreutils.Run(ctx, name, argv[1:]...)
		if err != nil {
			err = utilityError{err}
		}
	} else {
		root := newRootCmd(ctx)
		root.SetArgs(argv[1:])
		err = root.ExecuteContext(ctx)
	}

	if err == nil {
		return 0
	}
	var uerr utilityError
	if !errors.As(err, &uerr) {
		fmt.Fprintf(ctx.Stderr, "go-coreutils: %v\n", err)
	}
	return 1
}

func main() {
	log, err := coreutils.NewLogger(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "go-coreutils: %v\n", err)
		os.Exit(1)
	}
	code := run(coreutils.OSContext(context.Background(), log), os.Args)
	_ = log.Sync()
	os.Exit(code)
}
