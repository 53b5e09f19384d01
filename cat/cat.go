// Package cat concatenates its sources to standard output.
//
// Unlike nl, cat keeps going when a file cannot be opened: every failure is
// reported as it happens, the remaining files are still copied, and the
// command fails at the end.
package cat

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	coreutils "github.com/cjneidhart/coreutils"
	"github.com/cjneidhart/coreutils/internal/multireader"
)

func init() {
	coreutils.Register("cat", run)
}

const (
	Help = `Usage: cat [OPTION]... [FILE]...
Concatenate FILE(s) to standard output.

With no FILE, or when FILE is -, read standard input.

  -A, --show-all           equivalent to -vET
  -b, --number-nonblank    number nonempty output lines, overrides -n
  -e                       equivalent to -vE
  -E, --show-ends          display $ at end of each line
  -n, --number             number all output lines
  -s, --squeeze-blank      suppress repeated empty output lines
  -t                       equivalent to -vT
  -T, --show-tabs          display TAB characters as ^I
  -u                       (ignored)
  -v, --show-nonprinting   use ^ and M- notation, except for LFD and TAB
      --help     display this help and exit
      --version  output version information and exit

Examples:
  cat f - g  Output f's contents, then standard input, then g's contents.
  cat        Copy standard input to standard output.
`
	Version = `cat (Go coreutils) 2.0
License GPLv3+: GNU GPL version 3 or later <http://gnu.org/licenses/gpl.html>.
This is free software: you are free to change and redistribute it.
There is NO WARRANTY, to the extent permitted by law.
`
)

type cmd struct {
	f                         flag.FlagSet
	all, npEnds, npTabs       bool
	display                   display
	unbuffered, help, version bool
}

func newCommand() *cmd {
	var c cmd
	c.f.Init("cat", flag.ContinueOnError)
	c.f.SetOutput(io.Discard)
	c.f.Usage = func() {}
	c.f.SortFlags = false

	d := &c.display
	c.f.BoolVarP(&c.all, "show-all", "A", false, "equivalent to -vET")
	c.f.BoolVarP(&d.nonblank, "number-nonblank", "b", false, "number nonempty output lines, overrides -n")
	c.f.BoolVarP(&c.npEnds, "ends", "e", false, "equivalent to -vE")
	c.f.BoolVarP(&d.ends, "show-ends", "E", false, "display $ at end of each line")
	c.f.BoolVarP(&d.number, "number", "n", false, "number all output lines")
	c.f.BoolVarP(&d.squeeze, "squeeze-blank", "s", false, "suppress repeated empty output lines")
	c.f.BoolVarP(&c.npTabs, "tabs", "t", false, "equivalent to -vT")
	c.f.BoolVarP(&d.tabs, "show-tabs", "T", false, "display TAB characters as ^I")
	c.f.BoolVarP(&c.unbuffered, "unbuffered", "u", false, "(ignored)")
	c.f.BoolVarP(&d.nonPrinting, "show-nonprinting", "v", false, "use ^ and M- notation, except for LFD and TAB")
	c.f.BoolVar(&c.help, "help", false, "display this help and exit")
	c.f.BoolVar(&c.version, "version", false, "output version information and exit")
	return &c
}

// resolve folds the shorthand flags into the display settings.
func (c *cmd) resolve() display {
	d := c.display
	if c.all {
		d.nonPrinting, d.ends, d.tabs = true, true, true
	}
	if c.npEnds {
		d.nonPrinting, d.ends = true, true
	}
	if c.npTabs {
		d.nonPrinting, d.tabs = true, true
	}
	if d.nonblank {
		d.number = true
	}
	return d
}

func run(ctx coreutils.Context, args ...string) error {
	c := newCommand()
	if err := c.f.Parse(args); err != nil {
		fmt.Fprintf(ctx.Stderr, "cat: %v\nTry 'cat --help' for more information.\n", err)
		return err
	}
	if c.help {
		fmt.Fprint(ctx.Stdout, Help)
		return nil
	}
	if c.version {
		fmt.Fprint(ctx.Stdout, Version)
		return nil
	}

	names := c.f.Args()
	if len(names) == 0 {
		names = []string{multireader.Stdin}
	}

	r := multireader.New(names,
		multireader.WithStdin(ctx.Stdin),
		multireader.WithDir(ctx.Dir),
		multireader.WithLogger(ctx.Logger()),
		multireader.WithPolicy(multireader.Skip),
		multireader.WithSkipHandler(func(err *multireader.SourceError) {
			fmt.Fprintf(ctx.Stderr, "cat: %v\n", err)
		}))
	defer r.Close()

	d := c.resolve()
	var err error
	if d.simple() {
		_, err = io.Copy(ctx.Stdout, r)
	} else {
		err = d.render(ctx.Stdout, multireader.RawLines(r))
	}
	if err != nil {
		// Source failures were reported by the skip handler.
		var serr *multireader.SourceError
		if !errors.As(err, &serr) {
			fmt.Fprintf(ctx.Stderr, "cat: write error: %v\n", err)
		}
		return err
	}
	return nil
}
