// Package yes repeatedly prints a line. Piped into nl it makes an endless
// live source.
package yes

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	coreutils "github.com/cjneidhart/coreutils"
)

func init() {
	coreutils.Register("yes", run)
}

const (
	Help = `Usage: yes [STRING]...
  or:  yes OPTION
Repeatedly output a line with all specified STRING(s), or 'y'.

      --help     display this help and exit
      --version  output version information and exit
`
	Version = `yes (Go coreutils) 1.0
License GPLv3+: GNU GPL version 3 or later <http://gnu.org/licenses/gpl.html>.
This is free software: you are free to change and redistribute it.
There is NO WARRANTY, to the extent permitted by law.
`
)

// bufSize is the size of one write.
const bufSize = 4096

func run(ctx coreutils.Context, args ...string) error {
	var help, version bool
	var f flag.FlagSet
	f.Init("yes", flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	f.BoolVar(&help, "help", false, "display this help and exit")
	f.BoolVar(&version, "version", false, "output version information and exit")
	if err := f.Parse(args); err != nil {
		fmt.Fprintf(ctx.Stderr, "yes: %v\nTry 'yes --help' for more information.\n", err)
		return err
	}
	if help {
		fmt.Fprint(ctx.Stdout, Help)
		return nil
	}
	if version {
		fmt.Fprint(ctx.Stdout, Version)
		return nil
	}

	line := "y\n"
	if f.NArg() > 0 {
		line = strings.Join(f.Args(), " ") + "\n"
	}

	// Fill a buffer with whole copies of line.
	buf := []byte(line)
	for len(buf)+len(line) <= bufSize {
		buf = append(buf, line...)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := ctx.Stdout.Write(buf); err != nil {
			return err
		}
	}
}
