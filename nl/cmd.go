package nl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	coreutils "github.com/cjneidhart/coreutils"
	"github.com/cjneidhart/coreutils/internal/multireader"
)

func init() {
	coreutils.Register("nl", run)
}

const (
	Help = `Usage: nl [OPTION]... [FILE]...
Write each FILE to standard output, with line numbers added.

With no FILE, or when FILE is -, read standard input.

  -b, --body-numbering=STYLE      use STYLE for numbering body lines
  -d, --section-delimiter=CC      use CC for logical page delimiters
  -f, --footer-numbering=STYLE    use STYLE for numbering footer lines
  -h, --header-numbering=STYLE    use STYLE for numbering header lines
  -i, --line-increment=NUMBER     line number increment at each line
  -l, --join-blank-lines=NUMBER   group of NUMBER empty lines counted as one
  -n, --number-format=FORMAT      insert line numbers according to FORMAT
  -p, --no-renumber               do not reset line numbers for each section
  -s, --number-separator=STRING   add STRING after (possible) line number
  -v, --starting-line-number=NUMBER  first line number for each section
  -w, --number-width=NUMBER       use NUMBER columns for line numbers
      --help     display this help and exit
      --version  output version information and exit

Default options are: -bt -d'\:' -fn -hn -i1 -l1 -n'rn' -s<TAB> -v1 -w6

CC are two delimiter characters used to construct logical page delimiters;
a missing second character implies ':'.

STYLE is one of:

  a      number all lines
  t      number only nonempty lines
  n      number no lines

FORMAT is one of:

  ln     left justified, no leading zeros
  rn     right justified, no leading zeros
  rz     right justified, leading zeros

A file that cannot be opened ends the run; lines numbered up to that point
have already been written.
`
	Version = `nl (Go coreutils) 1.0
License GPLv3+: GNU GPL version 3 or later <http://gnu.org/licenses/gpl.html>.
This is free software: you are free to change and redistribute it.
There is NO WARRANTY, to the extent permitted by law.
`
)

// delimiterFill completes a one character delimiter.
const delimiterFill = ":"

func newCommand() *cmd {
	var c cmd
	c.f.Init("nl", flag.ContinueOnError)
	c.f.SetOutput(io.Discard)
	c.f.Usage = func() {}
	c.f.SortFlags = false

	c.f.StringVarP(&c.body, "body-numbering", "b", "t", "use STYLE for numbering body lines")
	c.f.StringVarP(&c.delim, "section-delimiter", "d", DefaultDelimiter, "use CC for logical page delimiters")
	c.f.StringVarP(&c.footer, "footer-numbering", "f", "n", "use STYLE for numbering footer lines")
	c.f.StringVarP(&c.header, "header-numbering", "h", "n", "use STYLE for numbering header lines")
	c.f.StringVarP(&c.incr, "line-increment", "i", "1", "line number increment at each line")
	c.f.StringVarP(&c.join, "join-blank-lines", "l", "1", "group of NUMBER empty lines counted as one")
	c.f.StringVarP(&c.format, "number-format", "n", "rn", "insert line numbers according to FORMAT")
	c.f.BoolVarP(&c.noRenumber, "no-renumber", "p", false, "do not reset line numbers for each section")
	c.f.StringVarP(&c.sep, "number-separator", "s", "\t", "add STRING after (possible) line number")
	c.f.StringVarP(&c.start, "starting-line-number", "v", "1", "first line number for each section")
	c.f.StringVarP(&c.width, "number-width", "w", "6", "use NUMBER columns for line numbers")
	c.f.BoolVar(&c.help, "help", false, "display this help and exit")
	c.f.BoolVar(&c.version, "version", false, "output version information and exit")
	return &c
}

type cmd struct {
	f                    flag.FlagSet
	header, body, footer string
	delim, sep, format   string
	incr, join           string
	start, width         string
	noRenumber           bool
	help, version        bool
}

func run(ctx coreutils.Context, args ...string) error {
	c := newCommand()
	if err := c.f.Parse(args); err != nil {
		usageError(ctx.Stderr, err)
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

	cfg, err := c.config()
	if err != nil {
		usageError(ctx.Stderr, err)
		return err
	}

	names := c.f.Args()
	if len(names) == 0 {
		names = []string{multireader.Stdin}
	}
	log := ctx.Logger()
	log.Debug("numbering",
		zap.Strings("sources", names),
		zap.Stringer("header", cfg.Header),
		zap.Stringer("body", cfg.Body),
		zap.Stringer("footer", cfg.Footer))

	r := multireader.New(names,
		multireader.WithStdin(ctx.Stdin),
		multireader.WithDir(ctx.Dir),
		multireader.WithLogger(log))
	defer r.Close()

	if err := Process(multireader.Lines(r), ctx.Stdout, cfg, WithLogger(log)); err != nil {
		fmt.Fprintf(ctx.Stderr, "nl: %v\n", err)
		return err
	}
	return nil
}

func usageError(w io.Writer, err error) {
	fmt.Fprintf(w, "nl: %v\nTry 'nl --help' for more information.\n", err)
}

// config converts the parsed flags into a Config. Every value is checked
// before any input is read.
func (c *cmd) config() (Config, error) {
	cfg := DefaultConfig()
	var err error

	if cfg.Header, err = parseStyle("header-numbering", Header, c.header); err != nil {
		return cfg, err
	}
	if cfg.Body, err = parseStyle("body-numbering", Body, c.body); err != nil {
		return cfg, err
	}
	if cfg.Footer, err = parseStyle("footer-numbering", Footer, c.footer); err != nil {
		return cfg, err
	}
	if cfg.Format, err = ParseFormat(c.format); err != nil {
		return cfg, &ConfigError{Option: "number-format", What: "line numbering format", Value: c.format, Err: err}
	}
	if cfg.Increment, err = parseCount("line-increment", "line number increment", c.incr, 1); err != nil {
		return cfg, err
	}
	if cfg.JoinBlank, err = parseCount("join-blank-lines", "line number of blank lines", c.join, 1); err != nil {
		return cfg, err
	}
	if cfg.Start, err = parseCount("starting-line-number", "starting line number", c.start, 0); err != nil {
		return cfg, err
	}
	width, err := parseCount("number-width", "line number field width", c.width, 1)
	if err != nil {
		return cfg, err
	}
	if width > maxWidth {
		return cfg, &ConfigError{Option: "number-width", What: "line number field width", Value: c.width, Err: strconv.ErrRange}
	}
	cfg.Width = int(width)

	switch {
	case c.delim == "":
		return cfg, &ConfigError{Option: "section-delimiter", What: "section delimiter", Value: c.delim, Err: errEmptyDelimiter}
	case utf8.RuneCountInString(c.delim) == 1:
		cfg.Delimiter = c.delim + delimiterFill
	default:
		cfg.Delimiter = c.delim
	}
	cfg.Separator = c.sep
	cfg.Renumber = !c.noRenumber
	return cfg, cfg.Validate()
}

// maxWidth is the widest number field accepted.
const maxWidth = 1 << 20

var (
	errEmptyDelimiter = errors.New("empty section delimiter")
	errTooSmall       = errors.New("value too small")
)

func parseStyle(option string, sec Section, v string) (Style, error) {
	st, err := ParseStyle(v)
	if err != nil {
		return st, &ConfigError{Option: option, What: sec.String() + " numbering style", Value: v, Err: err}
	}
	return st, nil
}

// parseCount parses a non-negative decimal number no smaller than least.
func parseCount(option, what, v string, least uint64) (uint64, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, &ConfigError{Option: option, What: what, Value: v, Err: err}
	}
	if n < least {
		return 0, &ConfigError{Option: option, What: what, Value: v, Err: errTooSmall}
	}
	return n, nil
}
