package nl

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Numberer holds the state of a numbering run: the active section and the
// next line number.
type Numberer struct {
	cfg                  Config
	header, body, footer string
	section              Section
	line                 uint64
	blanks               uint64 // consecutive empty lines not yet numbered
	exhausted            bool   // line was the largest number; no next one
}

// NewNumberer returns a Numberer in the body section with the counter at
// cfg.Start. cfg should already have passed Validate.
func NewNumberer(cfg Config) *Numberer {
	n := &Numberer{cfg: cfg, section: Body, line: cfg.Start}
	n.header, n.body, n.footer = cfg.delimiters()
	return n
}

// Section returns the active section.
func (n *Numberer) Section() Section { return n.section }

// Counter returns the number the next numbered line will get.
func (n *Numberer) Counter() uint64 { return n.line }

// delimiter classifies line. Candidates are tried longest first so a longer
// delimiter is never taken for a shorter one.
func (n *Numberer) delimiter(line string) (Section, bool) {
	switch line {
	case n.header:
		return Header, true
	case n.body:
		return Body, true
	case n.footer:
		return Footer, true
	}
	return Body, false
}

// Number processes one input line and returns the output line without its
// terminator. A section delimiter yields an empty output line and
// transition set to true.
func (n *Numberer) Number(line string) (out string, transition bool, err error) {
	if sec, ok := n.delimiter(line); ok {
		n.section = sec
		n.blanks = 0
		if n.cfg.Renumber {
			n.line = n.cfg.Start
			n.exhausted = false
		}
		return "", true, nil
	}

	if !n.numbered(line) {
		return "\t" + line, false, nil
	}
	if n.exhausted {
		return "", false, ErrLineNumberOverflow
	}
	out = n.pad() + n.cfg.Separator + line
	if next := n.line + n.cfg.Increment; next < n.line {
		n.exhausted = true
	} else {
		n.line = next
	}
	return out, false, nil
}

// numbered reports whether line gets a number under the active style.
func (n *Numberer) numbered(line string) bool {
	switch n.cfg.Style(n.section) {
	case All:
		if n.cfg.JoinBlank > 1 && line == "" {
			n.blanks++
			if n.blanks < n.cfg.JoinBlank {
				return false
			}
		}
		n.blanks = 0
		return true
	case NonEmpty:
		return line != ""
	case None:
		return false
	}
	panic("nl: unknown numbering style " + n.cfg.Style(n.section).String())
}

// pad formats the counter into a field of at least cfg.Width columns.
func (n *Numberer) pad() string {
	switch n.cfg.Format {
	case RightNoZeros:
		return fmt.Sprintf("%*d", n.cfg.Width, n.line)
	case LeftNoZeros:
		return fmt.Sprintf("%-*d", n.cfg.Width, n.line)
	case RightZeros:
		return fmt.Sprintf("%0*d", n.cfg.Width, n.line)
	}
	panic("nl: unknown number format " + n.cfg.Format.String())
}

// LineSource is a single pass sequence of lines, such as a
// *multireader.Scanner.
type LineSource interface {
	Scan() bool
	Text() string
	Err() error
}

// ProcessOption configures Process.
type ProcessOption func(*process)

type process struct {
	log *zap.Logger
}

// WithLogger sets the logger for section transition events.
func WithLogger(log *zap.Logger) ProcessOption {
	return func(p *process) {
		if log != nil {
			p.log = log
		}
	}
}

// Process numbers every line of src and writes the result to w. Each output
// line is written as soon as it is formatted, so output from a slow or
// endless source shows up as it arrives. The first error from src, w or the
// numbering itself ends the run; lines already written stay written.
func Process(src LineSource, w io.Writer, cfg Config, opts ...ProcessOption) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p := process{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&p)
	}

	n := NewNumberer(cfg)
	var buf []byte
	for src.Scan() {
		out, transition, err := n.Number(src.Text())
		if err != nil {
			return err
		}
		if transition {
			p.log.Debug("section change",
				zap.Stringer("section", n.Section()),
				zap.Uint64("next", n.Counter()))
		}
		buf = append(append(buf[:0], out...), '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return src.Err()
}
