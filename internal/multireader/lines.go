package multireader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DecodeError reports a line that is not valid UTF-8.
type DecodeError struct {
	Source string // where the line starts
	Line   int64  // 1-based, counted across all sources
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("line %d: invalid UTF-8", e.Line)
	}
	return fmt.Sprintf("%s: line %d: invalid UTF-8", DisplayName(e.Source), e.Line)
}

// Scanner splits a stream into lines. Unlike bufio.Scanner it has no limit
// on line length, and a line is handed out as soon as its terminator has been
// read, so a slow producer sees its output promptly.
type Scanner struct {
	r    *bufio.Reader
	src  *tracker // nil when the input does not name its sources
	raw  bool
	line string
	term bool
	off  int64 // bytes consumed by earlier lines
	n    int64
	err  error
	next error // reported by the following Scan
	done bool
}

// Lines returns a Scanner over r. If r names its sources, as a *Reader does,
// decode errors name the source the offending line started in.
func Lines(r io.Reader) *Scanner {
	s := &Scanner{}
	if named, ok := r.(interface{ Name() string }); ok {
		s.src = &tracker{r: r, src: named}
		r = s.src
	}
	s.r = bufio.NewReader(r)
	return s
}

// RawLines is like Lines but leaves line content alone: there is no UTF-8
// check and a carriage return before the terminator is kept.
func RawLines(r io.Reader) *Scanner {
	s := Lines(r)
	s.raw = true
	return s
}

// Scan advances to the next line. It returns false at the end of the input
// or on the first error.
//
// When a source fails after earlier sources supplied part of a line, that
// part is returned as a line of its own and the failure is reported by the
// next Scan. Any other read error drops the partial line.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	if s.next != nil {
		s.done, s.err = true, s.next
		return false
	}

	start := s.off
	line, err := s.r.ReadString('\n')
	s.off += int64(len(line))
	switch {
	case err == nil:
	case err == io.EOF:
		s.done = true
		if line == "" {
			return false
		}
	case line != "" && isSourceError(err):
		s.next = err
	default:
		s.done, s.err = true, err
		return false
	}

	s.n++
	s.term = strings.HasSuffix(line, "\n")
	if s.term {
		line = line[:len(line)-1]
		if !s.raw {
			line = strings.TrimSuffix(line, "\r")
		}
	}
	source := s.source(start)
	if !s.raw && !utf8.ValidString(line) {
		s.done, s.err = true, &DecodeError{Source: source, Line: s.n}
		return false
	}
	s.line = line
	return true
}

// Text returns the current line without its terminator.
func (s *Scanner) Text() string { return s.line }

// Terminated reports whether the current line ended with a newline. Only the
// last line of the input, or one cut short by a failing source, can lack it.
func (s *Scanner) Terminated() bool { return s.term }

// Err returns the first non-EOF error.
func (s *Scanner) Err() error { return s.err }

func (s *Scanner) source(off int64) string {
	if s.src == nil {
		return ""
	}
	return s.src.at(off)
}

func isSourceError(err error) bool {
	var serr *SourceError
	return errors.As(err, &serr)
}

// tracker remembers which source each byte handed to the line buffer came
// from. bufio reads ahead, so the reader's current name can already be past
// the line being scanned.
type tracker struct {
	r    io.Reader
	src  interface{ Name() string }
	read int64
	segs []segment
}

// segment covers the bytes up to end that are not in an earlier segment.
type segment struct {
	end  int64
	name string
}

func (t *tracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		// A *Reader returns bytes from a single source per call, and Name
		// still reports that source afterwards.
		t.read += int64(n)
		name := t.src.Name()
		if k := len(t.segs); k > 0 && t.segs[k-1].name == name {
			t.segs[k-1].end = t.read
		} else {
			t.segs = append(t.segs, segment{end: t.read, name: name})
		}
	}
	return n, err
}

// at returns the source of the byte at offset off and forgets everything
// before it. Offsets must not decrease between calls.
func (t *tracker) at(off int64) string {
	for len(t.segs) > 0 && t.segs[0].end <= off {
		t.segs = t.segs[1:]
	}
	if len(t.segs) == 0 {
		return ""
	}
	return t.segs[0].name
}
