package cat

import (
	"fmt"
	"io"
)

// display holds the line decorations requested on the command line.
type display struct {
	number      bool // number every line
	nonblank    bool // number only nonempty lines
	ends        bool
	tabs        bool
	nonPrinting bool
	squeeze     bool
}

// simple reports whether the input can be copied untouched.
func (d display) simple() bool {
	return !(d.number || d.ends || d.tabs || d.nonPrinting || d.squeeze)
}

// numberWidth is the minimum width of a line number.
const numberWidth = 6

// render writes every line of src to w with the decorations applied. Line
// numbers run on across sources since src is one stream.
func (d display) render(w io.Writer, src lineSource) error {
	var (
		buf   []byte
		line  uint64
		blank bool // the previous line was empty
	)
	for src.Scan() {
		text, term := src.Text(), src.Terminated()
		empty := text == "" && term
		if empty && blank && d.squeeze {
			continue
		}
		blank = empty

		buf = buf[:0]
		if d.number && !(d.nonblank && text == "") {
			line++
			buf = appendNumber(buf, line)
		}
		buf = d.appendText(buf, text)
		if term {
			if d.ends {
				buf = append(buf, '$')
			}
			buf = append(buf, '\n')
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return src.Err()
}

type lineSource interface {
	Scan() bool
	Text() string
	Terminated() bool
	Err() error
}

func appendNumber(buf []byte, n uint64) []byte {
	return fmt.Appendf(buf, "%*d\t", numberWidth, n)
}

// appendText appends text, rewriting tabs and control bytes as requested.
func (d display) appendText(buf []byte, text string) []byte {
	if !d.tabs && !d.nonPrinting {
		return append(buf, text...)
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\t':
			if d.tabs {
				buf = append(buf, '^', 'I')
			} else {
				buf = append(buf, c)
			}
		case !d.nonPrinting:
			buf = append(buf, c)
		case c >= 128:
			buf = append(buf, 'M', '-')
			buf = appendCaret(buf, c-128)
		default:
			buf = appendCaret(buf, c)
		}
	}
	return buf
}

// appendCaret appends a 7-bit byte in ^ notation when it is a control
// character.
func appendCaret(buf []byte, c byte) []byte {
	switch {
	case c < 32:
		return append(buf, '^', c+64)
	case c == 127:
		return append(buf, '^', '?')
	}
	return append(buf, c)
}
