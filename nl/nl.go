// Package nl numbers the lines of its input. The input is divided into
// logical pages of header, body and footer sections by delimiter lines, and
// every section has its own numbering style.
package nl

import (
	"errors"
	"fmt"
	"strings"
)

// Section is a logical page section.
type Section int

const (
	Header Section = iota
	Body
	Footer
)

func (s Section) String() string {
	switch s {
	case Header:
		return "header"
	case Body:
		return "body"
	case Footer:
		return "footer"
	}
	return fmt.Sprintf("Section(%d)", int(s))
}

// Style selects which lines of a section get a number.
type Style int

const (
	All      Style = iota // number every line
	NonEmpty              // number lines that are not empty
	None                  // number nothing
)

// ErrInvalidStyle is wrapped by errors from ParseStyle.
var ErrInvalidStyle = errors.New("invalid numbering style")

// ParseStyle converts a style code (a, t or n) to a Style.
func ParseStyle(code string) (Style, error) {
	switch code {
	case "a":
		return All, nil
	case "t":
		return NonEmpty, nil
	case "n":
		return None, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStyle, code)
}

// String returns the style's code.
func (s Style) String() string {
	switch s {
	case All:
		return "a"
	case NonEmpty:
		return "t"
	case None:
		return "n"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Format is the layout of the number inside its field.
type Format int

const (
	RightNoZeros Format = iota // rn: right justified, space padded
	LeftNoZeros                // ln: left justified, space padded
	RightZeros                 // rz: right justified, zero padded
)

// ErrInvalidFormat is wrapped by errors from ParseFormat.
var ErrInvalidFormat = errors.New("invalid line numbering format")

func ParseFormat(code string) (Format, error) {
	switch code {
	case "rn":
		return RightNoZeros, nil
	case "ln":
		return LeftNoZeros, nil
	case "rz":
		return RightZeros, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, code)
}

func (f Format) String() string {
	switch f {
	case RightNoZeros:
		return "rn"
	case LeftNoZeros:
		return "ln"
	case RightZeros:
		return "rz"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// DefaultDelimiter is the default section delimiter token. A line holding
// it three times starts a header, twice a body and once a footer.
const DefaultDelimiter = `\:`

// ErrLineNumberOverflow is returned when the counter would pass the largest
// representable line number.
var ErrLineNumberOverflow = errors.New("line number overflow")

// ConfigError reports an option value that cannot be used.
type ConfigError struct {
	Option string // long flag name, without dashes
	What   string // human description of the value
	Value  string // raw value as given
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: '%s'", e.What, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config controls numbering. It does not change during a run.
type Config struct {
	Header, Body, Footer Style

	Delimiter string
	Start     uint64
	Increment uint64
	Width     int
	Separator string
	Format    Format

	// Renumber resets the counter to Start at every section delimiter.
	Renumber bool

	// JoinBlank counts a run of JoinBlank empty lines as one numbered line
	// in sections whose style is All.
	JoinBlank uint64
}

// DefaultConfig returns the configuration nl runs with when given no options.
func DefaultConfig() Config {
	return Config{
		Header:    None,
		Body:      NonEmpty,
		Footer:    None,
		Delimiter: DefaultDelimiter,
		Start:     1,
		Increment: 1,
		Width:     6,
		Separator: "\t",
		Format:    RightNoZeros,
		Renumber:  true,
		JoinBlank: 1,
	}
}

// Style returns the numbering style of section s.
func (c Config) Style(s Section) Style {
	switch s {
	case Header:
		return c.Header
	case Body:
		return c.Body
	case Footer:
		return c.Footer
	}
	panic("nl: unknown section " + s.String())
}

// Validate reports the first field that cannot be used for numbering.
func (c Config) Validate() error {
	for _, s := range [...]struct {
		option string
		sec    Section
	}{{"header-numbering", Header}, {"body-numbering", Body}, {"footer-numbering", Footer}} {
		switch st := c.Style(s.sec); st {
		case All, NonEmpty, None:
		default:
			return &ConfigError{Option: s.option, What: s.sec.String() + " numbering style", Value: st.String(), Err: ErrInvalidStyle}
		}
	}
	switch c.Format {
	case RightNoZeros, LeftNoZeros, RightZeros:
	default:
		return &ConfigError{Option: "number-format", What: "line numbering format", Value: c.Format.String(), Err: ErrInvalidFormat}
	}
	if c.Delimiter == "" {
		return &ConfigError{Option: "section-delimiter", What: "section delimiter", Value: c.Delimiter}
	}
	if c.Increment == 0 {
		return &ConfigError{Option: "line-increment", What: "line number increment", Value: "0"}
	}
	if c.Width < 1 {
		return &ConfigError{Option: "number-width", What: "line number field width", Value: fmt.Sprint(c.Width)}
	}
	if c.JoinBlank == 0 {
		return &ConfigError{Option: "join-blank-lines", What: "line number of blank lines", Value: "0"}
	}
	return nil
}

// delimiters returns the header, body and footer delimiter lines.
func (c Config) delimiters() (header, body, footer string) {
	return strings.Repeat(c.Delimiter, 3), strings.Repeat(c.Delimiter, 2), c.Delimiter
}
