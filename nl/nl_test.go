package nl

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// sliceSource hands out a fixed list of lines.
type sliceSource struct {
	s   []string
	cur string
	err error // returned once the lines run out
}

func (s *sliceSource) Scan() bool {
	if len(s.s) == 0 {
		return false
	}
	s.cur, s.s = s.s[0], s.s[1:]
	return true
}
func (s *sliceSource) Text() string { return s.cur }
func (s *sliceSource) Err() error   { return s.err }

func lines(s ...string) *sliceSource { return &sliceSource{s: s} }

func number(t *testing.T, cfg Config, in ...string) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Process(lines(in...), &buf, cfg))
	return splitOutput(buf.String())
}

func splitOutput(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestDefaults(t *testing.T) {
	got := number(t, DefaultConfig(), "a", "", "b")
	want := []string{"     1\ta", "\t", "     2\tb"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestNonEmptySkipsEmptyLines(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 2
	got := number(t, cfg, "a", "", "b")
	assert.Equal(t, []string{" 1\ta", "\t", " 2\tb"}, got)
}

func TestHeaderStartsAtStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header = All
	cfg.Start = 5
	cfg.Width = 2
	got := number(t, cfg, `\:\:\:`, "x")
	assert.Equal(t, []string{"", " 5\tx"}, got)
}

func TestRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header, cfg.Body, cfg.Footer = All, All, All
	cfg.Width = 1
	cfg.Separator = " "

	var in []string
	for i := 1; i <= 120; i++ {
		in = append(in, fmt.Sprintf("line_%d", i))
	}
	in = append(in, "")

	got := number(t, cfg, in...)
	require.Len(t, got, len(in))
	for i, line := range got {
		if want := fmt.Sprintf("%d %s", i+1, in[i]); line != want {
			t.Errorf("line %d == %q, want %q", i+1, line, want)
		}
	}
}

func TestSections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header, cfg.Body, cfg.Footer = All, NonEmpty, All
	cfg.Width = 1

	in := []string{
		`\:\:\:`, "h1", "h2",
		`\:\:`, "b1", "", "b2",
		`\:`, "f1",
		`\:\:\:`, "h1",
	}
	want := []string{
		"", "1\th1", "2\th2",
		"", "1\tb1", "\t", "2\tb2",
		"", "1\tf1",
		"", "1\th1",
	}
	got := number(t, cfg, in...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestNoRenumber(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header, cfg.Footer = All, All
	cfg.Renumber = false
	cfg.Width = 1
	cfg.Increment = 2

	got := number(t, cfg, "a", `\:\:\:`, "b", `\:`, "c")
	assert.Equal(t, []string{"1\ta", "", "3\tb", "", "5\tc"}, got)
}

func TestResetAfterEveryTransition(t *testing.T) {
	delims := []string{`\:\:\:`, `\:\:`, `\:`}
	for _, start := range []uint64{0, 1, 7, 1000} {
		cfg := DefaultConfig()
		cfg.Header, cfg.Body, cfg.Footer = All, All, All
		cfg.Start = start
		cfg.Increment = 3
		n := NewNumberer(cfg)

		for i, d := range append(delims, delims...) {
			for j := 0; j <= i; j++ {
				_, tr, err := n.Number("content")
				require.NoError(t, err)
				require.False(t, tr)
			}
			require.NotEqual(t, start, n.Counter())

			out, tr, err := n.Number(d)
			require.NoError(t, err)
			assert.True(t, tr)
			assert.Equal(t, "", out)
			assert.Equal(t, start, n.Counter(), "start %d after %q", start, d)
		}
	}
}

func TestRepeatedHeaderDelimiter(t *testing.T) {
	n := NewNumberer(DefaultConfig())
	for i := 0; i < 2; i++ {
		out, tr, err := n.Number(`\:\:\:`)
		require.NoError(t, err)
		assert.True(t, tr)
		assert.Equal(t, "", out)
		assert.Equal(t, Header, n.Section())
	}

	got := number(t, DefaultConfig(), `\:\:\:`, `\:\:\:`)
	assert.Equal(t, []string{"", ""}, got)
}

func TestContentLinesAreNumberedOrIndented(t *testing.T) {
	in := []string{"x", "", " ", `\:\:\:\:`, `\`, ":", "y"}
	for _, st := range []Style{All, NonEmpty, None} {
		cfg := DefaultConfig()
		cfg.Body = st
		cfg.Width = 3
		cfg.Separator = "|"

		got := number(t, cfg, in...)
		require.Len(t, got, len(in))
		for i, line := range in {
			indented := got[i] == "\t"+line
			numbered := strings.HasSuffix(got[i], "|"+line) && len(got[i]) == 3+1+len(line)
			assert.True(t, indented != numbered, "style %v line %q: %q", st, line, got[i])

			want := st == All || (st == NonEmpty && line != "")
			assert.Equal(t, want, numbered, "style %v line %q", st, line)
		}
	}
}

func TestWidthIsAMinimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 2
	cfg.Start = 98
	got := number(t, cfg, "a", "b", "c")
	assert.Equal(t, []string{"98\ta", "99\tb", "100\tc"}, got)
}

func TestFormats(t *testing.T) {
	cases := []struct {
		format Format
		want   string
	}{
		{RightNoZeros, "   42:x"},
		{LeftNoZeros, "42   :x"},
		{RightZeros, "00042:x"},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		cfg.Format = c.format
		cfg.Width = 5
		cfg.Start = 42
		cfg.Separator = ":"
		got := number(t, cfg, "x")
		if got[0] != c.want {
			t.Errorf("format %v == %q, want %q", c.format, got[0], c.want)
		}
	}
}

func TestJoinBlankLines(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Body = All
	cfg.JoinBlank = 2
	cfg.Width = 1

	got := number(t, cfg, "", "", "", "x", "", `\:\:`, "", "")
	want := []string{"\t", "1\t", "\t", "2\tx", "\t", "", "\t", "1\t"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomDelimiter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delimiter = "ab"
	cfg.Header, cfg.Footer = All, All
	cfg.Width = 1

	got := number(t, cfg, "ababab", "h", "abab", "b", "ab", "f", `\:\:`, "abababab")
	want := []string{"", "1\th", "", "1\tb", "", "1\tf", "2\t\\:\\:", "3\tabababab"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestLineNumberOverflow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Start = math.MaxUint64
	cfg.Width = 1

	var buf bytes.Buffer
	err := Process(lines("a", "", "b"), &buf, cfg)
	assert.ErrorIs(t, err, ErrLineNumberOverflow)
	assert.Equal(t, "18446744073709551615\ta\n\t\n", buf.String())

	// A reset makes the counter usable again.
	buf.Reset()
	require.NoError(t, Process(lines("a", `\:\:`, "b"), &buf, cfg))
	assert.Equal(t, "18446744073709551615\ta\n\n18446744073709551615\tb\n", buf.String())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		mod    func(*Config)
		option string
	}{
		{func(c *Config) { c.Width = 0 }, "number-width"},
		{func(c *Config) { c.Increment = 0 }, "line-increment"},
		{func(c *Config) { c.Delimiter = "" }, "section-delimiter"},
		{func(c *Config) { c.JoinBlank = 0 }, "join-blank-lines"},
		{func(c *Config) { c.Footer = Style(9) }, "footer-numbering"},
		{func(c *Config) { c.Format = Format(9) }, "number-format"},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.mod(&cfg)

		var buf bytes.Buffer
		err := Process(lines("x"), &buf, cfg)
		var cerr *ConfigError
		if assert.ErrorAs(t, err, &cerr) {
			assert.Equal(t, c.option, cerr.Option)
		}
		assert.Empty(t, buf.String(), "nothing is written for an invalid config")
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestParseStyle(t *testing.T) {
	cases := []struct {
		in   string
		want Style
	}{
		{"a", All},
		{"t", NonEmpty},
		{"n", None},
	}
	for _, c := range cases {
		got, err := ParseStyle(c.in)
		require.NoError(t, err)
		if got != c.want {
			t.Errorf("ParseStyle(%q) == %v, want %v", c.in, got, c.want)
		}
		assert.Equal(t, c.in, got.String())
	}
	for _, bad := range []string{"", "A", "pfoo", "all"} {
		_, err := ParseStyle(bad)
		assert.ErrorIs(t, err, ErrInvalidStyle, bad)
	}
}

// writeRecorder keeps each Write call separately.
type writeRecorder struct {
	writes []string
	failAt int
}

func (w *writeRecorder) Write(p []byte) (int, error) {
	if w.failAt > 0 && len(w.writes) == w.failAt {
		return 0, errors.New("disk full")
	}
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func TestOneWritePerLine(t *testing.T) {
	var w writeRecorder
	require.NoError(t, Process(lines("a", `\:`, "b"), &w, DefaultConfig()))
	assert.Equal(t, []string{"     1\ta\n", "\n", "\tb\n"}, w.writes)
}

func TestWriteErrorStops(t *testing.T) {
	w := writeRecorder{failAt: 1}
	err := Process(lines("a", "b", "c"), &w, DefaultConfig())
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, []string{"     1\ta\n"}, w.writes)
}

func TestSourceErrorAfterOutput(t *testing.T) {
	src := lines("a")
	src.err = errors.New("read failed")

	var buf bytes.Buffer
	err := Process(src, &buf, DefaultConfig())
	assert.EqualError(t, err, "read failed")
	assert.Equal(t, "     1\ta\n", buf.String())
}
