package cat

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	coreutils "github.com/cjneidhart/coreutils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func runCat(t *testing.T, stdin, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := coreutils.Run(coreutils.Context{
		Context: context.Background(),
		Dir:     dir,
		Stdin:   strings.NewReader(stdin),
		Stdout:  &out,
		Stderr:  &errOut,
	}, "cat", args...)
	return out.String(), errOut.String(), err
}

func TestCat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("f1\nf2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g"), []byte("g1\n"), 0o644))

	cases := []struct {
		in   []string
		want string
	}{
		{nil, "in\n"},
		{[]string{"-"}, "in\n"},
		{[]string{"-u"}, "in\n"},
		{[]string{"f"}, "f1\nf2"},
		{[]string{"f", "-", "g"}, "f1\nf2in\ng1\n"},
		{[]string{"g", "g"}, "g1\ng1\n"},
	}

	for _, c := range cases {
		got, stderr, err := runCat(t, "in\n", dir, c.in...)
		require.NoError(t, err)
		assert.Empty(t, stderr)
		if got != c.want {
			t.Errorf("cat (%q) == %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCatDisplay(t *testing.T) {
	cases := []struct {
		args []string
		in   string
		want string
	}{
		{[]string{"-n"}, "a\n\nb", "     1\ta\n     2\t\n     3\tb"},
		{[]string{"-b"}, "a\n\nb\n", "     1\ta\n\n     2\tb\n"},
		{[]string{"-bn"}, "a\n\nb\n", "     1\ta\n\n     2\tb\n"},
		{[]string{"-s"}, "\n\n\na\n\n\nb\n\n", "\na\n\nb\n\n"},
		{[]string{"-sn"}, "a\n\n\nb\n", "     1\ta\n     2\t\n     3\tb\n"},
		{[]string{"-E"}, "a\n\nb", "a$\n$\nb"},
		{[]string{"-T"}, "a\tb\x01\n", "a^Ib\x01\n"},
		{[]string{"-v"}, "\x01\t\x7f\r\n", "^A\t^?^M\n"},
		{[]string{"-v"}, "\x80\xa0\xc3\xa9\x89\xff\n", "M-^@M- M-CM-)M-^IM-^?\n"},
		{[]string{"-A"}, "a\tb\r\n", "a^Ib^M$\n"},
		{[]string{"-e"}, "\x01\t\n", "^A\t$\n"},
		{[]string{"-t"}, "\t\x01\n", "^I^A\n"},
		{[]string{"--number", "--show-ends"}, "x\n", "     1\tx$\n"},
		{[]string{"-n"}, strings.Repeat("x\n", 10), "     1\tx\n     2\tx\n     3\tx\n     4\tx\n     5\tx\n" +
			"     6\tx\n     7\tx\n     8\tx\n     9\tx\n    10\tx\n"},
	}

	for _, c := range cases {
		got, stderr, err := runCat(t, c.in, "", c.args...)
		require.NoError(t, err, "%q", c.args)
		assert.Empty(t, stderr)
		if got != c.want {
			t.Errorf("cat %q on %q == %q, want %q", c.args, c.in, got, c.want)
		}
	}
}

func TestCatNumbersAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("f1\nf2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g"), []byte("g1\n"), 0o644))

	got, _, err := runCat(t, "in\n", dir, "-n", "f", "-", "g", "g")
	require.NoError(t, err)
	assert.Equal(t, "     1\tf1\n     2\tf2in\n     3\tg1\n     4\tg1\n", got)
}

func TestCatDisplaySkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("f1\nf2"), 0o644))

	got, stderr, err := runCat(t, "", dir, "-n", "nope", "f", "gone")
	assert.Equal(t, "     1\tf1\n     2\tf2", got)
	assert.Equal(t, "cat: nope: no such file or directory\ncat: gone: no such file or directory\n", stderr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCatSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("f\n"), 0o644))

	got, stderr, err := runCat(t, "", dir, "nope", "f", "gone")
	assert.Equal(t, "f\n", got)
	assert.Equal(t, "cat: nope: no such file or directory\ncat: gone: no such file or directory\n", stderr)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCatBadFlag(t *testing.T) {
	got, stderr, err := runCat(t, "", "", "-Z")
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, strings.HasPrefix(stderr, "cat: "), stderr)
}
