// Package multireader concatenates an ordered list of input sources into a
// single stream. The name "-" stands for standard input; every other name is
// a file. Sources are opened lazily, one at a time: the next file is opened
// only after the current one reaches EOF, and it is closed as soon as it is
// exhausted.
package multireader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cjneidhart/coreutils/internal/sys"
)

// Stdin is the source name that selects live input.
const Stdin = "-"

// ErrClosed is returned by Read after Close.
var ErrClosed = errors.New("multireader: read after close")

// Policy decides what happens when a source cannot be opened or read.
type Policy int

const (
	// Abort stops the stream at the failing source. Everything read from
	// earlier sources has already been returned.
	Abort Policy = iota

	// Skip reports the failure to the skip handler and carries on with the
	// next source. The last Read returns all failures joined instead of EOF.
	Skip
)

func (p Policy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// SourceError reports a source that could not be opened or read.
type SourceError struct {
	Name string
	Err  error
}

func (e *SourceError) Error() string {
	// os.Open already names the path; keep only the cause so the message
	// reads "name: no such file or directory".
	cause := e.Err
	var pe *fs.PathError
	if errors.As(cause, &pe) {
		cause = pe.Err
	}
	return DisplayName(e.Name) + ": " + cause.Error()
}

func (e *SourceError) Unwrap() error { return e.Err }

// DisplayName is the name used for a source in diagnostics.
func DisplayName(name string) string {
	if name == Stdin {
		return "standard input"
	}
	return name
}

// Option configures a Reader.
type Option func(*Reader)

// WithStdin sets the reader used for the "-" source. The default, also used
// when r is nil, is os.Stdin.
func WithStdin(r io.Reader) Option {
	return func(m *Reader) {
		if r != nil {
			m.stdin = r
		}
	}
}

// WithDir resolves relative file names against dir.
func WithDir(dir string) Option {
	return func(m *Reader) { m.dir = dir }
}

// WithPolicy sets the failure policy. The default is Abort.
func WithPolicy(p Policy) Option {
	return func(m *Reader) { m.policy = p }
}

// WithSkipHandler is called with every failure dropped under the Skip policy,
// at the moment it happens.
func WithSkipHandler(fn func(*SourceError)) Option {
	return func(m *Reader) { m.onSkip = fn }
}

// WithLogger sets the logger for debug events.
func WithLogger(log *zap.Logger) Option {
	return func(m *Reader) {
		if log != nil {
			m.log = log
		}
	}
}

// Reader is an io.Reader over the concatenation of its sources. It is not
// safe for concurrent use.
type Reader struct {
	names  []string
	next   int
	stdin  io.Reader
	dir    string
	policy Policy
	onSkip func(*SourceError)
	log    *zap.Logger

	name   string    // current source
	cur    io.Reader // nil between sources
	closer io.Closer // non-nil only for files

	skipped []error
	err     error // sticky
}

// New returns a Reader over names. An empty list is an empty stream.
func New(names []string, opts ...Option) *Reader {
	r := &Reader{
		names: append([]string(nil), names...),
		stdin: os.Stdin,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the source currently being read, or "" before the first and
// after the last one.
func (r *Reader) Name() string { return r.name }

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if r.err != nil {
			return 0, r.err
		}
		if r.cur == nil {
			if r.next >= len(r.names) {
				r.name = ""
				r.err = io.EOF
				if len(r.skipped) > 0 {
					r.err = errors.Join(r.skipped...)
				}
				continue
			}
			if err := r.open(r.names[r.next]); err != nil {
				if err = r.fail(err); err != nil {
					return 0, err
				}
			}
			continue
		}

		n, err := r.cur.Read(p)
		switch {
		case err == io.EOF:
			r.release()
			if n > 0 {
				return n, nil
			}
		case err != nil:
			serr := &SourceError{Name: r.name, Err: err}
			r.release()
			if err := r.fail(serr); err != nil {
				return n, err
			}
			if n > 0 {
				return n, nil
			}
		default:
			return n, nil
		}
	}
}

// Close releases the open source, if any. Later reads return ErrClosed.
func (r *Reader) Close() error {
	var err error
	if r.closer != nil {
		err = r.closer.Close()
	}
	r.cur, r.closer = nil, nil
	r.next = len(r.names)
	r.err = ErrClosed
	return err
}

func (r *Reader) open(name string) error {
	r.next++
	r.name = name
	if name == Stdin {
		r.cur, r.closer = r.stdin, nil
		r.log.Debug("reading source", zap.String("source", DisplayName(name)))
		return nil
	}

	path := name
	if r.dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return &SourceError{Name: name, Err: err}
	}
	// The hint is advisory; pipes and ttys reject it.
	_ = sys.Fadvise(int(file.Fd()))
	r.cur, r.closer = file, file
	r.log.Debug("opened source", zap.String("source", name))
	return nil
}

// release closes the current source. Live input is left open.
func (r *Reader) release() {
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			r.log.Debug("close failed", zap.String("source", r.name), zap.Error(err))
		}
		r.log.Debug("closed source", zap.String("source", r.name))
	}
	r.cur, r.closer = nil, nil
}

// fail applies the policy to err. It returns nil when the stream goes on.
func (r *Reader) fail(err error) error {
	var serr *SourceError
	if !errors.As(err, &serr) {
		serr = &SourceError{Name: r.name, Err: err}
	}
	if r.policy == Skip {
		r.log.Debug("skipping source", zap.String("source", serr.Name), zap.Error(serr.Err))
		r.skipped = append(r.skipped, serr)
		if r.onSkip != nil {
			r.onSkip(serr)
		}
		return nil
	}
	r.err = serr
	return serr
}
