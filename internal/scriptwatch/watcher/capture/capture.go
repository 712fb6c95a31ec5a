// Package capture redirects the process-wide standard output and error
// streams into in-memory buffers for the duration of one load attempt.
package capture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
)

// active guards the process-wide streams; at most one capture may hold them.
var active atomic.Bool

// host holds the streams that were installed when the running capture began
var host atomic.Pointer[hostStreams]

type hostStreams struct {
	stdout *os.File
	stderr *os.File
}

// Output is the text captured during one attempt
type Output struct {
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
}

// Empty reports whether nothing was written to either stream
func (o Output) Empty() bool {
	return o.Stdout == "" && o.Stderr == ""
}

// OutputCapture owns the redirected streams between Begin and End
type OutputCapture struct {
	origStdout *os.File
	origStderr *os.File
	outW       *os.File
	errW       *os.File
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	wg         sync.WaitGroup
	once       sync.Once
}

// Begin remembers the current os.Stdout and os.Stderr and replaces them with
// pipes drained into private buffers. It fails with ErrCaptureActive while
// another capture is in progress.
func Begin() (*OutputCapture, error) {
	if !active.CompareAndSwap(false, true) {
		return nil, swerrors.ErrCaptureActive
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		active.Store(false)
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		_ = outR.Close()
		_ = outW.Close()
		active.Store(false)
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	c := &OutputCapture{
		origStdout: os.Stdout,
		origStderr: os.Stderr,
		outW:       outW,
		errW:       errW,
	}

	c.wg.Add(2)
	go c.drain(outR, &c.stdout)
	go c.drain(errR, &c.stderr)

	host.Store(&hostStreams{stdout: c.origStdout, stderr: c.origStderr})
	os.Stdout = outW
	os.Stderr = errW
	return c, nil
}

func (c *OutputCapture) drain(r *os.File, buf *bytes.Buffer) {
	defer c.wg.Done()
	defer func() { _ = r.Close() }()
	_, _ = io.Copy(buf, r)
}

// End restores the streams remembered by Begin and waits until everything
// written to the pipes has been buffered. Safe to call more than once.
func (c *OutputCapture) End() {
	c.once.Do(func() {
		os.Stdout = c.origStdout
		os.Stderr = c.origStderr
		host.Store(nil)

		_ = c.outW.Close()
		_ = c.errW.Close()
		c.wg.Wait()

		active.Store(false)
	})
}

// Output ends the capture if still active and returns the captured text
func (c *OutputCapture) Output() Output {
	c.End()
	return Output{
		Stdout: c.stdout.String(),
		Stderr: c.stderr.String(),
	}
}

// Run executes fn with both streams captured. The original streams are
// restored before Run returns, including when fn panics. The returned error
// is either ErrCaptureActive or the error returned by fn.
func Run(fn func() error) (Output, error) {
	c, err := Begin()
	if err != nil {
		return Output{}, err
	}
	defer c.End()

	fnErr := fn()
	return c.Output(), fnErr
}

// Active reports whether a capture currently holds the process streams
func Active() bool {
	return active.Load()
}

// HostStreams returns the streams that bypass the running capture: the
// originals remembered by Begin while a capture is active, os.Stdout and
// os.Stderr otherwise. Host components log through these so their messages
// never land in a script's captured output.
func HostStreams() (stdout, stderr *os.File) {
	if h := host.Load(); h != nil {
		return h.stdout, h.stderr
	}
	return os.Stdout, os.Stderr
}
