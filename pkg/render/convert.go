package render

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	errs "github.com/anointarray/sealforge/pkg/errors"
	"github.com/anointarray/sealforge/pkg/observability"
)

// Output formats supported by [RSVG.Convert].
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// DefaultTool is the rasterizer binary looked up on PATH.
const DefaultTool = "rsvg-convert"

// DefaultTimeout bounds one rasterizer run.
const DefaultTimeout = 30 * time.Second

// waitDelay is how long the rasterizer may keep its pipes open after being
// killed.
const waitDelay = 2 * time.Second

// maxStderr bounds the rasterizer output quoted in errors.
const maxStderr = 512

// Rasterizer turns an SVG document into a size×size PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg []byte, size int) ([]byte, error)
}

// Converter turns an SVG document into another format at size×size.
type Converter interface {
	Convert(ctx context.Context, svg []byte, format string, size int) ([]byte, error)
}

// RasterizerFunc adapts a function to [Rasterizer].
type RasterizerFunc func(ctx context.Context, svg []byte, size int) ([]byte, error)

// Rasterize calls f.
func (f RasterizerFunc) Rasterize(ctx context.Context, svg []byte, size int) ([]byte, error) {
	return f(ctx, svg, size)
}

// RSVG shells out to rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVG struct {
	// Path is the binary to run; empty means DefaultTool on PATH.
	Path string
	// Timeout bounds each run; zero means DefaultTimeout.
	Timeout time.Duration
}

// NewRSVG returns an rsvg-convert rasterizer.
func NewRSVG(path string, timeout time.Duration) *RSVG {
	return &RSVG{Path: path, Timeout: timeout}
}

func (r *RSVG) tool() string {
	if r.Path == "" {
		return DefaultTool
	}
	return r.Path
}

func (r *RSVG) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Available reports whether the rasterizer binary can be found.
func (r *RSVG) Available() error {
	if _, err := exec.LookPath(r.tool()); err != nil {
		return errs.Wrap(errs.ErrCodeUnsupported, err,
			"high-fidelity export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}
	return nil
}

var (
	_ Rasterizer = (*RSVG)(nil)
	_ Converter  = (*RSVG)(nil)
)

// Rasterize converts svg to a PNG of size×size pixels.
func (r *RSVG) Rasterize(ctx context.Context, svg []byte, size int) ([]byte, error) {
	return r.Convert(ctx, svg, FormatPNG, size)
}

// Convert converts svg to format (png or pdf) at size×size. On timeout,
// cancellation or a non-zero exit the process is killed and no bytes are
// returned.
func (r *RSVG) Convert(ctx context.Context, svg []byte, format string, size int) ([]byte, error) {
	if format != FormatPNG && format != FormatPDF {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "rasterizer cannot produce %q", format)
	}
	if err := r.Available(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	n := strconv.Itoa(size)
	cmd := exec.CommandContext(ctx, r.tool(), "-f", format, "-w", n, "-h", n)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Cancel = func() error { return cmd.Process.Kill() }
	cmd.WaitDelay = waitDelay

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	start := time.Now()
	err := cmd.Run()
	defer func() { observability.Render().OnRasterize(ctx, r.tool(), time.Since(start), err) }()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = errs.Wrap(errs.ErrCodeTimeout, ctx.Err(), "%s exceeded %s", r.tool(), r.timeout())
		return nil, err
	case ctx.Err() != nil:
		err = errs.Wrap(errs.ErrCodeRasterize, ctx.Err(), "%s cancelled", r.tool())
		return nil, err
	case err != nil:
		err = errs.Wrap(errs.ErrCodeRasterize, err, "%s: %s", r.tool(), stderrText(errBuf.String()))
		return nil, err
	case out.Len() == 0:
		err = errs.New(errs.ErrCodeRasterize, "%s produced no output", r.tool())
		return nil, err
	}
	return out.Bytes(), nil
}

func stderrText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = s[:maxStderr] + "..."
	}
	return s
}
