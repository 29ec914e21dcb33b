package render

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	errs "github.com/anointarray/sealforge/pkg/errors"
)

// fakeTool writes an executable shell script standing in for rsvg-convert.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-rsvg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRSVGPassesSize(t *testing.T) {
	// Echo the arguments so the test can see the size flags.
	tool := fakeTool(t, `cat > /dev/null; echo "$@"`)
	out, err := NewRSVG(tool, time.Second).Rasterize(context.Background(), []byte("<svg/>"), 2400)
	if err != nil {
		t.Fatalf("Rasterize error: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "-f png -w 2400 -h 2400" {
		t.Errorf("args = %q, want -f png -w 2400 -h 2400", got)
	}
}

func TestRSVGPDF(t *testing.T) {
	tool := fakeTool(t, `cat > /dev/null; echo "$2"`)
	out, err := NewRSVG(tool, time.Second).Convert(context.Background(), []byte("<svg/>"), FormatPDF, 600)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "pdf" {
		t.Errorf("format arg = %q, want pdf", out)
	}
}

func TestRSVGStdin(t *testing.T) {
	tool := fakeTool(t, `cat`)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	out, err := NewRSVG(tool, time.Second).Rasterize(context.Background(), svg, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, svg) {
		t.Errorf("stdin = %q, want the SVG document", out)
	}
}

func TestRSVGFailure(t *testing.T) {
	tool := fakeTool(t, `echo "bad svg" >&2; exit 3`)
	out, err := NewRSVG(tool, time.Second).Rasterize(context.Background(), []byte("x"), 100)
	if out != nil {
		t.Errorf("out = %q, want nil on failure", out)
	}
	if !errs.Is(err, errs.ErrCodeRasterize) {
		t.Fatalf("error = %v, want %v", err, errs.ErrCodeRasterize)
	}
	if !strings.Contains(err.Error(), "bad svg") {
		t.Errorf("error %q should quote stderr", err)
	}
}

func TestRSVGEmptyOutput(t *testing.T) {
	tool := fakeTool(t, `cat > /dev/null`)
	_, err := NewRSVG(tool, time.Second).Rasterize(context.Background(), []byte("x"), 100)
	if !errs.Is(err, errs.ErrCodeRasterize) {
		t.Errorf("error = %v, want %v", err, errs.ErrCodeRasterize)
	}
}

func TestRSVGTimeoutKills(t *testing.T) {
	tool := fakeTool(t, `exec sleep 30`)
	start := time.Now()
	out, err := NewRSVG(tool, 100*time.Millisecond).Rasterize(context.Background(), []byte("x"), 100)
	if out != nil {
		t.Error("timed-out run should return no bytes")
	}
	if !errs.Is(err, errs.ErrCodeTimeout) {
		t.Fatalf("error = %v, want %v", err, errs.ErrCodeTimeout)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("took %v, process was not killed", elapsed)
	}
}

func TestRSVGCancelled(t *testing.T) {
	tool := fakeTool(t, `exec sleep 30`)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	_, err := NewRSVG(tool, 10*time.Second).Rasterize(ctx, []byte("x"), 100)
	if !errs.Is(err, errs.ErrCodeRasterize) {
		t.Errorf("error = %v, want %v", err, errs.ErrCodeRasterize)
	}
}

func TestRSVGMissingTool(t *testing.T) {
	r := NewRSVG(filepath.Join(t.TempDir(), "no-such-rsvg"), 0)
	if err := r.Available(); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Available() = %v, want %v", err, errs.ErrCodeUnsupported)
	}
	if _, err := r.Rasterize(context.Background(), nil, 10); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Rasterize() = %v, want %v", err, errs.ErrCodeUnsupported)
	}
}

func TestRSVGBadFormat(t *testing.T) {
	_, err := NewRSVG("", 0).Convert(context.Background(), nil, "gif", 10)
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want %v", err, errs.ErrCodeInvalidFormat)
	}
}

func TestRSVGDefaults(t *testing.T) {
	r := NewRSVG("", 0)
	if r.tool() != DefaultTool || r.timeout() != DefaultTimeout {
		t.Errorf("defaults = %s/%v, want %s/%v", r.tool(), r.timeout(), DefaultTool, DefaultTimeout)
	}
}

func TestRasterizerFunc(t *testing.T) {
	var f Rasterizer = RasterizerFunc(func(_ context.Context, svg []byte, size int) ([]byte, error) {
		return []byte{byte(size)}, nil
	})
	out, err := f.Rasterize(context.Background(), nil, 7)
	if err != nil || len(out) != 1 || out[0] != 7 {
		t.Errorf("Rasterize = %v, %v", out, err)
	}
}

func TestRSVGReal(t *testing.T) {
	if _, err := exec.LookPath(DefaultTool); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><circle cx="5" cy="5" r="4" fill="red"/></svg>`)
	out, err := NewRSVG("", 10*time.Second).Rasterize(context.Background(), svg, 64)
	if err != nil {
		t.Fatalf("Rasterize error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
