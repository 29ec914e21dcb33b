package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/anointarray/sealforge/pkg/cache"
	"github.com/anointarray/sealforge/pkg/config"
	"github.com/anointarray/sealforge/pkg/pipeline"
	"github.com/anointarray/sealforge/pkg/seal/assets"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

const testLayout = `{
  "ring1Tokens": [{"position": "12:00", "color": "BLUE", "content": 7, "type": "number"}],
  "ring2Tokens": [{"position": "6:00", "color": "GOLD", "content": "om.png", "type": "glyph"}],
  "ring3Affirmation": "OM NAMAH SHIVAYA"
}`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with a config file that does not exist
// unless one is passed, returning stdout of commands that use cmd.OutOrStdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	hasConfig := false
	for _, a := range args {
		if a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append(args, "--config", filepath.Join(t.TempDir(), "missing.toml"))
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"png"}},
		{"svg", []string{"svg"}},
		{"png, SVG,pdf", []string{"png", "svg", "pdf"}},
		{"png,,", []string{"png"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		mode    geometry.Mode
		formats []string
		want    map[string]string
	}{
		{"single explicit", "out/seal.png", geometry.ModeExport, []string{"png"}, map[string]string{"png": "out/seal.png"}},
		{"default export", "", geometry.ModeExport, []string{"png", "svg"}, map[string]string{"png": "in/a.png", "svg": "in/a.svg"}},
		{"default preview", "", geometry.ModePreview, []string{"png"}, map[string]string{"png": "in/a.preview.png"}},
		{"base path", "out/seal.png", geometry.ModeExport, []string{"png", "pdf"}, map[string]string{"png": "out/seal.png", "pdf": "out/seal.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths("in/a.json", tt.output, tt.mode, tt.formats)
			for f, want := range tt.want {
				if got[f] != want {
					t.Errorf("path[%s] = %q, want %q", f, got[f], want)
				}
			}
		})
	}
}

func TestLayoutArg(t *testing.T) {
	if got, err := layoutArg([]string{"a.json"}, ""); err != nil || got != "a.json" {
		t.Errorf("layoutArg = %q, %v", got, err)
	}
	if _, err := layoutArg(nil, ""); err == nil {
		t.Error("layoutArg without a file should fail")
	}
	if _, err := layoutArg([]string{"a.json"}, "dir"); err == nil {
		t.Error("layoutArg with a file and --pick should fail")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "seal.json", testLayout)
	out := filepath.Join(dir, "seal-out.png")

	if _, err := execute(t, "render", in, "--no-cache", "--size", "200", "-o", out, "--assets", dir); err != nil {
		t.Fatalf("render error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderCommandFormats(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "seal.json", testLayout)

	if _, err := execute(t, "render", in, "--no-cache", "--size", "200", "-f", "png,svg"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, name := range []string{"seal.png", "seal.svg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRenderCommandRejects(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "seal.json", testLayout)
	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", in, "-f", "gif"}},
		{"bad size", []string{"render", in, "--no-cache", "--size", "4"}},
		{"bad fidelity", []string{"render", in, "--no-cache", "--fidelity", "ultra"}},
		{"missing layout", []string{"render", filepath.Join(dir, "nope.json"), "--no-cache"}},
		{"no layout", []string{"render"}},
		{"bad debug ring", []string{"preview", in, "--debug", "ring9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestPreviewCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "seal.json", testLayout)

	if _, err := execute(t, "preview", in, "--no-cache", "--size", "200", "--debug", "ring1,ring3"); err != nil {
		t.Fatalf("preview error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "seal.preview.png")); err != nil {
		t.Errorf("preview not written: %v", err)
	}
}

func TestFitCommand(t *testing.T) {
	out, err := execute(t, "fit", "om namah shivaya", "--size", "600")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"OM NAMAH SHIVAYA", "Repeats", "Font size"} {
		if !strings.Contains(out, want) {
			t.Errorf("fit output missing %q:\n%s", want, out)
		}
	}
}

func TestFitAtScalesBand(t *testing.T) {
	small := fitAt("OM", 1, 600)
	if small.FontSize != 8 {
		t.Errorf("tiny ring font = %v, want the minimum 8", small.FontSize)
	}
	big := fitAt("OM", 1, 1200)
	if big.FontSize != 16 {
		t.Errorf("tiny ring font at 1200 = %v, want the scaled minimum 16", big.FontSize)
	}
}

func TestClockCommand(t *testing.T) {
	out, err := execute(t, "clock")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"12:00", "3:00", "90.0°", "11:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("clock output missing %q", want)
		}
	}
}

func TestCachePathFromConfig(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "artifacts")
	cfg := writeFile(t, dir, "config.toml", "[cache]\ndir = "+tomlString(cacheDir)+"\n")

	out, err := execute(t, "cache", "path", "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), cacheDir)
	}
}

func TestCachePathRedis(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.toml", "[cache]\nbackend = \"redis\"\nredis_url = \"redis://localhost:6379/0\"\n")
	if _, err := execute(t, "cache", "path", "--config", cfg); err == nil {
		t.Error("cache path should fail for the redis backend")
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(filepath.Join(dir, "c"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	cfg := writeFile(t, dir, "config.toml", "[cache]\ndir = "+tomlString(fc.Dir())+"\n")

	if _, err := execute(t, "cache", "clear", "--config", cfg); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fc.Get(context.Background(), "k"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestBadConfig(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "config.toml", "[cache]\nbakend = \"file\"\n")
	if _, err := execute(t, "clock", "--config", cfg); err == nil {
		t.Error("unknown config key should fail")
	}
}

func TestConfigLogLevel(t *testing.T) {
	cfg := writeFile(t, t.TempDir(), "config.toml", "[log]\nlevel = \"debug\"\n")
	c := New(io.Discard, LogInfo)
	c.ConfigPath = cfg
	if err := c.loadConfig(); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestNewCacheBackends(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg = config.Default()
	c.cfg.Cache.Dir = t.TempDir()
	ctx := context.Background()

	if ch, _ := c.newCache(ctx, true); !isNull(ch) {
		t.Errorf("--no-cache gave %T, want NullCache", ch)
	}
	if ch, err := c.newCache(ctx, false); err != nil {
		t.Fatal(err)
	} else if _, ok := ch.(*cache.FileCache); !ok {
		t.Errorf("file backend gave %T", ch)
	}
	c.cfg.Cache.Backend = config.BackendNone
	if ch, _ := c.newCache(ctx, false); !isNull(ch) {
		t.Errorf("none backend gave %T, want NullCache", ch)
	}
}

func isNull(c cache.Cache) bool {
	_, ok := c.(cache.NullCache)
	return ok
}

func TestNewResolverOverride(t *testing.T) {
	cfg := config.Assets{BaseDir: "/srv", TemplateRoots: []string{"/tpl"}}
	r := newResolver(cfg, "", nil)
	if got := r.Roots(assets.KindTemplate); len(got) != 1 || got[0] != "/tpl" {
		t.Errorf("template roots = %v, want [/tpl]", got)
	}
	r = newResolver(cfg, "/other", nil)
	if got := r.Roots(assets.KindTemplate); len(got) == 0 || !strings.HasPrefix(got[0], "/other") {
		t.Errorf("--assets roots = %v, want under /other", got)
	}
}

func TestStatsLine(t *testing.T) {
	fresh := statsLine(&pipeline.Result{Stats: pipeline.Stats{Assets: 2, Missing: 1}}, "baseline")
	for _, want := range []string{"baseline", "2 assets", "1 missing", "fresh"} {
		if !strings.Contains(fresh, want) {
			t.Errorf("stats line %q missing %q", fresh, want)
		}
	}
	cached := statsLine(&pipeline.Result{CacheHit: true}, "high")
	if !strings.Contains(cached, "cached") || strings.Contains(cached, "assets") {
		t.Errorf("cached stats line = %q", cached)
	}
}

func TestScanLayouts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", testLayout)
	writeFile(t, dir, "bad.json", "not json")
	writeFile(t, dir, "notes.txt", "ignored")

	entries, err := scanLayouts(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	valid := 0
	for _, e := range entries {
		if e.Layout != nil {
			valid++
		} else if e.Err == nil {
			t.Errorf("%s has neither layout nor error", e.Path)
		}
	}
	if valid != 1 {
		t.Errorf("valid = %d, want 1", valid)
	}
}

func TestLayoutListModel(t *testing.T) {
	l := &layout.Layout{Affirmation: "OM"}
	m := NewLayoutListModel([]LayoutEntry{
		{Path: "a.json", Layout: l, Modified: time.Now()},
		{Path: "b.json", Err: os.ErrInvalid, Modified: time.Now()},
	})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(LayoutListModel)
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(LayoutListModel)
	if m.Selected != nil {
		t.Error("invalid layout should not be selectable")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(LayoutListModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(LayoutListModel)
	if m.Selected == nil || m.Selected.Path != "a.json" || cmd == nil {
		t.Errorf("selected = %+v, want a.json and quit", m.Selected)
	}

	if view := m.View(); !strings.Contains(view, "a.json") || !strings.Contains(view, "Select Layout") {
		t.Errorf("view missing rows:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("OM NAMAH SHIVAYA", 5); got != "OM N…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("OM", 5); got != "OM" {
		t.Errorf("truncate = %q", got)
	}
}

func tomlString(s string) string {
	return `'` + s + `'`
}

func TestExampleLayouts(t *testing.T) {
	entries, err := scanLayouts(filepath.Join("..", "..", "examples", "layouts"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("no example layouts found")
	}
	for _, e := range entries {
		if e.Layout == nil {
			t.Errorf("%s: %v", e.Path, e.Err)
		}
	}
}
