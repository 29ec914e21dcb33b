package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/anointarray/sealforge/pkg/errors"
)

const sampleLayout = `{
  "centralDesign": "sri-yantra",
  "ring1Tokens": [
    {"position": "12:00", "angle": 0, "color": "BLUE", "content": 7, "type": "number"},
    {"position": "03:00", "angle": 90, "color": "RED", "content": "9", "type": "number"}
  ],
  "ring2Tokens": [
    {"position": "6:00", "angle": 180, "color": "GOLD", "content": "om.png", "type": "glyph"},
    {"position": "9:00", "angle": 270, "color": "TEAL", "content": "om.png", "type": "glyph"},
    {"position": "1:00", "angle": 30, "color": "TEAL", "content": "lotus.svg", "type": "glyph"}
  ],
  "ring3Affirmation": "gayatri: om bhur bhuva swaha",
  "userConfig": {"name": "Asha"}
}`

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte(sampleLayout))
	if err != nil {
		t.Fatalf("ParseLayout error: %v", err)
	}
	if l.CentralDesign != "sri-yantra" {
		t.Errorf("CentralDesign = %q, want sri-yantra", l.CentralDesign)
	}
	if len(l.Ring1) != 2 || len(l.Ring2) != 3 {
		t.Fatalf("rings = %d/%d, want 2/3", len(l.Ring1), len(l.Ring2))
	}
	if l.Ring1[0].Value != 7 {
		t.Errorf("Ring1[0].Value = %d, want 7", l.Ring1[0].Value)
	}
	if l.Ring1[1].Value != 9 {
		t.Errorf("Ring1[1].Value = %d, want 9 (from string)", l.Ring1[1].Value)
	}
	if l.Ring2[0].GlyphRef != "om.png" {
		t.Errorf("Ring2[0].GlyphRef = %q, want om.png", l.Ring2[0].GlyphRef)
	}
	if !strings.Contains(string(l.UserConfig), "Asha") {
		t.Errorf("UserConfig = %s, want raw object preserved", l.UserConfig)
	}
	if l.TokenCount() != 5 {
		t.Errorf("TokenCount() = %d, want 5", l.TokenCount())
	}
}

func TestGlyphRefsDistinct(t *testing.T) {
	l, err := ParseLayout([]byte(sampleLayout))
	if err != nil {
		t.Fatalf("ParseLayout error: %v", err)
	}
	refs := l.GlyphRefs()
	want := []string{"om.png", "lotus.svg"}
	if len(refs) != len(want) {
		t.Fatalf("GlyphRefs() = %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("GlyphRefs()[%d] = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestParseLayoutRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"centralDesign": `},
		{"array root", `[1, 2, 3]`},
		{"fractional content", `{"ring1Tokens": [{"position": "1:00", "content": 1.5}]}`},
		{"word content", `{"ring1Tokens": [{"position": "1:00", "content": "seven"}]}`},
		{"wrong ring1 type", `{"ring1Tokens": [{"position": "1:00", "content": 1, "type": "glyph"}]}`},
		{"wrong ring2 type", `{"ring2Tokens": [{"position": "1:00", "content": "a.png", "type": "number"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, errs.ErrCodeInvalidLayout) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidLayout)
			}
		})
	}
}

func TestParseLayoutTolerant(t *testing.T) {
	// Unknown colors, unknown positions and missing types are not fatal.
	data := `{"centralDesign": "x", "ring1Tokens": [{"position": "25:00", "color": "SPARKLE", "content": 1}], "ring3Affirmation": ""}`
	if _, err := ParseLayout([]byte(data)); err != nil {
		t.Errorf("ParseLayout error = %v, want nil", err)
	}
}

func TestMarshalLayoutStable(t *testing.T) {
	l, err := ParseLayout([]byte(sampleLayout))
	if err != nil {
		t.Fatalf("ParseLayout error: %v", err)
	}
	a, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout error: %v", err)
	}
	b, _ := MarshalLayout(l)
	if string(a) != string(b) {
		t.Error("MarshalLayout should be stable")
	}
	back, err := ParseLayout(a)
	if err != nil {
		t.Fatalf("re-parse error: %v", err)
	}
	if back.Ring1[1].Value != 9 {
		t.Errorf("re-parsed Value = %d, want 9", back.Ring1[1].Value)
	}
}

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Settings
	}{
		{"empty", ``, DefaultSettings()},
		{"object defaults", `{}`, DefaultSettings()},
		{
			"partial override",
			`{"outerRadius": 270, "centerY": -4}`,
			Settings{CenterY: -4, CentralRadius: 80, Ring1Radius: 140, Ring2Radius: 200, Ring3Radius: 270, CanvasSize: 600},
		},
		{
			"full",
			`{"centerX": 1, "centerY": 2, "centralRadius": 50, "innerRadius": 100, "middleRadius": 150, "outerRadius": 200, "canvasSize": 500}`,
			Settings{CenterX: 1, CenterY: 2, CentralRadius: 50, Ring1Radius: 100, Ring2Radius: 150, Ring3Radius: 200, CanvasSize: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSettings([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseSettings error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSettings = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSettingsRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `{"outerRadius": }`},
		{"zero canvas", `{"canvasSize": 0}`},
		{"negative canvas", `{"canvasSize": -600}`},
		{"zero central", `{"centralRadius": 0}`},
		{"inverted rings", `{"innerRadius": 220}`},
		{"outer inside middle", `{"outerRadius": 150}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.data))
			if !errs.Is(err, errs.ErrCodeInvalidSettings) {
				t.Errorf("ParseSettings(%s) error = %v, want %v", tt.data, err, errs.ErrCodeInvalidSettings)
			}
		})
	}
}

func TestReadSettingsFile(t *testing.T) {
	dir := t.TempDir()

	got, err := ReadSettingsFile(filepath.Join(dir, "missing.json"))
	if err != nil || got != DefaultSettings() {
		t.Errorf("missing file = %+v, %v, want defaults", got, err)
	}

	got, err = ReadSettingsFile("")
	if err != nil || got != DefaultSettings() {
		t.Errorf("empty path = %+v, %v, want defaults", got, err)
	}

	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"canvasSize": 1200, "centralRadius": 160, "innerRadius": 280, "middleRadius": 400, "outerRadius": 520}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = ReadSettingsFile(path)
	if err != nil {
		t.Fatalf("ReadSettingsFile error: %v", err)
	}
	if got.CanvasSize != 1200 || got.Ring3Radius != 520 {
		t.Errorf("ReadSettingsFile = %+v", got)
	}
}

func TestSettingsScale(t *testing.T) {
	s := DefaultSettings()
	if got := s.Scale(1200); got != 2 {
		t.Errorf("Scale(1200) = %v, want 2", got)
	}
	if got := s.Scale(300); got != 0.5 {
		t.Errorf("Scale(300) = %v, want 0.5", got)
	}
}
