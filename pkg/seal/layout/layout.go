// Package layout defines the seal layout model and the render settings shared
// by every compositor backend.
//
// A [Layout] is produced upstream by the seal assembly step and decoded from
// its JSON artifact; a [Settings] value is decoded from the settings artifact
// (or taken from [DefaultSettings]). Both are treated as immutable: the
// compositor reads them and never writes back.
//
// # JSON
//
// Layout artifact:
//
//	{
//	  "centralDesign": "sri-yantra",
//	  "ring1Tokens": [{"position": "12:00", "angle": 0, "color": "BLUE", "content": 7, "type": "number"}],
//	  "ring2Tokens": [{"position": "3:00", "angle": 90, "color": "GOLD", "content": "om.png", "type": "glyph"}],
//	  "ring3Affirmation": "OM NAMAH SHIVAYA",
//	  "userConfig": {}
//	}
//
// Settings artifact:
//
//	{"centerX": 0, "centerY": 0, "centralRadius": 80, "innerRadius": 140,
//	 "middleRadius": 200, "outerRadius": 260, "canvasSize": 600}
package layout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Token kinds as spelled in the layout artifact.
const (
	KindNumber = "number"
	KindGlyph  = "glyph"
)

// Layout describes one seal.
type Layout struct {
	CentralDesign string          `json:"centralDesign"`
	Ring1         []NumberToken   `json:"ring1Tokens"`
	Ring2         []GlyphToken    `json:"ring2Tokens"`
	Affirmation   string          `json:"ring3Affirmation"`
	UserConfig    json.RawMessage `json:"userConfig,omitempty"`
}

// NumberToken is a numeral placed on ring 1.
type NumberToken struct {
	Position string  `json:"position"`
	Angle    float64 `json:"angle"`
	Color    string  `json:"color"`
	Value    Number  `json:"content"`
	Kind     string  `json:"type,omitempty"`
}

// GlyphToken is a glyph image placed on ring 2.
type GlyphToken struct {
	Position string  `json:"position"`
	Angle    float64 `json:"angle"`
	Color    string  `json:"color"`
	GlyphRef string  `json:"content"`
	Kind     string  `json:"type,omitempty"`
}

// Number is a numeral token value. It decodes from a JSON number or from a
// string holding an integer, since upstream generators emit either.
type Number int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if v, err := strconv.Atoi(s); err == nil {
		*n = Number(v)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return fmt.Errorf("content %s is not an integer", string(data))
	}
	*n = Number(int(f))
	return nil
}

// GlyphRefs returns the distinct non-empty glyph filenames in ring order.
func (l *Layout) GlyphRefs() []string {
	seen := make(map[string]struct{}, len(l.Ring2))
	var refs []string
	for _, t := range l.Ring2 {
		ref := strings.TrimSpace(t.GlyphRef)
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// TokenCount returns the number of tokens across both rings.
func (l *Layout) TokenCount() int {
	return len(l.Ring1) + len(l.Ring2)
}
