package geometry

// ReferenceSize is the output size, in pixels, at which the text-fit font band
// of [textfit.DefaultOptions] applies unscaled.
const ReferenceSize = 600

// Metrics holds every non-radius size of a seal as a fraction of the output
// size. GlyphInset is the exception: it is a fraction of the ring-2 token
// radius.
type Metrics struct {
	RingStroke       float64 `json:"ring_stroke"`
	CentralBorder    float64 `json:"central_border"`
	GoldWidth        float64 `json:"gold_width"`
	GoldOffset       float64 `json:"gold_offset"`
	Margin           float64 `json:"margin"`
	Ring1TokenRadius float64 `json:"ring1_token_radius"`
	Ring2TokenRadius float64 `json:"ring2_token_radius"`
	GlyphInset       float64 `json:"glyph_inset"`
	NumeralFont      float64 `json:"numeral_font"`
	TokenOutline     float64 `json:"token_outline"`
	NumeralOutline   float64 `json:"numeral_outline"`
	TickRadius       float64 `json:"tick_radius"`
	FallbackFont     float64 `json:"fallback_font"`
}

// DefaultMetrics returns the standard seal proportions.
func DefaultMetrics() Metrics {
	return Metrics{
		RingStroke:       0.0017,
		CentralBorder:    0.0017,
		GoldWidth:        0.02,
		GoldOffset:       0.022,
		Margin:           0.008,
		Ring1TokenRadius: 0.03,
		Ring2TokenRadius: 0.037,
		GlyphInset:       0.78,
		NumeralFont:      0.028,
		TokenOutline:     0.0017,
		NumeralOutline:   0.0012,
		TickRadius:       0.004,
		FallbackFont:     0.022,
	}
}

// withDefaults fills zero fields from [DefaultMetrics].
func (m Metrics) withDefaults() Metrics {
	d := DefaultMetrics()
	fill := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&m.RingStroke, d.RingStroke)
	fill(&m.CentralBorder, d.CentralBorder)
	fill(&m.GoldWidth, d.GoldWidth)
	fill(&m.GoldOffset, d.GoldOffset)
	fill(&m.Margin, d.Margin)
	fill(&m.Ring1TokenRadius, d.Ring1TokenRadius)
	fill(&m.Ring2TokenRadius, d.Ring2TokenRadius)
	fill(&m.GlyphInset, d.GlyphInset)
	fill(&m.NumeralFont, d.NumeralFont)
	fill(&m.TokenOutline, d.TokenOutline)
	fill(&m.NumeralOutline, d.NumeralOutline)
	fill(&m.TickRadius, d.TickRadius)
	fill(&m.FallbackFont, d.FallbackFont)
	return m
}

// pixels is a Metrics resolved against one output size.
type pixels struct {
	ringStroke, centralBorder      float64
	goldWidth, goldOffset, margin  float64
	ring1Token, ring2Token, glyphR float64
	numeralFont, fallbackFont      float64
	tokenOutline, numeralOutline   float64
	tickRadius                     float64
}

func (m Metrics) at(size int) pixels {
	s := float64(size)
	return pixels{
		ringStroke:     m.RingStroke * s,
		centralBorder:  m.CentralBorder * s,
		goldWidth:      m.GoldWidth * s,
		goldOffset:     m.GoldOffset * s,
		margin:         m.Margin * s,
		ring1Token:     m.Ring1TokenRadius * s,
		ring2Token:     m.Ring2TokenRadius * s,
		glyphR:         m.GlyphInset * m.Ring2TokenRadius * s,
		numeralFont:    m.NumeralFont * s,
		fallbackFont:   m.FallbackFont * s,
		tokenOutline:   m.TokenOutline * s,
		numeralOutline: m.NumeralOutline * s,
		tickRadius:     m.TickRadius * s,
	}
}
