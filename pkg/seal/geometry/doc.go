// Package geometry turns a seal layout into a backend-agnostic scene.
//
// # Overview
//
// [Compose] makes every coordinate and size decision for a seal and records
// the result as an ordered list of primitive operations ([Op]). Rendering
// backends (bitmap and SVG) only translate operations into their drawing
// model, so two backends fed the same scene cannot disagree on geometry.
//
// # Units
//
// Ring radii and the centre offset come from [layout.Settings] in
// canvas-size units and are multiplied by size / CanvasSize. Everything
// else (stroke widths, token radii, font sizes) is a fraction of the output
// size, see [Metrics]. There is exactly one mapping from output size to
// every pixel value in the scene.
//
// # Layers
//
// Operations are emitted layer by layer, each layer complete before the next:
//
//	LayerBackground  white disk (export) or white canvas (preview)
//	LayerRings       ring-1 and ring-2 strokes, plus ring 3 in preview
//	LayerGold        gold annulus outside ring 3
//	LayerCentral     template image or fallback shape, then its border
//	LayerRing1       numeral tokens
//	LayerRing2       glyph tokens
//	LayerText        ring-3 circular text, one op per visible rune
//	LayerDebug       tick markers (preview only)
//
// # Degradation
//
// Missing assets, unknown colours, unknown or duplicate positions, an empty
// affirmation and the gold-ring clamp never fail a render. Each is recorded
// in [Scene.Degradations] and logged at warn level.
package geometry
