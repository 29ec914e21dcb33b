// Package seal groups the domain packages of a sacred seal.
//
//   - palette: color names to hex values and contrasting text colors
//   - clock: the 24 clock-position labels and their angles
//   - layout: the layout and settings artifacts
//   - textfit: repeating and sizing the ring-3 affirmation
//   - assets: template and glyph lookup across storage areas
//   - fallback: placeholder shapes for well-known central designs
//   - geometry: composing all of the above into a drawable scene
package seal
