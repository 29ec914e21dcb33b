package layout

// Default settings used when no settings artifact is configured.
const (
	DefaultCentralRadius = 80.0
	DefaultRing1Radius   = 140.0
	DefaultRing2Radius   = 200.0
	DefaultRing3Radius   = 260.0
	DefaultCanvasSize    = 600.0
)

// Settings is the geometric configuration of a seal. Radii and the centre
// offset are expressed in CanvasSize units and are scaled linearly by
// outputSize / CanvasSize at render time.
type Settings struct {
	CenterX       float64 `json:"centerX"`
	CenterY       float64 `json:"centerY"`
	CentralRadius float64 `json:"centralRadius"`
	Ring1Radius   float64 `json:"innerRadius"`
	Ring2Radius   float64 `json:"middleRadius"`
	Ring3Radius   float64 `json:"outerRadius"`
	CanvasSize    float64 `json:"canvasSize"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		CentralRadius: DefaultCentralRadius,
		Ring1Radius:   DefaultRing1Radius,
		Ring2Radius:   DefaultRing2Radius,
		Ring3Radius:   DefaultRing3Radius,
		CanvasSize:    DefaultCanvasSize,
	}
}

// Scale returns the factor mapping settings units to pixels at outputSize.
func (s Settings) Scale(outputSize int) float64 {
	return float64(outputSize) / s.CanvasSize
}
