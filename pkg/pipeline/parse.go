package pipeline

import (
	"github.com/anointarray/sealforge/pkg/cache"
	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// Inputs are the two artifacts a seal is rendered from.
type Inputs struct {
	Layout   *layout.Layout
	Settings layout.Settings
}

// LoadInputs reads a layout file and an optional settings file. An empty
// settingsPath selects the default settings.
func LoadInputs(layoutPath, settingsPath string) (Inputs, error) {
	l, err := layout.ReadLayoutFile(layoutPath)
	if err != nil {
		return Inputs{}, err
	}
	s, err := layout.ReadSettingsFile(settingsPath)
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{Layout: l, Settings: s}, nil
}

// Hashes returns the content hashes of a layout and its settings, used in
// cache keys and artifact metadata.
func Hashes(l *layout.Layout, s layout.Settings) (layoutHash, settingsHash string, err error) {
	ld, err := layout.MarshalLayout(l)
	if err != nil {
		return "", "", err
	}
	sd, err := layout.MarshalSettings(s)
	if err != nil {
		return "", "", err
	}
	return cache.Hash(ld), cache.Hash(sd), nil
}
