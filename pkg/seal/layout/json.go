package layout

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	errs "github.com/anointarray/sealforge/pkg/errors"
)

// ReadLayout decodes and validates a layout artifact from r.
func ReadLayout(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidLayout, err, "decode layout")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// ParseLayout decodes and validates a layout artifact held in memory.
func ParseLayout(data []byte) (*Layout, error) {
	return ReadLayout(bytes.NewReader(data))
}

// ReadLayoutFile decodes and validates the layout artifact at path.
func ReadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLayout(f)
}

// MarshalLayout encodes l in the artifact form. The output is stable for
// equal layouts and is used for cache keys.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.Marshal(l)
}

// ParseSettings decodes a settings artifact. Keys missing from data keep
// their [DefaultSettings] value.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, errs.Wrap(errs.ErrCodeInvalidSettings, err, "decode settings")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ReadSettingsFile loads the settings artifact at path. A missing file or an
// empty path yields [DefaultSettings].
func ReadSettingsFile(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, errs.Wrap(errs.ErrCodeInvalidSettings, err, "read settings %s", path)
	}
	return ParseSettings(data)
}

// MarshalSettings encodes s in the artifact form.
func MarshalSettings(s Settings) ([]byte, error) {
	return json.Marshal(s)
}
