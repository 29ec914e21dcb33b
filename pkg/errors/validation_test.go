package errors

import (
	"strings"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid png", "lotus.png", false},
		{"valid svg", "om-symbol.svg", false},
		{"valid template stem", "sri_yantra", false},
		{"valid with spaces", "flower of life.png", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"parent dir", "../secret.png", true},
		{"nested path", "glyphs/om.png", true},
		{"absolute", "/etc/passwd", true},
		{"backslash", "..\\win.png", true},
		{"null byte", "om\x00.png", true},
		{"control char", "om\x01.png", true},
		{"newline", "om\n.png", true},
		{"hidden file", ".htaccess", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidAssetName)
			}
		})
	}
}

func TestValidateSize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{600, false},
		{1200, false},
		{2400, false},
		{MinOutputSize, false},
		{MaxOutputSize, false},
		{0, true},
		{-600, true},
		{MinOutputSize - 1, true},
		{MaxOutputSize + 1, true},
	}

	for _, tt := range tests {
		err := ValidateSize(tt.size)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
	}
}
