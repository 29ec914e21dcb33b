package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.Go != runtime.Version() {
		t.Errorf("Get() = %+v", info)
	}
}

func TestTemplate(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	t.Cleanup(func() { Version = old })
	if !strings.Contains(Template(), "v9.9.9") {
		t.Errorf("Template() = %q, want version", Template())
	}
	if !strings.Contains(String(), "version: v9.9.9") {
		t.Errorf("String() = %q, want version line", String())
	}
}
