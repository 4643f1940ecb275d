package gpudbn

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleVersion(t *testing.T) {
	tests := []struct {
		name     string
		deps     []*debug.Module
		version  string
		checksum string
	}{
		{"absent", []*debug.Module{{Path: "example.com/other", Version: "v1.0.0"}}, "", ""},
		{"plain", []*debug.Module{{Path: root, Version: "v0.3.0", Sum: "h1:abc"}}, "v0.3.0", "h1:abc"},
		{"replaced_path", []*debug.Module{{Path: root, Version: "v0.3.0", Replace: &debug.Module{Path: "../gpudbn"}}}, "v0.3.0=>../gpudbn", ""},
		{"replaced_version", []*debug.Module{{Path: root, Version: "v0.3.0", Replace: &debug.Module{Version: "v0.4.0", Sum: "h1:def"}}}, "v0.3.0=>v0.4.0", "h1:def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, sum := moduleVersion(tt.deps)
			assert.Equal(t, tt.version, v)
			assert.Equal(t, tt.checksum, sum)
		})
	}
}
