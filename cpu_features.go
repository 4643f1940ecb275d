package gpudbn

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks available CPU instruction set extensions
type CPUFeatures struct {
	HasAVX      bool
	HasAVX2     bool
	HasAVX512F  bool
	HasFMA      bool
	HasSSE4     bool
	HasASIMD    bool // ARM64 NEON
}

// detectCPUFeatures reads the feature bits reported by the runtime
func detectCPUFeatures() CPUFeatures {
	f := CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
	}
	if runtime.GOARCH == "arm64" {
		f.HasASIMD = cpu.ARM64.HasASIMD
	}
	return f
}

// MayFuseMultiplyAdd reports whether the compiler may contract a*b+c into a
// fused instruction on this architecture. Kernels and the reference path
// round products explicitly, so results do not depend on this.
func (f CPUFeatures) MayFuseMultiplyAdd() bool {
	switch runtime.GOARCH {
	case "arm64", "ppc64", "ppc64le", "s390x", "riscv64", "loong64":
		return true
	}
	return false
}

// Best returns the widest vector extension detected
func (f CPUFeatures) Best() string {
	switch {
	case f.HasAVX512F:
		return "AVX512"
	case f.HasAVX2 && f.HasFMA:
		return "AVX2"
	case f.HasSSE4:
		return "SSE4"
	case f.HasASIMD:
		return "NEON"
	}
	return "scalar"
}

// String lists available CPU features
func (f CPUFeatures) String() string {
	features := []string{}
	if f.HasSSE4 {
		features = append(features, "SSE4")
	}
	if f.HasAVX {
		features = append(features, "AVX")
	}
	if f.HasAVX2 {
		features = append(features, "AVX2")
	}
	if f.HasFMA {
		features = append(features, "FMA")
	}
	if f.HasAVX512F {
		features = append(features, "AVX512F")
	}
	if f.HasASIMD {
		features = append(features, "ASIMD")
	}
	if len(features) == 0 {
		return "No SIMD extensions detected"
	}
	return "CPU features: " + strings.Join(features, ", ")
}
