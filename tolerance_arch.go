package gpudbn

import (
	"runtime"
)

// ArchToleranceConfig provides architecture-specific tolerance configurations
type ArchToleranceConfig struct {
	// Base tolerance for all architectures
	Base ToleranceConfig

	// Architecture-specific overrides
	AMD64   *ToleranceConfig
	ARM64   *ToleranceConfig
	Generic *ToleranceConfig
}

// GetArchTolerance returns the appropriate tolerance for the current architecture
func GetArchTolerance(config ArchToleranceConfig) ToleranceConfig {
	return archTolerance(config, runtime.GOARCH)
}

func archTolerance(config ArchToleranceConfig, goarch string) ToleranceConfig {
	base := config.Base

	switch goarch {
	case "amd64":
		if config.AMD64 != nil {
			return mergeTolerances(base, *config.AMD64)
		}
	case "arm64", "arm64be":
		if config.ARM64 != nil {
			return mergeTolerances(base, *config.ARM64)
		}
	default:
		if config.Generic != nil {
			return mergeTolerances(base, *config.Generic)
		}
	}

	return base
}

// mergeTolerances applies overrides to base tolerance
func mergeTolerances(base, override ToleranceConfig) ToleranceConfig {
	result := base

	// Only override non-zero values
	if override.AbsTol > 0 {
		result.AbsTol = override.AbsTol
	}
	if override.RelTol > 0 {
		result.RelTol = override.RelTol
	}
	if override.ULPTol > 0 {
		result.ULPTol = override.ULPTol
	}

	return result
}

// MultiplyArchTolerance covers the tiled multiply executor. Kernels and
// Reference share one summation order, so the gap is rounding alone unless
// the compiler contracts the accumulation.
var MultiplyArchTolerance = ArchToleranceConfig{
	Base: ToleranceConfig{
		AbsTol:   1e-6,
		RelTol:   1e-5,
		ULPTol:   4,
		CheckNaN: true,
		CheckInf: true,
	},
	ARM64: &ToleranceConfig{
		// arm64 fuses multiply-add aggressively
		AbsTol: 1e-5,
		RelTol: 1e-4,
		ULPTol: 16,
	},
	Generic: &ToleranceConfig{
		AbsTol: 1e-4,
		RelTol: 1e-3,
		ULPTol: 32,
	},
}

// VectorArchTolerance covers the vector-matrix kernels, including the
// fused transforms.
var VectorArchTolerance = ArchToleranceConfig{
	Base: ToleranceConfig{
		AbsTol:   1e-6,
		RelTol:   1e-5,
		ULPTol:   8,
		CheckNaN: true,
		CheckInf: true,
	},
	ARM64: &ToleranceConfig{
		AbsTol: 1e-5,
		RelTol: 1e-4,
		ULPTol: 32,
	},
}

// ElementwiseArchTolerance covers kernels without accumulation.
var ElementwiseArchTolerance = ArchToleranceConfig{
	Base: StrictTolerance(),
}

// GetOperationTolerance returns architecture-specific tolerance for a
// kernel family: "multiply", "vecmat" or "elementwise".
func GetOperationTolerance(operation string) ToleranceConfig {
	switch operation {
	case "multiply":
		return GetArchTolerance(MultiplyArchTolerance)
	case "vecmat":
		return GetArchTolerance(VectorArchTolerance)
	case "elementwise":
		return GetArchTolerance(ElementwiseArchTolerance)
	default:
		return DefaultTolerance()
	}
}

// IsARM64 returns true if running on ARM64 architecture
func IsARM64() bool {
	return runtime.GOARCH == "arm64" || runtime.GOARCH == "arm64be"
}
