package webgpu

import "github.com/cogentcore/webgpu/wgpu"

// WebGPUBackendBuilderOption is a functional option applied to the backend before the
// adapter is requested.
type WebGPUBackendBuilderOption func(*webgpuBackend)

// WithVSync selects FIFO presentation when enabled and immediate presentation otherwise.
//
// Parameters:
//   - enabled: true to wait for vertical blank (default)
//
// Returns:
//   - WebGPUBackendBuilderOption: option function to apply
func WithVSync(enabled bool) WebGPUBackendBuilderOption {
	return func(b *webgpuBackend) {
		if enabled {
			b.presentMode = wgpu.PresentModeFifo
			return
		}
		b.presentMode = wgpu.PresentModeImmediate
	}
}

// WithMSAA sets the multisample count of the main render pass.
// WebGPU guarantees 1 (off) and 4; other counts fall back to 1.
//
// Parameters:
//   - samples: the sample count
//
// Returns:
//   - WebGPUBackendBuilderOption: option function to apply
func WithMSAA(samples uint32) WebGPUBackendBuilderOption {
	return func(b *webgpuBackend) {
		if samples == 4 {
			b.sampleCount = 4
			return
		}
		b.sampleCount = 1
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - WebGPUBackendBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) WebGPUBackendBuilderOption {
	return func(b *webgpuBackend) {
		b.forceFallbackAdapter = force
	}
}
