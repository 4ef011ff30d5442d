package gpu

import "github.com/cogentcore/webgpu/wgpu"

// downlevelLimits is a conservative lower bound on device limits, compatible
// with most hardware including older mobile-class adapters. Only the
// buffer-related limits are lowered from the spec defaults; this program
// never binds textures.
func downlevelLimits() wgpu.Limits {
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 4
	limits.MaxUniformBufferBindingSize = 16384
	limits.MaxStorageBufferBindingSize = 128 << 20
	limits.MaxBufferSize = 256 << 20
	return limits
}

// deviceDescriptor returns the fixed device configuration: no optional
// features, downlevel limits.
func deviceDescriptor() *wgpu.DeviceDescriptor {
	limits := downlevelLimits()
	return &wgpu.DeviceDescriptor{
		Label: "device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	}
}
