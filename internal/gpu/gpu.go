// Package gpu acquires a WebGPU adapter and logical device for compute work.
// Uses cogentcore/webgpu bindings over wgpu-native.
package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Initialization failure kinds. Both are fatal to the program; there is no
// retry path.
var (
	ErrNoAdapter = errors.New("unable to find GPU adapter")
	ErrNoDevice  = errors.New("unable to find GPU device")
)

// adapterOptions prefers a discrete GPU and never accepts a fallback
// (software) adapter. Compute-only work needs no compatible surface.
var adapterOptions = wgpu.RequestAdapterOptions{
	PowerPreference:      wgpu.PowerPreferenceHighPerformance,
	ForceFallbackAdapter: false,
}

// Context holds the WebGPU objects needed to run compute work.
// The device is the root of resource ownership: buffers, pipelines, and
// command buffers created through it live and die with it.
type Context struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

// Init creates a WebGPU instance and acquires a (device, queue) pair from
// the highest-performance adapter. Backend selection and validation-layer
// toggles come from the environment variables honored by wgpu-native itself;
// this program adds none of its own.
func Init() (ctx *Context, err error) {
	// wgpu panics instead of returning an error when the native library
	// is missing.
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("gpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)

	adapter, adapterErr := instance.RequestAdapter(&adapterOptions)
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("gpu: %w: %v", ErrNoAdapter, adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(deviceDescriptor())
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpu: %w: %v", ErrNoDevice, deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("gpu: %w: device has no queue", ErrNoDevice)
	}

	return &Context{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    queue,
	}, nil
}

// Name reports the adapter the context is running on.
func (c *Context) Name() string {
	if c.Adapter == nil {
		return "WebGPU"
	}
	info := c.Adapter.GetInfo()
	return fmt.Sprintf("WebGPU (%s %s)", info.Name, info.VendorName)
}

// Release releases all WebGPU objects held by the context.
// The context must not be used afterwards.
func (c *Context) Release() {
	if c.Queue != nil {
		c.Queue.Release()
		c.Queue = nil
	}
	if c.Device != nil {
		c.Device.Release()
		c.Device = nil
	}
	if c.Adapter != nil {
		c.Adapter.Release()
		c.Adapter = nil
	}
	if c.Instance != nil {
		c.Instance.Release()
		c.Instance = nil
	}
}

// IsAvailable checks if a WebGPU adapter exists on this system.
func IsAvailable() (available bool) {
	// Recover from panic if the wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&adapterOptions)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}
