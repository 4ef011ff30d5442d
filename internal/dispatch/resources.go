package dispatch

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Resources holds every GPU object needed for one compute dispatch. All of
// them are owned by the device that created them.
type Resources struct {
	// Intermediate is the storage-capable working buffer the shader writes
	// to. It is sized exactly to the output buffer: the output buffer's
	// usage is (map-read, copy-dst), and wgpu disallows combining map-read
	// with storage on one buffer, so the shader result has to be copied
	// out of this buffer after the dispatch.
	Intermediate *wgpu.Buffer

	Pipeline  *wgpu.ComputePipeline
	BindGroup *wgpu.BindGroup

	// Size is the byte size of both the intermediate and the output buffer.
	Size uint64

	shader         *wgpu.ShaderModule
	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
}

// Assemble builds the GPU objects for one dispatch against an output buffer
// of outputSize bytes: the intermediate storage buffer, the shader module
// from the embedded asset, the bind-group layout and pipeline layout, the
// compute pipeline, and the bind group binding the intermediate buffer at
// slot 0. The pipeline is created against the same layout the bind group
// targets.
func Assemble(device *wgpu.Device, outputSize uint64) (*Resources, error) {
	entryPoint, err := resolveEntryPoint(shaderSource)
	if err != nil {
		return nil, err
	}

	res := &Resources{Size: outputSize}

	res.Intermediate, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "buffer-intermediate",
		Size:             outputSize,
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch: create intermediate buffer: %w", err)
	}

	res.shader, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "shader-main",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderSource,
		},
	})
	if err != nil {
		res.Release()
		return nil, fmt.Errorf("dispatch: create shader module: %w", err)
	}

	// One binding at slot 0: a read-write storage buffer visible to the
	// compute stage. No dynamic offset, no minimum binding size.
	layoutEntry := wgpu.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: wgpu.ShaderStageCompute,
	}
	layoutEntry.Buffer.Type = wgpu.BufferBindingTypeStorage

	res.layout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "bind-group-layout",
		Entries: []wgpu.BindGroupLayoutEntry{layoutEntry},
	})
	if err != nil {
		res.Release()
		return nil, fmt.Errorf("dispatch: create bind group layout: %w", err)
	}

	res.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "pipeline-layout-descriptor",
		BindGroupLayouts: []*wgpu.BindGroupLayout{res.layout},
	})
	if err != nil {
		res.Release()
		return nil, fmt.Errorf("dispatch: create pipeline layout: %w", err)
	}

	res.Pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "compile-pipeline",
		Layout: res.pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     res.shader,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		res.Release()
		return nil, fmt.Errorf("dispatch: create compute pipeline: %w", err)
	}

	res.BindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "bind-group",
		Layout: res.layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  res.Intermediate,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		res.Release()
		return nil, fmt.Errorf("dispatch: create bind group: %w", err)
	}

	return res, nil
}

// Release releases every GPU object held by the resources. Safe to call on a
// partially assembled value.
func (r *Resources) Release() {
	if r.BindGroup != nil {
		r.BindGroup.Release()
		r.BindGroup = nil
	}
	if r.Pipeline != nil {
		r.Pipeline.Release()
		r.Pipeline = nil
	}
	if r.pipelineLayout != nil {
		r.pipelineLayout.Release()
		r.pipelineLayout = nil
	}
	if r.layout != nil {
		r.layout.Release()
		r.layout = nil
	}
	if r.shader != nil {
		r.shader.Release()
		r.shader = nil
	}
	if r.Intermediate != nil {
		r.Intermediate.Release()
		r.Intermediate = nil
	}
}
