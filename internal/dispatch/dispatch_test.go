package dispatch

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gpurun/internal/gpu"
)

// newTestContext initializes a GPU context or skips the test when no
// adapter is available.
func newTestContext(t *testing.T) *gpu.Context {
	t.Helper()
	if !gpu.IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	ctx, err := gpu.Init()
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return ctx
}

func TestOutputSize(t *testing.T) {
	// 12 unsigned 32-bit integers.
	assert.EqualValues(t, 48, OutputSize)
}

func TestAssemble(t *testing.T) {
	ctx := newTestContext(t)

	res, err := Assemble(ctx.Device, OutputSize)
	require.NoError(t, err)
	defer res.Release()

	require.NotNil(t, res.Intermediate)
	require.NotNil(t, res.Pipeline)
	require.NotNil(t, res.BindGroup)
	// The intermediate buffer is sized exactly to the output buffer.
	assert.Equal(t, OutputSize, res.Size)
}

func TestRecordProducesCommandBuffer(t *testing.T) {
	ctx := newTestContext(t)

	output, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "output-buffer",
		Size:  OutputSize,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	require.NoError(t, err)
	defer output.Release()

	res, err := Assemble(ctx.Device, OutputSize)
	require.NoError(t, err)
	defer res.Release()

	cmd, err := Record(ctx.Device, res, output, OutputSize)
	require.NoError(t, err)
	defer cmd.Release()

	require.NotNil(t, cmd)
}

// A zero-size output buffer degenerates to a zero-byte copy and a zero-size
// intermediate buffer; the submission still completes without error.
func TestZeroSizeOutput(t *testing.T) {
	ctx := newTestContext(t)

	output, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "output-buffer",
		Size:  0,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	require.NoError(t, err)
	defer output.Release()

	res, err := Assemble(ctx.Device, 0)
	require.NoError(t, err)
	defer res.Release()

	cmd, err := Record(ctx.Device, res, output, 0)
	require.NoError(t, err)
	defer cmd.Release()

	ctx.Queue.Submit(cmd)
	ctx.Device.Poll(true, nil)
}

func TestSubmissionIndexesAreMonotonic(t *testing.T) {
	ctx := newTestContext(t)

	output, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "output-buffer",
		Size:  OutputSize,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	require.NoError(t, err)
	defer output.Release()

	res, err := Assemble(ctx.Device, OutputSize)
	require.NoError(t, err)
	defer res.Release()

	d := NewDriver(nil, nil)

	first, err := Record(ctx.Device, res, output, OutputSize)
	require.NoError(t, err)
	defer first.Release()
	second, err := Record(ctx.Device, res, output, OutputSize)
	require.NoError(t, err)
	defer second.Release()

	assert.EqualValues(t, 1, d.submit(ctx.Queue, first))
	assert.EqualValues(t, 2, d.submit(ctx.Queue, second))

	require.NoError(t, d.awaitSubmission(ctx, 2))
	assert.Error(t, d.awaitSubmission(ctx, 0))
	assert.Error(t, d.awaitSubmission(ctx, 3))
}
