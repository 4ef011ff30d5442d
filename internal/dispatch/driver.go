package dispatch

import (
	"fmt"
	"io"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/born-ml/gpurun/internal/gpu"
)

// OutputSize is the byte size of the host-readable output buffer:
// 12 uint32 words.
const OutputSize uint64 = 12 * 4

// Driver owns the end-to-end lifecycle: initialize the GPU, run one compute
// dispatch, and read the output buffer back to the host.
type Driver struct {
	out  io.Writer
	errw io.Writer

	// submissions counts command buffers handed to the queue. The value
	// after a submit is that batch's 1-based submission index.
	submissions uint64
}

// NewDriver returns a driver writing its result to out and diagnostics
// to errw.
func NewDriver(out, errw io.Writer) *Driver {
	return &Driver{out: out, errw: errw}
}

// submit hands one command buffer to the queue and returns its submission
// index.
func (d *Driver) submit(queue *wgpu.Queue, cmd *wgpu.CommandBuffer) uint64 {
	queue.Submit(cmd)
	d.submissions++
	return d.submissions
}

// awaitSubmission blocks until the submission with the given index has
// completed on the GPU timeline. The bindings expose a single blocking poll
// that drains all outstanding work, which subsumes a wait on any index at or
// below the current submission count.
func (d *Driver) awaitSubmission(ctx *gpu.Context, index uint64) error {
	if index == 0 || index > d.submissions {
		return fmt.Errorf("dispatch: unknown submission index %d", index)
	}
	ctx.Device.Poll(true, nil)
	return nil
}

// onMapped handles completion of the output-buffer mapping. On a failed
// mapping it writes one diagnostic line to the error stream; the run is not
// failed, since the GPU work already completed. On success it prints the
// mapped bytes in bracketed byte-sequence form. Reports whether the buffer
// is mapped.
func (d *Driver) onMapped(status wgpu.BufferMapAsyncStatus, data []byte) bool {
	if status != wgpu.BufferMapAsyncStatusSuccess {
		fmt.Fprintf(d.errw, "buffer map failed: %v\n", status)
		return false
	}
	fmt.Fprintln(d.out, data)
	return true
}

// Run executes the embedded compute shader once and prints the output
// buffer contents. On success it writes two lines to the output stream: the
// completion marker and the 48-byte dump. A mapping failure is reported on
// the error stream but does not fail the run; by that point the GPU work has
// already completed.
func (d *Driver) Run() error {
	ctx, err := gpu.Init()
	if err != nil {
		return err
	}
	defer ctx.Release()

	output, err := ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "output-buffer",
		Size:             OutputSize,
		Usage:            wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return fmt.Errorf("dispatch: create output buffer: %w", err)
	}
	defer output.Release()

	res, err := Assemble(ctx.Device, OutputSize)
	if err != nil {
		return err
	}
	defer res.Release()

	cmd, err := Record(ctx.Device, res, output, OutputSize)
	if err != nil {
		return err
	}
	defer cmd.Release()

	index := d.submit(ctx.Queue, cmd)
	if err := d.awaitSubmission(ctx, index); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "GPU Completed")

	mapped := false
	err = output.MapAsync(wgpu.MapModeRead, 0, OutputSize, func(status wgpu.BufferMapAsyncStatus) {
		var data []byte
		if status == wgpu.BufferMapAsyncStatusSuccess {
			data = output.GetMappedRange(0, uint(OutputSize))
		}
		mapped = d.onMapped(status, data)
	})
	if err != nil {
		return fmt.Errorf("dispatch: map output buffer: %w", err)
	}

	// The final poll services the mapping callback and drains outstanding
	// work before the deferred releases run.
	ctx.Device.Poll(true, nil)
	if mapped {
		output.Unmap()
	}
	return nil
}
