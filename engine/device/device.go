// package device owns creation and teardown of the rendering device: the wgpu
// instance, surface, adapter, and device handles, with deterministic release
// ordering so no dangling GPU resource is observed by the platform's leak
// checking.
package device

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device is the rendering-device collaborator consumed by the presentation
// context. It owns the wgpu handle hierarchy; dependent resources (the
// swapchain surface configuration, backbuffer views) must be released before
// Release is called.
type Device interface {
	// WGPUDevice returns the underlying wgpu device handle.
	//
	// Returns:
	//   - *wgpu.Device: the device handle
	WGPUDevice() *wgpu.Device

	// Adapter returns the adapter the device was created on.
	//
	// Returns:
	//   - *wgpu.Adapter: the adapter handle
	Adapter() *wgpu.Adapter

	// Surface returns the presentation surface created from the window's
	// surface descriptor.
	//
	// Returns:
	//   - *wgpu.Surface: the surface handle
	Surface() *wgpu.Surface

	// Queue returns the device's command queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue handle
	Queue() *wgpu.Queue

	// Flush blocks until the device has processed all pending GPU work.
	// Called at frame submission, before the present.
	Flush()

	// MaxFrameLatency returns the maximum in-flight frame count the device was
	// created with. The wgpu backend cannot enforce a latency limit directly;
	// the value sizes the swapchain's buffer depth instead.
	//
	// Returns:
	//   - int: the configured in-flight frame count
	MaxFrameLatency() int

	// Release frees the device handles in dependency order: queue-dependent
	// state first, then device, adapter, surface, and instance last.
	Release()
}

// wgpuDevice is the implementation of the Device interface.
type wgpuDevice struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	debug                bool
	forceFallbackAdapter bool
	maxFrameLatency      int
}

var _ Device = &wgpuDevice{}

// New creates the wgpu instance, surface, adapter, and device for the given
// window surface descriptor. Any step failing releases everything created so
// far and returns the failure.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, typically from window.SurfaceDescriptor()
//   - options: functional options; see With* in device_builder.go
//
// Returns:
//   - Device: the ready-to-use device collaborator
//   - error: an error if any creation step fails
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BuilderOption) (Device, error) {
	if surfaceDescriptor == nil {
		return nil, fmt.Errorf("nil surface descriptor")
	}

	d := &wgpuDevice{
		maxFrameLatency: 3,
	}
	for _, opt := range options {
		opt(d)
	}

	if d.debug {
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("couldn't request adapter: %w", err)
	}
	d.adapter = adapter

	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "Presentation Device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: wgpu.DefaultLimits()},
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("couldn't request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	return d, nil
}

func (d *wgpuDevice) WGPUDevice() *wgpu.Device {
	return d.device
}

func (d *wgpuDevice) Adapter() *wgpu.Adapter {
	return d.adapter
}

func (d *wgpuDevice) Surface() *wgpu.Surface {
	return d.surface
}

func (d *wgpuDevice) Queue() *wgpu.Queue {
	return d.queue
}

func (d *wgpuDevice) MaxFrameLatency() int {
	return d.maxFrameLatency
}

func (d *wgpuDevice) Flush() {
	if d.device == nil {
		return
	}
	d.device.Poll(true, nil)
}

func (d *wgpuDevice) Release() {
	// Device before adapter before surface before instance; dependent objects
	// must already be gone by the time their parent is released.
	if d.device != nil {
		d.device.Release()
		d.device = nil
		d.queue = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
