package swapchain

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/present-go/engine/vsync"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBackend is the wgpu implementation of the Backend interface. The
// platform surface hands out a fresh image per present cycle, so the backend
// tracks the per-cycle texture internally and the Texture wrapper it returns
// stays valid across frames, resolving the current image lazily.
type wgpuBackend struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device

	width, height int
	format        wgpu.TextureFormat

	// Per-present-cycle platform state.
	current     *wgpu.Texture
	currentView *wgpu.TextureView

	// presentCount is the submission sequence counter, advanced on every
	// present call. The presentation engine owns this timeline.
	presentCount uint32
}

var _ Backend = &wgpuBackend{}
var _ vsync.StatsProvider = &wgpuBackend{}

// NewWGPUBackend creates a Backend over an existing wgpu surface, adapter, and
// device (the device collaborator owns their creation and lifetime; the
// backend only configures and presents the surface).
//
// Parameters:
//   - surface: the window's wgpu surface
//   - adapter: the adapter the surface capabilities are queried against
//   - device: the rendering device
//
// Returns:
//   - Backend: the wgpu-backed presentation backend
func NewWGPUBackend(surface *wgpu.Surface, adapter *wgpu.Adapter, device *wgpu.Device) Backend {
	return &wgpuBackend{
		surface: surface,
		adapter: adapter,
		device:  device,
	}
}

func (b *wgpuBackend) Configure(width, height int, format wgpu.TextureFormat, mode wgpu.PresentMode) (wgpu.TextureFormat, error) {
	if b.surface == nil {
		return wgpu.TextureFormatUndefined, fmt.Errorf("surface not available")
	}

	b.releaseCurrent()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return wgpu.TextureFormatUndefined, fmt.Errorf("surface reports no supported formats")
	}

	resolved := capabilities.Formats[0]
	if format != wgpu.TextureFormatUndefined {
		resolved = format
		if !containsFormat(capabilities.Formats, format) {
			// Fall back to the surface's preferred format rather than failing;
			// the resolved format is reported back to the swapchain.
			log.Printf("[Swapchain] format %v not supported by surface, using %v", format, capabilities.Formats[0])
			resolved = capabilities.Formats[0]
		}
	}

	if !containsPresentMode(capabilities.PresentModes, mode) {
		mode = wgpu.PresentModeFifo
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      resolved,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: mode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.width, b.height = width, height
	b.format = resolved
	return resolved, nil
}

func (b *wgpuBackend) AcquireTexture() (Texture, error) {
	if err := b.acquireCurrent(); err != nil {
		return nil, err
	}
	return &wgpuTexture{backend: b}, nil
}

func (b *wgpuBackend) Present() {
	// Present the acquired surface image, advance the submission counter, and
	// drop the per-cycle references; the next view request re-acquires.
	if b.current == nil {
		if err := b.acquireCurrent(); err != nil {
			log.Printf("[Swapchain] present skipped: %v", err)
			return
		}
	}
	b.surface.Present()
	b.presentCount++
	b.releaseCurrent()
}

func (b *wgpuBackend) Stats() vsync.StatsProvider {
	return b
}

// LastPresentCount reports the submission sequence number of the frame
// submitted by the most recent present call.
func (b *wgpuBackend) LastPresentCount() (uint32, error) {
	return b.presentCount, nil
}

// FrameStatistics always fails with ErrStatsUnavailable: the wgpu surface does
// not expose refresh-counter statistics, so timing estimation degrades to the
// empty result by design.
func (b *wgpuBackend) FrameStatistics() (vsync.FrameStatistics, error) {
	return vsync.FrameStatistics{}, vsync.ErrStatsUnavailable
}

func (b *wgpuBackend) Release() {
	b.releaseCurrent()
	// Surface, adapter, and device creation is owned by the device collaborator,
	// which also owns their release ordering.
	b.surface = nil
	b.adapter = nil
	b.device = nil
}

// acquireCurrent acquires the surface's current image and view if not already held.
func (b *wgpuBackend) acquireCurrent() error {
	if b.current != nil {
		return nil
	}
	tex, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	b.current = tex
	b.currentView = view
	return nil
}

// releaseCurrent drops the per-cycle texture and view references.
func (b *wgpuBackend) releaseCurrent() {
	if b.currentView != nil {
		b.currentView.Release()
		b.currentView = nil
	}
	if b.current != nil {
		b.current.Release()
		b.current = nil
	}
}

// wgpuTexture is the backbuffer wrapper for the wgpu backend. It represents
// "the backbuffer" as a stable handle; the platform image behind it cycles on
// every present.
type wgpuTexture struct {
	backend  *wgpuBackend
	released bool
}

var _ Texture = &wgpuTexture{}

func (t *wgpuTexture) Width() int {
	return t.backend.width
}

func (t *wgpuTexture) Height() int {
	return t.backend.height
}

func (t *wgpuTexture) Format() wgpu.TextureFormat {
	return t.backend.format
}

func (t *wgpuTexture) View() *wgpu.TextureView {
	if t.released {
		return nil
	}
	if err := t.backend.acquireCurrent(); err != nil {
		log.Printf("[Swapchain] couldn't acquire surface image: %v", err)
		return nil
	}
	return t.backend.currentView
}

func (t *wgpuTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.backend.releaseCurrent()
}

func containsFormat(formats []wgpu.TextureFormat, want wgpu.TextureFormat) bool {
	for _, f := range formats {
		if f == want {
			return true
		}
	}
	return false
}

func containsPresentMode(modes []wgpu.PresentMode, want wgpu.PresentMode) bool {
	for _, m := range modes {
		if m == want {
			return true
		}
	}
	return false
}
