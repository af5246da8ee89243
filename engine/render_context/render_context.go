// package render_context composes the clock, device, swapchain, and vsync
// estimator into the lifecycle a rendering host drives each frame: init,
// reconfig on resize, frame start, frame submit, swap buffers, timing query,
// event dispatch, and uninit.
package render_context

import (
	"errors"

	"github.com/Carmen-Shannon/present-go/common"
	"github.com/Carmen-Shannon/present-go/engine/clock"
	"github.com/Carmen-Shannon/present-go/engine/device"
	"github.com/Carmen-Shannon/present-go/engine/swapchain"
	"github.com/Carmen-Shannon/present-go/engine/vsync"
	"github.com/Carmen-Shannon/present-go/engine/window"
)

// Event is a bitmask of window-system events reported by Control.
type Event uint32

const (
	// EventNone means no event occurred.
	EventNone Event = 0
	// EventResize means the window was resized and the swapchain was
	// reconfigured (or the reconfiguration failed, reported as an error).
	EventResize Event = 1 << iota
	// EventClose means the window is no longer running.
	EventClose
)

// RenderContext is the presentation lifecycle expected by a rendering host.
// All methods must be called from the presentation thread; no internal locking
// is provided. SwapBuffers may block the calling thread for up to the duration
// implied by the configured sync interval.
type RenderContext interface {
	// Init captures the clock frequency, creates the device, creates the
	// swapchain, and acquires the initial backbuffer. Any step failing tears
	// down everything created so far and reports an InitError. Returns
	// ErrExitAfterInfo when option validation requested informational output.
	//
	// Returns:
	//   - error: an InitError, ErrExitAfterInfo, or nil
	Init() error

	// Reconfig releases the backbuffer, resizes the swapchain to the window's
	// current dimensions, and re-acquires the backbuffer. Invoked on window
	// resize.
	//
	// Returns:
	//   - error: a swapchain ResizeError or AcquireError on failure
	Reconfig() error

	// FrameStart returns the current backbuffer for the frame's rendering, or
	// fails if no backbuffer is held (e.g. mid-resize).
	//
	// Returns:
	//   - swapchain.Texture: the backbuffer, borrowed for this frame
	//   - error: an error if no backbuffer is available
	FrameStart() (swapchain.Texture, error)

	// FrameSubmit flushes pending rendering work on the device. Always succeeds
	// from this component's perspective.
	FrameSubmit()

	// SwapBuffers records the submit timestamp for the vsync estimator, then
	// presents the current backbuffer.
	SwapBuffers()

	// VsyncInfo consumes fresh presentation statistics and returns updated
	// display timing. Best-effort: failures produce an empty result, never an
	// error.
	//
	// Returns:
	//   - vsync.TimingInfo: the timing estimate, zeroed where unknown
	VsyncInfo() vsync.TimingInfo

	// ColorDepth returns the bit depth of the first color component of the
	// current backbuffer format, or 0 when no backbuffer is held.
	//
	// Returns:
	//   - int: bits per color component
	ColorDepth() int

	// Device returns the rendering device, nil before Init or after Uninit.
	// Hosts record their frame's GPU work against it between FrameStart and
	// FrameSubmit.
	//
	// Returns:
	//   - device.Device: the device instance
	Device() device.Device

	// Control processes pending window-system events. A resize event triggers
	// backbuffer release, swapchain resize, and re-acquire; the resulting error,
	// if any, is propagated alongside the event mask.
	//
	// Returns:
	//   - Event: the bitmask of observed events
	//   - error: a reconfiguration error when a resize event's handling failed
	Control() (Event, error)

	// Uninit releases the backbuffer, then the swapchain, then the device, in
	// that order, so the device outlives every dependent resource. Releasing a
	// resource that was never acquired is a no-op.
	Uninit()
}

// deviceFactory creates the rendering-device collaborator.
type deviceFactory func(win window.Window, opts common.PresentOptions, debug bool) (device.Device, error)

// swapchainFactory creates the swapchain over a device.
type swapchainFactory func(dev device.Device, opts common.PresentOptions, width, height int) (swapchain.Swapchain, error)

// renderContext is the implementation of the RenderContext interface.
type renderContext struct {
	win  window.Window
	opts common.PresentOptions

	clk    clock.Clock
	dev    device.Device
	sc     swapchain.Swapchain
	est    *vsync.Estimator
	lister common.AdapterLister

	newDevice    deviceFactory
	newSwapchain swapchainFactory
	debug        bool

	// pendingResize is set by the window's resize callback and consumed by
	// Control on the presentation thread.
	pendingResize bool
}

var _ RenderContext = &renderContext{}

func (c *renderContext) Init() error {
	switch res, err := common.Validate(c.opts, c.lister); res {
	case common.ValidationReject:
		return &InitError{Stage: "option validation", Err: err}
	case common.ValidationExit:
		return ErrExitAfterInfo
	}

	// Capture the counter frequency once; per-call frequency queries can vary
	// slightly and would make conversions inconsistent within the session.
	if c.clk == nil {
		c.clk = clock.NewTimerClock()
	}

	dev, err := c.newDevice(c.win, c.opts, c.debug)
	if err != nil {
		return &InitError{Stage: "device creation", Err: err}
	}
	c.dev = dev

	sc, err := c.newSwapchain(dev, c.opts, c.win.Width(), c.win.Height())
	if err != nil {
		c.Uninit()
		return &InitError{Stage: "swapchain creation", Err: err}
	}
	c.sc = sc

	if _, err := sc.AcquireBackbuffer(); err != nil {
		c.Uninit()
		return &InitError{Stage: "backbuffer acquisition", Err: err}
	}

	c.est = vsync.NewEstimator(c.clk, c.opts.SyncInterval)

	c.win.SetResizeCallback(func(width, height int) {
		c.pendingResize = true
	})

	return nil
}

func (c *renderContext) Reconfig() error {
	c.sc.ReleaseBackbuffer()
	if err := c.sc.Resize(c.win.Width(), c.win.Height()); err != nil {
		return err
	}
	_, err := c.sc.AcquireBackbuffer()
	return err
}

func (c *renderContext) FrameStart() (swapchain.Texture, error) {
	if c.sc == nil || c.sc.Backbuffer() == nil {
		return nil, errors.New("no backbuffer available")
	}
	return c.sc.Backbuffer(), nil
}

func (c *renderContext) FrameSubmit() {
	if c.dev != nil {
		c.dev.Flush()
	}
}

func (c *renderContext) SwapBuffers() {
	if c.sc == nil {
		return
	}
	c.est.RecordSubmit(c.clk.Ticks())
	c.sc.Present()
}

func (c *renderContext) VsyncInfo() vsync.TimingInfo {
	if c.est == nil || c.sc == nil {
		return vsync.TimingInfo{}
	}
	return c.est.Update(c.sc.Stats())
}

func (c *renderContext) ColorDepth() int {
	if c.sc == nil || c.sc.Backbuffer() == nil {
		return 0
	}
	return common.FormatComponentDepth(c.sc.Backbuffer().Format())
}

func (c *renderContext) Device() device.Device {
	return c.dev
}

func (c *renderContext) Control() (Event, error) {
	ev := EventNone
	if c.win != nil && !c.win.Poll() {
		ev |= EventClose
	}
	if c.pendingResize {
		c.pendingResize = false
		ev |= EventResize
		if err := c.Reconfig(); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

func (c *renderContext) Uninit() {
	// Backbuffer before swapchain before device, so the platform's leak
	// checking never observes a dependent resource outliving its parent.
	if c.sc != nil {
		c.sc.ReleaseBackbuffer()
		c.sc.Destroy()
		c.sc = nil
	}
	if c.dev != nil {
		c.dev.Release()
		c.dev = nil
	}
	c.est = nil
}
