package render_context

import (
	"github.com/Carmen-Shannon/present-go/common"
	"github.com/Carmen-Shannon/present-go/engine/clock"
	"github.com/Carmen-Shannon/present-go/engine/device"
	"github.com/Carmen-Shannon/present-go/engine/swapchain"
	"github.com/Carmen-Shannon/present-go/engine/window"
)

// BuilderOption is a function that modifies the renderContext during construction.
type BuilderOption func(*renderContext)

// New assembles a RenderContext over the given window. The context is inert
// until Init is called; construction never touches the platform.
//
// Parameters:
//   - win: the window the context presents into
//   - options: optional BuilderOption functions to customize the context
//
// Returns:
//   - RenderContext: the assembled context
func New(win window.Window, options ...BuilderOption) RenderContext {
	c := &renderContext{
		win:          win,
		opts:         common.DefaultPresentOptions(),
		newDevice:    defaultDeviceFactory,
		newSwapchain: defaultSwapchainFactory,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithOptions sets the presentation options validated and applied at Init.
//
// Parameters:
//   - opts: the presentation options
//
// Returns:
//   - BuilderOption: a function that applies the options
func WithOptions(opts common.PresentOptions) BuilderOption {
	return func(c *renderContext) {
		c.opts = opts
	}
}

// WithAdapterLister sets the adapter enumeration used to resolve the adapter
// selector during option validation.
//
// Parameters:
//   - lister: the adapter lister, may be nil to skip adapter matching
//
// Returns:
//   - BuilderOption: a function that applies the lister
func WithAdapterLister(lister common.AdapterLister) BuilderOption {
	return func(c *renderContext) {
		c.lister = lister
	}
}

// WithClock overrides the monotonic clock, primarily for tests.
//
// Parameters:
//   - clk: the clock to use
//
// Returns:
//   - BuilderOption: a function that applies the clock
func WithClock(clk clock.Clock) BuilderOption {
	return func(c *renderContext) {
		c.clk = clk
	}
}

// WithDebug enables verbose platform logging on the device.
//
// Parameters:
//   - debug: whether to enable debug logging
//
// Returns:
//   - BuilderOption: a function that applies the setting
func WithDebug(debug bool) BuilderOption {
	return func(c *renderContext) {
		c.debug = debug
	}
}

// WithDeviceFactory overrides how the rendering device is created, primarily
// for tests.
//
// Parameters:
//   - factory: the device factory
//
// Returns:
//   - BuilderOption: a function that applies the factory
func WithDeviceFactory(factory func(win window.Window, opts common.PresentOptions, debug bool) (device.Device, error)) BuilderOption {
	return func(c *renderContext) {
		c.newDevice = factory
	}
}

// WithSwapchainFactory overrides how the swapchain is created, primarily for
// tests.
//
// Parameters:
//   - factory: the swapchain factory
//
// Returns:
//   - BuilderOption: a function that applies the factory
func WithSwapchainFactory(factory func(dev device.Device, opts common.PresentOptions, width, height int) (swapchain.Swapchain, error)) BuilderOption {
	return func(c *renderContext) {
		c.newSwapchain = factory
	}
}

func defaultDeviceFactory(win window.Window, opts common.PresentOptions, debug bool) (device.Device, error) {
	return device.New(win.SurfaceDescriptor(),
		device.WithDebug(debug),
		device.WithForceFallbackAdapter(false),
		device.WithMaxFrameLatency(opts.SwapchainDepth),
	)
}

func defaultSwapchainFactory(dev device.Device, opts common.PresentOptions, width, height int) (swapchain.Swapchain, error) {
	backend := swapchain.NewWGPUBackend(dev.Surface(), dev.Adapter(), dev.WGPUDevice())
	return swapchain.New(backend,
		swapchain.WithOptions(opts),
		swapchain.WithSize(width, height),
		swapchain.WithSwapchainDepth(dev.MaxFrameLatency()),
	)
}
