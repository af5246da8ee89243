package swapchain

import "github.com/Carmen-Shannon/present-go/common"

// BuilderOption is a functional option for configuring a swapchain.
// Use the With* functions to create options.
type BuilderOption func(c *chain)

// WithSize sets the initial surface dimensions.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - BuilderOption: option function to apply
func WithSize(width, height int) BuilderOption {
	return func(c *chain) {
		c.width = width
		c.height = height
	}
}

// WithFormat sets the requested backbuffer pixel format.
// PixelFormatAuto defers to the surface's preferred format.
//
// Parameters:
//   - format: the requested format
//
// Returns:
//   - BuilderOption: option function to apply
func WithFormat(format common.PixelFormat) BuilderOption {
	return func(c *chain) {
		c.format = format
	}
}

// WithFlipMode selects flip-model presentation.
//
// Parameters:
//   - flip: whether buffers are handed to the display pipeline directly rather than copied
//
// Returns:
//   - BuilderOption: option function to apply
func WithFlipMode(flip bool) BuilderOption {
	return func(c *chain) {
		c.flipMode = flip
	}
}

// WithSwapchainDepth sets the host's requested number of in-flight frames.
// The total buffer count is this depth plus two.
//
// Parameters:
//   - depth: in-flight frame count (minimum 1)
//
// Returns:
//   - BuilderOption: option function to apply
func WithSwapchainDepth(depth int) BuilderOption {
	return func(c *chain) {
		c.depth = common.Coalesce(depth, c.depth)
	}
}

// WithSyncInterval sets the number of vsyncs waited per present, 0 to 4.
//
// Parameters:
//   - interval: the sync interval
//
// Returns:
//   - BuilderOption: option function to apply
func WithSyncInterval(interval int) BuilderOption {
	return func(c *chain) {
		c.syncInterval = interval
	}
}

// WithOptions applies a validated common.PresentOptions in one step.
//
// Parameters:
//   - opts: the presentation options to apply
//
// Returns:
//   - BuilderOption: option function to apply
func WithOptions(opts common.PresentOptions) BuilderOption {
	return func(c *chain) {
		c.syncInterval = opts.SyncInterval
		c.depth = opts.SwapchainDepth
		c.format = opts.Format
		c.flipMode = opts.FlipMode
	}
}
