package device

// BuilderOption is a functional option for configuring device creation.
// Use the With* functions to create options.
type BuilderOption func(d *wgpuDevice)

// WithDebug enables verbose platform logging during device creation and use.
//
// Parameters:
//   - debug: whether to enable debug output
//
// Returns:
//   - BuilderOption: option function to apply
func WithDebug(debug bool) BuilderOption {
	return func(d *wgpuDevice) {
		d.debug = debug
	}
}

// WithForceFallbackAdapter forces selection of the software fallback adapter
// instead of a hardware one.
//
// Parameters:
//   - force: whether to require the fallback adapter
//
// Returns:
//   - BuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) BuilderOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}

// WithMaxFrameLatency sets the maximum number of in-flight frames. The value
// is advisory on this backend and is consumed by the swapchain to size its
// buffer depth.
//
// Parameters:
//   - frames: in-flight frame count (minimum 1)
//
// Returns:
//   - BuilderOption: option function to apply
func WithMaxFrameLatency(frames int) BuilderOption {
	return func(d *wgpuDevice) {
		if frames >= 1 {
			d.maxFrameLatency = frames
		}
	}
}
