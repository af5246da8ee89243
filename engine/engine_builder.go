package engine

import (
	"time"

	"github.com/Carmen-Shannon/present-go/engine/render_context"
	"github.com/Carmen-Shannon/present-go/engine/telemetry"
	"github.com/Carmen-Shannon/present-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithTelemetry enables or disables frame pacing output.
//
// Parameters:
//   - enabled: if true, enables frame pacing logging
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTelemetry(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.telemetryEnabled = enabled
	}
}

// WithTickRate sets the update tick rate in ticks per second.
// The tick callback will be called at this rate for application updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a pre-configured window for the engine to present into.
// When no render context is supplied, one is created over this window with
// default presentation options.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderContext sets a pre-configured render context, overriding the one
// the engine would otherwise create over its window.
//
// Parameters:
//   - ctx: a pre-configured RenderContext instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderContext(ctx render_context.RenderContext) EngineBuilderOption {
	return func(e *engine) {
		e.ctx = ctx
	}
}

// WithRecorder sets a pre-configured telemetry recorder, overriding the
// default one.
//
// Parameters:
//   - r: a pre-configured Recorder instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRecorder(r telemetry.Recorder) EngineBuilderOption {
	return func(e *engine) {
		e.recorder = r
	}
}

// WithFrameLimit sets an optional presentation frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Second / time.Duration(fps)
	}
}
