package engine

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/present-go/engine/render_context"
	"github.com/Carmen-Shannon/present-go/engine/swapchain"
	"github.com/Carmen-Shannon/present-go/engine/telemetry"
	"github.com/Carmen-Shannon/present-go/engine/vsync"
	"github.com/Carmen-Shannon/present-go/engine/window"
)

// engine implements the Engine interface.
// Drives the presentation loop on the calling thread and an optional
// fixed-rate update loop on its own goroutine.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	ctx    render_context.RenderContext

	recorder         telemetry.Recorder
	telemetryEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	frameCallback  func(backbuffer swapchain.Texture, deltaTime float32)

	frameLimit time.Duration // minimum frame duration; 0 = uncapped

	startTime time.Time
}

// Engine is the main entry point for a presentation host.
// It owns the render context lifecycle and the frame loop that drives it.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Context returns the render context driven by the frame loop.
	//
	// Returns:
	//   - render_context.RenderContext: the context instance
	Context() render_context.RenderContext

	// EnableTelemetry enables frame pacing output to the log.
	EnableTelemetry()

	// DisableTelemetry disables frame pacing output.
	DisableTelemetry()

	// SetTickRate sets the update tick rate in ticks per second.
	// The tick callback will be called at this rate for application updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each update tick.
	// Runs on the engine's update goroutine, not the presentation thread.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameCallback registers the function called each presentation frame
	// with the frame's backbuffer. Use this to record and encode rendering work;
	// the engine flushes and presents after the callback returns.
	//
	// Parameters:
	//   - callback: function receiving the backbuffer and the delta time in seconds
	SetFrameCallback(callback func(backbuffer swapchain.Texture, deltaTime float32))

	// SetFrameLimit sets an optional presentation frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default). Irrelevant when the sync interval
	// already throttles presents.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// VsyncInfo returns the most recent display timing estimate.
	//
	// Returns:
	//   - vsync.TimingInfo: the timing estimate, zeroed where unknown
	VsyncInfo() vsync.TimingInfo

	// Run initializes the render context and blocks driving the frame loop on
	// the calling thread until the window closes or Quit is called. The context
	// is torn down before Run returns.
	//
	// Returns:
	//   - error: a context initialization error, nil on a clean shutdown or
	//     when initialization requested informational output and exited
	Run() error

	// Quit signals the engine to stop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (telemetry, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		running:         false,
		wg:              sync.WaitGroup{},
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.ctx == nil && e.window != nil {
		e.ctx = render_context.New(e.window)
	}
	if e.recorder == nil {
		e.recorder = telemetry.NewRecorder()
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Context() render_context.RenderContext {
	return e.ctx
}

func (e *engine) Run() error {
	if err := e.ctx.Init(); err != nil {
		if errors.Is(err, render_context.ErrExitAfterInfo) {
			return nil
		}
		return err
	}
	defer e.ctx.Uninit()

	e.running = true
	e.startTime = time.Now()

	e.wg.Add(2)
	go e.handleTick()
	go e.handleQuit()

	e.handleFrames()
	e.signalQuit()
	e.wg.Wait()
	return nil
}

// Quit signals the engine to stop after the current frame.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handleFrames drives the presentation loop on the calling thread: event
// processing, frame start, the frame callback, submit, present, and the
// timing query. Window-system events must be pumped from this thread.
// Recovers from panics so the context still gets torn down.
func (e *engine) handleFrames() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("frame loop recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastFrame := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			ev, err := e.ctx.Control()
			if ev&render_context.EventClose != 0 {
				return
			}
			if err != nil {
				log.Printf("[Engine] reconfiguration failed: %v", err)
				return
			}

			now := time.Now()
			dt := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now

			backbuffer, err := e.ctx.FrameStart()
			if err != nil {
				log.Printf("[Engine] frame start failed: %v", err)
				return
			}

			if e.frameCallback != nil {
				e.frameCallback(backbuffer, dt)
			}

			e.ctx.FrameSubmit()
			e.ctx.SwapBuffers()

			info := e.ctx.VsyncInfo()
			if e.telemetryEnabled && e.recorder != nil {
				e.recorder.Record(telemetry.Sample{
					SubmitMicros:  now.Sub(e.startTime).Microseconds(),
					VsyncMicros:   info.VsyncDuration,
					DisplayMicros: info.LastQueueDisplayTime,
					SkippedVsyncs: info.SkippedVsyncs,
				})
			}

			// Frame rate limiting
			if e.frameLimit > 0 {
				elapsed := time.Since(lastFrame)
				if remaining := e.frameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleTick runs the fixed-rate update loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic
// rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableTelemetry enables frame pacing output to the log.
func (e *engine) EnableTelemetry() {
	e.telemetryEnabled = true
}

// DisableTelemetry disables frame pacing output.
func (e *engine) DisableTelemetry() {
	e.telemetryEnabled = false
}

// SetTickRate sets the update tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Send to channel for immediate update in running tick loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each update tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetFrameCallback registers the function called each presentation frame.
func (e *engine) SetFrameCallback(callback func(backbuffer swapchain.Texture, deltaTime float32)) {
	e.frameCallback = callback
}

// SetFrameLimit sets an optional presentation frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}

func (e *engine) VsyncInfo() vsync.TimingInfo {
	if e.ctx == nil {
		return vsync.TimingInfo{}
	}
	return e.ctx.VsyncInfo()
}
