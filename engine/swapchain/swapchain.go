// package swapchain manages the presentation surface: creation, resize,
// backbuffer acquisition, and present calls. It owns at most one live
// backbuffer texture at a time and hands it to the rendering pipeline as a
// borrowed reference for the duration of a single frame.
package swapchain

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/present-go/common"
	"github.com/Carmen-Shannon/present-go/engine/vsync"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is a render-target wrapper around a swapchain buffer. It is owned
// exclusively by the swapchain while active; the rendering pipeline receives
// it as a borrowed reference and must not retain it past frame submission.
type Texture interface {
	// Width returns the texture width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the texture height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// Format returns the concrete texture format of the buffer.
	//
	// Returns:
	//   - wgpu.TextureFormat: the resolved format
	Format() wgpu.TextureFormat

	// View returns the render-target view for encoding draws into this buffer.
	// May be nil for backends without a wgpu view (test doubles).
	//
	// Returns:
	//   - *wgpu.TextureView: the render attachment view
	View() *wgpu.TextureView

	// Release frees the wrapper's references to the underlying buffer.
	Release()
}

// Backend abstracts the platform presentation engine behind the swapchain
// manager: surface configuration, buffer acquisition, present, and the
// frame-statistics feed.
type Backend interface {
	// Configure creates or reconfigures the presentation surface. Called once at
	// creation and again on every resize; any held buffer must be released first.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//   - format: requested texture format, or TextureFormatUndefined for the surface's preferred format
	//   - mode: the present mode derived from the sync interval and flip settings
	//
	// Returns:
	//   - wgpu.TextureFormat: the concrete format the surface was configured with
	//   - error: an error if the platform call fails
	Configure(width, height int, format wgpu.TextureFormat, mode wgpu.PresentMode) (wgpu.TextureFormat, error)

	// AcquireTexture acquires the current backbuffer (buffer index 0) as a
	// render-target wrapper.
	//
	// Returns:
	//   - Texture: the acquired buffer wrapper
	//   - error: an error if the platform call fails (e.g. device lost)
	AcquireTexture() (Texture, error)

	// Present submits the current backbuffer for display and advances the
	// backend's submission sequence counter. May block the calling thread for
	// up to the duration implied by the configured present mode.
	Present()

	// Stats returns the presentation engine's statistics feed.
	//
	// Returns:
	//   - vsync.StatsProvider: the feed; individual queries may fail
	Stats() vsync.StatsProvider

	// Release frees the backend's platform resources.
	Release()
}

// Swapchain owns the presentation surface and its at-most-one live backbuffer.
// All methods must be called from the presentation thread; no internal locking
// is provided.
type Swapchain interface {
	// AcquireBackbuffer acquires the current backbuffer as a render target.
	// The swapchain keeps ownership; the returned Texture is borrowed for the
	// current frame. Fails with an AcquireError if the platform call fails, or
	// if a backbuffer is already held.
	//
	// Returns:
	//   - Texture: the backbuffer wrapper
	//   - error: an AcquireError on failure
	AcquireBackbuffer() (Texture, error)

	// Backbuffer returns the currently held backbuffer, or nil when none is
	// held (before the first acquire, or mid-resize).
	//
	// Returns:
	//   - Texture: the held backbuffer, or nil
	Backbuffer() Texture

	// ReleaseBackbuffer releases the held backbuffer. Releasing when none is
	// held is a no-op. Must be called before Resize or Destroy.
	ReleaseBackbuffer()

	// Resize destroys and recreates the surface buffers at the new dimensions.
	// The backbuffer must have been released first; a held backbuffer is a
	// contract violation and fails with a ResizeError. On success all buffers
	// are realigned to the new size and the caller must re-acquire.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	//
	// Returns:
	//   - error: a ResizeError on failure
	Resize(width, height int) error

	// Present submits the current backbuffer for display. Blocking up to the
	// configured sync interval is delegated to the platform; interval 0 returns
	// immediately. Present during a resize is a contract violation and is
	// logged and dropped.
	Present()

	// SyncInterval returns the configured sync interval (0-4).
	//
	// Returns:
	//   - int: vsyncs waited per present
	SyncInterval() int

	// BufferCount returns the total number of surface buffers: the configured
	// depth plus one for the backbuffer and one slack buffer.
	//
	// Returns:
	//   - int: the buffer count
	BufferCount() int

	// Format returns the concrete format the surface was configured with.
	//
	// Returns:
	//   - wgpu.TextureFormat: the resolved format
	Format() wgpu.TextureFormat

	// Stats returns the presentation engine's statistics feed for the vsync
	// estimator.
	//
	// Returns:
	//   - vsync.StatsProvider: the feed
	Stats() vsync.StatsProvider

	// Destroy releases the backbuffer (if held) and the surface. The swapchain
	// is unusable afterwards.
	Destroy()
}

// swapchain state machine states.
type state int

const (
	stateCreated state = iota
	stateResizing
	stateDestroyed
)

// chain is the implementation of the Swapchain interface.
type chain struct {
	backend Backend

	st         state
	backbuffer Texture

	width, height int
	format        common.PixelFormat
	resolved      wgpu.TextureFormat
	flipMode      bool
	depth         int
	syncInterval  int
}

var _ Swapchain = &chain{}

// New creates a Swapchain over the given backend and configures the surface.
// The buffer count is the configured depth plus one frame for the backbuffer
// and one frame of slack to reduce contention with the window compositor when
// acquiring the next buffer.
//
// Parameters:
//   - backend: the platform presentation backend
//   - options: functional options; see With* in swapchain_builder.go
//
// Returns:
//   - Swapchain: the created swapchain in the Created state
//   - error: a CreateError if the surface could not be configured
func New(backend Backend, options ...BuilderOption) (Swapchain, error) {
	if backend == nil {
		return nil, &CreateError{Err: errors.New("nil backend")}
	}

	c := &chain{
		backend:      backend,
		width:        1280,
		height:       720,
		format:       common.PixelFormatAuto,
		flipMode:     true,
		depth:        3,
		syncInterval: 1,
	}
	for _, opt := range options {
		opt(c)
	}

	resolved, err := backend.Configure(c.width, c.height, c.format.TextureFormat(), c.presentMode())
	if err != nil {
		return nil, &CreateError{Err: err}
	}
	c.resolved = resolved
	c.st = stateCreated
	return c, nil
}

// presentMode derives the platform present mode from the sync interval and
// flip settings. Interval 0 with flip-model presentation maps to mailbox
// (uncapped, latest frame wins, no tearing); interval 0 without flip maps to
// immediate (bitblt-style, may tear). Any waiting interval maps to fifo; the
// platform cannot wait more than one vsync per present, so intervals above 1
// still pace at one present per vsync and disable timing estimation instead.
func (c *chain) presentMode() wgpu.PresentMode {
	if c.syncInterval == 0 {
		if c.flipMode {
			return wgpu.PresentModeMailbox
		}
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

func (c *chain) AcquireBackbuffer() (Texture, error) {
	if c.st != stateCreated {
		return nil, &AcquireError{Err: fmt.Errorf("swapchain not in created state")}
	}
	if c.backbuffer != nil {
		return nil, &AcquireError{Err: fmt.Errorf("backbuffer already acquired")}
	}

	tex, err := c.backend.AcquireTexture()
	if err != nil {
		return nil, &AcquireError{Err: err}
	}
	c.backbuffer = tex
	return tex, nil
}

func (c *chain) Backbuffer() Texture {
	return c.backbuffer
}

func (c *chain) ReleaseBackbuffer() {
	if c.backbuffer == nil {
		return
	}
	c.backbuffer.Release()
	c.backbuffer = nil
}

func (c *chain) Resize(width, height int) error {
	if c.st == stateDestroyed {
		return &ResizeError{Err: errors.New("swapchain destroyed")}
	}
	if c.backbuffer != nil {
		return &ResizeError{Err: errors.New("backbuffer still acquired")}
	}

	c.st = stateResizing
	resolved, err := c.backend.Configure(width, height, c.format.TextureFormat(), c.presentMode())
	if err != nil {
		return &ResizeError{Err: err}
	}
	c.width, c.height = width, height
	c.resolved = resolved
	c.st = stateCreated
	return nil
}

func (c *chain) Present() {
	if c.st != stateCreated {
		log.Printf("[Swapchain] present dropped: swapchain not in created state")
		return
	}
	c.backend.Present()
}

func (c *chain) SyncInterval() int {
	return c.syncInterval
}

func (c *chain) BufferCount() int {
	// One frame for the backbuffer itself and one frame of slack on top of the
	// host's requested depth.
	return c.depth + 2
}

func (c *chain) Format() wgpu.TextureFormat {
	return c.resolved
}

func (c *chain) Stats() vsync.StatsProvider {
	return c.backend.Stats()
}

func (c *chain) Destroy() {
	if c.st == stateDestroyed {
		return
	}
	c.ReleaseBackbuffer()
	c.backend.Release()
	c.st = stateDestroyed
}
