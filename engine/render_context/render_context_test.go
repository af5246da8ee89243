package render_context

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/present-go/common"
	"github.com/Carmen-Shannon/present-go/engine/clock"
	"github.com/Carmen-Shannon/present-go/engine/device"
	"github.com/Carmen-Shannon/present-go/engine/swapchain"
	"github.com/Carmen-Shannon/present-go/engine/vsync"
	"github.com/Carmen-Shannon/present-go/engine/window"
)

type fakeWindow struct {
	width, height int
	running       bool
	onResize      func(width, height int)
}

func (w *fakeWindow) SetUpdateCallback(func())                     {}
func (w *fakeWindow) SetResizeCallback(cb func(int, int))          { w.onResize = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return w.running }
func (w *fakeWindow) Close() error                                 { return nil }
func (w *fakeWindow) Poll() bool                                   { return w.running }
func (w *fakeWindow) ProcessMessages()                             {}
func (w *fakeWindow) Width() int                                   { return w.width }
func (w *fakeWindow) Height() int                                  { return w.height }

var _ window.Window = &fakeWindow{}

type fakeDevice struct {
	log     *[]string
	flushes int
}

func (d *fakeDevice) WGPUDevice() *wgpu.Device { return nil }
func (d *fakeDevice) Adapter() *wgpu.Adapter   { return nil }
func (d *fakeDevice) Surface() *wgpu.Surface   { return nil }
func (d *fakeDevice) Queue() *wgpu.Queue       { return nil }
func (d *fakeDevice) Flush()                   { d.flushes++ }
func (d *fakeDevice) MaxFrameLatency() int     { return 3 }
func (d *fakeDevice) Release()                 { *d.log = append(*d.log, "device released") }

var _ device.Device = &fakeDevice{}

type fakeCtxTexture struct {
	width, height int
	format        wgpu.TextureFormat
}

func (t *fakeCtxTexture) Width() int                { return t.width }
func (t *fakeCtxTexture) Height() int               { return t.height }
func (t *fakeCtxTexture) Format() wgpu.TextureFormat { return t.format }
func (t *fakeCtxTexture) View() *wgpu.TextureView   { return nil }
func (t *fakeCtxTexture) Release()                  {}

type fakeSwapchain struct {
	log        *[]string
	width      int
	height     int
	format     wgpu.TextureFormat
	held       Texture
	resizeErr  error
	acquireErr error
	presents   int
	stats      vsync.StatsProvider
}

// Texture aliases the swapchain texture type for brevity in fakes.
type Texture = swapchain.Texture

func (s *fakeSwapchain) AcquireBackbuffer() (Texture, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.held = &fakeCtxTexture{width: s.width, height: s.height, format: s.format}
	return s.held, nil
}

func (s *fakeSwapchain) Backbuffer() Texture { return s.held }

func (s *fakeSwapchain) ReleaseBackbuffer() {
	if s.held != nil {
		*s.log = append(*s.log, "backbuffer released")
		s.held = nil
	}
}

func (s *fakeSwapchain) Resize(width, height int) error {
	if s.resizeErr != nil {
		return s.resizeErr
	}
	s.width, s.height = width, height
	return nil
}

func (s *fakeSwapchain) Present()                  { s.presents++ }
func (s *fakeSwapchain) SyncInterval() int         { return 1 }
func (s *fakeSwapchain) BufferCount() int          { return 5 }
func (s *fakeSwapchain) Format() wgpu.TextureFormat { return s.format }
func (s *fakeSwapchain) Stats() vsync.StatsProvider { return s.stats }
func (s *fakeSwapchain) Destroy()                  { *s.log = append(*s.log, "swapchain destroyed") }

var _ swapchain.Swapchain = &fakeSwapchain{}

type harness struct {
	win *fakeWindow
	dev *fakeDevice
	sc  *fakeSwapchain
	clk *clock.ManualClock
	log []string
}

func newHarness(t *testing.T, options ...BuilderOption) (*harness, RenderContext) {
	t.Helper()
	h := &harness{
		win: &fakeWindow{width: 1280, height: 720, running: true},
		clk: clock.NewManualClock(10_000_000),
	}
	h.dev = &fakeDevice{log: &h.log}
	h.sc = &fakeSwapchain{log: &h.log, width: 1280, height: 720, format: wgpu.TextureFormatBGRA8Unorm}

	base := []BuilderOption{
		WithClock(h.clk),
		WithDeviceFactory(func(window.Window, common.PresentOptions, bool) (device.Device, error) {
			return h.dev, nil
		}),
		WithSwapchainFactory(func(_ device.Device, _ common.PresentOptions, width, height int) (swapchain.Swapchain, error) {
			h.sc.width, h.sc.height = width, height
			return h.sc, nil
		}),
	}
	return h, New(h.win, append(base, options...)...)
}

func TestContextInitAcquiresBackbuffer(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())

	tex, err := ctx.FrameStart()
	require.NoError(t, err)
	assert.Equal(t, 1280, tex.Width())
	assert.Equal(t, 720, tex.Height())
	assert.NotNil(t, h.win.onResize, "resize callback should be registered")
}

func TestContextInitRejectsInvalidOptions(t *testing.T) {
	_, ctx := newHarness(t, WithOptions(common.PresentOptions{SyncInterval: 9, SwapchainDepth: 3}))
	err := ctx.Init()
	require.Error(t, err)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "option validation", initErr.Stage)
}

func TestContextInitExitsAfterAdapterListing(t *testing.T) {
	lister := common.AdapterListerFunc(func() []string { return []string{"Iris Xe", "RTX 4070"} })
	_, ctx := newHarness(t,
		WithOptions(common.PresentOptions{SyncInterval: 1, SwapchainDepth: 3, Adapter: "help"}),
		WithAdapterLister(lister),
	)
	assert.ErrorIs(t, ctx.Init(), ErrExitAfterInfo)
}

func TestContextInitTearsDownOnSwapchainFailure(t *testing.T) {
	h, _ := newHarness(t)
	ctx := New(h.win,
		WithClock(h.clk),
		WithDeviceFactory(func(window.Window, common.PresentOptions, bool) (device.Device, error) {
			return h.dev, nil
		}),
		WithSwapchainFactory(func(device.Device, common.PresentOptions, int, int) (swapchain.Swapchain, error) {
			return nil, errors.New("surface lost")
		}),
	)

	err := ctx.Init()
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "swapchain creation", initErr.Stage)
	assert.Equal(t, []string{"device released"}, h.log, "device created before the failure must be released")
}

func TestContextInitTearsDownOnAcquireFailure(t *testing.T) {
	h, ctx := newHarness(t)
	h.sc.acquireErr = errors.New("device removed")

	err := ctx.Init()
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "backbuffer acquisition", initErr.Stage)
	assert.Equal(t, []string{"swapchain destroyed", "device released"}, h.log)
}

func TestContextControlHandlesResize(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())

	h.win.width, h.win.height = 1920, 1080
	h.win.onResize(1920, 1080)

	ev, err := ctx.Control()
	require.NoError(t, err)
	assert.Equal(t, EventResize, ev)

	tex, err := ctx.FrameStart()
	require.NoError(t, err)
	assert.Equal(t, 1920, tex.Width())
	assert.Equal(t, 1080, tex.Height())

	// The resize must be consumed, not re-reported.
	ev, err = ctx.Control()
	require.NoError(t, err)
	assert.Equal(t, EventNone, ev)
}

func TestContextControlPropagatesReconfigFailure(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())

	h.sc.resizeErr = errors.New("out of memory")
	h.win.onResize(640, 480)

	ev, err := ctx.Control()
	assert.Equal(t, EventResize, ev)
	assert.Error(t, err)

	_, err = ctx.FrameStart()
	assert.Error(t, err, "backbuffer released by the failed reconfig must not be handed out")
}

func TestContextControlReportsClose(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())

	h.win.running = false
	ev, err := ctx.Control()
	require.NoError(t, err)
	assert.Equal(t, EventClose, ev)
}

func TestContextSwapBuffersRecordsSubmitAndPresents(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())

	ctx.FrameSubmit()
	ctx.SwapBuffers()
	assert.Equal(t, 1, h.dev.flushes)
	assert.Equal(t, 1, h.sc.presents)
}

func TestContextVsyncInfoDegradesWithoutStats(t *testing.T) {
	_, ctx := newHarness(t)
	require.NoError(t, ctx.Init())
	assert.Equal(t, vsync.TimingInfo{}, ctx.VsyncInfo())
}

func TestContextColorDepth(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())
	assert.Equal(t, 8, ctx.ColorDepth())

	h.sc.ReleaseBackbuffer()
	assert.Equal(t, 0, ctx.ColorDepth())
}

func TestContextUninitReleaseOrder(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())

	ctx.Uninit()
	assert.Equal(t, []string{"backbuffer released", "swapchain destroyed", "device released"}, h.log)

	// Uninit is idempotent.
	ctx.Uninit()
	assert.Len(t, h.log, 3)
}

func TestContextUninitWithoutHeldBackbuffer(t *testing.T) {
	h, ctx := newHarness(t)
	require.NoError(t, ctx.Init())

	// Releasing a backbuffer that is not held must be a no-op, so Uninit after
	// a manual release skips straight to swapchain and device teardown.
	h.sc.ReleaseBackbuffer()
	h.log = nil

	ctx.Uninit()
	assert.Equal(t, []string{"swapchain destroyed", "device released"}, h.log)
}
