package engine

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/present-go/engine/device"
	"github.com/Carmen-Shannon/present-go/engine/render_context"
	"github.com/Carmen-Shannon/present-go/engine/swapchain"
	"github.com/Carmen-Shannon/present-go/engine/telemetry"
	"github.com/Carmen-Shannon/present-go/engine/vsync"
)

type loopTexture struct{}

func (t *loopTexture) Width() int                 { return 640 }
func (t *loopTexture) Height() int                { return 480 }
func (t *loopTexture) Format() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8Unorm }
func (t *loopTexture) View() *wgpu.TextureView    { return nil }
func (t *loopTexture) Release()                   {}

// fakeContext runs the lifecycle for a fixed number of frames, then reports
// a close event.
type fakeContext struct {
	initErr     error
	framesLeft  int
	calls       []string
	timing      vsync.TimingInfo
	uninitCalls int
}

func (c *fakeContext) Init() error { c.calls = append(c.calls, "init"); return c.initErr }
func (c *fakeContext) Reconfig() error {
	c.calls = append(c.calls, "reconfig")
	return nil
}
func (c *fakeContext) FrameStart() (swapchain.Texture, error) {
	c.calls = append(c.calls, "frameStart")
	return &loopTexture{}, nil
}
func (c *fakeContext) FrameSubmit() { c.calls = append(c.calls, "frameSubmit") }
func (c *fakeContext) SwapBuffers() { c.calls = append(c.calls, "swapBuffers") }
func (c *fakeContext) VsyncInfo() vsync.TimingInfo {
	c.calls = append(c.calls, "vsyncInfo")
	return c.timing
}
func (c *fakeContext) ColorDepth() int       { return 8 }
func (c *fakeContext) Device() device.Device { return nil }
func (c *fakeContext) Control() (render_context.Event, error) {
	if c.framesLeft <= 0 {
		return render_context.EventClose, nil
	}
	c.framesLeft--
	return render_context.EventNone, nil
}
func (c *fakeContext) Uninit() { c.uninitCalls++ }

var _ render_context.RenderContext = &fakeContext{}

func TestEngineRunDrivesFrameLifecycle(t *testing.T) {
	ctx := &fakeContext{framesLeft: 2}
	frames := 0

	e := NewEngine(WithRenderContext(ctx))
	e.SetFrameCallback(func(backbuffer swapchain.Texture, deltaTime float32) {
		require.NotNil(t, backbuffer)
		frames++
	})

	require.NoError(t, e.Run())
	assert.Equal(t, 2, frames)
	assert.Equal(t, 1, ctx.uninitCalls, "context must be torn down after the loop")

	// Each frame runs start, submit, present, and the timing query in order.
	assert.Equal(t, []string{
		"init",
		"frameStart", "frameSubmit", "swapBuffers", "vsyncInfo",
		"frameStart", "frameSubmit", "swapBuffers", "vsyncInfo",
	}, ctx.calls)
}

func TestEngineRunPropagatesInitFailure(t *testing.T) {
	ctx := &fakeContext{initErr: errors.New("no suitable adapter")}
	e := NewEngine(WithRenderContext(ctx))

	require.Error(t, e.Run())
	assert.Zero(t, ctx.uninitCalls, "a context that never initialized must not be torn down")
}

func TestEngineRunExitsCleanlyAfterInfo(t *testing.T) {
	ctx := &fakeContext{initErr: render_context.ErrExitAfterInfo}
	e := NewEngine(WithRenderContext(ctx))
	assert.NoError(t, e.Run())
}

func TestEngineRecordsTelemetry(t *testing.T) {
	ctx := &fakeContext{
		framesLeft: 3,
		timing:     vsync.TimingInfo{VsyncDuration: 16_667, LastQueueDisplayTime: 100_000, SkippedVsyncs: 0},
	}
	rec := telemetry.NewRecorder(telemetry.WithLogInterval(0))

	e := NewEngine(WithRenderContext(ctx), WithRecorder(rec), WithTelemetry(true))
	require.NoError(t, e.Run())

	stats := rec.Snapshot()
	assert.Equal(t, 3, stats.Frames)
	assert.Equal(t, int64(16_667), stats.VsyncMicrosAvg)
	assert.Equal(t, 3, stats.PredictedFrames)
}
