package swapchain

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/present-go/common"
	"github.com/Carmen-Shannon/present-go/engine/vsync"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTexture records release calls for ownership tests.
type fakeTexture struct {
	width, height int
	format        wgpu.TextureFormat
	released      bool
}

func (t *fakeTexture) Width() int                 { return t.width }
func (t *fakeTexture) Height() int                { return t.height }
func (t *fakeTexture) Format() wgpu.TextureFormat { return t.format }
func (t *fakeTexture) View() *wgpu.TextureView    { return nil }
func (t *fakeTexture) Release()                   { t.released = true }

// fakeBackend is a scripted Backend recording configure/present calls.
type fakeBackend struct {
	configureErr error
	acquireErr   error

	width, height int
	mode          wgpu.PresentMode
	format        wgpu.TextureFormat

	presents int
	released bool
	acquired []*fakeTexture
}

func (b *fakeBackend) Configure(width, height int, format wgpu.TextureFormat, mode wgpu.PresentMode) (wgpu.TextureFormat, error) {
	if b.configureErr != nil {
		return wgpu.TextureFormatUndefined, b.configureErr
	}
	b.width, b.height = width, height
	b.mode = mode
	b.format = format
	if format == wgpu.TextureFormatUndefined {
		return wgpu.TextureFormatBGRA8Unorm, nil
	}
	return format, nil
}

func (b *fakeBackend) AcquireTexture() (Texture, error) {
	if b.acquireErr != nil {
		return nil, b.acquireErr
	}
	t := &fakeTexture{width: b.width, height: b.height, format: b.format}
	b.acquired = append(b.acquired, t)
	return t, nil
}

func (b *fakeBackend) Present() { b.presents++ }

func (b *fakeBackend) Stats() vsync.StatsProvider { return nil }

func (b *fakeBackend) Release() { b.released = true }

func TestNewConfiguresSurface(t *testing.T) {
	be := &fakeBackend{}
	sc, err := New(be,
		WithSize(1920, 1080),
		WithFormat(common.PixelFormatRGB10A2),
		WithSwapchainDepth(3),
		WithSyncInterval(1),
	)
	require.NoError(t, err)

	assert.Equal(t, 1920, be.width)
	assert.Equal(t, wgpu.TextureFormatRGB10A2Unorm, sc.Format())
	assert.Equal(t, 5, sc.BufferCount()) // depth 3 + backbuffer + slack
	assert.Equal(t, 1, sc.SyncInterval())
}

func TestNewCreateError(t *testing.T) {
	be := &fakeBackend{configureErr: errors.New("no suitable surface")}
	_, err := New(be)
	require.Error(t, err)

	var ce *CreateError
	assert.True(t, errors.As(err, &ce))
}

func TestPresentModeSelection(t *testing.T) {
	cases := []struct {
		interval int
		flip     bool
		want     wgpu.PresentMode
	}{
		{interval: 1, flip: true, want: wgpu.PresentModeFifo},
		{interval: 4, flip: false, want: wgpu.PresentModeFifo},
		{interval: 0, flip: true, want: wgpu.PresentModeMailbox},
		{interval: 0, flip: false, want: wgpu.PresentModeImmediate},
	}
	for _, tc := range cases {
		be := &fakeBackend{}
		_, err := New(be, WithSyncInterval(tc.interval), WithFlipMode(tc.flip))
		require.NoError(t, err)
		assert.Equal(t, tc.want, be.mode, "interval=%d flip=%v", tc.interval, tc.flip)
	}
}

func TestResizeRequiresReleasedBackbuffer(t *testing.T) {
	be := &fakeBackend{}
	sc, err := New(be, WithSize(800, 600))
	require.NoError(t, err)

	b1, err := sc.AcquireBackbuffer()
	require.NoError(t, err)
	assert.Equal(t, 800, b1.Width())

	// Resizing with the backbuffer still held is a contract violation.
	err = sc.Resize(1024, 768)
	var re *ResizeError
	require.True(t, errors.As(err, &re))

	sc.ReleaseBackbuffer()
	assert.True(t, b1.(*fakeTexture).released)

	require.NoError(t, sc.Resize(1024, 768))

	b2, err := sc.AcquireBackbuffer()
	require.NoError(t, err)
	assert.Equal(t, 1024, b2.Width())
	assert.Equal(t, 768, b2.Height())
	assert.NotSame(t, b1, b2)
}

func TestDoubleAcquireFails(t *testing.T) {
	be := &fakeBackend{}
	sc, err := New(be)
	require.NoError(t, err)

	_, err = sc.AcquireBackbuffer()
	require.NoError(t, err)

	_, err = sc.AcquireBackbuffer()
	var ae *AcquireError
	assert.True(t, errors.As(err, &ae))
}

func TestAcquireFailurePropagates(t *testing.T) {
	be := &fakeBackend{}
	sc, err := New(be)
	require.NoError(t, err)

	be.acquireErr = errors.New("device lost")
	_, err = sc.AcquireBackbuffer()
	var ae *AcquireError
	require.True(t, errors.As(err, &ae))
	assert.Nil(t, sc.Backbuffer())
}

func TestPresentDroppedWhileResizing(t *testing.T) {
	be := &fakeBackend{}
	sc, err := New(be)
	require.NoError(t, err)

	sc.Present()
	assert.Equal(t, 1, be.presents)

	// A failed resize leaves the swapchain non-renderable; presents are dropped
	// until the resize is resolved.
	be.configureErr = errors.New("mode change in progress")
	require.Error(t, sc.Resize(640, 480))
	sc.Present()
	assert.Equal(t, 1, be.presents)

	be.configureErr = nil
	require.NoError(t, sc.Resize(640, 480))
	sc.Present()
	assert.Equal(t, 2, be.presents)
}

func TestDestroyReleasesBackbufferThenBackend(t *testing.T) {
	be := &fakeBackend{}
	sc, err := New(be)
	require.NoError(t, err)

	b1, err := sc.AcquireBackbuffer()
	require.NoError(t, err)

	sc.Destroy()
	assert.True(t, b1.(*fakeTexture).released)
	assert.True(t, be.released)

	// Destroy is idempotent and releasing a not-held backbuffer is a no-op.
	sc.Destroy()
	sc.ReleaseBackbuffer()
}
