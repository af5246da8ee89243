// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types for the presentation core.
package common

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// PixelFormat identifies a requested backbuffer pixel format.
// PixelFormatAuto defers the choice to the surface's preferred format at configure time.
type PixelFormat int

const (
	// PixelFormatAuto lets the presentation engine pick the surface's preferred format.
	PixelFormatAuto PixelFormat = iota
	// PixelFormatRGBA8 is 8 bits per component RGBA.
	PixelFormatRGBA8
	// PixelFormatBGRA8 is 8 bits per component BGRA.
	PixelFormatBGRA8
	// PixelFormatRGB10A2 is 10 bits per color component with a 2 bit alpha channel.
	PixelFormatRGB10A2
	// PixelFormatRGBA16F is 16 bit floating point per component RGBA.
	PixelFormatRGBA16F
)

// ParsePixelFormat converts an option string into a PixelFormat.
// Recognized values: "auto", "rgba8", "bgra8", "rgb10a2", "rgba16f".
//
// Parameters:
//   - s: the option string to parse
//
// Returns:
//   - PixelFormat: the parsed format
//   - error: an error if the string is not a recognized format name
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "auto", "":
		return PixelFormatAuto, nil
	case "rgba8":
		return PixelFormatRGBA8, nil
	case "bgra8":
		return PixelFormatBGRA8, nil
	case "rgb10a2":
		return PixelFormatRGB10A2, nil
	case "rgba16f":
		return PixelFormatRGBA16F, nil
	default:
		return PixelFormatAuto, fmt.Errorf("unrecognized pixel format %q", s)
	}
}

// String returns the option-surface name of the format.
//
// Returns:
//   - string: the format name as accepted by ParsePixelFormat
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA8:
		return "rgba8"
	case PixelFormatBGRA8:
		return "bgra8"
	case PixelFormatRGB10A2:
		return "rgb10a2"
	case PixelFormatRGBA16F:
		return "rgba16f"
	default:
		return "auto"
	}
}

// TextureFormat maps the PixelFormat to the corresponding wgpu.TextureFormat.
// PixelFormatAuto maps to TextureFormatUndefined, signalling the backend to use
// the surface's preferred format instead.
//
// Returns:
//   - wgpu.TextureFormat: the wgpu texture format for this PixelFormat
func (f PixelFormat) TextureFormat() wgpu.TextureFormat {
	switch f {
	case PixelFormatRGBA8:
		return wgpu.TextureFormatRGBA8Unorm
	case PixelFormatBGRA8:
		return wgpu.TextureFormatBGRA8Unorm
	case PixelFormatRGB10A2:
		return wgpu.TextureFormatRGB10A2Unorm
	case PixelFormatRGBA16F:
		return wgpu.TextureFormatRGBA16Float
	default:
		return wgpu.TextureFormatUndefined
	}
}

// ComponentDepth returns the bit depth of the first color component of the format.
// PixelFormatAuto returns 0 since the resolved format is not known until the
// surface has been configured.
//
// Returns:
//   - int: bits in the first color component, or 0 for PixelFormatAuto
func (f PixelFormat) ComponentDepth() int {
	switch f {
	case PixelFormatRGBA8, PixelFormatBGRA8:
		return 8
	case PixelFormatRGB10A2:
		return 10
	case PixelFormatRGBA16F:
		return 16
	default:
		return 0
	}
}

// FormatComponentDepth returns the bit depth of the first color component of a
// resolved wgpu texture format. Used for the color depth query once the surface
// has chosen a concrete format for PixelFormatAuto.
//
// Parameters:
//   - format: the resolved wgpu texture format
//
// Returns:
//   - int: bits in the first color component, or 0 if unknown
func FormatComponentDepth(format wgpu.TextureFormat) int {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb,
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb:
		return 8
	case wgpu.TextureFormatRGB10A2Unorm:
		return 10
	case wgpu.TextureFormatRGBA16Float:
		return 16
	default:
		return 0
	}
}

// PresentOptions holds the recognized presentation configuration surface.
// Zero values are filled in by DefaultPresentOptions; Validate checks ranges
// and the adapter selector before the options are handed to the context.
type PresentOptions struct {
	// SyncInterval is the number of vsyncs to wait per present call, 0 to 4.
	// 0 presents immediately, 1 presents once per vsync. Defaults to 1.
	SyncInterval int

	// SwapchainDepth is the number of in-flight frames requested by the host.
	// The swapchain allocates SwapchainDepth + 2 buffers: one for the backbuffer
	// itself and one slack buffer to reduce contention with the compositor.
	SwapchainDepth int

	// Format is the requested backbuffer pixel format.
	Format PixelFormat

	// FlipMode selects flip-model presentation, where buffers are handed to the
	// display pipeline directly rather than copied.
	FlipMode bool

	// Adapter selects a GPU adapter by name prefix. Empty means no preference.
	// The special values "help" and "list" print the available adapters and
	// yield ValidationExit instead of a normal accept.
	Adapter string
}

// DefaultPresentOptions returns the defaults for the presentation option surface:
// sync interval 1, swapchain depth 3, auto format, flip mode on, no adapter preference.
//
// Returns:
//   - PresentOptions: the default options
func DefaultPresentOptions() PresentOptions {
	return PresentOptions{
		SyncInterval:   1,
		SwapchainDepth: 3,
		Format:         PixelFormatAuto,
		FlipMode:       true,
	}
}
