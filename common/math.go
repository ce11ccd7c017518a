package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// glToZeroOneDepth remaps OpenGL clip-space depth [-1, 1] to the WebGPU range [0, 1].
// Column-major, applied on the left of a projection matrix.
var glToZeroOneDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// BytesToSlice copies raw bytes into a freshly allocated slice of T.
// Trailing bytes that do not fill a whole element are ignored.
// The copy keeps the result properly aligned regardless of the source alignment.
//
// Parameters:
//   - data: source bytes in native byte order
//
// Returns:
//   - []T: decoded elements, or nil if data holds fewer bytes than one element
func BytesToSlice[T any](data []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := len(data) / size
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	copy(SliceToBytes(out), data[:n*size])
	return out
}

// RotationXY composes a rotation about X by a with a rotation about Y by b.
// The product is X·Y: the Y rotation is applied to a vertex first.
//
// Parameters:
//   - a: rotation about the X axis in radians
//   - b: rotation about the Y axis in radians
//
// Returns:
//   - mgl32.Mat4: the column-major composed rotation
func RotationXY(a, b float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(a).Mul4(mgl32.HomogRotate3DY(b))
}

// Perspective creates a right-handed perspective projection matrix.
// When zeroToOne is set the depth range is [0, 1] (WebGPU), otherwise [-1, 1] (OpenGL).
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//   - zeroToOne: remap clip depth to [0, 1]
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32, zeroToOne bool) mgl32.Mat4 {
	p := mgl32.Perspective(fovY, aspect, near, far)
	if zeroToOne {
		return glToZeroOneDepth.Mul4(p)
	}
	return p
}

// TurnsToRadians converts a fraction of a full turn into radians.
func TurnsToRadians(turns float64) float32 {
	return float32(turns * 2 * math.Pi)
}
