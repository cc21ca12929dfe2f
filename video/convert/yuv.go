// Package convert implements the scalar BT.601 YUV420->RGBA conversion
// of SPEC_FULL §4.5, used by fallback paths without a shader stage and
// as the deterministic backing for the WebGL-equivalent sink's sampling
// in video/render.
package convert

import "github.com/corestream/streamcore/pipeline"

func clamp(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// YUV420ToRGBA converts a planar 4:2:0 frame to a tightly packed 8-bit
// RGBA buffer using the BT.601 matrix with saturation clamp.
func YUV420ToRGBA(frame pipeline.Yuv420Frame) pipeline.RGBAFrame {
	w, h := frame.Width, frame.Height
	out := make([]byte, w*h*4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			Y := int32(frame.Y[y*frame.YStride+x])
			U := int32(frame.U[(y/2)*frame.UVStride+x/2]) - 128
			V := int32(frame.V[(y/2)*frame.UVStride+x/2]) - 128

			r := clamp(Y + (91881*V)>>16)
			g := clamp(Y - (22554*U+46802*V)>>16)
			b := clamp(Y + (116130*U)>>16)

			i := (y*w + x) * 4
			out[i] = r
			out[i+1] = g
			out[i+2] = b
			out[i+3] = 255
		}
	}

	return pipeline.RGBAFrame{
		Buffer: out, Width: w, Height: h,
		TimestampMicroseconds: frame.TimestampMicroseconds,
	}
}
