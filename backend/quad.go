//go:build !nogpu

package backend

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// quadUniformSize is one vec4<f32> holding opacity in x.
const quadUniformSize = 16

// quadVertexLayout describes interleaved position+uv vertices, two
// float32 pairs per vertex.
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 16,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			},
		},
	}
}

// quadVertexData builds two triangles covering the clip-space rect
// (x0,y0)-(x1,y1), with uv (0,0) at the top-left corner.
func quadVertexData(x0, y0, x1, y1 float32) []byte {
	verts := [6][4]float32{
		{x0, y0, 0, 0},
		{x1, y0, 1, 0},
		{x1, y1, 1, 1},
		{x0, y0, 0, 0},
		{x1, y1, 1, 1},
		{x0, y1, 0, 1},
	}
	data := make([]byte, 0, 6*16)
	for _, v := range verts {
		for _, f := range v {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
		}
	}
	return data
}

// uniformData packs the opacity uniform vec4.
func uniformData(opacity float32) []byte {
	data := make([]byte, 0, quadUniformSize)
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(opacity))
	data = binary.LittleEndian.AppendUint32(data, 0)
	data = binary.LittleEndian.AppendUint32(data, 0)
	data = binary.LittleEndian.AppendUint32(data, 0)
	return data
}
