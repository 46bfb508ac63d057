package onnx

import (
	"encoding/binary"

	"github.com/x448/float16"
)

// encodeFloat16 wandelt float32 in little-endian IEEE-754 half precision
func encodeFloat16(data []float32) []byte {
	buf := make([]byte, 2*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint16(buf[2*i:], float16.Fromfloat32(v).Bits())
	}
	return buf
}

func decodeFloat16(buf []byte) []float32 {
	data := make([]float32, len(buf)/2)
	for i := range data {
		data[i] = float16.Frombits(binary.LittleEndian.Uint16(buf[2*i:])).Float32()
	}
	return data
}
