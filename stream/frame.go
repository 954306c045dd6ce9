// Package stream serves animated frames to preview clients over WebSocket
// and collects the pointer locus they report.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// headerSize is frame number plus point count.
const headerSize = 8

// Frame is one decoded preview frame.
type Frame struct {
	Number    uint32
	Positions []float32 // xyz per point
	Colors    []uint8   // rgb per point
}

// EncodeFrame appends the wire form of a frame to dst:
//
//	uint32 frame | uint32 count | count*3 float32 xyz | count*3 uint8 rgb
//
// All integers and floats are little-endian. colors may be nil, in which
// case the color block is omitted and count*3 bytes shorter.
func EncodeFrame(dst []byte, frame uint32, positions []float32, colors []uint8) ([]byte, error) {
	if len(positions)%3 != 0 {
		return dst, fmt.Errorf("position buffer length %d is not a multiple of 3", len(positions))
	}
	count := len(positions) / 3
	if colors != nil && len(colors) != 3*count {
		return dst, fmt.Errorf("color buffer length %d, want %d", len(colors), 3*count)
	}

	dst = binary.LittleEndian.AppendUint32(dst, frame)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(count))
	for _, v := range positions {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	dst = append(dst, colors...)
	return dst, nil
}

// DecodeFrame parses a frame produced by EncodeFrame.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < headerSize {
		return Frame{}, errors.New("frame shorter than header")
	}
	f := Frame{Number: binary.LittleEndian.Uint32(b)}
	count := int(binary.LittleEndian.Uint32(b[4:]))
	body := b[headerSize:]

	posBytes := 12 * count
	switch len(body) {
	case posBytes, posBytes + 3*count:
	default:
		return Frame{}, fmt.Errorf("frame body is %d bytes for %d points", len(body), count)
	}

	f.Positions = make([]float32, 3*count)
	for i := range f.Positions {
		f.Positions[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[4*i:]))
	}
	if len(body) > posBytes {
		f.Colors = append([]uint8(nil), body[posBytes:]...)
	}
	return f, nil
}
