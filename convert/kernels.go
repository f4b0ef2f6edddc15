package convert

import (
	"encoding/binary"
	"fmt"
	"math"
)

// The container-width divisors below are the midpoint-full-scale constants
// for each integer width: 2^(bits-1) for a signed container, reused for the
// unsigned case by recentering around the same span. They mirror the
// original float converter's per-width normalization, not a generic
// "2^bits" formula, because packed24 normalizes through an intermediate
// 32-bit assembly step (see packed24Reader).
const (
	scale8  = 1 << 7
	scale16 = 1 << 15
	scale24 = 1 << 23
	scale32 = 1 << 31
)

func byteOrder(be bool) binary.ByteOrder {
	if be {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func floatReader(width int, be bool) (sampleReader, error) {
	order := byteOrder(be)
	switch width {
	case 4:
		return func(b []byte) float64 {
			return float64(math.Float32frombits(order.Uint32(b)))
		}, nil
	case 8:
		return func(b []byte) float64 {
			return math.Float64frombits(order.Uint64(b))
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d-byte float container", ErrUnsupportedPackedWidth, width)
	}
}

func packedReader(width int, be bool, signed bool) (sampleReader, error) {
	order := byteOrder(be)
	switch width {
	case 1:
		if signed {
			return func(b []byte) float64 { return float64(int8(b[0])) / scale8 }, nil
		}
		return func(b []byte) float64 { return (float64(b[0]) - scale8) / scale8 }, nil
	case 2:
		if signed {
			return func(b []byte) float64 { return float64(int16(order.Uint16(b))) / scale16 }, nil
		}
		return func(b []byte) float64 { return (float64(order.Uint16(b)) - scale16) / scale16 }, nil
	case 3:
		return packed24Reader(be, signed), nil
	case 4:
		if signed {
			return func(b []byte) float64 { return float64(int32(order.Uint32(b))) / scale32 }, nil
		}
		return func(b []byte) float64 { return (float64(order.Uint32(b)) - scale32) / scale32 }, nil
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedPackedWidth, width)
	}
}

// packed24Reader assembles three bytes into a 32-bit value shifted into the
// high 24 bits, then divides out the byte-alignment shift before
// normalizing — the same two-step the original converter uses, kept as two
// steps rather than collapsed into one divide so the integer truncation
// matches exactly. The assembly itself stays unsigned: the shift always
// leaves the low byte zero, so dividing by 256 is exact regardless of
// signedness, but the unsigned case must read the pre-divide bit pattern as
// unsigned (0..2^32) before that divide or values with the top bit set
// normalize to the wrong sign.
func packed24Reader(be bool, signed bool) sampleReader {
	assemble := func(b []byte) uint32 {
		if be {
			return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8
		}
		return uint32(b[2])<<24 | uint32(b[1])<<16 | uint32(b[0])<<8
	}
	if signed {
		return func(b []byte) float64 {
			v := int32(assemble(b)) / 256
			return float64(v) / scale24
		}
	}
	return func(b []byte) float64 {
		v := assemble(b) / 256
		return (float64(v) - scale24) / scale24
	}
}

// highAlignedReader reads a sample that occupies the high bits of its
// container, low bits padded with zero. The padding falls out of the same
// packed formula for the container's own width, so this only needs to pick
// the reader for the right container size.
func highAlignedReader(width int, be bool, signed bool) (sampleReader, error) {
	switch width {
	case 1, 2, 4:
		return packedReader(width, be, signed)
	case 3:
		return packed24Reader(be, signed), nil
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrUnsupportedAlignedWidth, width)
	}
}

// lowAlignedReader shifts a sample occupying the low bits of its container
// up into the high bits of a same-width local array, then defers to inner
// (a high-aligned reader for that width). The shift happens on a small
// local copy — the caller's buffer is never written to.
func lowAlignedReader(width int, be bool, shift uint, inner sampleReader) sampleReader {
	order := byteOrder(be)
	switch width {
	case 2:
		return func(b []byte) float64 {
			v := order.Uint16(b) << shift
			var tmp [2]byte
			order.PutUint16(tmp[:], v)
			return inner(tmp[:])
		}
	case 4:
		return func(b []byte) float64 {
			v := order.Uint32(b) << shift
			var tmp [4]byte
			order.PutUint32(tmp[:], v)
			return inner(tmp[:])
		}
	default:
		// 3-byte (or narrower) containers: read the bytes in their declared
		// order into a big-endian uint64, shift, write back in the same
		// order. width is at most 4 here, so this never needs more than
		// 32 bits.
		return func(b []byte) float64 {
			var v uint64
			if be {
				for i := 0; i < width; i++ {
					v = v<<8 | uint64(b[i])
				}
			} else {
				for i := width - 1; i >= 0; i-- {
					v = v<<8 | uint64(b[i])
				}
			}
			v <<= shift
			tmp := make([]byte, width)
			if be {
				for i := width - 1; i >= 0; i-- {
					tmp[i] = byte(v)
					v >>= 8
				}
			} else {
				for i := 0; i < width; i++ {
					tmp[i] = byte(v)
					v >>= 8
				}
			}
			return inner(tmp)
		}
	}
}
