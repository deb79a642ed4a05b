package utils

import (
	"errors"
	"fmt"
	"math"
)

// ErrFieldRange is returned when a field does not fit inside the payload.
var ErrFieldRange = errors.New("field outside payload")

func getBits(payload uint64, startBit, bitLen int) uint64 {
	if bitLen <= 0 || bitLen > 64 {
		return 0
	}
	if bitLen == 64 {
		return payload >> startBit
	}
	mask := uint64((1 << bitLen) - 1)
	return (payload >> startBit) & mask
}

func setBits(payload uint64, startBit, bitLen int, value uint64) uint64 {
	if bitLen <= 0 || bitLen > 64 {
		return payload
	}
	mask := ^uint64(0)
	if bitLen < 64 {
		mask = uint64((1 << bitLen) - 1)
	}
	payload &^= (mask << startBit)
	payload |= (value & mask) << startBit
	return payload
}

func unsignedToRawInt64(u uint64, bitLen int, signed bool) int64 {
	if !signed || bitLen >= 64 {
		return int64(u)
	}
	signBit := uint64(1) << (bitLen - 1)
	if (u & signBit) == 0 {
		return int64(u)
	}
	fullMask := uint64((1 << bitLen) - 1)
	twos := (^u + 1) & fullMask
	return -int64(twos)
}

func rawToUnsigned(raw int64, bitLen int) uint64 {
	if raw >= 0 {
		return uint64(raw)
	}
	fullMask := uint64((1 << bitLen) - 1)
	u := uint64(-raw)
	twos := (^u + 1) & fullMask
	return twos
}

func clampRaw(raw int64, bitLen int, signed bool) int64 {
	if bitLen <= 0 || bitLen > 63 {
		return raw
	}
	if !signed {
		max := int64((1 << bitLen) - 1)
		if raw < 0 {
			return 0
		}
		if raw > max {
			return max
		}
		return raw
	}
	min := -int64(1 << (bitLen - 1))
	max := int64((1 << (bitLen - 1)) - 1)
	if raw < min {
		return min
	}
	if raw > max {
		return max
	}
	return raw
}

// loadWord packs size bytes starting at off into the low bits of a uint64,
// least significant byte first.
func loadWord(data []byte, off, size int, order ByteOrder) uint64 {
	var w uint64
	for i := 0; i < size; i++ {
		b := data[off+i]
		if order == BigEndian {
			w = setBits(w, 8*(size-1-i), 8, uint64(b))
		} else {
			w = setBits(w, 8*i, 8, uint64(b))
		}
	}
	return w
}

// ReadRaw extracts the raw integer (or IEEE-754 double for F64) at byte offset off.
func ReadRaw(data []byte, off int, t RawType, order ByteOrder) (float64, error) {
	size := t.Size()
	if size == 0 {
		return 0, fmt.Errorf("raw type %d: %w", t, ErrFieldRange)
	}
	if off < 0 || off+size > len(data) {
		return 0, fmt.Errorf("%s at byte %d of %d-byte payload: %w", t, off, len(data), ErrFieldRange)
	}
	w := loadWord(data, off, size, order)
	if t == F64 {
		return math.Float64frombits(w), nil
	}
	u := getBits(w, 0, 8*size)
	return float64(unsignedToRawInt64(u, 8*size, t.Signed())), nil
}

// PutRaw writes raw into data at byte offset off, clamped to the type's range.
func PutRaw(data []byte, off int, t RawType, order ByteOrder, raw int64) error {
	size := t.Size()
	if size == 0 || t == F64 {
		return fmt.Errorf("raw type %s not writable: %w", t, ErrFieldRange)
	}
	if off < 0 || off+size > len(data) {
		return fmt.Errorf("%s at byte %d of %d-byte payload: %w", t, off, len(data), ErrFieldRange)
	}
	bits := 8 * size
	u := rawToUnsigned(clampRaw(raw, bits, t.Signed()), bits)
	for i := 0; i < size; i++ {
		b := byte(getBits(u, 8*i, 8))
		if order == BigEndian {
			data[off+size-1-i] = b
		} else {
			data[off+i] = b
		}
	}
	return nil
}
