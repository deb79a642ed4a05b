package utils

import (
	"fmt"
	"time"

	"go.einride.tech/can"
)

// Frame is one received CAN frame. Live buses and log replay both produce it.
type Frame struct {
	ID        uint32
	Data      []byte
	Timestamp time.Time
	Bus       string
}

// FromCAN copies an einride frame. The payload is truncated to its declared length.
func FromCAN(f can.Frame, bus string, at time.Time) Frame {
	n := int(f.Length)
	if n > len(f.Data) {
		n = len(f.Data)
	}
	data := make([]byte, n)
	copy(data, f.Data[:n])
	return Frame{ID: f.ID, Data: data, Timestamp: at, Bus: bus}
}

// CAN converts to an einride frame ready to transmit. Payloads longer than 8 bytes are rejected.
func (f Frame) CAN() (can.Frame, error) {
	if len(f.Data) > 8 {
		return can.Frame{}, fmt.Errorf("frame 0x%X: payload of %d bytes exceeds 8", f.ID, len(f.Data))
	}
	var out can.Frame
	out.ID = f.ID
	out.Length = uint8(len(f.Data))
	copy(out.Data[:], f.Data)
	return out, nil
}

func (f Frame) String() string {
	return fmt.Sprintf("id=0x%X len=%d data=% X bus=%s", f.ID, len(f.Data), f.Data, f.Bus)
}

type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big"
	}
	return "little"
}

// RawType is the on-wire width and signedness of a field.
type RawType int

const (
	U8 RawType = iota
	I8
	U16
	I16
	U32
	I32
	F64
)

func (t RawType) Size() int {
	switch t {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32:
		return 4
	case F64:
		return 8
	default:
		return 0
	}
}

func (t RawType) Signed() bool {
	return t == I8 || t == I16 || t == I32 || t == F64
}

func (t RawType) String() string {
	switch t {
	case U8:
		return "u8"
	case I8:
		return "i8"
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}
