package decoder

import (
	"errors"
	"fmt"
)

// ErrOverlap is returned by NewTable when two definitions claim the same ID.
var ErrOverlap = errors.New("overlapping message ids")

// DecodeError reports a decode routine that failed or panicked on one frame.
type DecodeError struct {
	ID      uint32
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode 0x%03X (%s): %v", e.ID, e.Message, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ShardIndexError reports a shard frame whose start index is not a multiple of the
// stride or lies past the array's last shard.
type ShardIndexError struct {
	ID    uint32
	Array string
	Index int
}

func (e *ShardIndexError) Error() string {
	return fmt.Sprintf("0x%03X %s: invalid shard index %d", e.ID, e.Array, e.Index)
}
