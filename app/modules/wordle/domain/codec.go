package wordledomain

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrCorruptValue is returned when a stored value cannot be decoded into a
// valid TimestampedScore.
var ErrCorruptValue = errors.New("corrupt score value")

// DayKeySize is the width of an encoded day key.
const DayKeySize = 4

// valueVersion prefixes every encoded value.
const valueVersion byte = 1

// DayKey encodes a puzzle day as a fixed-width big-endian key so byte order
// matches numeric order.
func DayKey(day uint32) []byte {
	k := make([]byte, DayKeySize)
	binary.BigEndian.PutUint32(k, day)
	return k
}

// ParseDayKey is the inverse of DayKey.
func ParseDayKey(k []byte) (uint32, error) {
	if len(k) != DayKeySize {
		return 0, fmt.Errorf("%w: day key is %d bytes", ErrCorruptValue, len(k))
	}
	return binary.BigEndian.Uint32(k), nil
}

// wireScore fixes the field order of the encoded value.
type wireScore struct {
	_msgpack struct{} `msgpack:",as_array"`

	Timestamp int64
	Day       uint32
	Success   bool
	Guesses   uint8
	HardMode  bool
	Grid      [][]byte
}

// EncodeValue serialises a timestamped score for storage.
func EncodeValue(ts TimestampedScore) ([]byte, error) {
	if err := ts.Score.Validate(); err != nil {
		return nil, err
	}

	grid := make([][]byte, len(ts.Score.Grid))
	for i, row := range ts.Score.Grid {
		b := make([]byte, RowWidth)
		for j, l := range row {
			b[j] = byte(l)
		}
		grid[i] = b
	}

	body, err := msgpack.Marshal(&wireScore{
		Timestamp: ts.Timestamp,
		Day:       ts.Score.Day,
		Success:   ts.Score.Success,
		Guesses:   ts.Score.Guesses,
		HardMode:  ts.Score.HardMode,
		Grid:      grid,
	})
	if err != nil {
		return nil, fmt.Errorf("encode score: %w", err)
	}
	return append([]byte{valueVersion}, body...), nil
}

// DecodeValue reverses EncodeValue. Any malformed input yields an error
// wrapping ErrCorruptValue.
func DecodeValue(b []byte) (TimestampedScore, error) {
	if len(b) == 0 {
		return TimestampedScore{}, fmt.Errorf("%w: empty value", ErrCorruptValue)
	}
	if b[0] != valueVersion {
		return TimestampedScore{}, fmt.Errorf("%w: unknown version %d", ErrCorruptValue, b[0])
	}

	var w wireScore
	if err := msgpack.Unmarshal(b[1:], &w); err != nil {
		return TimestampedScore{}, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}

	grid := make(Grid, len(w.Grid))
	for i, raw := range w.Grid {
		if len(raw) != RowWidth {
			return TimestampedScore{}, fmt.Errorf("%w: row %d has %d tiles", ErrCorruptValue, i+1, len(raw))
		}
		for j, v := range raw {
			grid[i][j] = Letter(v)
		}
	}

	ts := TimestampedScore{
		Timestamp: w.Timestamp,
		Score: Score{
			Day:      w.Day,
			Success:  w.Success,
			Guesses:  w.Guesses,
			HardMode: w.HardMode,
			Grid:     grid,
		},
	}
	if err := ts.Score.Validate(); err != nil {
		return TimestampedScore{}, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	return ts, nil
}
