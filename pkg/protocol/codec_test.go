package protocol

import (
	"errors"
	"io"
	"math"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		bytes int
	}{
		{"zero", 0, 1},
		{"max_1byte", 127, 1},
		{"min_2byte", 128, 2},
		{"max_2byte", 16383, 2},
		{"max_uint32", math.MaxUint32, 5},
		{"max_uint64", math.MaxUint64, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEncoder()
			e.WriteUvarint(tc.value)
			if e.Len() != tc.bytes {
				t.Errorf("WriteUvarint(%d) = %d bytes, want %d", tc.value, e.Len(), tc.bytes)
			}
			got, err := NewDecoder(e.Bytes()).ReadUvarint()
			if err != nil || got != tc.value {
				t.Errorf("ReadUvarint = %d, %v; want %d", got, err, tc.value)
			}
		})
	}
}

func TestSvarintRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, -64, 1 << 40, math.MinInt64, math.MaxInt64} {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil || got != v {
			t.Errorf("ReadSvarint = %d, %v; want %d", got, err, v)
		}
	}
}

func TestDecoderErrors(t *testing.T) {
	overflow := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x02}
	if _, err := NewDecoder(overflow).ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("overflow: err = %v", err)
	}

	if _, err := NewDecoder([]byte{0x80}).ReadUvarint(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated varint: err = %v", err)
	}

	// Claims 5 bytes, has 2.
	if _, err := NewDecoder([]byte{5, 'a', 'b'}).ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short string: err = %v", err)
	}

	e := NewEncoder()
	e.WriteUvarint(DefaultMaxAllocation + 1)
	if _, err := NewDecoder(e.Bytes()).ReadString(); !errors.Is(err, ErrAllocationTooLarge) {
		t.Errorf("huge string: err = %v", err)
	}

	e.Reset()
	e.WriteUvarint(MaxCollectionCount + 1)
	if _, err := NewDecoder(e.Bytes()).ReadCollectionCount(); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("huge collection: err = %v", err)
	}

	if _, err := NewDecoder([]byte{1, 2, 3}).ReadFloat64(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short float: err = %v", err)
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	for _, v := range []float64{0, -0.5, 123.25, math.MaxFloat64, math.Inf(-1)} {
		e := NewEncoder()
		e.WriteFloat64(v)
		got, err := NewDecoder(e.Bytes()).ReadFloat64()
		if err != nil || got != v {
			t.Errorf("ReadFloat64 = %v, %v; want %v", got, err, v)
		}
	}
}
