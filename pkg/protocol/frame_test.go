package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	f := NewFrame(FramePatches, []byte{1, 2, 3})
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{0x02, 0x00, 0x00, 0x03, 1, 2, 3}
	if !bytes.Equal(data, want) {
		t.Fatalf("Encode = %v, want %v", data, want)
	}

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Type != FramePatches || !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("DecodeFrame = %+v", got)
	}
}

func TestFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"short header", []byte{0x01, 0x00}, io.ErrUnexpectedEOF},
		{"short payload", []byte{0x01, 0x00, 0x00, 0x05, 1}, io.ErrUnexpectedEOF},
		{"unknown type", []byte{0x09, 0x00, 0x00, 0x00}, ErrInvalidFrameType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeFrame(tc.data); !errors.Is(err, tc.err) {
				t.Errorf("err = %v, want %v", err, tc.err)
			}
		})
	}

	big := NewFrame(FrameEvent, make([]byte, MaxPayloadSize+1))
	if _, err := big.Encode(); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("oversized Encode err = %v", err)
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := map[FrameType]string{
		FrameEvent:     "Event",
		FramePatches:   "Patches",
		FrameError:     "Error",
		FrameType(0x7): "Unknown",
	}
	for ft, want := range tests {
		if got := ft.String(); got != want {
			t.Errorf("FrameType(%d).String() = %q, want %q", ft, got, want)
		}
	}
}
